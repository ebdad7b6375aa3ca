package service

import (
	"context"
	"errors"
	"regexp"

	"github.com/fitgrid/class-booking-service/internal/apperr"
	"github.com/fitgrid/class-booking-service/internal/models"
	"github.com/fitgrid/class-booking-service/internal/repository"
	"gorm.io/gorm"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	// Loose international format: optional +, then digits with common
	// separators.
	phonePattern = regexp.MustCompile(`^\+?[0-9][0-9\s\-().]{5,19}$`)
)

// MemberService resolves member identity by email: find-or-create, safe
// under concurrent calls with the same address.
type MemberService interface {
	ResolveMember(ctx context.Context, name, email, phone string) (*models.Member, error)
	GetMember(ctx context.Context, id uint) (*models.Member, error)
}

type memberService struct {
	repo repository.MemberRepository
}

func NewMemberService(repo repository.MemberRepository) MemberService {
	return &memberService{repo: repo}
}

func (s *memberService) ResolveMember(ctx context.Context, name, email, phone string) (*models.Member, error) {
	if email == "" {
		return nil, apperr.E(apperr.Validation, "member email is required")
	}

	// Existing members are returned as-is; resolve never overwrites
	// name or phone.
	member, err := s.repo.FindByEmail(ctx, email)
	if err == nil {
		return member, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Store("find member by email", err)
	}

	if name == "" {
		return nil, apperr.E(apperr.Validation, "member name is required")
	}
	if !emailPattern.MatchString(email) {
		return nil, apperr.E(apperr.Validation, "invalid email format: %s", email)
	}
	if phone != "" && !phonePattern.MatchString(phone) {
		return nil, apperr.E(apperr.Validation, "invalid phone format: %s", phone)
	}

	member = &models.Member{
		Name:   name,
		Email:  email,
		Phone:  phone,
		Status: models.MemberActive,
	}
	err = s.repo.Create(ctx, member)
	if err == nil {
		return member, nil
	}

	// A concurrent resolve for the same email won the insert race; the
	// unique index rejected ours. Return the winner.
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		existing, ferr := s.repo.FindByEmail(ctx, email)
		if ferr != nil {
			return nil, apperr.Store("refetch member after duplicate insert", ferr)
		}
		return existing, nil
	}

	return nil, apperr.Store("create member", err)
}

func (s *memberService) GetMember(ctx context.Context, id uint) (*models.Member, error) {
	member, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.E(apperr.NotFound, "member %d not found", id)
		}
		return nil, apperr.Store("find member", err)
	}
	return member, nil
}
