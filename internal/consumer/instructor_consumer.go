package consumer

import (
	"context"
	"encoding/json"
	"log"

	"github.com/fitgrid/class-booking-service/internal/models"
	"github.com/fitgrid/class-booking-service/internal/repository"
	amqp "github.com/rabbitmq/amqp091-go"
)

// InstructorConsumer ingests instructor records pushed by the staff system.
// Instructors are owned there; this keeps the local table in sync so
// scheduling can check instructor status without a remote call.
type InstructorConsumer struct {
	repo repository.InstructorRepository
}

func NewInstructorConsumer(repo repository.InstructorRepository) *InstructorConsumer {
	return &InstructorConsumer{repo: repo}
}

func (ic *InstructorConsumer) Start(msgs <-chan amqp.Delivery) {
	go func() {
		for msg := range msgs {
			ic.handleMessage(msg)
		}
		log.Println("[InstructorConsumer] channel closed, stopping consumer")
	}()
}

func (ic *InstructorConsumer) handleMessage(msg amqp.Delivery) {
	var instructor models.Instructor
	if err := json.Unmarshal(msg.Body, &instructor); err != nil {
		log.Printf("[InstructorConsumer] failed to unmarshal: %v", err)
		msg.Nack(false, false)
		return
	}
	if instructor.ID == 0 {
		log.Printf("[InstructorConsumer] dropping message without instructor id")
		msg.Nack(false, false)
		return
	}

	if err := ic.repo.Upsert(context.Background(), &instructor); err != nil {
		log.Printf("[InstructorConsumer] failed to upsert instructor %d: %v", instructor.ID, err)
		msg.Nack(false, true) // requeue
		return
	}

	log.Printf("[InstructorConsumer] synced instructor %d: %s (%s)", instructor.ID, instructor.Name, instructor.Status)
	msg.Ack(false)
}
