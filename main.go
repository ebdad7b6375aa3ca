package main

import (
	"log"

	"github.com/fitgrid/class-booking-service/config"
	"github.com/fitgrid/class-booking-service/internal/consumer"
	"github.com/fitgrid/class-booking-service/internal/handler"
	"github.com/fitgrid/class-booking-service/internal/middleware"
	"github.com/fitgrid/class-booking-service/internal/repository"
	"github.com/fitgrid/class-booking-service/internal/service"
	"github.com/fitgrid/class-booking-service/pkg/database"
	"github.com/fitgrid/class-booking-service/pkg/rabbitmq"
	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := config.Load()

	db := database.NewPostgresDB(cfg.DSN())

	// Repositories
	instructorRepo := repository.NewInstructorRepository(db)
	memberRepo := repository.NewMemberRepository(db)
	classRepo := repository.NewClassRepository(db)
	bookingRepo := repository.NewBookingRepository(db)

	// RabbitMQ consumer: sync instructors from the staff system
	mqConsumer, err := rabbitmq.NewConsumer(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("failed to connect to RabbitMQ: %v", err)
	}
	defer mqConsumer.Close()

	msgs, err := mqConsumer.Consume()
	if err != nil {
		log.Fatalf("failed to start consuming: %v", err)
	}

	instructorConsumer := consumer.NewInstructorConsumer(instructorRepo)
	instructorConsumer.Start(msgs)

	// RabbitMQ publisher: booking and class lifecycle events
	publisher, err := rabbitmq.NewPublisher(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("failed to create RabbitMQ publisher: %v", err)
	}
	defer publisher.Close()

	// Services
	memberSvc := service.NewMemberService(memberRepo)
	classSvc := service.NewClassService(classRepo, instructorRepo, bookingRepo, publisher)
	bookingSvc := service.NewBookingService(bookingRepo, classRepo, memberSvc, publisher)
	statsSvc := service.NewStatsService(classRepo, bookingRepo)

	// Echo
	e := echo.New()
	e.HTTPErrorHandler = middleware.ErrorHandler
	e.Use(echoMw.RequestLoggerWithConfig(echoMw.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v echoMw.RequestLoggerValues) error {
			log.Printf("%s %s %d", v.Method, v.URI, v.Status)
			return nil
		},
	}))
	e.Use(echoMw.Recover())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok", "service": "class-booking-service"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	handler.NewClassHandler(classSvc, statsSvc).RegisterRoutes(e)
	handler.NewBookingHandler(bookingSvc).RegisterRoutes(e)

	log.Printf("Class Booking Service starting on :%s", cfg.ServerPort)
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
