//go:build integration

package main_test

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/shareit/service-shareit/internal/application"
	"github.com/shareit/service-shareit/internal/events"
	"github.com/shareit/service-shareit/internal/pkg/clock"
	"github.com/shareit/service-shareit/internal/pkg/database"
	"github.com/shareit/service-shareit/internal/pkg/kafka"
	"github.com/shareit/service-shareit/internal/repository"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// testInfra holds shared test infrastructure.
type testInfra struct {
	DB           *gorm.DB
	KafkaBrokers []string
	Cleanup      func()
}

// shareitStack holds the wired-up service components.
type shareitStack struct {
	Bookings        *application.BookingService
	Items           *application.ItemService
	CleanupProducer func()
}

// setupContainers starts PostgreSQL and Kafka, applies the SQL migrations and
// returns a connected GORM DB.
func setupContainers(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()
	log := zap.NewNop()

	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test_shareit",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: pgReq,
		Started:          true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")

	pgHost, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	pgPort, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	cfg := database.Config{
		Driver:   database.DriverPostgres,
		Host:     pgHost,
		Port:     pgPort.Port(),
		User:     "test",
		Password: "test",
		DBName:   "test_shareit",
		SSLMode:  "disable",
	}

	var db *gorm.DB
	require.Eventually(t, func() bool {
		var err error
		db, err = database.Connect(cfg, log)
		return err == nil
	}, 30*time.Second, 1*time.Second, "PostgreSQL not ready for connections")

	require.NoError(t, database.RunMigrations(cfg.DatabaseURL(), "migrations", log))

	kafkaContainer, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "failed to start Kafka container")

	kafkaBrokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "failed to get Kafka brokers")

	createTopics(t, kafkaBrokers, events.TopicBookingEvents)

	cleanup := func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Kafka container: %v", err)
		}
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate PostgreSQL container: %v", err)
		}
	}

	return &testInfra{
		DB:           db,
		KafkaBrokers: kafkaBrokers,
		Cleanup:      cleanup,
	}
}

// setupShareitStack wires the services against the real repositories and producer.
func setupShareitStack(t *testing.T, db *gorm.DB, brokers []string, clk clock.Clock) *shareitStack {
	t.Helper()
	logger, _ := zap.NewDevelopment()

	bookingRepo := repository.NewGormBookingRepository(db)
	userRepo := repository.NewGormUserRepository(db)
	itemRepo := repository.NewGormItemRepository(db)
	producer := kafka.NewProducer(brokers, logger)

	return &shareitStack{
		Bookings:        application.NewBookingService(bookingRepo, userRepo, itemRepo, producer, events.TopicBookingEvents, clk, logger),
		Items:           application.NewItemService(itemRepo, userRepo, bookingRepo, clk, logger),
		CleanupProducer: func() { _ = producer.Close() },
	}
}

// seedOwnerAndBooker inserts an owner with one available item and a separate booker.
func seedOwnerAndBooker(t *testing.T, db *gorm.DB) (owner, booker repository.UserModel, item repository.ItemModel) {
	t.Helper()
	suffix := uuid.New().String()[:8]
	now := time.Now().UTC()

	owner = repository.UserModel{Name: "Owner", Email: "owner-" + suffix + "@example.com", CreatedAt: now}
	require.NoError(t, db.Create(&owner).Error, "failed to seed owner")
	booker = repository.UserModel{Name: "Booker", Email: "booker-" + suffix + "@example.com", CreatedAt: now}
	require.NoError(t, db.Create(&booker).Error, "failed to seed booker")

	item = repository.ItemModel{Name: "Drill", Description: "Cordless", Available: true, OwnerID: owner.ID, CreatedAt: now}
	require.NoError(t, db.Create(&item).Error, "failed to seed item")
	return owner, booker, item
}

// collectBookingEvents consumes booking.events from the beginning in a fresh
// group until it has seen the wanted type for the booking.
func collectBookingEvents(t *testing.T, brokers []string, bookingID int64, wantType string, timeout time.Duration) events.BookingEvent {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	found := make(chan events.BookingEvent, 1)
	groupID := fmt.Sprintf("test-assert-%s", uuid.New().String()[:8])
	consumer := events.NewBookingEventConsumer(brokers, groupID, events.TopicBookingEvents,
		func(_ context.Context, eventType string, evt events.BookingEvent) error {
			if eventType == wantType && evt.BookingID == bookingID {
				select {
				case found <- evt:
				default:
				}
				cancel()
			}
			return nil
		}, zap.NewNop())
	defer func() { _ = consumer.Close() }()

	go func() { _ = consumer.Start(ctx) }()

	select {
	case evt := <-found:
		return evt
	case <-ctx.Done():
		select {
		case evt := <-found:
			return evt
		default:
		}
		t.Fatalf("timed out waiting for %q on booking %d", wantType, bookingID)
		return events.BookingEvent{}
	}
}

// readKey returns the message key of the first event of wantType on the topic.
func readKey(t *testing.T, brokers []string, wantType string, timeout time.Duration) string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     brokers,
		GroupID:     fmt.Sprintf("test-key-%s", uuid.New().String()[:8]),
		Topic:       events.TopicBookingEvents,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafkago.FirstOffset,
	})
	defer func() { _ = reader.Close() }()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				t.Fatalf("timed out waiting for event type %q", wantType)
			}
			continue
		}
		ce, err := kafka.ParseCloudEvent(msg.Value)
		if err != nil {
			continue
		}
		if ce.Type == wantType {
			return string(msg.Key)
		}
	}
}

// createTopics pre-creates Kafka topics so producers don't fail with "Unknown Topic".
func createTopics(t *testing.T, brokers []string, topics ...string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", brokers[0])
	require.NoError(t, err, "failed to dial Kafka for topic creation")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "failed to get Kafka controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err, "failed to connect to Kafka controller")
	defer controllerConn.Close()

	topicConfigs := make([]kafkago.TopicConfig, len(topics))
	for i, topic := range topics {
		topicConfigs[i] = kafkago.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		}
	}
	require.NoError(t, controllerConn.CreateTopics(topicConfigs...), "failed to create Kafka topics")

	time.Sleep(1 * time.Second)
}
