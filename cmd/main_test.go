package main

import (
	"bytes"
	"context"
	"isp-billing/internal/batch"
	"isp-billing/internal/config"
	"isp-billing/internal/domain/customer"
	"isp-billing/internal/domain/payment"
	"isp-billing/internal/domain/reconciliation"
	"isp-billing/internal/event"
	"isp-billing/internal/infrastructure/logging"
	"log/slog"
	"net/http"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeApp(t *testing.T) {
	cfg, log := initializeApp()

	assert.NotNil(t, cfg, "Config should not be nil")
	assert.NotNil(t, log, "Logger should not be nil")
}

func TestInitializeMemoryStorage(t *testing.T) {
	logger := logging.NewLogger(config.LoggerConfig{})
	cfg := &config.Config{Storage: config.StorageConfig{Driver: config.StorageDriverMemory}}

	repos, pool := initializeStorage(context.Background(), cfg, logger)

	assert.Nil(t, pool)
	require.NotNil(t, repos.customers)
	require.NotNil(t, repos.payments)
}

func TestInitializeServicesWithoutBrokerOrRedis(t *testing.T) {
	logger := logging.NewLogger(config.LoggerConfig{})
	cfg := &config.Config{
		Storage: config.StorageConfig{Driver: config.StorageDriverMemory},
		Invoice: config.InvoiceConfig{BrandName: "SOFIA.NET", CurrencyPrefix: "Rp"},
	}
	repos, _ := initializeStorage(context.Background(), cfg, logger)
	hub := event.NewHub(logger)

	ledger, invoices := initializeServices(repos, hub, nil, nil, cfg, logger)
	require.NotNil(t, ledger)
	require.NotNil(t, invoices)

	changes, cancel := hub.Subscribe(payment.PeriodOf(time.Now()))
	defer cancel()

	fee := int64(120000)
	created, err := ledger.RegisterCustomer(context.Background(), customer.Fields{Name: "Ani", MonthlyFee: &fee})
	require.NoError(t, err)

	select {
	case change := <-changes:
		assert.Equal(t, event.KindCustomerCreated, change.Kind)
		assert.Equal(t, created.ID, change.CustomerID)
	case <-time.After(time.Second):
		t.Fatal("registration did not reach the hub")
	}

	view, err := ledger.View(context.Background(), reconciliation.Query{Period: payment.PeriodOf(time.Now())})
	require.NoError(t, err)
	assert.Len(t, view.Rows, 1)
}

func TestReminderPublisherFallsBackToLog(t *testing.T) {
	logger := logging.NewLogger(config.LoggerConfig{})

	p := reminderPublisher(nil, logger)

	_, ok := p.(event.LogReminderPublisher)
	assert.True(t, ok)
	assert.NoError(t, p.PublishReminder(context.Background(), event.PaymentReminderEvent{CustomerID: "c1"}))
}

func TestSetupRabbitMQDisabled(t *testing.T) {
	logger := logging.NewLogger(config.LoggerConfig{})

	conn, err := setupRabbitMQ(&config.Config{}, logger)

	assert.NoError(t, err)
	assert.Nil(t, conn)
	assert.Nil(t, initializeEventPublisher(conn, &config.Config{}, logger))
}

func TestInitializeRabbitMQLogsMissingURL(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	cfg := &config.Config{RabbitMQ: config.RabbitMQConfig{Enabled: true}}

	_, err := setupRabbitMQ(cfg, logger)
	assert.EqualError(t, err, "RabbitMQ URL is not configured")

	assert.Nil(t, initializeRabbitMQ(cfg, logger))
	assert.Contains(t, buf.String(), "Continuing without RabbitMQ")
	assert.Contains(t, buf.String(), "RabbitMQ URL is not configured")
}

func TestInitializeRedisClientWithoutAddress(t *testing.T) {
	logger := logging.NewLogger(config.LoggerConfig{})
	assert.Nil(t, initializeRedisClient(&config.Config{}, logger))
}

func TestStartBatchJobs(t *testing.T) {
	logger := logging.NewLogger(config.LoggerConfig{})
	cfg := &config.Config{Storage: config.StorageConfig{Driver: config.StorageDriverMemory}}
	repos, _ := initializeStorage(context.Background(), cfg, logger)
	ledger, invoices := initializeServices(repos, event.NewHub(logger), nil, nil, cfg, logger)
	job := batch.NewPaymentReminderJob(ledger, invoices, reminderPublisher(nil, logger), logger)

	c := startBatchJobs(cfg, logger, job)
	defer c.Stop()

	assert.Len(t, c.Entries(), 1)
}

func TestStartServer(t *testing.T) {
	cfg := &config.Config{
		Server: config.ServerConfig{
			Port:         0,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 5 * time.Second,
			IdleTimeout:  5 * time.Second,
		},
	}
	logger := logging.NewLogger(config.LoggerConfig{})
	router := http.NewServeMux()

	srv, serverErrors, shutdownChan := startServer(cfg, router, logger)
	defer srv.Close()

	assert.NotNil(t, srv, "Server should not be nil")
	assert.NotNil(t, serverErrors, "Server errors channel should not be nil")
	assert.NotNil(t, shutdownChan, "Shutdown channel should not be nil")
}

func TestHandleShutdown(t *testing.T) {
	logger := logging.NewLogger(config.LoggerConfig{})
	cronScheduler := cron.New()
	srv := &http.Server{}
	shutdownChan := make(chan os.Signal, 1)
	serverErrors := make(chan error, 1)

	go func() {
		shutdownChan <- syscall.SIGINT
		serverErrors <- nil
	}()

	handleShutdown(srv, cronScheduler, nil, nil, shutdownChan, serverErrors, logger)
}
