package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	routingKeyPaymentReminder = "payment.reminder"
	publisherAppID            = "isp-billing"
)

type RabbitMQEventPublisher struct {
	conn         *amqp.Connection
	exchangeName string
	logger       *slog.Logger
}

// ReminderPublisher announces that a customer's payment for a period is due and unpaid.
type ReminderPublisher interface {
	PublishReminder(ctx context.Context, reminder PaymentReminderEvent) error
}

type PaymentReminderEvent struct {
	CustomerID string    `json:"customerId"`
	Name       string    `json:"name"`
	Phone      string    `json:"phone"`
	Amount     int64     `json:"amount"`
	Month      int       `json:"month"`
	Year       int       `json:"year"`
	DueDate    time.Time `json:"dueDate"`
	Message    string    `json:"message"`
	ShareURL   string    `json:"shareUrl,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

func NewRabbitMQEventPublisher(conn *amqp.Connection, exchangeName string, logger *slog.Logger) (*RabbitMQEventPublisher, error) {
	if conn == nil {
		return nil, fmt.Errorf("RabbitMQ connection cannot be nil")
	}
	if exchangeName == "" {
		return nil, fmt.Errorf("RabbitMQ exchange name cannot be empty")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}

	tempCh, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open temporary channel for exchange declaration: %w", err)
	}
	defer tempCh.Close()

	err = tempCh.ExchangeDeclare(
		exchangeName,
		amqp.ExchangeTopic,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to declare exchange '%s': %w", exchangeName, err)
	}
	logger.Info("Ensured RabbitMQ exchange exists", "exchange", exchangeName, "type", amqp.ExchangeTopic)

	return &RabbitMQEventPublisher{
		conn:         conn,
		exchangeName: exchangeName,
		logger:       logger.With("component", "RabbitMQEventPublisher", "exchange", exchangeName),
	}, nil
}

// Notify publishes the change under its kind as routing key. Failures are logged, not returned.
func (p *RabbitMQEventPublisher) Notify(ctx context.Context, change Change) {
	if err := p.publish(ctx, string(change.Kind), change); err != nil {
		p.logger.WarnContext(ctx, "Change notification not delivered to broker",
			slog.String("kind", string(change.Kind)), slog.Any("error", err))
	}
}

func (p *RabbitMQEventPublisher) PublishReminder(ctx context.Context, reminder PaymentReminderEvent) error {
	return p.publish(ctx, routingKeyPaymentReminder, reminder)
}

func (p *RabbitMQEventPublisher) publish(ctx context.Context, routingKey string, payload any) error {
	logCtx := p.logger.With(slog.String("routingKey", routingKey))

	msg, err := newPublishing(payload, time.Now())
	if err != nil {
		logCtx.ErrorContext(ctx, "Failed to marshal event payload to JSON", slog.Any("error", err))
		return err
	}

	channel, err := p.conn.Channel()
	if err != nil {
		logCtx.ErrorContext(ctx, "Failed to open RabbitMQ channel", slog.Any("error", err))
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer channel.Close()

	logCtx.DebugContext(ctx, "Publishing message", "bodySize", len(msg.Body))

	if err := channel.PublishWithContext(ctx, p.exchangeName, routingKey, false, false, msg); err != nil {
		logCtx.ErrorContext(ctx, "Failed to publish message to RabbitMQ", slog.Any("error", err))
		return fmt.Errorf("failed to publish message: %w", err)
	}

	logCtx.InfoContext(ctx, "Successfully published message")
	return nil
}

func newPublishing(payload any, ts time.Time) (amqp.Publishing, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("failed to marshal event: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    ts,
		Body:         body,
		AppId:        publisherAppID,
	}, nil
}

// LogReminderPublisher is used when no broker is configured; reminders end up in the log only.
type LogReminderPublisher struct {
	Logger *slog.Logger
}

func (l LogReminderPublisher) PublishReminder(ctx context.Context, reminder PaymentReminderEvent) error {
	l.Logger.InfoContext(ctx, "Payment reminder",
		slog.String("customerID", reminder.CustomerID),
		slog.String("name", reminder.Name),
		slog.Int64("amount", reminder.Amount),
		slog.Time("dueDate", reminder.DueDate),
	)
	return nil
}

var (
	_ Notifier          = (*RabbitMQEventPublisher)(nil)
	_ ReminderPublisher = (*RabbitMQEventPublisher)(nil)
	_ ReminderPublisher = LogReminderPublisher{}
)
