package batch

import (
	"context"
	"fmt"
	"isp-billing/internal/domain/customer"
	"isp-billing/internal/domain/invoice"
	"isp-billing/internal/domain/payment"
	"isp-billing/internal/domain/reconciliation"
	"isp-billing/internal/event"
	"isp-billing/internal/infrastructure/monitoring"
	"log/slog"
	"time"
)

type PeriodViewer interface {
	View(ctx context.Context, q reconciliation.Query) (*reconciliation.View, error)
}

type ReminderComposer interface {
	Reminder(cust *customer.Customer, period payment.Period) (*invoice.Invoice, invoice.Share)
}

var (
	_ PeriodViewer     = (*reconciliation.Controller)(nil)
	_ ReminderComposer = (*invoice.Service)(nil)
)

// PaymentReminderJob announces unpaid customers on their billing day. It only reads the
// ledger; recording a payment stays a manual operation.
type PaymentReminderJob struct {
	viewer    PeriodViewer
	composer  ReminderComposer
	publisher event.ReminderPublisher
	now       func() time.Time
	logger    *slog.Logger
}

func NewPaymentReminderJob(
	viewer PeriodViewer,
	composer ReminderComposer,
	publisher event.ReminderPublisher,
	logger *slog.Logger,
) *PaymentReminderJob {
	if viewer == nil || composer == nil || publisher == nil || logger == nil {
		panic("PaymentReminderJob dependencies cannot be nil")
	}
	return &PaymentReminderJob{
		viewer:    viewer,
		composer:  composer,
		publisher: publisher,
		now:       time.Now,
		logger:    logger.With("job", "PaymentReminder"),
	}
}

func (j *PaymentReminderJob) Run(ctx context.Context) error {
	startTime := j.now()
	day := customer.PaymentDay(startTime.Day())
	if !day.Valid() {
		j.logger.DebugContext(ctx, "Not a billing day, nothing to remind.", slog.Int("day", startTime.Day()))
		return nil
	}

	period := payment.PeriodOf(startTime)
	logger := j.logger.With(slog.String("period", period.String()), slog.Int("paymentDay", int(day)))
	logger.InfoContext(ctx, "Starting payment reminder job.")

	view, err := j.viewer.View(ctx, reconciliation.Query{Period: period, PaymentDay: day})
	if err != nil {
		logger.ErrorContext(ctx, "Failed to load reconciliation view, aborting job.", slog.Any("error", err))
		return fmt.Errorf("cannot run reminder job, failed to load period %s: %w", period, err)
	}

	var published, failed int
	for _, row := range view.Rows {
		if row.HasPaid {
			continue
		}
		if err := ctx.Err(); err != nil {
			logger.WarnContext(ctx, "Reminder job interrupted.", slog.Any("error", err))
			return err
		}

		inv, share := j.composer.Reminder(row.Customer, period)
		reminder := event.PaymentReminderEvent{
			CustomerID: row.Customer.ID,
			Name:       row.Customer.Name,
			Phone:      row.Customer.Phone,
			Amount:     inv.Total,
			Month:      period.Month,
			Year:       period.Year,
			DueDate:    inv.DueDate,
			Message:    share.Message,
			ShareURL:   share.URL,
			Timestamp:  j.now(),
		}

		if err := j.publisher.PublishReminder(ctx, reminder); err != nil {
			logger.ErrorContext(ctx, "Failed to publish payment reminder", slog.String("customerID", row.Customer.ID), slog.Any("error", err))
			monitoring.RecordReminder(monitoring.ReminderFailed)
			failed++
			continue
		}
		monitoring.RecordReminder(monitoring.ReminderPublished)
		published++
	}

	summaryLog := logger.With(
		slog.Duration("duration", time.Since(startTime)),
		slog.Int("customers_in_bucket", len(view.Rows)),
		slog.Int("unpaid", view.Stats.TotalCount-view.Stats.PaidCount),
		slog.Int("reminders_published", published),
		slog.Int("errors_encountered", failed),
	)
	if failed > 0 {
		summaryLog.WarnContext(ctx, "Payment reminder job finished with errors.")
		return fmt.Errorf("reminder job completed with %d errors", failed)
	}
	summaryLog.InfoContext(ctx, "Payment reminder job finished successfully.")
	return nil
}
