package invoice

import (
	"context"
	"fmt"
	"isp-billing/internal/domain/customer"
	"isp-billing/internal/domain/payment"
	"log/slog"
	"math/rand/v2"
	"os"
	"time"
)

// Renderer turns an invoice into a printable document.
type Renderer interface {
	Render(ctx context.Context, inv *Invoice) ([]byte, error)
	ContentType() string
	Extension() string
}

type Document struct {
	Filename    string
	ContentType string
	Content     []byte
}

type Service struct {
	customers customer.CustomerRepository
	renderer  Renderer
	branding  Branding
	serial    func() int
	now       func() time.Time
	logger    *slog.Logger
}

type Option func(*Service)

// WithSerial replaces the random 4-digit suffix source.
func WithSerial(f func() int) Option {
	return func(s *Service) { s.serial = f }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(customers customer.CustomerRepository, renderer Renderer, branding Branding, logger *slog.Logger, opts ...Option) *Service {
	if customers == nil {
		panic("customer repository cannot be nil")
	}
	if renderer == nil {
		panic("invoice renderer cannot be nil")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to invoice.NewService, using default stderr handler")
	}
	s := &Service{
		customers: customers,
		renderer:  renderer,
		branding:  branding,
		serial:    func() int { return rand.IntN(10000) },
		now:       time.Now,
		logger:    logger.With("component", "InvoiceService"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Build assembles the invoice of one customer for one period.
func (s *Service) Build(ctx context.Context, customerID string, period payment.Period) (*Invoice, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}
	cust, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return s.assemble(cust, period), nil
}

func (s *Service) assemble(cust *customer.Customer, period payment.Period) *Invoice {
	day := int(cust.PaymentDay)
	if day == 0 {
		day = int(customer.PaymentDayFirst)
	}
	label := fmt.Sprintf("%s %d", MonthName(period.Month), period.Year)
	return &Invoice{
		Number:   fmt.Sprintf("INV%02d%d-%04d", period.Month, period.Year, s.serial()%10000),
		IssuedAt: s.now(),
		Period:   period,
		Customer: *cust,
		Items:    []LineItem{{Description: "Langganan WiFi", Detail: label, Amount: cust.MonthlyFee}},
		Total:    cust.MonthlyFee,
		DueDate:  period.Date(day),
		Branding: s.branding,
	}
}

func (s *Service) Render(ctx context.Context, customerID string, period payment.Period) (*Document, error) {
	inv, err := s.Build(ctx, customerID, period)
	if err != nil {
		return nil, err
	}

	content, err := s.renderer.Render(ctx, inv)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to render invoice", slog.String("invoice", inv.Number), slog.Any("error", err))
		return nil, fmt.Errorf("failed to render invoice %s: %w", inv.Number, err)
	}
	s.logger.InfoContext(ctx, "Invoice rendered", slog.String("invoice", inv.Number), slog.Int("bytes", len(content)))

	return &Document{
		Filename:    inv.Filename(s.renderer.Extension()),
		ContentType: s.renderer.ContentType(),
		Content:     content,
	}, nil
}

func (s *Service) Share(ctx context.Context, customerID string, period payment.Period) (*Share, error) {
	inv, err := s.Build(ctx, customerID, period)
	if err != nil {
		return nil, err
	}
	share := inv.Share()
	return &share, nil
}

// Reminder builds the share payload for an already loaded customer.
func (s *Service) Reminder(cust *customer.Customer, period payment.Period) (*Invoice, Share) {
	inv := s.assemble(cust, period)
	return inv, inv.Share()
}
