package pdf

import (
	"bytes"
	"context"
	"isp-billing/internal/domain/customer"
	"isp-billing/internal/domain/invoice"
	"isp-billing/internal/domain/payment"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleInvoice(phone string) *invoice.Invoice {
	return &invoice.Invoice{
		Number:   "INV032025-0042",
		IssuedAt: time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC),
		Period:   payment.Period{Month: 3, Year: 2025},
		Customer: customer.Customer{Name: "Siti Nurhaliza", Address: "Jl. Mawar 3", Phone: phone, MonthlyFee: 150000, PaymentDay: 10},
		Items:    []invoice.LineItem{{Description: "Langganan WiFi", Detail: "Maret 2025", Amount: 150000}},
		Total:    150000,
		DueDate:  time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		Branding: invoice.Branding{Name: "SOFIA.NET", Subtitle: "LAYANAN INTERNET", Footer: "Terima kasih", CurrencyPrefix: "Rp"},
	}
}

func TestInvoiceRendererProducesPDF(t *testing.T) {
	r := NewInvoiceRenderer()

	for _, phone := range []string{"0812-3456-7890", ""} {
		content, err := r.Render(context.Background(), sampleInvoice(phone))
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(content, []byte("%PDF-")), "output should be a PDF document")
	}

	assert.Equal(t, "application/pdf", r.ContentType())
	assert.Equal(t, "pdf", r.Extension())
}
