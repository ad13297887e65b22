package dto

import (
	"isp-billing/internal/domain/invoice"
	"isp-billing/internal/domain/reconciliation"
	"time"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

type StatsResponse struct {
	PaymentDay int `json:"paymentDay"`
	PaidCount  int `json:"paidCount"`
	TotalCount int `json:"totalCount"`
	Percentage int `json:"percentage"`
}

type RowResponse struct {
	Customer            CustomerResponse `json:"customer"`
	HasPaid             bool             `json:"hasPaid"`
	PaymentID           string           `json:"paymentId,omitempty"`
	PaymentDate         string           `json:"paymentDate,omitempty"`
	DuplicatePaymentIDs []string         `json:"duplicatePaymentIds,omitempty"`
}

type ViewResponse struct {
	Month      int             `json:"month"`
	Year       int             `json:"year"`
	PaymentDay int             `json:"paymentDay"`
	Search     string          `json:"search,omitempty"`
	Rows       []RowResponse   `json:"rows"`
	Stats      StatsResponse   `json:"stats"`
	Buckets    []StatsResponse `json:"buckets"`
	LoadedAt   time.Time       `json:"loadedAt"`
}

func newStatsResponse(s reconciliation.Stats) StatsResponse {
	return StatsResponse{
		PaymentDay: int(s.PaymentDay),
		PaidCount:  s.PaidCount,
		TotalCount: s.TotalCount,
		Percentage: s.Percentage,
	}
}

func NewViewResponse(v *reconciliation.View) ViewResponse {
	resp := ViewResponse{
		Month:      v.Period.Month,
		Year:       v.Period.Year,
		PaymentDay: int(v.PaymentDay),
		Search:     v.Search,
		Rows:       make([]RowResponse, 0, len(v.Rows)),
		Stats:      newStatsResponse(v.Stats),
		Buckets:    make([]StatsResponse, 0, len(v.Buckets)),
		LoadedAt:   v.LoadedAt,
	}
	for _, r := range v.Rows {
		row := RowResponse{
			Customer:            NewCustomerResponse(r.Customer),
			HasPaid:             r.HasPaid,
			PaymentID:           r.PaymentID,
			DuplicatePaymentIDs: r.DuplicatePaymentIDs,
		}
		if r.PaymentDate != nil {
			row.PaymentDate = r.PaymentDate.Format(dateLayout)
		}
		resp.Rows = append(resp.Rows, row)
	}
	for _, b := range v.Buckets {
		resp.Buckets = append(resp.Buckets, newStatsResponse(b))
	}
	return resp
}

type HistoryEntryResponse struct {
	PaymentID    string `json:"paymentId"`
	CustomerID   string `json:"customerId"`
	CustomerName string `json:"customerName"`
	Amount       int64  `json:"amount"`
	PaymentDate  string `json:"paymentDate"`
	Notes        string `json:"notes,omitempty"`
}

type HistoryResponse struct {
	Month          int                    `json:"month"`
	Year           int                    `json:"year"`
	Count          int                    `json:"count"`
	TotalAmount    decimal.Decimal        `json:"totalAmount"`
	TotalFormatted string                 `json:"totalFormatted"`
	Entries        []HistoryEntryResponse `json:"entries"`
}

func NewHistoryResponse(h *reconciliation.History, currencyPrefix string) HistoryResponse {
	resp := HistoryResponse{
		Month:          h.Period.Month,
		Year:           h.Period.Year,
		Count:          h.Count,
		TotalAmount:    decimal.NewFromInt(h.TotalAmount),
		TotalFormatted: currencyPrefix + invoice.FormatNumber(h.TotalAmount),
		Entries:        make([]HistoryEntryResponse, 0, len(h.Entries)),
	}
	for _, e := range h.Entries {
		resp.Entries = append(resp.Entries, HistoryEntryResponse{
			PaymentID:    e.Payment.ID,
			CustomerID:   e.Payment.CustomerID,
			CustomerName: e.CustomerName,
			Amount:       e.Payment.Amount,
			PaymentDate:  e.Payment.PaymentDate.Format(dateLayout),
			Notes:        e.Payment.Notes,
		})
	}
	return resp
}

type ShareResponse struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
	URL     string `json:"url"`
}

func NewShareResponse(s *invoice.Share) ShareResponse {
	return ShareResponse{Phone: s.Phone, Message: s.Message, URL: s.URL}
}
