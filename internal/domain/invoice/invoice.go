package invoice

import (
	"fmt"
	"isp-billing/internal/domain/customer"
	"isp-billing/internal/domain/payment"
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var monthNames = [...]string{"", "Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember"}

var (
	whitespace = regexp.MustCompile(`\s+`)
	nonDigit   = regexp.MustCompile(`\D`)
	nonAlnum   = regexp.MustCompile(`[^A-Za-z0-9]`)

	idPrinter = message.NewPrinter(language.Indonesian)
)

// MonthName returns the Indonesian month name, or "" outside 1-12.
func MonthName(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return monthNames[month]
}

// Branding is the seller block printed on every invoice.
type Branding struct {
	Name           string
	Subtitle       string
	Footer         string
	CurrencyPrefix string
}

type LineItem struct {
	Description string
	Detail      string
	Amount      int64
}

type Invoice struct {
	Number   string
	IssuedAt time.Time
	Period   payment.Period
	Customer customer.Customer
	Items    []LineItem
	Total    int64
	DueDate  time.Time
	Branding Branding
}

func (inv *Invoice) PeriodLabel() string {
	return fmt.Sprintf("%s %d", MonthName(inv.Period.Month), inv.Period.Year)
}

func (inv *Invoice) DueDateLabel() string {
	return fmt.Sprintf("%d %s %d", inv.DueDate.Day(), MonthName(int(inv.DueDate.Month())), inv.DueDate.Year())
}

// IssuedLabel renders the issue date the way id-ID locales print short dates (d/m/yyyy).
func (inv *Invoice) IssuedLabel() string {
	return inv.IssuedAt.Format("2/1/2006")
}

// Amount formats minor units with Indonesian grouping and the configured prefix, e.g. "Rp100.000".
func (inv *Invoice) Amount(v int64) string {
	return inv.Branding.CurrencyPrefix + FormatNumber(v)
}

// Filename is the suggested download name for the rendered document.
func (inv *Invoice) Filename(ext string) string {
	brand := nonAlnum.ReplaceAllString(inv.Branding.Name, "")
	name := whitespace.ReplaceAllString(strings.TrimSpace(inv.Customer.Name), "-")
	return fmt.Sprintf("Nota-%s-%s-%s-%d.%s", brand, name, MonthName(inv.Period.Month), inv.Period.Year, ext)
}

func FormatNumber(v int64) string {
	return idPrinter.Sprintf("%d", v)
}

// Share is the message and WhatsApp deep link used to send an invoice to the customer.
type Share struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
	URL     string `json:"url"`
}

func (inv *Invoice) Share() Share {
	msg := fmt.Sprintf("Halo %s,\n\nBerikut nota pembayaran WiFi %s bulan %s.\n\nTagihan: %s\nJatuh tempo: %s\n\nMohon segera melakukan pembayaran.\n\nTerima kasih! 🙏",
		inv.Customer.Name,
		strings.ToLower(inv.Branding.Name),
		inv.PeriodLabel(),
		inv.Amount(inv.Total),
		inv.DueDateLabel(),
	)
	phone := nonDigit.ReplaceAllString(inv.Customer.Phone, "")
	return Share{
		Phone:   phone,
		Message: msg,
		URL:     "https://wa.me/" + phone + "?text=" + strings.ReplaceAll(url.QueryEscape(msg), "+", "%20"),
	}
}
