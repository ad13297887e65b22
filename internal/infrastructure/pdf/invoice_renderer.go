package pdf

import (
	"context"
	"fmt"
	"isp-billing/internal/domain/invoice"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/linestyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

var (
	colorInk  = &props.Color{Red: 0, Green: 0, Blue: 0}
	colorGray = &props.Color{Red: 102, Green: 102, Blue: 102}
)

// InvoiceRenderer prints the receipt-style nota on an A5 page.
type InvoiceRenderer struct{}

func NewInvoiceRenderer() *InvoiceRenderer { return &InvoiceRenderer{} }

func (r *InvoiceRenderer) ContentType() string { return "application/pdf" }

func (r *InvoiceRenderer) Extension() string { return "pdf" }

func (r *InvoiceRenderer) Render(_ context.Context, inv *invoice.Invoice) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A5).
		WithLeftMargin(12).WithRightMargin(12).
		WithTopMargin(12).WithBottomMargin(12).
		WithDefaultFont(&props.Font{Family: "courier", Size: 9}).
		WithTitle("Nota "+inv.Number, true).
		WithAuthor(inv.Branding.Name, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRows(inv)...)
	m.AddRows(line.NewRow(2, props.Line{Color: colorInk, Thickness: 0.6}))
	m.AddRows(infoRows(inv)...)
	m.AddRows(line.NewRow(2, props.Line{Color: colorGray, Thickness: 0.2, Style: linestyle.Dashed}))
	m.AddRows(customerRows(inv)...)
	m.AddRows(line.NewRow(2, props.Line{Color: colorGray, Thickness: 0.2, Style: linestyle.Dashed}))
	m.AddRows(itemRows(inv)...)
	m.AddRows(line.NewRow(2, props.Line{Color: colorInk, Thickness: 0.6}))
	m.AddRows(totalRow(inv))
	m.AddRows(dueRows(inv)...)
	m.AddRows(footerRows(inv)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generate invoice %s: %w", inv.Number, err)
	}
	return doc.GetBytes(), nil
}

func headerRows(inv *invoice.Invoice) []core.Row {
	rows := []core.Row{
		row.New(10).Add(col.New(12).Add(
			text.New(inv.Branding.Name, props.Text{Style: fontstyle.Bold, Size: 18, Align: align.Center}),
		)),
	}
	if inv.Branding.Subtitle != "" {
		rows = append(rows, row.New(5).Add(col.New(12).Add(
			text.New(inv.Branding.Subtitle, props.Text{Size: 8, Align: align.Center}),
		)))
	}
	return rows
}

func infoRows(inv *invoice.Invoice) []core.Row {
	return []core.Row{
		labelValueRow("No. Nota", inv.Number, true),
		labelValueRow("Tanggal", inv.IssuedLabel(), false),
		labelValueRow("Periode", inv.PeriodLabel(), false),
	}
}

func customerRows(inv *invoice.Invoice) []core.Row {
	rows := []core.Row{
		row.New(5).Add(col.New(12).Add(text.New("PELANGGAN:", props.Text{Style: fontstyle.Bold, Size: 8}))),
		row.New(5).Add(col.New(12).Add(text.New(inv.Customer.Name, props.Text{Size: 9}))),
	}
	for _, extra := range []string{inv.Customer.Address, inv.Customer.Phone} {
		if extra == "" {
			continue
		}
		rows = append(rows, row.New(4).Add(col.New(12).Add(text.New(extra, props.Text{Size: 8, Color: colorGray}))))
	}
	return rows
}

func itemRows(inv *invoice.Invoice) []core.Row {
	rows := []core.Row{
		row.New(6).Add(
			col.New(8).Add(text.New("ITEM", props.Text{Style: fontstyle.Bold, Size: 8})),
			col.New(4).Add(text.New("HARGA", props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Right})),
		),
	}
	for _, item := range inv.Items {
		rows = append(rows, row.New(10).Add(
			col.New(8).Add(
				text.New(item.Description, props.Text{Size: 9, Top: 1}),
				text.New(item.Detail, props.Text{Size: 7, Top: 5, Color: colorGray}),
			),
			col.New(4).Add(text.New(invoice.FormatNumber(item.Amount), props.Text{Size: 9, Top: 1, Align: align.Right})),
		))
	}
	return rows
}

func totalRow(inv *invoice.Invoice) core.Row {
	return row.New(9).Add(
		col.New(6).Add(text.New("TOTAL", props.Text{Style: fontstyle.Bold, Size: 12, Top: 1})),
		col.New(6).Add(text.New(inv.Amount(inv.Total), props.Text{Style: fontstyle.Bold, Size: 12, Top: 1, Align: align.Right})),
	)
}

func dueRows(inv *invoice.Invoice) []core.Row {
	return []core.Row{
		row.New(5).Add(col.New(12).Add(text.New("JATUH TEMPO", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Center, Top: 1}))),
		row.New(5).Add(col.New(12).Add(text.New(inv.DueDateLabel(), props.Text{Size: 9, Align: align.Center}))),
		row.New(4).Add(col.New(12).Add(text.New("Harap bayar sebelum tanggal jatuh tempo", props.Text{Size: 7, Align: align.Center, Top: 1}))),
		row.New(4).Add(col.New(12).Add(text.New("untuk menghindari pemutusan layanan", props.Text{Size: 7, Align: align.Center}))),
	}
}

func footerRows(inv *invoice.Invoice) []core.Row {
	rows := []core.Row{line.NewRow(3, props.Line{Color: colorGray, Thickness: 0.2, Style: linestyle.Dashed})}
	if share := inv.Share(); share.Phone != "" {
		rows = append(rows, row.New(28).Add(
			col.New(4),
			col.New(4).Add(code.NewQr(share.URL, props.Rect{Percent: 95, Center: true})),
			col.New(4),
		))
	}
	if inv.Branding.Footer != "" {
		rows = append(rows, row.New(5).Add(col.New(12).Add(
			text.New(inv.Branding.Footer, props.Text{Size: 7, Align: align.Center, Color: colorGray, Top: 1}),
		)))
	}
	return rows
}

func labelValueRow(label, value string, bold bool) core.Row {
	valueStyle := fontstyle.Normal
	if bold {
		valueStyle = fontstyle.Bold
	}
	return row.New(5).Add(
		col.New(5).Add(text.New(label, props.Text{Size: 8})),
		col.New(7).Add(text.New(value, props.Text{Size: 8, Style: valueStyle, Align: align.Right})),
	)
}

var _ invoice.Renderer = (*InvoiceRenderer)(nil)
