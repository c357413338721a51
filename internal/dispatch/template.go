package dispatch

import (
	"html"
	"strings"

	"github.com/fakturo/invoice-mailer/internal/invoice"
)

// RenderTemplate substitutes the invoice placeholder tokens into a subject or
// body template. Unknown text is passed through untouched, so plain subjects
// without tokens come out unchanged.
//
// Supported tokens: {invoice_number}, {customer_name}, {total_amount},
// {invoice_date}.
func RenderTemplate(tpl string, inv *invoice.Invoice) string {
	if tpl == "" || !strings.Contains(tpl, "{") {
		return tpl
	}
	replacer := strings.NewReplacer(
		"{invoice_number}", inv.Number,
		"{customer_name}", inv.CustomerName,
		"{total_amount}", inv.TotalAmount,
		"{invoice_date}", inv.InvoiceDate.Format("2006-01-02"),
	)
	return replacer.Replace(tpl)
}

// HTMLFromText converts a plain-text body into a minimal HTML rendering:
// a paragraph per non-blank line, a line break for each blank line.
func HTMLFromText(text string) string {
	var b strings.Builder
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			b.WriteString("<br>\n")
			continue
		}
		b.WriteString("<p>")
		b.WriteString(html.EscapeString(line))
		b.WriteString("</p>\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}
