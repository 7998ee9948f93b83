package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jsamuelsen/postage-service/internal/adapters/http/dto"
)

var (
	accent  = lipgloss.Color("#2563EB")
	dim     = lipgloss.Color("#6B7280")
	success = lipgloss.Color("#22C55E")
	danger  = lipgloss.Color("#EF4444")
	warning = lipgloss.Color("#F59E0B")
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	dimStyle   = lipgloss.NewStyle().Foreground(dim)
	passStyle  = lipgloss.NewStyle().Foreground(success)
	failStyle  = lipgloss.NewStyle().Foreground(danger)
	warnStyle  = lipgloss.NewStyle().Foreground(warning)
	labelStyle = lipgloss.NewStyle().Foreground(dim).Width(16)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 2)
)

func renderModules(resp *dto.ModulesResponse) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Delivery modules"))
	b.WriteString("\n")

	if len(resp.Modules) == 0 {
		b.WriteString(dimStyle.Render("  none enabled"))
		b.WriteString("\n")

		return b.String()
	}

	for _, m := range resp.Modules {
		fmt.Fprintf(&b, "  %s  %s\n", lipgloss.NewStyle().Bold(true).Width(12).Render(m.Code), dimStyle.Render(m.Title))
	}

	return b.String()
}

func renderQuote(q *dto.QuoteResponse) string {
	return boxStyle.Render(quoteBody(q)) + "\n"
}

func quoteBody(q *dto.QuoteResponse) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(q.ModuleTitle))
	b.WriteString(dimStyle.Render(" (" + q.Module + ")"))
	b.WriteString("\n")

	destination := q.Country
	if q.State != "" {
		destination += " / " + q.State
	}

	row(&b, "destination", destination)

	if !q.Valid {
		row(&b, "status", warnStyle.Render("not available for this destination"))
		return strings.TrimRight(b.String(), "\n")
	}

	if q.Postage != nil {
		amount := q.Postage.Amount + " " + q.Currency
		if q.Postage.Free {
			amount = passStyle.Render("free")
		}

		row(&b, "postage", amount)
		row(&b, "untaxed", q.Postage.AmountUntaxed+" "+q.Currency)

		if q.Postage.TaxRuleTitle != "" {
			row(&b, "tax", q.Postage.AmountTax+" ("+q.Postage.TaxRuleTitle+")")
		}
	}

	if q.DeliveryMode != "" {
		row(&b, "mode", q.DeliveryMode)
	}

	if q.DeliveryDate != nil {
		row(&b, "delivery date", q.DeliveryDate.Format("Mon 2 Jan 2006 15:04"))
	}

	for _, key := range sortedKeys(q.AdditionalData) {
		row(&b, key, fmt.Sprint(q.AdditionalData[key]))
	}

	return strings.TrimRight(b.String(), "\n")
}

func renderQuoteAll(resp *dto.QuoteAllResponse) string {
	var b strings.Builder

	for _, item := range resp.Quotes {
		if item.Error != nil {
			body := titleStyle.Render(item.Module) + "\n" +
				failStyle.Render(item.Error.Code) + " " + item.Error.Message
			b.WriteString(boxStyle.BorderForeground(danger).Render(body))
		} else {
			b.WriteString(boxStyle.Render(quoteBody(item.Quote)))
		}

		b.WriteString("\n")
	}

	return b.String()
}

func row(b *strings.Builder, label, value string) {
	b.WriteString(labelStyle.Render(label))
	b.WriteString(value)
	b.WriteString("\n")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}
