package notifier

import (
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"findata/internal/model"
)

// FormatIngestReport formats an ingest run into a Telegram message.
func FormatIngestReport(r model.IngestReport) string {
	var b strings.Builder

	icon := "✅"
	if len(r.Failed) > 0 {
		icon = "⚠️"
	}
	fmt.Fprintf(&b, "%s <b>FinData ingest</b> | %s\n\n", icon, r.StartedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "Written: %d symbols, %d bars\n", len(r.Written), r.Bars)
	fmt.Fprintf(&b, "Failed: %d\n", len(r.Failed))
	fmt.Fprintf(&b, "Duration: %s\n", r.Duration.Round(time.Millisecond))

	if len(r.Failed) > 0 {
		symbols := make([]string, 0, len(r.Failed))
		for s := range r.Failed {
			symbols = append(symbols, s)
		}
		sort.Strings(symbols)

		b.WriteString("\n<b>Failures:</b>\n")
		for _, s := range symbols {
			fmt.Fprintf(&b, "  %s: %s\n", s, html.EscapeString(r.Failed[s]))
		}
	}
	return b.String()
}
