package finance

import (
	"fmt"
	"strings"
)

// RenderMarkdown renders the series as a markdown pipe table titled with the
// ticker, one row per trading day.
func (s *Series) RenderMarkdown() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Stock data for %s\n\n", s.Ticker)
	b.WriteString("| Date | Open | High | Low | Close | Volume |\n")
	b.WriteString("|------|------|------|-----|-------|--------|\n")
	for _, bar := range s.Bars {
		fmt.Fprintf(&b, "| %s | %.2f | %.2f | %.2f | %.2f | %d |\n",
			bar.Date.Format("2006-01-02"), bar.Open, bar.High, bar.Low, bar.Close, bar.Volume)
	}

	return b.String()
}
