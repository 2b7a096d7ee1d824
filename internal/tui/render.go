package tui

import (
	"fmt"
	"strings"

	"github.com/karth1ksr/mf-recommendation-engine/internal/comparison"
	"github.com/karth1ksr/mf-recommendation-engine/internal/domain"
)

const panelWidth = 40

func renderBubbles(bubbles []domain.Bubble, th theme, width int) string {
	var b strings.Builder
	for i, bubble := range bubbles {
		if i > 0 {
			b.WriteString("\n")
		}
		switch {
		case bubble.Kind == domain.BubbleFundList:
			b.WriteString(th.botLabel.Render("advisor"))
			b.WriteString("\n")
			b.WriteString(renderFundList(bubble.Funds, th))
		case bubble.Role == domain.RoleUser:
			b.WriteString(th.userLabel.Render("you"))
			b.WriteString("\n")
			b.WriteString(th.bubble.Render(wrap(bubble.Text, width-4)))
		default:
			b.WriteString(th.botLabel.Render("advisor"))
			b.WriteString("\n")
			b.WriteString(th.bubble.Render(wrap(bubble.Text, width-4)))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func renderFundList(funds []domain.FundSummary, th theme) string {
	var b strings.Builder
	for i, f := range funds {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(th.bubble.Render(
			fmt.Sprintf("%d. %s", i+1, th.fundName.Render(f.SchemeName)),
		))
		b.WriteString("\n")
		b.WriteString(th.bubble.Render(
			th.fundMeta.Render(fmt.Sprintf("   %s · score %.1f", f.Category, f.Score)),
		))
	}
	return b.String()
}

func renderComparison(v *comparison.View, th theme) string {
	funds := v.Funds()
	var b strings.Builder

	b.WriteString(th.panelTitle.Render("Fund Comparison"))
	b.WriteString("\n\n")
	b.WriteString(th.fundName.Render("A: " + funds[0].SchemeName))
	b.WriteString("\n")
	b.WriteString(th.fundName.Render("B: " + funds[1].SchemeName))
	b.WriteString("\n\n")

	for _, row := range v.Rows() {
		b.WriteString(th.rowLabel.Render(fmt.Sprintf("%-13s", row.Label)))
		b.WriteString(fmt.Sprintf(" %10s %10s\n", row.A, row.B))
	}

	if narrative := v.Narrative(); narrative != "" {
		b.WriteString("\n")
		b.WriteString(th.muted.Render(wrap(narrative, panelWidth-4)))
	}

	return th.panel.Width(panelWidth).Render(b.String())
}

// wrap breaks text on word boundaries so it fits the given width.
func wrap(text string, width int) string {
	if width <= 0 {
		return text
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return text
	}

	var b strings.Builder
	lineLen := 0
	for i, word := range words {
		if i > 0 {
			if lineLen+1+len(word) > width {
				b.WriteString("\n")
				lineLen = 0
			} else {
				b.WriteString(" ")
				lineLen++
			}
		}
		b.WriteString(word)
		lineLen += len(word)
	}
	return b.String()
}
