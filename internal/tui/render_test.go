package tui

import (
	"strings"
	"testing"

	"github.com/karth1ksr/mf-recommendation-engine/internal/comparison"
	"github.com/karth1ksr/mf-recommendation-engine/internal/domain"
)

func TestWrap_BreaksOnWordBoundaries(t *testing.T) {
	got := wrap("alpha beta gamma delta", 11)
	want := "alpha beta\ngamma delta"
	if got != want {
		t.Errorf("wrap = %q, want %q", got, want)
	}
}

func TestWrap_ZeroWidthIsPassthrough(t *testing.T) {
	if got := wrap("hello world", 0); got != "hello world" {
		t.Errorf("wrap = %q", got)
	}
}

func TestRenderBubbles_LabelsRoles(t *testing.T) {
	bubbles := []domain.Bubble{
		{Role: domain.RoleUser, Kind: domain.BubblePlain, Text: "compare two funds"},
		{Role: domain.RoleAssistant, Kind: domain.BubblePlain, Text: "Here you go."},
	}
	out := renderBubbles(bubbles, newTheme(), 80)
	if !strings.Contains(out, "you") || !strings.Contains(out, "advisor") {
		t.Errorf("Expected role labels in output:\n%s", out)
	}
	if !strings.Contains(out, "compare two funds") {
		t.Errorf("Expected user text in output:\n%s", out)
	}
}

func TestRenderFundList_ShowsSchemeAndScore(t *testing.T) {
	out := renderFundList([]domain.FundSummary{
		{SchemeName: "Alpha Growth Fund", Category: "Equity", Score: 87.5},
	}, newTheme())
	if !strings.Contains(out, "Alpha Growth Fund") || !strings.Contains(out, "87.5") {
		t.Errorf("Unexpected fund list rendering:\n%s", out)
	}
}

func TestRenderComparison_ShowsMetricRows(t *testing.T) {
	v := comparison.NewView()
	v.Open(
		domain.FundSummary{SchemeName: "Fund A", Category: "Equity", NormCAGR3Y: 0.8},
		domain.FundSummary{SchemeName: "Fund B", Category: "Debt", NormCAGR3Y: 0.6},
		"A narrow lead for Fund A.", 3,
	)
	out := renderComparison(v, newTheme())
	for _, want := range []string{"Fund A", "Fund B", "CAGR (3Y)", "Max Drawdown", "narrow lead"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in panel:\n%s", want, out)
		}
	}
}
