package assistant

import "strings"

// Intent is the finite category of action requested by a message.
type Intent int

const (
	IntentUnknown Intent = iota
	IntentListExpenses
	IntentSummary
	IntentBudgetStatus
	IntentListInvestments
	IntentListCategories
	IntentChart
	IntentHelp
)

func (i Intent) String() string {
	switch i {
	case IntentListExpenses:
		return "list_expenses"
	case IntentSummary:
		return "summary"
	case IntentBudgetStatus:
		return "budget_status"
	case IntentListInvestments:
		return "list_investments"
	case IntentListCategories:
		return "list_categories"
	case IntentChart:
		return "chart"
	case IntentHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ChartKind selects the chart sub-type; meaningful only with IntentChart.
// The zero value is the pie default.
type ChartKind int

const (
	ChartPie ChartKind = iota
	ChartTimeline
	ChartBar
)

func (k ChartKind) String() string {
	switch k {
	case ChartTimeline:
		return "timeline"
	case ChartBar:
		return "bar"
	default:
		return "pie"
	}
}

// rule is one entry of the classification table: an intent, the keywords
// that select it, and an optional sub-resolver for chart kinds.
type rule struct {
	intent   Intent
	keywords []string
	resolve  func(text string) ChartKind
}

// The table is evaluated strictly top to bottom. Specific vocabulary comes
// first so that chart, budget, investment and category requests are not
// captured by the generic listing verbs ("show", "list") checked last.
var rules = []rule{
	{intent: IntentChart, keywords: []string{"chart", "graph", "visualize", "plot"}, resolve: resolveChartKind},
	{intent: IntentBudgetStatus, keywords: []string{"budget", "remaining", "left"}},
	{intent: IntentListInvestments, keywords: []string{"investment", "portfolio", "stocks"}},
	{intent: IntentListCategories, keywords: []string{"categories", "category"}},
	{intent: IntentSummary, keywords: []string{"summary", "total spending", "how much spent", "breakdown"}},
	{intent: IntentHelp, keywords: []string{"help", "what can you do", "commands"}},
	{intent: IntentListExpenses, keywords: []string{"expenses", "list", "show", "recent"}},
}

// Classify matches normalized text against the rule table and returns the
// selected intent with its chart kind. No rule matching yields
// IntentUnknown, which the response layer turns into help text.
func Classify(text string) (Intent, ChartKind) {
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(text, kw) {
				kind := ChartPie
				if r.resolve != nil {
					kind = r.resolve(text)
				}
				return r.intent, kind
			}
		}
	}
	return IntentUnknown, ChartPie
}

func resolveChartKind(text string) ChartKind {
	switch {
	case strings.Contains(text, "timeline"),
		strings.Contains(text, "over time"),
		strings.Contains(text, "daily"):
		return ChartTimeline
	case strings.Contains(text, "comparison"),
		strings.Contains(text, "compare"),
		strings.Contains(text, "bar"):
		return ChartBar
	default:
		return ChartPie
	}
}
