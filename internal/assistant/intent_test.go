package assistant

import "testing"

func TestClassify(t *testing.T) {
	cases := []struct {
		text   string
		intent Intent
		kind   ChartKind
	}{
		// Chart vocabulary wins over the generic "show".
		{"show me a pie chart", IntentChart, ChartPie},
		{"show spending timeline graph", IntentChart, ChartTimeline},
		{"plot daily spending", IntentChart, ChartTimeline},
		{"visualize spending over time", IntentChart, ChartTimeline},
		{"show a comparison chart", IntentChart, ChartBar},
		{"bar graph of categories", IntentChart, ChartBar},
		{"chart please", IntentChart, ChartPie}, // pie is the default

		// Budget beats listing verbs.
		{"show my remaining budget", IntentBudgetStatus, ChartPie},
		{"how much do i have left", IntentBudgetStatus, ChartPie},

		{"show my investments", IntentListInvestments, ChartPie},
		{"what is my portfolio worth", IntentListInvestments, ChartPie},
		{"list my stocks", IntentListInvestments, ChartPie},

		// Categories resolve without any listing keyword present.
		{"categories", IntentListCategories, ChartPie},
		{"show all categories", IntentListCategories, ChartPie},

		{"spending summary please", IntentSummary, ChartPie},
		{"total spending for december", IntentSummary, ChartPie},
		{"spending breakdown", IntentSummary, ChartPie},

		{"help", IntentHelp, ChartPie},
		{"what can you do", IntentHelp, ChartPie},

		{"show my recent expenses", IntentListExpenses, ChartPie},
		{"list everything", IntentListExpenses, ChartPie},

		{"good morning", IntentUnknown, ChartPie},
		{"", IntentUnknown, ChartPie},
	}

	for _, tc := range cases {
		intent, kind := Classify(Normalize(tc.text))
		if intent != tc.intent {
			t.Fatalf("Classify(%q) intent = %s, want %s", tc.text, intent, tc.intent)
		}
		if intent == IntentChart && kind != tc.kind {
			t.Fatalf("Classify(%q) kind = %s, want %s", tc.text, kind, tc.kind)
		}
	}
}

func TestClassifyPriorityIsStable(t *testing.T) {
	// Messages carrying vocabulary from several rule sets must resolve to
	// the most specific one, independent of word order in the message.
	cases := []struct {
		text   string
		intent Intent
	}{
		{"show a chart of my budget", IntentChart},
		{"list my budget status", IntentBudgetStatus},
		{"show investment expenses", IntentListInvestments},
		{"list expense categories", IntentListCategories},
		{"show my spending summary list", IntentSummary},
	}
	for _, tc := range cases {
		if intent, _ := Classify(Normalize(tc.text)); intent != tc.intent {
			t.Fatalf("Classify(%q) = %s, want %s", tc.text, intent, tc.intent)
		}
	}
}
