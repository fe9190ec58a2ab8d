package assistant

import (
	"errors"
	"testing"

	"wealthpulse/internal/core"
)

func TestBuildDefaultRanges(t *testing.T) {
	ref := refDate(2026, 1, 7)

	cases := []struct {
		intent    Intent
		wantRange bool
		unbounded bool
	}{
		{IntentSummary, true, false},
		{IntentListExpenses, true, true},
		{IntentListInvestments, true, true},
		{IntentChart, true, true},
		{IntentBudgetStatus, false, false},
		{IntentListCategories, false, false},
		{IntentHelp, false, false},
		{IntentUnknown, false, false},
	}
	for _, tc := range cases {
		cmd, err := Build(tc.intent, ChartPie, nil, 0, false, 1, ref)
		if err != nil {
			t.Fatalf("%s: unexpected error %v", tc.intent, err)
		}
		if (cmd.Range != nil) != tc.wantRange {
			t.Fatalf("%s: range presence = %v, want %v", tc.intent, cmd.Range != nil, tc.wantRange)
		}
		if tc.wantRange && cmd.Range.Unbounded != tc.unbounded {
			t.Fatalf("%s: unbounded = %v, want %v", tc.intent, cmd.Range.Unbounded, tc.unbounded)
		}
	}

	// Summary with no range defaults to the month containing ref.
	cmd, err := Build(IntentSummary, ChartPie, nil, 0, false, 1, ref)
	if err != nil {
		t.Fatal(err)
	}
	if !cmd.Range.Start.Equal(core.NewDate(2026, 1, 1).Time) || !cmd.Range.End.Equal(core.NewDate(2026, 1, 31).Time) {
		t.Fatalf("summary default range = %v, want January 2026", cmd.Range)
	}
}

func TestBuildLimits(t *testing.T) {
	ref := refDate(2025, 6, 1)

	cmd, err := Build(IntentListExpenses, ChartPie, nil, 0, false, 1, ref)
	if err != nil {
		t.Fatal(err)
	}
	if cmd.Limit != DefaultExpenseLimit {
		t.Fatalf("default limit = %d, want %d", cmd.Limit, DefaultExpenseLimit)
	}

	cmd, err = Build(IntentListExpenses, ChartPie, nil, 25, true, 1, ref)
	if err != nil {
		t.Fatal(err)
	}
	if cmd.Limit != 25 {
		t.Fatalf("explicit limit = %d, want 25", cmd.Limit)
	}

	for _, bad := range []int{0, -3, maxLimit + 1} {
		_, err := Build(IntentListExpenses, ChartPie, nil, bad, true, 1, ref)
		var perr *ParseError
		if !errors.As(err, &perr) || perr.Kind != KindValidation {
			t.Fatalf("limit %d: expected validation error, got %v", bad, err)
		}
	}

	// Non-listing intents take no implicit limit.
	cmd, err = Build(IntentSummary, ChartPie, nil, 0, false, 1, ref)
	if err != nil {
		t.Fatal(err)
	}
	if cmd.Limit != 0 {
		t.Fatalf("summary limit = %d, want 0", cmd.Limit)
	}
}

func TestBuildRejectsInvertedRange(t *testing.T) {
	rng := NewRange(core.NewDate(2025, 12, 28), core.NewDate(2025, 12, 26))
	_, err := Build(IntentSummary, ChartPie, &rng, 0, false, 1, refDate(2025, 6, 1))
	var perr *ParseError
	if !errors.As(err, &perr) || perr.Kind != KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestBuildCopiesRange(t *testing.T) {
	rng := NewRange(core.NewDate(2025, 12, 1), core.NewDate(2025, 12, 15))
	cmd, err := Build(IntentSummary, ChartPie, &rng, 0, false, 1, refDate(2025, 6, 1))
	if err != nil {
		t.Fatal(err)
	}
	rng.End = core.NewDate(2030, 1, 1)
	if cmd.Range.End.Year() != 2025 {
		t.Fatal("command range must be detached from the caller's value")
	}
}
