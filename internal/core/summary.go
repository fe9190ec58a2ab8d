package core

// CategoryAmount is an amount aggregated under one category name.
type CategoryAmount struct {
	Name   string
	Amount Money
}

// SpendingSummary aggregates expenses over an inclusive date window.
type SpendingSummary struct {
	Start      Date
	End        Date
	AllTime    bool
	Total      Money
	Count      int
	ByCategory []CategoryAmount // sorted by amount, descending
}

// Average returns the mean expense amount, or zero when empty.
func (s SpendingSummary) Average() Money {
	if s.Count == 0 {
		return Money{}
	}
	return Money{Cents: s.Total.Cents / int64(s.Count)}
}

// BudgetStatus describes month-to-date spending against a monthly budget.
type BudgetStatus struct {
	Year      int
	Month     int // 1-12
	Budget    Money
	Spent     Money
	Remaining Money
}

// PercentUsed reports spent/budget as a percentage; zero when no budget set.
func (b BudgetStatus) PercentUsed() float64 {
	if b.Budget.Cents <= 0 {
		return 0
	}
	return float64(b.Spent.Cents) / float64(b.Budget.Cents) * 100
}

// PortfolioSummary totals a user's investments.
type PortfolioSummary struct {
	Invested Money
	Current  Money
}

// Returns reports the portfolio-wide gain in cents.
func (p PortfolioSummary) Returns() Money {
	return Money{Cents: p.Current.Cents - p.Invested.Cents}
}

// ReturnsPercent reports the portfolio gain as a percentage of invested.
func (p PortfolioSummary) ReturnsPercent() float64 {
	if p.Invested.Cents <= 0 {
		return 0
	}
	return float64(p.Returns().Cents) / float64(p.Invested.Cents) * 100
}
