// Package chat executes interpreted commands against the data layer and
// formats the assistant's replies.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"wealthpulse/internal/assistant"
	"wealthpulse/internal/charts"
	"wealthpulse/internal/core"
	applog "wealthpulse/internal/log"
	"wealthpulse/internal/store"
)

// Reply is one assistant answer. ImagePNG is set only for chart replies;
// Text always carries something the user can read.
type Reply struct {
	Text     string
	ImagePNG []byte
}

type Dispatcher struct {
	store      store.Store
	logger     *applog.Logger
	structured *applog.StructuredLogger
}

func NewDispatcher(st store.Store, logger *applog.Logger) *Dispatcher {
	return &Dispatcher{
		store:      st,
		logger:     logger,
		structured: applog.NewStructuredLogger(logger),
	}
}

// Handle interprets one message, runs the resulting command and records
// the exchange in the chat log. Validation failures become polite replies
// rather than errors; only storage faults propagate.
func (d *Dispatcher) Handle(ctx context.Context, msg assistant.Message) (Reply, error) {
	user, err := d.store.GetUser(ctx, msg.UserID)
	if err != nil {
		return Reply{}, fmt.Errorf("load user %d: %w", msg.UserID, err)
	}

	cmd, err := assistant.Interpret(msg)
	if err != nil {
		var perr *assistant.ParseError
		if !errors.As(err, &perr) {
			return Reply{}, err
		}
		d.logger.Warn("message rejected",
			slog.Int64("user_id", msg.UserID),
			slog.String("reason", perr.Detail),
		)
		return d.record(ctx, msg, Reply{Text: "⚠️ " + perr.Detail + "."})
	}

	rangeStr := ""
	if cmd.Range != nil {
		rangeStr = cmd.Range.String()
	}
	d.structured.LogMessageInterpreted(ctx, msg.UserID, cmd.Intent.String(), rangeStr, len(msg.Text))

	reply, err := d.execute(ctx, user, msg, cmd)
	if err != nil {
		return Reply{}, err
	}
	return d.record(ctx, msg, reply)
}

func (d *Dispatcher) execute(ctx context.Context, user core.User, msg assistant.Message, cmd assistant.Command) (Reply, error) {
	switch cmd.Intent {
	case assistant.IntentListExpenses:
		return d.listExpenses(ctx, user, cmd)
	case assistant.IntentSummary:
		return d.summary(ctx, user, cmd, msg.ReceivedAt)
	case assistant.IntentBudgetStatus:
		return d.budgetStatus(ctx, user, msg.ReceivedAt)
	case assistant.IntentListInvestments:
		return d.listInvestments(ctx, user)
	case assistant.IntentListCategories:
		return d.listCategories(ctx, user)
	case assistant.IntentChart:
		return d.chart(ctx, user, cmd)
	case assistant.IntentHelp:
		return Reply{Text: helpText}, nil
	default:
		return Reply{Text: unknownText(msg.Text)}, nil
	}
}

func (d *Dispatcher) record(ctx context.Context, msg assistant.Message, reply Reply) (Reply, error) {
	_, err := d.store.AppendChatMessage(ctx, core.ChatMessage{
		UserID:    msg.UserID,
		Message:   msg.Text,
		Response:  reply.Text,
		ImagePNG:  reply.ImagePNG,
		CreatedAt: msg.ReceivedAt,
	})
	if err != nil {
		return Reply{}, fmt.Errorf("append chat message: %w", err)
	}
	return reply, nil
}

func (d *Dispatcher) listExpenses(ctx context.Context, user core.User, cmd assistant.Command) (Reply, error) {
	expenses, err := d.store.ListExpenses(ctx, cmd.UserID, filterFromRange(cmd.Range, cmd.Limit))
	if err != nil {
		return Reply{}, fmt.Errorf("list expenses: %w", err)
	}
	if len(expenses) == 0 {
		return Reply{Text: "No expenses found."}, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📊 Found %d expense(s):\n\n", len(expenses))
	var total int64
	for _, e := range expenses {
		fmt.Fprintf(&b, "• %s - %s: %s (%s)\n",
			e.Date.Format("2006-01-02"), e.Title, e.Amount.Format(user.Currency), e.Category)
		total += e.Amount.Cents
	}
	fmt.Fprintf(&b, "\n💰 Total: %s", core.Money{Cents: total}.Format(user.Currency))
	return Reply{Text: b.String()}, nil
}

func (d *Dispatcher) summary(ctx context.Context, user core.User, cmd assistant.Command, ref time.Time) (Reply, error) {
	expenses, err := d.store.ListExpenses(ctx, cmd.UserID, filterFromRange(cmd.Range, 0))
	if err != nil {
		return Reply{}, fmt.Errorf("list expenses for summary: %w", err)
	}
	period := cmd.Range.String()
	if len(expenses) == 0 {
		return Reply{Text: fmt.Sprintf("No expenses found for %s.", period)}, nil
	}

	sum := summarize(expenses, cmd.Range)

	var b strings.Builder
	fmt.Fprintf(&b, "📈 Expense Summary - %s\n\n", period)
	fmt.Fprintf(&b, "Total: %s\n", sum.Total.Format(user.Currency))
	fmt.Fprintf(&b, "Count: %d expenses\n", sum.Count)
	fmt.Fprintf(&b, "Average: %s\n\n", sum.Average().Format(user.Currency))
	b.WriteString("By Category:\n")
	for _, ca := range sum.ByCategory {
		pct := float64(ca.Amount.Cents) / float64(sum.Total.Cents) * 100
		fmt.Fprintf(&b, "  • %s: %s (%.1f%%)\n", ca.Name, ca.Amount.Format(user.Currency), pct)
	}

	// The budget line only makes sense against the month the budget is
	// scoped to.
	if user.MonthlyBudget.Cents > 0 && isCurrentMonth(cmd.Range, ref) {
		remaining := core.Money{Cents: user.MonthlyBudget.Cents - sum.Total.Cents}
		pctUsed := float64(sum.Total.Cents) / float64(user.MonthlyBudget.Cents) * 100
		fmt.Fprintf(&b, "\n💳 Budget: %s\n", user.MonthlyBudget.Format(user.Currency))
		fmt.Fprintf(&b, "Remaining: %s (%.1f%% used)", remaining.Format(user.Currency), pctUsed)
	}
	return Reply{Text: b.String()}, nil
}

// BudgetStatusFor computes month-to-date spending against the user's
// monthly budget. The window runs from the first of ref's month through
// ref's day, matching what the budget reply and the REST endpoint show.
func BudgetStatusFor(ctx context.Context, st store.ExpenseStore, user core.User, ref time.Time) (core.BudgetStatus, error) {
	month := assistant.MonthRange(ref)
	today := core.DateOf(ref)
	expenses, err := st.ListExpenses(ctx, user.ID, store.ExpenseFilter{
		Start: &month.Start,
		End:   &today,
	})
	if err != nil {
		return core.BudgetStatus{}, fmt.Errorf("list expenses for budget: %w", err)
	}

	var spent int64
	for _, e := range expenses {
		spent += e.Amount.Cents
	}
	return core.BudgetStatus{
		Year:      ref.Year(),
		Month:     int(ref.Month()),
		Budget:    user.MonthlyBudget,
		Spent:     core.Money{Cents: spent},
		Remaining: core.Money{Cents: user.MonthlyBudget.Cents - spent},
	}, nil
}

func (d *Dispatcher) budgetStatus(ctx context.Context, user core.User, ref time.Time) (Reply, error) {
	if user.MonthlyBudget.Cents <= 0 {
		return Reply{Text: "No monthly budget set."}, nil
	}

	status, err := BudgetStatusFor(ctx, d.store, user, ref)
	if err != nil {
		return Reply{}, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "💳 Budget Status - %s %d\n\n", time.Month(status.Month), status.Year)
	fmt.Fprintf(&b, "Budget: %s\n", status.Budget.Format(user.Currency))
	fmt.Fprintf(&b, "Spent: %s (%.1f%%)\n", status.Spent.Format(user.Currency), status.PercentUsed())
	fmt.Fprintf(&b, "Remaining: %s\n\n", status.Remaining.Format(user.Currency))

	switch {
	case status.Remaining.Cents < 0:
		b.WriteString("⚠️ Over budget!")
	case status.PercentUsed() > 90:
		b.WriteString("⚠️ Warning: Over 90% of budget used!")
	case status.PercentUsed() > 75:
		b.WriteString("⚠️ Over 75% of budget used")
	default:
		b.WriteString("✅ Within budget")
	}
	return Reply{Text: b.String()}, nil
}

func (d *Dispatcher) listInvestments(ctx context.Context, user core.User) (Reply, error) {
	investments, err := d.store.ListInvestments(ctx, user.ID)
	if err != nil {
		return Reply{}, fmt.Errorf("list investments: %w", err)
	}
	if len(investments) == 0 {
		return Reply{Text: "No investments found."}, nil
	}

	var b strings.Builder
	b.WriteString("💼 Investments:\n\n")
	var portfolio core.PortfolioSummary
	for _, inv := range investments {
		sign := "📈"
		if inv.Returns().Cents < 0 {
			sign = "📉"
		}
		fmt.Fprintf(&b, "• %s (%s)\n", inv.Name, inv.Type)
		fmt.Fprintf(&b, "  Invested: %s | Current: %s\n",
			inv.Amount.Format(user.Currency), inv.Current().Format(user.Currency))
		fmt.Fprintf(&b, "  Returns: %s %s (%+.2f%%)\n\n",
			sign, inv.Returns().Format(user.Currency), inv.ReturnsPercent())

		portfolio.Invested.Cents += inv.Amount.Cents
		portfolio.Current.Cents += inv.Current().Cents
	}
	fmt.Fprintf(&b, "📊 Total Invested: %s\n", portfolio.Invested.Format(user.Currency))
	fmt.Fprintf(&b, "💰 Current Value: %s\n", portfolio.Current.Format(user.Currency))
	fmt.Fprintf(&b, "📈 Total Returns: %s (%+.2f%%)",
		portfolio.Returns().Format(user.Currency), portfolio.ReturnsPercent())
	return Reply{Text: b.String()}, nil
}

func (d *Dispatcher) listCategories(ctx context.Context, user core.User) (Reply, error) {
	categories, err := d.store.ListCategories(ctx, user.ID)
	if err != nil {
		return Reply{}, fmt.Errorf("list categories: %w", err)
	}
	if len(categories) == 0 {
		return Reply{Text: "No categories found."}, nil
	}

	var b strings.Builder
	b.WriteString("📁 Categories:\n\n")
	for _, c := range categories {
		b.WriteString("• " + c.Name)
		if c.Description != "" {
			b.WriteString(": " + c.Description)
		}
		b.WriteByte('\n')
	}
	return Reply{Text: b.String()}, nil
}

func (d *Dispatcher) chart(ctx context.Context, user core.User, cmd assistant.Command) (Reply, error) {
	expenses, err := d.store.ListExpenses(ctx, cmd.UserID, filterFromRange(cmd.Range, 0))
	if err != nil {
		return Reply{}, fmt.Errorf("list expenses for chart: %w", err)
	}
	period := cmd.Range.String()
	if len(expenses) == 0 {
		return Reply{Text: fmt.Sprintf("No expenses found for %s to generate chart.", period)}, nil
	}

	var png []byte
	switch cmd.Chart {
	case assistant.ChartTimeline:
		png, err = charts.Timeline("Daily Spending - "+period, dailyTotals(expenses))
	case assistant.ChartBar:
		png, err = charts.Bar("Spending by Category - "+period, aggregateByCategory(expenses))
	default:
		png, err = charts.Pie("Spending by Category - "+period, aggregateByCategory(expenses))
	}
	switch {
	case errors.Is(err, charts.ErrTooFewPoints):
		return Reply{Text: fmt.Sprintf("Only one day of spending in %s; a timeline needs at least two. Try a pie chart instead.", period)}, nil
	case errors.Is(err, charts.ErrNoData):
		return Reply{Text: fmt.Sprintf("No expenses found for %s to generate chart.", period)}, nil
	case err != nil:
		return Reply{}, fmt.Errorf("render chart: %w", err)
	}
	return Reply{Text: "Here is your spending chart for " + period + ".", ImagePNG: png}, nil
}

// isCurrentMonth reports whether rng is exactly the calendar month
// containing ref.
func isCurrentMonth(rng *assistant.DateRange, ref time.Time) bool {
	if rng == nil || rng.Unbounded {
		return false
	}
	month := assistant.MonthRange(ref)
	return rng.Start.Equal(month.Start.Time) && rng.End.Equal(month.End.Time)
}

// filterFromRange translates a command's date range into a storage filter.
func filterFromRange(rng *assistant.DateRange, limit int) store.ExpenseFilter {
	f := store.ExpenseFilter{Limit: limit}
	if rng == nil || rng.Unbounded {
		return f
	}
	start, end := rng.Start, rng.End
	f.Start, f.End = &start, &end
	return f
}

func summarize(expenses []core.Expense, rng *assistant.DateRange) core.SpendingSummary {
	sum := core.SpendingSummary{Count: len(expenses)}
	if rng != nil && !rng.Unbounded {
		sum.Start, sum.End = rng.Start, rng.End
	} else {
		sum.AllTime = true
	}
	for _, e := range expenses {
		sum.Total.Cents += e.Amount.Cents
	}
	sum.ByCategory = aggregateByCategory(expenses)
	return sum
}

func aggregateByCategory(expenses []core.Expense) []core.CategoryAmount {
	totals := make(map[string]int64)
	for _, e := range expenses {
		totals[e.Category] += e.Amount.Cents
	}
	out := make([]core.CategoryAmount, 0, len(totals))
	for name, cents := range totals {
		out = append(out, core.CategoryAmount{Name: name, Amount: core.Money{Cents: cents}})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount.Cents != out[j].Amount.Cents {
			return out[i].Amount.Cents > out[j].Amount.Cents
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func dailyTotals(expenses []core.Expense) []charts.DailyTotal {
	totals := make(map[core.Date]int64)
	for _, e := range expenses {
		totals[e.Date] += e.Amount.Cents
	}
	out := make([]charts.DailyTotal, 0, len(totals))
	for day, cents := range totals {
		out = append(out, charts.DailyTotal{Day: day, Total: core.Money{Cents: cents}})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out
}

func unknownText(message string) string {
	return fmt.Sprintf(`I understand you said: %q

I can help you manage your expenses! Try asking:
• "Show my recent expenses"
• "What's my spending summary?"
• "How much budget do I have left?"
• "Show my investments"

Type "help" for more commands.`, message)
}

const helpText = `🤖 I can help you with:

📊 Expenses
• "Show my recent expenses"
• "Show me expenses for 2025" (or any year)
• "What's my spending summary this month?"
• "List expenses from last 5 days"

💳 Budget
• "How much budget do I have left?"
• "What's my budget status?"

📈 Charts & Graphs
• "Show me a spending chart" (pie chart by category)
• "Show spending timeline" (line chart over time)
• "Show spending comparison" (bar chart by category)
• Add "this year" or "this month" to specify period

💼 Investments
• "Show my investments"
• "What's my portfolio?"

📁 Categories
• "List my categories"
• "Show all categories"

Just ask me anything about your finances!`
