// Package budget evaluates spending per category against configured
// category budgets and derives prioritized alerts from the result.
//
// Everything in here is a pure read over the cache. Evaluations are computed
// on demand and never stored.
package budget

import (
	"fmt"
	"sort"
	"time"

	"github.com/familos/backend/internal/cache"
	"github.com/familos/backend/internal/clock"
	"github.com/familos/backend/internal/models"
	"github.com/familos/backend/internal/types"
	"github.com/ryanuber/go-glob"
	"github.com/shopspring/decimal"
)

// CategoryState classifies a category's spending for one month.
type CategoryState string

const (
	// StateOnTrack means spending is comfortably within the budget.
	StateOnTrack CategoryState = "onTrack"

	// StateAttention means more than 70% of the budget is spent.
	StateAttention CategoryState = "attention"

	// StateNear means more than 90% is spent, or pending expenses would
	// push the category over the budget.
	StateNear CategoryState = "near"

	// StateExceeded means paid expenses alone are over the budget.
	StateExceeded CategoryState = "exceeded"

	// StateNoBudget means expenses exist for a category no budget covers.
	StateNoBudget CategoryState = "noBudget"
)

var (
	attentionRatio = decimal.NewFromFloat(0.7)
	nearRatio      = decimal.NewFromFloat(0.9)
)

// Classify derives the state from a budget's allocation, the paid spending
// and the projected spending (paid plus pending).
func Classify(allocated, actual, projected decimal.Decimal) CategoryState {
	if !allocated.IsPositive() {
		return StateNoBudget
	}

	usedRatio := actual.Div(allocated)
	projectedRatio := projected.Div(allocated)

	switch {
	case usedRatio.GreaterThan(decimal.NewFromInt(1)):
		return StateExceeded
	case projectedRatio.GreaterThan(decimal.NewFromInt(1)) || usedRatio.GreaterThan(nearRatio):
		return StateNear
	case usedRatio.GreaterThan(attentionRatio):
		return StateAttention
	default:
		return StateOnTrack
	}
}

// Report is the evaluation of one category budget, or of one uncovered
// category, for one month.
type Report struct {
	// Category is the budget's pattern, or the literal category for
	// expenses no budget covers.
	Category string `json:"category"`

	State CategoryState `json:"state"`

	AllocatedAmount decimal.Decimal `json:"allocatedAmount"`

	// ActualSpent sums the month's paid expenses of the category.
	ActualSpent decimal.Decimal `json:"actualSpent"`

	// ProjectedSpent additionally includes unpaid expenses, the spending
	// the month ends at if everything pending gets paid.
	ProjectedSpent decimal.Decimal `json:"projectedSpent"`
}

// Analyzer evaluates cached expenses against category budgets.
type Analyzer struct {
	cache *cache.Cache
	clock clock.Clock
}

// NewAnalyzer returns an analyzer reading from the given cache.
func NewAnalyzer(c *cache.Cache, clk clock.Clock) *Analyzer {
	if clk == nil {
		clk = clock.System{}
	}

	return &Analyzer{
		cache: c,
		clock: clk,
	}
}

// Evaluate reports on every configured budget and on every category that has
// expenses but no covering budget. An expense counts towards the first
// budget whose pattern matches its category; patterns use * wildcards.
func (a *Analyzer) Evaluate(month types.Month, budgets []models.CategoryBudget) []Report {
	reports := make([]Report, len(budgets))
	for i, b := range budgets {
		reports[i] = Report{
			Category:        b.Pattern,
			AllocatedAmount: b.AllocatedAmount,
			ActualSpent:     decimal.Zero,
			ProjectedSpent:  decimal.Zero,
		}
	}

	uncovered := make(map[string]*Report)
	var uncoveredOrder []string

	for _, expense := range a.cache.ExpensesForMonth(month) {
		report := a.match(reports, expense.Category)
		if report == nil {
			report = uncovered[expense.Category]
			if report == nil {
				report = &Report{
					Category:        expense.Category,
					AllocatedAmount: decimal.Zero,
					ActualSpent:     decimal.Zero,
					ProjectedSpent:  decimal.Zero,
				}
				uncovered[expense.Category] = report
				uncoveredOrder = append(uncoveredOrder, expense.Category)
			}
		}

		if expense.Paid {
			report.ActualSpent = report.ActualSpent.Add(expense.Amount)
		}
		report.ProjectedSpent = report.ProjectedSpent.Add(expense.Amount)
	}

	for i := range reports {
		reports[i].State = Classify(reports[i].AllocatedAmount, reports[i].ActualSpent, reports[i].ProjectedSpent)
	}

	for _, category := range uncoveredOrder {
		report := uncovered[category]
		report.State = StateNoBudget
		reports = append(reports, *report)
	}

	return reports
}

func (a *Analyzer) match(reports []Report, category string) *Report {
	for i := range reports {
		if glob.Glob(reports[i].Category, category) {
			return &reports[i]
		}
	}

	return nil
}

// Urgency prioritizes alerts.
type Urgency string

const (
	UrgencyCritical Urgency = "critical"
	UrgencyHigh     Urgency = "high"
	UrgencyMedium   Urgency = "medium"
	UrgencyLow      Urgency = "low"
)

func (u Urgency) rank() int {
	switch u {
	case UrgencyCritical:
		return 3
	case UrgencyHigh:
		return 2
	case UrgencyMedium:
		return 1
	default:
		return 0
	}
}

// Alert is one actionable finding, either about a category's budget or
// about an expense that is due soon.
type Alert struct {
	Urgency  Urgency       `json:"urgency"`
	Category string        `json:"category"`
	State    CategoryState `json:"state,omitempty"`
	Message  string        `json:"message"`
	DueDate  *time.Time    `json:"dueDate,omitempty"`
}

// dueSoonWindow is how far ahead unpaid expenses with a due date raise an
// alert.
const dueSoonWindow = 7 * 24 * time.Hour

// GenerateAlerts evaluates the month and turns the findings into alerts,
// most urgent first. Categories that are on track raise no alert, and
// neither do uncovered categories without any spending. Unpaid expenses
// whose due date falls within the next seven days raise an alert as well,
// a critical one once the date has passed.
func (a *Analyzer) GenerateAlerts(month types.Month, budgets []models.CategoryBudget) []Alert {
	alerts := make([]Alert, 0)

	for _, report := range a.Evaluate(month, budgets) {
		alert, ok := categoryAlert(report)
		if ok {
			alerts = append(alerts, alert)
		}
	}

	now := a.clock.Now()
	for _, expense := range a.cache.ExpensesForMonth(month) {
		if expense.Paid || expense.DueDate == nil {
			continue
		}

		due := *expense.DueDate
		if due.After(now.Add(dueSoonWindow)) {
			continue
		}

		alert := Alert{
			Urgency:  UrgencyHigh,
			Category: expense.Category,
			Message:  fmt.Sprintf("'%s' (%s) is due on %s", expense.Description, expense.Amount, due.Format("2006-01-02")),
			DueDate:  &due,
		}
		if due.Before(now) {
			alert.Urgency = UrgencyCritical
			alert.Message = fmt.Sprintf("'%s' (%s) was due on %s and is still unpaid", expense.Description, expense.Amount, due.Format("2006-01-02"))
		}

		alerts = append(alerts, alert)
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].Urgency.rank() > alerts[j].Urgency.rank()
	})

	return alerts
}

func categoryAlert(report Report) (Alert, bool) {
	alert := Alert{
		Category: report.Category,
		State:    report.State,
	}

	switch report.State {
	case StateExceeded:
		alert.Urgency = UrgencyCritical
		alert.Message = fmt.Sprintf("spending in '%s' is over its budget of %s, %s is already paid", report.Category, report.AllocatedAmount, report.ActualSpent)
	case StateNear:
		alert.Urgency = UrgencyMedium
		if report.ProjectedSpent.GreaterThan(report.AllocatedAmount) {
			alert.Urgency = UrgencyHigh
		}
		alert.Message = fmt.Sprintf("spending in '%s' is close to its budget of %s, %s of %s is committed", report.Category, report.AllocatedAmount, report.ProjectedSpent, report.AllocatedAmount)
	case StateAttention:
		alert.Urgency = UrgencyMedium
		alert.Message = fmt.Sprintf("spending in '%s' passed 70%% of its budget of %s", report.Category, report.AllocatedAmount)
	case StateNoBudget:
		if !report.ProjectedSpent.IsPositive() {
			return Alert{}, false
		}

		alert.Urgency = UrgencyLow
		alert.Message = fmt.Sprintf("'%s' has %s in expenses but no budget", report.Category, report.ProjectedSpent)
	default:
		return Alert{}, false
	}

	return alert, true
}
