package ledger

import (
	"sort"
	"time"

	"github.com/karteek/splitcard/internal/expense"
	"github.com/karteek/splitcard/internal/friend"
)

// FriendSummary is the derived ledger position of one friend.
type FriendSummary struct {
	FriendID        string     `json:"friend_id"`
	Name            string     `json:"name"`
	TotalOwed       float64    `json:"total_owed"`
	TotalPaid       float64    `json:"total_paid"`
	TotalExpenses   int        `json:"total_expenses"`
	PendingExpenses int        `json:"pending_expenses"`
	ActiveEMICount  int        `json:"active_emi_count"`
	LastExpenseDate *time.Time `json:"last_expense_date,omitempty"`
}

// Summary aggregates the whole ledger.
type Summary struct {
	TotalOwed           float64 `json:"total_owed"`
	TotalPaid           float64 `json:"total_paid"`
	TotalEMIOutstanding float64 `json:"total_emi_outstanding"`
	OverdueCount        int     `json:"overdue_count"`
	PendingCount        int     `json:"pending_count"`
	FriendCount         int     `json:"friend_count"`
	ExpenseCount        int     `json:"expense_count"`
}

// Aggregate computes per-friend summaries from the friend and expense
// collections. Pure function: no stored state is touched. Expenses are
// indexed by friend first, so cost is linear in friends plus expenses.
// Expenses pointing at a friend not in the collection are skipped rather
// than invented into a summary.
func Aggregate(friends []*friend.Friend, expenses []*expense.Expense, now time.Time) []FriendSummary {
	byFriend := make(map[string][]*expense.Expense, len(friends))
	for _, e := range expenses {
		byFriend[e.FriendID] = append(byFriend[e.FriendID], e)
	}

	summaries := make([]FriendSummary, 0, len(friends))
	for _, f := range friends {
		s := FriendSummary{
			FriendID: f.ID,
			Name:     f.Name,
		}
		for _, e := range byFriend[f.ID] {
			s.TotalExpenses++
			if e.IsPaid() {
				s.TotalPaid += e.TotalAmount()
			} else {
				s.TotalOwed += e.TotalAmount()
			}
			if e.Status == expense.StatusPending {
				s.PendingExpenses++
			}
			if e.IsActiveEMI() {
				s.ActiveEMICount++
			}
			if s.LastExpenseDate == nil || e.ExpenseDate.After(*s.LastExpenseDate) {
				d := e.ExpenseDate
				s.LastExpenseDate = &d
			}
		}
		summaries = append(summaries, s)
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].TotalOwed > summaries[j].TotalOwed
	})
	return summaries
}

// Overall computes the global ledger figures. EMI outstanding prefers the
// plan's total amount when installment details are present and falls back
// to the expense amount.
func Overall(friends []*friend.Friend, expenses []*expense.Expense, now time.Time) Summary {
	s := Summary{
		FriendCount:  len(friends),
		ExpenseCount: len(expenses),
	}
	for _, e := range expenses {
		if e.IsPaid() {
			s.TotalPaid += e.TotalAmount()
		} else {
			s.TotalOwed += e.TotalAmount()
		}
		if e.Status == expense.StatusPending {
			s.PendingCount++
			if e.IsOverdue(now) {
				s.OverdueCount++
			}
		}
		if e.IsActiveEMI() {
			if e.EMIDetails != nil && e.EMIDetails.TotalAmount > 0 {
				s.TotalEMIOutstanding += e.EMIDetails.TotalAmount
			} else {
				s.TotalEMIOutstanding += e.Amount
			}
		}
	}
	return s
}
