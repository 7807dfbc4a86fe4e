package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeExpenseCreated    = "expense.created"
	EventTypeExpenseUpdated    = "expense.updated"
	EventTypeExpenseDeleted    = "expense.deleted"
	EventTypeExpensePaid       = "expense.paid"
	EventTypeBillParsed        = "bill.parsed"
	EventTypeBillFinalized     = "bill.finalized"
	EventTypeFriendDeleted     = "friend.deleted"
	EventTypeCardDeleted       = "card.deleted"
	EventTypeBalanceRecomputed = "ledger.balance_recomputed"
)

// ExpenseChangedEvent is published after any expense mutation that can move
// a friend's owed balance.
type ExpenseChangedEvent struct {
	BaseEvent
	ExpenseID string  `json:"expense_id"`
	FriendID  string  `json:"friend_id"`
	UserID    string  `json:"user_id"`
	Amount    float64 `json:"amount"`
}

func NewExpenseChangedEvent(eventType, expenseID, friendID, userID string, amount float64) *ExpenseChangedEvent {
	return &ExpenseChangedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"expense_id": expenseID,
				"friend_id":  friendID,
				"user_id":    userID,
				"amount":     amount,
			},
		},
		ExpenseID: expenseID,
		FriendID:  friendID,
		UserID:    userID,
		Amount:    amount,
	}
}

// BillParsedEvent is published when a raw statement upload produced a
// bill with candidate transactions.
type BillParsedEvent struct {
	BaseEvent
	BillID           string `json:"bill_id"`
	CreditCardID     string `json:"credit_card_id"`
	UserID           string `json:"user_id"`
	TransactionCount int    `json:"transaction_count"`
}

func NewBillParsedEvent(billID, cardID, userID string, transactionCount int) *BillParsedEvent {
	return &BillParsedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeBillParsed,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"bill_id":           billID,
				"credit_card_id":    cardID,
				"user_id":           userID,
				"transaction_count": transactionCount,
			},
		},
		BillID:           billID,
		CreditCardID:     cardID,
		UserID:           userID,
		TransactionCount: transactionCount,
	}
}

type BillFinalizedEvent struct {
	BaseEvent
	BillID          string  `json:"bill_id"`
	CreditCardID    string  `json:"credit_card_id"`
	UserID          string  `json:"user_id"`
	ConvertedCount  int     `json:"converted_count"`
	ConvertedAmount float64 `json:"converted_amount"`
	BillStatus      string  `json:"bill_status"`
}

func NewBillFinalizedEvent(billID, cardID, userID string, convertedCount int, convertedAmount float64, billStatus string) *BillFinalizedEvent {
	return &BillFinalizedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeBillFinalized,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"bill_id":          billID,
				"credit_card_id":   cardID,
				"user_id":          userID,
				"converted_count":  convertedCount,
				"converted_amount": convertedAmount,
				"bill_status":      billStatus,
			},
		},
		BillID:          billID,
		CreditCardID:    cardID,
		UserID:          userID,
		ConvertedCount:  convertedCount,
		ConvertedAmount: convertedAmount,
		BillStatus:      billStatus,
	}
}

// BalanceRecomputedEvent marks one friend's owed total having been
// rederived from the expense rows.
type BalanceRecomputedEvent struct {
	BaseEvent
	FriendID string `json:"friend_id"`
	UserID   string `json:"user_id"`
}

func NewBalanceRecomputedEvent(friendID, userID string) *BalanceRecomputedEvent {
	return &BalanceRecomputedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeBalanceRecomputed,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"friend_id": friendID,
				"user_id":   userID,
			},
		},
		FriendID: friendID,
		UserID:   userID,
	}
}
