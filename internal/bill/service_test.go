package bill_test

import (
	"context"
	"log/slog"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/karteek/splitcard/internal"
	"github.com/karteek/splitcard/internal/bill"
	billDatamodel "github.com/karteek/splitcard/internal/core/datamodel/bill"
	"github.com/karteek/splitcard/internal/core/events"
)

type mockBillRepository struct {
	bills        map[string]*billDatamodel.ProcessedBill
	createError  error
	finalizeMode string
	finalized    int
}

func newMockBillRepository() *mockBillRepository {
	return &mockBillRepository{bills: make(map[string]*billDatamodel.ProcessedBill)}
}

func (m *mockBillRepository) Create(_ context.Context, dm *billDatamodel.ProcessedBill) error {
	if m.createError != nil {
		return m.createError
	}
	m.bills[dm.ID] = dm
	return nil
}

func (m *mockBillRepository) GetByID(_ context.Context, userID, billID string) (*billDatamodel.ProcessedBill, error) {
	dm, ok := m.bills[billID]
	if !ok || dm.UserID != userID {
		return nil, internal.ErrBillNotFound
	}
	return dm, nil
}

func (m *mockBillRepository) GetAll(_ context.Context, userID string) ([]*billDatamodel.ProcessedBill, error) {
	var out []*billDatamodel.ProcessedBill
	for _, dm := range m.bills {
		if dm.UserID == userID {
			out = append(out, dm)
		}
	}
	return out, nil
}

func (m *mockBillRepository) GetTransaction(_ context.Context, userID, billID, transactionID string) (*billDatamodel.BillTransaction, error) {
	dm, ok := m.bills[billID]
	if !ok || dm.UserID != userID {
		return nil, internal.ErrBillNotFound
	}
	for i := range dm.Transactions {
		if dm.Transactions[i].ID == transactionID {
			return &dm.Transactions[i], nil
		}
	}
	return nil, internal.ErrTransactionNotFound
}

func (m *mockBillRepository) UpdateTransaction(_ context.Context, transaction *billDatamodel.BillTransaction) error {
	dm, ok := m.bills[transaction.BillID]
	if !ok {
		return internal.ErrBillNotFound
	}
	for i := range dm.Transactions {
		if dm.Transactions[i].ID == transaction.ID {
			dm.Transactions[i] = *transaction
			return nil
		}
	}
	return internal.ErrTransactionNotFound
}

func (m *mockBillRepository) Finalize(_ context.Context, userID, billID, cardBalanceMode string) (*bill.FinalizeOutcome, error) {
	dm, ok := m.bills[billID]
	if !ok || dm.UserID != userID {
		return nil, internal.ErrBillNotFound
	}
	m.finalized++
	m.finalizeMode = cardBalanceMode

	var count int
	var amount float64
	var friendIDs []string
	seen := make(map[string]bool)
	for i := range dm.Transactions {
		t := &dm.Transactions[i]
		if t.Status == bill.TransactionStatusAssigned && !t.Converted {
			t.Converted = true
			count++
			amount += t.Amount
			if t.AssignedFriendID != nil && !seen[*t.AssignedFriendID] {
				seen[*t.AssignedFriendID] = true
				friendIDs = append(friendIDs, *t.AssignedFriendID)
			}
		}
	}
	domainBill := bill.FromDataModel(dm)
	domainBill.RecomputeStatus()
	dm.Status = domainBill.Status
	return &bill.FinalizeOutcome{
		Bill:              domainBill,
		ConvertedCount:    count,
		ConvertedAmount:   amount,
		AffectedFriendIDs: friendIDs,
	}, nil
}

type mockReferenceChecker struct {
	friends map[string]bool
	cards   map[string]bool
}

func (m *mockReferenceChecker) FriendExists(_ context.Context, _, friendID string) (bool, error) {
	return m.friends[friendID], nil
}

func (m *mockReferenceChecker) CardExists(_ context.Context, _, cardID string) (bool, error) {
	return m.cards[cardID], nil
}

var _ = Describe("Bill Service", func() {
	var (
		repo    *mockBillRepository
		refs    *mockReferenceChecker
		bus     *events.EventBus
		service *bill.Service
		ctx     context.Context
	)

	const userID = "user-1"

	BeforeEach(func() {
		repo = newMockBillRepository()
		refs = &mockReferenceChecker{
			friends: map[string]bool{"friend-1": true},
			cards:   map[string]bool{"card-1": true},
		}
		bus = events.NewEventBus(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})))
		service = bill.NewService(repo, refs, bus, internal.BillConfig{CardBalanceMode: internal.CardBalanceModeAssignedOnly})
		ctx = context.Background()
	})

	// Events go out on goroutines, so assertions on them poll.
	collectEvents := func(eventType string) <-chan events.Event {
		received := make(chan events.Event, 8)
		bus.Subscribe(eventType, func(_ context.Context, e events.Event) error {
			received <- e
			return nil
		})
		return received
	}

	Describe("UploadBill", func() {
		It("parses statement text into an unassigned pending bill", func() {
			b, err := service.UploadBill(ctx, userID, &bill.UploadBillDTO{
				CreditCardID:  "card-1",
				StatementText: "Coffee Shop ₹450.00\nGrocery Store ₹2,150.75",
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(b.Status).To(Equal(bill.BillStatusPending))
			Expect(b.Transactions).To(HaveLen(2))
			for _, t := range b.Transactions {
				Expect(t.Status).To(Equal(bill.TransactionStatusUnassigned))
				Expect(t.Converted).To(BeFalse())
			}
		})

		It("sums parsed amounts into the total when none is declared", func() {
			b, err := service.UploadBill(ctx, userID, &bill.UploadBillDTO{
				CreditCardID:  "card-1",
				StatementText: "Coffee Shop ₹450.00\nGrocery Store ₹2,150.75",
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(b.TotalAmount).To(BeNumerically("~", 2600.75, 1e-9))
		})

		It("defaults the due date to 30 days after the bill date", func() {
			billDate := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
			b, err := service.UploadBill(ctx, userID, &bill.UploadBillDTO{
				CreditCardID:  "card-1",
				StatementText: "Coffee Shop ₹450.00",
				BillDate:      &billDate,
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(b.DueDate).To(Equal(billDate.AddDate(0, 0, 30)))
		})

		It("rejects statement text with no parseable transactions", func() {
			_, err := service.UploadBill(ctx, userID, &bill.UploadBillDTO{
				CreditCardID:  "card-1",
				StatementText: "nothing useful in here",
			})

			Expect(err).To(HaveOccurred())
			_, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
		})

		It("rejects an unknown card", func() {
			_, err := service.UploadBill(ctx, userID, &bill.UploadBillDTO{
				CreditCardID:  "card-unknown",
				StatementText: "Coffee Shop ₹450.00",
			})

			Expect(err).To(HaveOccurred())
			Expect(len(repo.bills)).To(BeZero())
		})

		It("announces the parsed bill on the event bus", func() {
			received := collectEvents(events.EventTypeBillParsed)

			b, err := service.UploadBill(ctx, userID, &bill.UploadBillDTO{
				CreditCardID:  "card-1",
				StatementText: "Coffee Shop ₹450.00\nGrocery Store ₹2,150.75",
			})
			Expect(err).NotTo(HaveOccurred())

			var e events.Event
			Eventually(received).Should(Receive(&e))
			payload := e.Payload().(map[string]interface{})
			Expect(payload["bill_id"]).To(Equal(b.ID))
			Expect(payload["credit_card_id"]).To(Equal("card-1"))
			Expect(payload["transaction_count"]).To(Equal(2))
		})
	})

	Describe("CreateBill", func() {
		It("accepts manual transactions with the same shape as parsed ones", func() {
			b, err := service.CreateBill(ctx, userID, &bill.CreateBillDTO{
				CreditCardID: "card-1",
				Transactions: []bill.ManualTransactionDTO{
					{Description: "Dinner", Amount: 1800},
					{Description: "Fuel", Amount: 2000, Category: "Transportation"},
				},
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(b.Transactions).To(HaveLen(2))
			Expect(b.Transactions[0].Category).To(Equal("General"))
			Expect(b.Transactions[1].Category).To(Equal("Transportation"))
			Expect(b.TotalAmount).To(BeNumerically("~", 3800, 1e-9))
		})

		It("rejects an empty transaction list", func() {
			_, err := service.CreateBill(ctx, userID, &bill.CreateBillDTO{
				CreditCardID: "card-1",
			})

			Expect(err).To(HaveOccurred())
		})
	})

	Describe("AssignTransaction", func() {
		var billID, txID string

		BeforeEach(func() {
			b, err := service.CreateBill(ctx, userID, &bill.CreateBillDTO{
				CreditCardID: "card-1",
				Transactions: []bill.ManualTransactionDTO{{Description: "Dinner", Amount: 1800}},
			})
			Expect(err).NotTo(HaveOccurred())
			billID = b.ID
			txID = b.Transactions[0].ID
		})

		It("marks the transaction assigned with the friend reference", func() {
			b, err := service.AssignTransaction(ctx, userID, billID, txID, &bill.AssignTransactionDTO{FriendID: "friend-1"})

			Expect(err).NotTo(HaveOccurred())
			Expect(b.Transactions[0].Status).To(Equal(bill.TransactionStatusAssigned))
			Expect(b.Transactions[0].AssignedFriendID).NotTo(BeNil())
			Expect(*b.Transactions[0].AssignedFriendID).To(Equal("friend-1"))
		})

		It("rejects an unknown friend", func() {
			_, err := service.AssignTransaction(ctx, userID, billID, txID, &bill.AssignTransactionDTO{FriendID: "ghost"})

			Expect(err).To(HaveOccurred())
		})

		It("refuses to assign an ignored transaction", func() {
			_, err := service.IgnoreTransaction(ctx, userID, billID, txID)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.AssignTransaction(ctx, userID, billID, txID, &bill.AssignTransactionDTO{FriendID: "friend-1"})
			Expect(err).To(HaveOccurred())
		})

		It("refuses to reassign an already converted transaction", func() {
			_, err := service.AssignTransaction(ctx, userID, billID, txID, &bill.AssignTransactionDTO{FriendID: "friend-1"})
			Expect(err).NotTo(HaveOccurred())
			_, err = service.FinalizeBill(ctx, userID, billID)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.AssignTransaction(ctx, userID, billID, txID, &bill.AssignTransactionDTO{FriendID: "friend-1"})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("FinalizeBill", func() {
		It("passes the configured card balance mode to the repository", func() {
			b, err := service.CreateBill(ctx, userID, &bill.CreateBillDTO{
				CreditCardID: "card-1",
				Transactions: []bill.ManualTransactionDTO{{Description: "Dinner", Amount: 1800}},
			})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.FinalizeBill(ctx, userID, b.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.finalizeMode).To(Equal(internal.CardBalanceModeAssignedOnly))
		})

		It("announces recomputed balances for every friend touched by conversion", func() {
			b, err := service.CreateBill(ctx, userID, &bill.CreateBillDTO{
				CreditCardID: "card-1",
				Transactions: []bill.ManualTransactionDTO{{Description: "Dinner", Amount: 1800}},
			})
			Expect(err).NotTo(HaveOccurred())
			_, err = service.AssignTransaction(ctx, userID, b.ID, b.Transactions[0].ID, &bill.AssignTransactionDTO{FriendID: "friend-1"})
			Expect(err).NotTo(HaveOccurred())

			received := collectEvents(events.EventTypeBalanceRecomputed)

			_, err = service.FinalizeBill(ctx, userID, b.ID)
			Expect(err).NotTo(HaveOccurred())

			var e events.Event
			Eventually(received).Should(Receive(&e))
			payload := e.Payload().(map[string]interface{})
			Expect(payload["friend_id"]).To(Equal("friend-1"))
			Expect(payload["user_id"]).To(Equal(userID))
		})

		It("does not announce balances when nothing converted", func() {
			b, err := service.CreateBill(ctx, userID, &bill.CreateBillDTO{
				CreditCardID: "card-1",
				Transactions: []bill.ManualTransactionDTO{{Description: "Dinner", Amount: 1800}},
			})
			Expect(err).NotTo(HaveOccurred())

			received := collectEvents(events.EventTypeBalanceRecomputed)

			_, err = service.FinalizeBill(ctx, userID, b.ID)
			Expect(err).NotTo(HaveOccurred())

			Consistently(received, "200ms").ShouldNot(Receive())
		})

		It("returns not found for a foreign bill", func() {
			b, err := service.CreateBill(ctx, userID, &bill.CreateBillDTO{
				CreditCardID: "card-1",
				Transactions: []bill.ManualTransactionDTO{{Description: "Dinner", Amount: 1800}},
			})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.FinalizeBill(ctx, "someone-else", b.ID)
			Expect(err).To(MatchError(internal.ErrBillNotFound))
		})
	})
})

var _ = Describe("ProcessedBill RecomputeStatus", func() {
	tx := func(status string, converted bool) bill.Transaction {
		return bill.Transaction{Status: status, Converted: converted}
	}

	It("stays pending while nothing has converted", func() {
		b := &bill.ProcessedBill{Transactions: []bill.Transaction{
			tx(bill.TransactionStatusUnassigned, false),
			tx(bill.TransactionStatusAssigned, false),
		}}
		b.RecomputeStatus()
		Expect(b.Status).To(Equal(bill.BillStatusPending))
	})

	It("is partially processed when some lines converted and others wait", func() {
		b := &bill.ProcessedBill{Transactions: []bill.Transaction{
			tx(bill.TransactionStatusAssigned, true),
			tx(bill.TransactionStatusUnassigned, false),
		}}
		b.RecomputeStatus()
		Expect(b.Status).To(Equal(bill.BillStatusPartiallyProcessed))
	})

	It("is processed when every non-ignored line is assigned and converted", func() {
		b := &bill.ProcessedBill{Transactions: []bill.Transaction{
			tx(bill.TransactionStatusAssigned, true),
			tx(bill.TransactionStatusIgnored, false),
		}}
		b.RecomputeStatus()
		Expect(b.Status).To(Equal(bill.BillStatusProcessed))
	})

	It("treats an all-ignored bill as processed", func() {
		b := &bill.ProcessedBill{Transactions: []bill.Transaction{
			tx(bill.TransactionStatusIgnored, false),
			tx(bill.TransactionStatusIgnored, false),
		}}
		b.RecomputeStatus()
		Expect(b.Status).To(Equal(bill.BillStatusProcessed))
	})
})
