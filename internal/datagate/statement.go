package datagate

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// OpeningBalance is added to the transaction sum to obtain the closing balance.
const OpeningBalance int64 = 10_000

const (
	minTransactions = 3
	maxTransactions = 6
	minAmount       = -5_000
	maxAmount       = 30_000
	statementMonth  = "2025-04"
	daysInMonth     = 30
	bankName        = "Mock Bank"
)

var descriptions = []string{"Sales Revenue", "Rent Payment", "Utility Bill", "Refund"}

// Transaction is one line of a bank statement. Amount is signed, in whole rupees.
type Transaction struct {
	Date        string `json:"date"`
	Description string `json:"description"`
	Amount      int64  `json:"amount"`
}

// BankStatement is the financial artifact released for "bank_statement".
type BankStatement struct {
	AccountNumber  string        `json:"account_number"`
	BankName       string        `json:"bank_name"`
	Transactions   []Transaction `json:"transactions"`
	ClosingBalance int64         `json:"closing_balance"`
}

// Sum returns the total of all transaction amounts.
func (s BankStatement) Sum() int64 {
	var total int64
	for _, tx := range s.Transactions {
		total += tx.Amount
	}
	return total
}

// Generator synthesises bank statements. Safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewGenerator seeds from the clock when seed is 0.
func NewGenerator(seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// BankStatement returns a fresh statement owned by the caller.
func (g *Generator) BankStatement() BankStatement {
	g.mu.Lock()
	defer g.mu.Unlock()

	n := minTransactions + g.rnd.Intn(maxTransactions-minTransactions+1)
	txs := make([]Transaction, 0, n)
	for i := 0; i < n; i++ {
		txs = append(txs, Transaction{
			Date:        fmt.Sprintf("%s-%02d", statementMonth, 1+g.rnd.Intn(daysInMonth)),
			Description: descriptions[g.rnd.Intn(len(descriptions))],
			Amount:      int64(minAmount + g.rnd.Intn(maxAmount-minAmount+1)),
		})
	}
	st := BankStatement{
		AccountNumber: fmt.Sprintf("%d", 1_000_000_000+g.rnd.Int63n(9_000_000_000)),
		BankName:      bankName,
		Transactions:  txs,
	}
	st.ClosingBalance = st.Sum() + OpeningBalance
	return st
}
