package store

import (
	"time"

	"github.com/shopspring/decimal"
)

// Flag is the derived status of a task. The zero value means unset.
type Flag string

const (
	FlagUnset     Flag = ""
	FlagLost      Flag = "lost"
	FlagCompleted Flag = "completed"
	FlagWon       Flag = "won"
	FlagEstimated Flag = "estimated"
)

// Flags lists every set flag value in display order.
var Flags = []Flag{FlagWon, FlagCompleted, FlagEstimated, FlagLost}

// Transaction is a stored account transaction.
type Transaction struct {
	ID            int64
	Description   string
	DateAdded     time.Time
	FeePercentage decimal.Decimal
	FeeAmount     decimal.Decimal
	TaskType      string
	TaskID        int64
	TaskTitle     string
	ParentTaskID  int64
	Preferred     bool
	ClientID      int64
	LastSync      int64
}

// Task is a stored task. LastActivity, LastActivityBy, and Flag are optional:
// an update leaves the stored column untouched when they are nil or unset.
type Task struct {
	TaskID         int64
	ClientID       int64
	Title          string
	Estimate       bool
	Hidden         bool
	Promoted       bool
	Subscribed     bool
	Favored        bool
	Preferred      bool
	ClientFee      decimal.Decimal
	State          string
	Kind           string
	Value          decimal.Decimal
	ValueClient    decimal.Decimal
	LastSync       int64
	LastActivity   *int64
	LastActivityBy *string
	Flag           Flag
}

// Client is a stored platform client.
type Client struct {
	ClientID       int64
	FullName       string
	Role           string
	LastSignIn     *time.Time
	Pro            bool
	TimezoneOffset decimal.Decimal
	Tiny           string
	Small          string
	Medium         string
	Large          string
	LastSync       int64
}

// LineItem is a single credit or debit entry of an amount breakdown.
type LineItem struct {
	ID     int64
	Amount decimal.Decimal
}

// Amount is the payout breakdown of a task for one client.
type Amount struct {
	TaskID        int64
	ClientID      int64
	CreditRevenue LineItem
	CreditFee     LineItem
	CreditUser    LineItem
	DebitCost     LineItem
	DebitUser     LineItem
}

// AmountTotals sums every stored amount breakdown.
type AmountTotals struct {
	Rows          int
	CreditRevenue decimal.Decimal
	CreditFee     decimal.Decimal
	CreditUser    decimal.Decimal
	DebitCost     decimal.Decimal
	DebitUser     decimal.Decimal
}

// TaskFilter narrows ListTasks. Empty fields match everything.
type TaskFilter struct {
	Flag  Flag
	State string
	Limit int
}
