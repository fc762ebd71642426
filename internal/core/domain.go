package core

import (
	"strings"
	"time"
)

const (
	Daily     Frequency = "daily"
	Weekly    Frequency = "weekly"
	Monthly   Frequency = "monthly"
	Quarterly Frequency = "quarterly"
	Yearly    Frequency = "yearly"
)

const (
	Income   TransactionType = "income"
	Expense  TransactionType = "expense"
	Transfer TransactionType = "transfer"
)

const (
	StatusActive    TransactionStatus = "active"
	StatusPaused    TransactionStatus = "paused"
	StatusCompleted TransactionStatus = "completed"
)

const (
	PeriodDaily   BudgetPeriod = "daily"
	PeriodWeekly  BudgetPeriod = "weekly"
	PeriodMonthly BudgetPeriod = "monthly"
	PeriodYearly  BudgetPeriod = "yearly"
)

const (
	CategoryExpense CategoryType = "expense"
	CategoryIncome  CategoryType = "income"
)

const (
	PermissionView PermissionLevel = "view"
	PermissionEdit PermissionLevel = "edit"
)

type (
	Frequency         string
	TransactionType   string
	TransactionStatus string
	BudgetPeriod      string
	CategoryType      string
	PermissionLevel   string

	// Recurring carries the repeat schedule attached to an expense.
	Recurring struct {
		Frequency Frequency `json:"frequency"`
		EndDate   time.Time `json:"endDate,omitempty"`
	}

	ExpenseRecord struct {
		ID            string     `json:"id"`
		UserID        string     `json:"userId"`
		Amount        Money      `json:"amount"`
		Description   string     `json:"description"`
		CategoryID    string     `json:"categoryId"`
		Date          time.Time  `json:"date"`
		PaymentMethod string     `json:"paymentMethod"`
		Currency      string     `json:"currency"`
		Location      string     `json:"location,omitempty"`
		Tags          []string   `json:"tags,omitempty"`
		Recurring     *Recurring `json:"recurring,omitempty"`
		CreatedAt     time.Time  `json:"createdAt"`
		UpdatedAt     time.Time  `json:"updatedAt"`
	}

	Transaction struct {
		ID                 string            `json:"id"`
		UserID             string            `json:"userId"`
		Type               TransactionType   `json:"type"`
		Amount             Money             `json:"amount"`
		Description        string            `json:"description"`
		CategoryID         string            `json:"categoryId"`
		Date               time.Time         `json:"date"`
		Status             TransactionStatus `json:"status"`
		IsRecurring        bool              `json:"isRecurring"`
		RecurringFrequency Frequency         `json:"recurringFrequency,omitempty"`
		NextDueDate        time.Time         `json:"nextDueDate,omitempty"`
		CreatedAt          time.Time         `json:"createdAt"`
		UpdatedAt          time.Time         `json:"updatedAt"`
	}

	Threshold struct {
		Percentage float64 `json:"percentage"`
		Notified   bool    `json:"notified"`
	}

	BudgetShare struct {
		UserID     string          `json:"userId"`
		Permission PermissionLevel `json:"permission"`
	}

	Budget struct {
		ID            string        `json:"id"`
		UserID        string        `json:"userId"`
		Name          string        `json:"name"`
		Amount        Money         `json:"amount"`
		CategoryID    string        `json:"categoryId"`
		Period        BudgetPeriod  `json:"period"`
		StartDate     time.Time     `json:"startDate"`
		EndDate       time.Time     `json:"endDate,omitempty"`
		Currency      string        `json:"currency"`
		AlertsEnabled bool          `json:"alertsEnabled"`
		Thresholds    []Threshold   `json:"thresholds,omitempty"`
		Shared        []BudgetShare `json:"shared,omitempty"`
		CreatedAt     time.Time     `json:"createdAt"`
		UpdatedAt     time.Time     `json:"updatedAt"`
	}

	// BudgetView is a Budget decorated with spend attributes computed at read time.
	BudgetView struct {
		Budget
		CurrentSpending Money   `json:"currentSpending"`
		RemainingAmount Money   `json:"remainingAmount"`
		PercentageUsed  float64 `json:"percentageUsed"`
	}

	Category struct {
		ID        string       `json:"id"`
		Name      string       `json:"name"`
		Type      CategoryType `json:"type"`
		Icon      string       `json:"icon"`
		Color     string       `json:"color"`
		IsDefault bool         `json:"isDefault"`
		UserID    string       `json:"userId,omitempty"`
		CreatedAt time.Time    `json:"createdAt"`
		UpdatedAt time.Time    `json:"updatedAt"`
	}
)

var validPaymentMethods = map[string]bool{
	"cash":   true,
	"credit": true,
	"debit":  true,
	"crypto": true,
	"other":  true,
}

func (f Frequency) Valid() bool {
	switch f {
	case Daily, Weekly, Monthly, Quarterly, Yearly:
		return true
	}
	return false
}

func (t TransactionType) Valid() bool {
	switch t {
	case Income, Expense, Transfer:
		return true
	}
	return false
}

func (s TransactionStatus) Valid() bool {
	switch s {
	case StatusActive, StatusPaused, StatusCompleted:
		return true
	}
	return false
}

func (p BudgetPeriod) Valid() bool {
	switch p {
	case PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodYearly:
		return true
	}
	return false
}

func (t CategoryType) Valid() bool {
	return t == CategoryExpense || t == CategoryIncome
}

func (e ExpenseRecord) Validate() error {
	if e.UserID == "" {
		return ErrMissingUser
	}
	if e.Amount.Cents <= 0 {
		return ErrInvalidAmount
	}
	if len(strings.TrimSpace(e.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(e.Description) > 200 {
		return ErrDescriptionTooLong
	}
	if e.CategoryID == "" {
		return ErrMissingCategory
	}
	if e.Date.IsZero() {
		return ErrInvalidDate
	}
	if e.PaymentMethod != "" && !validPaymentMethods[e.PaymentMethod] {
		return ErrInvalidPaymentMethod
	}
	if e.Recurring != nil && !e.Recurring.Frequency.Valid() {
		return ErrInvalidFrequency
	}
	return nil
}

func (t Transaction) Validate() error {
	if t.UserID == "" {
		return ErrMissingUser
	}
	if !t.Type.Valid() {
		return ErrInvalidTransactionType
	}
	if t.Amount.Cents <= 0 {
		return ErrInvalidAmount
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if t.CategoryID == "" {
		return ErrMissingCategory
	}
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	if t.Status != "" && !t.Status.Valid() {
		return ErrInvalidStatus
	}
	if t.IsRecurring && !t.RecurringFrequency.Valid() {
		return ErrInvalidFrequency
	}
	return nil
}

func (b Budget) Validate() error {
	if b.UserID == "" {
		return ErrMissingUser
	}
	if len(strings.TrimSpace(b.Name)) == 0 {
		return ErrEmptyName
	}
	if b.Amount.Cents <= 0 {
		return ErrInvalidAmount
	}
	if b.CategoryID == "" {
		return ErrMissingCategory
	}
	if b.Period != "" && !b.Period.Valid() {
		return ErrInvalidPeriod
	}
	if b.StartDate.IsZero() {
		return ErrInvalidDate
	}
	if !b.EndDate.IsZero() && b.EndDate.Before(b.StartDate) {
		return ErrEndBeforeStart
	}
	for _, th := range b.Thresholds {
		if th.Percentage < 0 || th.Percentage > 100 {
			return ErrInvalidThreshold
		}
	}
	for _, sh := range b.Shared {
		if sh.Permission != PermissionView && sh.Permission != PermissionEdit {
			return ErrInvalidPermission
		}
	}
	return nil
}

func (c Category) Validate() error {
	if len(strings.TrimSpace(c.Name)) == 0 {
		return ErrEmptyName
	}
	if !c.Type.Valid() {
		return ErrInvalidCategoryType
	}
	if !c.IsDefault && c.UserID == "" {
		return ErrMissingUser
	}
	return nil
}

// EffectiveEnd returns the budget window end: EndDate when set, otherwise now.
func (b Budget) EffectiveEnd(now time.Time) time.Time {
	if b.EndDate.IsZero() {
		return now
	}
	return b.EndDate
}
