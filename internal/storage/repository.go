// Package storage implements the record store on SQLite. The repository only
// runs filtered finds and writes; grouping and summing happen in the analytics
// package so the aggregation logic stays independently testable.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"fintrack/internal/core"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// --- expenses ---

const expenseColumns = `id, user_id, amount_cents, description, category_id, date,
	payment_method, currency, location, tags, recurring, created_at, updated_at`

func (r *Repository) CreateExpense(ctx context.Context, e core.ExpenseRecord) (core.ExpenseRecord, error) {
	now := time.Now().UTC()
	e.ID = uuid.NewString()
	e.CreatedAt = now
	e.UpdatedAt = now
	if e.PaymentMethod == "" {
		e.PaymentMethod = "cash"
	}
	if e.Currency == "" {
		e.Currency = "USD"
	}

	tags, err := json.Marshal(e.Tags)
	if err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("marshal tags: %w", err)
	}
	recurring, err := marshalNullable(e.Recurring)
	if err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("marshal recurring: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO expenses (`+expenseColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.UserID, e.Amount.Cents, e.Description, e.CategoryID, e.Date.Unix(),
		e.PaymentMethod, e.Currency, e.Location, string(tags), recurring,
		now.Unix(), now.Unix())
	if err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("insert expense: %w", err)
	}
	return e, nil
}

func (r *Repository) GetExpense(ctx context.Context, userID, id string) (core.ExpenseRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+expenseColumns+` FROM expenses WHERE id = ? AND user_id = ?`, id, userID)
	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.ExpenseRecord{}, core.ErrNotFound
	}
	if err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("get expense: %w", err)
	}
	return e, nil
}

func (r *Repository) ListExpenses(ctx context.Context, userID string) ([]core.ExpenseRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+expenseColumns+` FROM expenses WHERE user_id = ? ORDER BY date DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()
	return collectExpenses(rows)
}

func (r *Repository) ListExpensesBetween(ctx context.Context, userID string, from, to time.Time) ([]core.ExpenseRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+expenseColumns+` FROM expenses
		WHERE user_id = ? AND date >= ? AND date <= ?
		ORDER BY date ASC`, userID, from.Unix(), to.Unix())
	if err != nil {
		return nil, fmt.Errorf("list expenses between: %w", err)
	}
	defer rows.Close()
	return collectExpenses(rows)
}

func (r *Repository) ListExpensesByCategoryBetween(ctx context.Context, userID, categoryID string, from, to time.Time) ([]core.ExpenseRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+expenseColumns+` FROM expenses
		WHERE user_id = ? AND category_id = ? AND date >= ? AND date <= ?
		ORDER BY date ASC`, userID, categoryID, from.Unix(), to.Unix())
	if err != nil {
		return nil, fmt.Errorf("list expenses by category: %w", err)
	}
	defer rows.Close()
	return collectExpenses(rows)
}

func (r *Repository) UpdateExpense(ctx context.Context, e core.ExpenseRecord) (core.ExpenseRecord, error) {
	e.UpdatedAt = time.Now().UTC()

	tags, err := json.Marshal(e.Tags)
	if err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("marshal tags: %w", err)
	}
	recurring, err := marshalNullable(e.Recurring)
	if err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("marshal recurring: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE expenses SET amount_cents = ?, description = ?, category_id = ?, date = ?,
			payment_method = ?, currency = ?, location = ?, tags = ?, recurring = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		e.Amount.Cents, e.Description, e.CategoryID, e.Date.Unix(),
		e.PaymentMethod, e.Currency, e.Location, string(tags), recurring,
		e.UpdatedAt.Unix(), e.ID, e.UserID)
	if err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("update expense: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return core.ExpenseRecord{}, core.ErrNotFound
	}
	return e, nil
}

func (r *Repository) DeleteExpense(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return core.ErrNotFound
	}
	return nil
}

// --- transactions ---

const transactionColumns = `id, user_id, type, amount_cents, description, category_id, date,
	status, is_recurring, recurring_frequency, next_due_date, created_at, updated_at`

// DefaultPageSize applies when a listing does not name a limit.
const DefaultPageSize = 10

// TransactionFilter narrows a transaction listing. Zero values mean
// "unfiltered"; Page is 1-based.
type TransactionFilter struct {
	Type   core.TransactionType
	Status core.TransactionStatus
	From   time.Time
	To     time.Time
	Page   int
	Limit  int
}

func (r *Repository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	now := time.Now().UTC()
	t.ID = uuid.NewString()
	t.CreatedAt = now
	t.UpdatedAt = now
	if t.Status == "" {
		t.Status = core.StatusActive
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (`+transactionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, string(t.Type), t.Amount.Cents, t.Description, t.CategoryID,
		t.Date.Unix(), string(t.Status), boolToInt(t.IsRecurring),
		string(t.RecurringFrequency), unixOrZero(t.NextDueDate), now.Unix(), now.Unix())
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	return t, nil
}

func (r *Repository) GetTransaction(ctx context.Context, userID, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+transactionColumns+` FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

func (r *Repository) ListTransactions(ctx context.Context, userID string, f TransactionFilter) ([]core.Transaction, int, error) {
	where := `WHERE user_id = ?`
	args := []any{userID}
	if f.Type != "" {
		where += ` AND type = ?`
		args = append(args, string(f.Type))
	}
	if f.Status != "" {
		where += ` AND status = ?`
		args = append(args, string(f.Status))
	}
	if !f.From.IsZero() {
		where += ` AND date >= ?`
		args = append(args, f.From.Unix())
	}
	if !f.To.IsZero() {
		where += ` AND date <= ?`
		args = append(args, f.To.Unix())
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}
	page := f.Page
	if page <= 0 {
		page = 1
	}
	args = append(args, limit, (page-1)*limit)

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+transactionColumns+` FROM transactions `+where+`
		ORDER BY date DESC LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	items, err := collectTransactions(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *Repository) ListTransactionsByTypeBetween(ctx context.Context, userID string, typ core.TransactionType, from, to time.Time) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+transactionColumns+` FROM transactions
		WHERE user_id = ? AND type = ? AND date >= ? AND date <= ?
		ORDER BY date ASC`, userID, string(typ), from.Unix(), to.Unix())
	if err != nil {
		return nil, fmt.Errorf("list transactions by type: %w", err)
	}
	defer rows.Close()
	return collectTransactions(rows)
}

// ListRecurringTransactions returns the user's active recurring transactions.
func (r *Repository) ListRecurringTransactions(ctx context.Context, userID string) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+transactionColumns+` FROM transactions
		WHERE user_id = ? AND is_recurring = 1 AND status = 'active'
		ORDER BY date DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list recurring transactions: %w", err)
	}
	defer rows.Close()
	return collectTransactions(rows)
}

// ListDueRecurring returns active recurring transactions across all users
// whose next due date has passed. Used by the recurring worker.
func (r *Repository) ListDueRecurring(ctx context.Context, now time.Time) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+transactionColumns+` FROM transactions
		WHERE is_recurring = 1 AND status = 'active'
			AND next_due_date > 0 AND next_due_date <= ?
		ORDER BY next_due_date ASC`, now.Unix())
	if err != nil {
		return nil, fmt.Errorf("list due recurring: %w", err)
	}
	defer rows.Close()
	return collectTransactions(rows)
}

func (r *Repository) UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	t.UpdatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions SET type = ?, amount_cents = ?, description = ?, category_id = ?,
			date = ?, status = ?, is_recurring = ?, recurring_frequency = ?, next_due_date = ?,
			updated_at = ?
		WHERE id = ? AND user_id = ?`,
		string(t.Type), t.Amount.Cents, t.Description, t.CategoryID, t.Date.Unix(),
		string(t.Status), boolToInt(t.IsRecurring), string(t.RecurringFrequency),
		unixOrZero(t.NextDueDate), t.UpdatedAt.Unix(), t.ID, t.UserID)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return core.Transaction{}, core.ErrNotFound
	}
	return t, nil
}

func (r *Repository) DeleteTransaction(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return core.ErrNotFound
	}
	return nil
}

// --- budgets ---

const budgetColumns = `id, user_id, name, amount_cents, category_id, period, start_date,
	end_date, currency, alerts_enabled, thresholds, shared, created_at, updated_at`

func (r *Repository) CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	now := time.Now().UTC()
	b.ID = uuid.NewString()
	b.CreatedAt = now
	b.UpdatedAt = now
	if b.Period == "" {
		b.Period = core.PeriodMonthly
	}
	if b.Currency == "" {
		b.Currency = "USD"
	}

	thresholds, err := json.Marshal(b.Thresholds)
	if err != nil {
		return core.Budget{}, fmt.Errorf("marshal thresholds: %w", err)
	}
	shared, err := json.Marshal(b.Shared)
	if err != nil {
		return core.Budget{}, fmt.Errorf("marshal shared: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO budgets (`+budgetColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.UserID, b.Name, b.Amount.Cents, b.CategoryID, string(b.Period),
		b.StartDate.Unix(), unixOrZero(b.EndDate), b.Currency,
		boolToInt(b.AlertsEnabled), string(thresholds), string(shared),
		now.Unix(), now.Unix())
	if err != nil {
		return core.Budget{}, fmt.Errorf("insert budget: %w", err)
	}
	return b, nil
}

func (r *Repository) GetBudget(ctx context.Context, userID, id string) (core.Budget, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+budgetColumns+` FROM budgets WHERE id = ? AND user_id = ?`, id, userID)
	b, err := scanBudget(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, core.ErrNotFound
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget: %w", err)
	}
	return b, nil
}

func (r *Repository) ListBudgets(ctx context.Context, userID string) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+budgetColumns+` FROM budgets WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var out []core.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *Repository) UpdateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	b.UpdatedAt = time.Now().UTC()

	thresholds, err := json.Marshal(b.Thresholds)
	if err != nil {
		return core.Budget{}, fmt.Errorf("marshal thresholds: %w", err)
	}
	shared, err := json.Marshal(b.Shared)
	if err != nil {
		return core.Budget{}, fmt.Errorf("marshal shared: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE budgets SET name = ?, amount_cents = ?, category_id = ?, period = ?,
			start_date = ?, end_date = ?, currency = ?, alerts_enabled = ?,
			thresholds = ?, shared = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		b.Name, b.Amount.Cents, b.CategoryID, string(b.Period),
		b.StartDate.Unix(), unixOrZero(b.EndDate), b.Currency,
		boolToInt(b.AlertsEnabled), string(thresholds), string(shared),
		b.UpdatedAt.Unix(), b.ID, b.UserID)
	if err != nil {
		return core.Budget{}, fmt.Errorf("update budget: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return core.Budget{}, core.ErrNotFound
	}
	return b, nil
}

func (r *Repository) DeleteBudget(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM budgets WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return core.ErrNotFound
	}
	return nil
}

// --- categories ---

const categoryColumns = `id, name, type, icon, color, is_default, user_id, created_at, updated_at`

func (r *Repository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	now := time.Now().UTC()
	c.ID = uuid.NewString()
	c.CreatedAt = now
	c.UpdatedAt = now
	if c.Icon == "" {
		c.Icon = "default-icon"
	}
	if c.Color == "" {
		c.Color = "#000000"
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO categories (`+categoryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, string(c.Type), c.Icon, c.Color, boolToInt(c.IsDefault),
		c.UserID, now.Unix(), now.Unix())
	if err != nil {
		return core.Category{}, fmt.Errorf("insert category: %w", err)
	}
	return c, nil
}

// GetCategory returns a category visible to the user: one of their own or a
// shared default.
func (r *Repository) GetCategory(ctx context.Context, userID, id string) (core.Category, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+categoryColumns+` FROM categories
		WHERE id = ? AND (user_id = ? OR is_default = 1)`, id, userID)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, core.ErrNotFound
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

// ListCategories returns the shared defaults plus the user's own, name
// ascending.
func (r *Repository) ListCategories(ctx context.Context, userID string) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+categoryColumns+` FROM categories
		WHERE user_id = ? OR is_default = 1
		ORDER BY name ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CategoryNameExists checks the (name, owner) uniqueness rule: a name clashes
// when the user already has it or a default carries it.
func (r *Repository) CategoryNameExists(ctx context.Context, userID, name string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM categories
		WHERE name = ? AND (user_id = ? OR is_default = 1)`, name, userID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check category name: %w", err)
	}
	return n > 0, nil
}

func (r *Repository) UpdateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	c.UpdatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		UPDATE categories SET name = ?, type = ?, icon = ?, color = ?, updated_at = ?
		WHERE id = ? AND user_id = ? AND is_default = 0`,
		c.Name, string(c.Type), c.Icon, c.Color, c.UpdatedAt.Unix(), c.ID, c.UserID)
	if err != nil {
		return core.Category{}, fmt.Errorf("update category: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return core.Category{}, core.ErrNotFound
	}
	return c, nil
}

func (r *Repository) DeleteCategory(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM categories WHERE id = ? AND user_id = ? AND is_default = 0`, id, userID)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return core.ErrNotFound
	}
	return nil
}

// --- scan helpers ---

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (core.ExpenseRecord, error) {
	var (
		e                   core.ExpenseRecord
		date, created, upd  int64
		tagsJSON            string
		recurringJSON       sql.NullString
	)
	err := row.Scan(&e.ID, &e.UserID, &e.Amount.Cents, &e.Description, &e.CategoryID,
		&date, &e.PaymentMethod, &e.Currency, &e.Location, &tagsJSON, &recurringJSON,
		&created, &upd)
	if err != nil {
		return core.ExpenseRecord{}, err
	}
	e.Date = time.Unix(date, 0).UTC()
	e.CreatedAt = time.Unix(created, 0).UTC()
	e.UpdatedAt = time.Unix(upd, 0).UTC()
	if err := json.Unmarshal([]byte(tagsJSON), &e.Tags); err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("unmarshal tags: %w", err)
	}
	if recurringJSON.Valid && recurringJSON.String != "" {
		var rec core.Recurring
		if err := json.Unmarshal([]byte(recurringJSON.String), &rec); err != nil {
			return core.ExpenseRecord{}, fmt.Errorf("unmarshal recurring: %w", err)
		}
		e.Recurring = &rec
	}
	return e, nil
}

func collectExpenses(rows *sql.Rows) ([]core.ExpenseRecord, error) {
	var out []core.ExpenseRecord
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t                        core.Transaction
		date, due, created, upd  int64
		typ, status, freq        string
		recurring                int
	)
	err := row.Scan(&t.ID, &t.UserID, &typ, &t.Amount.Cents, &t.Description, &t.CategoryID,
		&date, &status, &recurring, &freq, &due, &created, &upd)
	if err != nil {
		return core.Transaction{}, err
	}
	t.Type = core.TransactionType(typ)
	t.Status = core.TransactionStatus(status)
	t.IsRecurring = recurring != 0
	t.RecurringFrequency = core.Frequency(freq)
	t.Date = time.Unix(date, 0).UTC()
	if due > 0 {
		t.NextDueDate = time.Unix(due, 0).UTC()
	}
	t.CreatedAt = time.Unix(created, 0).UTC()
	t.UpdatedAt = time.Unix(upd, 0).UTC()
	return t, nil
}

func collectTransactions(rows *sql.Rows) ([]core.Transaction, error) {
	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func scanBudget(row rowScanner) (core.Budget, error) {
	var (
		b                          core.Budget
		start, end, created, upd   int64
		period                     string
		alerts                     int
		thresholdsJSON, sharedJSON string
	)
	err := row.Scan(&b.ID, &b.UserID, &b.Name, &b.Amount.Cents, &b.CategoryID, &period,
		&start, &end, &b.Currency, &alerts, &thresholdsJSON, &sharedJSON, &created, &upd)
	if err != nil {
		return core.Budget{}, err
	}
	b.Period = core.BudgetPeriod(period)
	b.AlertsEnabled = alerts != 0
	b.StartDate = time.Unix(start, 0).UTC()
	if end > 0 {
		b.EndDate = time.Unix(end, 0).UTC()
	}
	b.CreatedAt = time.Unix(created, 0).UTC()
	b.UpdatedAt = time.Unix(upd, 0).UTC()
	if err := json.Unmarshal([]byte(thresholdsJSON), &b.Thresholds); err != nil {
		return core.Budget{}, fmt.Errorf("unmarshal thresholds: %w", err)
	}
	if err := json.Unmarshal([]byte(sharedJSON), &b.Shared); err != nil {
		return core.Budget{}, fmt.Errorf("unmarshal shared: %w", err)
	}
	return b, nil
}

func scanCategory(row rowScanner) (core.Category, error) {
	var (
		c            core.Category
		typ          string
		isDefault    int
		created, upd int64
	)
	err := row.Scan(&c.ID, &c.Name, &typ, &c.Icon, &c.Color, &isDefault, &c.UserID, &created, &upd)
	if err != nil {
		return core.Category{}, err
	}
	c.Type = core.CategoryType(typ)
	c.IsDefault = isDefault != 0
	c.CreatedAt = time.Unix(created, 0).UTC()
	c.UpdatedAt = time.Unix(upd, 0).UTC()
	return c, nil
}

func marshalNullable(v any) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}
	// Typed nil pointers also mean absent.
	if rec, ok := v.(*core.Recurring); ok && rec == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func unixOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}
