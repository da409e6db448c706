package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"billhub/internal/billview"
	"billhub/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository is the document store for users, bills and bill copy
// requests.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
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

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks the database connection.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// CreateUser inserts a user. A phone number already in use yields ErrConflict.
func (r *SQLiteRepository) CreateUser(ctx context.Context, u core.User) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, phone, name, last_name, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (phone) DO NOTHING`,
		u.ID, u.Phone, u.Name, u.LastName, u.PasswordHash, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("user %s: %w", u.Phone, ErrConflict)
	}
	return nil
}

// UserByPhone looks a user up by phone number.
func (r *SQLiteRepository) UserByPhone(ctx context.Context, phone string) (core.User, error) {
	var u core.User
	err := r.db.QueryRowContext(ctx, `
		SELECT id, phone, name, last_name, password_hash
		FROM users WHERE phone = ?`, phone).
		Scan(&u.ID, &u.Phone, &u.Name, &u.LastName, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, fmt.Errorf("user %s: %w", phone, ErrNotFound)
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user by phone: %w", err)
	}
	return u, nil
}

// PutBill inserts or replaces a bill for the owner phone.
func (r *SQLiteRepository) PutBill(ctx context.Context, phone string, b core.Bill) error {
	var due any
	if !b.DueDate.IsUndated() {
		due = b.DueDate.Raw()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO bills (user_phone, bill_id, category, amount, status, due_date, month, year)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_phone, category, bill_id) DO UPDATE SET
			amount = excluded.amount,
			status = excluded.status,
			due_date = excluded.due_date,
			month = excluded.month,
			year = excluded.year`,
		phone, b.ID, string(b.Category), b.Amount, string(b.Status), due, b.Month, b.Year)
	if err != nil {
		return fmt.Errorf("put bill %s: %w", b.ID, err)
	}
	return nil
}

// BillDocuments returns the owner's bills of one category as raw documents.
// An empty category returns every bill the owner has.
func (r *SQLiteRepository) BillDocuments(ctx context.Context, phone string, category core.Category) ([]billview.Document, error) {
	query := `
		SELECT bill_id, amount, status, due_date, month, year, category
		FROM bills WHERE user_phone = ?`
	args := []any{phone}
	if category != "" {
		query += ` AND category = ?`
		args = append(args, string(category))
	}
	query += ` ORDER BY row_id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query bills: %w", err)
	}
	defer rows.Close()

	docs := []billview.Document{}
	for rows.Next() {
		var id, status, month, year, cat string
		var amount, due any
		if err := rows.Scan(&id, &amount, &status, &due, &month, &year, &cat); err != nil {
			return nil, fmt.Errorf("scan bill: %w", err)
		}
		docs = append(docs, billview.Document{
			"billId":  id,
			"amount":  loose(amount),
			"status":  status,
			"dueDate": loose(due),
			"month":   month,
			"year":    year,
			"type":    cat,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bills: %w", err)
	}
	return docs, nil
}

// loose turns driver byte slices into strings and leaves other values alone.
func loose(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

// SetBillStatus changes only the status of one bill.
func (r *SQLiteRepository) SetBillStatus(ctx context.Context, phone string, category core.Category, billID string, status core.Status) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE bills SET status = ?
		WHERE user_phone = ? AND category = ? AND bill_id = ?`,
		string(status), phone, string(category), billID)
	if err != nil {
		return fmt.Errorf("update bill status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("bill %s: %w", billID, ErrNotFound)
	}
	return nil
}

// CreateBillRequest stores a copy request. A second request for the same
// bill by the same user yields ErrConflict.
func (r *SQLiteRepository) CreateBillRequest(ctx context.Context, req core.BillRequest) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO bill_requests (id, user_id, user_phone, user_name, user_last_name,
			bill_id, category, amount, status, due_date, month, year, requested_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_phone, bill_id) DO NOTHING`,
		req.ID, req.UserID, req.UserPhone, req.UserName, req.UserLastName,
		req.Bill.ID, string(req.Bill.Category), req.Bill.Amount, string(req.Bill.Status),
		req.Bill.DueDate.Raw(), req.Bill.Month, req.Bill.Year,
		req.RequestedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("create bill request: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("bill request %s: %w", req.Bill.ID, ErrConflict)
	}
	return nil
}

// HasBillRequest reports whether the user already asked for a copy of billID.
func (r *SQLiteRepository) HasBillRequest(ctx context.Context, phone, billID string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bill_requests WHERE user_phone = ? AND bill_id = ?`,
		phone, billID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("count bill requests: %w", err)
	}
	return n > 0, nil
}
