package storage

import (
	"context"
	"fmt"
	"sync"

	"billhub/internal/billview"
	"billhub/internal/core"
)

// MemoryRepository is an in-process document store with the same behaviour
// as SQLiteRepository. Used with DATA_BACKEND=memory and in tests.
type MemoryRepository struct {
	mu       sync.Mutex
	users    map[string]core.User
	bills    map[string][]core.Bill
	requests map[string]core.BillRequest
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users:    make(map[string]core.User),
		bills:    make(map[string][]core.Bill),
		requests: make(map[string]core.BillRequest),
	}
}

func (m *MemoryRepository) Ping(context.Context) error { return nil }

func (m *MemoryRepository) Close() error { return nil }

func (m *MemoryRepository) CreateUser(_ context.Context, u core.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.Phone]; ok {
		return fmt.Errorf("user %s: %w", u.Phone, ErrConflict)
	}
	m.users[u.Phone] = u
	return nil
}

func (m *MemoryRepository) UserByPhone(_ context.Context, phone string) (core.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[phone]
	if !ok {
		return core.User{}, fmt.Errorf("user %s: %w", phone, ErrNotFound)
	}
	return u, nil
}

func (m *MemoryRepository) PutBill(_ context.Context, phone string, b core.Bill) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.bills[phone]
	for i := range list {
		if list[i].ID == b.ID && list[i].Category == b.Category {
			list[i] = b
			return nil
		}
	}
	m.bills[phone] = append(list, b)
	return nil
}

func (m *MemoryRepository) BillDocuments(_ context.Context, phone string, category core.Category) ([]billview.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	docs := []billview.Document{}
	for _, b := range m.bills[phone] {
		if category != "" && b.Category != category {
			continue
		}
		doc := billview.Document{
			"billId": b.ID,
			"amount": b.Amount,
			"status": string(b.Status),
			"month":  b.Month,
			"year":   b.Year,
			"type":   string(b.Category),
		}
		if t, ok := b.DueDate.Time(); ok && !b.DueDate.IsText() {
			doc["dueDate"] = t
		} else if !b.DueDate.IsUndated() {
			doc["dueDate"] = b.DueDate.Raw()
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (m *MemoryRepository) SetBillStatus(_ context.Context, phone string, category core.Category, billID string, status core.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	found := false
	list := m.bills[phone]
	for i := range list {
		if list[i].ID == billID && list[i].Category == category {
			list[i].Status = status
			found = true
		}
	}
	if !found {
		return fmt.Errorf("bill %s: %w", billID, ErrNotFound)
	}
	return nil
}

func (m *MemoryRepository) CreateBillRequest(_ context.Context, req core.BillRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := req.UserPhone + "\x00" + req.Bill.ID
	if _, ok := m.requests[key]; ok {
		return fmt.Errorf("bill request %s: %w", req.Bill.ID, ErrConflict)
	}
	m.requests[key] = req
	return nil
}

func (m *MemoryRepository) HasBillRequest(_ context.Context, phone, billID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.requests[phone+"\x00"+billID]
	return ok, nil
}
