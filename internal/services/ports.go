package services

import (
	"context"

	"billhub/internal/amqp"
	"billhub/internal/billview"
	"billhub/internal/core"
)

// Ports used by the services. storage.SQLiteRepository and
// storage.MemoryRepository implement both store interfaces.
type (
	UserStore interface {
		CreateUser(ctx context.Context, u core.User) error
		UserByPhone(ctx context.Context, phone string) (core.User, error)
	}

	BillStore interface {
		PutBill(ctx context.Context, phone string, b core.Bill) error
		BillDocuments(ctx context.Context, phone string, category core.Category) ([]billview.Document, error)
		SetBillStatus(ctx context.Context, phone string, category core.Category, billID string, status core.Status) error
		CreateBillRequest(ctx context.Context, req core.BillRequest) error
		HasBillRequest(ctx context.Context, phone, billID string) (bool, error)
	}

	// EventPublisher sends bill events to the ledger worker.
	EventPublisher interface {
		PublishBillEvent(ctx context.Context, ev *amqp.BillEvent) error
	}
)
