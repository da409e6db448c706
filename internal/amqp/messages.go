package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"billhub/internal/core"
)

// Routing keys, one per bill event.
const (
	RoutingBillRequested = "bill.requested"
	RoutingBillPaid      = "bill.paid"
)

// BillEvent is published when a resident requests a bill copy or pays a bill.
// It carries a snapshot of the bill so consumers need no database access.
type BillEvent struct {
	Type      string    `json:"type"`
	RequestID string    `json:"requestId,omitempty"`
	Phone     string    `json:"phone"`
	Name      string    `json:"name,omitempty"`
	LastName  string    `json:"lastName,omitempty"`
	BillID    string    `json:"billId"`
	Category  string    `json:"category"`
	Amount    float64   `json:"amount"`
	DueDate   string    `json:"dueDate,omitempty"`
	Month     string    `json:"month,omitempty"`
	Year      string    `json:"year,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewBillRequested builds the event for a stored bill copy request.
func NewBillRequested(req core.BillRequest) *BillEvent {
	ev := snapshot(RoutingBillRequested, req.UserPhone, req.Bill, req.RequestedAt)
	ev.RequestID = req.ID
	ev.Name = req.UserName
	ev.LastName = req.UserLastName
	return ev
}

// NewBillPaid builds the event for a completed payment.
func NewBillPaid(phone string, b core.Bill, at time.Time) *BillEvent {
	return snapshot(RoutingBillPaid, phone, b, at)
}

func snapshot(kind, phone string, b core.Bill, at time.Time) *BillEvent {
	return &BillEvent{
		Type:      kind,
		Phone:     phone,
		BillID:    b.ID,
		Category:  string(b.Category),
		Amount:    b.Amount,
		DueDate:   b.DueDate.Raw(),
		Month:     b.Month,
		Year:      b.Year,
		Timestamp: at,
	}
}

// ToJSON converts the message to JSON bytes
func (m *BillEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// BillEventFromJSON decodes and checks an event.
func BillEventFromJSON(data []byte) (*BillEvent, error) {
	var msg BillEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Type != RoutingBillRequested && msg.Type != RoutingBillPaid {
		return nil, fmt.Errorf("unknown bill event type %q", msg.Type)
	}
	if msg.BillID == "" {
		return nil, errors.New("bill event without bill id")
	}
	return &msg, nil
}
