package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"billhub/internal/amqp"
	"billhub/internal/billview"
	"billhub/internal/cache"
	"billhub/internal/core"
	"billhub/internal/log"
	"billhub/internal/storage"
)

// PaymentMethod is how a mock payment was made.
type PaymentMethod string

const (
	PayByCard PaymentMethod = "card"
	PayByZain PaymentMethod = "zain"
)

// PayInput is the payment confirmation form.
type PayInput struct {
	Phone   string        `validate:"required"`
	Service string        `validate:"required"`
	BillID  string        `validate:"required"`
	Method  PaymentMethod `validate:"required,oneof=card zain"`
}

// Summary is what the home screen shows.
type Summary struct {
	DisplayName string
	Latest      []core.Bill
}

// BillService reads bills through the view model and records requests and
// payments. Lists are cached per owner and category.
type BillService struct {
	bills     BillStore
	users     UserStore
	publisher EventPublisher
	cache     *cache.LRUCache[[]core.Bill]
	now       func() time.Time
	logger    *log.Logger
	events    *log.StructuredLogger
}

// NewBillService wires the service. publisher may be nil.
func NewBillService(bills BillStore, users UserStore, publisher EventPublisher, billCache *cache.LRUCache[[]core.Bill], logger *log.Logger) *BillService {
	logger = logger.WithComponent(log.ComponentBills)
	return &BillService{
		bills:     bills,
		users:     users,
		publisher: publisher,
		cache:     billCache,
		now:       time.Now,
		logger:    logger,
		events:    log.NewStructuredLogger(logger),
	}
}

func cacheKey(phone string, c core.Category) string {
	return "bills:" + phone + ":" + string(c)
}

// Bills returns every bill the owner has in category, in store order.
// An empty category means all categories.
func (s *BillService) Bills(ctx context.Context, phone string, c core.Category) ([]core.Bill, error) {
	key := cacheKey(phone, c)
	if s.cache != nil {
		if hit, ok := s.cache.Get(key); ok {
			return hit, nil
		}
	}
	docs, err := s.bills.BillDocuments(ctx, phone, c)
	if err != nil {
		return nil, fmt.Errorf("load bills: %w", err)
	}
	out := billview.FromDocuments(docs)
	if s.cache != nil {
		s.cache.Set(key, out)
	}
	return out, nil
}

// List returns the owner's bills in category filtered and sorted by sel.
func (s *BillService) List(ctx context.Context, phone string, c core.Category, sel billview.Selection) ([]core.Bill, error) {
	all, err := s.Bills(ctx, phone, c)
	if err != nil {
		return nil, err
	}
	return billview.FilterAndSort(all, sel), nil
}

// Summary returns the display name and the newest bill of each category.
func (s *BillService) Summary(ctx context.Context, phone string) (Summary, error) {
	u, err := s.user(ctx, phone)
	if err != nil {
		return Summary{}, err
	}
	all, err := s.Bills(ctx, phone, "")
	if err != nil {
		return Summary{}, err
	}
	latest := billview.LatestPerCategoryAt(all, s.now())
	return Summary{DisplayName: u.DisplayName(), Latest: billview.InDisplayOrder(latest)}, nil
}

// Find returns one bill by id.
func (s *BillService) Find(ctx context.Context, phone string, c core.Category, billID string) (core.Bill, error) {
	all, err := s.Bills(ctx, phone, c)
	if err != nil {
		return core.Bill{}, err
	}
	for _, b := range all {
		if b.ID == billID {
			return b, nil
		}
	}
	return core.Bill{}, ErrBillNotFound
}

// RequestCopy records that the owner wants a copy of a bill and announces
// it. A repeated request returns ErrAlreadyRequested.
func (s *BillService) RequestCopy(ctx context.Context, phone string, c core.Category, billID string) (core.BillRequest, error) {
	u, err := s.user(ctx, phone)
	if err != nil {
		return core.BillRequest{}, err
	}

	exists, err := s.bills.HasBillRequest(ctx, phone, billID)
	if err != nil {
		return core.BillRequest{}, fmt.Errorf("check bill request: %w", err)
	}
	if exists {
		return core.BillRequest{}, ErrAlreadyRequested
	}

	b, err := s.Find(ctx, phone, c, billID)
	if err != nil {
		return core.BillRequest{}, err
	}

	req := core.BillRequest{
		ID:           uuid.NewString(),
		UserID:       u.ID,
		UserName:     u.Name,
		UserLastName: u.LastName,
		UserPhone:    u.Phone,
		Bill:         b,
		RequestedAt:  s.now(),
	}
	if err := s.bills.CreateBillRequest(ctx, req); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return core.BillRequest{}, ErrAlreadyRequested
		}
		return core.BillRequest{}, fmt.Errorf("save bill request: %w", err)
	}
	s.events.LogBillRequested(ctx, string(c), b.ID, b.Amount, req.ID)

	s.publish(ctx, amqp.NewBillRequested(req))
	return req, nil
}

// Pay marks a bill as paid. Only the status changes.
func (s *BillService) Pay(ctx context.Context, in PayInput) (core.Bill, error) {
	if err := check(in); err != nil {
		return core.Bill{}, err
	}
	if _, err := s.user(ctx, in.Phone); err != nil {
		return core.Bill{}, err
	}
	c := core.CategoryOrDefault(in.Service)

	b, err := s.Find(ctx, in.Phone, c, in.BillID)
	if err != nil {
		return core.Bill{}, err
	}
	if err := s.bills.SetBillStatus(ctx, in.Phone, c, in.BillID, core.StatusPaid); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return core.Bill{}, ErrBillNotFound
		}
		return core.Bill{}, fmt.Errorf("update bill: %w", err)
	}
	s.Invalidate(in.Phone)

	b.Status = core.StatusPaid
	s.events.LogBillPaid(ctx, string(c), b.ID, b.Amount, string(in.Method))
	s.publish(ctx, amqp.NewBillPaid(in.Phone, b, s.now()))
	return b, nil
}

// Invalidate drops every cached list of the owner.
func (s *BillService) Invalidate(phone string) {
	if s.cache != nil {
		s.cache.DeletePrefix("bills:" + phone + ":")
	}
}

func (s *BillService) user(ctx context.Context, phone string) (core.User, error) {
	u, err := s.users.UserByPhone(ctx, phone)
	if errors.Is(err, storage.ErrNotFound) {
		return core.User{}, ErrUserNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("look up user: %w", err)
	}
	return u, nil
}

// publish never fails the caller: the request is already stored.
func (s *BillService) publish(ctx context.Context, ev *amqp.BillEvent) {
	if s.publisher == nil {
		s.logger.DebugContext(ctx, "AMQP client not available, skipping bill event", log.FieldRoutingKey, ev.Type)
		return
	}
	if err := s.publisher.PublishBillEvent(ctx, ev); err != nil {
		s.events.LogError(ctx, "Failed to publish bill event", err, log.OpPublish,
			log.LogFields{log.FieldRoutingKey: ev.Type, log.FieldBillID: ev.BillID})
	}
}
