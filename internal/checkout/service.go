package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/ArtemisE1Tara/pdf-guide-shop/internal/cart"
	"github.com/ArtemisE1Tara/pdf-guide-shop/internal/catalog"
	"github.com/ArtemisE1Tara/pdf-guide-shop/internal/events"
	"github.com/ArtemisE1Tara/pdf-guide-shop/internal/order"
)

var (
	ErrEmptyCart          = errors.New("cart is empty")
	ErrProductUnavailable = errors.New("product is no longer available")
)

const defaultMaxConcurrent = 8

type ProductReader interface {
	Get(ctx context.Context, id string) (catalog.Product, error)
}

type OrderWriter interface {
	Create(ctx context.Context, o *order.Order) error
}

// Recorder observes checkout outcomes.
type Recorder interface {
	CheckoutOutcome(outcome string)
}

type nopRecorder struct{}

func (nopRecorder) CheckoutOutcome(string) {}

const (
	OutcomeSuccess     = "success"
	OutcomeEmpty       = "empty"
	OutcomeUnavailable = "unavailable"
	OutcomeError       = "error"
)

type Meta struct {
	CorrelationID string
	CausationID   string
}

// PriceChange reports a line whose cart snapshot no longer matches the catalog.
type PriceChange struct {
	ProductID string `json:"productId"`
	Title     string `json:"title"`
	OldPrice  int64  `json:"oldPrice"`
	NewPrice  int64  `json:"newPrice"`
}

type Result struct {
	Order        *order.Order  `json:"order"`
	Summary      cart.Summary  `json:"summary"`
	PriceChanges []PriceChange `json:"priceChanges"`
}

type Service struct {
	products      ProductReader
	orders        OrderWriter
	publisher     events.Publisher
	taxRate       decimal.Decimal
	maxConcurrent int
	logger        *slog.Logger
	recorder      Recorder
}

type Option func(*Service)

func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.recorder = r
		}
	}
}

func WithMaxConcurrent(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxConcurrent = n
		}
	}
}

func NewService(products ProductReader, orders OrderWriter, publisher events.Publisher, taxRate decimal.Decimal, logger *slog.Logger, opts ...Option) *Service {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	s := &Service{
		products:      products,
		orders:        orders,
		publisher:     publisher,
		taxRate:       taxRate,
		maxConcurrent: defaultMaxConcurrent,
		logger:        logger,
		recorder:      nopRecorder{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Checkout turns the contents of store into a pending order for userID.
// Lines are re-priced from the catalog. Once the order is stored the
// checked-out lines are settled out of the cart; anything added meanwhile
// stays.
func (s *Service) Checkout(ctx context.Context, userID string, store *cart.Store, meta Meta) (Result, error) {
	items := store.Items()
	if len(items) == 0 {
		s.recorder.CheckoutOutcome(OutcomeEmpty)
		return Result{}, ErrEmptyCart
	}

	priced, err := s.reprice(ctx, items)
	if err != nil {
		if errors.Is(err, ErrProductUnavailable) {
			s.recorder.CheckoutOutcome(OutcomeUnavailable)
		} else {
			s.recorder.CheckoutOutcome(OutcomeError)
		}
		return Result{}, err
	}

	changes := []PriceChange{}
	for i, it := range items {
		if priced[i].Price != it.Price {
			changes = append(changes, PriceChange{
				ProductID: it.ID,
				Title:     priced[i].Title,
				OldPrice:  it.Price,
				NewPrice:  priced[i].Price,
			})
		}
	}

	summary := cart.Summarize(priced, s.taxRate)
	if summary.Overflow {
		s.recorder.CheckoutOutcome(OutcomeError)
		return Result{}, cart.ErrAmountOverflow
	}
	o := &order.Order{
		UserID:      userID,
		CartKey:     store.Key(),
		Status:      order.StatusPending,
		Subtotal:    summary.Subtotal,
		Tax:         summary.Tax,
		TotalAmount: summary.Total,
	}
	for _, it := range priced {
		o.Items = append(o.Items, order.Item{
			ProductID: it.ID,
			Title:     it.Title,
			Quantity:  it.Quantity,
			Price:     it.Price,
		})
	}

	if err := s.orders.Create(ctx, o); err != nil {
		s.recorder.CheckoutOutcome(OutcomeError)
		return Result{}, fmt.Errorf("create order: %w", err)
	}

	// TODO: move publishing behind a transactional outbox so a broker outage cannot drop the event.
	if err := s.publisher.PublishCartCheckedOut(ctx, events.EventMeta{
		CorrelationID: meta.CorrelationID,
		CausationID:   meta.CausationID,
		PartitionKey:  store.Key(),
	}, checkedOutPayload(o)); err != nil {
		s.logger.ErrorContext(ctx, "publish CartCheckedOut failed", "order_id", o.ID, "err", err)
	}

	store.Settle(ctx, items)
	s.recorder.CheckoutOutcome(OutcomeSuccess)

	s.logger.InfoContext(ctx, "checkout completed",
		"order_id", o.ID,
		"user_id", userID,
		"items", len(o.Items),
		"total", o.TotalAmount,
		"price_changes", len(changes),
	)

	return Result{Order: o, Summary: summary, PriceChanges: changes}, nil
}

func (s *Service) reprice(ctx context.Context, items []cart.Item) ([]cart.Item, error) {
	priced := make([]cart.Item, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)

	for idx := range items {
		g.Go(func() error {
			it := items[idx]
			p, err := s.products.Get(gctx, it.ID)
			if err != nil {
				if errors.Is(err, catalog.ErrNotFound) {
					return fmt.Errorf("%w: %s", ErrProductUnavailable, it.ID)
				}
				return fmt.Errorf("get product %s: %w", it.ID, err)
			}
			priced[idx] = cart.Item{
				ID:       p.ID,
				Title:    p.Title,
				Price:    p.Price,
				Quantity: it.Quantity,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return priced, nil
}

func checkedOutPayload(o *order.Order) events.CartCheckedOutPayload {
	payload := events.CartCheckedOutPayload{
		OrderID:     o.ID,
		CartKey:     o.CartKey,
		UserID:      o.UserID,
		Subtotal:    o.Subtotal,
		Tax:         o.Tax,
		TotalAmount: o.TotalAmount,
		Timestamp:   o.CreatedAt,
	}
	for _, it := range o.Items {
		payload.Items = append(payload.Items, events.CartCheckedOutItem{
			ProductID: it.ProductID,
			Title:     it.Title,
			Quantity:  it.Quantity,
			Price:     it.Price,
		})
	}
	return payload
}
