package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"orders-service/internal/dto"
	"orders-service/internal/model"
)

// OrderStore is the narrow persistence surface the coordinator works
// against. FindByID returns (nil, nil) when the row does not exist; only the
// mutating operations above it turn absence into an error.
type OrderStore interface {
	Insert(ctx context.Context, o *model.Order) error
	FindByID(ctx context.Context, id string) (*model.Order, error)
	FindAll(ctx context.Context) ([]model.Order, error)
	Update(ctx context.Context, o *model.Order) error
	Delete(ctx context.Context, id string) error
}

// OrderRepository adds transaction scoping: fn runs against a store bound to
// a single transaction, committed when fn returns nil and rolled back
// otherwise.
type OrderRepository interface {
	OrderStore
	InTx(ctx context.Context, fn func(ctx context.Context, tx OrderStore) error) error
}

// EventPublisher emits an order lifecycle event to the broker.
type EventPublisher interface {
	Emit(ctx context.Context, topic string, payload any) error
}

// SearchIndexer is the document-index client. Index overwrites the whole
// document, Upsert merges the order into it (creating it if absent), Search
// runs a conjunctive query.
type SearchIndexer interface {
	Index(ctx context.Context, doc model.OrderDocument) error
	Upsert(ctx context.Context, doc model.OrderDocument) error
	Search(ctx context.Context, q model.SearchQuery) ([]model.OrderDocument, error)
}

// Error taxonomy. Callers test with errors.Is; the messages carry the order
// id where one is involved.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("order not found")
	ErrInternal   = errors.New("internal failure")
	ErrSearch     = errors.New("search failed")
)

// Event topics published by the write path.
const (
	TopicOrderCreated       = "order_created"
	TopicOrderStatusUpdated = "order_status_updated"
)

// OrderService is the write coordinator: it owns create/update/remove
// semantics against the primary store and fans the committed state out to the
// event stream and the search index. The primary store is authoritative; the
// fan-out is best effort and never affects the caller's result.
type OrderService struct {
	repo   OrderRepository
	events EventPublisher
	index  SearchIndexer

	wg sync.WaitGroup
}

func NewOrderService(repo OrderRepository, events EventPublisher, index SearchIndexer) *OrderService {
	return &OrderService{repo: repo, events: events, index: index}
}

// Create validates the request, persists the new order in a single
// transaction and, after commit, propagates it downstream.
func (s *OrderService) Create(ctx context.Context, req dto.CreateOrderRequest) (*model.Order, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	now := time.Now().UTC()
	order := &model.Order{
		ID:        uuid.New().String(),
		Items:     dto.ToModelItems(req.Items),
		Status:    model.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.Status != "" {
		st, _ := model.ParseStatus(req.Status)
		order.Status = st
	}

	err := s.repo.InTx(ctx, func(ctx context.Context, tx OrderStore) error {
		return tx.Insert(ctx, order)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create order: %v", ErrInternal, err)
	}

	s.propagate(*order, TopicOrderCreated, false)
	return order, nil
}

// Update loads the order inside a transaction, applies a shallow merge of
// the partial payload and, after commit, propagates the new state. Fields
// absent from the payload keep their prior values.
func (s *OrderService) Update(ctx context.Context, id string, req dto.UpdateOrderRequest) (*model.Order, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	var updated *model.Order
	err := s.repo.InTx(ctx, func(ctx context.Context, tx OrderStore) error {
		existing, err := tx.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return fmt.Errorf("%w: order %q", ErrNotFound, id)
		}
		if req.Items != nil {
			existing.Items = dto.ToModelItems(req.Items)
		}
		if req.Status != nil {
			st, _ := model.ParseStatus(*req.Status)
			existing.Status = st
		}
		existing.UpdatedAt = time.Now().UTC()
		if err := tx.Update(ctx, existing); err != nil {
			return err
		}
		updated = existing
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: update order %q: %v", ErrInternal, id, err)
	}

	s.propagate(*updated, TopicOrderStatusUpdated, true)
	return updated, nil
}

// Remove deletes the order row. It emits no event and does not retract the
// search document; the index keeps its last known copy.
func (s *OrderService) Remove(ctx context.Context, id string) error {
	err := s.repo.InTx(ctx, func(ctx context.Context, tx OrderStore) error {
		existing, err := tx.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return fmt.Errorf("%w: order %q", ErrNotFound, id)
		}
		return tx.Delete(ctx, id)
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("%w: remove order %q: %v", ErrInternal, id, err)
	}
	return nil
}

// FindOne reads straight from the primary store. A missing id yields
// (nil, nil), not an error.
func (s *OrderService) FindOne(ctx context.Context, id string) (*model.Order, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *OrderService) FindAll(ctx context.Context) ([]model.Order, error) {
	return s.repo.FindAll(ctx)
}

// propagate fans the committed order out to the broker and the index. The
// two calls run off the request goroutine, carry their own contexts and are
// independent of each other; either failing is logged and nothing more.
func (s *OrderService) propagate(o model.Order, topic string, upsert bool) {
	s.wg.Add(2)

	go func() {
		defer s.wg.Done()
		if err := s.events.Emit(context.Background(), topic, o); err != nil {
			log.Printf("order %s: emit %s failed: %v", o.ID, topic, err)
		}
	}()

	go func() {
		defer s.wg.Done()
		doc := model.OrderDocument{ID: o.ID, Order: o}
		var err error
		if upsert {
			err = s.index.Upsert(context.Background(), doc)
		} else {
			err = s.index.Index(context.Background(), doc)
		}
		if err != nil {
			log.Printf("order %s: index write failed: %v", o.ID, err)
		}
	}()
}

// Wait blocks until all in-flight propagation has finished. Used on
// shutdown so pending fan-out is not cut off mid-write.
func (s *OrderService) Wait() {
	s.wg.Wait()
}
