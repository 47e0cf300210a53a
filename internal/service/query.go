package service

import (
	"context"
	"fmt"
	"time"

	"orders-service/internal/dto"
	"orders-service/internal/model"
)

// Indexed field paths. All of them hang off model.DocField, matching how the
// write path nests the order inside the document.
const (
	fieldID            = model.DocField + ".id"
	fieldStatus        = model.DocField + ".status"
	fieldCreatedAt     = model.DocField + ".createdAt"
	fieldItemProductID = model.DocField + ".items.productId"
	fieldItemQuantity  = model.DocField + ".items.quantity"
	fieldItemUnitPrice = model.DocField + ".items.unitPrice"
)

// OrderQueryService answers the four search shapes against the index alone;
// the primary store is never consulted. Unlike the write path's fan-out,
// index failures here are read failures and are always reported.
type OrderQueryService struct {
	index SearchIndexer
}

func NewOrderQueryService(index SearchIndexer) *OrderQueryService {
	return &OrderQueryService{index: index}
}

// SearchByID matches the indexed id exactly. At most one document comes
// back, still modeled as a list.
func (s *OrderQueryService) SearchByID(ctx context.Context, id string) ([]model.OrderDocument, error) {
	var q model.SearchQuery
	q.Add(fieldID, model.ClauseTerm, id)
	return s.search(ctx, q)
}

// SearchByStatus matches the status field as text. A value outside the
// status set is not an error; it just matches nothing.
func (s *OrderQueryService) SearchByStatus(ctx context.Context, status string) ([]model.OrderDocument, error) {
	var q model.SearchQuery
	q.Add(fieldStatus, model.ClauseMatch, status)
	return s.search(ctx, q)
}

// SearchByDateRange matches start <= createdAt <= end, both bounds
// inclusive. Bounds are RFC 3339 strings; a malformed one is reported to the
// caller instead of being swallowed.
func (s *OrderQueryService) SearchByDateRange(ctx context.Context, start, end string) ([]model.OrderDocument, error) {
	from, err := time.Parse(time.RFC3339, start)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid start date %q: %v", ErrSearch, start, err)
	}
	to, err := time.Parse(time.RFC3339, end)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid end date %q: %v", ErrSearch, end, err)
	}

	var q model.SearchQuery
	q.Add(fieldCreatedAt, model.ClauseRangeFrom, from)
	q.Add(fieldCreatedAt, model.ClauseRangeTo, to)
	return s.search(ctx, q)
}

// SearchByItems builds a conjunctive query from whichever item filters were
// supplied. One clause per supplied parameter; no parameters means an
// unfiltered query.
func (s *OrderQueryService) SearchByItems(ctx context.Context, params dto.SearchByItemsParams) ([]model.OrderDocument, error) {
	var q model.SearchQuery
	for _, f := range []struct {
		field string
		kind  model.ClauseKind
		value any
		set   bool
	}{
		{fieldItemProductID, model.ClauseMatch, deref(params.ProductID), params.ProductID != nil},
		{fieldItemQuantity, model.ClauseTerm, deref(params.Quantity), params.Quantity != nil},
		{fieldItemUnitPrice, model.ClauseTerm, deref(params.UnitPrice), params.UnitPrice != nil},
	} {
		if f.set {
			q.Add(f.field, f.kind, f.value)
		}
	}
	return s.search(ctx, q)
}

func (s *OrderQueryService) search(ctx context.Context, q model.SearchQuery) ([]model.OrderDocument, error) {
	docs, err := s.index.Search(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearch, err)
	}
	return docs, nil
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
