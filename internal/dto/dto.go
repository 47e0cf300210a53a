// dto.go
package dto

import (
	"errors"
	"fmt"

	"orders-service/internal/model"
)

// CreateOrderRequest is the payload for POST /orders.
type CreateOrderRequest struct {
	Items  []OrderItemInput `json:"items" binding:"required"`
	Status string           `json:"status"`
}

type OrderItemInput struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

// UpdateOrderRequest is the payload for PATCH /orders/:id. Merge is shallow:
// a nil field was absent from the payload and keeps its prior value.
type UpdateOrderRequest struct {
	Items  []OrderItemInput `json:"items"`
	Status *string          `json:"status"`
}

// SearchByItemsParams is the filter for GET /orders/searchByItems. Every
// field is optional; only supplied fields become query clauses.
type SearchByItemsParams struct {
	ProductID *string  `form:"productId"`
	Quantity  *int     `form:"quantity"`
	UnitPrice *float64 `form:"unitPrice"`
}

// Validate checks the creation invariants before any store write happens.
func (r CreateOrderRequest) Validate() error {
	if len(r.Items) == 0 {
		return errors.New("items must not be empty")
	}
	if err := validateItems(r.Items); err != nil {
		return err
	}
	if r.Status != "" {
		if _, ok := model.ParseStatus(r.Status); !ok {
			return fmt.Errorf("unknown status %q", r.Status)
		}
	}
	return nil
}

// Validate checks only the fields present in the partial payload.
func (r UpdateOrderRequest) Validate() error {
	if r.Items != nil {
		if len(r.Items) == 0 {
			return errors.New("items must not be empty")
		}
		if err := validateItems(r.Items); err != nil {
			return err
		}
	}
	if r.Status != nil {
		if _, ok := model.ParseStatus(*r.Status); !ok {
			return fmt.Errorf("unknown status %q", *r.Status)
		}
	}
	return nil
}

func validateItems(items []OrderItemInput) error {
	for i, it := range items {
		if it.ProductID == "" {
			return fmt.Errorf("items[%d]: productId is required", i)
		}
		if it.Quantity <= 0 {
			return fmt.Errorf("items[%d]: quantity must be positive", i)
		}
		if it.UnitPrice < 0 {
			return fmt.Errorf("items[%d]: unitPrice must not be negative", i)
		}
	}
	return nil
}

// ToModelItems converts input items to their model form.
func ToModelItems(items []OrderItemInput) []model.OrderItem {
	out := make([]model.OrderItem, 0, len(items))
	for _, it := range items {
		out = append(out, model.OrderItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}
	return out
}
