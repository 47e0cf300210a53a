// models.go
package model

import "time"

// Status is the closed set of order lifecycle states.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCanceled   Status = "canceled"
)

var statuses = map[Status]bool{
	StatusPending:    true,
	StatusProcessing: true,
	StatusShipped:    true,
	StatusDelivered:  true,
	StatusCanceled:   true,
}

// Valid reports whether s is a member of the status set.
func (s Status) Valid() bool {
	return statuses[s]
}

func (s Status) String() string {
	return string(s)
}

// ParseStatus maps a wire string to a Status. ok is false for anything
// outside the set.
func ParseStatus(raw string) (Status, bool) {
	s := Status(raw)
	return s, s.Valid()
}

type Order struct {
	ID        string      `json:"id" bson:"id"`
	Items     []OrderItem `json:"items" bson:"items"`
	Status    Status      `json:"status" bson:"status"`
	CreatedAt time.Time   `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt" bson:"updatedAt"`
}

type OrderItem struct {
	ProductID string  `json:"productId" bson:"productId"`
	Name      string  `json:"name,omitempty" bson:"name,omitempty"`
	Quantity  int     `json:"quantity" bson:"quantity"`
	UnitPrice float64 `json:"unitPrice" bson:"unitPrice"`
}

// DocField is the name the search document nests the order under. Query
// field paths are built from it, and the OrderDocument tags must agree with
// it: a mismatch silently breaks every search.
const DocField = "order"

// OrderDocument is the shape the search index stores and returns: the order
// nested under DocField, keyed by the order id.
type OrderDocument struct {
	ID    string `json:"id" bson:"_id"`
	Order Order  `json:"order" bson:"order"`
}
