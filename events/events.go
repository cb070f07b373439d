package events

import (
	"context"
	"time"

	"food-ordering/models"
	"food-ordering/money"
)

//go:generate mockgen -destination=mock_publisher.go -package=events food-ordering/events Publisher

const (
	TypeOrderCreated   = "order.created"
	TypeStatusChanged  = "order.status_changed"
	TypeDriverAssigned = "order.driver_assigned"
)

// OrderEvent is published after an order change has been committed.
type OrderEvent struct {
	Type       string             `json:"type"`
	OrderID    string             `json:"order_id"`
	UserID     string             `json:"user_id"`
	OldStatus  models.OrderStatus `json:"old_status,omitempty"`
	NewStatus  models.OrderStatus `json:"new_status"`
	DriverID   string             `json:"driver_id,omitempty"`
	ChangedBy  string             `json:"changed_by"`
	GrandTotal money.Money        `json:"grand_total"`
	Timestamp  time.Time          `json:"timestamp"`
}

// RoutingKey is order.created, order.status.<status> or order.driver_assigned.
func (e OrderEvent) RoutingKey() string {
	if e.Type == TypeStatusChanged {
		return "order.status." + string(e.NewStatus)
	}
	return e.Type
}

type Publisher interface {
	Publish(ctx context.Context, ev OrderEvent) error
	Close() error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, OrderEvent) error { return nil }
func (NopPublisher) Close() error                              { return nil }
