package models

import (
	"time"

	"food-ordering/money"
)

// OrderStatus represents all possible states of a food delivery order
type OrderStatus string

const (
	StatusNew       OrderStatus = "new"
	StatusPreparing OrderStatus = "preparing"
	StatusAssigned  OrderStatus = "assigned"
	StatusOnTheWay  OrderStatus = "on_the_way"
	StatusDelivered OrderStatus = "delivered"
	StatusCanceled  OrderStatus = "canceled"
)

// AllStatuses lists every status in lifecycle order.
var AllStatuses = []OrderStatus{
	StatusNew, StatusPreparing, StatusAssigned, StatusOnTheWay, StatusDelivered, StatusCanceled,
}

func (s OrderStatus) Valid() bool {
	for _, st := range AllStatuses {
		if s == st {
			return true
		}
	}
	return false
}

type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
	PaymentCard PaymentMethod = "card"
)

// CustomerInfo is the checkout form, frozen into the order.
type CustomerInfo struct {
	Name          string        `json:"name" validate:"required"`
	Phone         string        `json:"phone" validate:"required"`
	City          string        `json:"city" validate:"required"`
	Address       string        `json:"address" validate:"required"`
	Note          string        `json:"note"`
	PaymentMethod PaymentMethod `json:"paymentMethod" validate:"omitempty,oneof=cash card"`
}

type Order struct {
	ID            string         `json:"id"`
	UserID        string         `json:"userId"`
	CreatedAt     time.Time      `json:"createdAt"`
	Status        OrderStatus    `json:"status"`
	DriverID      *string        `json:"driverId"`
	DriverName    *string        `json:"driverName"`
	Customer      CustomerInfo   `json:"customer"`
	Items         []OrderLine    `json:"items"`
	SubTotal      money.Money    `json:"subTotal"`
	DeliveryFee   money.Money    `json:"deliveryFee"`
	Discount      money.Money    `json:"discount"`
	GrandTotal    money.Money    `json:"grandTotal"`
	CouponCode    *string        `json:"couponCode"`
	StatusHistory []StatusChange `json:"statusHistory,omitempty"`
}

// OrderLine is a snapshot of a cart line; later product edits never reach it.
type OrderLine struct {
	ProductID      string      `json:"productId"`
	Name           string      `json:"name"`
	Price          money.Money `json:"price"`
	Quantity       int         `json:"quantity"`
	RestaurantID   string      `json:"restaurantId"`
	RestaurantName string      `json:"restaurantName"`
}

// StatusChange tracks every status change (audit trail)
type StatusChange struct {
	From      OrderStatus `json:"from,omitempty"`
	To        OrderStatus `json:"to"`
	ChangedBy string      `json:"changedBy"` // user ID who triggered the transition
	Note      string      `json:"note,omitempty"`
	At        time.Time   `json:"at"`
}

// HasRestaurant reports whether any line comes from one of the given restaurants.
func (o *Order) HasRestaurant(ids map[string]bool) bool {
	for _, it := range o.Items {
		if ids[it.RestaurantID] {
			return true
		}
	}
	return false
}

func (o *Order) AssignedTo(driverID string) bool {
	return o.DriverID != nil && *o.DriverID == driverID
}
