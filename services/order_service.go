package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"food-ordering/events"
	"food-ordering/logger"
	"food-ordering/models"
	"food-ordering/money"
	"food-ordering/pricing"
	"food-ordering/repository"
	"food-ordering/statemachine"
)

// Summary is the admin dashboard view of the ledger.
type Summary struct {
	TotalOrders      int                        `json:"totalOrders"`
	ByStatus         map[models.OrderStatus]int `json:"byStatus"`
	DeliveredRevenue money.Money                `json:"deliveredRevenue"`
}

type OrderService struct {
	db        *repository.DatabaseRepository
	carts     *repository.CartRepository
	coupons   *repository.CouponRepository
	publisher events.Publisher
	validate  *validator.Validate
	log       logger.Logger
	now       func() time.Time
}

func NewOrderService(
	db *repository.DatabaseRepository,
	carts *repository.CartRepository,
	coupons *repository.CouponRepository,
	publisher events.Publisher,
	log logger.Logger,
) *OrderService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &OrderService{
		db:        db,
		carts:     carts,
		coupons:   coupons,
		publisher: publisher,
		validate:  validator.New(),
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Checkout turns the user's cart into an order. The cart and coupon locks are
// held for the whole operation. The order is appended to the ledger first;
// if clearing the cart or coupon fails afterwards, the order is returned
// together with an error wrapping models.ErrCartNotCleared.
func (s *OrderService) Checkout(ctx context.Context, userID string, form models.CustomerInfo) (models.Order, error) {
	unlockCart := s.carts.Lock(userID)
	defer unlockCart()
	unlockCoupon := s.coupons.Lock(userID)
	defer unlockCoupon()

	cart, err := s.carts.Load(ctx, userID)
	if err != nil {
		return models.Order{}, err
	}
	if len(cart) == 0 {
		return models.Order{}, models.ErrEmptyCart
	}

	form = normalizeForm(form)
	if err := s.validate.Struct(form); err != nil {
		return models.Order{}, validationError(err)
	}

	stored, err := s.coupons.Load(ctx, userID)
	if err != nil {
		return models.Order{}, err
	}
	applied := refreshCoupon(stored)

	var order models.Order
	err = s.db.Update(ctx, func(db *models.Database) error {
		if _, ok := db.FindUser(userID); !ok {
			return models.ErrUserNotFound
		}
		lines := cart.Lines()
		items := make([]models.OrderLine, 0, len(lines))
		for _, l := range lines {
			p, ok := db.FindProduct(l.ProductID)
			if !ok {
				return fmt.Errorf("%w: %s", models.ErrProductNotFound, l.Name)
			}
			if !p.Available {
				return fmt.Errorf("%w: %s", models.ErrProductUnavailable, l.Name)
			}
			if _, ok := db.FindRestaurant(l.RestaurantID); !ok {
				return fmt.Errorf("%w: %s", models.ErrRestaurantNotFound, l.RestaurantName)
			}
			items = append(items, models.OrderLine{
				ProductID:      l.ProductID,
				Name:           l.Name,
				Price:          l.Price,
				Quantity:       l.Quantity,
				RestaurantID:   l.RestaurantID,
				RestaurantName: l.RestaurantName,
			})
		}

		quote := pricing.Price(cart, applied)
		now := s.now()
		order = models.Order{
			ID:          uuid.NewString(),
			UserID:      userID,
			CreatedAt:   now,
			Status:      models.StatusNew,
			Customer:    form,
			Items:       items,
			SubTotal:    quote.SubTotal,
			DeliveryFee: quote.DeliveryFee,
			Discount:    quote.Discount,
			GrandTotal:  quote.GrandTotal,
			StatusHistory: []models.StatusChange{{
				To:        models.StatusNew,
				ChangedBy: userID,
				Note:      "Order placed by customer",
				At:        now,
			}},
		}
		if applied != nil {
			code := applied.Code
			order.CouponCode = &code
		}
		db.Orders = append(db.Orders, order)
		return nil
	})
	if err != nil {
		return models.Order{}, err
	}

	s.log.Info("order_created", "order committed to ledger", map[string]any{
		"order_id":    order.ID,
		"user_id":     userID,
		"items":       len(order.Items),
		"grand_total": order.GrandTotal.String(),
	})
	s.publish(ctx, events.OrderEvent{
		Type:       events.TypeOrderCreated,
		OrderID:    order.ID,
		UserID:     userID,
		NewStatus:  order.Status,
		ChangedBy:  userID,
		GrandTotal: order.GrandTotal,
		Timestamp:  order.CreatedAt,
	})

	if err := s.carts.Delete(ctx, userID); err != nil {
		s.log.Error("cart_not_cleared", "order placed but cart could not be cleared", map[string]any{"order_id": order.ID}, err)
		return order, fmt.Errorf("%w: %v", models.ErrCartNotCleared, err)
	}
	if err := s.coupons.Delete(ctx, userID); err != nil {
		s.log.Error("cart_not_cleared", "order placed but coupon could not be cleared", map[string]any{"order_id": order.ID}, err)
		return order, fmt.Errorf("%w: %v", models.ErrCartNotCleared, err)
	}
	return order, nil
}

func normalizeForm(f models.CustomerInfo) models.CustomerInfo {
	f.Name = strings.TrimSpace(f.Name)
	f.Phone = strings.TrimSpace(f.Phone)
	f.City = strings.TrimSpace(f.City)
	f.Address = strings.TrimSpace(f.Address)
	f.Note = strings.TrimSpace(f.Note)
	f.PaymentMethod = models.PaymentMethod(strings.ToLower(strings.TrimSpace(string(f.PaymentMethod))))
	if f.PaymentMethod == "" {
		f.PaymentMethod = models.PaymentCash
	}
	return f
}

// UpdateStatus moves an order through the lifecycle on behalf of actor.
// Admins may touch any order, owners only orders holding a line from one of
// their restaurants, drivers only orders assigned to them.
func (s *OrderService) UpdateStatus(ctx context.Context, actor models.UserRef, orderID string, to models.OrderStatus, note string) (models.Order, error) {
	if actor.Role == models.RoleCustomer || !actor.Role.Valid() {
		return models.Order{}, models.ErrUnauthorized
	}

	var (
		updated models.Order
		from    models.OrderStatus
	)
	err := s.db.Update(ctx, func(db *models.Database) error {
		o, ok := db.FindOrder(orderID)
		if !ok {
			return models.ErrOrderNotFound
		}
		if !canManage(db, actor, o) {
			return models.ErrUnauthorized
		}
		if err := statemachine.CanTransition(o.Status, to); err != nil {
			return err
		}
		from = o.Status
		if from != to {
			o.Status = to
			o.StatusHistory = append(o.StatusHistory, models.StatusChange{
				From:      from,
				To:        to,
				ChangedBy: actor.ID,
				Note:      strings.TrimSpace(note),
				At:        s.now(),
			})
		}
		updated = *o
		return nil
	})
	if err != nil {
		return models.Order{}, err
	}
	if from == to {
		return updated, nil
	}

	s.log.Info("order_status_changed", "order status updated", map[string]any{
		"order_id": orderID,
		"from":     from,
		"to":       to,
		"actor_id": actor.ID,
		"role":     actor.Role,
	})
	s.publish(ctx, events.OrderEvent{
		Type:       events.TypeStatusChanged,
		OrderID:    orderID,
		UserID:     updated.UserID,
		OldStatus:  from,
		NewStatus:  to,
		ChangedBy:  actor.ID,
		GrandTotal: updated.GrandTotal,
		Timestamp:  s.now(),
	})
	return updated, nil
}

// AssignDriver sets or, with an empty driverID, clears the order's driver.
// Only admins may do it. Assigning a driver to a new order advances it to
// assigned; unassigning never moves the status back.
func (s *OrderService) AssignDriver(ctx context.Context, actor models.UserRef, orderID, driverID string) (models.Order, error) {
	if actor.Role != models.RoleAdmin {
		return models.Order{}, models.ErrUnauthorized
	}
	driverID = strings.TrimSpace(driverID)

	var (
		updated models.Order
		from    models.OrderStatus
	)
	err := s.db.Update(ctx, func(db *models.Database) error {
		o, ok := db.FindOrder(orderID)
		if !ok {
			return models.ErrOrderNotFound
		}
		if statemachine.IsTerminal(o.Status) {
			return &models.TransitionError{From: o.Status, To: models.StatusAssigned}
		}
		from = o.Status

		if driverID == "" {
			o.DriverID, o.DriverName = nil, nil
			updated = *o
			return nil
		}

		d, ok := db.FindUser(driverID)
		if !ok {
			return models.ErrUserNotFound
		}
		if d.Role != models.RoleDriver {
			return &models.ValidationError{Fields: []string{"driverId"}}
		}
		id, name := d.ID, d.Name
		o.DriverID, o.DriverName = &id, &name
		if o.Status == models.StatusNew {
			o.Status = models.StatusAssigned
			o.StatusHistory = append(o.StatusHistory, models.StatusChange{
				From:      models.StatusNew,
				To:        models.StatusAssigned,
				ChangedBy: actor.ID,
				Note:      "Driver assigned: " + name,
				At:        s.now(),
			})
		}
		updated = *o
		return nil
	})
	if err != nil {
		return models.Order{}, err
	}

	s.log.Info("order_driver_assigned", "order driver changed", map[string]any{
		"order_id":  orderID,
		"driver_id": driverID,
		"from":      from,
		"to":        updated.Status,
		"actor_id":  actor.ID,
	})
	s.publish(ctx, events.OrderEvent{
		Type:       events.TypeDriverAssigned,
		OrderID:    orderID,
		UserID:     updated.UserID,
		OldStatus:  from,
		NewStatus:  updated.Status,
		DriverID:   driverID,
		ChangedBy:  actor.ID,
		GrandTotal: updated.GrandTotal,
		Timestamp:  s.now(),
	})
	return updated, nil
}

// Get returns one order if actor may see it.
func (s *OrderService) Get(ctx context.Context, actor models.UserRef, orderID string) (models.Order, error) {
	db, err := s.db.Load(ctx)
	if err != nil {
		return models.Order{}, err
	}
	o, ok := db.FindOrder(orderID)
	if !ok {
		return models.Order{}, models.ErrOrderNotFound
	}
	if actor.Role == models.RoleCustomer {
		if o.UserID != actor.ID {
			return models.Order{}, models.ErrUnauthorized
		}
		return *o, nil
	}
	if !canManage(db, actor, o) {
		return models.Order{}, models.ErrUnauthorized
	}
	return *o, nil
}

func (s *OrderService) OrdersForCustomer(ctx context.Context, userID string) ([]models.Order, error) {
	return s.filter(ctx, func(_ *models.Database, o *models.Order) bool { return o.UserID == userID })
}

// OrdersForOwner lists orders containing at least one line from a restaurant
// ownerID owns.
func (s *OrderService) OrdersForOwner(ctx context.Context, ownerID string) ([]models.Order, error) {
	var owned map[string]bool
	return s.filter(ctx, func(db *models.Database, o *models.Order) bool {
		if owned == nil {
			owned = db.OwnedRestaurantIDs(ownerID)
		}
		return o.HasRestaurant(owned)
	})
}

func (s *OrderService) OrdersForDriver(ctx context.Context, driverID string) ([]models.Order, error) {
	return s.filter(ctx, func(_ *models.Database, o *models.Order) bool { return o.AssignedTo(driverID) })
}

// AllOrders lists every order, or only those in status when it is set.
func (s *OrderService) AllOrders(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	return s.filter(ctx, func(_ *models.Database, o *models.Order) bool {
		return status == "" || o.Status == status
	})
}

func (s *OrderService) Summary(ctx context.Context) (Summary, error) {
	db, err := s.db.Load(ctx)
	if err != nil {
		return Summary{}, err
	}
	sum := Summary{ByStatus: map[models.OrderStatus]int{}, DeliveredRevenue: money.Zero}
	for _, st := range models.AllStatuses {
		sum.ByStatus[st] = 0
	}
	for _, o := range db.Orders {
		sum.TotalOrders++
		sum.ByStatus[o.Status]++
		if o.Status == models.StatusDelivered {
			sum.DeliveredRevenue = sum.DeliveredRevenue.Add(o.GrandTotal)
		}
	}
	return sum, nil
}

// filter returns matching orders, newest first.
func (s *OrderService) filter(ctx context.Context, keep func(*models.Database, *models.Order) bool) ([]models.Order, error) {
	db, err := s.db.Load(ctx)
	if err != nil {
		return nil, err
	}
	out := []models.Order{}
	for i := range db.Orders {
		if keep(db, &db.Orders[i]) {
			out = append(out, db.Orders[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func canManage(db *models.Database, actor models.UserRef, o *models.Order) bool {
	switch actor.Role {
	case models.RoleAdmin:
		return true
	case models.RoleOwner:
		return o.HasRestaurant(db.OwnedRestaurantIDs(actor.ID))
	case models.RoleDriver:
		return o.AssignedTo(actor.ID)
	}
	return false
}

func (s *OrderService) publish(ctx context.Context, ev events.OrderEvent) {
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.log.Error("event_publish_failed", "failed to publish order event", map[string]any{
			"order_id":    ev.OrderID,
			"routing_key": ev.RoutingKey(),
		}, err)
	}
}
