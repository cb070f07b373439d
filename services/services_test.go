package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"food-ordering/events"
	"food-ordering/logger"
	"food-ordering/models"
	"food-ordering/money"
	"food-ordering/repository"
	"food-ordering/store"
)

type fixture struct {
	store   store.Store
	db      *repository.DatabaseRepository
	carts   *repository.CartRepository
	auth    *AuthService
	catalog *CatalogService
	cart    *CartService
	coupons *CouponService
	orders  *OrderService
	seed    *models.Database
}

func newFixture(t *testing.T, s store.Store, pub events.Publisher) *fixture {
	t.Helper()
	log := logger.Nop()
	docs := repository.NewDocuments(s)
	db := repository.NewDatabaseRepository(docs, repository.DefaultSeed(Hasher(bcrypt.MinCost)), log)
	carts := repository.NewCartRepository(docs, log)
	coupons := repository.NewCouponRepository(docs, log)
	sessions := repository.NewSessionRepository(docs)

	seed, err := db.Load(context.Background())
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return &fixture{
		store:   s,
		db:      db,
		carts:   carts,
		auth:    NewAuthService(db, sessions, bcrypt.MinCost, log),
		catalog: NewCatalogService(db, log),
		cart:    NewCartService(db, carts, coupons, log),
		coupons: NewCouponService(coupons, log),
		orders:  NewOrderService(db, carts, coupons, pub, log),
		seed:    seed,
	}
}

func (f *fixture) admin() models.UserRef    { return f.seed.Users[0].Ref() }
func (f *fixture) owner() models.UserRef    { return f.seed.Users[1].Ref() }
func (f *fixture) driver() models.UserRef   { return f.seed.Users[2].Ref() }
func (f *fixture) customer() models.UserRef { return f.seed.Users[3].Ref() }

func (f *fixture) product(i int) models.Product { return f.seed.Products[i] }

var validForm = models.CustomerInfo{
	Name:    "Sara",
	Phone:   "0600000000",
	City:    "Rabat",
	Address: "1 Test Street",
}

// placeOrder checks out one unit of product i for the demo customer.
func (f *fixture) placeOrder(t *testing.T, i int) models.Order {
	t.Helper()
	ctx := context.Background()
	if _, err := f.cart.AddItem(ctx, f.customer().ID, f.product(i).ID); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	o, err := f.orders.Checkout(ctx, f.customer().ID, validForm)
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	return o
}

// ── Auth ───────────────────────────────────────────────────────────

func TestLogin(t *testing.T) {
	f := newFixture(t, store.NewMemoryStore(), nil)
	ctx := context.Background()

	if _, err := f.auth.Login(ctx, "user@demo.com", "wrong"); !errors.Is(err, models.ErrInvalidCredentials) {
		t.Fatalf("wrong password: err = %v", err)
	}
	if _, err := f.auth.Login(ctx, "nobody@demo.com", "User123"); !errors.Is(err, models.ErrInvalidCredentials) {
		t.Fatalf("unknown email: err = %v", err)
	}

	u, err := f.auth.Login(ctx, "  USER@Demo.com ", "User123")
	if err != nil {
		t.Fatal(err)
	}
	if u.Role != models.RoleCustomer {
		t.Fatalf("role = %s", u.Role)
	}
	issued := time.Now()
	cur, err := f.auth.CurrentUser(ctx, u.ID, issued)
	if err != nil || cur == nil || cur.ID != u.ID {
		t.Fatalf("CurrentUser = %+v, %v", cur, err)
	}
	if _, err := f.auth.RequireRole(ctx, u.ID, issued, models.RoleAdmin); !errors.Is(err, models.ErrUnauthorized) {
		t.Fatalf("RequireRole(admin) err = %v", err)
	}
	if _, err := f.auth.RequireRole(ctx, u.ID, issued, models.RoleAdmin, models.RoleCustomer); err != nil {
		t.Fatalf("RequireRole(admin, customer) err = %v", err)
	}
	if other, _ := f.auth.CurrentUser(ctx, f.admin().ID, issued); other != nil {
		t.Fatal("signing in one user signed in another")
	}

	if err := f.auth.Logout(ctx, u.ID); err != nil {
		t.Fatal(err)
	}
	if cur, _ := f.auth.CurrentUser(ctx, u.ID, issued); cur != nil {
		t.Fatal("still signed in after logout")
	}
	if _, err := f.auth.RequireRole(ctx, u.ID, issued); !errors.Is(err, models.ErrUnauthorized) {
		t.Fatalf("RequireRole without session err = %v", err)
	}

	// A token from before the new sign-in stays rejected.
	if _, err := f.auth.Login(ctx, "user@demo.com", "User123"); err != nil {
		t.Fatal(err)
	}
	if cur, _ := f.auth.CurrentUser(ctx, u.ID, issued.Add(-time.Hour)); cur != nil {
		t.Fatal("stale token accepted after signing in again")
	}
	if cur, _ := f.auth.CurrentUser(ctx, u.ID, time.Now()); cur == nil {
		t.Fatal("fresh token rejected")
	}
}

func TestCurrentUserAfterReset(t *testing.T) {
	f := newFixture(t, store.NewMemoryStore(), nil)
	ctx := context.Background()

	u, err := f.auth.Login(ctx, "user@demo.com", "User123")
	if err != nil {
		t.Fatal(err)
	}
	if err := f.db.Reset(ctx); err != nil {
		t.Fatal(err)
	}
	if cur, _ := f.auth.CurrentUser(ctx, u.ID, time.Now()); cur != nil {
		t.Fatal("user from before the reset is still signed in")
	}
}

func TestRegisterCustomer(t *testing.T) {
	f := newFixture(t, store.NewMemoryStore(), nil)
	ctx := context.Background()

	_, err := f.auth.RegisterCustomer(ctx, RegisterInput{Name: "New", Email: "Admin@Demo.com", Password: "secret1"})
	if !errors.Is(err, models.ErrEmailTaken) {
		t.Fatalf("duplicate email err = %v", err)
	}

	var verr *models.ValidationError
	_, err = f.auth.RegisterCustomer(ctx, RegisterInput{Email: "not-an-email", Password: "x"})
	if !errors.As(err, &verr) || len(verr.Fields) != 3 {
		t.Fatalf("invalid input err = %v", err)
	}

	u, err := f.auth.RegisterCustomer(ctx, RegisterInput{Name: " Lina ", Email: "Lina@Example.com", Password: "secret1"})
	if err != nil {
		t.Fatal(err)
	}
	if u.Role != models.RoleCustomer || u.Email != "lina@example.com" || u.Name != "Lina" {
		t.Fatalf("registered user = %+v", u)
	}
	if cur, _ := f.auth.CurrentUser(ctx, u.ID, time.Now()); cur == nil || cur.ID != u.ID {
		t.Fatal("registration did not sign the user in")
	}
	if _, err := f.auth.Login(ctx, "lina@example.com", "secret1"); err != nil {
		t.Fatalf("login after register: %v", err)
	}
}

// ── Catalog ────────────────────────────────────────────────────────

func TestListRestaurantsFilters(t *testing.T) {
	f := newFixture(t, store.NewMemoryStore(), nil)
	ctx := context.Background()

	all, err := f.catalog.ListRestaurants(ctx, RestaurantFilter{})
	if err != nil || len(all) != 4 {
		t.Fatalf("all = %d, %v", len(all), err)
	}
	pizza, _ := f.catalog.ListRestaurants(ctx, RestaurantFilter{Category: "pizza"})
	if len(pizza) != 1 || pizza[0].Name != "Napoli Pizza" {
		t.Fatalf("category filter = %+v", pizza)
	}
	kunafa, _ := f.catalog.ListRestaurants(ctx, RestaurantFilter{Search: "KUNAFA"})
	if len(kunafa) != 1 || kunafa[0].Name != "Sultan Sweets" || len(kunafa[0].Products) != 1 {
		t.Fatalf("product search = %+v", kunafa)
	}

	// Search narrows each menu, not just the restaurant list.
	cheese, _ := f.catalog.ListRestaurants(ctx, RestaurantFilter{Search: "cheese"})
	menu := map[string][]string{}
	for _, m := range cheese {
		for _, p := range m.Products {
			menu[m.Name] = append(menu[m.Name], p.Name)
		}
	}
	if len(cheese) != 3 || len(menu["Burger House"]) != 2 || len(menu["Napoli Pizza"]) != 1 || menu["Napoli Pizza"][0] != "Pepperoni" {
		t.Fatalf("cheese search = %v", menu)
	}
	// A restaurant name match keeps its whole menu.
	burgers, _ := f.catalog.ListRestaurants(ctx, RestaurantFilter{Search: "burger house"})
	if len(burgers) != 1 || len(burgers[0].Products) != 3 {
		t.Fatalf("restaurant name search = %+v", burgers)
	}
	// A tag-only match lists the restaurant with an empty menu.
	fast, _ := f.catalog.ListRestaurants(ctx, RestaurantFilter{Search: "fast"})
	if len(fast) != 1 || fast[0].Name != "Sham Shawarma" || len(fast[0].Products) != 0 {
		t.Fatalf("tag search = %+v", fast)
	}
	cats, _ := f.catalog.Categories(ctx)
	if len(cats) != 4 || cats[0] != "Burgers" {
		t.Fatalf("categories = %v", cats)
	}
}

func TestSetProductAvailability(t *testing.T) {
	f := newFixture(t, store.NewMemoryStore(), nil)
	ctx := context.Background()
	p := f.product(0)

	if _, err := f.catalog.SetProductAvailability(ctx, f.customer(), p.ID, false); !errors.Is(err, models.ErrUnauthorized) {
		t.Fatalf("customer toggle err = %v", err)
	}
	if _, err := f.catalog.SetProductAvailability(ctx, f.owner(), p.ID, false); err != nil {
		t.Fatal(err)
	}

	menu, _ := f.catalog.FindRestaurant(ctx, p.RestaurantID)
	for _, mp := range menu.Products {
		if mp.ID == p.ID {
			t.Fatal("unavailable product listed in public menu")
		}
	}
	owned, _ := f.catalog.RestaurantsByOwner(ctx, f.owner().ID)
	found := false
	for _, m := range owned {
		for _, mp := range m.Products {
			if mp.ID == p.ID && !mp.Available {
				found = true
			}
		}
	}
	if !found {
		t.Fatal("owner view lost the unavailable product")
	}
	if _, err := f.cart.AddItem(ctx, f.customer().ID, p.ID); !errors.Is(err, models.ErrProductUnavailable) {
		t.Fatalf("AddItem unavailable err = %v", err)
	}
}

// ── Cart ───────────────────────────────────────────────────────────

func TestAddItemKeepsFirstPrice(t *testing.T) {
	f := newFixture(t, store.NewMemoryStore(), nil)
	ctx := context.Background()
	uid, p := f.customer().ID, f.product(0)

	if _, err := f.cart.AddItem(ctx, uid, p.ID); err != nil {
		t.Fatal(err)
	}
	err := f.db.Update(ctx, func(db *models.Database) error {
		dp, _ := db.FindProduct(p.ID)
		dp.Price = money.New(99, 0)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	line, err := f.cart.AddItem(ctx, uid, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if line.Quantity != 2 || !line.Price.Equal(p.Price) {
		t.Fatalf("line = %+v, want qty 2 at %s", line, p.Price)
	}
	sub, _ := f.cart.Subtotal(ctx, uid)
	if !sub.Equal(p.Price.Mul(2)) {
		t.Fatalf("subtotal = %s", sub)
	}
}

func TestAddItemUnknownProduct(t *testing.T) {
	f := newFixture(t, store.NewMemoryStore(), nil)
	if _, err := f.cart.AddItem(context.Background(), f.customer().ID, "missing"); !errors.Is(err, models.ErrProductNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestDecrementAndRemove(t *testing.T) {
	f := newFixture(t, store.NewMemoryStore(), nil)
	ctx := context.Background()
	uid := f.customer().ID
	a, b := f.product(0).ID, f.product(3).ID

	for _, id := range []string{a, a, b} {
		if _, err := f.cart.AddItem(ctx, uid, id); err != nil {
			t.Fatal(err)
		}
	}
	if n, _ := f.cart.ItemCount(ctx, uid); n != 3 {
		t.Fatalf("ItemCount = %d", n)
	}

	if err := f.cart.DecrementItem(ctx, uid, b); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if err := f.cart.DecrementItem(ctx, uid, b); err != nil {
			t.Fatalf("decrement of absent line: %v", err)
		}
	}
	cart, _ := f.carts.Get(ctx, uid)
	if _, ok := cart[b]; ok {
		t.Fatal("line at zero quantity was kept")
	}

	if err := f.cart.RemoveItem(ctx, uid, a); err != nil {
		t.Fatal(err)
	}
	if n, _ := f.cart.ItemCount(ctx, uid); n != 0 {
		t.Fatalf("ItemCount after remove = %d", n)
	}
}

func TestConcurrentAddsAreNotLost(t *testing.T) {
	f := newFixture(t, store.NewMemoryStore(), nil)
	ctx := context.Background()
	uid, pid := f.customer().ID, f.product(2).ID

	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.cart.AddItem(ctx, uid, pid); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()
	if n, _ := f.cart.ItemCount(ctx, uid); n != 25 {
		t.Fatalf("ItemCount = %d, want 25", n)
	}
}

// ── Coupons ────────────────────────────────────────────────────────

func TestCouponApply(t *testing.T) {
	f := newFixture(t, store.NewMemoryStore(), nil)
	ctx := context.Background()
	uid := f.customer().ID

	res, err := f.coupons.Apply(ctx, uid, " save10 ")
	if err != nil || res.Cleared || res.Coupon.Code != "SAVE10" {
		t.Fatalf("Apply(save10) = %+v, %v", res, err)
	}

	res, err = f.coupons.Apply(ctx, uid, "BOGUS")
	if !errors.Is(err, models.ErrInvalidCoupon) || !res.Cleared {
		t.Fatalf("Apply(BOGUS) = %+v, %v", res, err)
	}
	if c, _ := f.coupons.Current(ctx, uid); c != nil {
		t.Fatal("invalid code did not clear the previous coupon")
	}

	_, _ = f.coupons.Apply(ctx, uid, "LESS20")
	res, err = f.coupons.Apply(ctx, uid, "   ")
	if err != nil || !res.Cleared {
		t.Fatalf("Apply(blank) = %+v, %v", res, err)
	}
	if c, _ := f.coupons.Current(ctx, uid); c != nil {
		t.Fatal("blank code did not clear the coupon")
	}
}

func TestCartViewPricesWithCoupon(t *testing.T) {
	f := newFixture(t, store.NewMemoryStore(), nil)
	ctx := context.Background()
	uid := f.customer().ID

	// Arabic Coffee, 14.00
	if _, err := f.cart.AddItem(ctx, uid, f.product(11).ID); err != nil {
		t.Fatal(err)
	}
	if _, err := f.coupons.Apply(ctx, uid, "LESS20"); err != nil {
		t.Fatal(err)
	}
	v, err := f.cart.View(ctx, uid)
	if err != nil {
		t.Fatal(err)
	}
	q := v.Quote
	if q.SubTotal.String() != "14.00" || q.DeliveryFee.String() != "15.00" ||
		q.Discount.String() != "14.00" || q.GrandTotal.String() != "15.00" || q.CouponCode != "LESS20" {
		t.Fatalf("quote = %+v", q)
	}
}

// ── Checkout ───────────────────────────────────────────────────────

func TestCheckoutEmptyCart(t *testing.T) {
	f := newFixture(t, store.NewMemoryStore(), nil)
	_, err := f.orders.Checkout(context.Background(), f.customer().ID, validForm)
	if !errors.Is(err, models.ErrEmptyCart) {
		t.Fatalf("err = %v", err)
	}
}

func TestCheckoutBlankForm(t *testing.T) {
	f := newFixture(t, store.NewMemoryStore(), nil)
	ctx := context.Background()
	uid := f.customer().ID
	_, _ = f.cart.AddItem(ctx, uid, f.product(0).ID)

	_, err := f.orders.Checkout(ctx, uid, models.CustomerInfo{Name: "  ", Note: "ring twice"})
	var verr *models.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v", err)
	}
	want := map[string]bool{"name": true, "phone": true, "city": true, "address": true}
	if len(verr.Fields) != len(want) {
		t.Fatalf("fields = %v", verr.Fields)
	}
	for _, fld := range verr.Fields {
		if !want[fld] {
			t.Fatalf("unexpected field %q", fld)
		}
	}
	if n, _ := f.cart.ItemCount(ctx, uid); n != 1 {
		t.Fatal("failed checkout touched the cart")
	}
}

func TestCheckoutCommitsOrder(t *testing.T) {
	f := newFixture(t, store.NewMemoryStore(), nil)
	ctx := context.Background()
	uid := f.customer().ID

	// Margherita 55 x2 + Pepperoni 69 = 179, free delivery, SAVE10 = 17.90
	for _, i := range []int{3, 3, 4} {
		if _, err := f.cart.AddItem(ctx, uid, f.product(i).ID); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := f.coupons.Apply(ctx, uid, "save10"); err != nil {
		t.Fatal(err)
	}

	o, err := f.orders.Checkout(ctx, uid, validForm)
	if err != nil {
		t.Fatal(err)
	}
	if o.Status != models.StatusNew || o.DriverID != nil || o.ID == "" {
		t.Fatalf("order = %+v", o)
	}
	if o.SubTotal.String() != "179.00" || o.DeliveryFee.String() != "0.00" ||
		o.Discount.String() != "17.90" || o.GrandTotal.String() != "161.10" {
		t.Fatalf("totals = %s %s %s %s", o.SubTotal, o.DeliveryFee, o.Discount, o.GrandTotal)
	}
	if o.CouponCode == nil || *o.CouponCode != "SAVE10" {
		t.Fatal("coupon code not recorded")
	}
	if o.Customer.PaymentMethod != models.PaymentCash {
		t.Fatalf("payment method = %q", o.Customer.PaymentMethod)
	}
	if len(o.StatusHistory) != 1 || o.StatusHistory[0].To != models.StatusNew {
		t.Fatalf("history = %+v", o.StatusHistory)
	}

	if n, _ := f.cart.ItemCount(ctx, uid); n != 0 {
		t.Fatal("cart not cleared")
	}
	if c, _ := f.coupons.Current(ctx, uid); c != nil {
		t.Fatal("coupon not cleared")
	}
	mine, _ := f.orders.OrdersForCustomer(ctx, uid)
	if len(mine) != 1 || mine[0].ID != o.ID {
		t.Fatalf("ledger = %+v", mine)
	}
}

func TestCheckoutUnknownUser(t *testing.T) {
	f := newFixture(t, store.NewMemoryStore(), nil)
	ctx := context.Background()

	// A cart left behind by an account that no longer exists.
	if _, err := f.cart.AddItem(ctx, "ghost", f.product(0).ID); err != nil {
		t.Fatal(err)
	}
	if _, err := f.orders.Checkout(ctx, "ghost", validForm); !errors.Is(err, models.ErrUserNotFound) {
		t.Fatalf("err = %v", err)
	}
	db, _ := f.db.Load(ctx)
	if len(db.Orders) != 0 {
		t.Fatal("order recorded for an unknown user")
	}
	if n, _ := f.cart.ItemCount(ctx, "ghost"); n != 1 {
		t.Fatalf("cart item count = %d, want the cart kept", n)
	}
}

func TestCheckoutStaleProduct(t *testing.T) {
	f := newFixture(t, store.NewMemoryStore(), nil)
	ctx := context.Background()
	uid, p := f.customer().ID, f.product(0)
	_, _ = f.cart.AddItem(ctx, uid, p.ID)

	_ = f.db.Update(ctx, func(db *models.Database) error {
		kept := db.Products[:0]
		for _, dp := range db.Products {
			if dp.ID != p.ID {
				kept = append(kept, dp)
			}
		}
		db.Products = kept
		return nil
	})

	if _, err := f.orders.Checkout(ctx, uid, validForm); !errors.Is(err, models.ErrProductNotFound) {
		t.Fatalf("err = %v", err)
	}
	if n, _ := f.cart.ItemCount(ctx, uid); n != 1 {
		t.Fatal("stale line was dropped from the cart")
	}
	all, _ := f.orders.AllOrders(ctx, "")
	if len(all) != 0 {
		t.Fatal("order appended despite stale product")
	}
}

type failingDelete struct {
	store.Store
	key string
}

func (s failingDelete) Delete(ctx context.Context, key string) error {
	if key == s.key {
		return errors.New("disk full")
	}
	return s.Store.Delete(ctx, key)
}

func TestCheckoutOrderStandsWhenCartClearFails(t *testing.T) {
	base := store.NewMemoryStore()
	f := newFixture(t, base, nil)
	uid := f.customer().ID
	f = newFixture(t, failingDelete{Store: base, key: repository.CartKey(uid)}, nil)
	ctx := context.Background()

	_, _ = f.cart.AddItem(ctx, uid, f.product(0).ID)
	o, err := f.orders.Checkout(ctx, uid, validForm)
	if !errors.Is(err, models.ErrCartNotCleared) {
		t.Fatalf("err = %v", err)
	}
	if o.ID == "" {
		t.Fatal("committed order was not returned")
	}
	all, _ := f.orders.AllOrders(ctx, "")
	if len(all) != 1 || all[0].ID != o.ID {
		t.Fatal("order missing from ledger")
	}
	if n, _ := f.cart.ItemCount(ctx, uid); n != 1 {
		t.Fatal("cart should still hold the line")
	}
}

func TestCheckoutPublishesEvent(t *testing.T) {
	ctrl := gomock.NewController(t)
	pub := events.NewMockPublisher(ctrl)
	f := newFixture(t, store.NewMemoryStore(), pub)

	var got events.OrderEvent
	pub.EXPECT().Publish(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, ev events.OrderEvent) error {
		got = ev
		return errors.New("broker down")
	})

	o := f.placeOrder(t, 0)
	if got.RoutingKey() != "order.created" || got.OrderID != o.ID || !got.GrandTotal.Equal(o.GrandTotal) {
		t.Fatalf("event = %+v", got)
	}
}

// ── Status & assignment ────────────────────────────────────────────

func TestUpdateStatusRoleGate(t *testing.T) {
	f := newFixture(t, store.NewMemoryStore(), nil)
	ctx := context.Background()
	o := f.placeOrder(t, 0)

	if _, err := f.orders.UpdateStatus(ctx, f.customer(), o.ID, models.StatusCanceled, ""); !errors.Is(err, models.ErrUnauthorized) {
		t.Fatalf("customer err = %v", err)
	}
	if _, err := f.orders.UpdateStatus(ctx, f.driver(), o.ID, models.StatusPreparing, ""); !errors.Is(err, models.ErrUnauthorized) {
		t.Fatalf("unassigned driver err = %v", err)
	}

	stranger := models.UserRef{ID: "other-owner", Role: models.RoleOwner}
	if _, err := f.orders.UpdateStatus(ctx, stranger, o.ID, models.StatusPreparing, ""); !errors.Is(err, models.ErrUnauthorized) {
		t.Fatalf("foreign owner err = %v", err)
	}

	got, err := f.orders.UpdateStatus(ctx, f.owner(), o.ID, models.StatusPreparing, "kitchen started")
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != models.StatusPreparing || len(got.StatusHistory) != 2 {
		t.Fatalf("order = %+v", got)
	}

	if _, err := f.orders.AssignDriver(ctx, f.admin(), o.ID, f.driver().ID); err != nil {
		t.Fatal(err)
	}
	if _, err := f.orders.UpdateStatus(ctx, f.driver(), o.ID, models.StatusOnTheWay, ""); err != nil {
		t.Fatalf("assigned driver err = %v", err)
	}
	if _, err := f.orders.Get(ctx, f.driver(), o.ID); err != nil {
		t.Fatalf("driver Get err = %v", err)
	}
	if _, err := f.orders.Get(ctx, models.UserRef{ID: "x", Role: models.RoleCustomer}, o.ID); !errors.Is(err, models.ErrUnauthorized) {
		t.Fatalf("foreign customer Get err = %v", err)
	}
}

func TestTerminalOrdersRejectTransitions(t *testing.T) {
	for _, terminal := range []models.OrderStatus{models.StatusDelivered, models.StatusCanceled} {
		t.Run(string(terminal), func(t *testing.T) {
			f := newFixture(t, store.NewMemoryStore(), nil)
			ctx := context.Background()
			o := f.placeOrder(t, 0)

			if _, err := f.orders.UpdateStatus(ctx, f.admin(), o.ID, terminal, ""); err != nil {
				t.Fatal(err)
			}
			for _, to := range models.AllStatuses {
				_, err := f.orders.UpdateStatus(ctx, f.admin(), o.ID, to, "")
				if to == terminal {
					if err != nil {
						t.Errorf("same status should be a no-op, got %v", err)
					}
					continue
				}
				if !errors.Is(err, models.ErrInvalidTransition) {
					t.Errorf("%s → %s err = %v", terminal, to, err)
				}
			}
			if _, err := f.orders.AssignDriver(ctx, f.admin(), o.ID, f.driver().ID); !errors.Is(err, models.ErrInvalidTransition) {
				t.Errorf("assign on terminal err = %v", err)
			}
		})
	}
}

func TestUpdateStatusRejectsBackwardAndUnknown(t *testing.T) {
	f := newFixture(t, store.NewMemoryStore(), nil)
	ctx := context.Background()
	o := f.placeOrder(t, 0)

	if _, err := f.orders.UpdateStatus(ctx, f.admin(), o.ID, models.StatusOnTheWay, ""); err != nil {
		t.Fatal(err)
	}
	if _, err := f.orders.UpdateStatus(ctx, f.admin(), o.ID, models.StatusNew, ""); !errors.Is(err, models.ErrInvalidTransition) {
		t.Fatalf("backward err = %v", err)
	}
	if _, err := f.orders.UpdateStatus(ctx, f.admin(), o.ID, "teleported", ""); !errors.Is(err, models.ErrInvalidTransition) {
		t.Fatalf("unknown status err = %v", err)
	}
	if _, err := f.orders.UpdateStatus(ctx, f.admin(), "missing", models.StatusDelivered, ""); !errors.Is(err, models.ErrOrderNotFound) {
		t.Fatalf("missing order err = %v", err)
	}
}

func TestAssignDriver(t *testing.T) {
	f := newFixture(t, store.NewMemoryStore(), nil)
	ctx := context.Background()

	fresh := f.placeOrder(t, 0)
	got, err := f.orders.AssignDriver(ctx, f.admin(), fresh.ID, f.driver().ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != models.StatusAssigned || got.DriverName == nil || *got.DriverName != "Delivery Driver" {
		t.Fatalf("new order after assign = %+v", got)
	}

	cooking := f.placeOrder(t, 1)
	if _, err := f.orders.UpdateStatus(ctx, f.admin(), cooking.ID, models.StatusPreparing, ""); err != nil {
		t.Fatal(err)
	}
	got, err = f.orders.AssignDriver(ctx, f.admin(), cooking.ID, f.driver().ID)
	if err != nil || got.Status != models.StatusPreparing {
		t.Fatalf("preparing order after assign = %+v, %v", got, err)
	}

	got, err = f.orders.AssignDriver(ctx, f.admin(), fresh.ID, "")
	if err != nil || got.DriverID != nil || got.Status != models.StatusAssigned {
		t.Fatalf("unassign = %+v, %v", got, err)
	}

	if _, err := f.orders.AssignDriver(ctx, f.owner(), fresh.ID, f.driver().ID); !errors.Is(err, models.ErrUnauthorized) {
		t.Fatalf("owner assign err = %v", err)
	}
	var verr *models.ValidationError
	if _, err := f.orders.AssignDriver(ctx, f.admin(), fresh.ID, f.customer().ID); !errors.As(err, &verr) {
		t.Fatalf("non-driver assign err = %v", err)
	}
	if _, err := f.orders.AssignDriver(ctx, f.admin(), fresh.ID, "ghost"); !errors.Is(err, models.ErrUserNotFound) {
		t.Fatalf("unknown driver err = %v", err)
	}

	mine, _ := f.orders.OrdersForDriver(ctx, f.driver().ID)
	if len(mine) != 1 || mine[0].ID != cooking.ID {
		t.Fatalf("driver orders = %+v", mine)
	}
}

func TestOwnerOrdersAndSummary(t *testing.T) {
	f := newFixture(t, store.NewMemoryStore(), nil)
	ctx := context.Background()
	a := f.placeOrder(t, 0)
	b := f.placeOrder(t, 4)

	owned, _ := f.orders.OrdersForOwner(ctx, f.owner().ID)
	if len(owned) != 2 {
		t.Fatalf("owner orders = %d", len(owned))
	}
	if none, _ := f.orders.OrdersForOwner(ctx, "someone-else"); len(none) != 0 {
		t.Fatal("orders leaked to a non-owner")
	}

	_, _ = f.orders.UpdateStatus(ctx, f.admin(), a.ID, models.StatusDelivered, "")
	_, _ = f.orders.UpdateStatus(ctx, f.admin(), b.ID, models.StatusCanceled, "")

	sum, err := f.orders.Summary(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if sum.TotalOrders != 2 || sum.ByStatus[models.StatusDelivered] != 1 ||
		sum.ByStatus[models.StatusCanceled] != 1 || !sum.DeliveredRevenue.Equal(a.GrandTotal) {
		t.Fatalf("summary = %+v", sum)
	}
	delivered, _ := f.orders.AllOrders(ctx, models.StatusDelivered)
	if len(delivered) != 1 || delivered[0].ID != a.ID {
		t.Fatalf("status filter = %+v", delivered)
	}
}
