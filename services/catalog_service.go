package services

import (
	"context"
	"sort"
	"strings"

	"food-ordering/logger"
	"food-ordering/models"
	"food-ordering/repository"
)

// RestaurantFilter narrows the public restaurant listing. Empty fields match
// everything.
type RestaurantFilter struct {
	Category string
	Search   string
}

// CatalogService reads restaurants and products out of the database document.
type CatalogService struct {
	db  *repository.DatabaseRepository
	log logger.Logger
}

func NewCatalogService(db *repository.DatabaseRepository, log logger.Logger) *CatalogService {
	return &CatalogService{db: db, log: log}
}

// ListRestaurants returns the restaurants matching f together with their
// available products. With a search term, a product is kept when the term
// occurs in its restaurant's name or category or in its own name or
// description; a restaurant is kept when any product is, or when the term
// occurs in its name, category or tags.
func (s *CatalogService) ListRestaurants(ctx context.Context, f RestaurantFilter) ([]models.RestaurantMenu, error) {
	db, err := s.db.Load(ctx)
	if err != nil {
		return nil, err
	}
	category := strings.TrimSpace(f.Category)
	q := strings.ToLower(strings.TrimSpace(f.Search))

	menus := []models.RestaurantMenu{}
	for _, r := range db.Restaurants {
		if category != "" && !strings.EqualFold(r.Category, category) {
			continue
		}
		products := productsOf(db, r.ID, false)
		if q != "" {
			products = searchProducts(r, products, q)
			if len(products) == 0 && !contains(q, r.Name, r.Category, strings.Join(r.Tags, " ")) {
				continue
			}
		}
		menus = append(menus, models.RestaurantMenu{Restaurant: r, Products: products})
	}
	return menus, nil
}

func searchProducts(r models.Restaurant, products []models.Product, q string) []models.Product {
	out := []models.Product{}
	for _, p := range products {
		if contains(q, r.Name, r.Category, p.Name, p.Description) {
			out = append(out, p)
		}
	}
	return out
}

// contains reports whether q occurs in the space-joined, lowercased fields.
func contains(q string, fields ...string) bool {
	return strings.Contains(strings.ToLower(strings.Join(fields, " ")), q)
}

// Categories returns the distinct restaurant categories, sorted.
func (s *CatalogService) Categories(ctx context.Context) ([]string, error) {
	db, err := s.db.Load(ctx)
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	var out []string
	for _, r := range db.Restaurants {
		if r.Category != "" && !seen[r.Category] {
			seen[r.Category] = true
			out = append(out, r.Category)
		}
	}
	sort.Strings(out)
	return out, nil
}

// FindRestaurant returns the restaurant with its available products.
func (s *CatalogService) FindRestaurant(ctx context.Context, id string) (models.RestaurantMenu, error) {
	db, err := s.db.Load(ctx)
	if err != nil {
		return models.RestaurantMenu{}, err
	}
	r, ok := db.FindRestaurant(id)
	if !ok {
		return models.RestaurantMenu{}, models.ErrRestaurantNotFound
	}
	return models.RestaurantMenu{Restaurant: *r, Products: productsOf(db, r.ID, false)}, nil
}

// FindProduct returns the product and the restaurant selling it. Unavailable
// products are still returned; ordering code checks Available itself.
func (s *CatalogService) FindProduct(ctx context.Context, id string) (models.Product, models.Restaurant, error) {
	db, err := s.db.Load(ctx)
	if err != nil {
		return models.Product{}, models.Restaurant{}, err
	}
	p, ok := db.FindProduct(id)
	if !ok {
		return models.Product{}, models.Restaurant{}, models.ErrProductNotFound
	}
	r, ok := db.FindRestaurant(p.RestaurantID)
	if !ok {
		return models.Product{}, models.Restaurant{}, models.ErrRestaurantNotFound
	}
	return *p, *r, nil
}

// RestaurantsByOwner is the owner's management view: every product is
// listed, available or not.
func (s *CatalogService) RestaurantsByOwner(ctx context.Context, ownerID string) ([]models.RestaurantMenu, error) {
	db, err := s.db.Load(ctx)
	if err != nil {
		return nil, err
	}
	menus := []models.RestaurantMenu{}
	for _, r := range db.Restaurants {
		if r.OwnerID == ownerID {
			menus = append(menus, models.RestaurantMenu{Restaurant: r, Products: productsOf(db, r.ID, true)})
		}
	}
	return menus, nil
}

func (s *CatalogService) ProductsByRestaurant(ctx context.Context, restaurantID string, includeUnavailable bool) ([]models.Product, error) {
	db, err := s.db.Load(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := db.FindRestaurant(restaurantID); !ok {
		return nil, models.ErrRestaurantNotFound
	}
	return productsOf(db, restaurantID, includeUnavailable), nil
}

// SetProductAvailability toggles a product. Only the owner of the product's
// restaurant or an admin may do it.
func (s *CatalogService) SetProductAvailability(ctx context.Context, actor models.UserRef, productID string, available bool) (models.Product, error) {
	var updated models.Product
	err := s.db.Update(ctx, func(db *models.Database) error {
		p, ok := db.FindProduct(productID)
		if !ok {
			return models.ErrProductNotFound
		}
		r, ok := db.FindRestaurant(p.RestaurantID)
		if !ok {
			return models.ErrRestaurantNotFound
		}
		if actor.Role != models.RoleAdmin && (actor.Role != models.RoleOwner || r.OwnerID != actor.ID) {
			return models.ErrUnauthorized
		}
		p.Available = available
		updated = *p
		return nil
	})
	if err != nil {
		return models.Product{}, err
	}
	s.log.Info("product_availability", "product availability changed", map[string]any{
		"product_id": productID,
		"available":  available,
		"actor_id":   actor.ID,
	})
	return updated, nil
}

// ListUsers returns every user with the given role, or all users when role
// is empty.
func (s *CatalogService) ListUsers(ctx context.Context, role models.UserRole) ([]models.UserRef, error) {
	db, err := s.db.Load(ctx)
	if err != nil {
		return nil, err
	}
	users := []models.UserRef{}
	for _, u := range db.Users {
		if role == "" || u.Role == role {
			users = append(users, u.Ref())
		}
	}
	return users, nil
}

func (s *CatalogService) ListDrivers(ctx context.Context) ([]models.UserRef, error) {
	return s.ListUsers(ctx, models.RoleDriver)
}

func productsOf(db *models.Database, restaurantID string, includeUnavailable bool) []models.Product {
	products := []models.Product{}
	for _, p := range db.Products {
		if p.RestaurantID == restaurantID && (includeUnavailable || p.Available) {
			products = append(products, p)
		}
	}
	return products
}
