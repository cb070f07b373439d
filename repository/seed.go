package repository

import (
	"time"

	"github.com/google/uuid"

	"food-ordering/models"
	"food-ordering/money"
)

// Demo accounts written by DefaultSeed, email → password.
var DemoPasswords = map[string]string{
	"admin@demo.com":  "Admin123",
	"owner@demo.com":  "Owner123",
	"driver@demo.com": "Driver123",
	"user@demo.com":   "User123",
}

var demoImages = map[string]string{
	"burger":   "https://images.unsplash.com/photo-1550547660-d9450f859349?auto=format&fit=crop&w=800&q=70",
	"pizza":    "https://images.unsplash.com/photo-1548365328-9f547f6bcefa?auto=format&fit=crop&w=800&q=70",
	"shawarma": "https://images.unsplash.com/photo-1604908554027-5a40c6b6c1fa?auto=format&fit=crop&w=800&q=70",
	"dessert":  "https://images.unsplash.com/photo-1518131672697-613becd4fab5?auto=format&fit=crop&w=800&q=70",
	"fries":    "https://images.unsplash.com/photo-1571091718767-18b5b1457add?auto=format&fit=crop&w=800&q=70",
	"kunafa":   "https://images.unsplash.com/photo-1600271886742-f049cd451bba?auto=format&fit=crop&w=800&q=70",
	"coffee":   "https://images.unsplash.com/photo-1509042239860-f550ce710b93?auto=format&fit=crop&w=800&q=70",
}

// DefaultSeed returns a SeedFunc producing the demo users, four restaurants
// owned by the demo owner and twelve products. hash turns a plain password
// into the stored hash.
func DefaultSeed(hash func(password string) (string, error)) SeedFunc {
	return func() (*models.Database, error) {
		now := time.Now().UTC()

		user := func(name, email string, role models.UserRole) (models.User, error) {
			h, err := hash(DemoPasswords[email])
			if err != nil {
				return models.User{}, err
			}
			return models.User{
				ID: uuid.NewString(), Name: name, Email: email,
				PasswordHash: h, Role: role, CreatedAt: now,
			}, nil
		}

		db := &models.Database{
			Meta:   models.Meta{CreatedAt: now, Version: models.SchemaVersion},
			Orders: []models.Order{},
		}
		for _, u := range []struct {
			name, email string
			role        models.UserRole
		}{
			{"Admin", "admin@demo.com", models.RoleAdmin},
			{"Restaurant Owner", "owner@demo.com", models.RoleOwner},
			{"Delivery Driver", "driver@demo.com", models.RoleDriver},
			{"Demo Customer", "user@demo.com", models.RoleCustomer},
		} {
			created, err := user(u.name, u.email, u.role)
			if err != nil {
				return nil, err
			}
			db.Users = append(db.Users, created)
		}
		ownerID := db.Users[1].ID

		restaurant := func(name, category, city, address string, eta int, rating float64, tags []string, cover string) models.Restaurant {
			return models.Restaurant{
				ID: uuid.NewString(), Name: name, Category: category, City: city, Address: address,
				Phone: "06xxxxxxxx", OwnerID: ownerID, ETAMinutes: eta, Rating: rating, Tags: tags,
				CoverImage: demoImages[cover],
			}
		}
		burger := restaurant("Burger House", "Burgers", "Casablanca", "12 Example St", 25, 4.7,
			[]string{"Most ordered", "Burgers", "Fries"}, "burger")
		pizza := restaurant("Napoli Pizza", "Pizza", "Rabat", "3 Sample Lane", 35, 4.6,
			[]string{"Pizza", "Cheese", "Oven"}, "pizza")
		shawarma := restaurant("Sham Shawarma", "Shawarma", "Marrakesh", "9 Salam District", 20, 4.8,
			[]string{"Fast", "Shawarma", "Garlic sauce"}, "shawarma")
		sweets := restaurant("Sultan Sweets", "Desserts", "Tangier", "1 Medina Road", 40, 4.5,
			[]string{"Desserts", "Baklava", "Coffee"}, "dessert")
		db.Restaurants = []models.Restaurant{burger, pizza, shawarma, sweets}

		for _, p := range []struct {
			rest       models.Restaurant
			name, desc string
			units      int64
			image      string
		}{
			{burger, "Classic Burger", "Fresh beef, cheese and house sauce", 45, "burger"},
			{burger, "Double Burger", "Two patties, cheese and pickles", 62, "burger"},
			{burger, "Crispy Fries", "Crunchy and seasoned", 18, "fries"},
			{pizza, "Margherita", "Tomato sauce and mozzarella", 55, "pizza"},
			{pizza, "Pepperoni", "Pepperoni, cheese and olives", 69, "pizza"},
			{pizza, "Calzone", "Folded pizza with a rich filling", 63, "pizza"},
			{shawarma, "Chicken Shawarma", "Marinated chicken, garlic and pickles", 32, "shawarma"},
			{shawarma, "Beef Shawarma", "Beef, tahini and vegetables", 38, "shawarma"},
			{shawarma, "Shawarma Plate", "Shawarma, fries and salads", 58, "shawarma"},
			{sweets, "Mixed Baklava", "Baklava selection with pistachio", 48, "dessert"},
			{sweets, "Kunafa", "Cheese kunafa with syrup", 42, "kunafa"},
			{sweets, "Arabic Coffee", "Arabic coffee with cardamom", 14, "coffee"},
		} {
			db.Products = append(db.Products, models.Product{
				ID:           uuid.NewString(),
				RestaurantID: p.rest.ID,
				Name:         p.name,
				Description:  p.desc,
				Price:        money.New(p.units, 0),
				Image:        demoImages[p.image],
				Available:    true,
				CreatedAt:    now,
			})
		}
		return db, nil
	}
}
