package models

import "time"

// SchemaVersion is stamped into Meta of every freshly seeded database.
const SchemaVersion = 2

type Meta struct {
	CreatedAt time.Time `json:"createdAt"`
	Version   int       `json:"version"`
}

// Database is the single document holding users, catalog and the order ledger.
type Database struct {
	Meta        Meta         `json:"meta"`
	Users       []User       `json:"users"`
	Restaurants []Restaurant `json:"restaurants"`
	Products    []Product    `json:"products"`
	Orders      []Order      `json:"orders"`
}

// Valid reports whether the document is usable; anything else is re-seeded.
func (db *Database) Valid() bool {
	if db == nil || db.Meta.Version == 0 || len(db.Users) == 0 {
		return false
	}
	restaurants := make(map[string]bool, len(db.Restaurants))
	for _, r := range db.Restaurants {
		if r.ID == "" {
			return false
		}
		restaurants[r.ID] = true
	}
	for _, p := range db.Products {
		if p.ID == "" || !restaurants[p.RestaurantID] || p.Price.IsNegative() {
			return false
		}
	}
	for _, o := range db.Orders {
		if o.ID == "" || !o.Status.Valid() {
			return false
		}
	}
	return true
}

func (db *Database) FindUser(id string) (*User, bool) {
	for i := range db.Users {
		if db.Users[i].ID == id {
			return &db.Users[i], true
		}
	}
	return nil, false
}

func (db *Database) FindRestaurant(id string) (*Restaurant, bool) {
	for i := range db.Restaurants {
		if db.Restaurants[i].ID == id {
			return &db.Restaurants[i], true
		}
	}
	return nil, false
}

func (db *Database) FindProduct(id string) (*Product, bool) {
	for i := range db.Products {
		if db.Products[i].ID == id {
			return &db.Products[i], true
		}
	}
	return nil, false
}

func (db *Database) FindOrder(id string) (*Order, bool) {
	for i := range db.Orders {
		if db.Orders[i].ID == id {
			return &db.Orders[i], true
		}
	}
	return nil, false
}

// OwnedRestaurantIDs returns the ids of restaurants owned by ownerID.
func (db *Database) OwnedRestaurantIDs(ownerID string) map[string]bool {
	ids := map[string]bool{}
	for _, r := range db.Restaurants {
		if r.OwnerID == ownerID {
			ids[r.ID] = true
		}
	}
	return ids
}
