package repository

import (
	"context"
	"errors"
	"fmt"

	"food-ordering/logger"
	"food-ordering/models"
)

// SeedFunc builds a fresh default database.
type SeedFunc func() (*models.Database, error)

// DatabaseRepository owns the single document holding users, catalog and
// the order ledger.
type DatabaseRepository struct {
	docs *Documents
	seed SeedFunc
	log  logger.Logger
}

func NewDatabaseRepository(docs *Documents, seed SeedFunc, log logger.Logger) *DatabaseRepository {
	return &DatabaseRepository{docs: docs, seed: seed, log: log}
}

// Load returns a private copy of the database, seeding it first when the
// stored document is missing or unusable.
func (r *DatabaseRepository) Load(ctx context.Context) (*models.Database, error) {
	unlock := r.docs.Lock(DatabaseKey)
	defer unlock()
	return r.loadOrSeed(ctx)
}

// Update runs fn on the database inside the critical section of its key and
// saves the result. Nothing is saved when fn fails.
func (r *DatabaseRepository) Update(ctx context.Context, fn func(db *models.Database) error) error {
	unlock := r.docs.Lock(DatabaseKey)
	defer unlock()

	db, err := r.loadOrSeed(ctx)
	if err != nil {
		return err
	}
	if err := fn(db); err != nil {
		return err
	}
	if err := r.docs.write(ctx, DatabaseKey, db); err != nil {
		return fmt.Errorf("save database: %w", err)
	}
	return nil
}

// Reset wipes the database and the sessions of its users. The next Load
// re-seeds.
func (r *DatabaseRepository) Reset(ctx context.Context) error {
	unlock := r.docs.Lock(DatabaseKey)
	defer unlock()

	var db models.Database
	if _, err := r.docs.read(ctx, DatabaseKey, &db); err != nil && !errors.Is(err, errMalformed) {
		return fmt.Errorf("reset database: %w", err)
	}
	if err := r.docs.remove(ctx, DatabaseKey); err != nil {
		return fmt.Errorf("reset database: %w", err)
	}
	for _, u := range db.Users {
		if err := r.clearSession(ctx, u.ID); err != nil {
			return fmt.Errorf("reset session: %w", err)
		}
	}
	r.log.Info("database_reset", "database and sessions wiped", map[string]any{"sessions": len(db.Users)})
	return nil
}

func (r *DatabaseRepository) clearSession(ctx context.Context, userID string) error {
	unlock := r.docs.Lock(SessionKey(userID))
	defer unlock()
	return r.docs.remove(ctx, SessionKey(userID))
}

func (r *DatabaseRepository) loadOrSeed(ctx context.Context) (*models.Database, error) {
	var db models.Database
	found, err := r.docs.read(ctx, DatabaseKey, &db)
	switch {
	case err != nil && !errors.Is(err, errMalformed):
		return nil, fmt.Errorf("load database: %w", err)
	case err != nil:
		r.log.Error("database_malformed", "stored database does not decode, re-seeding", nil, err)
	case found && db.Valid():
		return &db, nil
	case found:
		r.log.Error("database_invalid", "stored database failed validation, re-seeding", nil, nil)
	}

	seeded, err := r.seed()
	if err != nil {
		return nil, fmt.Errorf("seed database: %w", err)
	}
	if err := r.docs.write(ctx, DatabaseKey, seeded); err != nil {
		return nil, fmt.Errorf("save seeded database: %w", err)
	}
	r.log.Info("database_seeded", "default database written", map[string]any{
		"users":       len(seeded.Users),
		"restaurants": len(seeded.Restaurants),
		"products":    len(seeded.Products),
	})
	return seeded, nil
}
