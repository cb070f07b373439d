package repository

import (
	"context"
	"errors"
	"fmt"

	json "github.com/goccy/go-json"

	"food-ordering/store"
)

const DatabaseKey = "fw:db:v2"

func CartKey(userID string) string    { return "fw:cart:v2:" + userID }
func CouponKey(userID string) string  { return "fw:coupon:v1:" + userID }
func SessionKey(userID string) string { return "fw:session:v1:" + userID }

// errMalformed marks a stored document that does not decode.
var errMalformed = errors.New("malformed document")

// Documents encodes whole documents into a store.Store and owns the per-key
// locks that every read-modify-write span must hold.
type Documents struct {
	store store.Store
	locks *store.KeyedLocker
}

func NewDocuments(s store.Store) *Documents {
	return &Documents{store: s, locks: store.NewKeyedLocker()}
}

// Lock enters the critical section for key.
func (d *Documents) Lock(key string) func() {
	return d.locks.Lock(key)
}

// read decodes key into v. found is false when the key is absent; a document
// that fails to decode yields errMalformed.
func (d *Documents) read(ctx context.Context, key string, v any) (found bool, err error) {
	raw, ok, err := d.store.Load(ctx, key)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return true, fmt.Errorf("%s: %w: %v", key, errMalformed, err)
	}
	return true, nil
}

func (d *Documents) write(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return d.store.Save(ctx, key, raw)
}

func (d *Documents) remove(ctx context.Context, key string) error {
	return d.store.Delete(ctx, key)
}
