package cart

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/hedgerow/hedgerow-backend/pkg/logger"
)

// StorageName is the single slot a client's cart is persisted under. The scope
// passed to StorageKey identifies a device, not a user, so whoever signs in on
// that device sees the same cart.
const StorageName = "hedgerow-cart"

var ErrBlobNotFound = errors.New("cart blob not found")

// BlobStore reads and overwrites serialized carts.
type BlobStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, blob []byte) error
}

// Recorder receives persistence outcomes; pkg/metrics.CartMetrics implements it.
type Recorder interface {
	ActionDispatched(actionType string)
	PersistFailed(op string)
	RestoreFellBack(reason string)
}

const (
	opLoad = "load"
	opSave = "save"

	fallbackMissing = "missing"
	fallbackStore   = "store_error"
	fallbackCorrupt = "corrupt"
)

// StorageKey returns the slot key for a client scope.
func StorageKey(scope string) string {
	if scope == "" {
		return StorageName
	}
	return scope + ":" + StorageName
}

// Adapter loads and saves one client's cart.
type Adapter struct {
	store BlobStore
	key   string
	logg  *logger.Logger
	rec   Recorder
}

// NewAdapter binds store to the slot for scope. logg and rec may be nil.
func NewAdapter(store BlobStore, scope string, logg *logger.Logger, rec Recorder) *Adapter {
	return &Adapter{
		store: store,
		key:   StorageKey(scope),
		logg:  logg,
		rec:   rec,
	}
}

// Key returns the storage key the adapter reads and writes.
func (a *Adapter) Key() string {
	return a.key
}

// Restore builds a fresh engine and replays the persisted cart into it. A
// missing, unreadable or corrupt blob yields an empty cart; totals are always
// recomputed by the replay rather than trusted from storage.
func (a *Adapter) Restore(ctx context.Context) *Engine {
	engine := NewEngine()

	blob, err := a.store.Get(ctx, a.key)
	if err != nil {
		if errors.Is(err, ErrBlobNotFound) {
			a.fallback(ctx, fallbackMissing, nil)
		} else {
			a.failed(ctx, opLoad, err)
			a.fallback(ctx, fallbackStore, err)
		}
		return engine
	}

	var saved State
	if err := json.Unmarshal(blob, &saved); err != nil {
		a.fallback(ctx, fallbackCorrupt, err)
		return engine
	}

	Replay(engine, saved)
	return engine
}

// Replay dispatches one AddItem per saved line, then the saved delivery date,
// delivery time and postcode when present.
func Replay(engine *Engine, saved State) {
	for _, line := range saved.Items {
		qty := line.Quantity
		engine.Dispatch(AddItem{
			ID:            line.ProductID,
			Name:          line.Name,
			Price:         line.UnitPrice,
			Image:         line.Image,
			Weight:        line.Weight,
			WeightOptions: line.WeightOptions,
			Quantity:      &qty,
		})
	}
	if saved.DeliveryDate != nil {
		engine.Dispatch(SetDeliveryDate{Date: saved.DeliveryDate})
	}
	if saved.DeliveryTime != "" {
		engine.Dispatch(SetDeliveryTime{Time: saved.DeliveryTime})
	}
	if saved.Postcode != "" {
		engine.Dispatch(SetPostcode{Postcode: saved.Postcode})
	}
}

// Save overwrites the slot with state. Failures are logged and counted but
// never returned: the in-memory cart stays authoritative until the next load.
func (a *Adapter) Save(ctx context.Context, state State) {
	blob, err := json.Marshal(state)
	if err != nil {
		a.failed(ctx, opSave, err)
		return
	}
	if err := a.store.Put(ctx, a.key, blob); err != nil {
		a.failed(ctx, opSave, err)
	}
}

// Attach saves every state the engine produces until the returned func is called.
func (a *Adapter) Attach(ctx context.Context, engine *Engine) func() {
	return engine.Subscribe(func(state State) {
		a.Save(ctx, state)
	})
}

func (a *Adapter) failed(ctx context.Context, op string, err error) {
	if a.rec != nil {
		a.rec.PersistFailed(op)
	}
	if a.logg != nil {
		ctx = a.logg.WithFields(ctx, map[string]any{"storage_key": a.key, "op": op})
		a.logg.Error(ctx, "cart.persist_failed", err)
	}
}

func (a *Adapter) fallback(ctx context.Context, reason string, err error) {
	if a.rec != nil {
		a.rec.RestoreFellBack(reason)
	}
	if a.logg == nil {
		return
	}
	fields := map[string]any{"storage_key": a.key, "reason": reason}
	if err != nil {
		fields["error"] = err.Error()
	}
	ctx = a.logg.WithFields(ctx, fields)
	if reason == fallbackMissing {
		a.logg.Debug(ctx, "cart.restore_empty")
		return
	}
	a.logg.Warn(ctx, "cart.restore_fallback")
}
