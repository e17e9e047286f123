package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/leofalp/switchboard/internal/store"
)

// storeKey is the blob-store key holding the persisted definition set.
const storeKey = "providers"

// ErrNotFound is returned when no definition matches the requested id.
var ErrNotFound = errors.New("catalog: provider not found")

var validate = validator.New(validator.WithRequiredStructEnabled())

// Catalog is the mutable, persisted set of provider definitions. Reads go
// against an immutable snapshot republished after each mutation, so they
// never block; a single lock serializes mutations, and every mutation is
// persisted before it becomes visible.
type Catalog struct {
	store store.Store
	log   *zap.Logger

	mu       sync.Mutex
	snapshot atomic.Pointer[[]ProviderDefinition]
}

// New loads the catalog: the persisted set when present and parseable, the
// bundled set otherwise. A persisted-but-empty set also falls back to the
// bundled one, so a fresh data directory starts fully populated. An empty
// catalog is valid; logger may be nil.
func New(s store.Store, logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Catalog{store: s, log: logger}
	c.publish(c.initialSet())
	return c
}

func (c *Catalog) initialSet() []ProviderDefinition {
	blob, err := c.store.Get(storeKey)
	if err != nil {
		c.log.Warn("reading persisted providers failed, using bundled set", zap.Error(err))
		return Bundled()
	}
	if blob == nil {
		return Bundled()
	}

	defs, err := parseDefinitions(blob)
	if err != nil {
		c.log.Warn("persisted providers unparseable, using bundled set", zap.Error(err))
		return Bundled()
	}
	if len(defs) == 0 {
		return Bundled()
	}
	return defs
}

// publish sorts defs by id and installs them as the new snapshot.
func (c *Catalog) publish(defs []ProviderDefinition) {
	sort.Slice(defs, func(i, j int) bool { return defs[i].ID < defs[j].ID })
	c.snapshot.Store(&defs)
}

// All returns every definition, sorted by id. The returned slice is a copy.
func (c *Catalog) All() []ProviderDefinition {
	current := *c.snapshot.Load()
	out := make([]ProviderDefinition, len(current))
	copy(out, current)
	return out
}

// FindByID returns the definition with the given id, or ErrNotFound.
func (c *Catalog) FindByID(id string) (ProviderDefinition, error) {
	for _, def := range *c.snapshot.Load() {
		if def.ID == id {
			return def, nil
		}
	}
	return ProviderDefinition{}, fmt.Errorf("%w: %q", ErrNotFound, id)
}

// Add validates def and inserts it. Adding an id that already exists is an
// error; use Update to replace.
func (c *Catalog) Add(def ProviderDefinition) error {
	if err := Validate(def); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	current := *c.snapshot.Load()
	for _, existing := range current {
		if existing.ID == def.ID {
			return fmt.Errorf("catalog: provider %q already exists", def.ID)
		}
	}

	next := append(append([]ProviderDefinition{}, current...), def)
	return c.persistAndPublish(next)
}

// Update validates def and replaces the definition with the same id.
func (c *Catalog) Update(def ProviderDefinition) error {
	if err := Validate(def); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	current := *c.snapshot.Load()
	next := make([]ProviderDefinition, len(current))
	copy(next, current)

	for i, existing := range next {
		if existing.ID == def.ID {
			next[i] = def
			return c.persistAndPublish(next)
		}
	}
	return fmt.Errorf("%w: %q", ErrNotFound, def.ID)
}

// Remove deletes the definition with the given id.
func (c *Catalog) Remove(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	current := *c.snapshot.Load()
	next := make([]ProviderDefinition, 0, len(current))
	found := false
	for _, existing := range current {
		if existing.ID == id {
			found = true
			continue
		}
		next = append(next, existing)
	}
	if !found {
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return c.persistAndPublish(next)
}

// persistAndPublish writes the new set to the store and, only on success,
// makes it visible to readers. Callers hold c.mu.
func (c *Catalog) persistAndPublish(next []ProviderDefinition) error {
	blob, err := json.MarshalIndent(next, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling providers: %w", err)
	}
	if err := c.store.Put(storeKey, blob); err != nil {
		return fmt.Errorf("persisting providers: %w", err)
	}
	c.publish(next)
	return nil
}

// Validate checks a definition against its declared constraints.
func Validate(def ProviderDefinition) error {
	if err := validate.Struct(def); err != nil {
		return fmt.Errorf("invalid provider definition: %w", err)
	}
	return nil
}

func parseDefinitions(blob []byte) ([]ProviderDefinition, error) {
	var defs []ProviderDefinition
	if err := json.Unmarshal(blob, &defs); err != nil {
		return nil, fmt.Errorf("parsing provider definitions: %w", err)
	}
	return defs, nil
}
