// Package catalog keeps the admin-editable catering settings: which meal
// types may be ordered and how many meals one vehicle carries.
package catalog

import (
	"fmt"
	"strings"
	"sync"
)

// DefaultCapacity is the number of meals a vehicle carries per trip.
const DefaultCapacity = 100

// DefaultMealTypes is the catalog a fresh service starts with.
var DefaultMealTypes = []string{"Standard", "Vegetarian", "Vegan", "Gluten-Free"}

// Config seeds a Catalog.
type Config struct {
	MealTypes []string `json:"meal_types"`
	Capacity  int      `json:"capacity"`
}

// SetDefaults applies the built-in catalog.
func (c *Config) SetDefaults() {
	if len(c.MealTypes) == 0 {
		c.MealTypes = append([]string(nil), DefaultMealTypes...)
	}
	if c.Capacity == 0 {
		c.Capacity = DefaultCapacity
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.Capacity < 1 {
		return fmt.Errorf("catalog: capacity must be at least 1, got %d", c.Capacity)
	}
	return nil
}

// Catalog is safe for concurrent use.
type Catalog struct {
	mu       sync.RWMutex
	types    []string
	allowed  map[string]struct{}
	capacity int
}

// New builds a catalog from cfg after applying defaults.
func New(cfg Config) (*Catalog, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Catalog{capacity: cfg.Capacity}
	if err := c.SetMealTypes(cfg.MealTypes); err != nil {
		return nil, err
	}
	return c, nil
}

// MealTypes returns the allowed meal types in catalog order.
func (c *Catalog) MealTypes() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.types...)
}

// SetMealTypes replaces the catalog. Blank names are ignored and an empty
// result is rejected.
func (c *Catalog) SetMealTypes(types []string) error {
	clean := make([]string, 0, len(types))
	allowed := make(map[string]struct{}, len(types))
	for _, t := range types {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := allowed[t]; dup {
			continue
		}
		allowed[t] = struct{}{}
		clean = append(clean, t)
	}
	if len(clean) == 0 {
		return fmt.Errorf("catalog: at least one meal type is required")
	}
	c.mu.Lock()
	c.types = clean
	c.allowed = allowed
	c.mu.Unlock()
	return nil
}

// Allowed reports whether mealType may be ordered.
func (c *Catalog) Allowed(mealType string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.allowed[mealType]
	return ok
}

// Capacity returns the meals carried per trip.
func (c *Catalog) Capacity() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.capacity
}

// SetCapacity updates the meals carried per trip.
func (c *Catalog) SetCapacity(n int) error {
	if n < 1 {
		return fmt.Errorf("catalog: capacity must be at least 1, got %d", n)
	}
	c.mu.Lock()
	c.capacity = n
	c.mu.Unlock()
	return nil
}
