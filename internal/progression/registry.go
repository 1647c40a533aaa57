// Package progression classifies the highest tile reached in a game into a
// cosmetic tier used to pick the board theme. Tiers never affect gameplay.
//
// Policies register themselves in init() functions, so hosts can list them
// and select one by name from configuration.
package progression

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownPolicy is returned by Create for unregistered policy names.
var ErrUnknownPolicy = errors.New("progression: unknown policy")

// Classifier maps the maximum tile value to a tier.
type Classifier interface {
	// Tier returns the tier for the given maximum tile. Tiers start at 0
	// and are non-decreasing in maxTile.
	Tier(maxTile int) int

	// Floor returns the smallest tile value that reaches tier, or -1 when
	// the tier cannot be reached.
	Floor(tier int) int
}

// Settings carries the tunables a policy may read.
type Settings struct {
	BandWidth  int   // doublings per tier for the formula policy
	Thresholds []int // ascending tile values for the table policy
}

// Factory builds a classifier from settings.
type Factory func(Settings) (Classifier, error)

var (
	factories = make(map[string]Factory)
	mu        sync.RWMutex
)

// Register adds a policy factory under name.
// Panics if the name is already taken.
func Register(name string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[name]; exists {
		panic(fmt.Sprintf("progression: policy %q already registered", name))
	}
	factories[name] = f
}

// Create builds the named policy.
func Create(name string, s Settings) (Classifier, error) {
	mu.RLock()
	f, ok := factories[name]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownPolicy, name)
	}
	return f(s)
}

// Exists reports whether a policy with the given name is registered.
func Exists(name string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := factories[name]
	return ok
}

// List returns the registered policy names, sorted.
func List() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
