package registry

import (
	"sync"

	"github.com/leapstack-labs/lpi/internal/models"
)

var (
	defaultOnce     sync.Once
	defaultRegistry *ModelRegistry
)

// Default returns the process-wide registry holding the built-in catalog.
// It is built on first use and frozen; use Clone to extend it.
func Default() *ModelRegistry {
	defaultOnce.Do(func() {
		r := NewModelRegistry()
		if err := r.RegisterAll(models.Catalog()...); err != nil {
			// The catalog is static; a failure here is a programming error.
			panic("registry: invalid built-in catalog: " + err.Error())
		}
		r.Freeze()
		defaultRegistry = r
	})
	return defaultRegistry
}
