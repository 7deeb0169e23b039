package models

import (
	"sync"

	"github.com/leapstack-labs/lpi/pkg/core"
)

// Priorities used by the catalog. Competing rules for one kind are tried in
// ascending order.
const (
	PriorityPreferred = 0
	PriorityDefault   = 10
	PriorityFallback  = 20
)

var (
	catalogMu sync.Mutex
	catalog   []core.ModelRule
)

// register adds rules to the built-in catalog.
// Call this from init() functions.
func register(rules ...core.ModelRule) {
	catalogMu.Lock()
	defer catalogMu.Unlock()
	catalog = append(catalog, rules...)
}

// Catalog returns the built-in rules in registration order.
func Catalog() []core.ModelRule {
	catalogMu.Lock()
	defer catalogMu.Unlock()
	return append([]core.ModelRule(nil), catalog...)
}
