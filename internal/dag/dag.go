// Package dag provides graph operations over quantity kinds. An edge runs
// from an input kind to the output kind of a rule that consumes it, so the
// graph shows which quantities can feed which.
package dag

import (
	"fmt"

	"github.com/leapstack-labs/lpi/pkg/core"
	"github.com/leapstack-labs/lpi/pkg/quantity"
)

// RuleSource is anything that can list rules, typically a registry.
type RuleSource interface {
	All() []core.ModelRule
}

// Node represents a kind in the graph.
type Node struct {
	Kind quantity.Kind
	// Rules lists the names of the rules producing Kind, in source order
	Rules []string
}

type edgeKey struct {
	from, to quantity.Kind
}

// Graph is a directed graph of kinds.
type Graph struct {
	nodes   map[quantity.Kind]*Node
	edges   map[quantity.Kind][]quantity.Kind // input -> outputs (dependents)
	parents map[quantity.Kind][]quantity.Kind // output -> inputs (dependencies)
	labels  map[edgeKey][]string              // rules behind each edge
}

// NewGraph creates a new empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:   make(map[quantity.Kind]*Node),
		edges:   make(map[quantity.Kind][]quantity.Kind),
		parents: make(map[quantity.Kind][]quantity.Kind),
		labels:  make(map[edgeKey][]string),
	}
}

// FromRules builds the graph of every rule in src.
func FromRules(src RuleSource) *Graph {
	g := NewGraph()
	for _, rule := range src.All() {
		g.AddRule(rule)
	}
	return g
}

// AddNode adds a kind to the graph if absent.
func (g *Graph) AddNode(k quantity.Kind) *Node {
	if n, exists := g.nodes[k]; exists {
		return n
	}
	n := &Node{Kind: k}
	g.nodes[k] = n
	g.edges[k] = []quantity.Kind{}
	g.parents[k] = []quantity.Kind{}
	return n
}

// AddRule adds the rule's output node and one edge per input.
func (g *Graph) AddRule(rule core.ModelRule) {
	out := g.AddNode(rule.Output)
	out.Rules = append(out.Rules, rule.Name)
	for _, in := range rule.Inputs {
		g.AddNode(in)
		_ = g.AddEdge(in, rule.Output, rule.Name)
	}
}

// AddEdge adds a directed edge from input to output, labelled with the rule.
func (g *Graph) AddEdge(from, to quantity.Kind, rule string) error {
	if _, exists := g.nodes[from]; !exists {
		return fmt.Errorf("node %s does not exist", from)
	}
	if _, exists := g.nodes[to]; !exists {
		return fmt.Errorf("node %s does not exist", to)
	}
	if from == to {
		return fmt.Errorf("self-loop detected: %s", from)
	}

	if !contains(g.edges[from], to) {
		g.edges[from] = append(g.edges[from], to)
	}
	if !contains(g.parents[to], from) {
		g.parents[to] = append(g.parents[to], from)
	}
	key := edgeKey{from, to}
	if rule != "" && !containsString(g.labels[key], rule) {
		g.labels[key] = append(g.labels[key], rule)
	}
	return nil
}

// Node returns the node for k.
func (g *Graph) Node(k quantity.Kind) (*Node, bool) {
	n, ok := g.nodes[k]
	return n, ok
}

// Parents returns the kinds k can be derived from, sorted by name.
func (g *Graph) Parents(k quantity.Kind) []quantity.Kind {
	return sorted(g.parents[k])
}

// Children returns the kinds that can be derived from k, sorted by name.
func (g *Graph) Children(k quantity.Kind) []quantity.Kind {
	return sorted(g.edges[k])
}

// EdgeRules returns the rules behind the edge from -> to.
func (g *Graph) EdgeRules(from, to quantity.Kind) []string {
	return g.labels[edgeKey{from, to}]
}

// Kinds returns all kinds in the graph, sorted by name.
func (g *Graph) Kinds() []quantity.Kind {
	kinds := make([]quantity.Kind, 0, len(g.nodes))
	for k := range g.nodes {
		kinds = append(kinds, k)
	}
	quantity.SortKinds(kinds)
	return kinds
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int {
	count := 0
	for _, children := range g.edges {
		count += len(children)
	}
	return count
}

// HasCycle returns true if the graph contains a cycle, along with the cycle
// path. The path starts and ends with the same kind. Traversal order is
// sorted so the reported cycle is deterministic.
func (g *Graph) HasCycle() (bool, []quantity.Kind) {
	visited := make(map[quantity.Kind]bool)
	recStack := make(map[quantity.Kind]bool)
	path := make(map[quantity.Kind]quantity.Kind)

	var cyclePath []quantity.Kind

	var dfs func(k quantity.Kind) bool
	dfs = func(k quantity.Kind) bool {
		visited[k] = true
		recStack[k] = true

		for _, child := range sorted(g.edges[k]) {
			if !visited[child] {
				path[child] = k
				if dfs(child) {
					return true
				}
			} else if recStack[child] {
				// Found cycle, reconstruct path
				cyclePath = []quantity.Kind{child}
				for curr := k; curr != child; curr = path[curr] {
					cyclePath = append([]quantity.Kind{curr}, cyclePath...)
				}
				cyclePath = append([]quantity.Kind{child}, cyclePath...)
				return true
			}
		}

		recStack[k] = false
		return false
	}

	for _, k := range g.Kinds() {
		if !visited[k] {
			if dfs(k) {
				return true, cyclePath
			}
		}
	}

	return false, nil
}

// Validate returns a *core.CyclicDependencyError if the graph has a cycle.
func (g *Graph) Validate() error {
	if hasCycle, cyclePath := g.HasCycle(); hasCycle {
		return &core.CyclicDependencyError{Path: cyclePath}
	}
	return nil
}

// Levels groups kinds by derivation depth. Level 0 holds kinds no rule
// produces from other kinds (pure inputs); level N kinds need at least one
// input from level N-1.
func (g *Graph) Levels() ([][]quantity.Kind, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}

	assigned := make(map[quantity.Kind]int)

	var getLevel func(k quantity.Kind) int
	getLevel = func(k quantity.Kind) int {
		if level, ok := assigned[k]; ok {
			return level
		}

		parents := g.parents[k]
		if len(parents) == 0 {
			assigned[k] = 0
			return 0
		}

		maxParentLevel := 0
		for _, parent := range parents {
			if pl := getLevel(parent); pl > maxParentLevel {
				maxParentLevel = pl
			}
		}

		level := maxParentLevel + 1
		assigned[k] = level
		return level
	}

	maxLevel := 0
	for k := range g.nodes {
		if level := getLevel(k); level > maxLevel {
			maxLevel = level
		}
	}

	levels := make([][]quantity.Kind, maxLevel+1)
	for i := range levels {
		levels[i] = []quantity.Kind{}
	}
	for k, level := range assigned {
		levels[level] = append(levels[level], k)
	}
	for i := range levels {
		quantity.SortKinds(levels[i])
	}

	return levels, nil
}

// Downstream returns the given kinds plus every kind derivable from them.
func (g *Graph) Downstream(kinds []quantity.Kind) []quantity.Kind {
	affected := make(map[quantity.Kind]bool)

	var mark func(k quantity.Kind)
	mark = func(k quantity.Kind) {
		if affected[k] {
			return
		}
		affected[k] = true
		for _, child := range g.edges[k] {
			mark(child)
		}
	}

	for _, k := range kinds {
		if _, exists := g.nodes[k]; exists {
			mark(k)
		}
	}

	return keys(affected)
}

// Upstream returns every kind k may transitively depend on.
func (g *Graph) Upstream(k quantity.Kind) []quantity.Kind {
	upstream := make(map[quantity.Kind]bool)

	var mark func(k quantity.Kind)
	mark = func(k quantity.Kind) {
		for _, parent := range g.parents[k] {
			if !upstream[parent] {
				upstream[parent] = true
				mark(parent)
			}
		}
	}

	mark(k)
	return keys(upstream)
}

// Roots returns kinds with no dependencies: quantities that must be supplied.
func (g *Graph) Roots() []quantity.Kind {
	var roots []quantity.Kind
	for k := range g.nodes {
		if len(g.parents[k]) == 0 {
			roots = append(roots, k)
		}
	}
	quantity.SortKinds(roots)
	return roots
}

// Leaves returns kinds nothing else is derived from.
func (g *Graph) Leaves() []quantity.Kind {
	var leaves []quantity.Kind
	for k := range g.nodes {
		if len(g.edges[k]) == 0 {
			leaves = append(leaves, k)
		}
	}
	quantity.SortKinds(leaves)
	return leaves
}

// Subgraph returns a new graph containing only the given kinds and the
// edges between them.
func (g *Graph) Subgraph(kinds []quantity.Kind) *Graph {
	sub := NewGraph()
	set := make(map[quantity.Kind]bool)

	for _, k := range kinds {
		set[k] = true
		if n, exists := g.nodes[k]; exists {
			sn := sub.AddNode(k)
			sn.Rules = append([]string(nil), n.Rules...)
		}
	}

	for _, k := range kinds {
		for _, child := range g.edges[k] {
			if set[child] {
				for _, rule := range g.labels[edgeKey{k, child}] {
					_ = sub.AddEdge(k, child, rule)
				}
			}
		}
	}

	return sub
}

func sorted(kinds []quantity.Kind) []quantity.Kind {
	out := append([]quantity.Kind(nil), kinds...)
	quantity.SortKinds(out)
	return out
}

func keys(set map[quantity.Kind]bool) []quantity.Kind {
	out := make([]quantity.Kind, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	quantity.SortKinds(out)
	return out
}

func contains(slice []quantity.Kind, k quantity.Kind) bool {
	for _, s := range slice {
		if s == k {
			return true
		}
	}
	return false
}

func containsString(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}
