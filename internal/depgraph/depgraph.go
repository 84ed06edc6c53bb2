// Package depgraph builds the field dependency graph for one basket and
// produces a deterministic topological evaluation order.
package depgraph

import (
	"fmt"
	"strings"

	"github.com/sells-group/underwrite-cli/internal/catalog"
)

// CycleError reports a dependency cycle in a basket catalogue. Fatal at load
// time; Path holds the full cycle for diagnosis, e.g. [a, b] for a <-> b.
type CycleError struct {
	Basket string
	Path   []string
}

func (e *CycleError) Error() string {
	cycle := strings.Join(append(append([]string{}, e.Path...), e.Path[0]), " -> ")
	return fmt.Sprintf("depgraph: basket %q: dependency cycle: %s", e.Basket, cycle)
}

// Graph is the derived dependency graph for one basket: nodes are field
// keys, edges run from a dependency to each field whose formula reads it.
// Immutable once built.
type Graph struct {
	order      []string
	dependents map[string][]string
}

// Build constructs the graph from each field's declared input list and
// topologically sorts it with Kahn's algorithm. Ties are broken by catalogue
// declaration order so evaluation is reproducible. Returns a CycleError if
// the graph is not acyclic.
func Build(cat *catalog.Catalog) (*Graph, error) {
	fields := cat.Fields()

	indegree := make(map[string]int, len(fields))
	dependents := make(map[string][]string, len(fields))
	for _, f := range fields {
		indegree[f.Key] = len(f.DependsOn)
		for _, dep := range f.DependsOn {
			dependents[dep] = append(dependents[dep], f.Key)
		}
	}

	// Ready set kept as a slice; the minimum declaration index is popped
	// each round. Baskets hold tens of fields, quadratic is fine.
	var ready []string
	for _, f := range fields {
		if indegree[f.Key] == 0 {
			ready = append(ready, f.Key)
		}
	}

	order := make([]string, 0, len(fields))
	for len(ready) > 0 {
		min := 0
		for i := 1; i < len(ready); i++ {
			if cat.Index(ready[i]) < cat.Index(ready[min]) {
				min = i
			}
		}
		key := ready[min]
		ready = append(ready[:min], ready[min+1:]...)
		order = append(order, key)

		for _, dep := range dependents[key] {
			indegree[dep]--
			if indegree[dep] == 0 {
				ready = append(ready, dep)
			}
		}
	}

	if len(order) != len(fields) {
		return nil, &CycleError{Basket: cat.ID(), Path: extractCycle(cat, indegree)}
	}

	return &Graph{order: order, dependents: dependents}, nil
}

// extractCycle walks dependsOn edges among the unsorted remainder until a
// node repeats, then returns the cycle normalized to start at its member
// with the smallest declaration index.
func extractCycle(cat *catalog.Catalog, indegree map[string]int) []string {
	remaining := make(map[string]bool)
	start := ""
	for _, f := range cat.Fields() {
		if indegree[f.Key] > 0 {
			remaining[f.Key] = true
			if start == "" {
				start = f.Key
			}
		}
	}

	seen := make(map[string]int)
	var path []string
	key := start
	for {
		if at, ok := seen[key]; ok {
			path = path[at:]
			break
		}
		seen[key] = len(path)
		path = append(path, key)

		f, err := cat.Field(key)
		if err != nil {
			break
		}
		next := ""
		for _, dep := range f.DependsOn {
			if remaining[dep] {
				next = dep
				break
			}
		}
		if next == "" {
			break
		}
		key = next
	}

	// The walk followed dependsOn edges, so the path reads dependent ->
	// dependency; reverse it to read in evaluation direction.
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	min := 0
	for i := range path {
		if cat.Index(path[i]) < cat.Index(path[min]) {
			min = i
		}
	}
	rotated := make([]string, 0, len(path))
	rotated = append(rotated, path[min:]...)
	rotated = append(rotated, path[:min]...)
	return rotated
}

// EvaluationOrder returns all field keys such that every field appears after
// everything in its DependsOn list.
func (g *Graph) EvaluationOrder() []string {
	return append([]string(nil), g.order...)
}

// Affected returns the transitive dependents of the given keys in
// evaluation order. Every entry is a derived field; this is the set to
// re-derive after those fields change.
func (g *Graph) Affected(keys ...string) []string {
	reach := make(map[string]bool)
	stack := append([]string(nil), keys...)
	for len(stack) > 0 {
		key := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, dep := range g.dependents[key] {
			if !reach[dep] {
				reach[dep] = true
				stack = append(stack, dep)
			}
		}
	}

	var out []string
	for _, key := range g.order {
		if reach[key] {
			out = append(out, key)
		}
	}
	return out
}
