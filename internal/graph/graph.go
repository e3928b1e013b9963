package graph

import (
	"fmt"
	"slices"
)

// Build indexes tasks by id and derives the successor lists. Dependencies on
// ids that are not in the list are recorded in Dangling and otherwise
// ignored. Build does not reject cycles; call DetectCycle for that.
func Build(tasks []Task) (*TaskGraph, error) {
	g := &TaskGraph{
		Tasks:    make(map[string]*Task, len(tasks)),
		Order:    make([]string, 0, len(tasks)),
		Adj:      make(map[string][]string),
		RevAdj:   make(map[string][]string),
		Dangling: make(map[string][]string),
	}

	for i := range tasks {
		t := tasks[i].Clone()
		if t.ID == "" {
			return nil, fmt.Errorf("task at index %d has no id", i)
		}
		if _, ok := g.Tasks[t.ID]; ok {
			return nil, fmt.Errorf("duplicate task id %q", t.ID)
		}
		g.Tasks[t.ID] = &t
		g.Order = append(g.Order, t.ID)
	}

	// Successors are appended in input order so that later sweeps are
	// deterministic. A dependency listed twice yields a single edge.
	for _, id := range g.Order {
		seen := make(map[string]bool)
		for _, dep := range g.Tasks[id].Dependencies {
			if seen[dep] {
				continue
			}
			seen[dep] = true
			if _, ok := g.Tasks[dep]; !ok {
				g.Dangling[id] = append(g.Dangling[id], dep)
				continue
			}
			g.Adj[dep] = append(g.Adj[dep], id)
			g.RevAdj[id] = append(g.RevAdj[id], dep)
		}
	}

	for _, id := range g.Order {
		if len(g.RevAdj[id]) == 0 {
			g.Roots = append(g.Roots, id)
		}
		if len(g.Adj[id]) == 0 {
			g.Leaves = append(g.Leaves, id)
		}
	}

	return g, nil
}

// Clone returns a deep copy of the task.
func (t Task) Clone() Task {
	t.Dependencies = slices.Clone(t.Dependencies)
	t.Labels = slices.Clone(t.Labels)
	return t
}

// DetectCycle returns the cycle path if one exists, or nil if the graph is acyclic.
// Uses DFS with coloring: white (unvisited), gray (in progress), black (done).
// The returned path starts and ends with the same id.
func (g *TaskGraph) DetectCycle() []string {
	const (
		white = 0
		gray  = 1
		black = 2
	)

	color := make(map[string]int)
	parent := make(map[string]string)

	var dfs func(node string) []string
	dfs = func(node string) []string {
		color[node] = gray
		for _, next := range g.Adj[node] {
			if color[next] == gray {
				cycle := []string{next, node}
				cur := node
				for cur != next {
					cur = parent[cur]
					cycle = append(cycle, cur)
				}
				slices.Reverse(cycle)
				return cycle
			}
			if color[next] == white {
				parent[next] = node
				if cycle := dfs(next); cycle != nil {
					return cycle
				}
			}
		}
		color[node] = black
		return nil
	}

	// Input order keeps the reported cycle stable between runs.
	for _, id := range g.Order {
		if color[id] == white {
			if cycle := dfs(id); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}

// TaskCount returns the number of tasks in the graph.
func (g *TaskGraph) TaskCount() int {
	return len(g.Order)
}

// List returns copies of the indexed tasks in input order.
func (g *TaskGraph) List() []Task {
	out := make([]Task, 0, len(g.Order))
	for _, id := range g.Order {
		out = append(out, g.Tasks[id].Clone())
	}
	return out
}

// Filter returns a new TaskGraph containing only tasks matching the predicate.
// Dependencies on filtered-out tasks become dangling references.
func (g *TaskGraph) Filter(pred func(*Task) bool) (*TaskGraph, error) {
	var filtered []Task
	for _, id := range g.Order {
		if t := g.Tasks[id]; pred(t) {
			filtered = append(filtered, t.Clone())
		}
	}
	return Build(filtered)
}
