package graph

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestBuild_SimpleDAG(t *testing.T) {
	// A -> B -> D
	// A -> C -> D
	tasks := []Task{
		{ID: "a", Name: "Excavation", Duration: 3},
		{ID: "b", Name: "Footings", Duration: 2, Dependencies: []string{"a"}},
		{ID: "c", Name: "Drainage", Duration: 1, Dependencies: []string{"a"}},
		{ID: "d", Name: "Slab", Duration: 4, Dependencies: []string{"b", "c"}},
	}

	g, err := Build(tasks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if g.TaskCount() != 4 {
		t.Errorf("expected 4 tasks, got %d", g.TaskCount())
	}
	if diff := cmp.Diff([]string{"a"}, g.Roots); diff != "" {
		t.Errorf("roots mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"d"}, g.Leaves); diff != "" {
		t.Errorf("leaves mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"b", "c"}, g.Adj["a"]); diff != "" {
		t.Errorf("successors of a mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"b", "c"}, g.RevAdj["d"]); diff != "" {
		t.Errorf("predecessors of d mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a", "b", "c", "d"}, g.Order); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_Empty(t *testing.T) {
	g, err := Build(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.TaskCount() != 0 {
		t.Errorf("expected 0 tasks, got %d", g.TaskCount())
	}
	if cycle := g.DetectCycle(); cycle != nil {
		t.Errorf("expected no cycle, got %v", cycle)
	}
}

func TestBuild_DanglingDependency(t *testing.T) {
	tasks := []Task{
		{ID: "x", Duration: 2, Dependencies: []string{"ghost"}},
		{ID: "y", Duration: 1},
	}

	g, err := Build(tasks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if diff := cmp.Diff([]string{"ghost"}, g.Dangling["x"]); diff != "" {
		t.Errorf("dangling mismatch (-want +got):\n%s", diff)
	}
	if len(g.RevAdj["x"]) != 0 {
		t.Errorf("expected no resolved predecessors for x, got %v", g.RevAdj["x"])
	}
	if _, ok := g.Adj["ghost"]; ok {
		t.Error("missing dependency must not gain a successor entry")
	}
	if diff := cmp.Diff([]string{"x", "y"}, g.Roots); diff != "" {
		t.Errorf("roots mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_DuplicateDependencyCollapsed(t *testing.T) {
	tasks := []Task{
		{ID: "a", Duration: 1},
		{ID: "b", Duration: 1, Dependencies: []string{"a", "a"}},
	}

	g, err := Build(tasks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(g.Adj["a"]) != 1 {
		t.Errorf("expected a single edge a->b, got %v", g.Adj["a"])
	}
}

func TestBuild_RejectsDuplicateID(t *testing.T) {
	_, err := Build([]Task{{ID: "a"}, {ID: "a"}})
	if err == nil {
		t.Fatal("expected duplicate id error, got nil")
	}
}

func TestBuild_RejectsEmptyID(t *testing.T) {
	_, err := Build([]Task{{ID: ""}})
	if err == nil {
		t.Fatal("expected empty id error, got nil")
	}
}

func TestBuild_DoesNotAliasInput(t *testing.T) {
	tasks := []Task{
		{ID: "a", Duration: 1},
		{ID: "b", Duration: 1, Dependencies: []string{"a"}},
	}

	g, err := Build(tasks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	g.Tasks["b"].Dependencies[0] = "mutated"
	if tasks[1].Dependencies[0] != "a" {
		t.Errorf("graph shares dependency slice with caller: %v", tasks[1].Dependencies)
	}
}

func TestDetectCycle_NoCycle(t *testing.T) {
	g, err := Build([]Task{
		{ID: "a"},
		{ID: "b", Dependencies: []string{"a"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cycle := g.DetectCycle(); cycle != nil {
		t.Errorf("expected no cycle, got %v", cycle)
	}
}

func TestDetectCycle_WithCycle(t *testing.T) {
	// a -> b -> c -> a
	g, err := Build([]Task{
		{ID: "a", Dependencies: []string{"c"}},
		{ID: "b", Dependencies: []string{"a"}},
		{ID: "c", Dependencies: []string{"b"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cycle := g.DetectCycle()
	if cycle == nil {
		t.Fatal("expected cycle, got nil")
	}
	if len(cycle) != 4 {
		t.Errorf("expected closed cycle of length 4, got %v", cycle)
	}
	if cycle[0] != cycle[len(cycle)-1] {
		t.Errorf("expected cycle to start and end on the same task, got %v", cycle)
	}
}

func TestDetectCycle_SelfDependency(t *testing.T) {
	g, err := Build([]Task{{ID: "a", Duration: 1, Dependencies: []string{"a"}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if diff := cmp.Diff([]string{"a", "a"}, g.DetectCycle()); diff != "" {
		t.Errorf("cycle mismatch (-want +got):\n%s", diff)
	}
}

func TestFilter(t *testing.T) {
	g, err := Build([]Task{
		{ID: "a", Phase: "substructure", Duration: 1},
		{ID: "b", Phase: "superstructure", Duration: 1, Dependencies: []string{"a"}},
		{ID: "c", Phase: "superstructure", Duration: 1, Dependencies: []string{"b"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	filtered, err := g.Filter(func(t *Task) bool {
		return t.Phase == "superstructure"
	})
	if err != nil {
		t.Fatalf("unexpected filter error: %v", err)
	}

	if filtered.TaskCount() != 2 {
		t.Errorf("expected 2 tasks after filter, got %d", filtered.TaskCount())
	}
	if _, ok := filtered.Tasks["a"]; ok {
		t.Error("task a should have been filtered out")
	}
	if diff := cmp.Diff([]string{"a"}, filtered.Dangling["b"]); diff != "" {
		t.Errorf("expected b's dependency on a to dangle (-want +got):\n%s", diff)
	}
}

func TestList_ReturnsInputOrder(t *testing.T) {
	in := []Task{{ID: "z"}, {ID: "m"}, {ID: "a"}}
	g, err := Build(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(in, g.List()); diff != "" {
		t.Errorf("list mismatch (-want +got):\n%s", diff)
	}
}
