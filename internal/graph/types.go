package graph

// Task is a single schedule activity as supplied by a schedule source.
// Duration is in caller-defined units (days on site schedules).
type Task struct {
	ID           string   `json:"id" yaml:"id"`
	Name         string   `json:"name,omitempty" yaml:"name,omitempty"`
	Duration     float64  `json:"duration" yaml:"duration"`
	Dependencies []string `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	Phase        string   `json:"phase,omitempty" yaml:"phase,omitempty"`
	Labels       []string `json:"labels,omitempty" yaml:"labels,omitempty"`
}

// TaskGraph indexes a task list for lookup by id. It never owns the
// caller's tasks: Order and Tasks point into a private copy.
type TaskGraph struct {
	Tasks    map[string]*Task
	Order    []string            // ids in input order
	Adj      map[string][]string // task -> tasks that depend on it (successors)
	RevAdj   map[string][]string // task -> resolved dependencies (predecessors)
	Dangling map[string][]string // task -> dependency ids not in the graph
	Roots    []string            // tasks with no resolved dependencies
	Leaves   []string            // tasks nothing depends on
}
