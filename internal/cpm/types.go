package cpm

import "github.com/joshharrison/sitecpm/internal/graph"

// Schedule holds the complete critical path analysis.
type Schedule struct {
	Tasks             []AnnotatedTask `json:"tasks"` // input order
	ProjectDuration   float64         `json:"project_duration"`
	CriticalPath      []string        `json:"critical_path"` // critical ids ordered by ES
	Waves             []Wave          `json:"waves"`         // tasks grouped by ES
	CriticalTolerance float64         `json:"critical_tolerance"`
}

// AnnotatedTask is a copy of an input task with its computed schedule.
type AnnotatedTask struct {
	graph.Task
	ES         float64  `json:"earliest_start"`
	EF         float64  `json:"earliest_finish"`
	LS         float64  `json:"latest_start"`
	LF         float64  `json:"latest_finish"`
	Slack      float64  `json:"slack"`
	IsCritical bool     `json:"is_critical"`
	Successors []string `json:"successors,omitempty"`
	Wave       int      `json:"wave"`
}

// Wave represents a group of tasks sharing the same earliest start.
type Wave struct {
	Index      int      `json:"index"`
	Start      float64  `json:"start"`
	TaskIDs    []string `json:"task_ids"`
	IsCritical bool     `json:"is_critical"` // true if wave contains critical path tasks
}

// Task returns the annotated task with the given id.
func (s *Schedule) Task(id string) (*AnnotatedTask, bool) {
	for i := range s.Tasks {
		if s.Tasks[i].ID == id {
			return &s.Tasks[i], true
		}
	}
	return nil, false
}
