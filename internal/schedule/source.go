// Package schedule supplies task lists to the scheduling engine. Report
// generation receives a Source explicitly; nothing here is looked up globally.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/joshharrison/sitecpm/internal/graph"
)

// ErrNoSchedule is returned when a document holds no task array at the
// requested location.
var ErrNoSchedule = errors.New("no schedule found")

// Project identifies the site a schedule belongs to.
type Project struct {
	JobNo string `json:"job_no" yaml:"job_no"`
	Name  string `json:"name,omitempty" yaml:"name,omitempty"`
	Type  string `json:"type,omitempty" yaml:"type,omitempty"` // e.g. "Villa"
}

// Source produces the task list for a project.
type Source interface {
	Schedule(ctx context.Context, project Project) ([]graph.Task, error)
}

// StaticSource serves a fixed task list regardless of project.
type StaticSource []graph.Task

// Schedule returns copies of the stored tasks.
func (s StaticSource) Schedule(ctx context.Context, _ Project) ([]graph.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]graph.Task, len(s))
	for i := range s {
		out[i] = s[i].Clone()
	}
	return out, nil
}

// expandQuery substitutes the project's job number into a gjson path.
func expandQuery(query string, project Project) string {
	return strings.ReplaceAll(query, "{{jobNo}}", project.JobNo)
}

// DecodeJSON parses a task array out of a JSON document. With an empty query
// the document itself must be the array; otherwise query is a gjson path.
// Ids and dependency references may be strings or numbers.
func DecodeJSON(data []byte, query string) ([]graph.Task, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("parse schedule: invalid JSON")
	}

	root := gjson.ParseBytes(data)
	if query != "" {
		root = root.Get(query)
		if !root.Exists() {
			return nil, fmt.Errorf("%w at %q", ErrNoSchedule, query)
		}
	}
	if !root.IsArray() {
		return nil, fmt.Errorf("%w: expected a task array, got %s", ErrNoSchedule, root.Type)
	}

	var tasks []graph.Task
	var decodeErr error
	root.ForEach(func(key, item gjson.Result) bool {
		t, err := decodeTask(item)
		if err != nil {
			decodeErr = fmt.Errorf("task %d: %w", key.Int(), err)
			return false
		}
		tasks = append(tasks, t)
		return true
	})
	if decodeErr != nil {
		return nil, decodeErr
	}
	if tasks == nil {
		tasks = []graph.Task{}
	}
	return tasks, nil
}

func decodeTask(item gjson.Result) (graph.Task, error) {
	if !item.IsObject() {
		return graph.Task{}, fmt.Errorf("expected object, got %s", item.Type)
	}

	t := graph.Task{
		ID:    item.Get("id").String(),
		Name:  item.Get("name").String(),
		Phase: item.Get("phase").String(),
	}

	if d := item.Get("duration"); d.Exists() {
		if d.Type != gjson.Number {
			return graph.Task{}, fmt.Errorf("duration of %q is %s, not a number", t.ID, d.Type)
		}
		t.Duration = d.Float()
	}

	for _, dep := range item.Get("dependencies").Array() {
		t.Dependencies = append(t.Dependencies, dep.String())
	}
	for _, l := range item.Get("labels").Array() {
		t.Labels = append(t.Labels, l.String())
	}
	return t, nil
}
