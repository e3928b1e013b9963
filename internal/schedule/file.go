package schedule

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/joshharrison/sitecpm/internal/graph"
)

// FileSource reads a schedule from a JSON or YAML file.
type FileSource struct {
	Path  string
	Query string // gjson path, JSON only; may contain {{jobNo}}
}

// Schedule reads and decodes the file. YAML files hold either a bare task
// list or a mapping with a "tasks" key.
func (f FileSource) Schedule(ctx context.Context, project Project) ([]graph.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read schedule: %w", err)
	}

	switch strings.ToLower(filepath.Ext(f.Path)) {
	case ".yaml", ".yml":
		if f.Query != "" {
			return nil, fmt.Errorf("%s: query %q is only supported for JSON schedules", f.Path, f.Query)
		}
		return decodeYAML(data)
	default:
		tasks, err := DecodeJSON(data, expandQuery(f.Query, project))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Path, err)
		}
		return tasks, nil
	}
}

func decodeYAML(data []byte) ([]graph.Task, error) {
	var list []graph.Task
	if err := yaml.Unmarshal(data, &list); err == nil {
		if list == nil {
			list = []graph.Task{}
		}
		return list, nil
	}

	var doc struct {
		Tasks []graph.Task `yaml:"tasks"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse schedule: %w", err)
	}
	if doc.Tasks == nil {
		return nil, fmt.Errorf("%w: no tasks key", ErrNoSchedule)
	}
	return doc.Tasks, nil
}
