package reporter

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/joshharrison/sitecpm/internal/cpm"
	"github.com/joshharrison/sitecpm/internal/schedule"
)

// ErrUnsupportedProject is returned for project types that have no
// dependency schedule to analyze.
var ErrUnsupportedProject = errors.New("critical path reporting is only available for villa projects")

// ScheduledTypes lists the project types that carry a dependency schedule.
// A project with no type is treated as a villa.
var ScheduledTypes = []string{"Villa"}

// Supports reports whether critical path reports can be generated for p.
func Supports(p schedule.Project) bool {
	if p.Type == "" {
		return true
	}
	for _, t := range ScheduledTypes {
		if strings.EqualFold(p.Type, t) {
			return true
		}
	}
	return false
}

// Generate fetches the project's schedule from src, analyzes it with e and
// returns a Reporter for the result. Any failure aborts the report: a
// partially analyzed schedule is never returned.
func Generate(ctx context.Context, src schedule.Source, e *cpm.Engine, project schedule.Project) (*Reporter, error) {
	if !Supports(project) {
		return nil, fmt.Errorf("%w (project %s is %q)", ErrUnsupportedProject, project.JobNo, project.Type)
	}
	if e == nil {
		e = cpm.NewEngine()
	}

	tasks, err := src.Schedule(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("load schedule: %w", err)
	}

	s, err := e.Analyze(tasks)
	if err != nil {
		return nil, fmt.Errorf("CPM analysis: %w", err)
	}

	return New(project, s), nil
}
