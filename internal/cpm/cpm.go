// Package cpm computes critical path schedules for site task graphs.
package cpm

import (
	"fmt"
	"math"
	"slices"
	"sort"

	"github.com/joshharrison/sitecpm/internal/graph"
)

// DefaultCriticalTolerance is the slack, in duration units, at or below which
// a task counts as critical. Schedules built from calendar dates carry up to
// a unit of rounding noise, so exact zero would miss genuinely critical work.
const DefaultCriticalTolerance = 1.0

// Engine runs the forward and backward passes. The zero value uses a
// tolerance of 0; use NewEngine for the default.
type Engine struct {
	CriticalTolerance float64
}

// NewEngine returns an Engine using DefaultCriticalTolerance.
func NewEngine() *Engine {
	return &Engine{CriticalTolerance: DefaultCriticalTolerance}
}

// Compute annotates every task with ES/EF/LS/LF, slack and criticality using
// the default tolerance. The result has one entry per input task, in input order.
func Compute(tasks []graph.Task) ([]AnnotatedTask, error) {
	return NewEngine().Compute(tasks)
}

// Analyze is Compute plus project duration, critical path and waves.
func Analyze(tasks []graph.Task) (*Schedule, error) {
	return NewEngine().Analyze(tasks)
}

// Compute is the engine form of the package-level Compute.
func (e *Engine) Compute(tasks []graph.Task) ([]AnnotatedTask, error) {
	s, err := e.Analyze(tasks)
	if err != nil {
		return nil, err
	}
	return s.Tasks, nil
}

// Analyze performs critical path method analysis on a task list.
//
// Both passes iterate to a fixed point instead of walking a topological
// order, so a dependency on an unknown id simply contributes nothing. Each
// pass is capped at len(tasks)+1 sweeps; a pass still changing after that
// cannot be acyclic and fails with *CyclicGraphError.
func (e *Engine) Analyze(tasks []graph.Task) (*Schedule, error) {
	tol := e.CriticalTolerance
	if math.IsNaN(tol) || math.IsInf(tol, 0) || tol < 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTolerance, tol)
	}
	if err := validate(tasks); err != nil {
		return nil, err
	}

	g, err := graph.Build(tasks)
	if err != nil {
		return nil, fmt.Errorf("index tasks: %w", err)
	}

	out := make([]AnnotatedTask, len(g.Order))
	pos := make(map[string]int, len(g.Order))
	for i, id := range g.Order {
		pos[id] = i
		out[i] = AnnotatedTask{
			Task:       *g.Tasks[id],
			LS:         math.Inf(1),
			LF:         math.Inf(1),
			Successors: slices.Clone(g.Adj[id]),
		}
	}
	maxSweeps := len(out) + 1

	// Forward pass: ES = max(EF of predecessors), EF = ES + duration.
	for sweep := 1; ; sweep++ {
		var changed []string
		for i := range out {
			t := &out[i]
			es := 0.0
			for _, pred := range g.RevAdj[t.ID] {
				if ef := out[pos[pred]].EF; ef > es {
					es = ef
				}
			}
			ef := es + t.Duration
			if t.ES != es || t.EF != ef {
				t.ES, t.EF = es, ef
				changed = append(changed, t.ID)
			}
		}
		if len(changed) == 0 {
			break
		}
		if sweep >= maxSweeps {
			return nil, cyclicError(g, "forward", sweep, changed)
		}
	}

	projectDuration := 0.0
	for i := range out {
		if out[i].EF > projectDuration {
			projectDuration = out[i].EF
		}
	}

	// Initialize leaves with LF = projectDuration
	for _, id := range g.Leaves {
		t := &out[pos[id]]
		t.LF = projectDuration
		t.LS = projectDuration - t.Duration
	}

	// Backward pass in reverse order: LF = min(LS of successors), LS = LF - duration.
	for sweep := 1; ; sweep++ {
		var changed []string
		for i := len(out) - 1; i >= 0; i-- {
			t := &out[i]
			lf := projectDuration
			for _, succ := range t.Successors {
				if ls := out[pos[succ]].LS; ls < lf {
					lf = ls
				}
			}
			ls := lf - t.Duration
			if t.LF != lf || t.LS != ls {
				t.LF, t.LS = lf, ls
				changed = append(changed, t.ID)
			}
		}
		if len(changed) == 0 {
			break
		}
		// Unreachable while the forward pass converges: that leaves only
		// zero-duration cycles, which also settle here. Kept as a bound.
		if sweep >= maxSweeps {
			slices.Reverse(changed)
			return nil, cyclicError(g, "backward", sweep, changed)
		}
	}

	s := &Schedule{
		Tasks:             out,
		ProjectDuration:   projectDuration,
		CriticalTolerance: tol,
	}
	for i := range out {
		t := &out[i]
		t.Slack = t.LS - t.ES
		t.IsCritical = t.Slack <= tol
	}

	critical := make([]int, 0, len(out))
	for i := range out {
		if out[i].IsCritical {
			critical = append(critical, i)
		}
	}
	sort.SliceStable(critical, func(a, b int) bool {
		return out[critical[a]].ES < out[critical[b]].ES
	})
	for _, i := range critical {
		s.CriticalPath = append(s.CriticalPath, out[i].ID)
	}

	s.Waves = computeWaves(out)
	return s, nil
}

// validate rejects tasks the passes cannot schedule.
func validate(tasks []graph.Task) error {
	seen := make(map[string]bool, len(tasks))
	for i, t := range tasks {
		switch {
		case t.ID == "":
			return &InvalidTaskError{Index: i, Reason: "missing id"}
		case seen[t.ID]:
			return &InvalidTaskError{TaskID: t.ID, Index: i, Reason: "duplicate id"}
		case math.IsNaN(t.Duration) || math.IsInf(t.Duration, 0):
			return &InvalidTaskError{TaskID: t.ID, Index: i, Reason: fmt.Sprintf("duration %v is not finite", t.Duration)}
		case t.Duration < 0:
			return &InvalidTaskError{TaskID: t.ID, Index: i, Reason: fmt.Sprintf("negative duration %v", t.Duration)}
		}
		seen[t.ID] = true
	}
	return nil
}

func cyclicError(g *graph.TaskGraph, pass string, sweeps int, unstable []string) *CyclicGraphError {
	return &CyclicGraphError{
		Pass:     pass,
		Sweeps:   sweeps,
		Unstable: unstable,
		Cycle:    g.DetectCycle(),
	}
}

// computeWaves groups tasks by their earliest start time.
func computeWaves(tasks []AnnotatedTask) []Wave {
	groups := make(map[float64][]int)
	for i := range tasks {
		es := tasks[i].ES
		groups[es] = append(groups[es], i)
	}

	starts := make([]float64, 0, len(groups))
	for es := range groups {
		starts = append(starts, es)
	}
	sort.Float64s(starts)

	waves := make([]Wave, len(starts))
	for w, es := range starts {
		members := groups[es]

		// Sort critical tasks first within wave
		sort.SliceStable(members, func(a, b int) bool {
			return tasks[members[a]].IsCritical && !tasks[members[b]].IsCritical
		})

		wave := Wave{Index: w, Start: es}
		for _, i := range members {
			tasks[i].Wave = w
			wave.TaskIDs = append(wave.TaskIDs, tasks[i].ID)
			if tasks[i].IsCritical {
				wave.IsCritical = true
			}
		}
		waves[w] = wave
	}

	return waves
}
