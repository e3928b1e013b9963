package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/joshharrison/sitecpm/internal/cpm"
	"github.com/joshharrison/sitecpm/internal/schedule"
	"github.com/joshharrison/sitecpm/internal/ui"
)

// Reporter renders an analyzed schedule for one project.
type Reporter struct {
	Project     schedule.Project
	Schedule    *cpm.Schedule
	GeneratedAt time.Time
}

// New creates a new Reporter.
func New(project schedule.Project, s *cpm.Schedule) *Reporter {
	return &Reporter{
		Project:     project,
		Schedule:    s,
		GeneratedAt: time.Now(),
	}
}

func (r *Reporter) title() string {
	parts := []string{}
	if r.Project.JobNo != "" {
		parts = append(parts, r.Project.JobNo)
	}
	if r.Project.Name != "" {
		parts = append(parts, r.Project.Name)
	}
	if len(parts) == 0 {
		return "Site Schedule"
	}
	return strings.Join(parts, " · ")
}

// PrintTable writes the schedule grouped by wave, one row per task.
func (r *Reporter) PrintTable(w io.Writer) {
	s := r.Schedule
	critical := 0
	for _, t := range s.Tasks {
		if t.IsCritical {
			critical++
		}
	}

	fmt.Fprintf(w, "🏗  %s — %s\n", ui.BoldCyan("Critical Path"), ui.Bold(r.title()))
	fmt.Fprintf(w, "Duration:  %s units, %d tasks, %s critical %s\n\n",
		ui.Bold(ui.Units(s.ProjectDuration)), len(s.Tasks),
		ui.BoldYellow(critical), ui.Dim(fmt.Sprintf("(slack ≤ %s)", ui.Units(s.CriticalTolerance))))

	fmt.Fprintf(w, "    %-3s%-10s %-32s %6s %6s %6s %6s %6s\n", "", "ID", "TASK", "ES", "EF", "LS", "LF", "SLACK")
	for _, wave := range s.Waves {
		fmt.Fprintf(w, "  %s\n", ui.WaveHeader(wave.Index, wave.Start, wave.IsCritical))
		for _, id := range wave.TaskIDs {
			t, _ := s.Task(id)
			name := t.Name
			if r := []rune(name); len(r) > 32 {
				name = string(r[:29]) + "..."
			}
			// Pad before coloring: escape codes would count toward the width.
			fmt.Fprintf(w, "    %s  %s %-32s %6s %6s %6s %6s %s\n",
				ui.CriticalMarker(t.IsCritical), ui.BoldMagenta(fmt.Sprintf("%-10s", t.ID)), name,
				ui.Units(t.ES), ui.Units(t.EF), ui.Units(t.LS), ui.Units(t.LF),
				ui.Slack(t.Slack, s.CriticalTolerance, 6))
		}
		fmt.Fprintln(w)
	}

	if len(s.CriticalPath) > 0 {
		fmt.Fprintf(w, "Critical:  %s\n", ui.BoldYellow("⚡ "+strings.Join(s.CriticalPath, " → ")))
	}
}

// PrintWaves writes an ASCII dependency view: each wave with the tasks that
// wait on its members.
func (r *Reporter) PrintWaves(w io.Writer) {
	fmt.Fprintf(w, "🔗 %s\n", ui.BoldCyan("Task Dependency Graph"))
	fmt.Fprintln(w, ui.Cyan("═══════════════════════"))
	fmt.Fprintln(w)

	for _, wave := range r.Schedule.Waves {
		fmt.Fprintf(w, "%s Wave %d @ %s %s\n", ui.Cyan("──"), wave.Index+1, ui.Units(wave.Start), ui.Cyan("──────────────────────────────"))
		for _, id := range wave.TaskIDs {
			t, _ := r.Schedule.Task(id)
			fmt.Fprintf(w, "  %s [%s] %s\n", ui.CriticalMarker(t.IsCritical), ui.BoldMagenta(t.ID), t.Name)
			for _, succ := range t.Successors {
				fmt.Fprintf(w, "      %s %s\n", ui.Dim("└──→"), succ)
			}
		}
		fmt.Fprintln(w)
	}
}

var dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

// PrintDOT writes the task graph in Graphviz format. Critical tasks and
// edges between two critical tasks are drawn in red.
func (r *Reporter) PrintDOT(w io.Writer) {
	fmt.Fprintln(w, "digraph schedule {")
	fmt.Fprintln(w, "  rankdir=LR;")
	fmt.Fprintln(w, "  node [shape=box, style=rounded];")
	fmt.Fprintln(w)

	critical := make(map[string]bool, len(r.Schedule.Tasks))
	for _, t := range r.Schedule.Tasks {
		critical[t.ID] = t.IsCritical
		label := fmt.Sprintf("%s\n%s\nES %s  slack %s", t.ID, t.Name, ui.Units(t.ES), ui.Units(t.Slack))
		attrs := fmt.Sprintf(`label="%s"`, dotEscaper.Replace(label))
		if t.IsCritical {
			attrs += `, style="rounded,bold", color=red`
		}
		fmt.Fprintf(w, "  %q [%s];\n", t.ID, attrs)
	}

	fmt.Fprintln(w)

	for _, t := range r.Schedule.Tasks {
		for _, succ := range t.Successors {
			style := ""
			if critical[t.ID] && critical[succ] {
				style = " [color=red, penwidth=2]"
			}
			fmt.Fprintf(w, "  %q -> %q%s;\n", t.ID, succ, style)
		}
	}

	fmt.Fprintln(w, "}")
}

// JSON returns the machine-readable report.
func (r *Reporter) JSON() ([]byte, error) {
	type output struct {
		Project     schedule.Project `json:"project"`
		GeneratedAt time.Time        `json:"generated_at"`
		*cpm.Schedule
	}

	return json.MarshalIndent(output{
		Project:     r.Project,
		GeneratedAt: r.GeneratedAt,
		Schedule:    r.Schedule,
	}, "", "  ")
}

// Summary returns a short plain-language summary of the schedule.
func (r *Reporter) Summary() string {
	var b strings.Builder
	s := r.Schedule

	fmt.Fprintf(&b, "\n📋 %s\n", ui.BoldCyan("Schedule Summary"))
	fmt.Fprintf(&b, "%s\n", ui.Cyan("════════════════"))
	fmt.Fprintf(&b, "Project:   %s\n", ui.Bold(r.title()))
	if r.Project.Type != "" {
		fmt.Fprintf(&b, "Type:      %s\n", r.Project.Type)
	}
	fmt.Fprintf(&b, "Duration:  %s units\n", ui.Bold(ui.Units(s.ProjectDuration)))
	fmt.Fprintf(&b, "Tasks:     %d in %d waves\n", len(s.Tasks), len(s.Waves))

	if len(s.CriticalPath) > 0 {
		fmt.Fprintf(&b, "Critical:  %s\n", ui.BoldYellow(strings.Join(s.CriticalPath, " → ")))
	}

	// Near-critical work: positive float but within twice the tolerance.
	var near []string
	for _, t := range s.Tasks {
		if !t.IsCritical && t.Slack <= 2*s.CriticalTolerance {
			near = append(near, fmt.Sprintf("%s (%s)", t.ID, ui.Units(t.Slack)))
		}
	}
	if len(near) > 0 {
		fmt.Fprintf(&b, "Watch:     %s\n", ui.Yellow(strings.Join(near, ", ")))
	}

	return b.String()
}
