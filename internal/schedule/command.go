package schedule

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/joshharrison/sitecpm/internal/graph"
)

// CommandSource runs an external schedule generator and decodes the JSON it
// prints. The project's job number and type are passed as --job and --type.
type CommandSource struct {
	Bin   string
	Args  []string
	Query string // optional gjson path into the output
}

func (c CommandSource) args(project Project) []string {
	all := append([]string(nil), c.Args...)
	if project.JobNo != "" {
		all = append(all, "--job", project.JobNo)
	}
	if project.Type != "" {
		all = append(all, "--type", project.Type)
	}
	return all
}

// Schedule runs the command and decodes its stdout.
func (c CommandSource) Schedule(ctx context.Context, project Project) ([]graph.Task, error) {
	if c.Bin == "" {
		return nil, fmt.Errorf("schedule command not set")
	}

	args := c.args(project)
	cmd := exec.CommandContext(ctx, c.Bin, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%s: %w", c.Bin, ctxErr)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("%s %s: %w\n%s", c.Bin, strings.Join(args, " "), err, stderr.String())
		}
		return nil, fmt.Errorf("%s: %w", c.Bin, err)
	}

	tasks, err := DecodeJSON(out, expandQuery(c.Query, project))
	if err != nil {
		return nil, fmt.Errorf("parse %s output: %w", c.Bin, err)
	}
	return tasks, nil
}
