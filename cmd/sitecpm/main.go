package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/joshharrison/sitecpm/internal/config"
	"github.com/joshharrison/sitecpm/internal/cpm"
	"github.com/joshharrison/sitecpm/internal/graph"
	"github.com/joshharrison/sitecpm/internal/reporter"
	"github.com/joshharrison/sitecpm/internal/schedule"
	"github.com/joshharrison/sitecpm/internal/ui"
)

var (
	flagConfig    string
	flagSchedule  string
	flagQuery     string
	flagCommand   []string
	flagJobNo     string
	flagType      string
	flagTolerance float64
	flagJSON      bool
	flagFilter    string
	flagOutput    string
	flagFormat    string
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("sitecpm: ")

	rootCmd := &cobra.Command{
		Use:   "sitecpm",
		Short: "Critical path analysis for construction site schedules",
		Long: `sitecpm reads a site schedule (tasks with durations and dependencies),
runs a critical path analysis and reports earliest/latest dates, float and
the tasks that drive the handover date.`,
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", config.DefaultPath, "Config file path")
	rootCmd.PersistentFlags().StringVar(&flagSchedule, "schedule", "", "Schedule file (JSON or YAML); overrides source.path")
	rootCmd.PersistentFlags().StringVar(&flagQuery, "query", "", "gjson path to the task array; {{jobNo}} is replaced with the job number")
	rootCmd.PersistentFlags().StringArrayVar(&flagCommand, "command", nil, "Schedule generator argv, one element per flag (--command gen --command export); overrides source.command")
	rootCmd.PersistentFlags().StringVar(&flagJobNo, "job", "", "Project job number")
	rootCmd.PersistentFlags().StringVar(&flagType, "type", "", "Project type (critical path reports need Villa)")
	rootCmd.PersistentFlags().Float64Var(&flagTolerance, "tolerance", cpm.DefaultCriticalTolerance, "Slack at or below which a task is critical")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Machine-readable JSON output")
	rootCmd.PersistentFlags().StringVar(&flagFilter, "filter", "", "Filter tasks (phase=X or label=X)")

	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(reportCmd())
	rootCmd.AddCommand(vizCmd())
	rootCmd.AddCommand(checkCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// loadSettings merges the config file with command-line overrides.
func loadSettings(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}

	if flagSchedule != "" {
		cfg.Source.Path = flagSchedule
		cfg.Source.Command = nil
	}
	if len(flagCommand) > 0 {
		cfg.Source.Command = flagCommand
	}
	if flagQuery != "" {
		cfg.Source.Query = flagQuery
	}
	if flagJobNo != "" {
		cfg.Project.JobNo = flagJobNo
	}
	if flagType != "" {
		cfg.Project.Type = flagType
	}
	if cmd.Flags().Changed("tolerance") {
		tol := flagTolerance
		cfg.CriticalTolerance = &tol
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadSource builds the configured schedule source, wrapped with the task
// filter and dangling-reference warnings.
func loadSource(cfg *config.Config) (schedule.Source, error) {
	src, err := cfg.NewSource()
	if err != nil {
		return nil, err
	}

	pred, err := parseFilter(flagFilter)
	if err != nil {
		return nil, err
	}
	return checkedSource{inner: src, pred: pred}, nil
}

// buildReport is shared logic for the analyze, report and viz commands.
func buildReport(cmd *cobra.Command) (*reporter.Reporter, error) {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return nil, err
	}
	src, err := loadSource(cfg)
	if err != nil {
		return nil, err
	}

	engine := &cpm.Engine{CriticalTolerance: cfg.Tolerance()}
	return reporter.Generate(cmd.Context(), src, engine, cfg.Project)
}

func analyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze",
		Short: "Compute ES/EF/LS/LF, slack and critical tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			rpt, err := buildReport(cmd)
			if err != nil {
				return err
			}

			if flagJSON {
				return outputJSON(rpt.Schedule.Tasks)
			}
			rpt.PrintTable(os.Stdout)
			return nil
		},
	}
}

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print a schedule summary and optionally save the full report",
		RunE: func(cmd *cobra.Command, args []string) error {
			rpt, err := buildReport(cmd)
			if err != nil {
				return err
			}

			data, err := rpt.JSON()
			if err != nil {
				return err
			}
			if flagOutput != "" {
				if err := os.WriteFile(flagOutput, data, 0o644); err != nil {
					return fmt.Errorf("write report: %w", err)
				}
			}
			if flagJSON {
				fmt.Println(string(data))
				return nil
			}

			fmt.Print(rpt.Summary())
			fmt.Println()
			rpt.PrintTable(os.Stdout)
			if flagOutput != "" {
				fmt.Printf("\n%s %s\n", ui.Green("Report saved to"), flagOutput)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&flagOutput, "output", "", "Save the JSON report to file")
	return cmd
}

func vizCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "viz",
		Short: "Print the dependency graph (ascii or dot)",
		RunE: func(cmd *cobra.Command, args []string) error {
			rpt, err := buildReport(cmd)
			if err != nil {
				return err
			}

			switch flagFormat {
			case "dot":
				rpt.PrintDOT(os.Stdout)
			case "ascii":
				rpt.PrintWaves(os.Stdout)
			default:
				return fmt.Errorf("unsupported format %q (use ascii or dot)", flagFormat)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&flagFormat, "format", "ascii", "Output format (ascii, dot)")
	return cmd
}

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the schedule: ids, durations, dangling references and cycles",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			src, err := loadSource(cfg)
			if err != nil {
				return err
			}
			tasks, err := src.Schedule(cmd.Context(), cfg.Project)
			if err != nil {
				return err
			}

			res := checkSchedule(tasks)
			if flagJSON {
				if err := outputJSON(res); err != nil {
					return err
				}
			} else {
				for _, p := range res.Problems {
					fmt.Printf("%s %s\n", ui.Red("✗"), p)
				}
			}
			if len(res.Problems) > 0 {
				return fmt.Errorf("%d problem(s) found", len(res.Problems))
			}
			if !flagJSON {
				fmt.Printf("%s %d tasks (%d start, %d finish), no problems found\n",
					ui.Green("✓"), res.Tasks, res.Roots, res.Leaves)
			}
			return nil
		},
	}
}

// checkResult is the outcome of the check command.
type checkResult struct {
	Tasks    int      `json:"tasks"`
	Roots    int      `json:"roots"`  // tasks with no resolved dependencies
	Leaves   int      `json:"leaves"` // tasks nothing depends on
	Problems []string `json:"problems"`
}

// checkSchedule lists every reason the engine would refuse tasks, plus
// cycles that happen to converge (zero-duration loops) and so would not
// surface as an analysis error.
func checkSchedule(tasks []graph.Task) checkResult {
	res := checkResult{Tasks: len(tasks), Problems: []string{}}

	_, err := cpm.Analyze(tasks)
	var invalid *cpm.InvalidTaskError
	if errors.As(err, &invalid) {
		res.Problems = append(res.Problems, invalid.Error())
		return res
	}

	g, buildErr := graph.Build(tasks)
	if buildErr != nil {
		res.Problems = append(res.Problems, buildErr.Error())
		return res
	}
	res.Tasks = g.TaskCount()
	res.Roots = len(g.Roots)
	res.Leaves = len(g.Leaves)

	if cycle := g.DetectCycle(); cycle != nil {
		res.Problems = append(res.Problems, "dependency cycle: "+strings.Join(cycle, " → "))
	} else if err != nil {
		res.Problems = append(res.Problems, err.Error())
	}
	return res
}

func outputJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

// checkedSource applies the task filter and logs dangling dependencies.
type checkedSource struct {
	inner schedule.Source
	pred  func(*graph.Task) bool
}

func (c checkedSource) Schedule(ctx context.Context, project schedule.Project) ([]graph.Task, error) {
	tasks, err := c.inner.Schedule(ctx, project)
	if err != nil {
		return nil, err
	}

	g, err := graph.Build(tasks)
	if err != nil {
		// Leave id problems to the engine, which reports them with positions.
		return tasks, nil
	}
	if c.pred != nil {
		if g, err = g.Filter(c.pred); err != nil {
			return nil, fmt.Errorf("apply filter: %w", err)
		}
	}
	for _, id := range g.Order {
		for _, dep := range g.Dangling[id] {
			log.Printf("warning: task %s depends on unknown task %s; treating it as finished at 0", id, dep)
		}
	}
	return g.List(), nil
}

// parseFilter parses simple filter expressions into a task predicate.
func parseFilter(filter string) (func(*graph.Task) bool, error) {
	// Supported formats: "phase=X", "label=X"
	switch {
	case filter == "":
		return nil, nil
	case strings.HasPrefix(filter, "phase="):
		phase := strings.TrimPrefix(filter, "phase=")
		return func(t *graph.Task) bool {
			return strings.EqualFold(t.Phase, phase)
		}, nil
	case strings.HasPrefix(filter, "label="):
		label := strings.TrimPrefix(filter, "label=")
		return func(t *graph.Task) bool {
			for _, l := range t.Labels {
				if l == label {
					return true
				}
			}
			return false
		}, nil
	}
	return nil, fmt.Errorf("unsupported filter: %s (use phase=X or label=X)", filter)
}
