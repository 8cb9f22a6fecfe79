package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/nvandessel/mnemosyne/internal/assess"
	"github.com/nvandessel/mnemosyne/internal/chart"
	"github.com/nvandessel/mnemosyne/internal/constants"
	"github.com/nvandessel/mnemosyne/internal/report"
	"github.com/nvandessel/mnemosyne/internal/store"
	"github.com/nvandessel/mnemosyne/internal/tui"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// errNoAssessments is returned by commands that need a recorded analysis.
var errNoAssessments = errors.New("no assessments recorded yet; run 'mnemosyne assess run' first")

const (
	reportMarkdownFile = "report.md"
	reportHTMLFile     = "report.html"
)

func newAssessCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assess",
		Short: "Score goals, habits and metrics and draft a weekly plan",
		Long: `Run the self-assessment engine.

An assessment takes four lists (goals, habits, constraints, priorities),
five 1-10 metrics and a success rate, and returns a 0-100 score, the
largest gaps, a six-month projection and a weekly plan. Recorded analyses
are kept in a history of the last 40.

Examples:
  mnemosyne assess run --input week.yaml
  mnemosyne assess run --goal "ship the beta" --habit "write daily" --discipline 6
  mnemosyne assess form                       # Interactive form
  mnemosyne assess report                     # Render the latest analysis
  mnemosyne assess export --out ./report      # Charts plus markdown and HTML`,
	}

	cmd.AddCommand(
		newAssessRunCmd(),
		newAssessFormCmd(),
		newAssessHistoryCmd(),
		newAssessExportCmd(),
		newAssessReportCmd(),
		newAssessServeCmd(),
	)
	return cmd
}

func (e *appEnv) newEngine() *assess.Engine {
	return assess.NewEngine(e.store, assess.WithLogger(e.logger), assess.WithTrace(e.trace))
}

// readAssessInput loads an assessment form from a YAML (or JSON) file.
func readAssessInput(path string) (assess.Input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return assess.Input{}, fmt.Errorf("reading input: %w", err)
	}
	in := assess.Input{Metrics: assess.DefaultMetrics()}
	if err := yaml.Unmarshal(data, &in); err != nil {
		return assess.Input{}, fmt.Errorf("parsing input: %w", err)
	}
	return in, nil
}

// buildAssessInput starts from --input (or the defaults) and applies every
// flag the user set explicitly.
func buildAssessInput(cmd *cobra.Command, defaultMode constants.AssessMode) (assess.Input, error) {
	in := assess.Input{Metrics: assess.DefaultMetrics()}
	if path, _ := cmd.Flags().GetString("input"); path != "" {
		var err error
		if in, err = readAssessInput(path); err != nil {
			return assess.Input{}, err
		}
	}
	if in.Mode == "" {
		in.Mode = defaultMode
	}

	flags := cmd.Flags()
	if flags.Changed("mode") {
		mode, _ := flags.GetString("mode")
		in.Mode = constants.AssessMode(mode)
	}

	lists := []struct {
		flag string
		dst  *[]string
	}{
		{"goal", &in.Goals},
		{"habit", &in.Habits},
		{"constraint", &in.Constraints},
		{"priority", &in.Priorities},
	}
	for _, l := range lists {
		if flags.Changed(l.flag) {
			*l.dst, _ = flags.GetStringArray(l.flag)
		}
	}

	for _, m := range assess.AllMetrics {
		if flags.Changed(string(m)) {
			v, _ := flags.GetFloat64(string(m))
			in.Metrics.Set(m, v)
		}
	}
	if flags.Changed("success-rate") {
		in.SuccessRate, _ = flags.GetFloat64("success-rate")
	}
	return in, nil
}

func newAssessRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Analyze an assessment and record it",
		Long: `Analyze an assessment given as a YAML file, flags or both. Flags override
values from the file.

Input file format:
  mode: rapid
  goals: [ship the beta, run a half marathon]
  habits: [write daily]
  constraints: [two kids]
  priorities: [health]
  metrics: {discipline: 6, clarity: 7, energy: 5, coherence: 6, friction: 4}
  success_rate: 60`,
		RunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			env, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			in, err := buildAssessInput(cmd, env.cfg.Assessment.Mode)
			if err != nil {
				return err
			}
			res, err := env.newEngine().Run(cmd.Context(), in, !dryRun)
			if err != nil {
				return fmt.Errorf("analysis failed: %w", err)
			}

			if env.jsonOut {
				return env.printJSON(res)
			}

			history, err := assess.LoadHistory(cmd.Context(), env.store)
			if err != nil {
				return err
			}
			md := report.Markdown(report.Data{Result: res, History: history, Generated: res.Timestamp})
			if debug {
				md += "\n## Payload\n\n```json\n" + payloadJSON(res.Payload) + "\n```\n"
			}
			return env.printMarkdown(md)
		},
	}

	cmd.Flags().String("input", "", "YAML file with the assessment form")
	cmd.Flags().String("mode", string(constants.ModeIntrospective), "Assessment mode: introspective or rapid")
	cmd.Flags().StringArray("goal", nil, "Goal (repeatable)")
	cmd.Flags().StringArray("habit", nil, "Habit (repeatable)")
	cmd.Flags().StringArray("constraint", nil, "Constraint (repeatable)")
	cmd.Flags().StringArray("priority", nil, "Priority (repeatable)")
	for _, m := range assess.AllMetrics {
		cmd.Flags().Float64(string(m), 5, fmt.Sprintf("%s rating, 1-10", m.Label()))
	}
	cmd.Flags().Float64("success-rate", 0, "Share of last week's plan completed, 0-100")
	cmd.Flags().Bool("debug", false, "Append the cleaned payload to the output")
	cmd.Flags().Bool("dry-run", false, "Analyze without recording to history")
	return cmd
}

func newAssessFormCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "form",
		Short: "Fill in an assessment in an interactive form",
		Long: `Open the interactive assessment form.

Keys:
  tab        toggle introspective/rapid mode
  up/down    move between fields
  ctrl+s     analyze and record
  ctrl+d     toggle the payload debug panel
  esc        quit`,
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, _ := cmd.Flags().GetString("mode")

			env, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			m := env.cfg.Assessment.Mode
			if cmd.Flags().Changed("mode") {
				m = constants.AssessMode(mode)
				if !m.Valid() {
					return fmt.Errorf("invalid mode: %s (valid: introspective, rapid)", mode)
				}
			}

			model := tui.NewFormModel(cmd.Context(), env.newEngine(), m, false)
			final, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			if err != nil {
				return fmt.Errorf("assessment UI: %w", err)
			}
			if fm, ok := final.(tui.FormModel); ok && fm.Result() != nil {
				fmt.Fprintf(env.out, "Recorded assessment %s: score %d/100\n", fm.Result().ID, fm.Result().Score.Value)
			}
			return nil
		},
	}
	cmd.Flags().String("mode", string(constants.ModeIntrospective), "Starting mode: introspective or rapid")
	return cmd
}

func newAssessHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded assessments, oldest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			last, _ := cmd.Flags().GetInt("last")
			if last < 0 {
				return fmt.Errorf("--last must be non-negative, got %d", last)
			}

			env, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			entries, err := env.newEngine().History(cmd.Context(), last)
			if err != nil {
				return err
			}
			if env.jsonOut {
				return env.printJSON(map[string]interface{}{"entries": entries, "count": len(entries)})
			}
			if len(entries) == 0 {
				fmt.Fprintln(env.out, "No assessments recorded yet.")
				return nil
			}
			for _, e := range entries {
				fmt.Fprintf(env.out, "%s  score %3d  momentum %.2f  %s  %d goals\n",
					e.Timestamp.Local().Format("2006-01-02 15:04"),
					e.Score,
					e.Momentum,
					e.Payload.Mode,
					len(e.Payload.Goals),
				)
			}
			return nil
		},
	}
	cmd.Flags().Int("last", 0, "Show only the N most recent (0 = all)")
	return cmd
}

// latestReport rebuilds the full result of the most recent recorded
// analysis from its stored payload.
func latestReport(ctx context.Context, bs store.BlobStore, now time.Time) (report.Data, error) {
	history, err := assess.LoadHistory(ctx, bs)
	if err != nil {
		return report.Data{}, err
	}
	if len(history) == 0 {
		return report.Data{}, errNoAssessments
	}

	last := history[len(history)-1]
	res := assess.Analyze(last.Payload, assess.Scores(history[:len(history)-1]))
	res.ID = last.ID
	res.Timestamp = last.Timestamp
	return report.Data{Result: res, History: history, Generated: now}, nil
}

func newAssessReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Render the latest assessment in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			data, err := latestReport(cmd.Context(), env.store, time.Now())
			if err != nil {
				return err
			}
			if env.jsonOut {
				return env.printJSON(data.Result)
			}
			return env.printMarkdown(report.Markdown(data))
		},
	}
}

func newAssessExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write charts and reports for the latest assessment",
		Long: `Write the latest assessment to a directory:

  bars.png      current vs required per metric
  radar.png     normalized metrics
  timeline.png  past scores and the six-month projection
  report.md     markdown report
  report.html   printable report with the charts inlined`,
		RunE: func(cmd *cobra.Command, args []string) error {
			outDir, _ := cmd.Flags().GetString("out")
			if outDir == "" {
				return fmt.Errorf("--out is required")
			}

			env, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			data, err := latestReport(cmd.Context(), env.store, time.Now())
			if err != nil {
				return err
			}

			size := env.cfg.Assessment.ChartSize
			files, err := chart.WriteAll(outDir, data.Result, data.PastScores(), size)
			if err != nil {
				return err
			}

			mdPath := filepath.Join(outDir, reportMarkdownFile)
			if err := os.WriteFile(mdPath, []byte(report.Markdown(data)), 0644); err != nil {
				return fmt.Errorf("write %s: %w", reportMarkdownFile, err)
			}
			html, err := report.HTML(data, size)
			if err != nil {
				return err
			}
			htmlPath := filepath.Join(outDir, reportHTMLFile)
			if err := os.WriteFile(htmlPath, html, 0644); err != nil {
				return fmt.Errorf("write %s: %w", reportHTMLFile, err)
			}
			files = append(files, mdPath, htmlPath)

			if env.jsonOut {
				return env.printJSON(map[string]interface{}{"files": files, "id": data.Result.ID})
			}
			fmt.Fprintf(env.out, "Exported %d files to %s\n", len(files), outDir)
			for _, f := range files {
				fmt.Fprintf(env.out, "  %s\n", filepath.Base(f))
			}
			return nil
		},
	}
	cmd.Flags().String("out", "", "Output directory")
	return cmd
}

func newAssessServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the printable report on localhost",
		Long: `Start a local HTTP server with the printable report for the latest
assessment. The page is rebuilt on every request. Stop with Ctrl+C.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			open, _ := cmd.Flags().GetBool("open")

			env, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			sigChan := make(chan os.Signal, 1)
			notifySignals(sigChan)
			defer signal.Stop(sigChan)
			go func() {
				select {
				case <-sigChan:
					cancel()
				case <-ctx.Done():
				}
			}()

			srv := report.NewServer(func(ctx context.Context) (report.Data, error) {
				return latestReport(ctx, env.store, time.Now())
			}, env.cfg.Assessment.ChartSize)

			errCh := make(chan error, 1)
			go func() { errCh <- srv.ListenAndServe(ctx) }()

			url, err := waitForURL(srv, errCh, 5*time.Second)
			if err != nil {
				return err
			}
			fmt.Fprintf(env.out, "Serving report at %s (Ctrl+C to stop)\n", url)
			if open {
				if err := report.OpenBrowser(url); err != nil {
					env.logger.Warn("could not open browser", "error", err)
				}
			}
			return <-errCh
		},
	}
	cmd.Flags().Bool("open", false, "Open the report in the default browser")
	return cmd
}

// waitForURL polls until srv is listening or fails to start.
func waitForURL(srv *report.Server, errCh <-chan error, timeout time.Duration) (string, error) {
	deadline := time.After(timeout)
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for {
		if url := srv.URL(); url != "" {
			return url, nil
		}
		select {
		case err := <-errCh:
			if err == nil {
				err = errors.New("server stopped before listening")
			}
			return "", err
		case <-deadline:
			return "", errors.New("timed out waiting for report server")
		case <-ticker.C:
		}
	}
}

func payloadJSON(p assess.Payload) string {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}

// printMarkdown renders md for the terminal, falling back to the raw text.
func (e *appEnv) printMarkdown(md string) error {
	out, err := report.RenderTerminal(md, 100)
	if err != nil {
		e.logger.Debug("markdown rendering failed", "error", err)
		out = md
	}
	_, err = fmt.Fprint(e.out, strings.TrimLeft(out, "\n"))
	return err
}
