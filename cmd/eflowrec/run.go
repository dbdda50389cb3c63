package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/banshee-data/eflowrec/internal/config"
	"github.com/banshee-data/eflowrec/internal/diagnostics"
	"github.com/banshee-data/eflowrec/internal/eflow"
	"github.com/banshee-data/eflowrec/internal/eventio"
	"github.com/banshee-data/eflowrec/internal/monitoring"
	"github.com/banshee-data/eflowrec/internal/showerparams"
)

type runOptions struct {
	paramsPath string
	configPath string
	inputPath  string
	outputPath string
	plotDir    string
	workers    int
}

func newRunCommand() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Reconstruct particle-flow objects for every event in a file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReconstruction(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.paramsPath, "params", "p", "", "Shower parameter table (TOML)")
	flags.StringVarP(&opts.configPath, "config", "c", "", "Tuning config (JSON); built-in defaults when empty")
	flags.StringVarP(&opts.inputPath, "input", "i", "", "Input events (JSON lines)")
	flags.StringVarP(&opts.outputPath, "output", "o", "-", "Output PFOs (JSON lines), - for stdout")
	flags.StringVar(&opts.plotDir, "plots", "", "Directory for diagnostic plots")
	flags.IntVarP(&opts.workers, "workers", "w", 4, "Events processed in parallel")

	return cmd
}

func loadTuning(path string) (*config.EFlowConfig, error) {
	if path == "" {
		return config.EmptyEFlowConfig(), nil
	}
	return config.LoadEFlowConfig(path)
}

func runReconstruction(cmd *cobra.Command, opts runOptions) (err error) {
	if opts.paramsPath == "" {
		return errors.New("--params is required")
	}
	if opts.inputPath == "" {
		return errors.New("--input is required")
	}

	// Startup: the reconstruction cannot run without its table and config.
	tuning, err := loadTuning(opts.configPath)
	if err != nil {
		return err
	}
	tbl, err := showerparams.Load(opts.paramsPath)
	if err != nil {
		return err
	}
	proc, err := eflow.NewProcessor(eflow.ConfigFromTuning(tuning), tbl)
	if err != nil {
		return err
	}

	events, err := eventio.ReadFile(opts.inputPath)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	monitoring.ResetWarnings()
	start := time.Now()
	monitoring.Logf("[Run] %s: processing %d events with %d workers", runID, len(events), opts.workers)

	results, err := proc.ProcessAll(cmd.Context(), events, opts.workers)
	if err != nil {
		return err
	}

	out, closeOut, err := openOutput(cmd, opts.outputPath)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeOut(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close output: %w", cerr)
		}
	}()

	collector := diagnostics.NewCollector()
	w := eventio.NewWriter(out)
	for _, res := range results {
		collector.Add(res)
		if err := w.Write(res); err != nil {
			return err
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	summary := collector.Summary(runID)
	monitoring.Logf("[Run] %s: done in %s", runID, time.Since(start).Round(time.Millisecond))
	if _, err := fmt.Fprintln(cmd.ErrOrStderr(), renderSummary(summary, monitoring.Warnings())); err != nil {
		return err
	}

	if opts.plotDir != "" {
		dir := filepath.Join(opts.plotDir, runID)
		n, err := collector.SavePlots(dir)
		if err != nil {
			return err
		}
		monitoring.Logf("[Run] %s: wrote %d plots to %s", runID, n, dir)
	}
	return nil
}

func openOutput(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, f.Close, nil
}

func renderSummary(s diagnostics.Summary, warnings int64) string {
	t := s.Totals
	rows := [][]string{
		{"Run", s.RunID},
		{"Events", fmt.Sprint(s.Events)},
		{"Tracks", fmt.Sprint(t.Tracks)},
		{"Clusters", fmt.Sprint(t.Clusters)},
		{"Matched", fmt.Sprint(t.Matched)},
		{"Subtracted", fmt.Sprint(t.Subtracted)},
		{"Recovered", fmt.Sprint(t.Recovered)},
		{"Deferred (E/p)", fmt.Sprint(t.Deferred)},
		{"Dense", fmt.Sprint(t.Dense)},
		{"Isolated", fmt.Sprint(t.Isolated)},
		{"No bin", fmt.Sprint(t.NoBin)},
		{"Annihilated clusters", fmt.Sprint(t.Annihilated)},
		{"Charged PFOs", fmt.Sprint(t.Charged)},
		{"Neutral PFOs", fmt.Sprint(t.Neutral)},
		{"Energy removed (GeV)", fmt.Sprintf("%.2f", t.EnergyRemoved)},
		{"Pull mean ± sd", fmt.Sprintf("%.2f ± %.2f", s.Pull.Mean, s.Pull.StdDev)},
		{"Expected E/p mean", fmt.Sprintf("%.3f", s.EOverP.Mean)},
		{"Warnings", fmt.Sprint(warnings)},
	}
	return renderTable([]string{"Metric", "Value"}, rows, []columnAlignment{alignLeft, alignRight})
}
