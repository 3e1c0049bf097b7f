package cmd

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/sweeney/pulse-filter/internal/sim"
)

func newSimulateCmd(a *app) *cobra.Command {
	var (
		waveform string
		unit     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run the filter against a waveform in virtual time",
		Long: `Run the filter against a list of input edges without touching hardware.

A waveform is a comma separated list of time:level pairs, for example
"0:H,30:L,100:H,200:L". Bare times are multiples of --unit; times with a
suffix ("45us", "1ms") are taken as durations.`,
		Example: `  pulse-filter simulate --waveform 0:H,30:L,100:H,200:L
  pulse-filter simulate --threshold 75us --unit 1ms --waveform 0:H,1:L`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			edges, err := sim.ParseWaveform(waveform, unit)
			if err != nil {
				return fmt.Errorf("parse waveform: %w", err)
			}
			res := sim.Run(a.cfg.Threshold, edges)

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleRounded)
			t.SetTitle(fmt.Sprintf("threshold %s", a.cfg.Threshold))
			t.AppendHeader(table.Row{"At", "Output"})
			for _, tr := range res.Output {
				t.AppendRow(table.Row{tr.At.String(), tr.Level.String()})
			}
			t.AppendFooter(table.Row{
				"qualified", res.Counts.Qualified,
			})
			t.AppendFooter(table.Row{
				"suppressed", res.Counts.Suppressed,
			})
			t.Render()
			return nil
		},
	}
	cmd.Flags().StringVar(&waveform, "waveform", "", "input edges as time:level pairs")
	cmd.Flags().DurationVar(&unit, "unit", time.Microsecond, "time unit for bare waveform times")
	_ = cmd.MarkFlagRequired("waveform")
	return cmd
}
