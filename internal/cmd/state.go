package cmd

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/sweeney/pulse-filter/internal/gpio"
)

func newStateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Read the current level of the input line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := gpio.NewLineInput(a.cfg.GPIO.Chip, a.cfg.GPIO.InputPin, a.cfg.InputOptions())
			if err != nil {
				return fmt.Errorf("init gpio: %w", err)
			}
			defer in.Close()

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleRounded)
			t.AppendHeader(table.Row{"Chip", "Pin", "Level", "Pull-up", "Active-low"})
			t.AppendRow(table.Row{
				a.cfg.GPIO.Chip,
				a.cfg.GPIO.InputPin,
				in.ReadLevel().String(),
				a.cfg.GPIO.PullUp,
				a.cfg.GPIO.ActiveLow,
			})
			t.Render()
			return nil
		},
	}
}
