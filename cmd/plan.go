package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/relayctl/core/relay"
	"github.com/kilianp07/relayctl/core/scheduler"
	"github.com/kilianp07/relayctl/pkg/export"
)

var planOpts struct {
	horizon time.Duration
	step    time.Duration
	from    string
	format  string
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Preview the commands every relay would publish",
	Long: "Simulate every configured relay without a broker. The command schedule is\n" +
		"written to stdout and a per-relay duty ratio summary to stderr.",
	Args: cobra.NoArgs,
	RunE: plan,
}

func init() {
	f := planCmd.Flags()
	f.DurationVar(&planOpts.horizon, "horizon", 24*time.Hour, "simulated duration")
	f.DurationVar(&planOpts.step, "step", 0, "simulated tick (defaults to control.tick)")
	f.StringVar(&planOpts.from, "from", "", "start time in RFC3339 (defaults to now)")
	f.StringVarP(&planOpts.format, "format", "o", "csv", "output format: csv or json")
	rootCmd.AddCommand(planCmd)
}

func plan(cmd *cobra.Command, _ []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	start := time.Now()
	if planOpts.from != "" {
		if start, err = time.Parse(time.RFC3339, planOpts.from); err != nil {
			return fmt.Errorf("--from: %w", err)
		}
	}
	window := scheduler.Config{Horizon: planOpts.horizon, Step: planOpts.step}
	if window.Step == 0 {
		window.Step = cfg.Control.Tick
	}

	var all []scheduler.Entry
	for _, rc := range cfg.Relays {
		trigger := rc.Trigger
		entries, err := scheduler.Plan(scheduler.Relay{
			Topic:   rc.Topic,
			StartOn: rc.StartsOn(),
			Trigger: func(c relay.Clock) (relay.Trigger, error) { return relay.NewTrigger(trigger, c) },
		}, start, window)
		if err != nil {
			return fmt.Errorf("relay %s: %w", rc.Topic, err)
		}
		all = append(all, entries...)
		ratio := scheduler.DutyRatio(entries, start, window.Horizon)
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: running %.1f%% of %s\n", rc.Topic, ratio*100, window.Horizon)
	}
	return export.Write(cmd.OutOrStdout(), planOpts.format, all)
}
