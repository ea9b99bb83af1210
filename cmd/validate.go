package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/relayctl/app"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration and every trigger without connecting",
	Args:  cobra.NoArgs,
	RunE:  validate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validate(cmd *cobra.Command, _ []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	if _, err := app.BuildTriggers(cfg.Relays, nil); err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "broker %s\n", cfg.MQTT.BrokerURL())
	for _, rc := range cfg.Relays {
		start := "off"
		if rc.StartsOn() {
			start = "on"
		}
		fmt.Fprintf(out, "relay %s: trigger %s, refresh %s, start %s\n", rc.Topic, rc.Trigger.Type, rc.RefreshInterval, start)
	}
	return nil
}
