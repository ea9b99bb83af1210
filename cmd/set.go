package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/relayctl/core/relay"
	"github.com/kilianp07/relayctl/infra/mqtt"
)

var setCmd = &cobra.Command{
	Use:       "set <topic> on|off",
	Short:     "Publish a single relay command and exit",
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{"on", "off"},
	RunE:      setRelay,
}

func init() {
	rootCmd.AddCommand(setCmd)
}

func setRelay(cmd *cobra.Command, args []string) error {
	topic := args[0]
	var pos relay.Position
	switch args[1] {
	case "on":
		pos = relay.Closed
	case "off":
		pos = relay.Open
	default:
		return fmt.Errorf("state must be on or off, got %q", args[1])
	}

	ctx, stop := signal.NotifyContext(withContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := setup()
	if err != nil {
		return err
	}
	payloads := relay.DefaultPayloads
	for _, rc := range cfg.Relays {
		if rc.Topic == topic {
			payloads = rc.Payloads()
		}
	}

	pub, err := mqtt.Connect(ctx, cfg.MQTT)
	if err != nil {
		return err
	}
	defer pub.Close()
	if err := pub.Publish(topic, payloads.For(pos)); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s <- %s (%s)\n", topic, payloads.For(pos), pos)
	return nil
}
