// ABOUTME: Status CLI command
// ABOUTME: Reports connectivity and sync state for the running coordinator
package cli

import (
	"flag"
	"fmt"

	"github.com/aleayin/orderdesk/charm"
	"github.com/aleayin/orderdesk/syncer"
)

// StatusCommand prints the coordinator's connectivity flags and the backing
// cloud account identity.
func StatusCommand(c *syncer.Coordinator, client *charm.Client, args []string) error {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	fs.Parse(args)

	online := "offline"
	if c.Online() {
		online = "online"
	}
	syncing := "idle"
	if c.Syncing() {
		syncing = "syncing"
	}

	fmt.Printf("Connectivity: %s\n", online)
	fmt.Printf("Sync state:   %s\n", syncing)
	fmt.Printf("Orders:       %d cached\n", len(c.Orders()))
	fmt.Printf("Payments:     %d cached\n", len(c.Payments()))

	if client != nil {
		if id, err := client.ID(); err == nil {
			fmt.Printf("Charm ID:     %s\n", id)
		}
		fmt.Printf("Charm host:   %s\n", client.Config().Host)
	}

	return nil
}
