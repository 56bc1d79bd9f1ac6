// ABOUTME: Watch CLI command
// ABOUTME: Streams live order snapshots to the terminal until interrupted
package cli

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aleayin/orderdesk/models"
	"github.com/aleayin/orderdesk/syncer"
)

// WatchCommand subscribes to the order collection and prints each snapshot
// as it arrives. Runs until SIGINT or SIGTERM.
func WatchCommand(c *syncer.Coordinator, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	fs.Parse(args)

	fmt.Println("Watching orders (Ctrl+C to stop)...")

	unsub := c.SubscribeOrders(func(orders []models.Order) {
		stamp := time.Now().Format("15:04:05")
		if len(orders) == 0 {
			fmt.Printf("[%s] no orders\n", stamp)
			return
		}
		fmt.Printf("[%s] %d order(s):\n", stamp, len(orders))
		for _, o := range orders {
			fmt.Printf("  %s  %-20s %-12s %s\n",
				shortID(o.ID), o.CustomerName, o.ServiceType, o.Status)
		}
	})
	defer unsub()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	fmt.Println("\nStopping watch")
	return nil
}
