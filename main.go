// ABOUTME: Entry point for the orderdesk CLI
// ABOUTME: Wires the charm client, local cache, and sync coordinator, then routes commands
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/aleayin/orderdesk/cache"
	"github.com/aleayin/orderdesk/charm"
	"github.com/aleayin/orderdesk/cli"
	"github.com/aleayin/orderdesk/store"
	"github.com/aleayin/orderdesk/syncer"
)

const version = "0.1.0"

func main() {
	// Load .env if present (for ORDERDESK_CHARM_HOST etc.)
	_ = godotenv.Load()

	args := os.Args[1:]
	if len(args) == 0 {
		printUsage()
		os.Exit(0)
	}

	command := args[0]
	commandArgs := args[1:]

	switch command {
	case "version", "--version":
		fmt.Printf("orderdesk version %s\n", version)
		os.Exit(0)
	case "help", "--help", "-h":
		printUsage()
		os.Exit(0)
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Level:           logLevel(),
	})

	cfg, err := charm.LoadConfig()
	if err != nil {
		logger.Fatal("failed to load config", "error", err)
	}

	client, err := charm.NewClient(cfg)
	if err != nil {
		logger.Fatal("failed to connect to charm cloud", "error", err)
	}
	defer client.Close()

	// Account-link commands operate on the client alone, before the
	// coordinator spins up its watchers.
	switch command {
	case "link":
		runClientCommand(logger, charm.LinkCommand, client, commandArgs)
		return
	case "sync-status":
		runClientCommand(logger, charm.SyncStatusCommand, client, commandArgs)
		return
	case "sync-now":
		runClientCommand(logger, charm.SyncNowCommand, client, commandArgs)
		return
	case "sync-wipe":
		runClientCommand(logger, charm.SyncWipeCommand, client, commandArgs)
		return
	}

	localCache, err := cache.Open(cache.DefaultDir(charm.AppName))
	if err != nil {
		logger.Fatal("failed to open local cache", "error", err)
	}
	defer localCache.Close()

	coordinator := syncer.New(store.NewKV(client, logger), localCache, logger, syncer.Config{
		DeviceID: cfg.DeviceID,
	})
	defer coordinator.Close()

	switch command {
	// Order commands
	case "add-order":
		runCommand(logger, cli.AddOrderCommand, coordinator, commandArgs)
	case "list-orders":
		runCommand(logger, cli.ListOrdersCommand, coordinator, commandArgs)
	case "update-order":
		runCommand(logger, cli.UpdateOrderStatusCommand, coordinator, commandArgs)
	case "delete-order":
		runCommand(logger, cli.DeleteOrderCommand, coordinator, commandArgs)

	// Payment commands
	case "add-payment":
		runCommand(logger, cli.AddPaymentCommand, coordinator, commandArgs)
	case "list-payments":
		runCommand(logger, cli.ListPaymentsCommand, coordinator, commandArgs)
	case "delete-payment":
		runCommand(logger, cli.DeletePaymentCommand, coordinator, commandArgs)
	case "clear-payments":
		runCommand(logger, cli.ClearPaymentsCommand, coordinator, commandArgs)

	case "watch":
		runCommand(logger, cli.WatchCommand, coordinator, commandArgs)
	case "status":
		if err := cli.StatusCommand(coordinator, client, commandArgs); err != nil {
			logger.Fatal("command failed", "error", err)
		}

	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runCommand(logger *log.Logger, cmd func(*syncer.Coordinator, []string) error, c *syncer.Coordinator, args []string) {
	if err := cmd(c, args); err != nil {
		logger.Fatal("command failed", "error", err)
	}
}

func runClientCommand(logger *log.Logger, cmd func(*charm.Client, []string) error, client *charm.Client, args []string) {
	if err := cmd(client, args); err != nil {
		logger.Fatal("command failed", "error", err)
	}
}

func logLevel() log.Level {
	if os.Getenv("ORDERDESK_DEBUG") != "" {
		return log.DebugLevel
	}
	return log.WarnLevel
}

func printUsage() {
	fmt.Printf(`orderdesk v%s - service order and payment tracker

USAGE:
  orderdesk <command> [flags]

ORDER COMMANDS:
  orderdesk add-order       Create a new order
    --customer <name>         Customer name (required)
    --service <type>          promotion|design|photography|printing|other (required)
    --details <text>          Order details
    --price <n>               Order price
    --quantity <n>            Quantity
    --priority <p>            low|medium|high
    --status <s>              pending|in-progress|completed|cancelled
    --notes <text>            Notes

  orderdesk list-orders     List orders (newest first)
    --status <s>              Filter by status
    --limit <n>               Max results (default: 50)

  orderdesk update-order    Change an order's status
    --id <id>                 Order ID (required)
    --status <s>              New status (required)

  orderdesk delete-order    Remove an order
    --id <id>                 Order ID (required)

PAYMENT COMMANDS:
  orderdesk add-payment     Record a payment
    --recipient <name>        Recipient name (required)
    --type <t>                worker|partner (default: worker)
    --amount <n>              Amount
    --payment-type <t>        full|partial (default: full)
    --date <YYYY-MM-DD>       Payment date (default: today)

  orderdesk list-payments   List payments
    --recipient <name>        Filter by recipient
    --type <t>                Recipient type for the filter
    --window <w>              today|week|month|custom|all (default: all)
    --days <n>                Day count for --window custom

  orderdesk delete-payment  Remove one payment
    --id <id>                 Payment ID (required)

  orderdesk clear-payments  Remove ALL payments
    --yes                     Skip confirmation

SYNC COMMANDS:
  orderdesk watch           Stream live order updates
  orderdesk status          Show connectivity and sync state
  orderdesk link            Link this device to a charm account
  orderdesk sync-status     Show cloud sync status
  orderdesk sync-now        Force a cloud sync
  orderdesk sync-wipe       Wipe cloud data (--yes to confirm)

ENVIRONMENT:
  ORDERDESK_CHARM_HOST      Override the charm cloud host
  ORDERDESK_DEBUG           Enable debug logging

EXAMPLES:
  orderdesk add-order --customer "Acme Bakery" --service design --price 1500
  orderdesk list-orders --status pending
  orderdesk add-payment --recipient "Omar" --amount 300 --payment-type partial
  orderdesk list-payments --window week
`, version)
}
