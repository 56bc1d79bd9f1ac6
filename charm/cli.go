// ABOUTME: CLI commands for Charm KV sync operations
// ABOUTME: Simplified sync with SSH key auth - no login/logout needed

package charm

import (
	"flag"
	"fmt"
)

// LinkCommand links this device to a Charm account.
// Uses SSH key auth - charm handles this automatically via SSH keys.
func LinkCommand(c *Client, args []string) error {
	fs := flag.NewFlagSet("sync link", flag.ExitOnError)
	_ = fs.Parse(args)

	cfg := c.Config()
	fmt.Printf("Linking to Charm Cloud (%s)...\n\n", cfg.Host)
	fmt.Println("Charm uses SSH key authentication.")

	// Test connection by syncing
	if err := c.Sync(); err != nil {
		return fmt.Errorf("link failed: %w", err)
	}

	id, err := c.ID()
	if err != nil {
		fmt.Println("✓ Device linked (ID unavailable)")
	} else {
		fmt.Printf("✓ Linked to account: %s\n", id)
	}

	fmt.Printf("✓ Device ID: %s\n", cfg.DeviceID)
	fmt.Printf("✓ Auto-sync: %v\n", cfg.AutoSync)
	fmt.Println("\nYour device is now syncing with Charm Cloud!")

	return nil
}

// SyncStatusCommand shows current sync configuration and status.
func SyncStatusCommand(c *Client, args []string) error {
	fs := flag.NewFlagSet("sync status", flag.ExitOnError)
	_ = fs.Parse(args)

	cfg := c.Config()
	fmt.Println("Charm Sync Status")
	fmt.Println("=================")
	fmt.Printf("Server:     %s\n", cfg.Host)
	fmt.Printf("Device ID:  %s\n", cfg.DeviceID)
	fmt.Printf("Auto-sync:  %v\n", cfg.AutoSync)
	fmt.Printf("Connected:  %v\n", c.IsConnected())

	keys, err := c.Keys()
	if err != nil {
		return fmt.Errorf("failed to list keys: %w", err)
	}
	fmt.Printf("Local keys: %d\n", len(keys))

	return nil
}

// SyncNowCommand forces an immediate sync with the charm server.
func SyncNowCommand(c *Client, args []string) error {
	fs := flag.NewFlagSet("sync now", flag.ExitOnError)
	_ = fs.Parse(args)

	fmt.Println("Syncing with Charm Cloud...")
	if err := c.Sync(); err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}
	fmt.Println("✓ Sync complete")

	return nil
}

// SyncWipeCommand wipes all synced data from the KV store.
func SyncWipeCommand(c *Client, args []string) error {
	fs := flag.NewFlagSet("sync wipe", flag.ExitOnError)
	confirm := fs.Bool("yes", false, "Confirm the wipe without prompting")
	_ = fs.Parse(args)

	if !*confirm {
		fmt.Println("This will delete ALL synced data on this device.")
		fmt.Println("Re-run with --yes to confirm.")
		return nil
	}

	if err := c.Reset(); err != nil {
		return fmt.Errorf("wipe failed: %w", err)
	}
	fmt.Println("✓ Local KV store wiped")

	return nil
}
