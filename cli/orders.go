// ABOUTME: Order CLI commands
// ABOUTME: Human-friendly commands for adding, updating, deleting, and listing orders
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/aleayin/orderdesk/models"
	"github.com/aleayin/orderdesk/syncer"
)

// AddOrderCommand creates a new order
func AddOrderCommand(c *syncer.Coordinator, args []string) error {
	fs := flag.NewFlagSet("add-order", flag.ExitOnError)
	customer := fs.String("customer", "", "Customer name (required)")
	service := fs.String("service", "", "Service type: promotion|design|photography|printing|other (required)")
	details := fs.String("details", "", "Order details")
	price := fs.Float64("price", 0, "Order price")
	quantity := fs.Int("quantity", 0, "Quantity")
	priority := fs.String("priority", "", "Priority: low|medium|high")
	status := fs.String("status", "pending", "Status: pending|in-progress|completed|cancelled")
	notes := fs.String("notes", "", "Notes about the order")
	fs.Parse(args)

	order := models.Order{
		CustomerName: *customer,
		OrderDetails: *details,
		Price:        *price,
		Quantity:     *quantity,
		Priority:     models.Priority(*priority),
		Status:       models.OrderStatus(*status),
		ServiceType:  models.ServiceType(*service),
		Notes:        *notes,
	}

	created, err := c.AddOrder(context.Background(), order)
	if err != nil {
		return fmt.Errorf("failed to add order: %w", err)
	}

	fmt.Printf("✓ Order created: %s (ID: %s)\n", created.CustomerName, created.ID)
	fmt.Printf("  Service: %s\n", created.ServiceType)
	if created.Price > 0 {
		fmt.Printf("  Price: %.2f\n", created.Price)
	}

	return nil
}

// UpdateOrderStatusCommand changes the status of an existing order
func UpdateOrderStatusCommand(c *syncer.Coordinator, args []string) error {
	fs := flag.NewFlagSet("update-order", flag.ExitOnError)
	id := fs.String("id", "", "Order ID (required)")
	status := fs.String("status", "", "New status: pending|in-progress|completed|cancelled (required)")
	fs.Parse(args)

	if *id == "" {
		return fmt.Errorf("--id is required")
	}
	if *status == "" {
		return fmt.Errorf("--status is required")
	}

	order, ok := findOrder(c, *id)
	if !ok {
		// Local snapshot may be empty on a fresh process; pull one down first.
		if err := loadOrders(c); err != nil {
			return err
		}
		order, ok = findOrder(c, *id)
		if !ok {
			return fmt.Errorf("order not found: %s", *id)
		}
	}

	order.Status = models.OrderStatus(*status)
	if err := c.UpdateOrder(context.Background(), order); err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}

	fmt.Printf("✓ Order %s set to %s\n", order.ID, order.Status)
	return nil
}

// DeleteOrderCommand removes an order
func DeleteOrderCommand(c *syncer.Coordinator, args []string) error {
	fs := flag.NewFlagSet("delete-order", flag.ExitOnError)
	id := fs.String("id", "", "Order ID (required)")
	fs.Parse(args)

	if *id == "" {
		return fmt.Errorf("--id is required")
	}

	if err := c.DeleteOrder(context.Background(), *id); err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}

	fmt.Printf("✓ Order deleted: %s\n", *id)
	return nil
}

// ListOrdersCommand lists all orders
func ListOrdersCommand(c *syncer.Coordinator, args []string) error {
	fs := flag.NewFlagSet("list-orders", flag.ExitOnError)
	status := fs.String("status", "", "Filter by status")
	limit := fs.Int("limit", 50, "Maximum results")
	fs.Parse(args)

	if err := loadOrders(c); err != nil {
		return err
	}

	orders := c.Orders()
	if *status != "" {
		var filtered []models.Order
		for _, o := range orders {
			if o.Status == models.OrderStatus(*status) {
				filtered = append(filtered, o)
			}
		}
		orders = filtered
	}
	if len(orders) > *limit {
		orders = orders[:*limit]
	}

	if len(orders) == 0 {
		fmt.Println("No orders found")
		return nil
	}

	// Pretty print results
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CUSTOMER\tSERVICE\tSTATUS\tPRICE\tCREATED\tID")
	fmt.Fprintln(w, "--------\t-------\t------\t-----\t-------\t--")

	for _, o := range orders {
		status := string(o.Status)
		if status == "" {
			status = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%s\t%s\n",
			o.CustomerName, o.ServiceType, status, o.Price,
			o.CreatedAt.Local().Format("2006-01-02"), shortID(o.ID))
	}
	w.Flush()

	fmt.Printf("\nTotal: %d order(s)\n", len(orders))
	return nil
}

// loadOrders blocks until one snapshot of the order collection has been
// delivered, then tears the subscription back down.
func loadOrders(c *syncer.Coordinator) error {
	delivered := make(chan struct{}, 1)
	unsub := c.SubscribeOrders(func([]models.Order) {
		select {
		case delivered <- struct{}{}:
		default:
		}
	})
	defer unsub()

	select {
	case <-delivered:
		return nil
	case <-time.After(90 * time.Second):
		return fmt.Errorf("timed out waiting for orders")
	}
}

func findOrder(c *syncer.Coordinator, id string) (models.Order, bool) {
	for _, o := range c.Orders() {
		if o.ID == id {
			return o, true
		}
	}
	return models.Order{}, false
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
