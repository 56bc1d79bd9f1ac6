// ABOUTME: Payment CLI commands
// ABOUTME: Human-friendly commands for recording, listing, and deleting payments
package cli

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/aleayin/orderdesk/models"
	"github.com/aleayin/orderdesk/syncer"
)

// AddPaymentCommand records a new payment
func AddPaymentCommand(c *syncer.Coordinator, args []string) error {
	fs := flag.NewFlagSet("add-payment", flag.ExitOnError)
	recipient := fs.String("recipient", "", "Recipient name (required)")
	recipientType := fs.String("type", "worker", "Recipient type: worker|partner")
	amount := fs.Float64("amount", 0, "Payment amount (required)")
	paymentType := fs.String("payment-type", "full", "Payment type: full|partial")
	date := fs.String("date", "", "Payment date (YYYY-MM-DD, defaults to today)")
	fs.Parse(args)

	if *recipient == "" {
		return fmt.Errorf("--recipient is required")
	}

	when := time.Now()
	if *date != "" {
		parsed, err := time.Parse("2006-01-02", *date)
		if err != nil {
			return fmt.Errorf("invalid --date %q: %w", *date, err)
		}
		when = parsed
	}

	payment := models.Payment{
		Type:          models.RecipientType(*recipientType),
		RecipientName: *recipient,
		Amount:        *amount,
		PaymentType:   models.PaymentType(*paymentType),
		Date:          when,
	}

	id, err := c.AddPayment(context.Background(), payment)
	if err != nil {
		return fmt.Errorf("failed to add payment: %w", err)
	}

	fmt.Printf("✓ Payment recorded: %.2f to %s (ID: %s)\n", *amount, *recipient, id)
	return nil
}

// ListPaymentsCommand lists payments with optional recipient and time filters
func ListPaymentsCommand(c *syncer.Coordinator, args []string) error {
	fs := flag.NewFlagSet("list-payments", flag.ExitOnError)
	recipient := fs.String("recipient", "", "Filter by recipient name")
	recipientType := fs.String("type", "worker", "Recipient type for --recipient filter: worker|partner")
	window := fs.String("window", "all", "Time window: today|week|month|custom|all")
	days := fs.String("days", "", "Day count for --window custom")
	fs.Parse(args)

	var payments []models.Payment
	var err error
	switch {
	case *recipient != "":
		payments, err = c.PaymentsByRecipient(context.Background(), models.RecipientType(*recipientType), *recipient)
	default:
		payments, err = c.PaymentsByTimeFilter(context.Background(), models.TimeFilter(*window), *days)
	}
	if err != nil {
		return fmt.Errorf("failed to fetch payments: %w", err)
	}

	if len(payments) == 0 {
		fmt.Println("No payments found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RECIPIENT\tTYPE\tAMOUNT\tDATE\tID")
	fmt.Fprintln(w, "---------\t----\t------\t----\t--")

	var total float64
	for _, p := range payments {
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%s\t%s\n",
			p.RecipientName, p.Type, p.Amount,
			p.Date.Local().Format("2006-01-02"), shortID(p.ID))
		total += p.Amount
	}
	w.Flush()

	fmt.Printf("\nTotal: %d payment(s), %.2f\n", len(payments), total)
	return nil
}

// DeletePaymentCommand removes a single payment
func DeletePaymentCommand(c *syncer.Coordinator, args []string) error {
	fs := flag.NewFlagSet("delete-payment", flag.ExitOnError)
	id := fs.String("id", "", "Payment ID (required)")
	fs.Parse(args)

	if *id == "" {
		return fmt.Errorf("--id is required")
	}

	if err := c.DeletePayment(context.Background(), *id); err != nil {
		return fmt.Errorf("failed to delete payment: %w", err)
	}

	fmt.Printf("✓ Payment deleted: %s\n", *id)
	return nil
}

// ClearPaymentsCommand deletes every payment after confirmation
func ClearPaymentsCommand(c *syncer.Coordinator, args []string) error {
	fs := flag.NewFlagSet("clear-payments", flag.ExitOnError)
	yes := fs.Bool("yes", false, "Skip confirmation prompt")
	fs.Parse(args)

	if !*yes {
		fmt.Print("This deletes ALL payment records. Continue? [y/N]: ")
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		answer = strings.TrimSpace(strings.ToLower(answer))
		if answer != "y" && answer != "yes" {
			fmt.Println("Aborted")
			return nil
		}
	}

	if err := c.DeleteAllPayments(context.Background()); err != nil {
		return fmt.Errorf("failed to clear payments: %w", err)
	}

	fmt.Println("✓ All payments deleted")
	return nil
}
