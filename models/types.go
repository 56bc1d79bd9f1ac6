// ABOUTME: Data models for service orders and worker/partner payments
// ABOUTME: Defines Order, Worker, Payment structs with validation and sort helpers
package models

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/aleayin/orderdesk/errs"
)

type ServiceType string

const (
	ServicePromotion   ServiceType = "promotion"
	ServiceDesign      ServiceType = "design"
	ServicePhotography ServiceType = "photography"
	ServicePrinting    ServiceType = "printing"
	ServiceOther       ServiceType = "other"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusInProgress OrderStatus = "in-progress"
	StatusCompleted  OrderStatus = "completed"
	StatusCancelled  OrderStatus = "cancelled"
)

type DiscountType string

const (
	DiscountFixed      DiscountType = "fixed"
	DiscountPercentage DiscountType = "percentage"
)

// Worker is a share assignment on an order. Workers belong exclusively to
// their order and are replaced atomically with it.
type Worker struct {
	Name          string  `json:"name"`
	Share         float64 `json:"share"`
	WorkType      string  `json:"work_type,omitempty"`
	PaymentStatus string  `json:"payment_status,omitempty"`
	AmountPaid    float64 `json:"amount_paid,omitempty"`
}

// ServiceDetails carries the per-service-type fields. The sync core persists
// them verbatim and never computes over them.
type ServiceDetails struct {
	PromotionAmount        float64  `json:"promotion_amount,omitempty"`
	PromotionCurrency      string   `json:"promotion_currency,omitempty"`
	PromotionProfit        float64  `json:"promotion_profit,omitempty"`
	DesignTypes            []string `json:"design_types,omitempty"`
	PhotographyDetails     string   `json:"photography_details,omitempty"`
	PhotographyAmount      float64  `json:"photography_amount,omitempty"`
	PhotographerName       string   `json:"photographer_name,omitempty"`
	PhotographerAmount     float64  `json:"photographer_amount,omitempty"`
	PrintingDetails        string   `json:"printing_details,omitempty"`
	PrintingAmount         float64  `json:"printing_amount,omitempty"`
	PrintingEmployeeName   string   `json:"printing_employee_name,omitempty"`
	PrintingEmployeeAmount float64  `json:"printing_employee_amount,omitempty"`
}

type Order struct {
	ID           string       `json:"id"`
	CustomerName string       `json:"customer_name"`
	OrderDetails string       `json:"order_details,omitempty"`
	Price        float64      `json:"price"`
	Quantity     int          `json:"quantity,omitempty"`
	Priority     Priority     `json:"priority,omitempty"`
	Status       OrderStatus  `json:"status,omitempty"`
	ServiceType  ServiceType  `json:"service_type"`
	Discount     float64      `json:"discount,omitempty"`
	DiscountType DiscountType `json:"discount_type,omitempty"`
	Tax          float64      `json:"tax,omitempty"`
	Notes        string       `json:"notes,omitempty"`
	Workers      []Worker     `json:"workers,omitempty"`

	ServiceDetails

	Date      time.Time `json:"date,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks the fields required before an order may reach the remote
// store. The ID requirement is enforced separately on the update path, since
// new orders are created without one.
func (o *Order) Validate() error {
	if o.CustomerName == "" {
		return fmt.Errorf("customer name is required: %w", errs.ErrValidation)
	}
	if o.ServiceType == "" {
		return fmt.Errorf("service type is required: %w", errs.ErrValidation)
	}
	if o.Price < 0 {
		return fmt.Errorf("price must not be negative: %w", errs.ErrValidation)
	}
	return nil
}

// SortOrders sorts newest-first by creation time. Ties are broken by ID
// descending so deliveries are deterministic regardless of store iteration
// order.
func SortOrders(orders []Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		if !orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].CreatedAt.After(orders[j].CreatedAt)
		}
		return orders[i].ID > orders[j].ID
	})
}

type RecipientType string

const (
	RecipientWorker  RecipientType = "worker"
	RecipientPartner RecipientType = "partner"
)

type PaymentType string

const (
	PaymentFull    PaymentType = "full"
	PaymentPartial PaymentType = "partial"
	PaymentNone    PaymentType = "none"
)

// Payment is an append-only disbursement record. Payments are created and
// deleted, never mutated.
type Payment struct {
	ID            string        `json:"id"`
	Type          RecipientType `json:"type"`
	RecipientName string        `json:"recipient_name"`
	Amount        float64       `json:"amount"`
	PaymentType   PaymentType   `json:"payment_type"`
	Date          time.Time     `json:"date"`
	CreatedAt     time.Time     `json:"created_at"`
	CreatedBy     string        `json:"created_by,omitempty"`
}

func (p *Payment) Validate() error {
	if p.Amount < 0 {
		return fmt.Errorf("amount must not be negative: %w", errs.ErrValidation)
	}
	return nil
}

// SortPayments sorts newest-first by creation time, ties by ID descending.
func SortPayments(payments []Payment) {
	sort.SliceStable(payments, func(i, j int) bool {
		if !payments[i].CreatedAt.Equal(payments[j].CreatedAt) {
			return payments[i].CreatedAt.After(payments[j].CreatedAt)
		}
		return payments[i].ID > payments[j].ID
	})
}

// FilterPaymentsByRecipient returns the payments addressed to one recipient.
func FilterPaymentsByRecipient(payments []Payment, recipientType RecipientType, name string) []Payment {
	var out []Payment
	for _, p := range payments {
		if p.Type == recipientType && p.RecipientName == name {
			out = append(out, p)
		}
	}
	return out
}

type TimeFilter string

const (
	FilterToday  TimeFilter = "today"
	FilterWeek   TimeFilter = "week"
	FilterMonth  TimeFilter = "month"
	FilterCustom TimeFilter = "custom"
	FilterAll    TimeFilter = "all"
)

// FilterPaymentsByTime returns the payments whose payment date falls inside
// the window the filter describes. customDays is only consulted for
// FilterCustom and must parse as a positive day count.
func FilterPaymentsByTime(payments []Payment, filter TimeFilter, customDays string) []Payment {
	now := time.Now()

	switch filter {
	case FilterAll, "":
		return payments
	case FilterToday:
		var out []Payment
		for _, p := range payments {
			if sameDay(p.Date, now) {
				out = append(out, p)
			}
		}
		return out
	case FilterWeek:
		return paymentsSince(payments, now.AddDate(0, 0, -7))
	case FilterMonth:
		return paymentsSince(payments, now.AddDate(0, 0, -30))
	case FilterCustom:
		days, err := strconv.Atoi(customDays)
		if err != nil || days <= 0 {
			return nil
		}
		return paymentsSince(payments, now.AddDate(0, 0, -days))
	}
	return nil
}

func paymentsSince(payments []Payment, cutoff time.Time) []Payment {
	var out []Payment
	for _, p := range payments {
		if !p.Date.Before(cutoff) {
			out = append(out, p)
		}
	}
	return out
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
