// ABOUTME: Tests for order/payment models
// ABOUTME: Validates required fields, sort order, and payment filters
package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleayin/orderdesk/errs"
)

func TestOrderValidate(t *testing.T) {
	tests := []struct {
		name    string
		order   Order
		wantErr bool
	}{
		{
			name:  "valid order",
			order: Order{CustomerName: "Ali", ServiceType: ServiceOther, Price: 1000},
		},
		{
			name:    "missing customer name",
			order:   Order{ServiceType: ServiceOther},
			wantErr: true,
		},
		{
			name:    "missing service type",
			order:   Order{CustomerName: "Ali"},
			wantErr: true,
		},
		{
			name:    "negative price",
			order:   Order{CustomerName: "Ali", ServiceType: ServiceDesign, Price: -5},
			wantErr: true,
		},
		{
			name:  "zero price is fine",
			order: Order{CustomerName: "Ali", ServiceType: ServiceDesign},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.order.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, errs.ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPaymentValidate(t *testing.T) {
	p := Payment{Amount: -1}
	assert.ErrorIs(t, p.Validate(), errs.ErrValidation)

	p.Amount = 0
	assert.NoError(t, p.Validate())
}

func TestSortOrders_NewestFirst(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	orders := []Order{
		{ID: "t1", CreatedAt: base},
		{ID: "t3", CreatedAt: base.Add(2 * time.Hour)},
		{ID: "t2", CreatedAt: base.Add(time.Hour)},
	}

	SortOrders(orders)

	assert.Equal(t, "t3", orders[0].ID)
	assert.Equal(t, "t2", orders[1].ID)
	assert.Equal(t, "t1", orders[2].ID)
}

func TestSortOrders_TieBreaksByIDDescending(t *testing.T) {
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	orders := []Order{
		{ID: "aaa", CreatedAt: at},
		{ID: "zzz", CreatedAt: at},
		{ID: "mmm", CreatedAt: at},
	}

	SortOrders(orders)

	assert.Equal(t, "zzz", orders[0].ID)
	assert.Equal(t, "mmm", orders[1].ID)
	assert.Equal(t, "aaa", orders[2].ID)
}

func TestOrder_JSONFlattensServiceDetails(t *testing.T) {
	o := Order{
		CustomerName: "Ali",
		ServiceType:  ServicePromotion,
		ServiceDetails: ServiceDetails{
			PromotionAmount:   250,
			PromotionCurrency: "usd",
		},
	}

	data, err := json.Marshal(o)
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, 250.0, raw["promotion_amount"], "service fields flatten onto the record")

	var decoded Order
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, 250.0, decoded.PromotionAmount)
	assert.Equal(t, "usd", decoded.PromotionCurrency)
}

func TestFilterPaymentsByRecipient(t *testing.T) {
	payments := []Payment{
		{ID: "1", Type: RecipientWorker, RecipientName: "Omar"},
		{ID: "2", Type: RecipientPartner, RecipientName: "Omar"},
		{ID: "3", Type: RecipientWorker, RecipientName: "Sara"},
	}

	got := FilterPaymentsByRecipient(payments, RecipientWorker, "Omar")
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)
}

func TestFilterPaymentsByTime(t *testing.T) {
	now := time.Now()
	payments := []Payment{
		{ID: "today", Date: now},
		{ID: "last-week", Date: now.AddDate(0, 0, -5)},
		{ID: "old", Date: now.AddDate(0, 0, -45)},
	}

	tests := []struct {
		name       string
		filter     TimeFilter
		customDays string
		wantIDs    []string
	}{
		{name: "all", filter: FilterAll, wantIDs: []string{"today", "last-week", "old"}},
		{name: "today", filter: FilterToday, wantIDs: []string{"today"}},
		{name: "week", filter: FilterWeek, wantIDs: []string{"today", "last-week"}},
		{name: "month", filter: FilterMonth, wantIDs: []string{"today", "last-week"}},
		{name: "custom 50 days", filter: FilterCustom, customDays: "50", wantIDs: []string{"today", "last-week", "old"}},
		{name: "custom invalid", filter: FilterCustom, customDays: "nope", wantIDs: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterPaymentsByTime(payments, tt.filter, tt.customDays)
			var ids []string
			for _, p := range got {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}
