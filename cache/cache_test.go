// ABOUTME: Tests for the local fallback snapshot cache
// ABOUTME: Validates roundtrips, overwrites, and missing-snapshot behavior
package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleayin/orderdesk/models"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := c.Close(); err != nil {
			t.Logf("Warning: failed to close test cache: %v", err)
		}
	})
	return c
}

func TestLoadOrders_MissingSnapshot(t *testing.T) {
	c := openTestCache(t)

	orders, ok, err := c.LoadOrders()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, orders)
}

func TestOrders_SaveThenLoad(t *testing.T) {
	c := openTestCache(t)
	now := time.Now().UTC().Truncate(time.Second)

	in := []models.Order{
		{ID: "a1", CustomerName: "Ali", ServiceType: models.ServiceOther, Price: 1000, CreatedAt: now},
		{ID: "b2", CustomerName: "Sara", ServiceType: models.ServiceDesign, Price: 250, CreatedAt: now.Add(-time.Hour)},
	}
	require.NoError(t, c.SaveOrders(in))

	out, ok, err := c.LoadOrders()
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, out, 2)
	assert.Equal(t, "a1", out[0].ID)
	assert.Equal(t, "Ali", out[0].CustomerName)
	assert.Equal(t, models.ServiceOther, out[0].ServiceType)
	assert.True(t, out[0].CreatedAt.Equal(now))
}

func TestOrders_SnapshotOverwritten(t *testing.T) {
	c := openTestCache(t)

	require.NoError(t, c.SaveOrders([]models.Order{{ID: "old"}, {ID: "older"}}))
	require.NoError(t, c.SaveOrders([]models.Order{{ID: "new"}}))

	out, ok, err := c.LoadOrders()
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, out, 1)
	assert.Equal(t, "new", out[0].ID)
}

func TestPayments_SaveThenLoad(t *testing.T) {
	c := openTestCache(t)
	now := time.Now().UTC().Truncate(time.Second)

	in := []models.Payment{
		{ID: "p1", Type: models.RecipientWorker, RecipientName: "Omar", Amount: 500, PaymentType: models.PaymentPartial, Date: now, CreatedAt: now},
	}
	require.NoError(t, c.SavePayments(in))

	out, ok, err := c.LoadPayments()
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, out, 1)
	assert.Equal(t, "p1", out[0].ID)
	assert.Equal(t, models.RecipientWorker, out[0].Type)
	assert.Equal(t, 500.0, out[0].Amount)
}

func TestPayments_EmptySnapshotIsPresent(t *testing.T) {
	c := openTestCache(t)

	require.NoError(t, c.SavePayments(nil))

	out, ok, err := c.LoadPayments()
	require.NoError(t, err)
	assert.True(t, ok, "an explicitly saved empty snapshot still counts as present")
	assert.Empty(t, out)
}

func TestSnapshots_AreIndependent(t *testing.T) {
	c := openTestCache(t)

	require.NoError(t, c.SaveOrders([]models.Order{{ID: "o1"}}))

	_, ok, err := c.LoadPayments()
	require.NoError(t, err)
	assert.False(t, ok, "orders snapshot must not satisfy a payments load")
}
