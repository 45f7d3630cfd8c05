package state

import (
	"testing"

	"customer-store/internal/domain/customer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntityCollection_SetAll(t *testing.T) {
	t.Run("Keeps payload order", func(t *testing.T) {
		c := emptyCollection().SetAll([]customer.Customer{bo(), ann()})

		assert.Equal(t, []int64{2, 1}, c.IDs)
		assert.Equal(t, []customer.Customer{bo(), ann()}, c.All())
	})

	t.Run("Duplicate id keeps first position and last value", func(t *testing.T) {
		later := customer.New(1, map[string]any{"name": "Annie"})

		c := emptyCollection().SetAll([]customer.Customer{ann(), bo(), later})

		assert.Equal(t, []int64{1, 2}, c.IDs)
		assert.Equal(t, "Annie", c.ByID[1].Attributes["name"])
	})

	t.Run("Empty payload yields empty collection", func(t *testing.T) {
		c := emptyCollection().SetAll([]customer.Customer{ann()}).SetAll(nil)

		assert.Equal(t, 0, c.Len())
		assert.Empty(t, c.ByID)
	})

	t.Run("Stored records do not alias the payload", func(t *testing.T) {
		payload := []customer.Customer{ann()}
		c := emptyCollection().SetAll(payload)

		payload[0].Attributes["name"] = "Mutated"

		assert.Equal(t, "Ann", c.ByID[1].Attributes["name"])
	})
}

func TestEntityCollection_AddOne(t *testing.T) {
	base := emptyCollection().AddOne(ann())

	t.Run("Appends a new id", func(t *testing.T) {
		c := base.AddOne(bo())

		assert.Equal(t, []int64{1, 2}, c.IDs)
		assert.Equal(t, []int64{1}, base.IDs)
		assert.False(t, base.Has(2))
	})

	t.Run("Ignores an existing id", func(t *testing.T) {
		c := base.AddOne(customer.New(1, map[string]any{"name": "Other"}))

		assert.Equal(t, base, c)
	})
}

func TestEntityCollection_UpsertOne(t *testing.T) {
	base := emptyCollection().SetAll([]customer.Customer{ann(), bo()})

	replaced := base.UpsertOne(customer.New(1, map[string]any{"name": "Anna"}))
	assert.Equal(t, []int64{1, 2}, replaced.IDs)
	assert.Equal(t, "Anna", replaced.ByID[1].Attributes["name"])
	assert.Equal(t, "Ann", base.ByID[1].Attributes["name"])

	inserted := base.UpsertOne(customer.New(3, nil))
	assert.Equal(t, []int64{1, 2, 3}, inserted.IDs)
}

func TestEntityCollection_UpdateOne(t *testing.T) {
	base := emptyCollection().SetAll([]customer.Customer{bo()})

	c := base.UpdateOne(Update{ID: 2, Changes: customer.New(2, map[string]any{"city": "Bergen", "vip": true})})

	got, ok := c.Get(2)
	require.True(t, ok)
	assert.Equal(t, "Bo", got.Attributes["name"])
	assert.Equal(t, "Bergen", got.Attributes["city"])
	assert.Equal(t, true, got.Attributes["vip"])
	assert.Equal(t, "Oslo", base.ByID[2].Attributes["city"])

	assert.Equal(t, base, base.UpdateOne(Update{ID: 8, Changes: customer.New(8, nil)}))
}

func TestEntityCollection_RemoveOne(t *testing.T) {
	base := emptyCollection().SetAll([]customer.Customer{ann(), bo()})

	c := base.RemoveOne(1)
	assert.Equal(t, []int64{2}, c.IDs)
	assert.False(t, c.Has(1))
	assert.Equal(t, []int64{1, 2}, base.IDs)

	assert.Equal(t, c, c.RemoveOne(1))
}

func TestEntityCollection_GetMissing(t *testing.T) {
	_, ok := emptyCollection().Get(1)

	assert.False(t, ok)
}

func TestEntityCollection_ReadsReturnCopies(t *testing.T) {
	c := emptyCollection().SetAll([]customer.Customer{ann(), bo()})

	got, ok := c.Get(1)
	require.True(t, ok)
	got.Attributes["name"] = "Changed"
	c.All()[1].Attributes["city"] = "Changed"

	assert.Equal(t, "Ann", c.ByID[1].Attributes["name"])
	assert.Equal(t, "Oslo", c.ByID[2].Attributes["city"])
}

func TestEntityCollection_AllKeepsInsertionOrder(t *testing.T) {
	c := emptyCollection().SetAll([]customer.Customer{bo()}).AddOne(ann())

	all := c.All()

	require.Len(t, all, 2)
	assert.Equal(t, int64(2), all[0].ID)
	assert.Equal(t, int64(1), all[1].ID)
}
