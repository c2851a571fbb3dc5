package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testVariant(stock int) ProductVariant {
	return ProductVariant{
		ID:               "v-test",
		Title:            "1 lb",
		Stock:            stock,
		Price:            2.00,
		AvailableForSale: true,
		RelatedProduct:   RelatedProduct{Title: "Gala Apples", Tags: []string{"fruits"}},
	}
}

func TestVariantCardStepping(t *testing.T) {
	t.Parallel()

	t.Run("increment clamps at stock", func(t *testing.T) {
		t.Parallel()
		c := NewVariantCard(testVariant(3), nil)
		assert.Equal(t, "1", c.Quantity())

		c.Increment()
		assert.Equal(t, "2", c.Quantity())
		c.Increment()
		assert.Equal(t, "3", c.Quantity())
		c.Increment()
		assert.Equal(t, "3", c.Quantity())
	})

	t.Run("decrement clamps at one", func(t *testing.T) {
		t.Parallel()
		c := NewVariantCard(testVariant(3), nil)
		c.Decrement()
		assert.Equal(t, "1", c.Quantity())
	})

	t.Run("no stepping with zero stock", func(t *testing.T) {
		t.Parallel()
		c := NewVariantCard(testVariant(0), nil)
		c.Increment()
		assert.Equal(t, "1", c.Quantity())
	})

	t.Run("fractional quantities step by whole units", func(t *testing.T) {
		t.Parallel()
		v := testVariant(10)
		v.ByWeight = true
		c := NewVariantCard(v, nil)
		c.SetQuantity("0.5")
		c.Increment()
		assert.Equal(t, "1.5", c.Quantity())
		c.Increment()
		assert.Equal(t, "2.5", c.Quantity())
		c.Decrement()
		assert.Equal(t, "1.5", c.Quantity())
		c.SetQuantity("0.5")
		c.Decrement()
		assert.Equal(t, "0.5", c.Quantity())
	})
}

func TestVariantCardQuantityText(t *testing.T) {
	t.Parallel()

	c := NewVariantCard(testVariant(5), nil)

	// partial input is representable between keystrokes
	c.SetQuantity("")
	assert.Equal(t, float64(0), c.ParsedQuantity())
	assert.False(t, c.CanAddToCart())

	c.SetQuantity("1.")
	assert.Equal(t, float64(1), c.ParsedQuantity())
	assert.True(t, c.CanAddToCart())

	c.SetQuantity("abc")
	assert.Equal(t, float64(0), c.ParsedQuantity())
	assert.False(t, c.CanAddToCart())

	// recoverable by further edits
	c.SetQuantity("2")
	assert.True(t, c.CanAddToCart())
}

func TestVariantCardGates(t *testing.T) {
	t.Parallel()

	t.Run("zero stock never purchasable", func(t *testing.T) {
		t.Parallel()
		c := NewVariantCard(testVariant(0), nil)
		assert.False(t, c.Purchasable())
		assert.True(t, c.OutOfStock())
		for _, q := range []string{"1", "0", "5", "abc"} {
			c.SetQuantity(q)
			assert.False(t, c.CanAddToCart(), "quantity %q", q)
		}
	})

	t.Run("not for sale hides controls but is not out of stock", func(t *testing.T) {
		t.Parallel()
		v := testVariant(4)
		v.AvailableForSale = false
		c := NewVariantCard(v, nil)
		assert.False(t, c.Purchasable())
		assert.False(t, c.OutOfStock())
	})

	t.Run("add to cart delegates to the sink", func(t *testing.T) {
		t.Parallel()
		var gotID string
		var gotQty float64
		calls := 0
		c := NewVariantCard(testVariant(5), func(variantID string, quantity float64) {
			gotID = variantID
			gotQty = quantity
			calls++
		})
		c.SetQuantity("2.5")
		require.True(t, c.AddToCart())
		assert.Equal(t, "v-test", gotID)
		assert.Equal(t, 2.5, gotQty)
		assert.Equal(t, 1, calls)

		c.SetQuantity("0")
		assert.False(t, c.AddToCart())
		assert.Equal(t, 1, calls)
	})
}

func TestVariantCardShowVariant(t *testing.T) {
	t.Parallel()

	c := NewVariantCard(testVariant(5), nil)
	c.SetQuantity("4")

	// same identity keeps the typed quantity, even if stock moved
	refreshed := testVariant(9)
	c.ShowVariant(refreshed)
	assert.Equal(t, "4", c.Quantity())
	assert.Equal(t, 9, c.Variant().Stock)

	// a different variant resets to the default
	other := testVariant(2)
	other.ID = "v-other"
	c.ShowVariant(other)
	assert.Equal(t, "1", c.Quantity())
}

func TestPricePerKilogram(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "4.41", PricePerKilogram(2.00))
	assert.Equal(t, "0.00", PricePerKilogram(0))

	t.Run("card exposes it for by-weight only", func(t *testing.T) {
		t.Parallel()
		v := testVariant(3)
		c := NewVariantCard(v, nil)
		_, ok := c.PricePerKg()
		assert.False(t, ok)

		v.ByWeight = true
		c = NewVariantCard(v, nil)
		perKg, ok := c.PricePerKg()
		require.True(t, ok)
		assert.Equal(t, "4.41", perKg)
	})
}
