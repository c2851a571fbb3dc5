package main

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// poundsPerKilogram converts a per-pound price into the per-kilogram
// reference price shown on the variant detail view. Display only; the cart
// always works in the variant's own unit.
const poundsPerKilogram = 2.20462

// AddToCartFunc is the cart sink a variant card delegates to. The card keeps
// no cart state of its own.
type AddToCartFunc func(variantID string, quantity float64)

// VariantCard holds the interaction state of one rendered product variant:
// the quantity the client typed plus the rules that keep it inside stock.
// The quantity is kept as raw text so partial input like "" or "1." survives
// between keystrokes; it is only parsed at decision points.
type VariantCard struct {
	variant   ProductVariant
	quantity  string
	addToCart AddToCartFunc
}

// NewVariantCard builds a card for a variant with the default quantity of 1.
func NewVariantCard(v ProductVariant, addToCart AddToCartFunc) *VariantCard {
	return &VariantCard{variant: v, quantity: "1", addToCart: addToCart}
}

// Variant returns the variant the card currently shows.
func (c *VariantCard) Variant() ProductVariant { return c.variant }

// Quantity returns the raw quantity text.
func (c *VariantCard) Quantity() string { return c.quantity }

// ParsedQuantity parses the quantity text. Unparsable text counts as 0, which
// keeps every purchase gate closed until the client fixes the input.
func (c *VariantCard) ParsedQuantity() float64 {
	q, err := strconv.ParseFloat(c.quantity, 64)
	if err != nil {
		return 0
	}
	return q
}

// SetQuantity replaces the quantity text without validating it. Bounds are
// enforced by the increment/decrement buttons and the add-to-cart gate, not
// on every keystroke.
func (c *VariantCard) SetQuantity(text string) {
	c.quantity = text
}

// ShowVariant switches the card to another variant. The quantity resets to
// the default whenever the variant identity changes.
func (c *VariantCard) ShowVariant(v ProductVariant) {
	if v.ID != c.variant.ID {
		c.quantity = "1"
	}
	c.variant = v
}

// Increment raises the quantity by one unit, stopping at the stock figure.
func (c *VariantCard) Increment() {
	q := c.ParsedQuantity()
	if q >= float64(c.variant.Stock) || c.variant.Stock <= 0 {
		return
	}
	c.quantity = formatQuantity(q + 1)
}

// Decrement lowers the quantity by one unit, stopping at 1.
func (c *VariantCard) Decrement() {
	q := c.ParsedQuantity()
	if q <= 1 {
		return
	}
	c.quantity = formatQuantity(q - 1)
}

// Purchasable reports whether the quantity controls should show at all.
func (c *VariantCard) Purchasable() bool {
	return c.variant.AvailableForSale && c.variant.Stock > 0
}

// OutOfStock reports whether the out-of-stock label replaces the controls.
func (c *VariantCard) OutOfStock() bool {
	return c.variant.Stock <= 0
}

// CanAddToCart is the gate on the add-to-cart action: a positive parsed
// quantity and stock on hand. The card computes the gate; firing the action
// is up to the caller.
func (c *VariantCard) CanAddToCart() bool {
	return c.ParsedQuantity() > 0 && c.variant.Stock > 0
}

// AddToCart hands the requested quantity to the cart sink when the gate
// holds. Returns whether the sink was called.
func (c *VariantCard) AddToCart() bool {
	if !c.CanAddToCart() {
		return false
	}
	if c.addToCart != nil {
		c.addToCart(c.variant.ID, c.ParsedQuantity())
	}
	return true
}

// PricePerKilogram converts a per-pound price into a per-kilogram reference
// rounded to two decimals, e.g. 2.00/lb becomes "4.41".
func PricePerKilogram(pricePerPound float64) string {
	perKg := decimal.NewFromFloat(pricePerPound).Mul(decimal.NewFromFloat(poundsPerKilogram))
	return perKg.StringFixed(2)
}

// PricePerKg returns the reference price for by-weight variants; the second
// result is false for variants sold per unit.
func (c *VariantCard) PricePerKg() (string, bool) {
	if !c.variant.ByWeight {
		return "", false
	}
	return PricePerKilogram(c.variant.Price), true
}

// formatQuantity renders a stepped quantity back into the text buffer without
// a trailing ".0" for whole numbers.
func formatQuantity(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}
