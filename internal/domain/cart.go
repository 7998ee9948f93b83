package domain

import "github.com/shopspring/decimal"

// CartItem is a single line of a cart as seen by delivery modules.
type CartItem struct {
	// Ref is the product or SKU reference.
	Ref string

	Quantity int

	// UnitPrice is the taxed price of one unit in the cart currency.
	UnitPrice decimal.Decimal

	// Weight is the weight of one unit in kilograms.
	Weight float64
}

// Cart is the set of items a postage is computed for.
// The quoting flow reads it and never mutates it.
type Cart struct {
	ID       string
	Currency string
	Items    []CartItem
}

// Total returns the taxed amount of every line.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	if c == nil {
		return total
	}

	for _, item := range c.Items {
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	return total
}

// Weight returns the total weight in kilograms.
func (c *Cart) Weight() float64 {
	var weight float64
	if c == nil {
		return weight
	}

	for _, item := range c.Items {
		weight += item.Weight * float64(item.Quantity)
	}

	return weight
}

// ItemCount returns the number of units in the cart.
func (c *Cart) ItemCount() int {
	count := 0
	if c == nil {
		return count
	}

	for _, item := range c.Items {
		count += item.Quantity
	}

	return count
}

// IsEmpty reports whether the cart holds no units.
func (c *Cart) IsEmpty() bool {
	return c == nil || c.ItemCount() == 0
}
