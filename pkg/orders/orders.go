/*
Zaparoo VFD
Copyright (c) 2025 The Zaparoo Project Contributors.
SPDX-License-Identifier: GPL-3.0-or-later

This file is part of Zaparoo VFD.

Zaparoo VFD is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

Zaparoo VFD is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with Zaparoo VFD.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package orders formats point-of-sale orders for a two line customer
// display.
package orders

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/ZaparooProject/zaparoo-vfd/pkg/validation"
	"github.com/dustin/go-humanize"
)

var (
	// ErrEmptyOrder is returned for an order without items.
	ErrEmptyOrder = errors.New("order has no items")
	// ErrAmountTooLarge is returned when a line amount or the order total
	// is above MaxAmount.
	ErrAmountTooLarge = errors.New("order amount too large")
)

// MaxAmount bounds prices, line amounts and order totals.
const MaxAmount = 1e15

const (
	nameMaxLen = 7
	nameMinLen = 5
)

// Item is one order line as sent by the till.
type Item struct {
	Quantity *int    `json:"quantity,omitempty" validate:"omitempty,gte=0"`
	Name     string  `json:"name" validate:"required"`
	Price    float64 `json:"price" validate:"gte=0,lte=1e15"`
}

// Qty returns the quantity, defaulting to 1 when not given.
func (i Item) Qty() int {
	if i.Quantity == nil {
		return 1
	}
	return *i.Quantity
}

// Amount is price times quantity.
func (i Item) Amount() float64 {
	return i.Price * float64(i.Qty())
}

// Validate checks an order before it is displayed.
func Validate(items []Item) error {
	if len(items) == 0 {
		return ErrEmptyOrder
	}
	if err := validation.DefaultValidator.ValidateSlice(items); err != nil {
		return fmt.Errorf("invalid order: %w", err)
	}
	var total float64
	for i, it := range items {
		amount := math.RoundToEven(it.Amount())
		if amount > MaxAmount {
			return fmt.Errorf("%w: item %d (%s) is above %s", ErrAmountTooLarge, i, it.Name, FormatMoney(MaxAmount))
		}
		total += amount
	}
	if total > MaxAmount {
		return fmt.Errorf("%w: total is above %s", ErrAmountTooLarge, FormatMoney(MaxAmount))
	}
	return nil
}

// FormatName shortens product names to fit next to a price: names of
// seven or more characters are cut to seven, shorter ones are padded to
// five.
func FormatName(name string) string {
	r := []rune(name)
	if len(r) >= nameMaxLen {
		return string(r[:nameMaxLen])
	}
	if len(r) < nameMinLen {
		return name + strings.Repeat(" ", nameMinLen-len(r))
	}
	return name
}

// FormatMoney rounds to a whole amount (halves to even) and groups
// thousands with spaces: 45000 becomes "45 000".
func FormatMoney(v float64) string {
	r := math.RoundToEven(v)
	var s string
	if r >= math.MinInt64 && r < math.MaxInt64 {
		s = humanize.Comma(int64(r))
	} else {
		// out of int64 range
		s = humanize.Commaf(r)
	}
	return strings.ReplaceAll(s, ",", " ")
}

// Total sums every item's amount, each rounded first.
func Total(items []Item) float64 {
	var total float64
	for _, it := range items {
		total += math.RoundToEven(it.Amount())
	}
	return total
}

// ItemLine renders one item as "<name>: <amount> <currency>".
func ItemLine(it Item, currency string) string {
	return fmt.Sprintf("%s: %s %s", FormatName(it.Name), FormatMoney(it.Amount()), currency)
}

// TotalLine renders "TOTAL = <total> <currency>".
func TotalLine(total float64, currency string) string {
	return fmt.Sprintf("TOTAL = %s %s", FormatMoney(total), currency)
}

// Lines returns what the display shows for an order: the last item
// scanned and the running total. An empty order gives only the total.
func Lines(items []Item, currency string) []string {
	total := TotalLine(Total(items), currency)
	if len(items) == 0 {
		return []string{total}
	}
	return []string{ItemLine(items[len(items)-1], currency), total}
}
