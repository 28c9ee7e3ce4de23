package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices travel as JSON numbers, never as formatted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// MenuItem is a dish listed on the public menu.  It corresponds to a row in
// the `menu_items` table.
//
// Fields:
//  ID          – identifier assigned by the store on creation.
//  Name        – non-empty display name.
//  Description – free text shown under the name.
//  Price       – non-negative amount, compared numerically.
//  Category    – one of Categories.
//  ImageURL    – optional hosted image reference.
//  CreatedAt   – when the item was added.
type MenuItem struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	ImageURL    string          `json:"image_url,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// MenuItemInput is the unvalidated admin form.  Price is kept loosely typed
// because the form may submit it as a number or as text.
type MenuItemInput struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Price       any    `json:"price" yaml:"price"`
	Category    string `json:"category" yaml:"category"`
	ImageURL    string `json:"image_url" yaml:"image_url"`
}

// Validate checks required fields, the category and the price, and returns
// the item ready to be stored.  ID and CreatedAt are left for the store.
func (in MenuItemInput) Validate() (MenuItem, error) {
	var errs ValidationErrors
	if blank(in.Name) {
		errs.add("name", "name is required")
	}
	if blank(in.Description) {
		errs.add("description", "description is required")
	}
	switch {
	case blank(in.Category):
		errs.add("category", "category is required")
	case !IsCategory(in.Category):
		errs.add("category", "unknown category")
	}
	price, err := ParsePrice(in.Price)
	if err != nil {
		errs.add("price", "Please enter a valid price")
	}
	if err := errs.err(); err != nil {
		return MenuItem{}, err
	}
	return MenuItem{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Price:       price,
		Category:    in.Category,
		ImageURL:    strings.TrimSpace(in.ImageURL),
	}, nil
}

// maxPrice is the first amount a DECIMAL(10,2) price column cannot hold.
var maxPrice = decimal.New(1, 8)

// ParsePrice converts a submitted price into a decimal.  Numbers and numeric
// strings are accepted.  The result is strictly positive, has at most two
// fractional digits and fits the price column.
func ParsePrice(value any) (decimal.Decimal, error) {
	var d decimal.Decimal
	switch v := value.(type) {
	case nil:
		return decimal.Zero, fmt.Errorf("price is required")
	case decimal.Decimal:
		d = v
	case json.Number:
		return ParsePrice(string(v))
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return decimal.Zero, fmt.Errorf("price is required")
		}
		var err error
		d, err = decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, fmt.Errorf("cannot parse %q as a price: %w", v, err)
		}
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return decimal.Zero, fmt.Errorf("price must be finite")
		}
		d = decimal.NewFromFloat(v)
	case int:
		d = decimal.NewFromInt(int64(v))
	case int64:
		d = decimal.NewFromInt(v)
	default:
		return decimal.Zero, fmt.Errorf("cannot convert %T to a price", value)
	}
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("price must be greater than zero")
	}
	if !d.Equal(d.Round(2)) {
		return decimal.Zero, fmt.Errorf("price %s has more than two decimal places", d)
	}
	if d.GreaterThanOrEqual(maxPrice) {
		return decimal.Zero, fmt.Errorf("price %s is too large", d)
	}
	return d, nil
}
