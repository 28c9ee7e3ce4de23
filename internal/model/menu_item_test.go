package model

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validMenuInput() MenuItemInput {
	return MenuItemInput{
		Name:        "Margherita",
		Description: "tomato, mozzarella, basil",
		Price:       "9.5",
		Category:    "Pizza",
	}
}

func TestMenuItemInputValidate_OK(t *testing.T) {
	item, err := validMenuInput().Validate()
	require.NoError(t, err)
	assert.Equal(t, "Margherita", item.Name)
	assert.True(t, item.Price.Equal(decimal.RequireFromString("9.5")))
	assert.Empty(t, item.ID)
}

func TestMenuItemInputValidate_RejectsBadPrices(t *testing.T) {
	cases := []struct {
		name  string
		price any
	}{
		{"negative number", -1.0},
		{"negative text", "-1"},
		{"zero", 0},
		{"non numeric", "abc"},
		{"missing", nil},
		{"empty", "   "},
		{"nan", math.NaN()},
		{"inf", math.Inf(1)},
		{"bool", true},
		{"sub cent text", "0.001"},
		{"sub cent number", 0.004},
		{"three decimals", "9.999"},
		{"over column width", "12345678901.5"},
		{"huge number", 1e15},
		{"at ceiling", "100000000"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validMenuInput()
			in.Price = tc.price
			_, err := in.Validate()
			require.Error(t, err)
			var verrs ValidationErrors
			require.ErrorAs(t, err, &verrs)
			assert.True(t, verrs.Has("price"))
			assert.Equal(t, "Please enter a valid price", verrs.Fields()["price"])
		})
	}
}

func TestMenuItemInputValidate_RequiredFieldsAndCategory(t *testing.T) {
	_, err := MenuItemInput{Price: "1", Category: "Soups"}.Validate()
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.True(t, verrs.Has("name"))
	assert.True(t, verrs.Has("description"))
	assert.Equal(t, "unknown category", verrs.Fields()["category"])
	assert.False(t, verrs.Has("price"))
}

func TestParsePrice_AcceptedForms(t *testing.T) {
	for _, v := range []any{"11", "11.00", 11, int64(11), 11.0, json.Number("11"), decimal.NewFromInt(11)} {
		d, err := ParsePrice(v)
		require.NoError(t, err, "%#v", v)
		assert.True(t, d.Equal(decimal.NewFromInt(11)), "%#v", v)
	}
}

func TestParsePrice_ColumnBounds(t *testing.T) {
	for _, v := range []any{"0.01", "99999999.99", "12.50", 12.5} {
		_, err := ParsePrice(v)
		assert.NoError(t, err, "%#v", v)
	}
}

func TestMenuItemPriceMarshalsAsNumber(t *testing.T) {
	b, err := json.Marshal(MenuItem{Price: decimal.RequireFromString("7.25")})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"price":7.25`)
}
