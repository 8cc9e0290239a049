package parser

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smsrates/pricefeed/internal/model"
)

func TestMapRow_Basic(t *testing.T) {
	row := Row{"username": "client1", "mcc": "202", "mnc": "01", "price": "12.5", "currency": "eur"}

	rec, ok := MapRow(row, model.FieldMapping{}, model.TemplateOptions{})
	require.True(t, ok)
	assert.Equal(t, "client1", rec.Username)
	assert.Equal(t, "20201", rec.MCCMNC, "mccmnc derived from mcc ++ mnc")
	assert.True(t, rec.Price.Equal(decimal.RequireFromString("12.5")))
	assert.Equal(t, "EUR", rec.Currency, "currency is upper-cased")
}

func TestMapRow_CommaDecimalSeparator(t *testing.T) {
	row := Row{"username": "client1", "mccmnc": "20201", "price": "12,50"}

	rec, ok := MapRow(row, model.FieldMapping{}, model.TemplateOptions{})
	require.True(t, ok)
	assert.True(t, rec.Price.Equal(decimal.RequireFromString("12.50")))
}

func TestMapRow_DirectMCCMNCWins(t *testing.T) {
	row := Row{"username": "client1", "mcc": "999", "mnc": "99", "mccmnc": "20201", "price": "1"}

	rec, ok := MapRow(row, model.FieldMapping{}, model.TemplateOptions{})
	require.True(t, ok)
	assert.Equal(t, "20201", rec.MCCMNC)
}

func TestMapRow_DefaultCurrency(t *testing.T) {
	row := Row{"username": "client1", "mccmnc": "20201", "price": "1"}

	rec, ok := MapRow(row, model.FieldMapping{}, model.TemplateOptions{})
	require.True(t, ok)
	assert.Equal(t, "EUR", rec.Currency)

	rec, ok = MapRow(row, model.FieldMapping{}, model.TemplateOptions{DefaultCurrency: "usd"})
	require.True(t, ok)
	assert.Equal(t, "USD", rec.Currency, "template option overrides the EUR fallback")
}

func TestMapRow_Discards(t *testing.T) {
	tests := []struct {
		name string
		row  Row
	}{
		{"missing price", Row{"username": "client1", "mccmnc": "20201"}},
		{"empty price", Row{"username": "client1", "mccmnc": "20201", "price": ""}},
		{"non-numeric price", Row{"username": "client1", "mccmnc": "20201", "price": "call us"}},
		{"missing username", Row{"mccmnc": "20201", "price": "1"}},
		{"missing mccmnc", Row{"username": "client1", "price": "1"}},
		{"mcc without mnc", Row{"username": "client1", "mcc": "202", "price": "1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := MapRow(tt.row, model.FieldMapping{}, model.TemplateOptions{})
			assert.False(t, ok)
		})
	}
}

func TestMapRow_ColumnPriority(t *testing.T) {
	mapping := model.FieldMapping{
		Username: []string{"account", "client", "username"},
		Price:    []string{"rate", "price"},
	}
	row := Row{"client": "fromclient", "username": "fromusername", "rate": "nan", "price": "2,0", "mccmnc": "20201"}

	rec, ok := MapRow(row, mapping, model.TemplateOptions{})
	require.True(t, ok)
	assert.Equal(t, "fromclient", rec.Username, "first present candidate wins")
	assert.True(t, rec.Price.Equal(decimal.RequireFromString("2.0")), `"nan" values are skipped`)
}

func TestMapRow_EffectiveFallbackColumns(t *testing.T) {
	row := Row{"username": "client1", "mccmnc": "20201", "price": "1", "valid_from": "2026-01-01"}

	rec, ok := MapRow(row, model.FieldMapping{}, model.TemplateOptions{})
	require.True(t, ok)
	assert.Equal(t, "2026-01-01", rec.Effective)
}
