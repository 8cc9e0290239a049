package parser

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/smsrates/pricefeed/internal/model"
)

// Record is a normalized price row ready for resolution and upsert.
type Record struct {
	Username  string
	MCCMNC    string
	Price     decimal.Decimal
	Currency  string
	Effective string
}

// MapRow probes the row per the template's field mapping and returns the
// normalized record. ok is false when the row is noise to be discarded:
// missing username or mccmnc, or a price that is absent or unparseable.
// Discarded rows are expected in heterogeneous price lists and are not errors.
func MapRow(row Row, mapping model.FieldMapping, opts model.TemplateOptions) (Record, bool) {
	var rec Record

	rec.Username = probe(row, mapping.Username, "username")

	mccmnc := probe(row, mapping.MCCMNC, "mccmnc")
	if mccmnc == "" {
		mcc := probe(row, mapping.MCC, "mcc")
		mnc := probe(row, mapping.MNC, "mnc")
		if mcc != "" && mnc != "" {
			mccmnc = mcc + mnc
		}
	}
	rec.MCCMNC = mccmnc

	raw := probe(row, mapping.Price, "price")
	if raw == "" {
		return Record{}, false
	}
	price, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", "."))
	if err != nil {
		return Record{}, false
	}
	rec.Price = price

	currency := probe(row, mapping.Currency, "currency")
	if currency == "" {
		currency = opts.DefaultCurrency
	}
	if currency == "" {
		currency = "EUR"
	}
	rec.Currency = strings.ToUpper(currency)

	rec.Effective = probe(row, mapping.Effective, "effective", "valid_from")

	if rec.Username == "" || rec.MCCMNC == "" {
		return Record{}, false
	}
	return rec, true
}

// probe returns the first non-empty, non-"nan" value among the candidate
// columns; defaults are used when the mapping lists none.
func probe(row Row, candidates []string, defaults ...string) string {
	if len(candidates) == 0 {
		candidates = defaults
	}
	for _, col := range candidates {
		v := strings.TrimSpace(row[strings.ToLower(col)])
		if v == "" || strings.EqualFold(v, "nan") {
			continue
		}
		return v
	}
	return ""
}
