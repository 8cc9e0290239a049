package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Supplier struct {
	ID               int64     `json:"id"`
	OrganizationName string    `json:"organization_name"`
	PerDelivered     bool      `json:"per_delivered"`
	CreatedAt        time.Time `json:"created_at"`
}

// Connection is a named channel to a supplier; price offers hang off the
// (supplier, connection) pair.
type Connection struct {
	ID             int64  `json:"id"`
	SupplierID     int64  `json:"supplier_id"`
	ConnectionName string `json:"connection_name"`
	SMSCID         string `json:"smsc_id,omitempty"`
	Username       string `json:"username,omitempty"`
	ChargeModel    string `json:"charge_model,omitempty"`
}

type Country struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	MCC     string `json:"mcc"`
	MCCAlt1 string `json:"mcc_alt1,omitempty"`
	MCCAlt2 string `json:"mcc_alt2,omitempty"`
}

type Network struct {
	ID        int64  `json:"id"`
	CountryID int64  `json:"country_id"`
	Name      string `json:"name"`
	MNC       string `json:"mnc"`
	MCCMNC    string `json:"mccmnc"`
}

// CurrentOffer is the single live price row for a (supplier, connection,
// network) triple. The database enforces uniqueness of the triple.
type CurrentOffer struct {
	ID            int64           `json:"id"`
	SupplierID    int64           `json:"supplier_id"`
	ConnectionID  int64           `json:"connection_id"`
	NetworkID     int64           `json:"network_id"`
	Price         decimal.Decimal `json:"price"`
	Currency      string          `json:"currency"`
	EffectiveDate time.Time       `json:"effective_date"`
	RouteType     string          `json:"route_type,omitempty"`
	ChargeModel   string          `json:"charge_model,omitempty"`
	UpdatedBy     string          `json:"updated_by,omitempty"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// OfferHistory is an immutable snapshot of a current offer taken just before
// it was superseded. Rows are appended once and never touched again.
type OfferHistory struct {
	ID            int64           `json:"id"`
	PreviousID    int64           `json:"previous_id"`
	SupplierID    int64           `json:"supplier_id"`
	ConnectionID  int64           `json:"connection_id"`
	NetworkID     int64           `json:"network_id"`
	Price         decimal.Decimal `json:"price"`
	Currency      string          `json:"currency"`
	EffectiveDate time.Time       `json:"effective_date"`
	RecordedAt    time.Time       `json:"recorded_at"`
}

// MatchConditions is the matching-rule half of a parsing template, stored as
// JSONB. A category left nil is not enforced. A template with no categories
// at all matches every message, which is legal but easy to misconfigure.
type MatchConditions struct {
	From             []string `json:"from,omitempty"`
	To               []string `json:"to,omitempty"`
	Cc               []string `json:"cc,omitempty"`
	SubjectKeywords  []string `json:"subject_keywords,omitempty"`
	FilenameKeywords []string `json:"filename_keywords,omitempty"`
}

// Empty reports whether no condition category is set.
func (c MatchConditions) Empty() bool {
	return len(c.From) == 0 && len(c.To) == 0 && len(c.Cc) == 0 &&
		len(c.SubjectKeywords) == 0 && len(c.FilenameKeywords) == 0
}

// FieldMapping lists, per target field, the source column names to probe in
// priority order. An empty list falls back to the target field name itself.
type FieldMapping struct {
	Username  []string `json:"username,omitempty"`
	MCC       []string `json:"mcc,omitempty"`
	MNC       []string `json:"mnc,omitempty"`
	MCCMNC    []string `json:"mccmnc,omitempty"`
	Price     []string `json:"price,omitempty"`
	Currency  []string `json:"currency,omitempty"`
	Effective []string `json:"effective,omitempty"`
}

type TemplateOptions struct {
	DefaultCurrency string `json:"default_currency,omitempty"`
}

type ParsingTemplate struct {
	ID           int64           `json:"id"`
	SupplierID   int64           `json:"supplier_id"`
	ConnectionID int64           `json:"connection_id"`
	Name         string          `json:"name"`
	Enabled      bool            `json:"enabled"`
	Conditions   MatchConditions `json:"conditions"`
	Mapping      FieldMapping    `json:"mapping"`
	Options      TemplateOptions `json:"options"`
	CreatedAt    time.Time       `json:"created_at"`
}

type ParsingEvent struct {
	ID         int64     `json:"id"`
	TemplateID *int64    `json:"template_id,omitempty"`
	EventType  string    `json:"event_type"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"created_at"`
}
