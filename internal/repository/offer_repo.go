package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smsrates/pricefeed/internal/model"
)

type OfferRepository struct {
	pool *pgxpool.Pool
}

func NewOfferRepository(pool *pgxpool.Pool) *OfferRepository {
	return &OfferRepository{pool: pool}
}

func (r *OfferRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

// GetForUpdate locks the current offer row for the triple, keeping the
// compare-then-write sequence atomic within the caller's transaction.
// Returns (nil, nil) when the triple has no current offer.
func (r *OfferRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, supplierID, connectionID, networkID int64) (*model.CurrentOffer, error) {
	var o model.CurrentOffer
	err := tx.QueryRow(ctx,
		`SELECT id, supplier_id, connection_id, network_id, price, currency,
			effective_date, route_type, charge_model, updated_by, updated_at
		FROM offers_current
		WHERE supplier_id = $1 AND connection_id = $2 AND network_id = $3
		FOR UPDATE`,
		supplierID, connectionID, networkID,
	).Scan(&o.ID, &o.SupplierID, &o.ConnectionID, &o.NetworkID, &o.Price, &o.Currency,
		&o.EffectiveDate, &o.RouteType, &o.ChargeModel, &o.UpdatedBy, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OfferRepository) InsertCurrent(ctx context.Context, tx pgx.Tx, o *model.CurrentOffer) error {
	return tx.QueryRow(ctx,
		`INSERT INTO offers_current (supplier_id, connection_id, network_id, price, currency,
			effective_date, updated_by, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		o.SupplierID, o.ConnectionID, o.NetworkID, o.Price, o.Currency,
		o.EffectiveDate, o.UpdatedBy, o.UpdatedAt,
	).Scan(&o.ID)
}

func (r *OfferRepository) UpdateCurrent(ctx context.Context, tx pgx.Tx, o *model.CurrentOffer) error {
	_, err := tx.Exec(ctx,
		`UPDATE offers_current
		SET price = $2, currency = $3, effective_date = $4, updated_by = $5, updated_at = $6
		WHERE id = $1`,
		o.ID, o.Price, o.Currency, o.EffectiveDate, o.UpdatedBy, o.UpdatedAt)
	return err
}

// InsertHistory appends the snapshot of a superseded offer. History rows are
// written exactly once per price change and never updated or deleted.
func (r *OfferRepository) InsertHistory(ctx context.Context, tx pgx.Tx, h *model.OfferHistory) error {
	return tx.QueryRow(ctx,
		`INSERT INTO offers_history (previous_id, supplier_id, connection_id, network_id,
			price, currency, effective_date, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		h.PreviousID, h.SupplierID, h.ConnectionID, h.NetworkID,
		h.Price, h.Currency, h.EffectiveDate, h.RecordedAt,
	).Scan(&h.ID)
}

func (r *OfferRepository) List(ctx context.Context, supplierID, connectionID int64) ([]model.CurrentOffer, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, supplier_id, connection_id, network_id, price, currency,
			effective_date, route_type, charge_model, updated_by, updated_at
		FROM offers_current
		WHERE ($1 = 0 OR supplier_id = $1) AND ($2 = 0 OR connection_id = $2)
		ORDER BY id`,
		supplierID, connectionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var offers []model.CurrentOffer
	for rows.Next() {
		var o model.CurrentOffer
		if err := rows.Scan(&o.ID, &o.SupplierID, &o.ConnectionID, &o.NetworkID, &o.Price, &o.Currency,
			&o.EffectiveDate, &o.RouteType, &o.ChargeModel, &o.UpdatedBy, &o.UpdatedAt); err != nil {
			return nil, err
		}
		offers = append(offers, o)
	}
	return offers, rows.Err()
}

func (r *OfferRepository) History(ctx context.Context, offerID int64) ([]model.OfferHistory, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, previous_id, supplier_id, connection_id, network_id,
			price, currency, effective_date, recorded_at
		FROM offers_history WHERE previous_id = $1 ORDER BY recorded_at DESC`,
		offerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hist []model.OfferHistory
	for rows.Next() {
		var h model.OfferHistory
		if err := rows.Scan(&h.ID, &h.PreviousID, &h.SupplierID, &h.ConnectionID, &h.NetworkID,
			&h.Price, &h.Currency, &h.EffectiveDate, &h.RecordedAt); err != nil {
			return nil, err
		}
		hist = append(hist, h)
	}
	return hist, rows.Err()
}
