package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smsrates/pricefeed/internal/model"
)

type NetworkRepository struct {
	pool *pgxpool.Pool
}

func NewNetworkRepository(pool *pgxpool.Pool) *NetworkRepository {
	return &NetworkRepository{pool: pool}
}

// GetByMCCMNC returns (nil, nil) when no network carries the code.
func (r *NetworkRepository) GetByMCCMNC(ctx context.Context, mccmnc string) (*model.Network, error) {
	var n model.Network
	err := r.pool.QueryRow(ctx,
		`SELECT id, country_id, name, mnc, mccmnc FROM networks WHERE mccmnc = $1`,
		mccmnc,
	).Scan(&n.ID, &n.CountryID, &n.Name, &n.MNC, &n.MCCMNC)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// EnsureCountry is an atomic insert-or-fetch keyed on the unique mcc
// constraint: insert ignoring conflicts, then read back whichever row won.
// Safe against concurrent cycles, unlike a check-then-insert sequence.
func (r *NetworkRepository) EnsureCountry(ctx context.Context, name, mcc string) (*model.Country, error) {
	if _, err := r.pool.Exec(ctx,
		`INSERT INTO countries (name, mcc) VALUES ($1, $2)
		ON CONFLICT (mcc) DO NOTHING`,
		name, mcc); err != nil {
		return nil, err
	}

	var c model.Country
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, mcc, mcc_alt1, mcc_alt2 FROM countries WHERE mcc = $1`,
		mcc,
	).Scan(&c.ID, &c.Name, &c.MCC, &c.MCCAlt1, &c.MCCAlt2)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// EnsureNetwork inserts-or-fetches a network on the unique mccmnc constraint.
func (r *NetworkRepository) EnsureNetwork(ctx context.Context, countryID int64, name, mnc, mccmnc string) (*model.Network, error) {
	if _, err := r.pool.Exec(ctx,
		`INSERT INTO networks (country_id, name, mnc, mccmnc) VALUES ($1, $2, $3, $4)
		ON CONFLICT (mccmnc) DO NOTHING`,
		countryID, name, mnc, mccmnc); err != nil {
		return nil, err
	}

	var n model.Network
	err := r.pool.QueryRow(ctx,
		`SELECT id, country_id, name, mnc, mccmnc FROM networks WHERE mccmnc = $1`,
		mccmnc,
	).Scan(&n.ID, &n.CountryID, &n.Name, &n.MNC, &n.MCCMNC)
	if err != nil {
		return nil, err
	}
	return &n, nil
}
