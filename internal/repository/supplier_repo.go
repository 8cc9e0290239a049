package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smsrates/pricefeed/internal/model"
)

type SupplierRepository struct {
	pool *pgxpool.Pool
}

func NewSupplierRepository(pool *pgxpool.Pool) *SupplierRepository {
	return &SupplierRepository{pool: pool}
}

func (r *SupplierRepository) List(ctx context.Context) ([]model.Supplier, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, organization_name, per_delivered, created_at
		FROM suppliers ORDER BY organization_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var suppliers []model.Supplier
	for rows.Next() {
		var s model.Supplier
		if err := rows.Scan(&s.ID, &s.OrganizationName, &s.PerDelivered, &s.CreatedAt); err != nil {
			return nil, err
		}
		suppliers = append(suppliers, s)
	}
	return suppliers, rows.Err()
}

func (r *SupplierRepository) Insert(ctx context.Context, s *model.Supplier) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO suppliers (organization_name, per_delivered)
		VALUES ($1, $2)
		RETURNING id, created_at`,
		s.OrganizationName, s.PerDelivered,
	).Scan(&s.ID, &s.CreatedAt)
}

func (r *SupplierRepository) ListConnections(ctx context.Context, supplierID int64) ([]model.Connection, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, supplier_id, connection_name, smsc_id, username, charge_model
		FROM supplier_connections WHERE supplier_id = $1 ORDER BY connection_name`,
		supplierID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var conns []model.Connection
	for rows.Next() {
		var c model.Connection
		if err := rows.Scan(&c.ID, &c.SupplierID, &c.ConnectionName, &c.SMSCID, &c.Username, &c.ChargeModel); err != nil {
			return nil, err
		}
		conns = append(conns, c)
	}
	return conns, rows.Err()
}
