package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/smsrates/pricefeed/internal/model"
)

type TemplateRepository struct {
	pool *pgxpool.Pool
}

func NewTemplateRepository(pool *pgxpool.Pool) *TemplateRepository {
	return &TemplateRepository{pool: pool}
}

// ListEnabled returns the templates participating in the next cycle. Enabled
// templates with no match conditions capture every mailbox message, so each
// one is called out at Warn level on every load.
func (r *TemplateRepository) ListEnabled(ctx context.Context) ([]model.ParsingTemplate, error) {
	tpls, err := r.list(ctx, `WHERE enabled = TRUE`)
	if err != nil {
		return nil, err
	}
	for _, t := range tpls {
		if t.Conditions.Empty() {
			log.Warn().
				Int64("template_id", t.ID).
				Str("name", t.Name).
				Msg("template has no match conditions and will match every message")
		}
	}
	return tpls, nil
}

func (r *TemplateRepository) List(ctx context.Context) ([]model.ParsingTemplate, error) {
	return r.list(ctx, "")
}

func (r *TemplateRepository) list(ctx context.Context, where string) ([]model.ParsingTemplate, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, supplier_id, connection_id, name, enabled, conditions, mapping, options, created_at
		FROM parsing_templates `+where+` ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tpls []model.ParsingTemplate
	for rows.Next() {
		var t model.ParsingTemplate
		if err := rows.Scan(&t.ID, &t.SupplierID, &t.ConnectionID, &t.Name, &t.Enabled,
			&t.Conditions, &t.Mapping, &t.Options, &t.CreatedAt); err != nil {
			return nil, err
		}
		tpls = append(tpls, t)
	}
	return tpls, rows.Err()
}

func (r *TemplateRepository) Insert(ctx context.Context, t *model.ParsingTemplate) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO parsing_templates (supplier_id, connection_id, name, enabled, conditions, mapping, options)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`,
		t.SupplierID, t.ConnectionID, t.Name, t.Enabled, t.Conditions, t.Mapping, t.Options,
	).Scan(&t.ID, &t.CreatedAt)
}

func (r *TemplateRepository) SetEnabled(ctx context.Context, id int64, enabled bool) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE parsing_templates SET enabled = $2 WHERE id = $1`, id, enabled)
	return err
}
