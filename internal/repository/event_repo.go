package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smsrates/pricefeed/internal/model"
)

type EventRepository struct {
	pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

func (r *EventRepository) Insert(ctx context.Context, templateID *int64, eventType, message string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO parsing_events (template_id, event_type, message) VALUES ($1, $2, $3)`,
		templateID, eventType, message)
	return err
}

func (r *EventRepository) ListRecent(ctx context.Context, limit int) ([]model.ParsingEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx,
		`SELECT id, template_id, event_type, message, created_at
		FROM parsing_events ORDER BY created_at DESC LIMIT $1`,
		limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []model.ParsingEvent
	for rows.Next() {
		var e model.ParsingEvent
		if err := rows.Scan(&e.ID, &e.TemplateID, &e.EventType, &e.Message, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
