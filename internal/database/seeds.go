package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/smsrates/pricefeed/internal/model"
)

// SeedDemo creates a demonstration supplier, connection and parsing template
// for validating mailbox configuration end to end. Idempotent: existing rows
// are reused.
func SeedDemo(ctx context.Context, pool *pgxpool.Pool) error {
	var supplierID int64
	err := pool.QueryRow(ctx,
		`SELECT id FROM suppliers WHERE organization_name = $1`, "Infobip").Scan(&supplierID)
	if errors.Is(err, pgx.ErrNoRows) {
		err = pool.QueryRow(ctx,
			`INSERT INTO suppliers (organization_name, per_delivered) VALUES ($1, FALSE) RETURNING id`,
			"Infobip").Scan(&supplierID)
	}
	if err != nil {
		return fmt.Errorf("seed supplier: %w", err)
	}

	var connectionID int64
	err = pool.QueryRow(ctx,
		`SELECT id FROM supplier_connections WHERE supplier_id = $1 AND username = $2`,
		supplierID, "mstatlc").Scan(&connectionID)
	if errors.Is(err, pgx.ErrNoRows) {
		err = pool.QueryRow(ctx,
			`INSERT INTO supplier_connections (supplier_id, connection_name, smsc_id, username, charge_model)
			VALUES ($1, $2, $3, $4, $5) RETURNING id`,
			supplierID, "Infobip Local Bypass", "Infobip_local", "mstatlc", "Per Submitted").Scan(&connectionID)
	}
	if err != nil {
		return fmt.Errorf("seed connection: %w", err)
	}

	var exists bool
	if err := pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM parsing_templates WHERE name = $1)`,
		"Infobip basic CSV").Scan(&exists); err != nil {
		return fmt.Errorf("check template: %w", err)
	}
	if !exists {
		conditions := model.MatchConditions{
			From:            []string{"offers@infobip.com", "sales@infobip.com"},
			SubjectKeywords: []string{"price", "rate", "offer"},
		}
		mapping := model.FieldMapping{
			Username: []string{"username"},
			MCC:      []string{"mcc"},
			MNC:      []string{"mnc"},
			MCCMNC:   []string{"mccmnc"},
			Price:    []string{"price"},
			Currency: []string{"currency"},
		}
		options := model.TemplateOptions{DefaultCurrency: "EUR"}

		if _, err := pool.Exec(ctx,
			`INSERT INTO parsing_templates (supplier_id, connection_id, name, enabled, conditions, mapping, options)
			VALUES ($1, $2, $3, TRUE, $4, $5, $6)`,
			supplierID, connectionID, "Infobip basic CSV", conditions, mapping, options); err != nil {
			return fmt.Errorf("seed template: %w", err)
		}
	}

	log.Info().Int64("supplier_id", supplierID).Int64("connection_id", connectionID).Msg("demo seed done")
	return nil
}
