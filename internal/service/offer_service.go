package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/smsrates/pricefeed/internal/model"
	"github.com/smsrates/pricefeed/internal/parser"
	"github.com/smsrates/pricefeed/internal/repository"
)

// Outcome is the result of applying one incoming price record.
type Outcome string

const (
	OutcomeInserted  Outcome = "inserted"
	OutcomeUpdated   Outcome = "updated"
	OutcomeIdentical Outcome = "identical"
)

const ingestActor = "ingest"

// OfferService is the upsert engine: for each incoming record it decides
// between inserted, updated and identical, writing a history snapshot only
// when an existing offer changes. The compare-then-write sequence runs in a
// single transaction with the current row locked.
type OfferService struct {
	offers *repository.OfferRepository
}

func NewOfferService(offers *repository.OfferRepository) *OfferService {
	return &OfferService{offers: offers}
}

func (s *OfferService) Apply(ctx context.Context, supplierID, connectionID, networkID int64, rec parser.Record) (Outcome, error) {
	tx, err := s.offers.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("begin upsert: %w", err)
	}
	defer tx.Rollback(ctx)

	cur, err := s.offers.GetForUpdate(ctx, tx, supplierID, connectionID, networkID)
	if err != nil {
		return "", fmt.Errorf("lock current offer: %w", err)
	}

	now := time.Now().UTC()
	effective := effectiveDate(rec.Effective, now)

	if cur != nil && cur.Price.Equal(rec.Price) && strings.EqualFold(cur.Currency, rec.Currency) {
		// Comparison is case-insensitive; the stored value is already the
		// mapper's upper-cased canonical form.
		return OutcomeIdentical, tx.Commit(ctx)
	}

	if cur != nil {
		hist := &model.OfferHistory{
			PreviousID:    cur.ID,
			SupplierID:    cur.SupplierID,
			ConnectionID:  cur.ConnectionID,
			NetworkID:     cur.NetworkID,
			Price:         cur.Price,
			Currency:      cur.Currency,
			EffectiveDate: cur.EffectiveDate,
			RecordedAt:    now,
		}
		if err := s.offers.InsertHistory(ctx, tx, hist); err != nil {
			return "", fmt.Errorf("write history: %w", err)
		}

		cur.Price = rec.Price
		cur.Currency = rec.Currency
		cur.EffectiveDate = effective
		cur.UpdatedBy = ingestActor
		cur.UpdatedAt = now
		if err := s.offers.UpdateCurrent(ctx, tx, cur); err != nil {
			return "", fmt.Errorf("update current offer: %w", err)
		}
		return OutcomeUpdated, tx.Commit(ctx)
	}

	offer := &model.CurrentOffer{
		SupplierID:    supplierID,
		ConnectionID:  connectionID,
		NetworkID:     networkID,
		Price:         rec.Price,
		Currency:      rec.Currency,
		EffectiveDate: effective,
		UpdatedBy:     ingestActor,
		UpdatedAt:     now,
	}
	if err := s.offers.InsertCurrent(ctx, tx, offer); err != nil {
		return "", fmt.Errorf("insert current offer: %w", err)
	}
	return OutcomeInserted, tx.Commit(ctx)
}

// effectiveDate prefers an effective value the sheet itself carried, falling
// back to the ingestion timestamp.
func effectiveDate(raw string, fallback time.Time) time.Time {
	if raw == "" {
		return fallback
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC()
		}
	}
	return fallback
}
