package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/smsrates/pricefeed/internal/mailbox"
	"github.com/smsrates/pricefeed/internal/match"
	"github.com/smsrates/pricefeed/internal/model"
	"github.com/smsrates/pricefeed/internal/parser"
)

// TemplateSource yields the templates participating in a cycle.
type TemplateSource interface {
	ListEnabled(ctx context.Context) ([]model.ParsingTemplate, error)
}

// MessageFetcher retrieves a bounded batch of recent mailbox messages.
type MessageFetcher interface {
	Fetch(ctx context.Context, limit int) ([]mailbox.Message, error)
}

// NetworkResolver resolves an mccmnc code to a network id.
type NetworkResolver interface {
	Resolve(ctx context.Context, mccmnc string) (int64, error)
}

// OfferWriter applies one normalized record for a template's triple.
type OfferWriter interface {
	Apply(ctx context.Context, supplierID, connectionID, networkID int64, rec parser.Record) (Outcome, error)
}

// EventRecorder persists diagnostic parsing events. May be nil.
type EventRecorder interface {
	Insert(ctx context.Context, templateID *int64, eventType, message string) error
}

// CycleStats aggregates one ingestion cycle. Total counts rows that survived
// mapping; discarded rows are expected noise and appear in no counter.
type CycleStats struct {
	Total     int  `json:"total"`
	Inserted  int  `json:"inserted"`
	Updated   int  `json:"updated"`
	Identical int  `json:"identical"`
	Errors    int  `json:"errors"`
	DryRun    bool `json:"dry_run"`
}

// IngestService sequences one full cycle: fetch, match, parse, map, resolve,
// upsert. Failures on an individual row are counted and never abort the
// remaining rows or messages.
type IngestService struct {
	templates TemplateSource
	fetcher   MessageFetcher
	resolver  NetworkResolver
	offers    OfferWriter
	events    EventRecorder
}

func NewIngestService(templates TemplateSource, fetcher MessageFetcher, resolver NetworkResolver, offers OfferWriter, events EventRecorder) *IngestService {
	return &IngestService{
		templates: templates,
		fetcher:   fetcher,
		resolver:  resolver,
		offers:    offers,
		events:    events,
	}
}

// RunCycle executes one ingestion cycle. In dry-run mode rows are parsed and
// counted but nothing touches the database, parsing events included.
func (s *IngestService) RunCycle(ctx context.Context, limit int, dryRun bool) (CycleStats, error) {
	stats := CycleStats{DryRun: dryRun}

	tpls, err := s.templates.ListEnabled(ctx)
	if err != nil {
		return stats, fmt.Errorf("load templates: %w", err)
	}

	msgs, err := s.fetcher.Fetch(ctx, limit)
	if err != nil {
		return stats, fmt.Errorf("fetch messages: %w", err)
	}

	for _, msg := range msgs {
		for _, tpl := range tpls {
			if !match.Matches(msg, tpl.Conditions) {
				continue
			}
			if !dryRun {
				s.recordEvent(ctx, tpl.ID, "matched",
					fmt.Sprintf("template %q matched message %q", tpl.Name, msg.Subject))
			}
			s.processMessage(ctx, msg, tpl, dryRun, &stats)
		}
	}

	log.Info().
		Int("total", stats.Total).
		Int("inserted", stats.Inserted).
		Int("updated", stats.Updated).
		Int("identical", stats.Identical).
		Int("errors", stats.Errors).
		Bool("dry_run", dryRun).
		Msg("ingestion cycle complete")
	if !dryRun {
		s.recordEvent(ctx, 0, "cycle",
			fmt.Sprintf("total=%d inserted=%d updated=%d identical=%d errors=%d",
				stats.Total, stats.Inserted, stats.Updated, stats.Identical, stats.Errors))
	}

	return stats, nil
}

func (s *IngestService) processMessage(ctx context.Context, msg mailbox.Message, tpl model.ParsingTemplate, dryRun bool, stats *CycleStats) {
	for _, att := range msg.Attachments {
		rows, err := parser.ParseFile(att.Data, att.Filename)
		if err != nil {
			// Unsupported or corrupt attachments are skipped, not counted.
			log.Warn().Err(err).Str("filename", att.Filename).Msg("skipping attachment")
			continue
		}

		for _, row := range rows {
			rec, ok := parser.MapRow(row, tpl.Mapping, tpl.Options)
			if !ok {
				continue
			}
			stats.Total++
			if dryRun {
				continue
			}
			if err := s.applyRecord(ctx, tpl, rec, stats); err != nil {
				stats.Errors++
				log.Error().Err(err).
					Int64("template_id", tpl.ID).
					Str("mccmnc", rec.MCCMNC).
					Msg("row processing failed")
			}
		}
	}
}

func (s *IngestService) applyRecord(ctx context.Context, tpl model.ParsingTemplate, rec parser.Record, stats *CycleStats) error {
	networkID, err := s.resolver.Resolve(ctx, rec.MCCMNC)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", rec.MCCMNC, err)
	}

	outcome, err := s.offers.Apply(ctx, tpl.SupplierID, tpl.ConnectionID, networkID, rec)
	if err != nil {
		return fmt.Errorf("apply offer: %w", err)
	}

	switch outcome {
	case OutcomeInserted:
		stats.Inserted++
	case OutcomeUpdated:
		stats.Updated++
	case OutcomeIdentical:
		stats.Identical++
	}
	return nil
}

func (s *IngestService) recordEvent(ctx context.Context, templateID int64, eventType, message string) {
	if s.events == nil {
		return
	}
	var id *int64
	if templateID != 0 {
		id = &templateID
	}
	if err := s.events.Insert(ctx, id, eventType, message); err != nil {
		log.Warn().Err(err).Str("event_type", eventType).Msg("failed to record parsing event")
	}
}
