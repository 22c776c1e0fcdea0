// Package pipeline links proposal and law exports into one merged table per
// document type: load, prepare, extract keys, link, resolve authors, persist.
// Stages run strictly one after another; any fatal error aborts the run.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/coolbeans/tramita/pkg/ingest"
	"github.com/coolbeans/tramita/pkg/linker"
	"github.com/coolbeans/tramita/pkg/logging"
	"github.com/coolbeans/tramita/pkg/metrics"
	"github.com/coolbeans/tramita/pkg/names"
	"github.com/coolbeans/tramita/pkg/store"
	"github.com/coolbeans/tramita/pkg/types"
)

// LookupSource provides the council-member lookup table.
type LookupSource interface {
	FetchLookup(ctx context.Context, schema string) ([]types.LookupEntry, error)
}

// Sink persists merged rows.
type Sink interface {
	WriteMerged(ctx context.Context, table store.Table, rows []types.Merged, mode store.WriteMode) (int, error)
}

// Pipeline runs the integration for one configuration at a time.
type Pipeline struct {
	extractor linker.KeyExtractor
	lookup    LookupSource
	sink      Sink
	logger    *zap.Logger
	metrics   *metrics.Metrics
	newRunID  func() string
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logging.OrNop(logger)
	}
}

// WithMetrics sets the run metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

// WithRunID overrides run id generation.
func WithRunID(newRunID func() string) Option {
	return func(p *Pipeline) {
		if newRunID != nil {
			p.newRunID = newRunID
		}
	}
}

// New creates a pipeline. lookup may be nil when runs use SkipLookup, and
// sink may be nil when runs use DryRun.
func New(extractor linker.KeyExtractor, lookup LookupSource, sink Sink, opts ...Option) *Pipeline {
	p := &Pipeline{
		extractor: extractor,
		lookup:    lookup,
		sink:      sink,
		logger:    zap.NewNop(),
		newRunID:  uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Run executes every stage for cfg and returns the run report.
func (p *Pipeline) Run(ctx context.Context, cfg Config) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, stageError(StageConfigure, ErrConfiguration, err)
	}
	if p.extractor == nil {
		return nil, stageError(StageConfigure, ErrConfiguration, errMissing("citation extractor"))
	}
	if !cfg.SkipLookup && p.lookup == nil {
		return nil, stageError(StageConfigure, ErrConfiguration, errMissing("lookup source"))
	}
	if !cfg.DryRun && p.sink == nil {
		return nil, stageError(StageConfigure, ErrConfiguration, errMissing("sink"))
	}

	destination := cfg.Destination()
	report := &Report{
		RunID:        p.newRunID(),
		DocumentType: cfg.DocumentType,
		Destination:  destination.String(),
		DryRun:       cfg.DryRun,
	}
	logger := p.logger.With(
		zap.String("run_id", report.RunID),
		zap.String("document_type", cfg.DocumentType.String()),
	)
	logger.Info("Starting integration run",
		zap.Strings("proposal_files", cfg.ProposalFiles),
		zap.Strings("law_files", cfg.LawFiles),
		zap.String("destination", report.Destination))

	// Load.
	started := time.Now()
	proposals, err := ingest.LoadProposals(cfg.ProposalFiles)
	if err != nil {
		return nil, stageError(StageLoad, ErrIngest, err)
	}
	laws, err := ingest.LoadLaws(cfg.LawFiles)
	if err != nil {
		return nil, stageError(StageLoad, ErrIngest, err)
	}
	report.ProposalsLoaded = len(proposals)
	report.LawsLoaded = len(laws)
	p.metrics.AddProposals("loaded", len(proposals))
	p.metrics.AddLaws("loaded", len(laws))
	p.metrics.ObserveStage(StageLoad, time.Since(started))
	logger.Info("Loaded exports", zap.Int("proposals", len(proposals)), zap.Int("laws", len(laws)))

	// Prepare.
	started = time.Now()
	prepared, prepareReport := ingest.Prepare(proposals, ingest.PrepareOptions{
		MinYear:    cfg.MinYear,
		DedupOrder: cfg.DedupOrder,
	})
	report.Prepare = prepareReport
	p.recordPrepare(prepareReport)
	p.metrics.ObserveStage(StagePrepare, time.Since(started))
	if prepareReport.BadYear > 0 {
		logger.Warn("Dropped proposals without a numeric year", zap.Int("count", prepareReport.BadYear))
	}
	logger.Info("Prepared proposals",
		zap.Int("incomplete", prepareReport.Incomplete),
		zap.Int("duplicates", prepareReport.Duplicates),
		zap.Int("before_year", prepareReport.BeforeYear),
		zap.Int("kept", prepareReport.Kept),
		zap.String("dedup_order", string(cfg.DedupOrder)),
		zap.Int("min_year", cfg.MinYear))

	// Extract.
	started = time.Now()
	keyedLaws := linker.AssignKeys(laws, p.extractor, cfg.DocumentType)
	for _, law := range keyedLaws {
		if law.NrProjeto != "" {
			report.KeyedLaws++
		}
	}
	p.metrics.AddLaws("keyed", report.KeyedLaws)
	p.metrics.AddLaws("keyless", len(keyedLaws)-report.KeyedLaws)
	p.metrics.ObserveStage(StageExtract, time.Since(started))
	logger.Info("Extracted proposal keys",
		zap.Int("keyed", report.KeyedLaws),
		zap.Int("keyless", len(keyedLaws)-report.KeyedLaws))

	// Link.
	started = time.Now()
	linked := linker.Link(prepared, keyedLaws)
	report.Link = linked.Report
	p.metrics.AddLinks("matched", linked.Report.Matched)
	p.metrics.AddLinks("unmatched", linked.Report.Unmatched)
	p.metrics.AddLinks("ambiguous", len(linked.Report.Ambiguities))
	p.metrics.ObserveStage(StageLink, time.Since(started))
	for _, ambiguity := range linked.Report.Ambiguities {
		logger.Warn("Several laws cite the same proposal",
			zap.String("key", ambiguity.Key),
			zap.Int("candidates", len(ambiguity.Candidates)),
			zap.String("chosen_lei", ambiguity.Chosen.Lei),
			zap.String("chosen_ano", ambiguity.Chosen.Ano))
	}
	logger.Info("Linked proposals to laws",
		zap.Int("matched", linked.Report.Matched),
		zap.Int("unmatched", linked.Report.Unmatched),
		zap.Int("unused_laws", linked.Report.UnusedLaws))

	// Enrich.
	started = time.Now()
	merged := linked.Merged
	if cfg.SkipLookup {
		logger.Warn("Skipping author lookup; cpfs left empty")
	} else {
		entries, err := p.lookup.FetchLookup(ctx, cfg.Schema)
		if err != nil {
			return nil, stageError(StageEnrich, ErrLookup, err)
		}
		report.LookupEntries = len(entries)
		p.enrich(logger, names.NewResolver(entries), merged, report)
	}
	p.metrics.ObserveStage(StageEnrich, time.Since(started))

	report.Merged = merged

	// Persist.
	if cfg.DryRun {
		logger.Info("Dry run; merged rows not persisted", zap.Int("rows", len(merged)))
		return report, nil
	}
	started = time.Now()
	written, err := p.sink.WriteMerged(ctx, destination, merged, cfg.WriteMode)
	if err != nil {
		return nil, stageError(StagePersist, ErrPersistence, err)
	}
	report.Persisted = written
	p.metrics.AddPersisted(written)
	p.metrics.ObserveStage(StagePersist, time.Since(started))
	logger.Info("Persisted merged rows",
		zap.Int("rows", written),
		zap.String("destination", report.Destination),
		zap.String("mode", string(cfg.WriteMode)))

	return report, nil
}

// enrich fills cpfs on every merged row in place.
func (p *Pipeline) enrich(logger *zap.Logger, resolver *names.Resolver, merged []types.Merged, report *Report) {
	for i := range merged {
		resolution := resolver.ResolveAuthors(merged[i].Autor)
		merged[i].Cpfs = resolution.Cpfs
		report.AuthorsResolved += resolution.Resolved
		report.AuthorsUnresolved += len(resolution.Unresolved)
		for _, name := range resolution.Unresolved {
			logger.Debug("Author not found in lookup table",
				zap.String("projeto", merged[i].Projeto),
				zap.String("autor", name))
		}
	}
	p.metrics.AddAuthors("resolved", report.AuthorsResolved)
	p.metrics.AddAuthors("unresolved", report.AuthorsUnresolved)
	logger.Info("Resolved authors",
		zap.Int("lookup_entries", report.LookupEntries),
		zap.Int("resolved", report.AuthorsResolved),
		zap.Int("unresolved", report.AuthorsUnresolved))
}

func (p *Pipeline) recordPrepare(prepareReport ingest.PrepareReport) {
	p.metrics.AddProposals("incomplete", prepareReport.Incomplete)
	p.metrics.AddProposals("duplicate", prepareReport.Duplicates)
	p.metrics.AddProposals("before_year", prepareReport.BeforeYear)
	p.metrics.AddProposals("bad_year", prepareReport.BadYear)
	p.metrics.AddProposals("kept", prepareReport.Kept)
}
