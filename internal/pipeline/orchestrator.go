// Package pipeline drives the end-to-end processing of an uploaded genome
// export: parse, annotate, classify, persist, and publish run progress for
// status polling.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/lucianareynaud/biogpt/internal/classify"
	"github.com/lucianareynaud/biogpt/internal/domain"
	"github.com/lucianareynaud/biogpt/internal/ingest"
)

// DefaultBatchSize is the number of variants classified between progress
// updates.
const DefaultBatchSize = 100

// Progress milestones for the fixed stages that precede per-batch updates.
const (
	progressParsing   = 10.0
	progressParsed    = 20.0
	progressClinVar   = 30.0
	progressGnomad    = 35.0
	progressClassify  = 40.0
	progressBatchSpan = 50.0
	progressBatchCap  = 90.0
	progressCompleted = 100.0
)

// Orchestrator owns the lifecycle of processing runs. It is the only
// writer of run state; readers poll snapshots through the RunStore.
type Orchestrator struct {
	log         *logrus.Logger
	parser      *ingest.Parser
	classifier  *classify.Classifier
	annotations domain.AnnotationStore
	results     domain.ResultStore
	runs        domain.RunStore

	batchSize int
	language  classify.Language
}

// Config carries the orchestrator's collaborators and tuning knobs.
// BatchSize defaults to DefaultBatchSize and Language to Portuguese when
// left zero.
type Config struct {
	Parser      *ingest.Parser
	Classifier  *classify.Classifier
	Annotations domain.AnnotationStore
	Results     domain.ResultStore
	Runs        domain.RunStore
	BatchSize   int
	Language    classify.Language
}

func NewOrchestrator(log *logrus.Logger, cfg Config) *Orchestrator {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	language := cfg.Language
	if language == "" {
		language = classify.LanguagePTBR
	}
	return &Orchestrator{
		log:         log,
		parser:      cfg.Parser,
		classifier:  cfg.Classifier,
		annotations: cfg.Annotations,
		results:     cfg.Results,
		runs:        cfg.Runs,
		batchSize:   batchSize,
		language:    language,
	}
}

// StartRun registers a pending run for an accepted upload. Processing is
// started separately so the upload handler can return immediately.
func (o *Orchestrator) StartRun(ctx context.Context, filename, filePath string, fileSize int64) (*domain.ProcessingRun, error) {
	run := &domain.ProcessingRun{
		ID:        uuid.New().String(),
		Filename:  filename,
		FilePath:  filePath,
		FileSize:  fileSize,
		Status:    domain.StatusPending,
		Progress:  0,
		Message:   "Upload received. Queued for processing.",
		Errors:    []string{},
		CreatedAt: time.Now().UTC(),
	}
	if err := o.runs.Put(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to register run: %w", err)
	}

	o.log.WithFields(logrus.Fields{
		"run_id":    run.ID,
		"filename":  filename,
		"file_size": fileSize,
	}).Info("Processing run registered")

	return run, nil
}

// Run retrieves a snapshot of a processing run.
func (o *Orchestrator) Run(ctx context.Context, runID string) (*domain.ProcessingRun, error) {
	return o.runs.Get(ctx, runID)
}

// Results retrieves the persisted variant results of a run.
func (o *Orchestrator) Results(ctx context.Context, runID string) ([]domain.VariantResult, error) {
	if _, err := o.runs.Get(ctx, runID); err != nil {
		return nil, err
	}
	return o.results.ResultsByRun(ctx, runID)
}

// Process walks a registered run through parsing, annotation lookup,
// classification and persistence. Individual variant failures are recorded
// on the run and skipped; only file-level failures abort the run.
func (o *Orchestrator) Process(ctx context.Context, runID string) {
	run, err := o.runs.Get(ctx, runID)
	if err != nil {
		o.log.WithError(err).WithField("run_id", runID).Error("Cannot process unknown run")
		return
	}

	start := time.Now()
	o.log.WithField("run_id", runID).Info("Starting genome file processing")

	run.Status = domain.StatusProcessing
	o.publish(ctx, run, progressParsing, "Parsing genome file...")

	variants, err := o.parser.ParseFile(run.FilePath)
	if err != nil {
		o.fail(ctx, run, fmt.Sprintf("Failed to parse genome file: %v", err), err)
		return
	}
	standardized := o.parser.ConvertToStandard(variants)

	total := len(standardized)
	run.TotalVariants = total
	o.publish(ctx, run, progressParsed, fmt.Sprintf("Found %d variants. Starting analysis...", total))

	rsids := make([]string, len(standardized))
	for i, v := range standardized {
		rsids[i] = v.RSID
	}

	o.publish(ctx, run, progressClinVar, "Looking up ClinVar annotations...")
	clinvarData, err := o.annotations.ClinVarBatch(ctx, rsids)
	if err != nil {
		o.warn(ctx, run, "ClinVar", err)
		clinvarData = map[string]domain.ClinVarRecord{}
	}

	o.publish(ctx, run, progressGnomad, "Looking up gnomAD frequencies...")
	gnomadData, err := o.annotations.GnomadBatch(ctx, rsids)
	if err != nil {
		o.warn(ctx, run, "gnomAD", err)
		gnomadData = map[string]domain.GnomadRecord{}
	}

	o.publish(ctx, run, progressClassify, "Classifying variants...")

	tally := &domain.ClassificationTally{}
	processed := 0

	for batchStart := 0; batchStart < total; batchStart += o.batchSize {
		batchEnd := batchStart + o.batchSize
		if batchEnd > total {
			batchEnd = total
		}

		for _, variant := range standardized[batchStart:batchEnd] {
			if err := o.processVariant(ctx, run.ID, variant, clinvarData, gnomadData, tally); err != nil {
				o.log.WithError(err).WithFields(logrus.Fields{
					"run_id": run.ID,
					"rsid":   variant.RSID,
				}).Warn("Error processing variant")
				run.Errors = append(run.Errors, fmt.Sprintf("Variant %s: %v", variant.RSID, err))
				continue
			}
			processed++
		}

		run.ProcessedVariants = processed
		progress := progressClassify + float64(processed)/float64(total)*progressBatchSpan
		if progress > progressBatchCap {
			progress = progressBatchCap
		}
		o.publish(ctx, run, progress, fmt.Sprintf("Processed %d/%d variants...", processed, total))
	}

	run.Status = domain.StatusCompleted
	run.Summary = tally
	now := time.Now().UTC()
	run.CompletedAt = &now
	o.publish(ctx, run, progressCompleted, fmt.Sprintf("Processing completed. Analyzed %d variants.", processed))

	o.log.WithFields(logrus.Fields{
		"run_id":          run.ID,
		"total_variants":  total,
		"processed":       processed,
		"errors":          len(run.Errors),
		"processing_time": time.Since(start),
	}).Info("Genome file processing completed")
}

// processVariant classifies and persists a single variant.
func (o *Orchestrator) processVariant(
	ctx context.Context,
	runID string,
	variant domain.StandardizedVariant,
	clinvarData map[string]domain.ClinVarRecord,
	gnomadData map[string]domain.GnomadRecord,
	tally *domain.ClassificationTally,
) error {
	var clinvar *domain.ClinVarRecord
	if record, ok := clinvarData[variant.RSID]; ok {
		clinvar = &record
	}
	var gnomad *domain.GnomadRecord
	if record, ok := gnomadData[variant.RSID]; ok {
		gnomad = &record
	}

	outcome := o.classifier.Classify(variant, clinvar, gnomad)
	ledger := classify.GatherEvidence(variant, clinvar, gnomad)
	confidence := classify.Score(ledger)
	interpretation := classify.Interpret(outcome.Classification, ledger, variant, o.language)

	result := &domain.VariantResult{
		ID:             uuid.New().String(),
		RunID:          runID,
		Variant:        variant,
		Classification: outcome.Classification,
		Faulted:        outcome.Faulted,
		FaultReason:    outcome.FaultReason,
		Ledger:         ledger,
		Confidence:     confidence,
		Interpretation: interpretation,
		ClinVar:        clinvar,
		Gnomad:         gnomad,
		CreatedAt:      time.Now().UTC(),
	}

	if err := o.results.SaveResult(ctx, result); err != nil {
		return &domain.VariantProcessingError{RSID: variant.RSID, Err: err}
	}

	tally.Add(outcome.Classification)
	return nil
}

// publish updates the run's progress and message and stores a snapshot.
// Store failures are logged but never abort processing.
func (o *Orchestrator) publish(ctx context.Context, run *domain.ProcessingRun, progress float64, message string) {
	run.Progress = progress
	run.Message = message
	if err := o.runs.Put(ctx, run); err != nil {
		o.log.WithError(err).WithField("run_id", run.ID).Warn("Failed to publish run progress")
	}
}

// warn records a run-level annotation lookup failure without aborting.
func (o *Orchestrator) warn(ctx context.Context, run *domain.ProcessingRun, source string, err error) {
	lookupErr := &domain.AnnotationLookupError{Source: source, Err: err}
	o.log.WithError(err).WithFields(logrus.Fields{
		"run_id": run.ID,
		"source": source,
	}).Warn("Annotation batch lookup failed, continuing without annotations")
	run.Errors = append(run.Errors, lookupErr.Error())
	if putErr := o.runs.Put(ctx, run); putErr != nil {
		o.log.WithError(putErr).WithField("run_id", run.ID).Warn("Failed to publish run warning")
	}
}

// fail marks a run as failed with a terminal message.
func (o *Orchestrator) fail(ctx context.Context, run *domain.ProcessingRun, message string, cause error) {
	o.log.WithError(cause).WithField("run_id", run.ID).Error("Genome file processing failed")
	run.Status = domain.StatusFailed
	run.Message = message
	run.Errors = append(run.Errors, cause.Error())
	now := time.Now().UTC()
	run.CompletedAt = &now
	if err := o.runs.Put(ctx, run); err != nil {
		o.log.WithError(err).WithField("run_id", run.ID).Warn("Failed to publish run failure")
	}
}
