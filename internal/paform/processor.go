package paform

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/supersonicwisd1/mandolin/internal/pdfform"
	"github.com/supersonicwisd1/mandolin/internal/providers"
)

// Processor orchestrates the full pipeline: analyze form structure, OCR
// the referral, extract canonical facts, validate, map, fill. Stages up
// through extraction fail fast; mapping degrades instead of failing, and
// filling reports partial success.
type Processor struct {
	logger   *slog.Logger
	registry *providers.Registry
	open     func(path string) (pdfform.Document, error)
}

// NewProcessor creates a pipeline processor. Providers are resolved from
// the registry at processing time, so config reloads take effect without
// rebuilding the processor.
func NewProcessor(logger *slog.Logger, registry *providers.Registry) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{logger: logger, registry: registry, open: pdfform.Open}
}

// Process runs the pipeline for one request. All failures come back as
// data on the result; this method never panics across the boundary.
func (p *Processor) Process(ctx context.Context, paFormPath, referralPath, outputDir string) *ProcessingResult {
	start := time.Now()
	fail := func(err error) *ProcessingResult {
		p.logger.Error("processing failed", "error", err)
		return &ProcessingResult{
			Success:        false,
			ProcessingTime: time.Since(start).Seconds(),
			ErrorMessage:   err.Error(),
		}
	}

	p.logger.Info("starting prior authorization processing",
		"pa_form", paFormPath,
		"referral", referralPath)

	analyzer := NewAnalyzer(p.logger)
	analyzer.open = p.open
	inventory, err := analyzer.AnalyzeFile(paFormPath)
	if err != nil {
		return fail(err)
	}

	var ocr providers.OCRProvider
	var llm providers.LLMClient
	if p.registry != nil {
		ocr = p.registry.AnyOCR()
		llm = p.registry.AnyLLM()
	}

	referralText, err := NewReferralReader(p.logger, ocr).ExtractText(ctx, referralPath)
	if err != nil {
		return fail(err)
	}

	facts, err := NewFactExtractor(p.logger, llm).Extract(ctx, referralText)
	if err != nil {
		return fail(err)
	}

	validation := Validate(inventory, facts)
	if !validation.Valid {
		p.logger.Warn("validation found missing required fields",
			"missing", validation.MissingRequired)
	}

	mapping := NewFieldMapper(p.logger, llm).Map(ctx, inventory, facts)

	result := &ProcessingResult{
		Success:       true,
		ExtractedData: facts,
		Validation:    validation,
	}

	filler := NewFiller(p.logger)
	filler.open = p.open
	report, err := filler.Fill(inventory, mapping, paFormPath, outputDir)
	switch {
	case errors.Is(err, ErrNoMappableFields):
		// Nothing mapped is a degraded success: facts and validation are
		// still reported, there is just no document to hand back.
		p.logger.Warn("form filling did not produce a file")
	case err != nil:
		return fail(err)
	default:
		result.FilledPDFPath = report.OutputPath
		result.FieldsMapped = report.FieldsMapped
		result.FieldsWritten = report.FieldsWritten
	}

	result.ProcessingTime = time.Since(start).Seconds()
	p.logger.Info("processing complete",
		"success", result.Success,
		"output", result.FilledPDFPath,
		"elapsed_seconds", result.ProcessingTime)
	return result
}
