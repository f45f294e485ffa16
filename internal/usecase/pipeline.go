package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/platewise/backend/config"
	"github.com/platewise/backend/internal/domain"
)

// PipelineStage names the orchestrator states, in execution order. Every
// request terminates in StageDone; failures detour through StageNormalizing
// instead of surfacing.
type PipelineStage string

const (
	StageIdle                 PipelineStage = "idle"
	StageExtracting           PipelineStage = "extracting"
	StageCheckingAvailability PipelineStage = "checking_availability"
	StageInvoking             PipelineStage = "invoking"
	StageRepairing            PipelineStage = "repairing"
	StageValidating           PipelineStage = "validating"
	StageNormalizing          PipelineStage = "normalizing"
	StageClassifying          PipelineStage = "classifying"
	StageDone                 PipelineStage = "done"
)

// PipelineConfig is the read-only per-process policy shared by all requests.
type PipelineConfig struct {
	PreferredModel  string
	FallbackModels  []string
	ForceMode       bool
	InvokeTimeout   time.Duration
	RepairScanLimit int
	Heuristics      config.HeuristicsConfig
}

// PipelineInput is everything one analysis request carries in.
type PipelineInput struct {
	Source             ImageSource
	HealthGoals        []string
	DietaryPreferences []string
	RequestID          string
	Label              *LabelSignal // optional auxiliary label-detection signal
}

// PipelineResult is what the caller gets back. Analysis is always
// structurally complete; Success is false only for handled failures
// (absent image, unavailable model, failed invocation, unreadable output).
type PipelineResult struct {
	RequestID       string
	Success         bool
	Analysis        domain.NormalizedAnalysis
	Selection       domain.ModelSelection
	ImageDataURL    string
	Errors          []string
	ProcessingSteps []string
}

func (r *PipelineResult) step(stage PipelineStage) {
	r.ProcessingSteps = append(r.ProcessingSteps, string(stage))
}

// Pipeline composes the stages for one request at a time. Stateless across
// requests apart from configuration.
type Pipeline struct {
	checker    *AvailabilityChecker
	invoker    *AnalysisInvoker
	normalizer *Normalizer
	classifier *Classifier
	cfg        PipelineConfig
}

// NewPipeline wires the stages around one model provider.
func NewPipeline(provider domain.ModelProvider, cfg PipelineConfig) *Pipeline {
	return &Pipeline{
		checker:    NewAvailabilityChecker(provider),
		invoker:    NewAnalysisInvoker(provider, cfg.InvokeTimeout),
		normalizer: NewNormalizer(cfg.Heuristics),
		classifier: NewClassifier(cfg.Heuristics),
		cfg:        cfg,
	}
}

// Analyze runs the full pipeline for one request. It never returns an error:
// every failure resolves to a complete fallback analysis with the failure
// recorded in Errors and ReasoningLogs.
func (p *Pipeline) Analyze(ctx context.Context, input PipelineInput) *PipelineResult {
	result := &PipelineResult{RequestID: input.RequestID}
	result.step(StageIdle)

	// Extract
	result.step(StageExtracting)
	imageDataURL, ok := ExtractImage(input.Source)
	if !ok {
		return p.finishDegraded(result, "No image uploaded",
			"no usable image payload found in the request")
	}
	result.ImageDataURL = imageDataURL

	request := &domain.AnalysisRequest{
		ImageDataURL:       imageDataURL,
		HealthGoals:        input.HealthGoals,
		DietaryPreferences: input.DietaryPreferences,
		RequestID:          input.RequestID,
	}

	// Check availability, resolve the model once
	result.step(StageCheckingAvailability)
	avail, checkErr := p.checker.Check(ctx, p.cfg.PreferredModel, p.cfg.FallbackModels)
	selection := BuildSelection(p.cfg.PreferredModel, p.cfg.ForceMode, avail, checkErr)
	result.Selection = selection

	if selection.ResolvedModel == "" {
		reason := selection.UnavailableReason
		if p.cfg.ForceMode && checkErr == nil {
			return p.finishDegraded(result,
				fmt.Sprintf("Preferred model %q is unavailable and substitution is disabled", p.cfg.PreferredModel),
				fmt.Sprintf("force mode: %s; refusing to substitute another model", reason))
		}
		return p.finishDegraded(result, "Analysis model is unavailable", reason)
	}

	// Invoke
	result.step(StageInvoking)
	raw, err := p.invoker.Invoke(ctx, selection, request)
	if err != nil {
		return p.finishDegraded(result, "Meal analysis failed", err.Error())
	}

	// Repair
	result.step(StageRepairing)
	repaired, outcome := RepairResponse(raw.Text, p.cfg.RepairScanLimit)
	if outcome == RepairParsedExtracted {
		log.Printf("[PIPELINE] request %s: analyzer output salvaged via brace extraction", input.RequestID)
	}
	if outcome == RepairSynthesized {
		log.Printf("[PIPELINE] request %s: analyzer output unreadable, minimal object synthesized", input.RequestID)
		result.Errors = append(result.Errors, "Analyzer returned an unreadable response")
	}

	// Validate
	result.step(StageValidating)
	report := ValidateResult(repaired)
	if len(report.MissingRecommended) > 0 {
		log.Printf("[PIPELINE] request %s: missing recommended fields: %s",
			input.RequestID, strings.Join(report.MissingRecommended, ", "))
	}

	// Normalize
	result.step(StageNormalizing)
	analysis, meta := p.normalizer.Normalize(repaired, report)

	// Classify
	result.step(StageClassifying)
	analysis = p.classifier.Classify(analysis, meta, input.Label)

	if raw.UsedFallbackModel {
		analysis.ReasoningLogs = append(analysis.ReasoningLogs,
			fmt.Sprintf("analysis produced by fallback model %q", raw.Model))
	}

	result.Analysis = analysis
	result.Success = len(result.Errors) == 0
	result.step(StageDone)
	return result
}

// finishDegraded short-circuits to normalization of empty input, producing
// the canonical fallback record with the failure on its diagnostic trail.
func (p *Pipeline) finishDegraded(result *PipelineResult, errMsg string, logs ...string) *PipelineResult {
	result.step(StageNormalizing)
	analysis, meta := p.normalizer.Normalize(nil, FieldReport{IsFallbackResult: true})

	result.step(StageClassifying)
	analysis = p.classifier.Classify(analysis, meta, nil)
	analysis.ReasoningLogs = append(analysis.ReasoningLogs, logs...)

	result.Errors = append(result.Errors, errMsg)
	result.Analysis = analysis
	result.Success = false
	result.step(StageDone)
	return result
}
