package usecase

import (
	"fmt"

	"github.com/platewise/backend/config"
	"github.com/platewise/backend/internal/domain"
)

// LabelSignal is an auxiliary packaging/label detection result a caller may
// supply alongside the photo. A confident label read rescues coverage-poor
// analyses from the flat fallback score.
type LabelSignal struct {
	Label      string
	Confidence float64 // 0-1
}

// Classifier derives the fallback and lowConfidence flags from a normalized
// record when the upstream result did not assert them itself.
type Classifier struct {
	heuristics config.HeuristicsConfig
}

// NewClassifier creates a classifier, filling unset heuristic knobs with the
// production defaults.
func NewClassifier(h config.HeuristicsConfig) *Classifier {
	if h.LabelConfidenceFloor == 0 {
		h.LabelConfidenceFloor = 0.65
	}
	if h.ScoreMax == 0 {
		h.ScoreMin = 3
		h.ScoreMax = 8
	}
	if h.LowConfidenceThreshold == 0 {
		h.LowConfidenceThreshold = 0.4
	}
	if h.FallbackGoalScore == 0 {
		h.FallbackGoalScore = 3
	}
	return &Classifier{heuristics: h}
}

// Classify returns a copy of the record with derived trust flags. Flags
// already asserted upstream are left alone.
func (c *Classifier) Classify(analysis domain.NormalizedAnalysis, meta NormalizeMeta, label *LabelSignal) domain.NormalizedAnalysis {
	if analysis.Fallback || analysis.LowConfidence {
		return analysis
	}

	coverageGap := len(analysis.Nutrients) == 0 ||
		meta.SynthesizedDescription ||
		len(analysis.DetailedIngredients) == 0

	if coverageGap {
		if label != nil && label.Confidence >= c.heuristics.LabelConfidenceFloor {
			// A confident label read is real signal: keep the result usable
			// but grade it on the label-confidence ramp.
			analysis.GoalScore.Overall = c.labelScore(label.Confidence)
			analysis.LowConfidence = true
			analysis.ReasoningLogs = append(analysis.ReasoningLogs,
				fmt.Sprintf("coverage gaps offset by label detection %q (confidence %.2f)", label.Label, label.Confidence))
			return analysis
		}

		analysis.Fallback = true
		analysis.GoalScore.Overall = c.heuristics.FallbackGoalScore
		analysis.ReasoningLogs = append(analysis.ReasoningLogs,
			"coverage heuristics flagged fallback: missing nutrients, description, or ingredients")
		return analysis
	}

	if analysis.Confidence < c.heuristics.LowConfidenceThreshold {
		analysis.LowConfidence = true
		analysis.ReasoningLogs = append(analysis.ReasoningLogs,
			fmt.Sprintf("reported confidence %.2f below threshold %.2f", analysis.Confidence, c.heuristics.LowConfidenceThreshold))
	}

	return analysis
}

// labelScore maps label confidence on [floor, 1] linearly onto
// [scoreMin, scoreMax], clamped.
func (c *Classifier) labelScore(labelConfidence float64) float64 {
	floor := c.heuristics.LabelConfidenceFloor
	min := c.heuristics.ScoreMin
	max := c.heuristics.ScoreMax
	score := min + (labelConfidence-floor)*(max-min)/(1-floor)
	return clamp(score, min, max)
}
