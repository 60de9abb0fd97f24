package brandvoice

import (
	"fmt"
	"math"

	"ContentActivation/internal/domain"
)

const (
	weightTolerance = 1e-9
	scorePrecision  = 1e9
)

// settle drops float noise below 1e-9 so that weighted sums land exactly on their cut-offs.
func settle(score float64) float64 {
	return math.Round(score*scorePrecision) / scorePrecision
}

// Weights are the per-category contributions to the overall score; they must sum to 1.
type Weights struct {
	Professionalism   float64 `yaml:"professionalism"`
	Accessibility     float64 `yaml:"accessibility"`
	ActionOrientation float64 `yaml:"actionOrientation"`
	Consistency       float64 `yaml:"consistency"`
}

// DefaultWeights are the fixed production weights.
func DefaultWeights() Weights {
	return Weights{
		Professionalism:   0.30,
		Accessibility:     0.30,
		ActionOrientation: 0.25,
		Consistency:       0.15,
	}
}

// Of returns the weight of a category.
func (w Weights) Of(c domain.VoiceCategory) float64 {
	switch c {
	case domain.CategoryProfessionalism:
		return w.Professionalism
	case domain.CategoryAccessibility:
		return w.Accessibility
	case domain.CategoryActionOrientation:
		return w.ActionOrientation
	case domain.CategoryConsistency:
		return w.Consistency
	default:
		return 0
	}
}

func (w Weights) validate() error {
	sum := w.Professionalism + w.Accessibility + w.ActionOrientation + w.Consistency
	for _, v := range []float64{w.Professionalism, w.Accessibility, w.ActionOrientation, w.Consistency} {
		if v < 0 {
			return fmt.Errorf("brand voice weights must not be negative")
		}
	}
	if math.Abs(sum-1) > weightTolerance {
		return fmt.Errorf("brand voice weights must sum to 1.0, got %.4f", sum)
	}
	return nil
}

// Threshold is the pass/advisory cut-off pair of a category.
type Threshold struct {
	Pass     float64 `yaml:"pass"`
	Advisory float64 `yaml:"advisory"`
}

// Classify maps a score onto a status.
func (t Threshold) Classify(score float64) domain.VoiceStatus {
	score = settle(score)
	switch {
	case score >= t.Pass:
		return domain.VoicePass
	case score >= t.Advisory:
		return domain.VoiceAdvisory
	default:
		return domain.VoiceFail
	}
}

// Thresholds configures category cut-offs and the overall gate.
type Thresholds struct {
	Standard Threshold `yaml:"standard"`
	// Action orientation is scored against a lower bar: action language is sparse in long-form copy.
	Action Threshold `yaml:"action"`
	// OverallPass is the weighted score at or above which the overall status can be pass.
	OverallPass float64 `yaml:"overallPass"`
	// Block is the weighted score below which the overall status is always fail.
	Block float64 `yaml:"block"`
}

// DefaultThresholds are the production cut-offs.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Standard:    Threshold{Pass: 0.75, Advisory: 0.60},
		Action:      Threshold{Pass: 0.60, Advisory: 0.45},
		OverallPass: 0.75,
		Block:       0.40,
	}
}

// For returns the threshold pair used by a category.
func (t Thresholds) For(c domain.VoiceCategory) Threshold {
	if c == domain.CategoryActionOrientation {
		return t.Action
	}
	return t.Standard
}

func (t Thresholds) validate() error {
	for _, th := range []Threshold{t.Standard, t.Action} {
		if th.Advisory > th.Pass {
			return fmt.Errorf("advisory threshold %.2f exceeds pass threshold %.2f", th.Advisory, th.Pass)
		}
	}
	if t.Block > t.OverallPass {
		return fmt.Errorf("block threshold %.2f exceeds overall pass threshold %.2f", t.Block, t.OverallPass)
	}
	return nil
}

// Scorecard combines category results into the weighted overall verdict.
type Scorecard struct {
	weights    Weights
	thresholds Thresholds
}

// NewScorecard validates the weights and thresholds.
func NewScorecard(weights Weights, thresholds Thresholds) (*Scorecard, error) {
	if err := weights.validate(); err != nil {
		return nil, err
	}
	if err := thresholds.validate(); err != nil {
		return nil, err
	}
	return &Scorecard{weights: weights, thresholds: thresholds}, nil
}

// Classify returns the status of a single category score.
func (s *Scorecard) Classify(c domain.VoiceCategory, score float64) domain.VoiceStatus {
	return s.thresholds.For(c).Classify(score)
}

// Combine computes the weighted overall score and status. Category statuses are kept as they are,
// so a failing category may sit inside a passing overall result.
func (s *Scorecard) Combine(categories []domain.CategoryResult) domain.BrandVoiceResult {
	var (
		overall float64
		failing int
	)
	for _, cat := range categories {
		overall += clamp(cat.Score) * s.weights.Of(cat.Category)
		if cat.Status == domain.VoiceFail {
			failing++
		}
	}
	overall = settle(clamp(overall))

	status := domain.VoiceAdvisory
	switch {
	case overall < s.thresholds.Block:
		status = domain.VoiceFail
	case len(categories) > 0 && failing == len(categories):
		status = domain.VoiceFail
	case overall >= s.thresholds.OverallPass && failing <= 1:
		status = domain.VoicePass
	}

	return domain.BrandVoiceResult{
		Categories:    categories,
		OverallScore:  overall,
		OverallStatus: status,
	}
}

// FromScores builds a result directly from category scores, without recommendations.
func (s *Scorecard) FromScores(scores map[domain.VoiceCategory]float64) domain.BrandVoiceResult {
	categories := make([]domain.CategoryResult, 0, len(domain.VoiceCategories))
	for _, c := range domain.VoiceCategories {
		score := clamp(scores[c])
		categories = append(categories, domain.CategoryResult{
			Category:        c,
			Score:           score,
			Status:          s.Classify(c, score),
			Recommendations: []string{},
		})
	}
	return s.Combine(categories)
}
