package domain

// VoiceStatus is the per-category and overall quality-gate outcome.
type VoiceStatus string

const (
	VoicePass     VoiceStatus = "pass"
	VoiceAdvisory VoiceStatus = "advisory"
	VoiceFail     VoiceStatus = "fail"
)

// VoiceCategory names one of the four scored dimensions.
type VoiceCategory string

const (
	CategoryProfessionalism   VoiceCategory = "professionalism"
	CategoryAccessibility     VoiceCategory = "accessibility"
	CategoryActionOrientation VoiceCategory = "action_orientation"
	CategoryConsistency       VoiceCategory = "consistency"
)

// VoiceCategories lists the categories in reporting order.
var VoiceCategories = []VoiceCategory{
	CategoryProfessionalism,
	CategoryAccessibility,
	CategoryActionOrientation,
	CategoryConsistency,
}

// CategoryResult is the score of one brand-voice dimension.
type CategoryResult struct {
	Category        VoiceCategory      `json:"category"`
	Score           float64            `json:"score"`
	Status          VoiceStatus        `json:"status"`
	Recommendations []string           `json:"recommendations"`
	Signals         map[string]float64 `json:"signals,omitempty"`
}

// BrandVoiceResult aggregates the four categories into a weighted overall score.
type BrandVoiceResult struct {
	Categories    []CategoryResult `json:"categories"`
	OverallScore  float64          `json:"overall_score"`
	OverallStatus VoiceStatus      `json:"overall_status"`
}

// Category returns the result for a single dimension.
func (r BrandVoiceResult) Category(c VoiceCategory) (CategoryResult, bool) {
	for _, cat := range r.Categories {
		if cat.Category == c {
			return cat, true
		}
	}
	return CategoryResult{}, false
}

// Failing returns the categories whose individual status is fail.
func (r BrandVoiceResult) Failing() []CategoryResult {
	var out []CategoryResult
	for _, cat := range r.Categories {
		if cat.Status == VoiceFail {
			out = append(out, cat)
		}
	}
	return out
}

// Publishable reports whether the quality gate lets publishing proceed.
func (r BrandVoiceResult) Publishable() bool {
	return r.OverallStatus == VoicePass || r.OverallStatus == VoiceAdvisory
}
