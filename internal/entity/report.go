package entity

// Severity is the assessed impact of a single damage finding.
type Severity string

const (
	SeverityMinor    Severity = "minor"
	SeverityModerate Severity = "moderate"
	SeverityMajor    Severity = "major"
)

// Valid reports whether s is one of the known severity levels.
func (s Severity) Valid() bool {
	switch s {
	case SeverityMinor, SeverityModerate, SeverityMajor:
		return true
	}
	return false
}

// NormalizeSeverity maps free-form model output onto a known level.
// Anything unrecognized becomes minor so a sloppy reply never inflates
// the assessment.
func NormalizeSeverity(raw string) Severity {
	switch Severity(raw) {
	case SeverityMinor, SeverityModerate, SeverityMajor:
		return Severity(raw)
	case "severe", "critical", "high":
		return SeverityMajor
	case "medium":
		return SeverityModerate
	}
	return SeverityMinor
}

// BoundingBox locates damage inside an image as percentages of its size,
// so the same box works at any resolution.
type BoundingBox struct {
	XMinPct float64 `json:"x_min_pct"`
	YMinPct float64 `json:"y_min_pct"`
	XMaxPct float64 `json:"x_max_pct"`
	YMaxPct float64 `json:"y_max_pct"`
}

// Valid reports whether the box is non-degenerate and inside the unit square.
func (b BoundingBox) Valid() bool {
	return b.XMinPct >= 0 && b.XMinPct < b.XMaxPct && b.XMaxPct <= 1 &&
		b.YMinPct >= 0 && b.YMinPct < b.YMaxPct && b.YMaxPct <= 1
}

// DamageItem is one newly detected damage instance.
type DamageItem struct {
	CarPart           string   `json:"car_part"`
	DamageType        string   `json:"damage_type"`
	Severity          Severity `json:"severity"`
	RecommendedAction string   `json:"recommended_action"`
	EstimatedCostUSD  float64  `json:"estimated_cost_usd"`
	Description       string   `json:"description"`

	// ImageIndex is the 1-based index of the AFTER image that shows this
	// damage most clearly. Zero means the model did not localize it.
	ImageIndex  int          `json:"image_index,omitempty"`
	BoundingBox *BoundingBox `json:"bounding_box,omitempty"`
}

// Localized reports whether the item carries a usable location, i.e. it can
// be drawn onto an AFTER image.
func (d DamageItem) Localized() bool {
	return d.ImageIndex >= 1 && d.BoundingBox != nil && d.BoundingBox.Valid()
}

// DamageReport is the normalized result of one before/after comparison.
type DamageReport struct {
	NewDamage             []DamageItem `json:"new_damage"`
	TotalEstimatedCostUSD float64      `json:"total_estimated_cost_usd"`
	Summary               string       `json:"summary"`
}

// NewDamageReport builds a report whose total is the sum of the item costs.
// The total reported by the model is never trusted; it is recomputed here.
func NewDamageReport(items []DamageItem, summary string) *DamageReport {
	if items == nil {
		items = []DamageItem{}
	}
	var total float64
	for _, it := range items {
		total += it.EstimatedCostUSD
	}
	return &DamageReport{
		NewDamage:             items,
		TotalEstimatedCostUSD: total,
		Summary:               summary,
	}
}
