package ai

import (
	"encoding/json"
	"strconv"
	"strings"

	"fleetlens/internal/apperr"
	"fleetlens/internal/entity"
)

// parseReport coerces the model's reply into a DamageReport. The reply is
// untrusted input: individual fields are defaulted or clamped, a malformed
// item is dropped rather than failing the report, and the total is always
// recomputed from the surviving items. Only a reply that is not a JSON
// object at all is fatal.
func parseReport(raw string) (*entity.DamageReport, error) {
	cleaned := stripCodeFences(raw)

	var payload map[string]any
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, apperr.Wrap(apperr.KindAIResponse, err, "model reply is not valid JSON")
	}

	rawItems, _ := payload["new_damage"].([]any)
	items := make([]entity.DamageItem, 0, len(rawItems))
	for _, ri := range rawItems {
		m, ok := ri.(map[string]any)
		if !ok {
			continue
		}
		item := entity.DamageItem{
			CarPart:           asString(m["car_part"]),
			DamageType:        asString(m["damage_type"]),
			Severity:          entity.NormalizeSeverity(asString(m["severity"])),
			RecommendedAction: asString(m["recommended_action"]),
			EstimatedCostUSD:  asFloat(m["estimated_cost_usd"]),
			Description:       asString(m["description"]),
			ImageIndex:        int(asFloat(m["image_index"])),
		}
		if item.EstimatedCostUSD < 0 {
			item.EstimatedCostUSD = 0
		}
		if bb, ok := m["bounding_box"].(map[string]any); ok {
			box := entity.BoundingBox{
				XMinPct: asFloat(bb["x_min_pct"]),
				YMinPct: asFloat(bb["y_min_pct"]),
				XMaxPct: asFloat(bb["x_max_pct"]),
				YMaxPct: asFloat(bb["y_max_pct"]),
			}
			if box.Valid() {
				item.BoundingBox = &box
			}
		}
		items = append(items, item)
	}

	return entity.NewDamageReport(items, asString(payload["summary"])), nil
}

// stripCodeFences removes a surrounding markdown code block, which vision
// models emit even when told not to.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

// asFloat accepts the number shapes models actually produce: JSON numbers,
// numeric strings ("350", "$350"), or nothing.
func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case string:
		s := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(n), "$"))
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		return f
	}
	return 0
}
