package analysis

import (
	"strings"

	"VITALSENSE_BACK-END/internal/models"
)

// List caps applied regardless of what the model returns.
const (
	maxIngredients   = 10
	maxAlternatives  = 3
	maxListWords     = 30 // fullIngredientList transcription cap
	defaultScore     = 50
	defaultIcon      = "📦"
	maxIconRunes     = 4
	defaultName      = "Unknown Product"
	defaultExplained = "Analysis complete."
	defaultListText  = "Ingredients not readable."
)

// The personalized score may never exceed what the absolute grade allows.
// A low letter grade implies a capped numeric score; the grade is never
// derived from the score.
var gradeScoreCap = map[models.NutriScore]int{
	models.GradeA: 100,
	models.GradeB: 85,
	models.GradeC: 70,
	models.GradeD: 50,
	models.GradeE: 30,
}

// Normalize coerces a raw decoded model response into the canonical result
// shape. It is total: any syntactically valid JSON object yields a usable
// ScanResult with documented defaults substituted for missing or invalid
// fields. Food-only fields are dropped for non-food categories.
func Normalize(raw map[string]any) models.ScanResult {
	result := models.ScanResult{
		ProductName:        stringField(raw, "productName", defaultName),
		Category:           categoryField(raw),
		Icon:               iconField(raw),
		Status:             statusField(raw),
		Score:              scoreField(raw),
		Explanation:        stringField(raw, "explanation", defaultExplained),
		FullIngredientList: capWords(stringField(raw, "fullIngredientList", defaultListText), maxListWords),
		Ingredients:        ingredientsField(raw),
		Alternatives:       alternativesField(raw),
	}

	if result.Category == models.CategoryFood {
		food := &models.FoodDetails{
			NutriScore:         gradeField(raw),
			NutritionAdvisor:   advisorField(raw),
			DietarySuitability: suitabilityField(raw),
		}
		if limit, ok := gradeScoreCap[food.NutriScore]; ok && result.Score > limit {
			result.Score = limit
		}
		result.Food = food
	}

	return result
}

func stringField(raw map[string]any, key, def string) string {
	if s, ok := raw[key].(string); ok && strings.TrimSpace(s) != "" {
		return s
	}
	return def
}

func categoryField(raw map[string]any) models.ProductCategory {
	s, _ := raw["category"].(string)
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cosmetic":
		return models.CategoryCosmetic
	case "other":
		return models.CategoryOther
	default:
		return models.CategoryFood
	}
}

func iconField(raw map[string]any) string {
	icon := stringField(raw, "icon", defaultIcon)
	// Anything longer than a glyph or two is model noise, not an emoji.
	if len([]rune(icon)) > maxIconRunes || strings.Contains(icon, "_") {
		return defaultIcon
	}
	return icon
}

func statusField(raw map[string]any) models.ScanStatus {
	s, _ := raw["status"].(string)
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(models.StatusAvoid):
		return models.StatusAvoid
	case string(models.StatusCaution):
		return models.StatusCaution
	default:
		return models.StatusSafe
	}
}

func scoreField(raw map[string]any) int {
	f, ok := raw["score"].(float64)
	if !ok {
		return defaultScore
	}
	score := int(f)
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// gradeField coerces the "N/A" sentinel and anything outside A-E to absent.
func gradeField(raw map[string]any) models.NutriScore {
	s, _ := raw["nutriScore"].(string)
	grade := models.NutriScore(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := gradeScoreCap[grade]; ok {
		return grade
	}
	return ""
}

func ingredientsField(raw map[string]any) []models.IngredientFinding {
	items, _ := raw["ingredients"].([]any)
	findings := make([]models.IngredientFinding, 0, maxIngredients)
	for _, item := range items {
		if len(findings) == maxIngredients {
			break
		}
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		name, _ := entry["name"].(string)
		if strings.TrimSpace(name) == "" {
			continue
		}
		desc, _ := entry["description"].(string)
		findings = append(findings, models.IngredientFinding{
			Name:        name,
			RiskLevel:   riskLevel(entry),
			Description: desc,
		})
	}
	return findings
}

func riskLevel(entry map[string]any) models.RiskLevel {
	s, _ := entry["riskLevel"].(string)
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "safe":
		return models.RiskSafe
	case "high risk":
		return models.RiskHigh
	default:
		return models.RiskModerate
	}
}

func alternativesField(raw map[string]any) []models.Alternative {
	items, _ := raw["alternatives"].([]any)
	alts := make([]models.Alternative, 0, maxAlternatives)
	for _, item := range items {
		if len(alts) == maxAlternatives {
			break
		}
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		name, _ := entry["name"].(string)
		if strings.TrimSpace(name) == "" {
			continue
		}
		reason, _ := entry["reason"].(string)
		alts = append(alts, models.Alternative{Name: name, Reason: reason})
	}
	return alts
}

func advisorField(raw map[string]any) []models.MacroNutrient {
	items, _ := raw["nutritionAdvisor"].([]any)
	var macros []models.MacroNutrient
	for _, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		name, _ := entry["name"].(string)
		if strings.TrimSpace(name) == "" {
			continue
		}
		value, _ := entry["value"].(string)
		level, _ := entry["level"].(string)
		macros = append(macros, models.MacroNutrient{Name: name, Value: value, Level: level})
	}
	return macros
}

func suitabilityField(raw map[string]any) *models.DietarySuitability {
	entry, ok := raw["dietarySuitability"].(map[string]any)
	if !ok {
		return nil
	}
	boolField := func(key string) bool {
		b, _ := entry[key].(bool)
		return b
	}
	return &models.DietarySuitability{
		Vegan:       boolField("vegan"),
		Vegetarian:  boolField("vegetarian"),
		GlutenFree:  boolField("glutenFree"),
		LactoseFree: boolField("lactoseFree"),
	}
}

func capWords(s string, max int) string {
	words := strings.Fields(s)
	if len(words) <= max {
		return s
	}
	return strings.Join(words[:max], " ")
}
