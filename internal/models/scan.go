package models

import (
	"time"

	"github.com/google/uuid"
)

// ScanStatus is the overall verdict for a scanned product.
type ScanStatus string

const (
	StatusSafe    ScanStatus = "SAFE"
	StatusCaution ScanStatus = "CAUTION"
	StatusAvoid   ScanStatus = "AVOID"
)

// ProductCategory classifies the scanned label.
type ProductCategory string

const (
	CategoryFood     ProductCategory = "Food"
	CategoryCosmetic ProductCategory = "Cosmetic"
	CategoryOther    ProductCategory = "Other"
)

// RiskLevel grades a single ingredient finding.
type RiskLevel string

const (
	RiskSafe     RiskLevel = "Safe"
	RiskModerate RiskLevel = "Moderate"
	RiskHigh     RiskLevel = "High Risk"
)

// NutriScore is the absolute A-E food quality grade. It is independent of the
// personalized score, which rates suitability for one specific profile.
type NutriScore string

const (
	GradeA NutriScore = "A"
	GradeB NutriScore = "B"
	GradeC NutriScore = "C"
	GradeD NutriScore = "D"
	GradeE NutriScore = "E"
)

// IngredientFinding is one ingredient-level risk call from the model.
type IngredientFinding struct {
	Name        string    `json:"name"`
	RiskLevel   RiskLevel `json:"riskLevel"`
	Description string    `json:"description,omitempty"`
}

// MacroNutrient is a traffic-light indicator for one macro (food only).
type MacroNutrient struct {
	Name  string `json:"name"`  // e.g. "Sugar", "Saturated Fat"
	Value string `json:"value"` // e.g. "1.8g"
	Level string `json:"level"` // "Low" | "Medium" | "High"
}

// DietarySuitability is the flag set for common dietary restrictions (food only).
type DietarySuitability struct {
	Vegan       bool `json:"vegan"`
	Vegetarian  bool `json:"vegetarian"`
	GlutenFree  bool `json:"glutenFree"`
	LactoseFree bool `json:"lactoseFree"`
}

// FoodDetails holds the fields that only exist for Category == Food. Keeping
// them behind a pointer makes "absent for non-food" structural rather than a
// convention every caller has to remember.
type FoodDetails struct {
	NutriScore         NutriScore          `json:"nutriScore,omitempty"`
	NutritionAdvisor   []MacroNutrient     `json:"nutritionAdvisor,omitempty"`
	DietarySuitability *DietarySuitability `json:"dietarySuitability,omitempty"`
}

// ScanResult is the normalized analysis verdict for one captured label.
type ScanResult struct {
	ProductName        string              `json:"productName"`
	Category           ProductCategory     `json:"category"`
	Icon               string              `json:"icon"`
	Status             ScanStatus          `json:"status"`
	Score              int                 `json:"score"` // 0-100, relative to the user's profile
	Explanation        string              `json:"explanation"`
	Ingredients        []IngredientFinding `json:"ingredients"`
	FullIngredientList string              `json:"fullIngredientList"`
	Alternatives       []Alternative       `json:"alternatives"`
	Food               *FoodDetails        `json:"food,omitempty"` // nil unless Category == Food
}

// Alternative is a suggested replacement product.
type Alternative struct {
	Name   string `json:"name"`
	Reason string `json:"reason,omitempty"`
}

// ScanHistoryItem is a recorded ScanResult. ID and Timestamp are minted at
// the moment of recording, after the analysis has completed.
type ScanHistoryItem struct {
	ScanResult
	ID         uuid.UUID `json:"id"`
	Timestamp  int64     `json:"timestamp"` // unix milliseconds
	IsFavorite bool      `json:"isFavorite"`
}

// NewHistoryItem wraps a result with a fresh id and capture timestamp.
func NewHistoryItem(result ScanResult) ScanHistoryItem {
	return ScanHistoryItem{
		ScanResult: result,
		ID:         uuid.New(),
		Timestamp:  time.Now().UnixMilli(),
	}
}
