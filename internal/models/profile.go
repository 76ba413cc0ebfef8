package models

// HealthCondition is the closed set of health profiles a user can pick at
// onboarding. MoreDiseases is the "something else" choice and carries a
// free-text name in UserProfile.CustomConditionName.
type HealthCondition string

const (
	ConditionPregnancy     HealthCondition = "Pregnancy"
	ConditionCancerCare    HealthCondition = "Cancer Care"
	ConditionAutoimmune    HealthCondition = "Autoimmune"
	ConditionAllergies     HealthCondition = "Allergies"
	ConditionGeneralHealth HealthCondition = "General Health"
	ConditionMoreDiseases  HealthCondition = "More Diseases"
	ConditionNone          HealthCondition = "None"
)

// ValidCondition reports whether c is one of the known conditions.
func ValidCondition(c HealthCondition) bool {
	switch c {
	case ConditionPregnancy, ConditionCancerCare, ConditionAutoimmune,
		ConditionAllergies, ConditionGeneralHealth, ConditionMoreDiseases,
		ConditionNone:
		return true
	}
	return false
}

// AppLanguage is the user's preferred output language for analysis results.
type AppLanguage string

const (
	LangEnglish    AppLanguage = "en"
	LangIndonesian AppLanguage = "id"
	LangArabic     AppLanguage = "ar"
	LangFrench     AppLanguage = "fr"
	LangChinese    AppLanguage = "zh"
)

var languageNames = map[AppLanguage]string{
	LangEnglish:    "English",
	LangIndonesian: "Bahasa Indonesia",
	LangArabic:     "Arabic",
	LangFrench:     "French",
	LangChinese:    "Simplified Chinese",
}

// ValidLanguage reports whether l is a supported language code.
func ValidLanguage(l AppLanguage) bool {
	_, ok := languageNames[l]
	return ok
}

// DisplayName returns the language name used in prompts. Unknown or empty
// codes fall back to English.
func (l AppLanguage) DisplayName() string {
	if name, ok := languageNames[l]; ok {
		return name
	}
	return languageNames[LangEnglish]
}

// UserProfile is the health profile the analysis is personalized against.
// Created at onboarding completion, editable at any time.
type UserProfile struct {
	Name                string          `json:"name"`
	Condition           HealthCondition `json:"condition"`
	CustomConditionName string          `json:"custom_condition_name,omitempty"`
	AdditionalContext   []string        `json:"additional_context"`
	CurrentSymptoms     []string        `json:"current_symptoms"`
	Language            AppLanguage     `json:"language"`
}
