package analysis

import (
	"fmt"
	"strings"

	"VITALSENSE_BACK-END/internal/models"
)

// Joined context fields are capped so a pathological profile cannot blow up
// the prompt size.
const maxContextChars = 400

// ProfileContext is the deterministic textual bundle sent to the model to
// personalize the verdict.
type ProfileContext struct {
	ConditionLabel string
	Context        string
	Symptoms       string
	LanguageName   string
	LanguageCode   models.AppLanguage
}

// BuildProfileContext flattens the user's health profile into prompt-ready
// strings. Pure function: no I/O, no failure modes. Empty lists render as the
// literal "None" so the model never sees an ambiguous blank field.
func BuildProfileContext(p models.UserProfile) ProfileContext {
	conditionLabel := string(p.Condition)
	if p.Condition == models.ConditionMoreDiseases {
		conditionLabel = fmt.Sprintf("Specific Condition: %s", p.CustomConditionName)
	}

	lang := p.Language
	if lang == "" {
		lang = models.LangEnglish
	}

	return ProfileContext{
		ConditionLabel: truncate(conditionLabel, maxContextChars),
		Context:        joinOrNone(p.AdditionalContext),
		Symptoms:       joinOrNone(p.CurrentSymptoms),
		LanguageName:   lang.DisplayName(),
		LanguageCode:   lang,
	}
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "None"
	}
	return truncate(strings.Join(items, ", "), maxContextChars)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
