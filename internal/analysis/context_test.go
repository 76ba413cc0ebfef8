package analysis

import (
	"strings"
	"testing"

	"VITALSENSE_BACK-END/internal/models"
)

func TestBuildProfileContext(t *testing.T) {
	tests := []struct {
		name    string
		profile models.UserProfile
		want    ProfileContext
	}{
		{
			name: "standard condition",
			profile: models.UserProfile{
				Condition:         models.ConditionPregnancy,
				AdditionalContext: []string{"second trimester", "anemia"},
				CurrentSymptoms:   []string{"nausea"},
				Language:          models.LangEnglish,
			},
			want: ProfileContext{
				ConditionLabel: "Pregnancy",
				Context:        "second trimester, anemia",
				Symptoms:       "nausea",
				LanguageName:   "English",
				LanguageCode:   models.LangEnglish,
			},
		},
		{
			name: "custom condition carries its name",
			profile: models.UserProfile{
				Condition:           models.ConditionMoreDiseases,
				CustomConditionName: "Crohn's disease",
				Language:            models.LangEnglish,
			},
			want: ProfileContext{
				ConditionLabel: "Specific Condition: Crohn's disease",
				Context:        "None",
				Symptoms:       "None",
				LanguageName:   "English",
				LanguageCode:   models.LangEnglish,
			},
		},
		{
			name: "empty lists render as None",
			profile: models.UserProfile{
				Condition: models.ConditionGeneralHealth,
				Language:  models.LangIndonesian,
			},
			want: ProfileContext{
				ConditionLabel: "General Health",
				Context:        "None",
				Symptoms:       "None",
				LanguageName:   "Bahasa Indonesia",
				LanguageCode:   models.LangIndonesian,
			},
		},
		{
			name: "empty language falls back to English",
			profile: models.UserProfile{
				Condition: models.ConditionNone,
			},
			want: ProfileContext{
				ConditionLabel: "None",
				Context:        "None",
				Symptoms:       "None",
				LanguageName:   "English",
				LanguageCode:   models.LangEnglish,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildProfileContext(tt.profile)
			if got != tt.want {
				t.Errorf("BuildProfileContext() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestBuildProfileContextTruncates(t *testing.T) {
	profile := models.UserProfile{
		Condition:         models.ConditionAllergies,
		AdditionalContext: []string{strings.Repeat("x", 600)},
		Language:          models.LangEnglish,
	}
	got := BuildProfileContext(profile)
	if len([]rune(got.Context)) != maxContextChars {
		t.Errorf("len(Context) = %d, want %d", len([]rune(got.Context)), maxContextChars)
	}
}
