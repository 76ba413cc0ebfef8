package analysis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"

	"VITALSENSE_BACK-END/internal/config"
	"VITALSENSE_BACK-END/internal/models"
)

func TestAnalyzeWithoutCredential(t *testing.T) {
	client := NewClient(config.GeminiConfig{
		Model:          "gemini-3-pro-preview",
		RequestTimeout: time.Second,
	})

	pc := BuildProfileContext(models.UserProfile{
		Condition: models.ConditionGeneralHealth,
		Language:  models.LangEnglish,
	})

	result, aerr := client.Analyze(context.Background(), []byte("not used"), pc)
	if aerr == nil || aerr.Kind != MissingCredential {
		t.Fatalf("error kind = %v, want MissingCredential", aerr)
	}
	if result.ProductName != "Configuration Error" {
		t.Errorf("ProductName = %q, want Configuration Error", result.ProductName)
	}
	if result.Status != models.StatusCaution {
		t.Errorf("Status = %q, want CAUTION", result.Status)
	}
	if result.Score != 0 {
		t.Errorf("Score = %d, want 0", result.Score)
	}
	if result.Category != models.CategoryOther {
		t.Errorf("Category = %q, want Other", result.Category)
	}
}

func TestAnalyzeWithoutCredentialLocalized(t *testing.T) {
	client := NewClient(config.GeminiConfig{RequestTimeout: time.Second})

	pc := BuildProfileContext(models.UserProfile{
		Condition: models.ConditionGeneralHealth,
		Language:  models.LangIndonesian,
	})

	result, _ := client.Analyze(context.Background(), nil, pc)
	if result.ProductName != "Error Konfigurasi" {
		t.Errorf("ProductName = %q, want Error Konfigurasi", result.ProductName)
	}
}

func TestResponseText(t *testing.T) {
	mk := func(parts ...genai.Part) *genai.GenerateContentResponse {
		return &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: parts}}},
		}
	}

	tests := []struct {
		name string
		resp *genai.GenerateContentResponse
		want string
	}{
		{"nil response", nil, ""},
		{"no candidates", &genai.GenerateContentResponse{}, ""},
		{"plain json", mk(genai.Text(`{"score":10}`)), `{"score":10}`},
		{"fenced json", mk(genai.Text("```json\n{\"score\":10}\n```")), `{"score":10}`},
		{"bare fence", mk(genai.Text("```\n{}\n```")), "{}"},
		{"split parts", mk(genai.Text(`{"a":`), genai.Text(`1}`)), `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := responseText(tt.resp); got != tt.want {
				t.Errorf("responseText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"forbidden", &googleapi.Error{Code: 403}, AccessOrQuota},
		{"rate limited", &googleapi.Error{Code: 429}, AccessOrQuota},
		{"server error", &googleapi.Error{Code: 500}, AnalysisFailed},
		{"plain error", errors.New("boom"), AnalysisFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classify(tt.err); got.Kind != tt.want {
				t.Errorf("classify(%v).Kind = %q, want %q", tt.err, got.Kind, tt.want)
			}
		})
	}
}

func TestFailureResultExplanations(t *testing.T) {
	tests := []struct {
		name string
		lang models.AppLanguage
		err  error
		want string
	}{
		{"forbidden", models.LangEnglish, &googleapi.Error{Code: 403}, "Access denied (403). Check if the Google Cloud billing project is active."},
		{"rate limited", models.LangEnglish, &googleapi.Error{Code: 429}, "Rate limit reached (429). Please wait a moment and scan again."},
		{"generic english", models.LangEnglish, errors.New("dial tcp"), "Failed to contact AI server."},
		{"generic indonesian", models.LangIndonesian, errors.New("dial tcp"), "Gagal menghubungi server AI."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := failureResult(tt.lang, tt.err)
			if result.Explanation != tt.want {
				t.Errorf("Explanation = %q, want %q", result.Explanation, tt.want)
			}
			if result.ProductName != "Analysis Error" {
				t.Errorf("ProductName = %q, want Analysis Error", result.ProductName)
			}
		})
	}
}
