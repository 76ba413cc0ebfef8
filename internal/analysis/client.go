package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"VITALSENSE_BACK-END/internal/config"
	"VITALSENSE_BACK-END/internal/models"
)

// Client performs the single analysis round trip against Gemini. It is not
// retried automatically; the caller decides whether to re-invoke on failure.
type Client struct {
	cfg config.GeminiConfig
}

// NewClient creates an analysis client from the Gemini configuration.
func NewClient(cfg config.GeminiConfig) *Client {
	return &Client{cfg: cfg}
}

// Analyze sends the prepared JPEG and profile context to the model and
// returns the normalized verdict. Every failure mode yields a well-formed
// fallback ScanResult alongside the classified error, so downstream rendering
// has a single code path.
func (c *Client) Analyze(ctx context.Context, imageJPEG []byte, pc ProfileContext) (models.ScanResult, *AnalysisError) {
	if c.cfg.APIKey == "" {
		return missingKeyResult(pc.LanguageCode), &AnalysisError{Kind: MissingCredential}
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	client, err := genai.NewClient(ctx, option.WithAPIKey(c.cfg.APIKey))
	if err != nil {
		return failureResult(pc.LanguageCode, err), classify(err)
	}
	defer client.Close()

	model := client.GenerativeModel(c.cfg.Model)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemInstruction(pc))},
	}
	model.SetMaxOutputTokens(c.cfg.MaxOutputTokens)
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = resultSchema()
	model.SafetySettings = []*genai.SafetySetting{
		{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockOnlyHigh},
		{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockOnlyHigh},
		{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockOnlyHigh},
	}

	resp, err := model.GenerateContent(ctx,
		genai.ImageData("jpeg", imageJPEG),
		genai.Text(fmt.Sprintf("Analyze this image and provide results in %s in JSON format according to the schema.", pc.LanguageName)),
	)
	if err != nil {
		return failureResult(pc.LanguageCode, err), classify(err)
	}

	text := responseText(resp)
	if text == "" {
		err := errors.New("model returned no content")
		return failureResult(pc.LanguageCode, err), &AnalysisError{Kind: AnalysisFailed, Err: err}
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		wrapped := fmt.Errorf("parse model response: %w", err)
		return failureResult(pc.LanguageCode, wrapped), &AnalysisError{Kind: AnalysisFailed, Err: wrapped}
	}

	return Normalize(raw), nil
}

func systemInstruction(pc ProfileContext) string {
	return fmt.Sprintf(`
You are an expert health assistant. Analyze a product label (Food/Cosmetic) based on this profile:
Profile: %s
Context: %s
Symptoms: %s

OUTPUT LANGUAGE: %s. All text fields in the JSON response must be in %s.

RULES:
1. DO NOT transcribe the entire label text.
2. 'fullIngredientList' MAX 30 words.
3. 'explanation' MAX 2 sentences.
4. Provide short, professional medical reasoning.
5. Ensure valid JSON.
`, pc.ConditionLabel, pc.Context, pc.Symptoms, pc.LanguageName, pc.LanguageName)
}

// resultSchema constrains the response to the ScanResult shape: enumerated
// status, category and risk levels, the N/A grade sentinel, bounded score.
func resultSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"productName": {Type: genai.TypeString},
			"category":    {Type: genai.TypeString, Enum: []string{"Food", "Cosmetic", "Other"}},
			"icon":        {Type: genai.TypeString},
			"status":      {Type: genai.TypeString, Enum: []string{"SAFE", "CAUTION", "AVOID"}},
			"score":       {Type: genai.TypeNumber},
			"nutriScore":  {Type: genai.TypeString, Enum: []string{"A", "B", "C", "D", "E", "N/A"}},
			"explanation": {Type: genai.TypeString},
			"fullIngredientList": {
				Type: genai.TypeString,
			},
			"ingredients": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"name":        {Type: genai.TypeString},
						"riskLevel":   {Type: genai.TypeString, Enum: []string{"Safe", "High Risk", "Moderate"}},
						"description": {Type: genai.TypeString},
					},
					Required: []string{"name", "riskLevel"},
				},
			},
			"nutritionAdvisor": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"name":  {Type: genai.TypeString},
						"value": {Type: genai.TypeString},
						"level": {Type: genai.TypeString},
					},
				},
			},
			"dietarySuitability": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"vegan":       {Type: genai.TypeBoolean},
					"vegetarian":  {Type: genai.TypeBoolean},
					"glutenFree":  {Type: genai.TypeBoolean},
					"lactoseFree": {Type: genai.TypeBoolean},
				},
			},
			"alternatives": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"name":   {Type: genai.TypeString},
						"reason": {Type: genai.TypeString},
					},
				},
			},
		},
		Required: []string{"productName", "category", "status", "score", "explanation", "ingredients", "alternatives", "icon"},
	}
}

// responseText concatenates the text parts of the first candidate, stripping
// markdown fences some models wrap around JSON despite the MIME type.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	text := strings.TrimSpace(sb.String())
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

func classify(err error) *AnalysisError {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		if gerr.Code == http.StatusForbidden || gerr.Code == http.StatusTooManyRequests {
			return &AnalysisError{Kind: AccessOrQuota, Err: err}
		}
	}
	return &AnalysisError{Kind: AnalysisFailed, Err: err}
}

// missingKeyResult is the synthetic configuration-error card returned when no
// credential is configured. Rendered as a normal result so the UI keeps a
// single code path.
func missingKeyResult(lang models.AppLanguage) models.ScanResult {
	name := "Configuration Error"
	explanation := "API Key missing. Ensure GEMINI_API_KEY is configured on the server."
	if lang == models.LangIndonesian {
		name = "Error Konfigurasi"
		explanation = "Kunci API tidak ditemukan. Pastikan GEMINI_API_KEY telah dikonfigurasi di server."
	}
	return fallbackResult(name, explanation)
}

func failureResult(lang models.AppLanguage, err error) models.ScanResult {
	explanation := "Failed to contact AI server."
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusForbidden:
			explanation = "Access denied (403). Check if the Google Cloud billing project is active."
		case http.StatusTooManyRequests:
			explanation = "Rate limit reached (429). Please wait a moment and scan again."
		}
	}
	if lang == models.LangIndonesian && explanation == "Failed to contact AI server." {
		explanation = "Gagal menghubungi server AI."
	}
	return fallbackResult("Analysis Error", explanation)
}

func fallbackResult(name, explanation string) models.ScanResult {
	return models.ScanResult{
		ProductName:        name,
		Category:           models.CategoryOther,
		Icon:               "⚠️",
		Status:             models.StatusCaution,
		Score:              0,
		Explanation:        explanation,
		Ingredients:        []models.IngredientFinding{},
		FullIngredientList: "",
		Alternatives:       []models.Alternative{},
	}
}
