package dto

import "VITALSENSE_BACK-END/internal/models"

// ProfileResponse wraps the user's health profile
type ProfileResponse struct {
	Profile models.UserProfile `json:"profile"`
	// Cached marks a response served from the local mirror because the
	// remote store was unavailable
	Cached bool `json:"cached,omitempty"`
}

// ProfileUpdateRequest is the PUT /api/profile payload. The first successful
// update is the onboarding completion.
type ProfileUpdateRequest struct {
	Name                string   `json:"name"`
	Condition           string   `json:"condition"`
	CustomConditionName string   `json:"custom_condition_name,omitempty"`
	AdditionalContext   []string `json:"additional_context"`
	CurrentSymptoms     []string `json:"current_symptoms"`
	Language            string   `json:"language,omitempty"`
}
