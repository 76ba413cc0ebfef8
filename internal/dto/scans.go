package dto

import "VITALSENSE_BACK-END/internal/models"

// ScanRequest is the POST /api/scans payload: a captured camera frame or a
// picked file, base64-encoded (raw or as a data URL)
type ScanRequest struct {
	Image string `json:"image" validate:"required"`
}

// ScanResponse returns the recorded analysis. Recorded is false when the
// result was a synthetic error card that is not added to history.
type ScanResponse struct {
	Scan     models.ScanHistoryItem `json:"scan"`
	Recorded bool                   `json:"recorded"`
}

// ScanListResponse is the GET /api/scans payload
type ScanListResponse struct {
	Scans []models.ScanHistoryItem `json:"scans"`
	// Cached marks a list served from the local mirror
	Cached bool `json:"cached,omitempty"`
}

// FavoriteResponse reports the new favorite state after a toggle
type FavoriteResponse struct {
	ID         string `json:"id"`
	IsFavorite bool   `json:"is_favorite"`
}
