package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"VITALSENSE_BACK-END/internal/analysis"
	"VITALSENSE_BACK-END/internal/config"
	"VITALSENSE_BACK-END/internal/dto"
	"VITALSENSE_BACK-END/internal/imaging"
	"VITALSENSE_BACK-END/internal/middleware"
	"VITALSENSE_BACK-END/internal/models"
	"VITALSENSE_BACK-END/internal/scanner"
	"VITALSENSE_BACK-END/internal/store"
	"VITALSENSE_BACK-END/internal/utils"
)

const defaultHistoryLimit = 50

// scanStore is the slice of the remote store the scan pipeline needs.
type scanStore interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (models.UserProfile, error)
	InsertScan(ctx context.Context, userID uuid.UUID, item models.ScanHistoryItem) error
	ListScans(ctx context.Context, userID uuid.UUID, limit int, favoritesOnly bool) ([]models.ScanHistoryItem, error)
	ToggleFavorite(ctx context.Context, userID, scanID uuid.UUID) (bool, error)
}

// ScanHandler runs the label analysis pipeline and serves scan history.
type ScanHandler struct {
	store    scanStore
	cache    *store.Cache
	analyzer *analysis.Client
	gate     *scanner.Gate
}

// NewScanHandler creates a new ScanHandler instance
func NewScanHandler(db *pgxpool.Pool, cache *store.Cache, geminiCfg config.GeminiConfig) *ScanHandler {
	return &ScanHandler{
		store:    store.NewPostgres(db),
		cache:    cache,
		analyzer: analysis.NewClient(geminiCfg),
		gate:     scanner.NewGate(),
	}
}

// decodeImage accepts raw base64 or a data URL and returns the image bytes.
func decodeImage(payload string) ([]byte, error) {
	payload = strings.TrimSpace(payload)
	if idx := strings.Index(payload, ","); idx >= 0 && strings.HasPrefix(payload, "data:") {
		payload = payload[idx+1:]
	}
	return base64.StdEncoding.DecodeString(payload)
}

// loadProfile prefers the remote store and falls back to the local mirror.
// The mirror is consulted on any remote miss, including not-found: profile
// writes land in the cache first with the remote upsert trailing, so a cache
// hit proves onboarding completed even when the remote row is absent. A user
// with neither gets a neutral profile.
func (h *ScanHandler) loadProfile(ctx context.Context, userID uuid.UUID) models.UserProfile {
	profile, err := h.store.GetProfile(ctx, userID)
	if err == nil {
		return profile
	}
	if cached, ok := h.cache.GetProfile(userID); ok {
		return cached
	}
	return models.UserProfile{
		Condition:         models.ConditionGeneralHealth,
		AdditionalContext: []string{},
		CurrentSymptoms:   []string{},
		Language:          models.LangEnglish,
	}
}

// Analyze runs a label scan
// @Summary Analyze a product label
// @Description Analyze a photographed food or cosmetic label against the user's health profile. One analysis per user at a time.
// @Tags scans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ScanRequest true "Base64-encoded label image"
// @Success 200 {object} dto.ScanResponse "Analysis result"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 409 {object} dto.ErrorResponse "Analysis already in progress"
// @Failure 502 {object} dto.ErrorResponse "Model access error"
// @Router /api/scans [post]
func (h *ScanHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "User not authenticated")
		return
	}

	release, err := h.gate.Acquire(userID)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusConflict, "Analysis in progress", "Wait for the current analysis to finish")
		return
	}
	defer release()

	var req dto.ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if req.Image == "" {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Missing image", "An image is required")
		return
	}

	raw, err := decodeImage(req.Image)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid image encoding", err.Error())
		return
	}

	jpeg, err := imaging.Prepare(raw)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Unreadable image", "The image could not be decoded")
		return
	}

	profile := h.loadProfile(r.Context(), userID)
	pc := analysis.BuildProfileContext(profile)

	result, aerr := h.analyzer.Analyze(r.Context(), jpeg, pc)
	if aerr != nil && aerr.Kind == analysis.MissingCredential {
		// Configuration error cards are shown but never recorded.
		item := models.NewHistoryItem(result)
		utils.WriteJSONResponse(w, http.StatusOK, dto.ScanResponse{Scan: item, Recorded: false})
		return
	}
	if aerr != nil {
		log.Printf("scan: analysis for %s degraded (%s): %v", userID, aerr.Kind, aerr.Err)
	}

	// The client may have gone away during the model call. Discard the
	// result rather than record a scan nobody saw.
	if r.Context().Err() != nil {
		return
	}

	item := models.NewHistoryItem(result)
	h.record(userID, item)

	utils.WriteJSONResponse(w, http.StatusOK, dto.ScanResponse{Scan: item, Recorded: true})
}

// record persists the scan remotely and refreshes the local mirror. Both are
// fire-and-forget: a storage failure never blocks the verdict.
func (h *ScanHandler) record(userID uuid.UUID, item models.ScanHistoryItem) {
	if history, ok := h.cache.GetHistory(userID); ok {
		h.cache.SetHistory(userID, append([]models.ScanHistoryItem{item}, history...))
	} else {
		h.cache.SetHistory(userID, []models.ScanHistoryItem{item})
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := h.store.InsertScan(ctx, userID, item); err != nil {
			log.Printf("scan: background insert for %s failed: %v", userID, err)
		}
	}()
}

// List returns the user's scan history
// @Summary List scan history
// @Description List the authenticated user's scans, newest first. Falls back to the local cache when the remote store is unavailable.
// @Tags scans
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Maximum number of scans to return"
// @Param favorites query bool false "Return only favorited scans"
// @Success 200 {object} dto.ScanListResponse "Scan history"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /api/scans [get]
func (h *ScanHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "User not authenticated")
		return
	}

	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid limit", "limit must be a positive integer")
			return
		}
		limit = n
	}
	favoritesOnly := r.URL.Query().Get("favorites") == "true"

	scans, err := h.store.ListScans(r.Context(), userID, limit, favoritesOnly)
	if err != nil {
		cached, ok := h.cache.GetHistory(userID)
		if !ok {
			utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to load history", err.Error())
			return
		}
		utils.WriteJSONResponse(w, http.StatusOK, dto.ScanListResponse{
			Scans:  filterScans(cached, limit, favoritesOnly),
			Cached: true,
		})
		return
	}

	// Only an unfiltered page may refresh the mirror; a favorites-only
	// slice would clobber the cached full history.
	if !favoritesOnly {
		h.cache.SetHistory(userID, scans)
	}
	if scans == nil {
		scans = []models.ScanHistoryItem{}
	}
	utils.WriteJSONResponse(w, http.StatusOK, dto.ScanListResponse{Scans: scans})
}

func filterScans(scans []models.ScanHistoryItem, limit int, favoritesOnly bool) []models.ScanHistoryItem {
	out := make([]models.ScanHistoryItem, 0, len(scans))
	for _, s := range scans {
		if favoritesOnly && !s.IsFavorite {
			continue
		}
		out = append(out, s)
		if len(out) == limit {
			break
		}
	}
	return out
}

// ToggleFavorite flips the favorite flag on a scan
// @Summary Toggle scan favorite
// @Description Toggle the favorite flag on one of the user's scans
// @Tags scans
// @Produce json
// @Security BearerAuth
// @Param id path string true "Scan ID"
// @Success 200 {object} dto.FavoriteResponse "New favorite state"
// @Failure 400 {object} dto.ErrorResponse "Invalid scan ID"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Scan not found"
// @Router /api/scans/{id}/favorite [post]
func (h *ScanHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "User not authenticated")
		return
	}

	// Path shape: /api/scans/{id}/favorite
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) != 4 || parts[3] != "favorite" {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid path", "Expected /api/scans/{id}/favorite")
		return
	}
	scanID, err := uuid.Parse(parts[2])
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid scan ID", "Scan ID must be a UUID")
		return
	}

	isFavorite, err := h.store.ToggleFavorite(r.Context(), userID, scanID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.WriteErrorResponse(w, http.StatusNotFound, "Scan not found", "No scan with that ID")
			return
		}
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to toggle favorite", err.Error())
		return
	}

	// Keep the mirror in step; a cache miss is fine.
	h.cache.ToggleFavorite(userID, scanID)

	utils.WriteJSONResponse(w, http.StatusOK, dto.FavoriteResponse{
		ID:         scanID.String(),
		IsFavorite: isFavorite,
	})
}
