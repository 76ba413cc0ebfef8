package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"VITALSENSE_BACK-END/internal/dto"
	"VITALSENSE_BACK-END/internal/middleware"
	"VITALSENSE_BACK-END/internal/models"
	"VITALSENSE_BACK-END/internal/store"
	"VITALSENSE_BACK-END/internal/utils"
)

// profileStore is the slice of the remote store the profile endpoints need.
type profileStore interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (models.UserProfile, error)
	UpsertProfile(ctx context.Context, userID uuid.UUID, profile models.UserProfile) error
}

// ProfileHandler serves the user's health profile, backed by Postgres with
// a local cache mirror for reads when the remote store is unreachable.
type ProfileHandler struct {
	store profileStore
	cache *store.Cache
}

// NewProfileHandler creates a new ProfileHandler instance
func NewProfileHandler(db *pgxpool.Pool, cache *store.Cache) *ProfileHandler {
	return &ProfileHandler{store: store.NewPostgres(db), cache: cache}
}

// GetProfile returns the user's health profile
// @Summary Get health profile
// @Description Get the authenticated user's health profile. Falls back to the local cache when the remote store is unavailable.
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.ProfileResponse "Profile retrieved"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Profile not found"
// @Router /api/profile [get]
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "User not authenticated")
		return
	}

	profile, err := h.store.GetProfile(r.Context(), userID)
	if err == nil {
		h.cache.SetProfile(userID, profile)
		utils.WriteJSONResponse(w, http.StatusOK, dto.ProfileResponse{Profile: profile})
		return
	}

	// The mirror covers any remote miss, not-found included: updates land
	// in the cache first with the remote upsert trailing, so a cached
	// profile is authoritative until the remote row catches up.
	if cached, ok := h.cache.GetProfile(userID); ok {
		utils.WriteJSONResponse(w, http.StatusOK, dto.ProfileResponse{Profile: cached, Cached: true})
		return
	}

	if errors.Is(err, store.ErrNotFound) {
		utils.WriteErrorResponse(w, http.StatusNotFound, "Profile not found", "Complete onboarding to create a profile")
		return
	}

	utils.WriteErrorResponse(w, http.StatusInternalServerError, "Failed to load profile", err.Error())
}

// UpdateProfile creates or replaces the user's health profile
// @Summary Update health profile
// @Description Create or replace the authenticated user's health profile. The first successful update completes onboarding.
// @Tags profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ProfileUpdateRequest true "Profile data"
// @Success 200 {object} dto.ProfileResponse "Profile saved"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /api/profile [put]
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "User not authenticated")
		return
	}

	var req dto.ProfileUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	condition := models.HealthCondition(req.Condition)
	if !models.ValidCondition(condition) {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid condition", "Unknown health condition")
		return
	}
	if condition == models.ConditionMoreDiseases && req.CustomConditionName == "" {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "Missing condition name", "More Diseases requires a condition name")
		return
	}

	language := models.LangEnglish
	if req.Language != "" {
		language = models.AppLanguage(req.Language)
		if !models.ValidLanguage(language) {
			utils.WriteErrorResponse(w, http.StatusBadRequest, "Invalid language", "Unsupported language code")
			return
		}
	}

	profile := models.UserProfile{
		Name:                req.Name,
		Condition:           condition,
		CustomConditionName: req.CustomConditionName,
		AdditionalContext:   req.AdditionalContext,
		CurrentSymptoms:     req.CurrentSymptoms,
		Language:            language,
	}
	if profile.AdditionalContext == nil {
		profile.AdditionalContext = []string{}
	}
	if profile.CurrentSymptoms == nil {
		profile.CurrentSymptoms = []string{}
	}

	// The cache is the write-through source of truth for the session; the
	// remote write completes in the background and only logs on failure.
	h.cache.SetProfile(userID, profile)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := h.store.UpsertProfile(ctx, userID, profile); err != nil {
			log.Printf("profile: background upsert for %s failed: %v", userID, err)
		}
	}()

	utils.WriteJSONResponse(w, http.StatusOK, dto.ProfileResponse{Profile: profile})
}
