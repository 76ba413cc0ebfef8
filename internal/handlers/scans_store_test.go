package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"VITALSENSE_BACK-END/internal/dto"
	"VITALSENSE_BACK-END/internal/models"
	"VITALSENSE_BACK-END/internal/store"
)

type fakeScanStore struct {
	profile    models.UserProfile
	profileErr error
	scans      []models.ScanHistoryItem
	listErr    error
	gotLimit   int
	gotFavOnly bool
}

func (f *fakeScanStore) GetProfile(ctx context.Context, userID uuid.UUID) (models.UserProfile, error) {
	if f.profileErr != nil {
		return models.UserProfile{}, f.profileErr
	}
	return f.profile, nil
}

func (f *fakeScanStore) InsertScan(ctx context.Context, userID uuid.UUID, item models.ScanHistoryItem) error {
	return nil
}

func (f *fakeScanStore) ListScans(ctx context.Context, userID uuid.UUID, limit int, favoritesOnly bool) ([]models.ScanHistoryItem, error) {
	f.gotLimit = limit
	f.gotFavOnly = favoritesOnly
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.scans, nil
}

func (f *fakeScanStore) ToggleFavorite(ctx context.Context, userID, scanID uuid.UUID) (bool, error) {
	return false, store.ErrNotFound
}

func TestLoadProfileFallsBackToMirror(t *testing.T) {
	local := models.UserProfile{
		Name:              "Ana",
		Condition:         models.ConditionAutoimmune,
		AdditionalContext: []string{},
		CurrentSymptoms:   []string{"fatigue"},
		Language:          models.LangEnglish,
	}

	tests := []struct {
		name          string
		profileErr    error
		seedCache     bool
		wantCondition models.HealthCondition
	}{
		{"remote not found, mirror has it", store.ErrNotFound, true, models.ConditionAutoimmune},
		{"remote down, mirror has it", errors.New("connection refused"), true, models.ConditionAutoimmune},
		{"nothing anywhere", store.ErrNotFound, false, models.ConditionGeneralHealth},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userID := uuid.New()
			cache := newTestCache(t)
			if tt.seedCache {
				cache.SetProfile(userID, local)
			}
			h := &ScanHandler{
				store: &fakeScanStore{profileErr: tt.profileErr},
				cache: cache,
			}

			got := h.loadProfile(context.Background(), userID)
			if got.Condition != tt.wantCondition {
				t.Errorf("condition = %q, want %q", got.Condition, tt.wantCondition)
			}
			if got.AdditionalContext == nil || got.CurrentSymptoms == nil {
				t.Error("profile slices must not be nil")
			}
		})
	}
}

func TestListFavoritesPredicate(t *testing.T) {
	mk := func(favorite bool) models.ScanHistoryItem {
		item := models.NewHistoryItem(models.ScanResult{ProductName: "p"})
		item.IsFavorite = favorite
		return item
	}

	t.Run("favorites filter reaches the store", func(t *testing.T) {
		userID := uuid.New()
		cache := newTestCache(t)
		full := []models.ScanHistoryItem{mk(true), mk(false)}
		cache.SetHistory(userID, full)

		fake := &fakeScanStore{scans: full[:1]}
		h := &ScanHandler{store: fake, cache: cache}

		rec := httptest.NewRecorder()
		h.List(rec, authedRequest(http.MethodGet, "/api/scans?favorites=true", userID))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}
		if !fake.gotFavOnly {
			t.Error("favorites filter was not passed to the store query")
		}
		if fake.gotLimit != defaultHistoryLimit {
			t.Errorf("limit = %d, want %d", fake.gotLimit, defaultHistoryLimit)
		}

		var resp dto.ScanListResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if len(resp.Scans) != 1 || !resp.Scans[0].IsFavorite {
			t.Errorf("scans = %d favorites-only items, want 1", len(resp.Scans))
		}

		// The filtered page must not shrink the mirrored full history.
		cached, ok := cache.GetHistory(userID)
		if !ok || len(cached) != len(full) {
			t.Errorf("cached history = %d items, want %d", len(cached), len(full))
		}
	})

	t.Run("full page refreshes the mirror", func(t *testing.T) {
		userID := uuid.New()
		cache := newTestCache(t)
		cache.SetHistory(userID, []models.ScanHistoryItem{mk(false)})

		fresh := []models.ScanHistoryItem{mk(true), mk(false), mk(false)}
		fake := &fakeScanStore{scans: fresh}
		h := &ScanHandler{store: fake, cache: cache}

		rec := httptest.NewRecorder()
		h.List(rec, authedRequest(http.MethodGet, "/api/scans", userID))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}
		if fake.gotFavOnly {
			t.Error("unfiltered page queried favorites only")
		}
		cached, ok := cache.GetHistory(userID)
		if !ok || len(cached) != len(fresh) {
			t.Errorf("cached history = %d items, want %d", len(cached), len(fresh))
		}
	})
}
