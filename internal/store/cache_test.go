package store

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"VITALSENSE_BACK-END/internal/models"
)

func openTestCache(t *testing.T, historyCap int) *Cache {
	t.Helper()
	cache, err := OpenCache(filepath.Join(t.TempDir(), "cache.db"), historyCap)
	if err != nil {
		t.Fatalf("OpenCache: %v", err)
	}
	t.Cleanup(func() { cache.Close() })
	return cache
}

func testScan(name string) models.ScanHistoryItem {
	return models.NewHistoryItem(models.ScanResult{
		ProductName:        name,
		Category:           models.CategoryFood,
		Icon:               "🍫",
		Status:             models.StatusSafe,
		Score:              80,
		Explanation:        "fine",
		Ingredients:        []models.IngredientFinding{},
		FullIngredientList: "sugar, cocoa",
		Alternatives:       []models.Alternative{},
		Food:               &models.FoodDetails{NutriScore: models.GradeB},
	})
}

func TestCacheProfileRoundtrip(t *testing.T) {
	cache := openTestCache(t, 10)
	user := uuid.New()

	if _, ok := cache.GetProfile(user); ok {
		t.Fatal("unexpected hit on empty cache")
	}

	profile := models.UserProfile{
		Name:              "Ana",
		Condition:         models.ConditionPregnancy,
		AdditionalContext: []string{"second trimester"},
		CurrentSymptoms:   []string{},
		Language:          models.LangEnglish,
	}
	cache.SetProfile(user, profile)

	got, ok := cache.GetProfile(user)
	if !ok {
		t.Fatal("miss after SetProfile")
	}
	if got.Name != profile.Name || got.Condition != profile.Condition {
		t.Errorf("got %+v, want %+v", got, profile)
	}
}

func TestCacheHistoryCap(t *testing.T) {
	cache := openTestCache(t, 10)
	user := uuid.New()

	items := make([]models.ScanHistoryItem, 0, 14)
	for i := 0; i < 14; i++ {
		items = append(items, testScan("product"))
	}
	cache.SetHistory(user, items)

	got, ok := cache.GetHistory(user)
	if !ok {
		t.Fatal("miss after SetHistory")
	}
	if len(got) != 10 {
		t.Errorf("len(history) = %d, want 10", len(got))
	}
	// The newest entries (head of the slice) survive the truncation.
	if got[0].ID != items[0].ID {
		t.Error("truncation dropped the newest entry")
	}
}

func TestCacheToggleFavorite(t *testing.T) {
	cache := openTestCache(t, 10)
	user := uuid.New()
	scan := testScan("chocolate")
	cache.SetHistory(user, []models.ScanHistoryItem{scan})

	fav, ok := cache.ToggleFavorite(user, scan.ID)
	if !ok || !fav {
		t.Fatalf("first toggle = (%v, %v), want (true, true)", fav, ok)
	}
	fav, ok = cache.ToggleFavorite(user, scan.ID)
	if !ok || fav {
		t.Fatalf("second toggle = (%v, %v), want (false, true)", fav, ok)
	}

	if _, ok := cache.ToggleFavorite(user, uuid.New()); ok {
		t.Error("toggle on unknown scan reported ok")
	}
}

func TestCacheCorruptEntrySelfHeals(t *testing.T) {
	cache := openTestCache(t, 10)
	user := uuid.New()

	if _, err := cache.db.Exec(
		"insert into cached_profiles (user_id, payload) values (?, ?)",
		user.String(), []byte("{not json"),
	); err != nil {
		t.Fatalf("seed corrupt row: %v", err)
	}

	if _, ok := cache.GetProfile(user); ok {
		t.Fatal("corrupt entry reported as hit")
	}

	// The row is gone; a fresh write works again.
	var n int
	if err := cache.db.QueryRow(
		"select count(*) from cached_profiles where user_id = ?", user.String(),
	).Scan(&n); err != nil {
		t.Fatalf("count rows: %v", err)
	}
	if n != 0 {
		t.Errorf("corrupt row still present (count = %d)", n)
	}
}

func TestCacheClear(t *testing.T) {
	cache := openTestCache(t, 10)
	user := uuid.New()
	other := uuid.New()

	cache.SetProfile(user, models.UserProfile{Condition: models.ConditionNone})
	cache.SetHistory(user, []models.ScanHistoryItem{testScan("a")})
	cache.SetProfile(other, models.UserProfile{Condition: models.ConditionNone})

	cache.Clear(user)

	if _, ok := cache.GetProfile(user); ok {
		t.Error("profile survived Clear")
	}
	if _, ok := cache.GetHistory(user); ok {
		t.Error("history survived Clear")
	}
	if _, ok := cache.GetProfile(other); !ok {
		t.Error("Clear removed another user's data")
	}
}
