package handlers

import (
	"encoding/base64"
	"testing"

	"VITALSENSE_BACK-END/internal/models"
)

func TestDecodeImage(t *testing.T) {
	payload := []byte{0xff, 0xd8, 0xff, 0xe0}
	encoded := base64.StdEncoding.EncodeToString(payload)

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"raw base64", encoded, false},
		{"data url", "data:image/jpeg;base64," + encoded, false},
		{"data url with whitespace", "  data:image/jpeg;base64," + encoded + " ", false},
		{"invalid base64", "not*base64*", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeImage(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Error("decodeImage accepted invalid input")
				}
				return
			}
			if err != nil {
				t.Fatalf("decodeImage: %v", err)
			}
			if string(got) != string(payload) {
				t.Errorf("decoded = %x, want %x", got, payload)
			}
		})
	}
}

func TestFilterScans(t *testing.T) {
	mk := func(favorite bool) models.ScanHistoryItem {
		item := models.NewHistoryItem(models.ScanResult{ProductName: "p"})
		item.IsFavorite = favorite
		return item
	}
	scans := []models.ScanHistoryItem{mk(true), mk(false), mk(true), mk(false), mk(true)}

	tests := []struct {
		name          string
		limit         int
		favoritesOnly bool
		wantLen       int
	}{
		{"all under limit", 10, false, 5},
		{"limit applied", 2, false, 2},
		{"favorites only", 10, true, 3},
		{"favorites with limit", 2, true, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := filterScans(scans, tt.limit, tt.favoritesOnly)
			if len(got) != tt.wantLen {
				t.Errorf("len = %d, want %d", len(got), tt.wantLen)
			}
			if tt.favoritesOnly {
				for _, s := range got {
					if !s.IsFavorite {
						t.Error("non-favorite leaked through the filter")
					}
				}
			}
		})
	}
}
