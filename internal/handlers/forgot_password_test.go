package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"VITALSENSE_BACK-END/internal/config"
)

type fakeRow struct {
	scan func(dest ...any) error
}

func (r fakeRow) Scan(dest ...any) error { return r.scan(dest...) }

type fakeAuthDB struct {
	userID   uuid.UUID
	hasUser  bool
	lastSent time.Time
	hasSent  bool
	execs    int
}

func (f *fakeAuthDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	switch {
	case strings.Contains(sql, "FROM users"):
		return fakeRow{scan: func(dest ...any) error {
			if !f.hasUser {
				return pgx.ErrNoRows
			}
			*(dest[0].(*uuid.UUID)) = f.userID
			return nil
		}}
	case strings.Contains(sql, "FROM auth_verifications"):
		return fakeRow{scan: func(dest ...any) error {
			if !f.hasSent {
				return pgx.ErrNoRows
			}
			*(dest[0].(*time.Time)) = f.lastSent
			return nil
		}}
	}
	return fakeRow{scan: func(...any) error { return errors.New("unexpected query") }}
}

func (f *fakeAuthDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.execs++
	return pgconn.CommandTag{}, nil
}

func (f *fakeAuthDB) Begin(ctx context.Context) (pgx.Tx, error) {
	return nil, errors.New("not supported")
}

// The forgot-password endpoint must answer identically whether the address is
// unknown or a code was sent recently. Any observable difference lets a caller
// enumerate registered accounts.
func TestForgotPasswordUniformResponse(t *testing.T) {
	cfg := &config.JWTConfig{Secret: "test-secret", ResetTokenTTL: 15 * time.Minute}

	send := func(db *fakeAuthDB) *httptest.ResponseRecorder {
		h := &ForgotPasswordHandler{db: db, jwtCfg: cfg}
		req := httptest.NewRequest(http.MethodPost, "/api/auth/forgot-password",
			strings.NewReader(`{"email":"ana@example.com"}`))
		rec := httptest.NewRecorder()
		h.ForgotPassword(rec, req)
		return rec
	}

	unknown := send(&fakeAuthDB{hasUser: false})
	if unknown.Code != http.StatusOK {
		t.Fatalf("unknown email status = %d, want %d", unknown.Code, http.StatusOK)
	}

	throttled := &fakeAuthDB{
		userID:   uuid.New(),
		hasUser:  true,
		hasSent:  true,
		lastSent: time.Now(),
	}
	cooldown := send(throttled)
	if cooldown.Code != http.StatusOK {
		t.Fatalf("cooldown status = %d, want %d", cooldown.Code, http.StatusOK)
	}
	if throttled.execs != 0 {
		t.Errorf("cooldown wrote %d rows, want none", throttled.execs)
	}

	if unknown.Body.String() != cooldown.Body.String() {
		t.Errorf("responses differ:\nunknown:  %s\ncooldown: %s",
			unknown.Body.String(), cooldown.Body.String())
	}
}
