package handlers

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"log"
	"math/big"
	"net/http"
	"strings"
	"time"

	"VITALSENSE_BACK-END/internal/config"
	"VITALSENSE_BACK-END/internal/dto"
	"VITALSENSE_BACK-END/internal/middleware"
	"VITALSENSE_BACK-END/internal/utils"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

const (
	codeLength     = 6
	codeTTL        = 10 * time.Minute
	resendCooldown = 60 * time.Second
)

// authDB is the slice of the pool the reset flow needs.
type authDB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

type ForgotPasswordHandler struct {
	db     authDB
	email  *utils.EmailService
	jwtCfg *config.JWTConfig
}

func NewForgotPasswordHandler(db *pgxpool.Pool, email *utils.EmailService, jwtCfg *config.JWTConfig) *ForgotPasswordHandler {
	return &ForgotPasswordHandler{db: db, email: email, jwtCfg: jwtCfg}
}

// forgotAck is the uniform forgot-password response. Every outcome that must
// not leak account state (unknown email, resend cooldown, success) returns an
// identical body.
func forgotAck(email string) dto.ForgotPasswordResponse {
	return dto.ForgotPasswordResponse{
		Message:   "If the email is registered, a verification code has been sent",
		Email:     email,
		ExpiresIn: codeTTL.String(),
	}
}

func generateVerificationCode() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < codeLength; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", codeLength, n), nil
}

// ForgotPassword godoc
// @Summary Request a password reset code
// @Description Emails a 6-digit verification code to the account address
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.ForgotPasswordRequest true "Account email"
// @Success 200 {object} dto.ForgotPasswordResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/auth/forgot-password [post]
func (h *ForgotPasswordHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.WriteErrorResponse(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
		return
	}

	var req dto.ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "invalid_request", "Email is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var userID uuid.UUID
	err := h.db.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, req.Email).Scan(&userID)
	if err == pgx.ErrNoRows {
		// Do not reveal whether the address is registered
		utils.WriteJSONResponse(w, http.StatusOK, forgotAck(req.Email))
		return
	}
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "database_error", "Failed to process request")
		return
	}

	var lastSent time.Time
	err = h.db.QueryRow(ctx,
		`SELECT created_at FROM auth_verifications WHERE user_id = $1 ORDER BY created_at DESC LIMIT 1`,
		userID).Scan(&lastSent)
	if err == nil && time.Since(lastSent) < resendCooldown {
		// Swallow the cooldown behind the uniform response: a 429 here
		// would confirm the address is registered.
		utils.WriteJSONResponse(w, http.StatusOK, forgotAck(req.Email))
		return
	}

	code, err := generateVerificationCode()
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "internal_error", "Failed to generate code")
		return
	}

	_, err = h.db.Exec(ctx,
		`INSERT INTO auth_verifications (id, user_id, email, code, expires_at, used, created_at)
		 VALUES ($1, $2, $3, $4, $5, false, now())`,
		uuid.New(), userID, req.Email, code, time.Now().Add(codeTTL))
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "database_error", "Failed to store verification code")
		return
	}

	if err := h.email.SendVerificationCode(req.Email, code); err != nil {
		log.Printf("forgot-password: email to %s failed: %v", req.Email, err)
	}

	utils.WriteJSONResponse(w, http.StatusOK, forgotAck(req.Email))
}

// VerifyOTP godoc
// @Summary Verify a password reset code
// @Description Exchanges a valid 6-digit code for a short-lived reset token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.VerifyOTPRequest true "Email and code"
// @Success 200 {object} dto.VerifyOTPResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /api/auth/verify-otp [post]
func (h *ForgotPasswordHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.WriteErrorResponse(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
		return
	}

	var req dto.VerifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Code = strings.TrimSpace(req.Code)
	if req.Email == "" || req.Code == "" {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "invalid_request", "Email and code are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var userID uuid.UUID
	var expiresAt time.Time
	var used bool
	err := h.db.QueryRow(ctx,
		`SELECT user_id, expires_at, used FROM auth_verifications
		 WHERE email = $1 AND code = $2 ORDER BY created_at DESC LIMIT 1`,
		req.Email, req.Code).Scan(&userID, &expiresAt, &used)
	if err == pgx.ErrNoRows {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "invalid_code", "Invalid verification code")
		return
	}
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "database_error", "Failed to verify code")
		return
	}
	if used {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "code_used", "Verification code already used")
		return
	}
	if time.Now().After(expiresAt) {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "code_expired", "Verification code has expired")
		return
	}

	resetToken, err := middleware.GenerateResetToken(userID, req.Email, req.Code, h.jwtCfg)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "internal_error", "Failed to generate reset token")
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, dto.VerifyOTPResponse{
		Message:    "Code verified",
		ResetToken: resetToken,
		ExpiresIn:  h.jwtCfg.ResetTokenTTL.String(),
	})
}

// ResetPassword godoc
// @Summary Reset the account password
// @Description Sets a new password using a reset token obtained from verify-otp
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.ResetPasswordRequest true "Reset token and new password"
// @Success 200 {object} dto.ResetPasswordResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /api/auth/reset-password [post]
func (h *ForgotPasswordHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.WriteErrorResponse(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed")
		return
	}

	var req dto.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if req.ResetToken == "" || len(req.NewPassword) < 6 {
		utils.WriteErrorResponse(w, http.StatusBadRequest, "invalid_request",
			"Reset token and a password of at least 6 characters are required")
		return
	}

	claims, err := middleware.ValidateResetToken(req.ResetToken, h.jwtCfg)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "invalid_token", "Invalid or expired reset token")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	tx, err := h.db.Begin(ctx)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "database_error", "Failed to reset password")
		return
	}
	defer tx.Rollback(ctx)

	var verificationID uuid.UUID
	var used bool
	var expiresAt time.Time
	err = tx.QueryRow(ctx,
		`SELECT id, used, expires_at FROM auth_verifications
		 WHERE user_id = $1 AND code = $2 ORDER BY created_at DESC LIMIT 1 FOR UPDATE`,
		claims.UserID, claims.Code).Scan(&verificationID, &used, &expiresAt)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "invalid_token", "Reset token no longer valid")
		return
	}
	if used || time.Now().After(expiresAt) {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "invalid_token", "Reset token no longer valid")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "internal_error", "Failed to hash password")
		return
	}

	if _, err := tx.Exec(ctx, `UPDATE users SET password_hash = $1, updated_at = now() WHERE id = $2`,
		string(hashed), claims.UserID); err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "database_error", "Failed to update password")
		return
	}
	if _, err := tx.Exec(ctx, `UPDATE auth_verifications SET used = true WHERE id = $1`, verificationID); err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "database_error", "Failed to update password")
		return
	}
	if err := tx.Commit(ctx); err != nil {
		utils.WriteErrorResponse(w, http.StatusInternalServerError, "database_error", "Failed to update password")
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, dto.ResetPasswordResponse{Message: "Password reset successfully"})
}
