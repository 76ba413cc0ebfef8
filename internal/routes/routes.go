package routes

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"VITALSENSE_BACK-END/internal/config"
	"VITALSENSE_BACK-END/internal/handlers"
	"VITALSENSE_BACK-END/internal/middleware"
)

// Handlers bundles everything SetupRoutes wires into the mux.
type Handlers struct {
	Auth           *handlers.AuthHandler
	GoogleAuth     *handlers.GoogleAuthHandler
	ForgotPassword *handlers.ForgotPasswordHandler
	Profile        *handlers.ProfileHandler
	Scans          *handlers.ScanHandler
	Health         *handlers.HealthHandler
}

// SetupRoutes configures all application routes
func SetupRoutes(h Handlers, jwtCfg *config.JWTConfig) {
	// Health check routes
	http.HandleFunc("/healthz", h.Health.HealthCheck)
	http.HandleFunc("/livez", h.Health.LivenessCheck)
	http.HandleFunc("/readyz", h.Health.ReadinessCheck)

	// Authentication routes
	http.HandleFunc("/api/auth/register", h.Auth.Register)
	http.HandleFunc("/api/auth/login", h.Auth.Login)
	http.HandleFunc("/api/auth/signout", middleware.AuthMiddleware(h.Auth.SignOut, jwtCfg))
	http.HandleFunc("/api/auth/me", middleware.AuthMiddleware(h.Auth.Me, jwtCfg))
	http.HandleFunc("/api/auth/google/login", h.GoogleAuth.GoogleLogin)
	http.HandleFunc("/api/auth/google/callback", h.GoogleAuth.GoogleCallback)
	http.HandleFunc("/api/auth/forgot-password", h.ForgotPassword.ForgotPassword)
	http.HandleFunc("/api/auth/verify-otp", h.ForgotPassword.VerifyOTP)
	http.HandleFunc("/api/auth/reset-password", h.ForgotPassword.ResetPassword)

	// Health profile routes
	http.HandleFunc("/api/profile", middleware.AuthMiddleware(profileDispatch(h.Profile), jwtCfg))

	// Scan routes
	http.HandleFunc("/api/scans", middleware.AuthMiddleware(scansDispatch(h.Scans), jwtCfg))
	http.HandleFunc("/api/scans/", middleware.AuthMiddleware(h.Scans.ToggleFavorite, jwtCfg))

	// API documentation
	http.HandleFunc("/swagger/", httpSwagger.WrapHandler)

	// Root route
	http.HandleFunc("/", rootHandler)
}

func profileDispatch(h *handlers.ProfileHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			h.GetProfile(w, r)
		case http.MethodPut:
			h.UpdateProfile(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

func scansDispatch(h *handlers.ScanHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			h.Analyze(w, r)
		case http.MethodGet:
			h.List(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

func rootHandler(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("VitalSense backend is running."))
}
