package middlewares

import (
	"crypto/subtle"
	"log"
	"net/http"
	"slices"

	"github.com/buildatscale/bas-server/internal/utils"
	"github.com/go-chi/cors"
)

const AdminKeyHeader = "X-Admin-Key"

type MiddlewareHandler struct {
	Logger         *log.Logger
	AdminAPIKey    string
	AllowedOrigins []string
	cors           func(http.Handler) http.Handler
}

func NewMiddlewareHandler(logger *log.Logger, adminAPIKey string, allowedOrigins []string) *MiddlewareHandler {
	return &MiddlewareHandler{
		Logger:         logger,
		AdminAPIKey:    adminAPIKey,
		AllowedOrigins: allowedOrigins,
		cors: cors.Handler(cors.Options{
			AllowedOrigins:   allowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Requested-With", AdminKeyHeader},
			ExposedHeaders:   []string{"Authorization"},
			AllowCredentials: true,
			MaxAge:           86400, // 24 hours
		}),
	}
}

// AuthenticateAdmin requires the X-Admin-Key header to match the configured
// key. With no key configured every request is refused.
func (mh *MiddlewareHandler) AuthenticateAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if mh.AdminAPIKey == "" {
			mh.Logger.Println("Admin request refused: ADMIN_API_KEY not configured")
			utils.WriteJSON(w, http.StatusUnauthorized, utils.Envelope{"error": "Admin access required"})
			return
		}

		key := r.Header.Get(AdminKeyHeader)
		if subtle.ConstantTimeCompare([]byte(key), []byte(mh.AdminAPIKey)) != 1 {
			mh.Logger.Printf("Invalid admin key from %s", r.RemoteAddr)
			utils.WriteJSON(w, http.StatusUnauthorized, utils.Envelope{"error": "Admin access required"})
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (mh *MiddlewareHandler) Cors(next http.Handler) http.Handler {
	withHeaders := mh.cors(next)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		if origin != "" && !mh.isOriginAllowed(origin) {
			mh.Logger.Printf("Origin not allowed: %s", origin)
			utils.WriteJSON(w, http.StatusForbidden, utils.Envelope{"error": "Origin not allowed"})
			return
		}

		withHeaders.ServeHTTP(w, r)
	})
}

func (mh *MiddlewareHandler) RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		mh.Logger.Printf("Request: %s %s | Origin: %s",
			r.Method, r.URL.Path, origin)

		next.ServeHTTP(w, r)
	})
}

func (mh *MiddlewareHandler) Security(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		next.ServeHTTP(w, r)
	})
}

func (mh *MiddlewareHandler) isOriginAllowed(origin string) bool {
	return slices.Contains(mh.AllowedOrigins, "*") || slices.Contains(mh.AllowedOrigins, origin)
}
