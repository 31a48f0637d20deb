package bcmagic

import (
	"crypto/subtle"
	"encoding/base64"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Server handles HTTP requests for barcode magic
type Server struct {
	service   *Service
	basicAuth BasicAuth
	mux       *http.ServeMux
}

// BasicAuth holds basic authentication credentials.
// PasswordHash is a bcrypt hash and takes precedence over Password.
type BasicAuth struct {
	Username     string
	Password     string
	PasswordHash string
}

func (a BasicAuth) enabled() bool {
	return a.Username != "" || a.Password != "" || a.PasswordHash != ""
}

// NewServer creates a new Server with default mux
func NewServer(service *Service, basicAuth BasicAuth) *Server {
	return NewServerWithMux(service, basicAuth, http.NewServeMux())
}

// NewServerWithMux creates a new Server with a custom mux for testing
func NewServerWithMux(service *Service, basicAuth BasicAuth, mux *http.ServeMux) *Server {
	s := &Server{
		service:   service,
		basicAuth: basicAuth,
		mux:       mux,
	}
	s.registerRoutes()
	return s
}

// authenticate checks basic auth credentials
func (s *Server) authenticate(r *http.Request) bool {
	if !s.basicAuth.enabled() {
		return true // No auth required if not configured
	}

	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Basic ") {
		return false
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(auth, "Basic "))
	if err != nil {
		return false
	}

	credentials := strings.SplitN(string(decoded), ":", 2)
	if len(credentials) != 2 {
		return false
	}

	if subtle.ConstantTimeCompare([]byte(credentials[0]), []byte(s.basicAuth.Username)) != 1 {
		return false
	}
	if s.basicAuth.PasswordHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(s.basicAuth.PasswordHash), []byte(credentials[1])) == nil
	}
	return subtle.ConstantTimeCompare([]byte(credentials[1]), []byte(s.basicAuth.Password)) == 1
}

// corsMiddleware adds CORS headers to responses
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		setCORSHeaders(w)

		// Handle preflight OPTIONS requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// requireAuth middleware
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.authenticate(r) {
			setCORSHeaders(w)
			w.Header().Set("WWW-Authenticate", `Basic realm="Barcode Magic"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

// Handle registers an authenticated route. Other packages use it to mount their handlers.
func (s *Server) Handle(pattern string, handler http.HandlerFunc) {
	s.mux.HandleFunc(pattern, s.requireAuth(handler))
}

// registerRoutes registers the barcode magic routes on the server's mux
func (s *Server) registerRoutes() {
	s.Handle("GET /bcmagic/{$}", s.handleIndex)
	s.Handle("POST /bcmagic/magic/{$}", s.handleMagic)
	s.Handle("POST /bcmagic/json_test/{$}", s.handleJSONTest)

	s.Handle("GET /bcmagic/keymaps/{$}", s.handleListKeywordMaps)
	s.Handle("POST /bcmagic/keymaps/{$}", s.handleSaveKeywordMap)
	s.Handle("GET /bcmagic/keymaps/{keyword}/{$}", s.handleGetKeywordMap)
	s.Handle("DELETE /bcmagic/keymaps/{keyword}/{$}", s.handleDeleteKeywordMap)
}

// Start starts the HTTP server
func (s *Server) Start(addr string) error {
	slog.Info("Starting server", "address", addr)
	return http.ListenAndServe(addr, s.corsMiddleware(s.mux))
}

// ServeHTTP implements http.Handler for testing
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
