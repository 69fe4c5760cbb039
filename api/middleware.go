package api

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/stsysd/livery/auth"
	"github.com/stsysd/livery/model"
)

type contextKey int

const (
	userKey contextKey = iota
	adminKey
)

// currentUser はrequireUserが検証したユーザーを返します。
func currentUser(ctx context.Context) *model.User {
	user, _ := ctx.Value(userKey).(*model.User)
	return user
}

// currentAdmin はrequireAdminが付与した権限を返します。
func currentAdmin(ctx context.Context) auth.AdminCapability {
	capability, _ := ctx.Value(adminKey).(auth.AdminCapability)
	return capability
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// requireUser はBearerトークンを検証し、ユーザーをコンテキストに設定するミドルウェアです。
func (s *Server) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeJSONError(w, "missing bearer token", http.StatusUnauthorized)
			return
		}

		user, err := s.accounts.Authenticate(r.Context(), token)
		if err != nil {
			writeServiceError(w, "authenticate", err)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, user)))
	})
}

// requireAdmin は管理者シークレットを検証するミドルウェアです。
// X-Admin-Secret がない場合はBearerの値を使います。
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		presented := r.Header.Get("X-Admin-Secret")
		if presented == "" {
			presented = bearerToken(r)
		}

		capability, err := s.admin.Grant(presented)
		if err != nil {
			writeJSONError(w, "invalid admin secret", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), adminKey, capability)))
	})
}

// cors はCORSヘッダーを付与し、プリフライトに応答します。
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.config.AllowedOrigin)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Admin-Secret")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

// logRequests はリクエストIDを付与してアクセスログを出力します。
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := newRequestID()
		w.Header().Set("X-Request-ID", requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		log.Printf("%s %s %s %d %s", requestID, r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}
