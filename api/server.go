// Package api はliveryのAPIサーバー実装を提供します。
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/stsysd/livery/auth"
	"github.com/stsysd/livery/config"
	"github.com/stsysd/livery/model"
	"github.com/stsysd/livery/service"
	"github.com/stsysd/livery/swatch"
)

// リクエストボディの上限
const maxBodyBytes = 1 << 20

// Server はAPIサーバーの構造体です。
type Server struct {
	router   *http.ServeMux
	handler  http.Handler
	designs  *service.Designs
	accounts *service.Accounts
	admin    *auth.AdminGate
	swatches *swatch.Renderer
	config   *config.Config
}

// ErrorResponse はエラーレスポンスの構造体です。
type ErrorResponse struct {
	Error  string          `json:"error"`
	Code   int             `json:"code"`
	Issues []IssueResponse `json:"issues,omitempty"`
}

// IssueResponse は検証エラーの1項目です。
type IssueResponse struct {
	Kind    string `json:"kind"`
	Key     string `json:"key,omitempty"`
	Message string `json:"message"`
}

// writeJSONError はJSON形式でエラーレスポンスを返却します。
func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	writeJSON(w, statusCode, ErrorResponse{Error: message, Code: statusCode})
}

// writeJSON は値をJSONとして書き込みます。
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// writeServiceError はドメインのエラーをHTTPステータスに対応付けて返却します。
func writeServiceError(w http.ResponseWriter, op string, err error) {
	var validationErr *model.ValidationError
	var submissionErr *model.SubmissionError
	var stateErr *model.StateError

	switch {
	case errors.As(err, &validationErr):
		resp := ErrorResponse{Error: validationErr.Error(), Code: http.StatusBadRequest}
		for _, issue := range validationErr.Issues {
			resp.Issues = append(resp.Issues, IssueResponse{
				Kind:    issue.Kind(),
				Key:     issue.Key,
				Message: issue.Err.Error(),
			})
		}
		writeJSON(w, http.StatusBadRequest, resp)
	case errors.As(err, &submissionErr):
		writeJSONError(w, submissionErr.Error(), http.StatusBadRequest)
	case errors.As(err, &stateErr):
		writeJSONError(w, stateErr.Err.Error(), http.StatusConflict)
	case errors.Is(err, model.ErrEmailAlreadyRegistered), errors.Is(err, model.ErrStaleDesign):
		writeJSONError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, model.ErrDesignNotFound):
		writeJSONError(w, "design not found", http.StatusNotFound)
	case errors.Is(err, model.ErrUnauthorized),
		errors.Is(err, model.ErrAdminUnauthorized),
		errors.Is(err, model.ErrInvalidCredentials):
		writeJSONError(w, err.Error(), http.StatusUnauthorized)
	default:
		log.Printf("Error %s: %v", op, err)
		writeJSONError(w, fmt.Sprintf("Failed to %s", op), http.StatusInternalServerError)
	}
}

// decodeJSON はリクエストボディを読み込みます。未知のフィールドは拒否します。
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return model.NewValidationError(fmt.Sprintf("invalid request body: %v", err))
	}
	if dec.More() {
		return model.NewValidationError("invalid request body: unexpected trailing data")
	}
	return nil
}

// NewServer は新しいAPIサーバーインスタンスを生成します。
func NewServer(designs *service.Designs, accounts *service.Accounts, admin *auth.AdminGate, config *config.Config) *Server {
	s := &Server{
		router:   http.NewServeMux(),
		designs:  designs,
		accounts: accounts,
		admin:    admin,
		swatches: swatch.NewRenderer(swatch.DefaultOptions()),
		config:   config,
	}
	s.routes()
	s.handler = s.logRequests(s.cors(s.router))
	return s
}

// routes はAPIエンドポイントのルーティングを設定します。
func (s *Server) routes() {
	// 認証不要のエンドポイント
	s.router.HandleFunc("GET /health", s.handleHealthCheck)
	s.router.HandleFunc("GET /catalog/model", s.handleGetCatalog)
	s.router.HandleFunc("POST /auth/register", s.handleRegister)
	s.router.HandleFunc("POST /auth/login", s.handleLogin)

	// 利用者のエンドポイント
	userHandler := http.NewServeMux()
	userHandler.HandleFunc("GET /me", s.handleGetMe)
	userHandler.HandleFunc("POST /designs", s.handleCreateDesign)
	userHandler.HandleFunc("GET /designs", s.handleListDesigns)
	userHandler.HandleFunc("GET /designs/{design_id}", s.handleGetDesign)
	userHandler.HandleFunc("PUT /designs/{design_id}", s.handleUpdateDesign)
	userHandler.HandleFunc("POST /designs/{design_id}/submit", s.handleSubmitDesign)
	userHandler.HandleFunc("GET /designs/{design_id}/swatch.svg", s.handleGetSwatch)

	securedUser := s.requireUser(userHandler)
	s.router.Handle("/me", securedUser)
	s.router.Handle("/designs", securedUser)
	s.router.Handle("/designs/", securedUser)

	// 管理者のエンドポイント
	adminHandler := http.NewServeMux()
	adminHandler.HandleFunc("GET /admin/submissions", s.handleListSubmissions)
	adminHandler.HandleFunc("POST /admin/designs/{design_id}/approve", s.handleApproveDesign)
	adminHandler.HandleFunc("POST /admin/designs/{design_id}/reject", s.handleRejectDesign)

	s.router.Handle("/admin/", s.requireAdmin(adminHandler))
}

// ServeHTTP はServer構造体をhttp.Handlerとして実装します。
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// handleHealthCheck はヘルスチェックエンドポイントのハンドラーです。
func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// handleGetCatalog は選択可能なマテリアルの一覧を返します。
func (s *Server) handleGetCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.designs.Catalog())
}

func newRequestID() string {
	return "req_" + uuid.NewString()
}
