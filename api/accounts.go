package api

import (
	"net/http"
	"time"
)

// CredentialsParams はログイン・登録のパラメータです。
type CredentialsParams struct {
	Email    string
	Password string
}

// NewCredentialsParams はHTTPリクエストからCredentialsParamsを作成します。
// 形式の検証はアカウント側で行います。
func NewCredentialsParams(w http.ResponseWriter, r *http.Request) (*CredentialsParams, error) {
	var requestBody struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(w, r, &requestBody); err != nil {
		return nil, err
	}
	return &CredentialsParams{Email: requestBody.Email, Password: requestBody.Password}, nil
}

// RegisterResponse は登録成功時のレスポンスです。
type RegisterResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// LoginResponse はログイン成功時のレスポンスです。
type LoginResponse struct {
	Token string `json:"token"`
}

// MeResponse は認証済みユーザーの情報です。
type MeResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	params, err := NewCredentialsParams(w, r)
	if err != nil {
		writeServiceError(w, "register", err)
		return
	}

	user, err := s.accounts.Register(r.Context(), params.Email, params.Password)
	if err != nil {
		writeServiceError(w, "register", err)
		return
	}

	writeJSON(w, http.StatusCreated, RegisterResponse{
		ID:        user.ID,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	params, err := NewCredentialsParams(w, r)
	if err != nil {
		writeServiceError(w, "login", err)
		return
	}

	token, err := s.accounts.Login(r.Context(), params.Email, params.Password)
	if err != nil {
		writeServiceError(w, "login", err)
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{Token: token})
}

func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())
	writeJSON(w, http.StatusOK, MeResponse{ID: user.ID, Email: user.Email})
}
