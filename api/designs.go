package api

import (
	"log"
	"net/http"

	"github.com/stsysd/livery/model"
	"github.com/stsysd/livery/swatch"
)

// DesignParams はパスからデザインを指定するパラメータです。
type DesignParams struct {
	DesignID string
}

// NewDesignParams はHTTPリクエストからDesignParamsを作成します。
func NewDesignParams(r *http.Request) (*DesignParams, error) {
	id, err := model.ParseDesignID(r.PathValue("design_id"))
	if err != nil {
		return nil, err
	}
	return &DesignParams{DesignID: id.String()}, nil
}

// UpsertDesignParams はデザインの作成・更新のパラメータです。
type UpsertDesignParams struct {
	Name       string
	Selections map[string]model.MaterialSelection
}

// NewUpsertDesignParams はHTTPリクエストからUpsertDesignParamsを作成します。
func NewUpsertDesignParams(w http.ResponseWriter, r *http.Request) (*UpsertDesignParams, error) {
	var requestBody struct {
		Name       string                             `json:"name"`
		Selections map[string]model.MaterialSelection `json:"selections"`
	}
	if err := decodeJSON(w, r, &requestBody); err != nil {
		return nil, err
	}
	return &UpsertDesignParams{Name: requestBody.Name, Selections: requestBody.Selections}, nil
}

// RejectDesignParams は差し戻しのパラメータです。
type RejectDesignParams struct {
	DesignID string
	Reason   string
}

// NewRejectDesignParams はHTTPリクエストからRejectDesignParamsを作成します。
// 理由の検証は状態の確認の後に行うため、ここでは検証しません。
func NewRejectDesignParams(w http.ResponseWriter, r *http.Request) (*RejectDesignParams, error) {
	designParams, err := NewDesignParams(r)
	if err != nil {
		return nil, err
	}
	var requestBody struct {
		Reason string `json:"reason"`
	}
	if err := decodeJSON(w, r, &requestBody); err != nil {
		return nil, err
	}
	return &RejectDesignParams{DesignID: designParams.DesignID, Reason: requestBody.Reason}, nil
}

// DesignListResponse はデザイン一覧のレスポンスです。
type DesignListResponse struct {
	Designs []*model.Design `json:"designs"`
}

// SubmissionListResponse は提出一覧のレスポンスです。
type SubmissionListResponse struct {
	Submissions []*model.Submission `json:"designs"`
}

func (s *Server) handleCreateDesign(w http.ResponseWriter, r *http.Request) {
	params, err := NewUpsertDesignParams(w, r)
	if err != nil {
		writeServiceError(w, "create design", err)
		return
	}

	design, err := s.designs.Create(r.Context(), currentUser(r.Context()).ID, params.Name, params.Selections)
	if err != nil {
		writeServiceError(w, "create design", err)
		return
	}

	writeJSON(w, http.StatusCreated, design)
}

func (s *Server) handleListDesigns(w http.ResponseWriter, r *http.Request) {
	designs, err := s.designs.List(r.Context(), currentUser(r.Context()).ID)
	if err != nil {
		writeServiceError(w, "list designs", err)
		return
	}
	if designs == nil {
		designs = []*model.Design{}
	}

	writeJSON(w, http.StatusOK, DesignListResponse{Designs: designs})
}

func (s *Server) handleGetDesign(w http.ResponseWriter, r *http.Request) {
	params, err := NewDesignParams(r)
	if err != nil {
		writeServiceError(w, "get design", err)
		return
	}

	design, err := s.designs.Get(r.Context(), currentUser(r.Context()).ID, params.DesignID)
	if err != nil {
		writeServiceError(w, "get design", err)
		return
	}

	writeJSON(w, http.StatusOK, design)
}

func (s *Server) handleUpdateDesign(w http.ResponseWriter, r *http.Request) {
	designParams, err := NewDesignParams(r)
	if err != nil {
		writeServiceError(w, "update design", err)
		return
	}
	params, err := NewUpsertDesignParams(w, r)
	if err != nil {
		writeServiceError(w, "update design", err)
		return
	}

	design, err := s.designs.Update(r.Context(), currentUser(r.Context()).ID, designParams.DesignID, params.Name, params.Selections)
	if err != nil {
		writeServiceError(w, "update design", err)
		return
	}

	writeJSON(w, http.StatusOK, design)
}

func (s *Server) handleSubmitDesign(w http.ResponseWriter, r *http.Request) {
	params, err := NewDesignParams(r)
	if err != nil {
		writeServiceError(w, "submit design", err)
		return
	}

	design, err := s.designs.Submit(r.Context(), currentUser(r.Context()).ID, params.DesignID)
	if err != nil {
		writeServiceError(w, "submit design", err)
		return
	}

	writeJSON(w, http.StatusOK, design)
}

// handleGetSwatch はデザインの配色をSVGのスウォッチとして返します。
func (s *Server) handleGetSwatch(w http.ResponseWriter, r *http.Request) {
	params, err := NewDesignParams(r)
	if err != nil {
		writeServiceError(w, "render swatch", err)
		return
	}

	design, err := s.designs.Get(r.Context(), currentUser(r.Context()).ID, params.DesignID)
	if err != nil {
		writeServiceError(w, "render swatch", err)
		return
	}

	svg := s.swatches.Render(design.Name, swatch.FromSelections(s.designs.Catalog(), design.Selections))

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(svg)); err != nil {
		log.Printf("Error writing SVG response: %v", err)
	}
}

func (s *Server) handleListSubmissions(w http.ResponseWriter, r *http.Request) {
	submissions, err := s.designs.ListSubmissions(r.Context(), currentAdmin(r.Context()))
	if err != nil {
		writeServiceError(w, "list submissions", err)
		return
	}
	if submissions == nil {
		submissions = []*model.Submission{}
	}

	writeJSON(w, http.StatusOK, SubmissionListResponse{Submissions: submissions})
}

func (s *Server) handleApproveDesign(w http.ResponseWriter, r *http.Request) {
	params, err := NewDesignParams(r)
	if err != nil {
		writeServiceError(w, "approve design", err)
		return
	}

	design, err := s.designs.Approve(r.Context(), currentAdmin(r.Context()), params.DesignID)
	if err != nil {
		writeServiceError(w, "approve design", err)
		return
	}

	writeJSON(w, http.StatusOK, design)
}

func (s *Server) handleRejectDesign(w http.ResponseWriter, r *http.Request) {
	params, err := NewRejectDesignParams(w, r)
	if err != nil {
		writeServiceError(w, "reject design", err)
		return
	}

	design, err := s.designs.Reject(r.Context(), currentAdmin(r.Context()), params.DesignID, params.Reason)
	if err != nil {
		writeServiceError(w, "reject design", err)
		return
	}

	writeJSON(w, http.StatusOK, design)
}
