package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/jonathan/prospect-scout/internal/db"
	"github.com/jonathan/prospect-scout/internal/sources"
	"github.com/jonathan/prospect-scout/internal/types"
)

// CreateRunRequest is the payload for triggering a scan run.
type CreateRunRequest struct {
	// URL points at a page to scan. Mutually exclusive with Items.
	URL string `json:"url,omitempty"`
	// SourceKind selects the extraction strategy for URL scans: "news" or "forum".
	SourceKind string `json:"source_kind,omitempty"`
	UseBrowser bool   `json:"use_browser,omitempty"`

	// Items submits candidate texts inline, e.g. from an imported list.
	Items      []types.CandidateText `json:"items,omitempty"`
	SourceName string                `json:"source_name,omitempty"`
}

// buildSource turns a run request into a signal source.
func (req *CreateRunRequest) buildSource() (sources.TextSource, error) {
	switch {
	case req.URL != "" && len(req.Items) > 0:
		return nil, &ErrValidation{Field: "url", Message: "url and items are mutually exclusive"}
	case req.URL != "":
		switch req.SourceKind {
		case "", string(types.SourceKindNews):
			src := sources.NewArticleSource(req.URL)
			src.UseBrowser = req.UseBrowser
			return src, nil
		case string(types.SourceKindForum):
			src := sources.NewForumSource(req.URL)
			src.UseBrowser = req.UseBrowser
			return src, nil
		default:
			return nil, &ErrValidation{Field: "source_kind", Message: "must be news or forum"}
		}
	case len(req.Items) > 0:
		return &sources.ListSource{SourceName: req.SourceName, Items: req.Items}, nil
	default:
		return nil, &ErrValidation{Field: "url", Message: "either url or items is required"}
	}
}

// handleCreateRun triggers a synchronous scan run over one source.
func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	var req CreateRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	src, err := req.buildSource()
	if err != nil {
		s.serviceError(w, err)
		return
	}

	summary, err := s.engine.Scan(r.Context(), src)
	if err != nil {
		// The summary still reports whatever work completed.
		s.jsonResponse(w, http.StatusBadGateway, summary)
		return
	}
	s.jsonResponse(w, http.StatusCreated, summary)
}

// handleListRuns returns recent scan runs.
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	runs, err := s.db.ListRuns(r.Context(), limit)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"runs": runs})
}

// handleGetRun returns one scan run by ID.
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathUUID(w, r)
	if !ok {
		return
	}

	run, err := s.db.GetRun(r.Context(), id)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	if run == nil {
		s.errorResponse(w, http.StatusNotFound, "run not found")
		return
	}
	s.jsonResponse(w, http.StatusOK, run)
}

// handleListDiscoveries returns discoveries filtered by status and confidence.
func (s *Server) handleListDiscoveries(w http.ResponseWriter, r *http.Request) {
	filters := db.DiscoveryFilters{
		Status:        types.DiscoveryStatus(r.URL.Query().Get("status")),
		MinConfidence: queryInt(r, "min_confidence", 0),
		Limit:         queryInt(r, "limit", 50),
	}

	discoveries, err := s.db.ListDiscoveries(r.Context(), filters)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"discoveries": discoveries})
}

// handleGetDiscovery returns one discovery by ID.
func (s *Server) handleGetDiscovery(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathUUID(w, r)
	if !ok {
		return
	}

	d, err := s.db.GetDiscovery(r.Context(), id)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	if d == nil {
		s.errorResponse(w, http.StatusNotFound, "discovery not found")
		return
	}
	s.jsonResponse(w, http.StatusOK, d)
}

// handleBeginReview moves a discovery into the reviewing state.
func (s *Server) handleBeginReview(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathUUID(w, r)
	if !ok {
		return
	}

	d, err := s.review.BeginReview(r.Context(), id)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, d)
}

// handlePromote confirms a discovery and returns the resulting prospect.
func (s *Server) handlePromote(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathUUID(w, r)
	if !ok {
		return
	}

	p, err := s.review.Promote(r.Context(), id)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, p)
}

// handleDismiss marks a discovery as not interesting.
func (s *Server) handleDismiss(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathUUID(w, r)
	if !ok {
		return
	}

	d, err := s.review.Dismiss(r.Context(), id)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, d)
}

// handleListProspects returns prospects ordered by priority.
func (s *Server) handleListProspects(w http.ResponseWriter, r *http.Request) {
	teamID := r.URL.Query().Get("team")
	if teamID == "" {
		teamID = s.teamID
	}
	filters := db.ProspectFilters{
		TeamID: teamID,
		Status: types.ProspectStatus(r.URL.Query().Get("status")),
		Limit:  queryInt(r, "limit", 50),
	}

	prospects, err := s.db.ListProspects(r.Context(), filters)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"prospects": prospects})
}

// handleGetProspect returns one prospect by ID.
func (s *Server) handleGetProspect(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathUUID(w, r)
	if !ok {
		return
	}

	p, err := s.db.GetProspect(r.Context(), id)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	if p == nil {
		s.errorResponse(w, http.StatusNotFound, "prospect not found")
		return
	}
	s.jsonResponse(w, http.StatusOK, p)
}

// handleGetProspectPaths returns the stored introduction paths for a prospect.
func (s *Server) handleGetProspectPaths(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathUUID(w, r)
	if !ok {
		return
	}

	p, err := s.db.GetProspect(r.Context(), id)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	if p == nil {
		s.errorResponse(w, http.StatusNotFound, "prospect not found")
		return
	}

	paths, err := s.db.GetProspectPaths(r.Context(), id)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"company_domain":   p.CompanyDomain,
		"connection_score": p.ConnectionScore,
		"has_warm_intro":   p.HasWarmIntro,
		"paths":            paths,
	})
}

// handleSubmitFeedback records a reviewer's judgment on a prospect.
func (s *Server) handleSubmitFeedback(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathUUID(w, r)
	if !ok {
		return
	}

	var req types.FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	f, err := s.review.SubmitFeedback(r.Context(), id, &req)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, f)
}

// UndoFeedbackRequest identifies whose feedback to reverse.
type UndoFeedbackRequest struct {
	Reviewer string `json:"reviewer"`
}

// handleUndoFeedback reverses a reviewer's feedback on a prospect.
func (s *Server) handleUndoFeedback(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathUUID(w, r)
	if !ok {
		return
	}

	var req UndoFeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Reviewer == "" {
		s.errorResponse(w, http.StatusBadRequest, "reviewer is required")
		return
	}

	undone, err := s.review.UndoFeedback(r.Context(), id, req.Reviewer)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"undone": undone})
}

// pathUUID parses the {id} path segment, writing a 400 on failure.
func (s *Server) pathUUID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

// queryInt parses an integer query parameter with a default.
func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return def
	}
	return v
}
