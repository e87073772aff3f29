package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/internmatch/internal/catalog"
	"github.com/spigell/internmatch/internal/logger"
	"github.com/spigell/internmatch/internal/matching"
)

const maxBodyBytes = 1 << 20

type rankRequest struct {
	Education string   `json:"education" validate:"max=64"`
	Sector    string   `json:"sector" validate:"max=128"`
	State     string   `json:"state" validate:"max=128"`
	Remote    bool     `json:"remote"`
	Skills    []string `json:"skills" validate:"max=200,dive,max=64"`
	TopN      *int     `json:"top_n" validate:"omitempty,gte=0"`
}

func (r rankRequest) profile() matching.Profile {
	return matching.Profile{
		Education: r.Education,
		Sector:    r.Sector,
		State:     r.State,
		RemoteOK:  r.Remote,
		Skills:    r.Skills,
	}
}

type rankResponse struct {
	TopN    int              `json:"top_n"`
	Count   int              `json:"count"`
	Results []matching.Match `json:"results"`
}

type optionsResponse struct {
	EducationLevels []string `json:"education_levels"`
	Sectors         []string `json:"sectors"`
	States          []string `json:"states"`
	Skills          []string `json:"skills"`
	DefaultTopN     int      `json:"default_top_n"`
}

type formPage struct {
	optionsResponse

	Submitted bool
	Profile   matching.Profile
	Results   []matching.Match
	Error     string
}

func (s *Server) options() optionsResponse {
	c := s.service.Catalog()
	return optionsResponse{
		EducationLevels: catalog.EducationLevels,
		Sectors:         c.Sectors(),
		States:          c.States(),
		Skills:          c.Skills(),
		DefaultTopN:     s.service.DefaultTopN(),
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"postings": s.service.Catalog().Len(),
	})
}

func (s *Server) handleOptions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.options())
}

func (s *Server) handlePosting(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	posting := s.service.Catalog().FindByID(id)
	if posting == nil {
		writeError(w, r, http.StatusNotFound, codeNotFound, "posting "+strconv.Quote(id)+" not found")
		return
	}

	writeJSON(w, http.StatusOK, posting.Clone())
}

func (s *Server) handleRank(w http.ResponseWriter, r *http.Request) {
	var req rankRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, codeBadRequest, "invalid JSON: "+err.Error())
		return
	}

	if err := s.validate.Struct(req); err != nil {
		writeError(w, r, http.StatusBadRequest, codeInvalidArgument, validationMessage(err))
		return
	}

	matches, err := s.service.Recommend(r.Context(), "api", req.profile(), req.TopN)
	if err != nil {
		s.rankFailed(w, r, err)
		return
	}

	topN := s.service.DefaultTopN()
	if req.TopN != nil {
		topN = *req.TopN
	}

	writeJSON(w, http.StatusOK, rankResponse{TopN: topN, Count: len(matches), Results: matches})
}

func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, formPage{optionsResponse: s.options()})
}

func (s *Server) handleFormSubmit(w http.ResponseWriter, r *http.Request) {
	page := formPage{optionsResponse: s.options(), Submitted: true}

	if err := r.ParseForm(); err != nil {
		page.Error = "could not read the form"
		s.render(w, r, http.StatusBadRequest, page)
		return
	}

	page.Profile = matching.Profile{
		Education: r.PostForm.Get("education"),
		Sector:    r.PostForm.Get("sector"),
		State:     r.PostForm.Get("state"),
		RemoteOK:  r.PostForm.Get("remote") == "yes",
		Skills:    r.PostForm["skills"],
	}

	var topN *int
	if raw := strings.TrimSpace(r.PostForm.Get("top_n")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			page.Error = "number of results must be a non-negative integer"
			s.render(w, r, http.StatusBadRequest, page)
			return
		}
		topN = &n
	}

	matches, err := s.service.Recommend(r.Context(), "form", page.Profile, topN)
	if err != nil {
		s.logger.Error("form ranking failed", zap.Error(err))
		page.Error = "could not rank internships"
		s.render(w, r, http.StatusInternalServerError, page)
		return
	}

	page.Results = matches
	s.render(w, r, http.StatusOK, page)
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, page formPage) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.pages.ExecuteTemplate(w, "index.html", page); err != nil {
		logger.ForRequest(s.logger, RequestIDFrom(r.Context()), r.Method, r.URL.Path).
			Error("rendering page", zap.Error(err))
	}
}

func (s *Server) rankFailed(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, matching.ErrInvalidTopN) {
		writeError(w, r, http.StatusBadRequest, codeInvalidArgument, err.Error())
		return
	}

	logger.ForRequest(s.logger, RequestIDFrom(r.Context()), r.Method, r.URL.Path).
		Error("ranking failed", zap.Error(err))
	writeError(w, r, http.StatusInternalServerError, codeInternal, "ranking failed")
}
