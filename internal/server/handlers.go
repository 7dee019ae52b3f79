package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hyperjump/jcsdl/internal/indexer"
	"github.com/hyperjump/jcsdl/internal/jcsdl"
	"github.com/hyperjump/jcsdl/internal/models"
	"github.com/hyperjump/jcsdl/internal/storage"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// errorResponse is the body of every failed request. Kind, Filter and Suggestion
// are set for codec errors.
type errorResponse struct {
	Error      string `json:"error"`
	Kind       string `json:"kind,omitempty"`
	Filter     *int   `json:"filter,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

type documentResponse struct {
	Document *models.SavedDocument `json:"document"`
	Version  string                `json:"version,omitempty"`
	Filters  []*models.Filter      `json:"filters"`
	Error    string                `json:"error,omitempty"`
	Kind     string                `json:"kind,omitempty"`
}

func (s *Server) handleEncode(w http.ResponseWriter, r *http.Request) {
	var req models.EncodeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("encode request", zap.Int("filters", len(req.Filters)), zap.String("logic", string(req.Logic)))
	text, skipped := s.codec().EncodeDetailed(&models.Document{Logic: req.Logic, Filters: req.Filters})
	resp := &models.EncodeResponse{JCSDL: text}
	for _, err := range skipped {
		sf := &models.SkippedFilter{Kind: jcsdl.Kind(err), Reason: err.Error()}
		var fe *jcsdl.FilterError
		if errors.As(err, &fe) {
			sf.Index = fe.Index
			sf.Path = fe.Path
			sf.Reason = fe.Err.Error()
		}
		resp.Skipped = append(resp.Skipped, sf)
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	text, ok := s.readText(w, r)
	if !ok {
		return
	}
	doc, err := s.codec().Decode(text)
	if err != nil {
		s.respondCodecError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, doc)
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	text, ok := s.readText(w, r)
	if !ok {
		return
	}
	resp := &models.VerifyResponse{Valid: true}
	doc, err := s.codec().Decode(text)
	if err != nil {
		resp.Valid = false
		resp.Kind = jcsdl.Kind(err)
		resp.Error = err.Error()
	} else {
		resp.Filters = len(doc.Filters)
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// readText reads a raw JCSDL body, accepting a JSON {"jcsdl": "..."} envelope too.
func (s *Server) readText(w http.ResponseWriter, r *http.Request) (string, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.respondError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return "", false
	}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var env struct {
			JCSDL string `json:"jcsdl"`
		}
		if err := json.Unmarshal(body, &env); err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid request body")
			return "", false
		}
		return env.JCSDL, true
	}
	return string(body), true
}

func (s *Server) handleSchemaTargets(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string][]string{"targets": s.schemas.Current().TargetNames()})
}

func (s *Server) handleSchemaFields(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string][]string{"fields": s.schemas.Current().FieldPaths()})
}

func (s *Server) handleSaveDocument(w http.ResponseWriter, r *http.Request) {
	var input models.DocumentInput
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&input); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("save document request", zap.String("id", input.ID), zap.String("name", input.Name))
	saved, err := s.indexer.SaveDocument(r.Context(), &input)
	switch {
	case err == nil:
		s.respondJSON(w, http.StatusCreated, saved)
	case errors.Is(err, indexer.ErrInvalidInput):
		s.respondError(w, http.StatusBadRequest, err.Error())
	case jcsdl.Kind(err) != "":
		s.respondCodecError(w, err)
	default:
		s.logger.Error("save failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	offset := queryInt(r, "offset", 0)
	limit := queryInt(r, "limit", defaultPageSize)
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	ctx := r.Context()
	docs, err := s.storage.ListDocuments(ctx, offset, limit)
	if err != nil {
		s.logger.Error("list documents failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	total, err := s.storage.CountDocuments(ctx)
	if err != nil {
		s.logger.Error("count documents failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if docs == nil {
		docs = []*models.SavedDocument{}
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"documents": docs, "total": total})
}

func (s *Server) handleSearchDocuments(w http.ResponseWriter, r *http.Request) {
	query := &models.SearchQuery{
		Query:  r.URL.Query().Get("q"),
		Target: r.URL.Query().Get("target"),
		Limit:  queryInt(r, "limit", 0),
	}
	if err := query.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Debug("search request", zap.String("query", query.Query), zap.String("target", query.Target))
	response, err := s.engine.Search(r.Context(), query)
	if err != nil {
		s.logger.Error("search failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, response)
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	saved, doc, err := s.indexer.GetDocument(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, "document not found")
		return
	}
	if saved == nil {
		s.logger.Error("get document failed", zap.String("id", id), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := &documentResponse{Document: saved, Filters: []*models.Filter{}}
	if err != nil {
		// stored before a schema change that no longer resolves its filters
		resp.Error = err.Error()
		resp.Kind = jcsdl.Kind(err)
	} else {
		resp.Version = doc.Version
		resp.Filters = doc.Filters
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.logger.Debug("delete document request", zap.String("id", id))
	err := s.indexer.DeleteDocument(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, "document not found")
		return
	}
	if err != nil {
		s.logger.Error("deletion failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	docCount, err := s.storage.CountDocuments(ctx)
	if err != nil {
		s.logger.Error("status: count documents failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	refCount, err := s.storage.CountFilterRefs(ctx)
	if err != nil {
		s.logger.Error("status: count filters failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	def := s.schemas.Current()
	resp := map[string]interface{}{
		"documents": docCount,
		"filters":   refCount,
		"schema": map[string]interface{}{
			"path":      s.schemas.Path(),
			"targets":   len(def.Targets),
			"operators": len(def.Operators),
		},
	}
	if s.config != nil {
		resp["codec"] = s.config.Codec
		fp, err := storage.MeasureFootprint(s.config.Storage.DatabasePath, s.config.Storage.IndexPath)
		if err == nil {
			resp["disk_usage_bytes"] = fp
		}
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// respondCodecError maps a codec error to a status: tampering is 422, every other
// kind is a client error.
func (s *Server) respondCodecError(w http.ResponseWriter, err error) {
	resp := &errorResponse{Error: err.Error(), Kind: jcsdl.Kind(err)}
	var fe *jcsdl.FilterError
	if errors.As(err, &fe) {
		index := fe.Index
		resp.Filter = &index
	}
	var ie *jcsdl.IntegrityError
	if errors.As(err, &ie) && ie.Filter >= 0 {
		index := ie.Filter
		resp.Filter = &index
	}
	resp.Suggestion = s.schemas.Current().Suggest(err)

	status := http.StatusBadRequest
	if resp.Kind == jcsdl.KindIntegrity {
		status = http.StatusUnprocessableEntity
	}
	s.respondJSON(w, status, resp)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, &errorResponse{Error: message})
}
