package handler

import (
	"log/slog"
	"net/http"

	"folio/internal/config"
	contentSvc "folio/internal/domain/services/content"
	"folio/internal/httputil"
)

// ContentHandler handles content HTTP requests
type ContentHandler struct {
	contentService contentSvc.ContentService
	logger         *slog.Logger
}

// NewContentHandler creates a new content handler
func NewContentHandler(contentService contentSvc.ContentService, logger *slog.Logger) *ContentHandler {
	return &ContentHandler{
		contentService: contentService,
		logger:         logger,
	}
}

// CreateContent processes and stores new content
// POST /api/contents
func (h *ContentHandler) CreateContent(w http.ResponseWriter, r *http.Request) {
	var req contentSvc.CreateContentRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.AuthorID = httputil.GetUserID(r)

	record, err := h.contentService.CreateContent(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, record)
}

// GetContent retrieves a content record
// GET /api/contents/{id}
func (h *ContentHandler) GetContent(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Content ID")
	if !ok {
		return
	}

	record, err := h.contentService.GetContent(r.Context(), id)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, record)
}

// UpdateContent edits title and/or body; derived fields are recomputed
// PATCH /api/contents/{id}
func (h *ContentHandler) UpdateContent(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Content ID")
	if !ok {
		return
	}

	var req contentSvc.UpdateContentRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.AuthorID = httputil.GetUserID(r)

	record, err := h.contentService.UpdateContent(r.Context(), id, &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, record)
}

// DeleteContent deletes a record and reports which inline assets were removed
// DELETE /api/contents/{id}
func (h *ContentHandler) DeleteContent(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Content ID")
	if !ok {
		return
	}

	result, err := h.contentService.DeleteContent(r.Context(), id, httputil.GetUserID(r))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// PreviewContent renders a draft without storing it
// POST /api/contents/preview
func (h *ContentHandler) PreviewContent(w http.ResponseWriter, r *http.Request) {
	var req contentSvc.PreviewContentRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	preview, err := h.contentService.PreviewContent(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, preview)
}

// SearchContent runs a full-text query over titles and plain text
// GET /api/contents/search?q=...&author_id=...&limit=...&offset=...
func (h *ContentHandler) SearchContent(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit, err := httputil.QueryInt(r, "limit", config.DefaultSearchLimit)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	offset, err := httputil.QueryInt(r, "offset", 0)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	results, err := h.contentService.SearchContent(r.Context(), &contentSvc.SearchContentRequest{
		Query:    query.Get("q"),
		AuthorID: query.Get("author_id"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, results)
}

// ExportMarkdown returns the record as lightweight markup
// GET /api/contents/{id}/markdown
func (h *ContentHandler) ExportMarkdown(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Content ID")
	if !ok {
		return
	}

	markdown, err := h.contentService.ExportMarkdown(r.Context(), id)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	httputil.RespondMarkdown(w, id+".md", markdown)
}
