package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"folio/internal/domain"
	"folio/internal/httputil"
)

// handleError converts domain errors to HTTP responses. Processing failures
// never expose stage details; those go to the log.
func handleError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var (
		processingErr *domain.ContentProcessingError
		conflictErr   *domain.ConflictError
	)

	switch {
	case errors.As(err, &processingErr):
		logger.Warn("content processing failed",
			"stage", processingErr.Stage,
			"error", processingErr.Err,
		)
		httputil.RespondError(w, http.StatusUnprocessableEntity, domain.ErrContentProcessing.Error())
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, "resource not found")
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, err.Error())
	case errors.As(err, &conflictErr):
		httputil.RespondError(w, http.StatusConflict, conflictErr.Error())
	default:
		logger.Error("request failed", "error", err)
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// PathParam reads a required path value, writing a 400 when it is missing.
func PathParam(w http.ResponseWriter, r *http.Request, name, label string) (string, bool) {
	value := r.PathValue(name)
	if value == "" {
		httputil.RespondError(w, http.StatusBadRequest, label+" is required")
		return "", false
	}
	return value, true
}
