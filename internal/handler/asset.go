package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"folio/internal/config"
	models "folio/internal/domain/models/content"
	contentSvc "folio/internal/domain/services/content"
	"folio/internal/httputil"
)

// uploadField is the multipart form field carrying the file.
const uploadField = "file"

// AssetHandler handles uploads and downloads of inline assets
type AssetHandler struct {
	assetService contentSvc.AssetService
	logger       *slog.Logger
}

// NewAssetHandler creates a new asset handler
func NewAssetHandler(assetService contentSvc.AssetService, logger *slog.Logger) *AssetHandler {
	return &AssetHandler{
		assetService: assetService,
		logger:       logger,
	}
}

// uploadResponse is the asset plus the URL authors embed in content.
type uploadResponse struct {
	*models.Asset
	URL string `json:"url"`
}

// UploadAsset stores one multipart file
// POST /api/files
func (h *AssetHandler) UploadAsset(w http.ResponseWriter, r *http.Request) {
	// Headroom for multipart boundaries and headers.
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxAssetBytes+1<<20)

	mr, err := r.MultipartReader()
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "expected a multipart/form-data body")
		return
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			h.respondReadError(w, err)
			return
		}
		if part.FormName() != uploadField {
			part.Close()
			continue
		}

		asset, err := h.assetService.Upload(r.Context(), &contentSvc.UploadAssetRequest{
			Filename: part.FileName(),
			MimeType: part.Header.Get("Content-Type"),
			Body:     part,
		})
		part.Close()
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				h.respondReadError(w, err)
				return
			}
			handleError(w, h.logger, err)
			return
		}

		httputil.RespondJSON(w, http.StatusCreated, uploadResponse{Asset: asset, URL: asset.URL()})
		return
	}

	httputil.RespondError(w, http.StatusBadRequest, "missing form field \""+uploadField+"\"")
}

// GetAsset serves the stored bytes
// GET /api/files/{id}
func (h *AssetHandler) GetAsset(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "File ID")
	if !ok {
		return
	}

	asset, rc, err := h.assetService.Open(r.Context(), id)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", asset.MimeType)
	w.Header().Set("Content-Length", strconv.FormatInt(asset.SizeBytes, 10))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "private, max-age=86400")
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Warn("asset download interrupted", "asset_id", id, "error", err)
	}
}

func (h *AssetHandler) respondReadError(w http.ResponseWriter, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		httputil.RespondError(w, http.StatusRequestEntityTooLarge, "file too large")
		return
	}
	httputil.RespondError(w, http.StatusBadRequest, "malformed multipart body")
}
