package handler

import "net/http"

// RegisterRoutes mounts every endpoint on mux (Go 1.22+ method patterns).
func RegisterRoutes(mux *http.ServeMux, health *HealthHandler, contents *ContentHandler, assets *AssetHandler) {
	mux.HandleFunc("GET /health", health.HealthCheck)

	// Content routes
	mux.HandleFunc("POST /api/contents", contents.CreateContent)
	mux.HandleFunc("POST /api/contents/preview", contents.PreviewContent)
	mux.HandleFunc("GET /api/contents/search", contents.SearchContent)
	mux.HandleFunc("GET /api/contents/{id}", contents.GetContent)
	mux.HandleFunc("PATCH /api/contents/{id}", contents.UpdateContent)
	mux.HandleFunc("DELETE /api/contents/{id}", contents.DeleteContent)
	mux.HandleFunc("GET /api/contents/{id}/markdown", contents.ExportMarkdown)

	// Asset routes
	mux.HandleFunc("POST /api/files", assets.UploadAsset)
	mux.HandleFunc("GET /api/files/{id}", assets.GetAsset)
}
