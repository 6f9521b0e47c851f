package http

import (
	"log/slog"
	"net/http"

	"github.com/absensigeo/absensi-backend-go/internal/domain/evidence"
	"github.com/absensigeo/absensi-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type EvidenceHandler interface {
	Upload(w http.ResponseWriter, r *http.Request)
	My(w http.ResponseWriter, r *http.Request)
	ListForUser(w http.ResponseWriter, r *http.Request)
}

type evidenceHandlerImpl struct {
	evidenceService evidence.EvidenceService
}

func NewEvidenceHandler(evidenceService evidence.EvidenceService) EvidenceHandler {
	return &evidenceHandlerImpl{
		evidenceService: evidenceService,
	}
}

// Upload expects multipart with JSON in "data" and the document in "file".
func (h *evidenceHandlerImpl) Upload(w http.ResponseWriter, r *http.Request) {
	var req evidence.UploadEvidenceRequest
	if !decodeMultipart(w, r, &req) {
		return
	}

	file, header, ok := formFile(w, r, "file")
	if !ok {
		return
	}
	defer closeFile(file)
	req.File, req.FileHeader = file, header

	result, err := h.evidenceService.Upload(r.Context(), req)
	if err != nil {
		slog.Error("Upload evidence service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Teaching evidence uploaded", result)
}

func (h *evidenceHandlerImpl) My(w http.ResponseWriter, r *http.Request) {
	result, err := h.evidenceService.MyHistory(r.Context(), evidence.HistoryFilter{Days: queryInt(r, "days")})
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

func (h *evidenceHandlerImpl) ListForUser(w http.ResponseWriter, r *http.Request) {
	filter := evidence.HistoryFilter{Days: queryInt(r, "days")}
	result, err := h.evidenceService.ListForUser(r.Context(), chi.URLParam(r, "id"), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}
