package http

import (
	"net/http"

	"github.com/absensigeo/absensi-backend-go/internal/domain/letter"
	"github.com/absensigeo/absensi-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type LetterHandler interface {
	Upload(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

type letterHandlerImpl struct {
	letterService letter.LetterService
}

func NewLetterHandler(letterService letter.LetterService) LetterHandler {
	return &letterHandlerImpl{
		letterService: letterService,
	}
}

func (h *letterHandlerImpl) Upload(w http.ResponseWriter, r *http.Request) {
	var req letter.UploadLetterRequest
	if !decodeMultipart(w, r, &req) {
		return
	}

	file, header, ok := formFile(w, r, "file")
	if !ok {
		return
	}
	defer closeFile(file)
	req.File, req.FileHeader = file, header

	result, err := h.letterService.Upload(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Letter template uploaded", result)
}

func (h *letterHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	result, err := h.letterService.List(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

func (h *letterHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.letterService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}
	response.NoContent(w)
}
