package upload

import (
	"errors"
	"net/http"

	"cozycorner-be/internal/logger"
	"cozycorner-be/internal/utils"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

func kindFromForm(r *http.Request) string {
	if kind := r.FormValue("type"); kind != "" {
		return kind
	}
	return DefaultType
}

func (h *Handler) Single(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxFileSize+1<<20)
	if err := r.ParseMultipartForm(MaxFileSize); err != nil {
		utils.WriteJSONError(w, "invalid multipart payload", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		utils.WriteJSONError(w, ErrNoFile.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	info, err := h.store.Save(kindFromForm(r), header.Filename, file, header.Size)
	if err != nil {
		writeUploadError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "File uploaded successfully",
		"file":    info,
	})
}

func (h *Handler) Multiple(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBatch*MaxFileSize+1<<20)
	if err := r.ParseMultipartForm(MaxBatch * MaxFileSize); err != nil {
		utils.WriteJSONError(w, "invalid multipart payload", http.StatusBadRequest)
		return
	}

	headers := r.MultipartForm.File["images"]
	if len(headers) == 0 {
		utils.WriteJSONError(w, "no files uploaded", http.StatusBadRequest)
		return
	}
	if len(headers) > MaxBatch {
		utils.WriteJSONError(w, "too many files", http.StatusBadRequest)
		return
	}

	kind := kindFromForm(r)
	uploaded := make([]FileInfo, 0, len(headers))
	for _, header := range headers {
		file, err := header.Open()
		if err != nil {
			utils.WriteJSONError(w, "invalid multipart payload", http.StatusBadRequest)
			return
		}

		info, err := h.store.Save(kind, header.Filename, file, header.Size)
		file.Close()
		if err != nil {
			writeUploadError(w, r, err)
			return
		}
		uploaded = append(uploaded, *info)
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Files uploaded successfully",
		"files":   uploaded,
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	files, err := h.store.List(mux.Vars(r)["type"])
	if err != nil {
		writeUploadError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, files)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	if err := h.store.Delete(vars["type"], vars["filename"]); err != nil {
		writeUploadError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "File deleted successfully"})
}

func writeUploadError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrFileNotFound):
		utils.WriteJSONError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrNoFile),
		errors.Is(err, ErrFileTooLarge),
		errors.Is(err, ErrUnsupportedType),
		errors.Is(err, ErrInvalidName):
		utils.WriteJSONError(w, err.Error(), http.StatusBadRequest)
	default:
		logger.FromCtx(r.Context()).Error("upload request failed", zap.Error(err))
		utils.WriteJSONError(w, "internal server error", http.StatusInternalServerError)
	}
}
