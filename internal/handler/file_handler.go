package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"vaultdrive/internal/auth"
	"vaultdrive/internal/domain"
	"vaultdrive/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type FileHandler struct {
	fileService *service.FileService
}

func NewFileHandler(fileService *service.FileService) *FileHandler {
	return &FileHandler{fileService: fileService}
}

// UploadFile обрабатывает загрузку файла. Тело читается потоково через
// multipart.Reader, файл уходит в хранилище частями и целиком в память
// не попадает. Поля формы (folder_id) должны идти до части с файлом.
func (h *FileHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.VerifyToken(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	mr, err := r.MultipartReader()
	if err != nil {
		http.Error(w, "Expected multipart form", http.StatusBadRequest)
		return
	}

	var folderID *int64
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			http.Error(w, "No file uploaded", http.StatusBadRequest)
			return
		}
		if err != nil {
			log.Printf("[Upload] Ошибка чтения multipart: %v", err)
			http.Error(w, "Failed to read form", http.StatusBadRequest)
			return
		}

		if part.FormName() == "folder_id" {
			raw, err := io.ReadAll(io.LimitReader(part, 64))
			if err != nil {
				http.Error(w, "Invalid folder ID", http.StatusBadRequest)
				return
			}
			id, err := strconv.ParseInt(strings.TrimSpace(string(raw)), 10, 64)
			if err != nil {
				http.Error(w, "Invalid folder ID", http.StatusBadRequest)
				return
			}
			folderID = &id
			continue
		}

		if part.FormName() != "file" {
			part.Close()
			continue
		}

		upload := domain.FileUpload{
			OriginalName: part.FileName(),
			MIMEType:     part.Header.Get("Content-Type"),
			Encoding:     part.Header.Get("Content-Transfer-Encoding"),
			FolderID:     folderID,
			OwnerID:      userID,
		}
		if upload.MIMEType == "" {
			upload.MIMEType = "application/octet-stream"
		}

		file, err := h.fileService.SaveFile(r.Context(), upload, r.ContentLength, part)
		part.Close()
		if err != nil {
			respondError(w, err)
			return
		}

		log.Printf("[Upload] Файл %s загружен пользователем %s", file.UUID, userID)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(file)
		return
	}
}

// DownloadFile отдаёт содержимое файла потоково из хранилища.
func (h *FileHandler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.VerifyToken(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	fileUUID, err := uuid.Parse(chi.URLParam(r, "uuid"))
	if err != nil {
		http.Error(w, "Invalid file UUID", http.StatusBadRequest)
		return
	}

	file, obj, err := h.fileService.DownloadFile(r.Context(), fileUUID, userID)
	if err != nil {
		respondError(w, err)
		return
	}
	defer obj.Close()

	writeFileResponse(w, file.OriginalName, file.MIMEType, file.SizeBytes, obj)
}

func (h *FileHandler) GetFileInfo(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.VerifyToken(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	fileUUID, err := uuid.Parse(chi.URLParam(r, "uuid"))
	if err != nil {
		http.Error(w, "Invalid file UUID", http.StatusBadRequest)
		return
	}

	file, err := h.fileService.GetFile(r.Context(), fileUUID, userID)
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(file)
}

func (h *FileHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.VerifyToken(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	fileUUID, err := uuid.Parse(chi.URLParam(r, "uuid"))
	if err != nil {
		http.Error(w, "Invalid file UUID", http.StatusBadRequest)
		return
	}

	if err := h.fileService.DeleteFile(r.Context(), fileUUID, userID); err != nil {
		respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *FileHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.VerifyToken(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var folderID *int64
	if raw := r.URL.Query().Get("folder_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			http.Error(w, "Invalid folder ID", http.StatusBadRequest)
			return
		}
		folderID = &id
	}

	files, err := h.fileService.ListFiles(r.Context(), userID, folderID)
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(files)
}

// writeFileResponse выставляет заголовки скачивания и копирует поток в ответ.
// Имя файла кодируется по RFC 5987, иначе не-ASCII имена ломают заголовок.
func writeFileResponse(w http.ResponseWriter, name, mimeType string, size int64, body io.Reader) {
	encodedName := url.QueryEscape(name)
	asciiName := strings.ReplaceAll(name, `"`, `\"`)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`, asciiName, encodedName))
	w.Header().Set("Content-Type", mimeType)
	if size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	}

	if _, err := io.Copy(w, body); err != nil {
		log.Printf("[Download] Ошибка при отправке файла: %v", err)
	}
}
