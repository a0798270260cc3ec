package file

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"mediavault/internal/domain"
	"mediavault/internal/pkg/response"
)

const (
	// boundary limits; the service assumes these were already enforced
	MaxFileSize        = 10 << 20 // 10 MB per file
	MaxAdditionalFiles = 5

	mainField       = "mainFile"
	additionalField = "additionalFiles"
)

type Handler struct {
	service    *Service
	resolve    URLResolver
	stagingDir string
	backend    domain.StorageBackend // backend used for new records
}

func NewHandler(service *Service, resolve URLResolver, stagingDir string, backend domain.StorageBackend) *Handler {
	return &Handler{
		service:    service,
		resolve:    resolve,
		stagingDir: stagingDir,
		backend:    backend,
	}
}

func (h *Handler) RegisterRoutes(g *gin.RouterGroup) {
	files := g.Group("/files")
	{
		files.POST("", h.Create)
		files.GET("", h.List)
		files.GET("/:id", h.Get)
		files.PUT("/:id", h.Update)
		files.DELETE("/:id", h.Delete)
		files.POST("/:id/migrate", h.Migrate)
	}
}

func (h *Handler) Create(c *gin.Context) {
	main, additional, ok := h.stageUploads(c)
	if !ok {
		return
	}

	f, err := h.service.Create(c.Request.Context(), CreateFileInput{
		Name:       c.PostForm("name"),
		Backend:    h.backend,
		Main:       main,
		Additional: additional,
	})
	if err != nil {
		h.serviceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, ProjectURLs(f, h.resolve))
}

func (h *Handler) List(c *gin.Context) {
	files, err := h.service.List(c.Request.Context())
	if err != nil {
		h.serviceError(c, err)
		return
	}

	projected := make([]FileResponse, 0, len(files))
	for i := range files {
		projected = append(projected, ProjectURLs(&files[i], h.resolve))
	}

	response.Success(c, http.StatusOK, gin.H{
		"count": len(projected),
		"files": projected,
	})
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	f, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.serviceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, ProjectURLs(f, h.resolve))
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	main, additional, staged := h.stageUploads(c)
	if !staged {
		return
	}

	f, err := h.service.Update(c.Request.Context(), id, UpdateFileInput{
		Name:       c.PostForm("name"),
		Main:       main,
		Additional: additional,
	})
	if err != nil {
		h.serviceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, ProjectURLs(f, h.resolve))
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.serviceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) Migrate(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req MigrateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "target_storage is required")
		return
	}

	target := domain.StorageBackend(strings.ToLower(req.TargetStorage))
	if !target.Valid() {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR",
			"invalid target storage", gin.H{"valid_types": []domain.StorageBackend{domain.BackendLocal, domain.BackendRemote}})
		return
	}

	f, err := h.service.Migrate(c.Request.Context(), id, target)
	if err != nil {
		h.serviceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, ProjectURLs(f, h.resolve))
}

// stageUploads writes each uploaded part to the staging directory and
// returns the staged metadata. A false result means the response was already
// written.
func (h *Handler) stageUploads(c *gin.Context) (*StagedUpload, []StagedUpload, bool) {
	form, err := c.MultipartForm()
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_FORM", "Failed to parse multipart form")
		return nil, nil, false
	}

	mains := form.File[mainField]
	additionals := form.File[additionalField]

	if len(mains) > 1 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "only one mainFile is allowed")
		return nil, nil, false
	}
	if len(additionals) > MaxAdditionalFiles {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR",
			fmt.Sprintf("at most %d additionalFiles are allowed", MaxAdditionalFiles))
		return nil, nil, false
	}

	// paths already written this request, removed again if a later part fails
	var stagedPaths []string
	discard := func() {
		for _, p := range stagedPaths {
			_ = os.Remove(p)
		}
	}

	var main *StagedUpload
	if len(mains) == 1 {
		staged, err := h.stageOne(c, mains[0], mainField)
		if err != nil {
			discard()
			response.Error(c, http.StatusBadRequest, "UPLOAD_FAILED", err.Error())
			return nil, nil, false
		}
		main = staged
		stagedPaths = append(stagedPaths, staged.Path)
	}

	var additional []StagedUpload
	for _, fh := range additionals {
		staged, err := h.stageOne(c, fh, additionalField)
		if err != nil {
			discard()
			response.Error(c, http.StatusBadRequest, "UPLOAD_FAILED", err.Error())
			return nil, nil, false
		}
		additional = append(additional, *staged)
		stagedPaths = append(stagedPaths, staged.Path)
	}

	return main, additional, true
}

func (h *Handler) stageOne(c *gin.Context, fh *multipart.FileHeader, field string) (*StagedUpload, error) {
	if fh.Size > MaxFileSize {
		return nil, fmt.Errorf("%s exceeds the maximum size of %d bytes", fh.Filename, MaxFileSize)
	}

	if err := os.MkdirAll(h.stagingDir, 0o755); err != nil {
		return nil, fmt.Errorf("create staging directory: %w", err)
	}

	stagedPath := filepath.Join(h.stagingDir, uuid.New().String()+filepath.Ext(fh.Filename))
	if err := c.SaveUploadedFile(fh, stagedPath); err != nil {
		return nil, fmt.Errorf("stage %s: %w", fh.Filename, err)
	}

	mimeType := fh.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	return &StagedUpload{
		FieldName:    field,
		OriginalName: fh.Filename,
		Encoding:     "7bit",
		MimeType:     mimeType,
		Size:         fh.Size,
		Path:         stagedPath,
	}, nil
}

func (h *Handler) serviceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNameRequired),
		errors.Is(err, ErrNameTooLong),
		errors.Is(err, ErrNoFiles),
		errors.Is(err, ErrInvalidBackend):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, ErrFileNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "File not found")
	case errors.Is(err, ErrNotImplemented):
		response.Error(c, http.StatusNotImplemented, "NOT_IMPLEMENTED", err.Error())
	case errors.Is(err, ErrMigration):
		response.Error(c, http.StatusInternalServerError, "MIGRATION_FAILED", "Storage migration failed")
	default:
		response.Error(c, http.StatusInternalServerError, "STORAGE_ERROR", "File operation failed")
	}
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid file id")
		return 0, false
	}
	return id, true
}
