package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cropcare-service/internal/models"
	"cropcare-service/internal/services"
	"cropcare-service/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const maxImageBytes = 10 << 20

var allowedImageExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

type DetectionHandler struct {
	detectionService services.IDetectionService
	uploadDir        string
}

func NewDetectionHandler(detectionService services.IDetectionService, uploadDir string) (*DetectionHandler, error) {
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &DetectionHandler{
		detectionService: detectionService,
		uploadDir:        uploadDir,
	}, nil
}

func (h *DetectionHandler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api")
	api.POST("/detect", h.Detect)
}

// Detect stores the uploaded leaf image, classifies it and responds with the
// verdict. Bookkeeping outcomes travel in response headers so the body stays
// the plain verdict.
func (h *DetectionHandler) Detect(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		respondBadRequest(c, "image file is required")
		return
	}
	if file.Size > maxImageBytes {
		respondBadRequest(c, "image exceeds 10MB")
		return
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedImageExt[ext] {
		respondBadRequest(c, "image must be jpg, jpeg, png or webp")
		return
	}

	dc := &models.DetectionContext{
		Phone:  strings.TrimSpace(c.PostForm("phone")),
		CropID: strings.TrimSpace(c.PostForm("cropId")),
	}
	// A bad crop index must not cost the farmer the verdict.
	cropIndex, err := utils.GetFormInt(c, "cropIndex")
	if err != nil {
		dc.CropIndexErr = fmt.Errorf("%w: %v", models.ErrValidation, err)
	} else {
		dc.CropIndex = cropIndex
	}

	name := fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), uuid.NewString()[:8], ext)
	path := filepath.Join(h.uploadDir, name)
	if err := c.SaveUploadedFile(file, path); err != nil {
		slog.Error("Failed to store upload", "error", err)
		c.JSON(http.StatusInternalServerError, utils.CreateErrorResponse("STORAGE_ERROR", "failed to store image"))
		return
	}

	result, err := h.detectionService.Detect(c.Request.Context(), path, dc)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("X-Image-Ref", name)
	c.Header("X-Report-Outcome", string(result.ReportOutcome.Status))
	c.Header("X-Crop-Outcome", string(result.CropOutcome.Status))
	c.JSON(http.StatusOK, result.Verdict)
}
