package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"skinscan-backend/internal/middleware"
	"skinscan-backend/internal/models"
	"skinscan-backend/internal/services"
)

type Uploader interface {
	UploadAndAnalyze(ctx context.Context, caller models.Principal, in services.UploadInput) (*services.UploadResult, error)
}

type History interface {
	List(ctx context.Context, userID string) ([]models.Scan, error)
	Watch(ctx context.Context, userID string, render func([]models.Scan) error) error
}

type ScansHandler struct {
	uploader       Uploader
	history        History
	maxUploadBytes int64
}

func NewScansHandler(uploader Uploader, history History, maxUploadBytes int64) *ScansHandler {
	return &ScansHandler{
		uploader:       uploader,
		history:        history,
		maxUploadBytes: maxUploadBytes,
	}
}

// Upload godoc
// @Summary     Upload and analyze a skin image
// @Description Stores the image, creates a pending scan and runs the analysis.
// @Description The scan in the response is the pending record; the history stream shows it reach the analyzed state.
// @Tags        scans
// @Accept      multipart/form-data
// @Produce     json
// @Security    Bearer
// @Param       image formData file true "Skin image (PNG, JPG up to 10MB)"
// @Success     200 {object} models.UploadResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /scans [post]
func (h *ScansHandler) Upload(c *gin.Context) {
	caller, ok := middleware.Principal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "user id not found"})
		return
	}

	// Multipart overhead on top of the file itself
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+1<<20)

	file, err := formFile(c, "image", "file")
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "file too large",
			Message: fmt.Sprintf("maximum size is %d bytes", h.maxUploadBytes),
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "no image uploaded",
			Message: err.Error(),
		})
		return
	}
	if file.Size > h.maxUploadBytes {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "file too large",
			Message: fmt.Sprintf("maximum size is %d bytes", h.maxUploadBytes),
		})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "failed to open file", Message: err.Error()})
		return
	}
	data, err := io.ReadAll(src)
	src.Close()
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "failed to read file data", Message: err.Error()})
		return
	}

	contentType, ext := detectContentType(file.Header.Get("Content-Type"), data)
	result, err := h.uploader.UploadAndAnalyze(c.Request.Context(), caller, services.UploadInput{
		Filename:    file.Filename,
		ContentType: contentType,
		Data:        data,
		Extension:   ext,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.UploadResponse{
		Scan:     models.NewScanResponse(result.Scan),
		Analysis: result.Analysis,
	})
}

// List godoc
// @Summary     List scan history
// @Description Returns the caller's scans, newest first.
// @Tags        scans
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.ScanListResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /scans [get]
func (h *ScansHandler) List(c *gin.Context) {
	caller, ok := middleware.Principal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "user id not found"})
		return
	}

	scans, err := h.history.List(c.Request.Context(), caller.UserID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.NewScanListResponse(scans))
}

// Stream godoc
// @Summary     Live scan history
// @Description Server-Sent Events stream. Emits a "scans" event with the full list on connect and after every change.
// @Tags        scans
// @Produce     text/event-stream
// @Security    Bearer
// @Success     200 {object} models.ScanListResponse
// @Failure     401 {object} models.ErrorResponse
// @Router      /scans/stream [get]
func (h *ScansHandler) Stream(c *gin.Context) {
	caller, ok := middleware.Principal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "user id not found"})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)

	ctx := c.Request.Context()
	err := h.history.Watch(ctx, caller.UserID, func(scans []models.Scan) error {
		c.SSEvent("scans", models.NewScanListResponse(scans))
		c.Writer.Flush()
		return ctx.Err()
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		c.Error(err)
	}
}

func formFile(c *gin.Context, fieldNames ...string) (*multipart.FileHeader, error) {
	var lastErr error
	for _, name := range fieldNames {
		file, err := c.FormFile(name)
		if err == nil {
			return file, nil
		}
		// The body is spent; later fields cannot be read either.
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("please provide a file in one of the fields %v: %w", fieldNames, lastErr)
}

// detectContentType trusts the declared part type unless it is missing or
// generic, in which case the bytes are sniffed.
func detectContentType(declared string, data []byte) (string, string) {
	sniffed := mimetype.Detect(data)
	mediaType, _, err := mime.ParseMediaType(declared)
	if err != nil || mediaType == "" || mediaType == "application/octet-stream" {
		mediaType, _, _ = mime.ParseMediaType(sniffed.String())
	}
	return mediaType, sniffed.Extension()
}
