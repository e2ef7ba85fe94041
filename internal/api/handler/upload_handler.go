package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sal22/qanda-api/internal/core/domain"
	"github.com/sal22/qanda-api/internal/core/ports"
)

type UploadHandler struct {
	uploadService ports.UploadService
}

func NewUploadHandler(uploads ports.UploadService) *UploadHandler {
	return &UploadHandler{uploadService: uploads}
}

// Upload stores an image sent as the multipart field "file".
//
// @Summary      Upload an image
// @Tags         uploads
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file  formData  file  true  "Image file"
// @Success      201   {object}  uploadResponse
// @Failure      401   {object}  map[string]string
// @Failure      413   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /api/upload [post]
func (h *UploadHandler) Upload(c echo.Context) error {
	p, err := actor(c)
	if err != nil {
		return err
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return domain.NewValidationError("file", "is required")
	}
	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	name, err := h.uploadService.Upload(c.Request().Context(), p, ports.UploadInput{
		Filename: fh.Filename,
		Size:     fh.Size,
		Body:     f,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, uploadResponse{Path: name})
}

// Serve streams a stored upload.
//
// @Summary      Download an upload
// @Tags         uploads
// @Produce      octet-stream
// @Param        filename  path  string  true  "Object name"
// @Success      200
// @Failure      404  {object}  map[string]string
// @Router       /uploads/{filename} [get]
func (h *UploadHandler) Serve(c echo.Context) error {
	rc, contentType, err := h.uploadService.Open(c.Request().Context(), c.Param("filename"))
	if err != nil {
		return err
	}
	defer rc.Close()

	c.Response().Header().Set("Cache-Control", "public, max-age=86400")
	return c.Stream(http.StatusOK, contentType, rc)
}
