package controllers

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/shashiranjanraj/qrmenu/app/services"
	"github.com/shashiranjanraj/qrmenu/pkg/apperr"
	"github.com/shashiranjanraj/qrmenu/pkg/ctx"
	"github.com/shashiranjanraj/qrmenu/pkg/storage"
)

const (
	// multipartSlack covers boundaries and the folder field on top of the
	// file itself.
	multipartSlack  = 1 << 20
	multipartMemory = 8 << 20
)

type UploadController struct {
	service *services.UploadService
}

// NewUploadController takes the configured disk; nil means uploads answer 503.
func NewUploadController(disk storage.Disk, maxBytes int64) *UploadController {
	return &UploadController{service: services.NewUploadService(disk, maxBytes)}
}

// Store accepts multipart field "file" and optional "folder", answering {url}.
func (uc *UploadController) Store(c *ctx.Context) {
	if err := uc.service.Ready(); err != nil {
		c.Fail(err)
		return
	}

	c.R.Body = http.MaxBytesReader(c.W, c.R.Body, uc.service.MaxBytes()+multipartSlack)
	if err := c.R.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			c.Fail(uc.service.RejectTooLarge())
			return
		}
		c.Fail(apperr.Validation("The request must be multipart/form-data.", nil))
		return
	}
	defer c.R.MultipartForm.RemoveAll() //nolint:errcheck

	var fh *multipart.FileHeader
	if files := c.R.MultipartForm.File["file"]; len(files) > 0 {
		fh = files[0]
	}
	var folder string
	if v := c.R.MultipartForm.Value["folder"]; len(v) > 0 {
		folder = v[0]
	}

	url, err := uc.service.Store(c.Context(), folder, fh)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(map[string]string{"url": url})
}

// Destroy removes a previously uploaded image by its URL.
func (uc *UploadController) Destroy(c *ctx.Context) {
	var in services.DeleteUploadInput
	if !c.BindJSON(&in) {
		return
	}
	if err := uc.service.Remove(c.Context(), in.URL); err != nil {
		c.Fail(err)
		return
	}
	c.Success(map[string]bool{"success": true})
}
