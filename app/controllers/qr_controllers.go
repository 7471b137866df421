package controllers

import (
	"fmt"
	"net/http"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/qrmenu/app/services"
	"github.com/shashiranjanraj/qrmenu/pkg/ctx"
)

type QRController struct {
	service *services.QRService
}

func NewQRController(db *gorm.DB, baseURL string) *QRController {
	return &QRController{service: services.NewQRService(db, baseURL)}
}

// Image answers the PNG. Query: size (128..1024, default 400), theme=1 for
// the restaurant colour, download=1 for an attachment.
func (qc *QRController) Image(c *ctx.Context) {
	img, err := qc.service.PNG(c.Context(), c.UserID(), c.Param("id"), services.QROptions{
		Size:     c.QueryInt("size", services.QRDefaultSize),
		Theme:    c.QueryBool("theme"),
		Download: c.QueryBool("download"),
	})
	if err != nil {
		c.Fail(err)
		return
	}

	if img.Filename != "" {
		c.SetHeader("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, img.Filename))
	}
	c.SetHeader("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", img.PNG)
}

// Print answers the print-friendly HTML page.
func (qc *QRController) Print(c *ctx.Context) {
	page, err := qc.service.PrintPage(c.Context(), c.UserID(), c.Param("id"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.HTML(http.StatusOK, page)
}

// URL answers {url}: the address encoded in the QR code.
func (qc *QRController) URL(c *ctx.Context) {
	url, err := qc.service.URL(c.Context(), c.UserID(), c.Param("id"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(map[string]string{"url": url})
}
