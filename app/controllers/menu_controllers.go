package controllers

import (
	"gorm.io/gorm"

	"github.com/shashiranjanraj/qrmenu/app/services"
	"github.com/shashiranjanraj/qrmenu/pkg/ctx"
)

// MenuController serves the public, unauthenticated menu.
type MenuController struct {
	service *services.MenuService
}

func NewMenuController(db *gorm.DB) *MenuController {
	return &MenuController{service: services.NewMenuService(db)}
}

func (mc *MenuController) Show(c *ctx.Context) {
	menu, err := mc.service.Show(c.Context(), c.Param("slug"), services.SurfaceREST)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(menu)
}
