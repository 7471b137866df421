package controllers

import (
	"gorm.io/gorm"

	"github.com/shashiranjanraj/qrmenu/app/services"
	"github.com/shashiranjanraj/qrmenu/pkg/ctx"
)

type DashboardController struct {
	service *services.DashboardService
}

func NewDashboardController(db *gorm.DB) *DashboardController {
	return &DashboardController{service: services.NewDashboardService(db)}
}

func (dc *DashboardController) Show(c *ctx.Context) {
	stats, err := dc.service.Stats(c.Context(), c.UserID())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(stats)
}
