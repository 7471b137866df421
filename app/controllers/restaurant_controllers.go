package controllers

import (
	"gorm.io/gorm"

	"github.com/shashiranjanraj/qrmenu/app/services"
	"github.com/shashiranjanraj/qrmenu/pkg/ctx"
)

type RestaurantController struct {
	service *services.RestaurantService
}

func NewRestaurantController(db *gorm.DB) *RestaurantController {
	return &RestaurantController{service: services.NewRestaurantService(db)}
}

func (rc *RestaurantController) Index(c *ctx.Context) {
	list, err := rc.service.List(c.Context(), c.UserID())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(list)
}

func (rc *RestaurantController) Store(c *ctx.Context) {
	var in services.CreateRestaurantInput
	if !c.BindJSON(&in) {
		return
	}

	rest, err := rc.service.Create(c.Context(), c.UserID(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created(rest)
}

func (rc *RestaurantController) Show(c *ctx.Context) {
	rest, err := rc.service.Get(c.Context(), c.UserID(), c.Param("id"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(rest)
}

func (rc *RestaurantController) Update(c *ctx.Context) {
	var in services.UpdateRestaurantInput
	if !c.BindJSON(&in) {
		return
	}

	rest, err := rc.service.Update(c.Context(), c.UserID(), c.Param("id"), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(rest)
}

func (rc *RestaurantController) Destroy(c *ctx.Context) {
	if err := rc.service.Delete(c.Context(), c.UserID(), c.Param("id")); err != nil {
		c.Fail(err)
		return
	}
	c.Success(map[string]bool{"success": true})
}
