package controllers

import (
	"gorm.io/gorm"

	"github.com/shashiranjanraj/qrmenu/app/services"
	"github.com/shashiranjanraj/qrmenu/pkg/ctx"
)

type ItemController struct {
	service *services.ItemService
}

func NewItemController(db *gorm.DB) *ItemController {
	return &ItemController{service: services.NewItemService(db)}
}

// Store creates an item under the category in the path.
func (ic *ItemController) Store(c *ctx.Context) {
	var in services.CreateItemInput
	if !c.BindJSON(&in) {
		return
	}

	item, err := ic.service.Create(c.Context(), c.UserID(), c.Param("id"), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created(item)
}

// Update serves both PUT and PATCH; either way only the fields present in
// the body change.
func (ic *ItemController) Update(c *ctx.Context) {
	var in services.UpdateItemInput
	if !c.BindJSON(&in) {
		return
	}

	item, err := ic.service.Update(c.Context(), c.UserID(), c.Param("id"), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(item)
}

func (ic *ItemController) Destroy(c *ctx.Context) {
	if err := ic.service.Delete(c.Context(), c.UserID(), c.Param("id")); err != nil {
		c.Fail(err)
		return
	}
	c.Success(map[string]bool{"success": true})
}

func (ic *ItemController) Reorder(c *ctx.Context) {
	var in services.ReorderItemsInput
	if !c.BindJSON(&in) {
		return
	}

	if err := ic.service.Reorder(c.Context(), c.UserID(), in); err != nil {
		c.Fail(err)
		return
	}
	c.Success(map[string]bool{"success": true})
}
