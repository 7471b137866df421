package controllers

import (
	"gorm.io/gorm"

	"github.com/shashiranjanraj/qrmenu/app/services"
	"github.com/shashiranjanraj/qrmenu/pkg/ctx"
)

type CategoryController struct {
	service *services.CategoryService
}

func NewCategoryController(db *gorm.DB) *CategoryController {
	return &CategoryController{service: services.NewCategoryService(db)}
}

// Store creates a category under the restaurant in the path.
func (cc *CategoryController) Store(c *ctx.Context) {
	var in services.CreateCategoryInput
	if !c.BindJSON(&in) {
		return
	}

	cat, err := cc.service.Create(c.Context(), c.UserID(), c.Param("id"), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created(cat)
}

func (cc *CategoryController) Update(c *ctx.Context) {
	var in services.UpdateCategoryInput
	if !c.BindJSON(&in) {
		return
	}

	cat, err := cc.service.Update(c.Context(), c.UserID(), c.Param("id"), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(cat)
}

func (cc *CategoryController) Destroy(c *ctx.Context) {
	if err := cc.service.Delete(c.Context(), c.UserID(), c.Param("id")); err != nil {
		c.Fail(err)
		return
	}
	c.Success(map[string]bool{"success": true})
}

func (cc *CategoryController) Reorder(c *ctx.Context) {
	var in services.ReorderCategoriesInput
	if !c.BindJSON(&in) {
		return
	}

	if err := cc.service.Reorder(c.Context(), c.UserID(), in); err != nil {
		c.Fail(err)
		return
	}
	c.Success(map[string]bool{"success": true})
}
