package controllers

import (
	"gorm.io/gorm"

	"github.com/shashiranjanraj/qrmenu/app/services"
	"github.com/shashiranjanraj/qrmenu/pkg/apperr"
	"github.com/shashiranjanraj/qrmenu/pkg/ctx"
	"github.com/shashiranjanraj/qrmenu/pkg/session"
)

type AuthController struct {
	service *services.AuthService
}

func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{service: services.NewAuthService(db)}
}

// Register creates an account and answers {id,email,name}.
func (ac *AuthController) Register(c *ctx.Context) {
	var in services.RegisterInput
	if !c.BindJSON(&in) {
		return
	}

	user, err := ac.service.Register(c.Context(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created(map[string]string{"id": user.ID, "email": user.Email, "name": user.Name})
}

// Login starts a session on a fresh id and also returns a bearer token.
func (ac *AuthController) Login(c *ctx.Context) {
	var in services.LoginInput
	if !c.BindJSON(&in) {
		return
	}

	res, err := ac.service.Login(c.Context(), in)
	if err != nil {
		c.Fail(err)
		return
	}

	sess := session.FromCtx(c.R)
	sess.Regenerate()
	sess.Set(session.UserIDKey, res.User.ID)
	if err := sess.Save(c.Context(), c.W); err != nil {
		c.Fail(apperr.Internal(err))
		return
	}
	c.Success(res)
}

// Logout drops the session and expires the cookie.
func (ac *AuthController) Logout(c *ctx.Context) {
	if err := session.FromCtx(c.R).Destroy(c.Context(), c.W); err != nil {
		c.Fail(apperr.Internal(err))
		return
	}
	c.Success(map[string]bool{"success": true})
}

// Me returns the authenticated user.
func (ac *AuthController) Me(c *ctx.Context) {
	user, err := ac.service.Me(c.Context(), c.UserID())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(user)
}
