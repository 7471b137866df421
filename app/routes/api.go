package routes

import (
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/qrmenu/app/controllers"
	"github.com/shashiranjanraj/qrmenu/app/queries"
	"github.com/shashiranjanraj/qrmenu/pkg/ctx"
	"github.com/shashiranjanraj/qrmenu/pkg/graphql"
	"github.com/shashiranjanraj/qrmenu/pkg/middleware"
	"github.com/shashiranjanraj/qrmenu/pkg/response"
	"github.com/shashiranjanraj/qrmenu/pkg/router"
	"github.com/shashiranjanraj/qrmenu/pkg/storage"
)

// Dependencies are the resources the handlers are built on.
type Dependencies struct {
	DB *gorm.DB
	// Disk is the upload target; nil makes uploads answer 503.
	Disk           storage.Disk
	AppURL         string
	UploadMaxBytes int64
}

// RegisterAPI mounts the JSON API under /api and the GraphQL endpoint.
func RegisterAPI(r *router.Router, d Dependencies) error {
	authController := controllers.NewAuthController(d.DB)
	restaurantController := controllers.NewRestaurantController(d.DB)
	categoryController := controllers.NewCategoryController(d.DB)
	itemController := controllers.NewItemController(d.DB)
	menuController := controllers.NewMenuController(d.DB)
	qrController := controllers.NewQRController(d.DB, d.AppURL)
	uploadController := controllers.NewUploadController(d.Disk, d.UploadMaxBytes)
	dashboardController := controllers.NewDashboardController(d.DB)

	api := r.Group("/api")
	api.Post("/auth/register", "auth.register", ctx.Wrap(authController.Register))
	api.Post("/auth/login", "auth.login", ctx.Wrap(authController.Login))
	api.Post("/auth/logout", "auth.logout", ctx.Wrap(authController.Logout))
	api.Get("/menu/{slug}", "menu.show", ctx.Wrap(menuController.Show))

	protected := api.Group("", middleware.Require)
	protected.Get("/auth/me", "auth.me", ctx.Wrap(authController.Me))
	protected.Get("/dashboard", "dashboard.show", ctx.Wrap(dashboardController.Show))

	protected.Get("/restaurants", "restaurants.index", ctx.Wrap(restaurantController.Index))
	protected.Post("/restaurants", "restaurants.store", ctx.Wrap(restaurantController.Store))
	protected.Get("/restaurants/{id}", "restaurants.show", ctx.Wrap(restaurantController.Show))
	protected.Patch("/restaurants/{id}", "restaurants.update", ctx.Wrap(restaurantController.Update))
	protected.Delete("/restaurants/{id}", "restaurants.destroy", ctx.Wrap(restaurantController.Destroy))

	protected.Get("/restaurants/{id}/qr", "restaurants.qr", ctx.Wrap(qrController.Image))
	protected.Get("/restaurants/{id}/qr/print", "restaurants.qr.print", ctx.Wrap(qrController.Print))
	protected.Get("/restaurants/{id}/qr/url", "restaurants.qr.url", ctx.Wrap(qrController.URL))

	protected.Post("/restaurants/{id}/categories", "categories.store", ctx.Wrap(categoryController.Store))
	protected.Put("/categories/reorder", "categories.reorder", ctx.Wrap(categoryController.Reorder))
	protected.Patch("/categories/{id}", "categories.update", ctx.Wrap(categoryController.Update))
	protected.Delete("/categories/{id}", "categories.destroy", ctx.Wrap(categoryController.Destroy))

	protected.Post("/categories/{id}/items", "items.store", ctx.Wrap(itemController.Store))
	protected.Put("/items/reorder", "items.reorder", ctx.Wrap(itemController.Reorder))
	protected.Put("/items/{id}", "items.update", ctx.Wrap(itemController.Update))
	protected.Patch("/items/{id}", "items.patch", ctx.Wrap(itemController.Update))
	protected.Delete("/items/{id}", "items.destroy", ctx.Wrap(itemController.Destroy))

	protected.Post("/upload", "upload.store", ctx.Wrap(uploadController.Store))
	protected.Delete("/upload", "upload.destroy", ctx.Wrap(uploadController.Destroy))

	schema, err := queries.MenuSchema(d.DB)
	if err != nil {
		return err
	}
	gql := graphql.Handler(schema)
	r.Get("/graphql", "graphql.query", gql)
	r.Post("/graphql", "graphql", gql)

	return nil
}

// RegisterWeb mounts the public menu path printed in QR codes and, for the
// local disk, the uploaded files.
func RegisterWeb(r *router.Router, d Dependencies) {
	menuController := controllers.NewMenuController(d.DB)
	r.Get("/menu/{slug}", "menu.public", ctx.Wrap(menuController.Show))

	if local, ok := d.Disk.(*storage.LocalDisk); ok {
		files := http.StripPrefix("/storage/", noDirListing(http.FileServer(http.Dir(local.Root()))))
		r.Handle(http.MethodGet, "/storage/*", "storage", files)
	}
}

func noDirListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			response.NotFound(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}
