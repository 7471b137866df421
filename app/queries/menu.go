// Package queries defines the read-only GraphQL view of public menus.
package queries

import (
	"errors"

	"github.com/graphql-go/graphql"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/qrmenu/app/services"
	"github.com/shashiranjanraj/qrmenu/pkg/apperr"
	gql "github.com/shashiranjanraj/qrmenu/pkg/graphql"
	"github.com/shashiranjanraj/qrmenu/pkg/logger"
)

var itemType = graphql.NewObject(graphql.ObjectConfig{
	Name: "MenuItem",
	Fields: graphql.Fields{
		"id":          &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"name":        &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"description": &graphql.Field{Type: graphql.String},
		"price":       &graphql.Field{Type: graphql.NewNonNull(graphql.Float)},
		"image":       &graphql.Field{Type: graphql.String},
		"order":       &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
	},
})

var categoryType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Category",
	Fields: graphql.Fields{
		"id":          &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"name":        &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"description": &graphql.Field{Type: graphql.String},
		"order":       &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"items":       &graphql.Field{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(itemType)))},
	},
})

var navEntryType = graphql.NewObject(graphql.ObjectConfig{
	Name: "NavEntry",
	Fields: graphql.Fields{
		"id":   &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"name": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
	},
})

var restaurantType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Restaurant",
	Fields: graphql.Fields{
		"id":           &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"name":         &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"slug":         &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"description":  &graphql.Field{Type: graphql.String},
		"address":      &graphql.Field{Type: graphql.String},
		"phone":        &graphql.Field{Type: graphql.String},
		"logo":         &graphql.Field{Type: graphql.String},
		"primaryColor": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
	},
})

var menuType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Menu",
	Fields: graphql.Fields{
		"restaurant": &graphql.Field{Type: graphql.NewNonNull(restaurantType)},
		"categories": &graphql.Field{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(categoryType)))},
		"navigation": &graphql.Field{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(navEntryType)))},
		"hasItems":   &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
	},
})

// MenuSchema exposes menu(slug: String!): Menu. An unknown slug resolves to
// null rather than an error.
func MenuSchema(db *gorm.DB) (graphql.Schema, error) {
	menus := services.NewMenuService(db)

	root := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"menu": &graphql.Field{
				Type: menuType,
				Args: graphql.FieldConfigArgument{
					"slug": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					slug, _ := p.Args["slug"].(string)
					menu, err := menus.Show(p.Context, slug, services.SurfaceGraphQL)
					if errors.Is(err, apperr.ErrNotFound) {
						return nil, nil
					}
					if err != nil {
						logger.WithCtx(p.Context).Error("graphql: menu query failed", "slug", slug, "error", err)
						return nil, errors.New(apperr.InternalMessage)
					}
					return menu, nil
				},
			},
		},
	})
	return gql.NewSchema(root)
}
