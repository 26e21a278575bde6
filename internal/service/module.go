package service

import (
	"go.uber.org/fx"
)

var (
	Module = fx.Provide(
		NewMedia,
		NewAuth,
		NewCatalog,
		NewRecipes,
		NewRelations,
		NewShopping,
		NewSubscriptions,
	)
)
