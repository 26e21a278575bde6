package main

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/smizereens/foodgram-st/internal/config"
	"github.com/smizereens/foodgram-st/internal/db"
	"github.com/smizereens/foodgram-st/internal/service"
	"github.com/smizereens/foodgram-st/internal/transport"
)

func main() {
	app := fx.New(
		fx.Provide(
			config.NewConfig,
			db.NewGormClient,
			func() (*zap.SugaredLogger, error) {
				l, err := zap.NewProduction()
				if err != nil {
					return nil, err
				}
				return l.Sugar(), nil
			},
		),
		service.Module,
		transport.Module,
		fx.Invoke(seedIngredients),
		fx.Invoke(func(server *transport.HTTPServer) {}),
	)

	app.Run()
}

func seedIngredients(cfg *config.Config, catalog *service.Catalog, logger *zap.SugaredLogger) error {
	if cfg.IngredientsFile == "" {
		return nil
	}
	count, err := catalog.ImportIngredients(cfg.IngredientsFile)
	if err != nil {
		return err
	}
	if count == 0 {
		logger.Info("no new ingredients to import")
	}
	return nil
}
