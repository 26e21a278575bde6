package db

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/smizereens/foodgram-st/internal/config"
)

type (
	GormForkedModel struct {
		ID        uint64 `gorm:"primarykey"`
		CreatedAt time.Time
		UpdatedAt time.Time
	}

	User struct {
		GormForkedModel
		Email     string `gorm:"unique;not null"`
		Username  string `gorm:"unique;not null"`
		FirstName string
		LastName  string
		Password  string `gorm:"not null"`
		Token     string `gorm:"index"`
		Avatar    *string
		IsStaff   bool
		Recipes   []Recipe `gorm:"foreignKey:AuthorID"`
	}

	Ingredient struct {
		GormForkedModel
		Name            string `gorm:"not null;uniqueIndex:uidx_ingredient_name_unit"`
		MeasurementUnit string `gorm:"not null;uniqueIndex:uidx_ingredient_name_unit"`
	}

	Tag struct {
		GormForkedModel
		Name  string `gorm:"not null"`
		Color string
		Slug  string `gorm:"unique;not null"`
	}

	Recipe struct {
		GormForkedModel
		AuthorID    uint64 `gorm:"not null;index"`
		Author      User
		Name        string `gorm:"not null"`
		Text        string `gorm:"not null"`
		CookingTime int    `gorm:"not null"`
		Image       string
		Tags        []Tag              `gorm:"many2many:recipe_tags;constraint:OnDelete:CASCADE"`
		Ingredients []RecipeIngredient `gorm:"constraint:OnDelete:CASCADE"`
	}

	// RecipeIngredient rows are owned by their recipe and replaced
	// wholesale on every ingredient update.
	RecipeIngredient struct {
		ID           uint64 `gorm:"primarykey"`
		RecipeID     uint64 `gorm:"not null;uniqueIndex:uidx_recipe_ingredient"`
		IngredientID uint64 `gorm:"not null;uniqueIndex:uidx_recipe_ingredient"`
		Ingredient   Ingredient
		Amount       int `gorm:"not null"`
	}

	Favorite struct {
		GormForkedModel
		UserID   uint64 `gorm:"not null;uniqueIndex:uidx_favorite_user_recipe"`
		User     User
		RecipeID uint64 `gorm:"not null;uniqueIndex:uidx_favorite_user_recipe"`
		Recipe   Recipe `gorm:"constraint:OnDelete:CASCADE"`
	}

	ShoppingCart struct {
		GormForkedModel
		UserID   uint64 `gorm:"not null;uniqueIndex:uidx_cart_user_recipe"`
		User     User
		RecipeID uint64 `gorm:"not null;uniqueIndex:uidx_cart_user_recipe"`
		Recipe   Recipe `gorm:"constraint:OnDelete:CASCADE"`
	}

	Subscription struct {
		GormForkedModel
		UserID   uint64 `gorm:"not null;uniqueIndex:uidx_subscription_user_author"`
		User     User
		AuthorID uint64 `gorm:"not null;uniqueIndex:uidx_subscription_user_author"`
		Author   User `gorm:"constraint:OnDelete:CASCADE"`
	}
)

func NewGormClient(cfg *config.Config) (*gorm.DB, error) {
	newLogger := logger.New(log.New(os.Stdout, "\r\n", log.LstdFlags), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Info,
		Colorful:                  true,
		IgnoreRecordNotFoundError: false,
	})

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort, cfg.DBSSLMode)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         newLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect database")
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&User{}); err != nil {
		return errors.Wrap(err, "migrate user")
	}
	if err := db.AutoMigrate(&Ingredient{}); err != nil {
		return errors.Wrap(err, "migrate ingredient")
	}
	if err := db.AutoMigrate(&Tag{}); err != nil {
		return errors.Wrap(err, "migrate tag")
	}
	if err := db.AutoMigrate(&Recipe{}); err != nil {
		return errors.Wrap(err, "migrate recipe")
	}
	if err := db.AutoMigrate(&RecipeIngredient{}); err != nil {
		return errors.Wrap(err, "migrate recipe ingredient")
	}
	if err := db.AutoMigrate(&Favorite{}); err != nil {
		return errors.Wrap(err, "migrate favorite")
	}
	if err := db.AutoMigrate(&ShoppingCart{}); err != nil {
		return errors.Wrap(err, "migrate shopping cart")
	}
	if err := db.AutoMigrate(&Subscription{}); err != nil {
		return errors.Wrap(err, "migrate subscription")
	}
	return nil
}
