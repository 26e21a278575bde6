package service

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/smizereens/foodgram-st/internal/db"
)

type RelationKind int

const (
	RelationFavorite RelationKind = iota
	RelationShoppingCart
)

// Relations tracks the per-user favorite and shopping-cart links to
// recipes. Adding and removing are deliberately not idempotent: a
// duplicate add and a missing remove are reported to the caller.
type Relations struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

func NewRelations(g *gorm.DB, l *zap.SugaredLogger) *Relations {
	return &Relations{
		db:     g,
		logger: l,
	}
}

// Add links the recipe to the user. The insert is a single statement:
// the unique (user, recipe) index turns a concurrent duplicate into
// ErrAlreadyExists instead of a race.
func (s *Relations) Add(kind RelationKind, user *db.User, recipeID uint64) (*db.Recipe, error) {
	recipe := db.Recipe{}
	res := s.db.First(&recipe, recipeID)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, res.Error
	}

	switch kind {
	case RelationFavorite:
		res = s.db.Create(&db.Favorite{UserID: user.ID, RecipeID: recipeID})
	case RelationShoppingCart:
		res = s.db.Create(&db.ShoppingCart{UserID: user.ID, RecipeID: recipeID})
	default:
		return nil, errors.Errorf("unknown relation kind: %d", kind)
	}
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyExists
		}
		return nil, res.Error
	}
	return &recipe, nil
}

func (s *Relations) Remove(kind RelationKind, user *db.User, recipeID uint64) error {
	recipe := db.Recipe{}
	res := s.db.First(&recipe, recipeID)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return res.Error
	}

	q := s.db.Where("user_id = ? AND recipe_id = ?", user.ID, recipeID)
	switch kind {
	case RelationFavorite:
		res = q.Delete(&db.Favorite{})
	case RelationShoppingCart:
		res = q.Delete(&db.ShoppingCart{})
	default:
		return errors.Errorf("unknown relation kind: %d", kind)
	}
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRelationNotFound
	}
	return nil
}

func (s *Relations) Has(kind RelationKind, userID, recipeID uint64) (bool, error) {
	set, err := s.HasBatch(kind, userID, []uint64{recipeID})
	if err != nil {
		return false, err
	}
	return set[recipeID], nil
}

// HasBatch reports which of the given recipes the user has linked, with
// a single query for the whole listing page.
func (s *Relations) HasBatch(kind RelationKind, userID uint64, recipeIDs []uint64) (map[uint64]bool, error) {
	set := make(map[uint64]bool, len(recipeIDs))
	if len(recipeIDs) == 0 {
		return set, nil
	}

	q := s.db.Where("user_id = ? AND recipe_id IN ?", userID, recipeIDs)
	ids := make([]uint64, 0, len(recipeIDs))
	var res *gorm.DB
	switch kind {
	case RelationFavorite:
		res = q.Model(&db.Favorite{}).Pluck("recipe_id", &ids)
	case RelationShoppingCart:
		res = q.Model(&db.ShoppingCart{}).Pluck("recipe_id", &ids)
	default:
		return nil, errors.Errorf("unknown relation kind: %d", kind)
	}
	if res.Error != nil {
		return nil, res.Error
	}

	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}
