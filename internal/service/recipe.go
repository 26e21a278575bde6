package service

import (
	"github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/smizereens/foodgram-st/internal/db"
)

type (
	// IngredientAmount is one (ingredient, amount) line of a recipe.
	IngredientAmount struct {
		ID     uint64
		Amount int
	}

	RecipeInput struct {
		Name        string
		Text        string
		CookingTime int
		Image       string
		Ingredients []IngredientAmount
		TagIDs      []uint64
	}

	// RecipeUpdate carries only the fields the caller wants changed.
	// A non-nil Ingredients replaces the stored set wholesale.
	RecipeUpdate struct {
		Name        *string
		Text        *string
		CookingTime *int
		Image       *string
		Ingredients *[]IngredientAmount
		TagIDs      *[]uint64
	}

	RecipeFilter struct {
		AuthorID       *uint64
		TagSlugs       []string
		Favorited      bool
		InShoppingCart bool
		Viewer         *db.User
		Offset         int
		Limit          int
	}

	// Recipes is the composition engine: a recipe together with its
	// ingredient rows and tag set is written as one atomic unit.
	Recipes struct {
		db     *gorm.DB
		media  *Media
		logger *zap.SugaredLogger
	}
)

func NewRecipes(g *gorm.DB, media *Media, l *zap.SugaredLogger) *Recipes {
	return &Recipes{
		db:     g,
		media:  media,
		logger: l,
	}
}

func (s *Recipes) Get(id uint64) (*db.Recipe, error) {
	recipe := db.Recipe{}
	res := s.db.
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients.Ingredient").
		First(&recipe, id)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, res.Error
	}
	return &recipe, nil
}

func (s *Recipes) Create(author *db.User, in RecipeInput) (*db.Recipe, error) {
	if in.CookingTime < 1 {
		return nil, ErrInvalidCookingTime
	}
	if err := s.validateIngredients(in.Ingredients); err != nil {
		return nil, err
	}
	if err := s.validateTags(in.TagIDs); err != nil {
		return nil, err
	}

	image, err := s.media.Save(in.Image)
	if err != nil {
		return nil, err
	}

	model := db.Recipe{
		AuthorID:    author.ID,
		Name:        in.Name,
		Text:        in.Text,
		CookingTime: in.CookingTime,
		Image:       image,
		Tags:        tagRefs(in.TagIDs),
		Ingredients: ingredientRows(0, in.Ingredients),
	}

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		if res := tx.Create(&model); res.Error != nil {
			return res.Error
		}
		return nil
	}); err != nil {
		_ = s.media.Delete(image)
		return nil, errors.Wrap(err, "create recipe")
	}

	return s.Get(model.ID)
}

func (s *Recipes) Update(user *db.User, id uint64, in RecipeUpdate) (*db.Recipe, error) {
	recipe, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if recipe.AuthorID != user.ID && !user.IsStaff {
		return nil, ErrForbidden
	}

	if in.CookingTime != nil && *in.CookingTime < 1 {
		return nil, ErrInvalidCookingTime
	}
	if in.Ingredients != nil {
		if err := s.validateIngredients(*in.Ingredients); err != nil {
			return nil, err
		}
	}
	if in.TagIDs != nil {
		if err := s.validateTags(*in.TagIDs); err != nil {
			return nil, err
		}
	}

	newImage := ""
	if in.Image != nil {
		if newImage, err = s.media.Save(*in.Image); err != nil {
			return nil, err
		}
	}

	oldImage := recipe.Image
	if err := s.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{}
		if in.Name != nil {
			updates["name"] = *in.Name
		}
		if in.Text != nil {
			updates["text"] = *in.Text
		}
		if in.CookingTime != nil {
			updates["cooking_time"] = *in.CookingTime
		}
		if in.Image != nil {
			updates["image"] = newImage
		}
		if len(updates) != 0 {
			if res := tx.Model(&db.Recipe{GormForkedModel: db.GormForkedModel{ID: id}}).
				Updates(updates); res.Error != nil {
				return errors.Wrap(res.Error, "update recipe fields")
			}
		}

		if in.Ingredients != nil {
			// full replace: drop every stored row, reinsert the target set
			if res := tx.Where("recipe_id = ?", id).
				Delete(&db.RecipeIngredient{}); res.Error != nil {
				return errors.Wrap(res.Error, "clear recipe ingredients")
			}
			rows := ingredientRows(id, *in.Ingredients)
			if res := tx.Create(&rows); res.Error != nil {
				return errors.Wrap(res.Error, "insert recipe ingredients")
			}
		}

		if in.TagIDs != nil {
			tags := tagRefs(*in.TagIDs)
			if err := tx.Model(&db.Recipe{GormForkedModel: db.GormForkedModel{ID: id}}).
				Association("Tags").Replace(tags); err != nil {
				return errors.Wrap(err, "replace recipe tags")
			}
		}
		return nil
	}); err != nil {
		if newImage != "" {
			_ = s.media.Delete(newImage)
		}
		return nil, err
	}

	if in.Image != nil {
		_ = s.media.Delete(oldImage)
	}
	return s.Get(id)
}

func (s *Recipes) Delete(user *db.User, id uint64) error {
	recipe, err := s.Get(id)
	if err != nil {
		return err
	}
	if recipe.AuthorID != user.ID && !user.IsStaff {
		return ErrForbidden
	}

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		if res := tx.Where("recipe_id = ?", id).Delete(&db.RecipeIngredient{}); res.Error != nil {
			return errors.Wrap(res.Error, "delete recipe ingredients")
		}
		if res := tx.Where("recipe_id = ?", id).Delete(&db.Favorite{}); res.Error != nil {
			return errors.Wrap(res.Error, "delete favorites")
		}
		if res := tx.Where("recipe_id = ?", id).Delete(&db.ShoppingCart{}); res.Error != nil {
			return errors.Wrap(res.Error, "delete cart entries")
		}
		if err := tx.Model(recipe).Association("Tags").Clear(); err != nil {
			return errors.Wrap(err, "clear recipe tags")
		}
		if res := tx.Delete(&db.Recipe{}, id); res.Error != nil {
			return errors.Wrap(res.Error, "delete recipe")
		}
		return nil
	}); err != nil {
		return err
	}

	_ = s.media.Delete(recipe.Image)
	return nil
}

// List resolves the recipe ids matching the filter with a single joined
// query, then loads the full rows with their associations.
func (s *Recipes) List(f RecipeFilter) ([]db.Recipe, int64, error) {
	q := squirrel.Select("r.id").From("recipes r").GroupBy("r.id")
	w := squirrel.Eq{}
	if f.AuthorID != nil {
		w["r.author_id"] = *f.AuthorID
	}
	if len(f.TagSlugs) != 0 {
		q = q.
			Join("recipe_tags rt ON rt.recipe_id = r.id").
			Join("tags t ON t.id = rt.tag_id")
		w["t.slug"] = f.TagSlugs
	}
	if f.Viewer != nil && f.Favorited {
		q = q.Join("favorites fav ON fav.recipe_id = r.id")
		w["fav.user_id"] = f.Viewer.ID
	}
	if f.Viewer != nil && f.InShoppingCart {
		q = q.Join("shopping_carts sc ON sc.recipe_id = r.id")
		w["sc.user_id"] = f.Viewer.ID
	}
	if len(w) != 0 {
		q = q.Where(w)
	}

	countSQL, countArgs, err := q.ToSql()
	if err != nil {
		return nil, 0, errors.Wrap(err, "build count sql")
	}
	var total int64
	res := s.db.Raw("SELECT COUNT(*) FROM ("+countSQL+") matched", countArgs...).Scan(&total)
	if res.Error != nil {
		return nil, 0, errors.Wrap(res.Error, "count recipes")
	}

	q = q.OrderBy("r.id DESC")
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit)).Offset(uint64(f.Offset))
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, 0, errors.Wrap(err, "build sql")
	}

	ids := make([]uint64, 0)
	res = s.db.Raw(sql, args...).Scan(&ids)
	if res.Error != nil {
		return nil, 0, errors.Wrap(res.Error, "scan ids")
	}
	if len(ids) == 0 {
		return []db.Recipe{}, total, nil
	}

	recipes := make([]db.Recipe, 0, len(ids))
	res = s.db.
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients.Ingredient").
		Where("id IN ?", ids).
		Order("id DESC").
		Find(&recipes)
	if res.Error != nil {
		return nil, 0, errors.Wrap(res.Error, "load recipes")
	}
	return recipes, total, nil
}

// AuthorRecipes returns the author's recipes newest first, plus the true
// total count regardless of the limit. A negative limit means unlimited.
func (s *Recipes) AuthorRecipes(authorID uint64, limit int) ([]db.Recipe, int64, error) {
	var total int64
	res := s.db.Model(&db.Recipe{}).Where("author_id = ?", authorID).Count(&total)
	if res.Error != nil {
		return nil, 0, res.Error
	}

	q := s.db.Where("author_id = ?", authorID).Order("id DESC")
	if limit >= 0 {
		q = q.Limit(limit)
	}
	recipes := make([]db.Recipe, 0)
	if res := q.Find(&recipes); res.Error != nil {
		return nil, 0, res.Error
	}
	return recipes, total, nil
}

func (s *Recipes) validateIngredients(items []IngredientAmount) error {
	if len(items) == 0 {
		return ErrEmptyIngredientList
	}
	seen := make(map[uint64]bool, len(items))
	ids := make([]uint64, 0, len(items))
	for _, item := range items {
		if seen[item.ID] {
			return ErrDuplicateIngredient
		}
		seen[item.ID] = true
		if item.Amount < 1 {
			return ErrInvalidAmount
		}
		ids = append(ids, item.ID)
	}

	var known int64
	res := s.db.Model(&db.Ingredient{}).Where("id IN ?", ids).Count(&known)
	if res.Error != nil {
		return res.Error
	}
	if known != int64(len(ids)) {
		return ErrUnknownIngredient
	}
	return nil
}

func (s *Recipes) validateTags(tagIDs []uint64) error {
	if len(tagIDs) == 0 {
		return nil
	}
	seen := make(map[uint64]bool, len(tagIDs))
	for _, id := range tagIDs {
		if seen[id] {
			return ErrDuplicateTag
		}
		seen[id] = true
	}

	var known int64
	res := s.db.Model(&db.Tag{}).Where("id IN ?", tagIDs).Count(&known)
	if res.Error != nil {
		return res.Error
	}
	if known != int64(len(tagIDs)) {
		return ErrUnknownTag
	}
	return nil
}

func tagRefs(tagIDs []uint64) []db.Tag {
	tags := make([]db.Tag, len(tagIDs))
	for i := range tagIDs {
		tags[i] = db.Tag{
			GormForkedModel: db.GormForkedModel{
				ID: tagIDs[i],
			},
		}
	}
	return tags
}

func ingredientRows(recipeID uint64, items []IngredientAmount) []db.RecipeIngredient {
	rows := make([]db.RecipeIngredient, len(items))
	for i := range items {
		rows[i] = db.RecipeIngredient{
			RecipeID:     recipeID,
			IngredientID: items[i].ID,
			Amount:       items[i].Amount,
		}
	}
	return rows
}
