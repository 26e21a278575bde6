package transport

import (
	"github.com/smizereens/foodgram-st/internal/db"
)

type (
	RegisterReq struct {
		Email     string `json:"email" validate:"required,email"`
		Username  string `json:"username" validate:"required"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Password  string `json:"password" validate:"required"`
	}

	LoginReq struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	SetPasswordReq struct {
		CurrentPassword string `json:"current_password" validate:"required"`
		NewPassword     string `json:"new_password" validate:"required"`
	}

	AvatarReq struct {
		Avatar string `json:"avatar" validate:"required"`
	}

	IngredientAmountReq struct {
		ID     uint64 `json:"id"`
		Amount int    `json:"amount"`
	}

	RecipeCreateReq struct {
		Ingredients []IngredientAmountReq `json:"ingredients"`
		Tags        []uint64              `json:"tags"`
		Image       string                `json:"image" validate:"required"`
		Name        string                `json:"name" validate:"required"`
		Text        string                `json:"text" validate:"required"`
		CookingTime int                   `json:"cooking_time"`
	}

	RecipeUpdateReq struct {
		Ingredients *[]IngredientAmountReq `json:"ingredients"`
		Tags        *[]uint64              `json:"tags"`
		Image       *string                `json:"image"`
		Name        *string                `json:"name"`
		Text        *string                `json:"text"`
		CookingTime *int                   `json:"cooking_time"`
	}

	UserResp struct {
		Email        string  `json:"email"`
		ID           uint64  `json:"id"`
		Username     string  `json:"username"`
		FirstName    string  `json:"first_name"`
		LastName     string  `json:"last_name"`
		IsSubscribed bool    `json:"is_subscribed"`
		Avatar       *string `json:"avatar"`
	}

	UserWithRecipesResp struct {
		UserResp
		Recipes      []RecipeMinifiedResp `json:"recipes"`
		RecipesCount int64                `json:"recipes_count"`
	}

	IngredientResp struct {
		ID              uint64 `json:"id"`
		Name            string `json:"name"`
		MeasurementUnit string `json:"measurement_unit"`
	}

	TagResp struct {
		ID    uint64 `json:"id"`
		Name  string `json:"name"`
		Color string `json:"color"`
		Slug  string `json:"slug"`
	}

	RecipeIngredientResp struct {
		ID              uint64 `json:"id"`
		Name            string `json:"name"`
		MeasurementUnit string `json:"measurement_unit"`
		Amount          int    `json:"amount"`
	}

	RecipeResp struct {
		ID               uint64                 `json:"id"`
		Author           UserResp               `json:"author"`
		Ingredients      []RecipeIngredientResp `json:"ingredients"`
		IsFavorited      bool                   `json:"is_favorited"`
		IsInShoppingCart bool                   `json:"is_in_shopping_cart"`
		Name             string                 `json:"name"`
		Image            string                 `json:"image"`
		Text             string                 `json:"text"`
		CookingTime      int                    `json:"cooking_time"`
		Tags             []TagResp              `json:"tags"`
	}

	RecipeMinifiedResp struct {
		ID          uint64 `json:"id"`
		Name        string `json:"name"`
		Image       string `json:"image"`
		CookingTime int    `json:"cooking_time"`
	}

	ShortLinkResp struct {
		ShortLink string `json:"short_link"`
	}

	PageResp struct {
		Count    int64       `json:"count"`
		Next     *string     `json:"next"`
		Previous *string     `json:"previous"`
		Results  interface{} `json:"results"`
	}
)

func mediaURL(base, name string) string {
	if name == "" {
		return ""
	}
	return base + "/media/" + name
}

func newUserResp(u *db.User, subscribed bool, base string) UserResp {
	resp := UserResp{
		Email:        u.Email,
		ID:           u.ID,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: subscribed,
	}
	if u.Avatar != nil {
		url := mediaURL(base, *u.Avatar)
		resp.Avatar = &url
	}
	return resp
}

func newTagResp(t *db.Tag) TagResp {
	return TagResp{
		ID:    t.ID,
		Name:  t.Name,
		Color: t.Color,
		Slug:  t.Slug,
	}
}

func newIngredientResp(i *db.Ingredient) IngredientResp {
	return IngredientResp{
		ID:              i.ID,
		Name:            i.Name,
		MeasurementUnit: i.MeasurementUnit,
	}
}

func newRecipeMinifiedResp(r *db.Recipe, base string) RecipeMinifiedResp {
	return RecipeMinifiedResp{
		ID:          r.ID,
		Name:        r.Name,
		Image:       mediaURL(base, r.Image),
		CookingTime: r.CookingTime,
	}
}

func newRecipeResp(r *db.Recipe, favorited, inCart, authorSubscribed bool, base string) RecipeResp {
	ingredients := make([]RecipeIngredientResp, len(r.Ingredients))
	for i := range r.Ingredients {
		ingredients[i] = RecipeIngredientResp{
			ID:              r.Ingredients[i].IngredientID,
			Name:            r.Ingredients[i].Ingredient.Name,
			MeasurementUnit: r.Ingredients[i].Ingredient.MeasurementUnit,
			Amount:          r.Ingredients[i].Amount,
		}
	}
	tags := make([]TagResp, len(r.Tags))
	for i := range r.Tags {
		tags[i] = newTagResp(&r.Tags[i])
	}
	return RecipeResp{
		ID:               r.ID,
		Author:           newUserResp(&r.Author, authorSubscribed, base),
		Ingredients:      ingredients,
		IsFavorited:      favorited,
		IsInShoppingCart: inCart,
		Name:             r.Name,
		Image:            mediaURL(base, r.Image),
		Text:             r.Text,
		CookingTime:      r.CookingTime,
		Tags:             tags,
	}
}
