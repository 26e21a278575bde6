package transport

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/smizereens/foodgram-st/internal/db"
	"github.com/smizereens/foodgram-st/internal/service"
)

func (s *HTTPServer) IngredientList(c echo.Context) error {
	ingredients, err := s.catalog.IngredientSearch(c.QueryParam("name"))
	if err != nil {
		return DomainHTTPError(err)
	}

	resp := make([]IngredientResp, len(ingredients))
	for i := range ingredients {
		resp[i] = newIngredientResp(&ingredients[i])
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *HTTPServer) IngredientGet(c echo.Context) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}

	ingredient, err := s.catalog.IngredientGet(id)
	if err != nil {
		return DomainHTTPError(err)
	}
	return c.JSON(http.StatusOK, newIngredientResp(ingredient))
}

func (s *HTTPServer) TagList(c echo.Context) error {
	tags, err := s.catalog.TagList()
	if err != nil {
		return DomainHTTPError(err)
	}

	resp := make([]TagResp, len(tags))
	for i := range tags {
		resp[i] = newTagResp(&tags[i])
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *HTTPServer) TagGet(c echo.Context) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}

	tag, err := s.catalog.TagGet(id)
	if err != nil {
		return DomainHTTPError(err)
	}
	return c.JSON(http.StatusOK, newTagResp(tag))
}

func (s *HTTPServer) RecipeList(c echo.Context) error {
	viewer := ViewerFromContext(c)
	page, limit := ParsePage(c)

	filter := service.RecipeFilter{
		TagSlugs: c.QueryParams()["tags"],
		Viewer:   viewer,
		Offset:   (page - 1) * limit,
		Limit:    limit,
	}
	if v := c.QueryParam("author"); v != "" {
		if id, err := strconv.ParseUint(v, 10, 64); err == nil {
			filter.AuthorID = &id
		}
	}
	if viewer != nil {
		filter.Favorited = boolQuery(c, "is_favorited")
		filter.InShoppingCart = boolQuery(c, "is_in_shopping_cart")
	}

	recipes, total, err := s.recipes.List(filter)
	if err != nil {
		return DomainHTTPError(err)
	}

	resp, err := s.recipeRespList(viewer, recipes)
	if err != nil {
		return DomainHTTPError(err)
	}
	return c.JSON(http.StatusOK, s.pageResp(c, page, limit, total, resp))
}

func (s *HTTPServer) RecipeGet(c echo.Context) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}

	recipe, err := s.recipes.Get(id)
	if err != nil {
		return DomainHTTPError(err)
	}

	resp, err := s.recipeRespList(ViewerFromContext(c), []db.Recipe{*recipe})
	if err != nil {
		return DomainHTTPError(err)
	}
	return c.JSON(http.StatusOK, resp[0])
}

func (s *HTTPServer) RecipeCreate(c echo.Context) error {
	user, err := RequireUser(c)
	if err != nil {
		return err
	}

	req := RecipeCreateReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	recipe, err := s.recipes.Create(user, service.RecipeInput{
		Name:        req.Name,
		Text:        req.Text,
		CookingTime: req.CookingTime,
		Image:       req.Image,
		Ingredients: ingredientAmounts(req.Ingredients),
		TagIDs:      req.Tags,
	})
	if err != nil {
		return DomainHTTPError(err)
	}

	resp, err := s.recipeRespList(user, []db.Recipe{*recipe})
	if err != nil {
		return DomainHTTPError(err)
	}
	return c.JSON(http.StatusCreated, resp[0])
}

func (s *HTTPServer) RecipeUpdate(c echo.Context) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	user, err := RequireUser(c)
	if err != nil {
		return err
	}

	req := RecipeUpdateReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	update := service.RecipeUpdate{
		Name:        req.Name,
		Text:        req.Text,
		CookingTime: req.CookingTime,
		Image:       req.Image,
		TagIDs:      req.Tags,
	}
	if req.Ingredients != nil {
		items := ingredientAmounts(*req.Ingredients)
		update.Ingredients = &items
	}

	recipe, err := s.recipes.Update(user, id, update)
	if err != nil {
		return DomainHTTPError(err)
	}

	resp, err := s.recipeRespList(user, []db.Recipe{*recipe})
	if err != nil {
		return DomainHTTPError(err)
	}
	return c.JSON(http.StatusOK, resp[0])
}

func (s *HTTPServer) RecipeDelete(c echo.Context) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	user, err := RequireUser(c)
	if err != nil {
		return err
	}

	if err := s.recipes.Delete(user, id); err != nil {
		return DomainHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *HTTPServer) RecipeGetLink(c echo.Context) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}

	if _, err := s.recipes.Get(id); err != nil {
		return DomainHTTPError(err)
	}
	return c.JSON(http.StatusOK, ShortLinkResp{
		ShortLink: s.cfg.BaseURL + "/s/" + strconv.FormatUint(id, 10),
	})
}

func (s *HTTPServer) ShortLinkRedirect(c echo.Context) error {
	id, err := GetParam(c, "id")
	if err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, "/api/recipes/"+id)
}

func (s *HTTPServer) FavoriteAdd(c echo.Context) error {
	return s.relationAdd(c, service.RelationFavorite)
}

func (s *HTTPServer) FavoriteRemove(c echo.Context) error {
	return s.relationRemove(c, service.RelationFavorite)
}

func (s *HTTPServer) ShoppingCartAdd(c echo.Context) error {
	return s.relationAdd(c, service.RelationShoppingCart)
}

func (s *HTTPServer) ShoppingCartRemove(c echo.Context) error {
	return s.relationRemove(c, service.RelationShoppingCart)
}

func (s *HTTPServer) relationAdd(c echo.Context, kind service.RelationKind) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	user, err := RequireUser(c)
	if err != nil {
		return err
	}

	recipe, err := s.relations.Add(kind, user, id)
	if err != nil {
		return DomainHTTPError(err)
	}
	return c.JSON(http.StatusCreated, newRecipeMinifiedResp(recipe, s.cfg.BaseURL))
}

func (s *HTTPServer) relationRemove(c echo.Context, kind service.RelationKind) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	user, err := RequireUser(c)
	if err != nil {
		return err
	}

	if err := s.relations.Remove(kind, user, id); err != nil {
		return DomainHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *HTTPServer) DownloadShoppingCart(c echo.Context) error {
	user, err := RequireUser(c)
	if err != nil {
		return err
	}

	report, err := s.shopping.BuildReport(user.ID)
	if err != nil {
		return DomainHTTPError(err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		`attachment; filename=shopping_list.txt`)
	return c.Blob(http.StatusOK, "text/plain; charset=utf-8", []byte(report))
}

// recipeRespList fills the per-viewer flags for a batch of recipes with
// one relation query per kind instead of one per recipe.
func (s *HTTPServer) recipeRespList(viewer *db.User, recipes []db.Recipe) ([]RecipeResp, error) {
	var (
		favSet, cartSet, subSet map[uint64]bool
		err                     error
	)
	if viewer != nil {
		ids := make([]uint64, len(recipes))
		authorIDs := make([]uint64, len(recipes))
		for i := range recipes {
			ids[i] = recipes[i].ID
			authorIDs[i] = recipes[i].AuthorID
		}

		if favSet, err = s.relations.HasBatch(service.RelationFavorite, viewer.ID, ids); err != nil {
			return nil, err
		}
		if cartSet, err = s.relations.HasBatch(service.RelationShoppingCart, viewer.ID, ids); err != nil {
			return nil, err
		}
		if subSet, err = s.subscriptions.IsSubscribedBatch(viewer.ID, authorIDs); err != nil {
			return nil, err
		}
	}

	resp := make([]RecipeResp, len(recipes))
	for i := range recipes {
		r := &recipes[i]
		resp[i] = newRecipeResp(r,
			favSet[r.ID], cartSet[r.ID], subSet[r.AuthorID], s.cfg.BaseURL)
	}
	return resp, nil
}

func ingredientAmounts(req []IngredientAmountReq) []service.IngredientAmount {
	items := make([]service.IngredientAmount, len(req))
	for i := range req {
		items[i] = service.IngredientAmount{
			ID:     req[i].ID,
			Amount: req[i].Amount,
		}
	}
	return items
}

func boolQuery(c echo.Context, name string) bool {
	v := c.QueryParam(name)
	return v == "1" || v == "true" || v == "True"
}
