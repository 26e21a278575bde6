package transport

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/smizereens/foodgram-st/internal/db"
)

func (s *HTTPServer) UserRegister(c echo.Context) error {
	req := RegisterReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := s.auth.Register(req.Email, req.Username, req.FirstName, req.LastName, req.Password)
	if err != nil {
		return DomainHTTPError(err)
	}
	return c.JSON(http.StatusCreated, newUserResp(user, false, s.cfg.BaseURL))
}

func (s *HTTPServer) Login(c echo.Context) error {
	req := LoginReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	token, err := s.auth.Login(req.Email, req.Password)
	if err != nil {
		return DomainHTTPError(err)
	}

	resp := struct {
		AuthToken string `json:"auth_token"`
	}{
		AuthToken: token,
	}
	return c.JSON(http.StatusOK, &resp)
}

func (s *HTTPServer) Logout(c echo.Context) error {
	user, err := RequireUser(c)
	if err != nil {
		return err
	}

	if err := s.auth.Logout(user); err != nil {
		return DomainHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *HTTPServer) UserList(c echo.Context) error {
	viewer := ViewerFromContext(c)
	page, limit := ParsePage(c)

	users, total, err := s.auth.List((page-1)*limit, limit)
	if err != nil {
		return DomainHTTPError(err)
	}

	subSet := map[uint64]bool{}
	if viewer != nil {
		ids := make([]uint64, len(users))
		for i := range users {
			ids[i] = users[i].ID
		}
		if subSet, err = s.subscriptions.IsSubscribedBatch(viewer.ID, ids); err != nil {
			return DomainHTTPError(err)
		}
	}

	resp := make([]UserResp, len(users))
	for i := range users {
		resp[i] = newUserResp(&users[i], subSet[users[i].ID], s.cfg.BaseURL)
	}
	return c.JSON(http.StatusOK, s.pageResp(c, page, limit, total, resp))
}

func (s *HTTPServer) UserMe(c echo.Context) error {
	user, err := RequireUser(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newUserResp(user, false, s.cfg.BaseURL))
}

func (s *HTTPServer) UserGet(c echo.Context) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}

	user, err := s.auth.GetByID(id)
	if err != nil {
		return DomainHTTPError(err)
	}

	subscribed := false
	if viewer := ViewerFromContext(c); viewer != nil {
		if subscribed, err = s.subscriptions.IsSubscribed(viewer.ID, user.ID); err != nil {
			return DomainHTTPError(err)
		}
	}
	return c.JSON(http.StatusOK, newUserResp(user, subscribed, s.cfg.BaseURL))
}

func (s *HTTPServer) SetPassword(c echo.Context) error {
	user, err := RequireUser(c)
	if err != nil {
		return err
	}

	req := SetPasswordReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	if err := s.auth.SetPassword(user, req.CurrentPassword, req.NewPassword); err != nil {
		return DomainHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *HTTPServer) SetAvatar(c echo.Context) error {
	user, err := RequireUser(c)
	if err != nil {
		return err
	}

	req := AvatarReq{}
	if err := BindAndValidate(c, &req); err != nil {
		return err
	}

	if err := s.auth.SetAvatar(user, req.Avatar); err != nil {
		return DomainHTTPError(err)
	}

	updated, err := s.auth.GetByID(user.ID)
	if err != nil {
		return DomainHTTPError(err)
	}
	return c.JSON(http.StatusOK, newUserResp(updated, false, s.cfg.BaseURL))
}

func (s *HTTPServer) DeleteAvatar(c echo.Context) error {
	user, err := RequireUser(c)
	if err != nil {
		return err
	}

	if err := s.auth.DeleteAvatar(user); err != nil {
		return DomainHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *HTTPServer) Subscribe(c echo.Context) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	user, err := RequireUser(c)
	if err != nil {
		return err
	}

	author, err := s.subscriptions.Subscribe(user, id)
	if err != nil {
		return DomainHTTPError(err)
	}

	resp, err := s.userWithRecipes(author, true, ParseRecipesLimit(c))
	if err != nil {
		return DomainHTTPError(err)
	}
	return c.JSON(http.StatusCreated, resp)
}

func (s *HTTPServer) Unsubscribe(c echo.Context) error {
	id, err := GetAndParseParam(c, "id")
	if err != nil {
		return err
	}
	user, err := RequireUser(c)
	if err != nil {
		return err
	}

	if err := s.subscriptions.Unsubscribe(user, id); err != nil {
		return DomainHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *HTTPServer) SubscriptionList(c echo.Context) error {
	user, err := RequireUser(c)
	if err != nil {
		return err
	}
	page, limit := ParsePage(c)

	authors, total, err := s.subscriptions.ListAuthors(user.ID, (page-1)*limit, limit)
	if err != nil {
		return DomainHTTPError(err)
	}

	recipesLimit := ParseRecipesLimit(c)
	resp := make([]UserWithRecipesResp, len(authors))
	for i := range authors {
		if resp[i], err = s.userWithRecipes(&authors[i], true, recipesLimit); err != nil {
			return DomainHTTPError(err)
		}
	}
	return c.JSON(http.StatusOK, s.pageResp(c, page, limit, total, resp))
}

// userWithRecipes embeds the author's recent recipes (limited) and the
// true total count into the user representation.
func (s *HTTPServer) userWithRecipes(author *db.User, subscribed bool, recipesLimit int) (UserWithRecipesResp, error) {
	recipes, count, err := s.recipes.AuthorRecipes(author.ID, recipesLimit)
	if err != nil {
		return UserWithRecipesResp{}, err
	}

	minified := make([]RecipeMinifiedResp, len(recipes))
	for i := range recipes {
		minified[i] = newRecipeMinifiedResp(&recipes[i], s.cfg.BaseURL)
	}
	return UserWithRecipesResp{
		UserResp:     newUserResp(author, subscribed, s.cfg.BaseURL),
		Recipes:      minified,
		RecipesCount: count,
	}, nil
}
