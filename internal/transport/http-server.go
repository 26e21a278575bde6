package transport

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/smizereens/foodgram-st/internal/config"
	"github.com/smizereens/foodgram-st/internal/db"
	"github.com/smizereens/foodgram-st/internal/service"
)

const defaultPageSize = 6

type (
	CustomValidator struct {
		validator *validator.Validate
	}

	HTTPServer struct {
		cfg           *config.Config
		auth          *service.Auth
		catalog       *service.Catalog
		recipes       *service.Recipes
		relations     *service.Relations
		shopping      *service.Shopping
		subscriptions *service.Subscriptions
		logger        *zap.SugaredLogger
	}
)

func NewHTTPServer(
	lc fx.Lifecycle,
	cfg *config.Config,
	auth *service.Auth,
	catalog *service.Catalog,
	recipes *service.Recipes,
	relations *service.Relations,
	shopping *service.Shopping,
	subscriptions *service.Subscriptions,
	logger *zap.SugaredLogger,
) *HTTPServer {
	e := echo.New()

	instance := HTTPServer{
		cfg:           cfg,
		auth:          auth,
		catalog:       catalog,
		recipes:       recipes,
		relations:     relations,
		shopping:      shopping,
		subscriptions: subscriptions,
		logger:        logger,
	}

	api := e.Group("/api")

	api.GET("/ingredients", instance.IngredientList)
	api.GET("/ingredients/:id", instance.IngredientGet)
	api.GET("/tags", instance.TagList)
	api.GET("/tags/:id", instance.TagGet)

	api.GET("/recipes", instance.RecipeList)
	api.POST("/recipes", instance.RecipeCreate)
	api.GET("/recipes/download_shopping_cart", instance.DownloadShoppingCart)
	api.GET("/recipes/:id", instance.RecipeGet)
	api.PATCH("/recipes/:id", instance.RecipeUpdate)
	api.DELETE("/recipes/:id", instance.RecipeDelete)
	api.GET("/recipes/:id/get_link", instance.RecipeGetLink)
	api.POST("/recipes/:id/favorite", instance.FavoriteAdd)
	api.DELETE("/recipes/:id/favorite", instance.FavoriteRemove)
	api.POST("/recipes/:id/shopping_cart", instance.ShoppingCartAdd)
	api.DELETE("/recipes/:id/shopping_cart", instance.ShoppingCartRemove)

	api.POST("/users", instance.UserRegister)
	api.GET("/users", instance.UserList)
	api.GET("/users/me", instance.UserMe)
	api.GET("/users/subscriptions", instance.SubscriptionList)
	api.POST("/users/set_password", instance.SetPassword)
	api.PUT("/users/me/avatar", instance.SetAvatar)
	api.DELETE("/users/me/avatar", instance.DeleteAvatar)
	api.GET("/users/:id", instance.UserGet)
	api.POST("/users/:id/subscribe", instance.Subscribe)
	api.DELETE("/users/:id/subscribe", instance.Unsubscribe)

	api.POST("/auth/token/login", instance.Login)
	api.POST("/auth/token/logout", instance.Logout)

	e.GET("/s/:id", instance.ShortLinkRedirect)
	e.Static("/media", cfg.MediaDir)
	e.GET("/ping", func(c echo.Context) error { return c.String(http.StatusOK, "pong") })

	e.Use(middleware.CORS())
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.Use(instance.AuthMiddleware)

	e.Validator = &CustomValidator{validator: validator.New()}

	echo.NotFoundHandler = func(c echo.Context) error {
		return c.NoContent(http.StatusNotFound)
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				listen := cfg.Host + ":" + cfg.Port
				if err := e.Start(listen); err != nil && err != http.ErrServerClosed {
					e.Logger.Fatal("shutting down the server")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Stopping HTTP server.")
			return e.Shutdown(ctx)
		},
	})

	return &instance
}

// AuthMiddleware binds the token's user to the request context when the
// "Authorization: Token <token>" header resolves. Anonymous requests
// pass through, handlers that need identity check for themselves.
func (s *HTTPServer) AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get("Authorization")
		token, found := strings.CutPrefix(header, "Token ")
		if !found || token == "" {
			return next(c)
		}

		user, err := s.auth.GetByToken(token)
		if err != nil {
			if !errors.Is(err, service.ErrNotFound) {
				s.logger.Errorw("find user by token", "error", err)
			}
			return c.NoContent(http.StatusUnauthorized)
		}

		c.Set("user", user)
		return next(c)
	}
}

////////

func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func BindAndValidate(c echo.Context, v interface{}) error {
	var err error
	if err = c.Bind(v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err = c.Validate(v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// ViewerFromContext returns the authenticated user or nil.
func ViewerFromContext(c echo.Context) *db.User {
	user, _ := c.Get("user").(*db.User)
	return user
}

func RequireUser(c echo.Context) (*db.User, error) {
	user := ViewerFromContext(c)
	if user == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized,
			detail("Authentication credentials were not provided."))
	}
	return user, nil
}

func GetParam(c echo.Context, name string) (string, error) {
	value := c.Param(name)
	if value == "" {
		return "", echo.NewHTTPError(http.StatusBadRequest, "invalid path param '"+name+"'")
	}
	return value, nil
}

func GetAndParseParam(c echo.Context, name string) (uint64, error) {
	v, e := GetParam(c, name)
	if e != nil {
		return 0, e
	}
	vv, e := strconv.ParseUint(v, 10, 64)
	if e != nil {
		return 0, echo.NewHTTPError(http.StatusNotFound, detail("Not found."))
	}
	return vv, nil
}

func detail(msg string) map[string]string {
	return map[string]string{"detail": msg}
}

// DomainHTTPError maps service sentinel errors onto HTTP statuses.
// Anything unrecognized bubbles up as a generic 500.
func DomainHTTPError(err error) error {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, detail("Not found."))
	case errors.Is(err, service.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden,
			detail("You do not have permission to perform this action."))
	case errors.Is(err, service.ErrAlreadyExists),
		errors.Is(err, service.ErrRelationNotFound),
		errors.Is(err, service.ErrSelfSubscription),
		errors.Is(err, service.ErrEmptyIngredientList),
		errors.Is(err, service.ErrDuplicateIngredient),
		errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrUnknownIngredient),
		errors.Is(err, service.ErrDuplicateTag),
		errors.Is(err, service.ErrUnknownTag),
		errors.Is(err, service.ErrInvalidCookingTime),
		errors.Is(err, service.ErrInvalidImage),
		errors.Is(err, service.ErrLoginUserNotFound),
		errors.Is(err, service.ErrLoginPasswordDoesNotMatch):
		return echo.NewHTTPError(http.StatusBadRequest, detail(err.Error()))
	case errors.Is(err, service.ErrMediaStorage):
		return echo.NewHTTPError(http.StatusInternalServerError,
			detail("Internal server error."))
	}
	return err
}

// ParsePage reads the page/limit query parameters with the defaults the
// frontend expects.
func ParsePage(c echo.Context) (page, limit int) {
	page, limit = 1, defaultPageSize
	if v := c.QueryParam("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			page = n
		}
	}
	if v := c.QueryParam("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	return page, limit
}

// ParseRecipesLimit reads the recipes_limit query parameter. A missing
// or non-numeric value means unlimited; the silent fallback is relied
// on by existing callers.
func ParseRecipesLimit(c echo.Context) int {
	v := c.QueryParam("recipes_limit")
	if v == "" {
		return -1
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return -1
	}
	return n
}

func (s *HTTPServer) pageResp(c echo.Context, page, limit int, count int64, results interface{}) PageResp {
	resp := PageResp{
		Count:   count,
		Results: results,
	}
	pageURL := func(n int) *string {
		u := fmt.Sprintf("%s%s?page=%d&limit=%d", s.cfg.BaseURL, c.Request().URL.Path, n, limit)
		return &u
	}
	if int64(page*limit) < count {
		resp.Next = pageURL(page + 1)
	}
	if page > 1 {
		resp.Previous = pageURL(page - 1)
	}
	return resp
}
