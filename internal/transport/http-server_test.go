package transport

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/smizereens/foodgram-st/internal/service"
)

func testContext(target string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestParseRecipesLimit(t *testing.T) {
	assert.Equal(t, -1, ParseRecipesLimit(testContext("/")))
	assert.Equal(t, 3, ParseRecipesLimit(testContext("/?recipes_limit=3")))
	assert.Equal(t, 0, ParseRecipesLimit(testContext("/?recipes_limit=0")))

	// a non-numeric limit is silently ignored
	assert.Equal(t, -1, ParseRecipesLimit(testContext("/?recipes_limit=abc")))
	assert.Equal(t, -1, ParseRecipesLimit(testContext("/?recipes_limit=-5")))
}

func TestParsePage(t *testing.T) {
	page, limit := ParsePage(testContext("/"))
	assert.Equal(t, 1, page)
	assert.Equal(t, 6, limit)

	page, limit = ParsePage(testContext("/?page=3&limit=10"))
	assert.Equal(t, 3, page)
	assert.Equal(t, 10, limit)

	page, limit = ParsePage(testContext("/?page=abc&limit=-1"))
	assert.Equal(t, 1, page)
	assert.Equal(t, 6, limit)
}

func TestBoolQuery(t *testing.T) {
	assert.True(t, boolQuery(testContext("/?is_favorited=1"), "is_favorited"))
	assert.True(t, boolQuery(testContext("/?is_favorited=true"), "is_favorited"))
	assert.False(t, boolQuery(testContext("/?is_favorited=0"), "is_favorited"))
	assert.False(t, boolQuery(testContext("/"), "is_favorited"))
}

func TestDomainHTTPError(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{service.ErrNotFound, http.StatusNotFound},
		{service.ErrForbidden, http.StatusForbidden},
		{service.ErrAlreadyExists, http.StatusBadRequest},
		{service.ErrRelationNotFound, http.StatusBadRequest},
		{service.ErrSelfSubscription, http.StatusBadRequest},
		{service.ErrEmptyIngredientList, http.StatusBadRequest},
		{service.ErrDuplicateIngredient, http.StatusBadRequest},
		{service.ErrInvalidAmount, http.StatusBadRequest},
		{service.ErrUnknownIngredient, http.StatusBadRequest},
		{service.ErrDuplicateTag, http.StatusBadRequest},
		{service.ErrInvalidCookingTime, http.StatusBadRequest},
		{service.ErrInvalidImage, http.StatusBadRequest},
		{service.ErrMediaStorage, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		httpErr, ok := DomainHTTPError(tc.err).(*echo.HTTPError)
		assert.True(t, ok, tc.err.Error())
		assert.Equal(t, tc.code, httpErr.Code, tc.err.Error())
	}
}

func TestMediaURL(t *testing.T) {
	assert.Equal(t, "", mediaURL("http://host", ""))
	assert.Equal(t, "http://host/media/a.png", mediaURL("http://host", "a.png"))
}
