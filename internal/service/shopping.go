package service

import (
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ShoppingListItem is one aggregated line of the report. Grouping is on
// the display key (name, measurement_unit), not the ingredient id.
type ShoppingListItem struct {
	Name            string
	MeasurementUnit string
	TotalAmount     int64
}

const shoppingListHeader = "Список покупок:\n\n"

// Shopping aggregates the user's cart into a plain-text shopping list.
type Shopping struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

func NewShopping(g *gorm.DB, l *zap.SugaredLogger) *Shopping {
	return &Shopping{
		db:     g,
		logger: l,
	}
}

// BuildItems sums ingredient amounts over every recipe in the user's
// cart. One joined query, so the result is a consistent snapshot.
func (s *Shopping) BuildItems(userID uint64) ([]ShoppingListItem, error) {
	sql, args, err := squirrel.
		Select("i.name", "i.measurement_unit", "SUM(ri.amount) AS total_amount").
		From("shopping_carts sc").
		Join("recipe_ingredients ri ON ri.recipe_id = sc.recipe_id").
		Join("ingredients i ON i.id = ri.ingredient_id").
		Where(squirrel.Eq{"sc.user_id": userID}).
		GroupBy("i.name", "i.measurement_unit").
		OrderBy("i.name").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build sql")
	}

	items := make([]ShoppingListItem, 0)
	res := s.db.Raw(sql, args...).Scan(&items)
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "scan")
	}
	return items, nil
}

func (s *Shopping) BuildReport(userID uint64) (string, error) {
	items, err := s.BuildItems(userID)
	if err != nil {
		return "", err
	}
	return RenderShoppingList(items), nil
}

// RenderShoppingList formats the aggregated items as the numbered
// plain-text report. An empty cart yields just the header.
func RenderShoppingList(items []ShoppingListItem) string {
	b := strings.Builder{}
	b.WriteString(shoppingListHeader)
	for i, item := range items {
		fmt.Fprintf(&b, "%d. %s (%s) — %d\n",
			i+1, item.Name, item.MeasurementUnit, item.TotalAmount)
	}
	return b.String()
}
