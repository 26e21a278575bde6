package service

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/smizereens/foodgram-st/internal/db"
)

// Catalog serves the static ingredient and tag reference data.
type Catalog struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

func NewCatalog(g *gorm.DB, l *zap.SugaredLogger) *Catalog {
	return &Catalog{
		db:     g,
		logger: l,
	}
}

func (s *Catalog) IngredientGet(id uint64) (*db.Ingredient, error) {
	ingredient := db.Ingredient{}
	res := s.db.First(&ingredient, id)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, res.Error
	}
	return &ingredient, nil
}

// IngredientSearch lists ingredients, optionally narrowed to a
// case-insensitive name prefix.
func (s *Catalog) IngredientSearch(namePrefix string) ([]db.Ingredient, error) {
	ingredients := make([]db.Ingredient, 0)
	q := s.db.Order("name")
	if namePrefix != "" {
		q = q.Where("LOWER(name) LIKE LOWER(?)", namePrefix+"%")
	}
	res := q.Find(&ingredients)
	if res.Error != nil {
		return nil, res.Error
	}
	return ingredients, nil
}

func (s *Catalog) TagGet(id uint64) (*db.Tag, error) {
	tag := db.Tag{}
	res := s.db.First(&tag, id)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, res.Error
	}
	return &tag, nil
}

func (s *Catalog) TagList() ([]db.Tag, error) {
	tags := make([]db.Tag, 0)
	res := s.db.Order("id").Find(&tags)
	if res.Error != nil {
		return nil, res.Error
	}
	return tags, nil
}

type ingredientSeed struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

// ImportIngredients loads reference data from a JSON file, skipping
// entries whose (name, measurement_unit) pair is already present.
func (s *Catalog) ImportIngredients(path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, errors.Wrap(err, "read ingredients file")
	}

	seeds := make([]ingredientSeed, 0)
	if err := json.Unmarshal(raw, &seeds); err != nil {
		return 0, errors.Wrap(err, "decode ingredients file")
	}

	existing := make([]db.Ingredient, 0)
	if res := s.db.Find(&existing); res.Error != nil {
		return 0, res.Error
	}
	seen := make(map[[2]string]bool, len(existing))
	for _, in := range existing {
		seen[[2]string{in.Name, in.MeasurementUnit}] = true
	}

	toCreate := make([]db.Ingredient, 0, len(seeds))
	for _, seed := range seeds {
		if seed.Name == "" || seed.MeasurementUnit == "" {
			continue
		}
		key := [2]string{seed.Name, seed.MeasurementUnit}
		if seen[key] {
			continue
		}
		seen[key] = true
		toCreate = append(toCreate, db.Ingredient{
			Name:            seed.Name,
			MeasurementUnit: seed.MeasurementUnit,
		})
	}

	if len(toCreate) == 0 {
		return 0, nil
	}
	if res := s.db.Create(&toCreate); res.Error != nil {
		return 0, errors.Wrap(res.Error, "bulk create ingredients")
	}
	s.logger.Infow("imported ingredients", "count", len(toCreate))
	return len(toCreate), nil
}
