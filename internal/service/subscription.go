package service

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/smizereens/foodgram-st/internal/db"
)

// Subscriptions is the follow graph between users and recipe authors.
type Subscriptions struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

func NewSubscriptions(g *gorm.DB, l *zap.SugaredLogger) *Subscriptions {
	return &Subscriptions{
		db:     g,
		logger: l,
	}
}

func (s *Subscriptions) Subscribe(user *db.User, authorID uint64) (*db.User, error) {
	author := db.User{}
	res := s.db.First(&author, authorID)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, res.Error
	}

	// self check comes before the uniqueness constraint can fire
	if user.ID == authorID {
		return nil, ErrSelfSubscription
	}

	res = s.db.Create(&db.Subscription{UserID: user.ID, AuthorID: authorID})
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyExists
		}
		return nil, res.Error
	}
	return &author, nil
}

func (s *Subscriptions) Unsubscribe(user *db.User, authorID uint64) error {
	author := db.User{}
	res := s.db.First(&author, authorID)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return res.Error
	}

	res = s.db.Where("user_id = ? AND author_id = ?", user.ID, authorID).
		Delete(&db.Subscription{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRelationNotFound
	}
	return nil
}

func (s *Subscriptions) IsSubscribed(userID, authorID uint64) (bool, error) {
	set, err := s.IsSubscribedBatch(userID, []uint64{authorID})
	if err != nil {
		return false, err
	}
	return set[authorID], nil
}

func (s *Subscriptions) IsSubscribedBatch(userID uint64, authorIDs []uint64) (map[uint64]bool, error) {
	set := make(map[uint64]bool, len(authorIDs))
	if len(authorIDs) == 0 {
		return set, nil
	}

	ids := make([]uint64, 0, len(authorIDs))
	res := s.db.Model(&db.Subscription{}).
		Where("user_id = ? AND author_id IN ?", userID, authorIDs).
		Pluck("author_id", &ids)
	if res.Error != nil {
		return nil, res.Error
	}

	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// ListAuthors pages through the authors the user follows, oldest
// subscription first.
func (s *Subscriptions) ListAuthors(userID uint64, offset, limit int) ([]db.User, int64, error) {
	var total int64
	res := s.db.Model(&db.Subscription{}).Where("user_id = ?", userID).Count(&total)
	if res.Error != nil {
		return nil, 0, res.Error
	}

	q := s.db.
		Joins("JOIN subscriptions s ON s.author_id = users.id").
		Where("s.user_id = ?", userID).
		Order("s.id")
	if limit > 0 {
		q = q.Offset(offset).Limit(limit)
	}
	authors := make([]db.User, 0)
	if res := q.Find(&authors); res.Error != nil {
		return nil, 0, res.Error
	}
	return authors, total, nil
}
