package service

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/smizereens/foodgram-st/internal/db"
)

// Auth is the identity collaborator: registration, token login and the
// profile bits the recipe API embeds into its responses.
type Auth struct {
	db     *gorm.DB
	media  *Media
	logger *zap.SugaredLogger
}

func NewAuth(g *gorm.DB, media *Media, l *zap.SugaredLogger) *Auth {
	return &Auth{
		db:     g,
		media:  media,
		logger: l,
	}
}

func (s *Auth) Register(email, username, firstName, lastName, pass string) (*db.User, error) {
	hash, err := s.bcryptGen(pass)
	if err != nil {
		return nil, errors.Wrap(err, "bcryptGen")
	}
	user := db.User{
		Email:     email,
		Username:  username,
		FirstName: firstName,
		LastName:  lastName,
		Password:  hash,
	}
	res := s.db.Create(&user)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyExists
		}
		return nil, res.Error
	}
	return &user, nil
}

func (s *Auth) Login(email, pass string) (string, error) {
	user := db.User{}
	res := s.db.Where("email = ?", email).First(&user)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return "", ErrLoginUserNotFound
		}
		return "", res.Error
	}

	if err := s.bcryptCheck(user.Password, pass); err != nil {
		return "", ErrLoginPasswordDoesNotMatch
	}

	token := uuid.New().String()
	res = s.db.Model(&user).Update("token", token)
	if res.Error != nil {
		return "", errors.Wrap(res.Error, "update token")
	}

	return token, nil
}

func (s *Auth) Logout(user *db.User) error {
	res := s.db.Model(user).Update("token", "")
	if res.Error != nil {
		return errors.Wrap(res.Error, "clear token")
	}
	return nil
}

func (s *Auth) SetPassword(user *db.User, currentPass, newPass string) error {
	if err := s.bcryptCheck(user.Password, currentPass); err != nil {
		return ErrLoginPasswordDoesNotMatch
	}
	hash, err := s.bcryptGen(newPass)
	if err != nil {
		return errors.Wrap(err, "bcryptGen")
	}
	res := s.db.Model(user).Update("password", hash)
	if res.Error != nil {
		return errors.Wrap(res.Error, "update password")
	}
	return nil
}

func (s *Auth) GetByToken(token string) (*db.User, error) {
	user := db.User{}
	res := s.db.Where("token = ?", token).First(&user)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, res.Error
	}
	return &user, nil
}

func (s *Auth) GetByID(id uint64) (*db.User, error) {
	user := db.User{}
	res := s.db.First(&user, id)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, res.Error
	}
	return &user, nil
}

func (s *Auth) List(offset, limit int) ([]db.User, int64, error) {
	var total int64
	if res := s.db.Model(&db.User{}).Count(&total); res.Error != nil {
		return nil, 0, res.Error
	}

	users := make([]db.User, 0)
	res := s.db.Order("id").Offset(offset).Limit(limit).Find(&users)
	if res.Error != nil {
		return nil, 0, res.Error
	}
	return users, total, nil
}

func (s *Auth) SetAvatar(user *db.User, dataURI string) error {
	name, err := s.media.Save(dataURI)
	if err != nil {
		return err
	}

	old := user.Avatar
	res := s.db.Model(user).Update("avatar", name)
	if res.Error != nil {
		return errors.Wrap(res.Error, "update avatar")
	}
	if old != nil {
		// replaced file, best effort cleanup
		_ = s.media.Delete(*old)
	}
	return nil
}

func (s *Auth) DeleteAvatar(user *db.User) error {
	if user.Avatar == nil {
		return nil
	}
	if err := s.media.Delete(*user.Avatar); err != nil {
		return err
	}
	res := s.db.Model(user).Update("avatar", nil)
	if res.Error != nil {
		return errors.Wrap(res.Error, "clear avatar")
	}
	return nil
}

func (s *Auth) bcryptGen(pass string) (string, error) {
	passwordHashB, err := bcrypt.GenerateFromPassword([]byte(pass), 14)
	if err != nil {
		return "", errors.Wrap(err, "generate password hash")
	}
	return string(passwordHashB), nil
}

func (s *Auth) bcryptCheck(hash, pass string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pass))
}
