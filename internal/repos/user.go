package repos

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/cardiobridge-backend/internal/domain"
	"github.com/yungbote/cardiobridge-backend/internal/pkg/logger"
)

// ErrDuplicateEmail surfaces the unique-constraint violation on user.email.
// Under concurrent signups with the same email the database decides the
// winner; the loser sees this error.
var ErrDuplicateEmail = errors.New("email already registered")

type UserRepo interface {
	Create(ctx context.Context, tx *gorm.DB, user *domain.User) error
	GetByID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*domain.User, error)
	EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error)
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	repoLog := baseLog.With("repo", "UserRepo")
	return &userRepo{db: db, log: repoLog}
}

// NormalizeEmail lowercases and trims an email so that uniqueness and lookup
// are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (ur *userRepo) Create(ctx context.Context, tx *gorm.DB, user *domain.User) error {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}
	user.Email = NormalizeEmail(user.Email)
	if err := transaction.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (ur *userRepo) GetByID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*domain.User, error) {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}
	var result domain.User
	if err := transaction.WithContext(ctx).
		Where("id = ?", userID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (ur *userRepo) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*domain.User, error) {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}
	var result domain.User
	if err := transaction.WithContext(ctx).
		Where("email = ?", NormalizeEmail(email)).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (ur *userRepo) EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&domain.User{}).
		Where("email = ?", NormalizeEmail(email)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
