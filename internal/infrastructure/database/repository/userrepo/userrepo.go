package userrepo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"voiceagent-server/internal/domain/user"
	"voiceagent-server/internal/infrastructure/database/dbschema"
)

type UserGormRepository struct {
	db *gorm.DB
}

var _ user.Store = (*UserGormRepository)(nil)

func NewUserGormRepository(db *gorm.DB) user.Store {
	return &UserGormRepository{db: db}
}

func (repo *UserGormRepository) Create(ctx context.Context, u *user.User) error {
	return repo.db.WithContext(ctx).Create(dbschema.NewSchemaUser(u)).Error
}

func (repo *UserGormRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	var entity dbschema.User
	err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		First(&entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, user.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return entity.EtoD(), nil
}

func (repo *UserGormRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	var entity dbschema.User
	err := repo.db.WithContext(ctx).
		Where("email = ?", email).
		First(&entity).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, user.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return entity.EtoD(), nil
}
