package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"pmsportal/internal/models/db_models"
)

type ClientRepository interface {
	FindByNuvamaCode(ctx context.Context, nuvamaCode string) (*db_models.Client, error)
	FindByEmail(ctx context.Context, email string) (*db_models.Client, error)
}

type clientRepository struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) ClientRepository {
	return &clientRepository{
		db: db,
	}
}

func (a *clientRepository) FindByNuvamaCode(ctx context.Context, nuvamaCode string) (*db_models.Client, error) {
	var client db_models.Client
	err := a.db.WithContext(ctx).First(&client, "nuvama_code = ?", nuvamaCode).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &client, nil
}

func (a *clientRepository) FindByEmail(ctx context.Context, email string) (*db_models.Client, error) {
	var client db_models.Client
	err := a.db.WithContext(ctx).First(&client, "LOWER(email) = LOWER(?)", email).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &client, nil
}
