package repository

import (
	"context"

	"github.com/Jottaaa12/pdv-web-admin/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, tx *gorm.DB, u *model.User) error
	Update(ctx context.Context, tx *gorm.DB, u *model.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	// FindForUpdate locks the user row; opening a session serializes on it.
	FindForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.User, error)
	FindByUsername(ctx context.Context, tx *gorm.DB, username string) (*model.User, error)
	List(ctx context.Context, includeInactive bool) ([]model.User, error)
	DB() *gorm.DB
}

type userRepo struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) UserRepository { return &userRepo{db: db} }

func (r *userRepo) DB() *gorm.DB { return r.db }

func (r *userRepo) Create(ctx context.Context, tx *gorm.DB, u *model.User) error {
	return Translate(conn(ctx, r.db, tx).Create(u).Error, "user")
}

func (r *userRepo) Update(ctx context.Context, tx *gorm.DB, u *model.User) error {
	return Translate(conn(ctx, r.db, tx).Save(u).Error, "user")
}

func (r *userRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, Translate(err, "user")
	}
	return &u, nil
}

func (r *userRepo) FindForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.User, error) {
	var u model.User
	if err := conn(ctx, r.db, tx).Clauses(forUpdate).First(&u, "id = ?", id).Error; err != nil {
		return nil, Translate(err, "user")
	}
	return &u, nil
}

func (r *userRepo) FindByUsername(ctx context.Context, tx *gorm.DB, username string) (*model.User, error) {
	var u model.User
	if err := conn(ctx, r.db, tx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, Translate(err, "user")
	}
	return &u, nil
}

func (r *userRepo) List(ctx context.Context, includeInactive bool) ([]model.User, error) {
	var users []model.User
	q := r.db.WithContext(ctx).Order("username ASC")
	if !includeInactive {
		q = q.Where("active = true")
	}
	err := q.Find(&users).Error
	return users, Translate(err, "user")
}
