package repository

import (
	"context"
	"errors"
	"strconv"

	"gorm.io/gorm"

	"github.com/rayansaffron/storefront/apperr"
	"github.com/rayansaffron/storefront/models"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Register stores a new user. The first user ever registered becomes admin.
func (r *UserRepository) Register(ctx context.Context, user *models.User) error {
	const op = "repository.Users.Register"

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.User{}).
			Where("email = ? OR username = ?", user.Email, user.Username).
			Count(&existing).Error; err != nil {
			return apperr.E(apperr.KindPersistenceFailed, op, err)
		}
		if existing > 0 {
			return apperr.Errorf(apperr.KindConflict, op, "user already exists")
		}

		var total int64
		if err := tx.Model(&models.User{}).Count(&total).Error; err != nil {
			return apperr.E(apperr.KindPersistenceFailed, op, err)
		}
		user.Role = models.RoleCustomer
		if total == 0 {
			user.Role = models.RoleAdmin
		}

		if err := tx.Create(user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.Errorf(apperr.KindConflict, op, "user already exists")
			}
			return apperr.E(apperr.KindPersistenceFailed, op, err)
		}
		return nil
	})
	return err
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "repository.Users.FindByEmail"

	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Errorf(apperr.KindNotFound, op, "user not found")
		}
		return nil, apperr.E(apperr.KindPersistenceFailed, op, err)
	}
	return &user, nil
}

func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Order("id").Find(&users).Error; err != nil {
		return nil, apperr.E(apperr.KindPersistenceFailed, "repository.Users.List", err)
	}
	return users, nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	const op = "repository.Users.Delete"

	uid, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return apperr.Errorf(apperr.KindNotFound, op, "user not found")
	}
	res := r.db.WithContext(ctx).Delete(&models.User{}, uid)
	if res.Error != nil {
		return apperr.E(apperr.KindPersistenceFailed, op, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.Errorf(apperr.KindNotFound, op, "user not found")
	}
	return nil
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Count(&n).Error; err != nil {
		return 0, apperr.E(apperr.KindPersistenceFailed, "repository.Users.Count", err)
	}
	return n, nil
}
