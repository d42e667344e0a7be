package repository

import (
	"context"
	"strings"

	"ecshop/internal/domain/model"
	repo "ecshop/internal/repository"

	"gorm.io/gorm"
)

type UserGormRepository struct {
	db *gorm.DB
}

func NewUserGormRepository(db *gorm.DB) *UserGormRepository {
	return &UserGormRepository{db: db}
}

func (r *UserGormRepository) Create(ctx context.Context, user *model.User) error {
	user.Email = normalizeEmail(user.Email)
	return translate(r.db.WithContext(ctx).Create(user).Error)
}

func (r *UserGormRepository) FindByID(ctx context.Context, userID int64) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).First(&u, userID).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *UserGormRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).
		Where("email = ?", normalizeEmail(email)).
		First(&u).Error
	if err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *UserGormRepository) Update(ctx context.Context, user *model.User) error {
	res := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]interface{}{
			"role":          user.Role,
			"is_active":     user.IsActive,
			"last_login_at": user.LastLoginAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// nilでない項目だけ更新
func (r *UserGormRepository) Patch(ctx context.Context, userID int64, patch model.UserPatch) (*model.User, error) {
	updates := map[string]interface{}{}
	if patch.FirstName != nil {
		updates["first_name"] = *patch.FirstName
	}
	if patch.LastName != nil {
		updates["last_name"] = *patch.LastName
	}
	if patch.Phone != nil {
		updates["phone"] = *patch.Phone
	}
	if patch.Address != nil {
		updates["address"] = *patch.Address
	}

	if len(updates) > 0 {
		res := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", userID).Updates(updates)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, repo.ErrNotFound
		}
	}
	return r.FindByID(ctx, userID)
}

func (r *UserGormRepository) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	res := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"password_hash": passwordHash,
			"token_version": gorm.Expr("token_version + 1"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *UserGormRepository) IncrementTokenVersion(ctx context.Context, userID int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", userID).
		Update("token_version", gorm.Expr("token_version + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *UserGormRepository) Delete(ctx context.Context, userID int64) error {
	res := r.db.WithContext(ctx).Delete(&model.User{}, userID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
