package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"ecshop/internal/domain/model"
	repo "ecshop/internal/repository"
)

type PasswordHasher interface {
	Hash(plain string) (string, error)
}

type PasswordVerifier interface {
	Verify(plain string, hashed string) bool
}

// 新しいパスワードの強度チェック
type PasswordPolicy interface {
	ValidatePassword(password string) error
}

// /users/me の業務ロジック
type UserUsecase struct {
	userRepo repo.UserRepository
	tx       repo.TransactionManager
	hasher   PasswordHasher
	verifier PasswordVerifier
	policy   PasswordPolicy
}

func NewUserUsecase(
	userRepo repo.UserRepository,
	tx repo.TransactionManager,
	hasher PasswordHasher,
	verifier PasswordVerifier,
	policy PasswordPolicy,
) *UserUsecase {
	return &UserUsecase{
		userRepo: userRepo,
		tx:       tx,
		hasher:   hasher,
		verifier: verifier,
		policy:   policy,
	}
}

type UserOutput struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

type UpdateProfileInput struct {
	FirstName *string
	LastName  *string
	Phone     *string
	Address   *string
}

type ChangePasswordInput struct {
	CurrentPassword string
	NewPassword     string
}

func (u *UserUsecase) GetMe(ctx context.Context, userID int64) (UserOutput, error) {
	if userID <= 0 {
		return UserOutput{}, ErrUnauthorized
	}

	user, err := u.userRepo.FindByID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return UserOutput{}, ErrUserNotFound
	}
	if err != nil {
		return UserOutput{}, dbError(err)
	}
	return ToUserOutput(*user), nil
}

func (u *UserUsecase) UpdateMe(ctx context.Context, userID int64, in UpdateProfileInput) (UserOutput, error) {
	if userID <= 0 {
		return UserOutput{}, ErrUnauthorized
	}

	patch := model.UserPatch{
		FirstName: trimmed(in.FirstName),
		LastName:  trimmed(in.LastName),
		Phone:     trimmed(in.Phone),
		Address:   trimmed(in.Address),
	}
	if tooLong(patch.FirstName, 100) || tooLong(patch.LastName, 100) || tooLong(patch.Phone, 30) {
		return UserOutput{}, NewHTTPError(http.StatusBadRequest, "invalid input")
	}
	if patch.IsEmpty() {
		return u.GetMe(ctx, userID)
	}

	user, err := u.userRepo.Patch(ctx, userID, patch)
	if errors.Is(err, repo.ErrNotFound) {
		return UserOutput{}, ErrUserNotFound
	}
	if err != nil {
		return UserOutput{}, dbError(err)
	}
	return ToUserOutput(*user), nil
}

// 変更後は古いトークンが使えなくなる（token_version+1）
func (u *UserUsecase) ChangePassword(ctx context.Context, userID int64, in ChangePasswordInput) error {
	if userID <= 0 {
		return ErrUnauthorized
	}
	if err := u.policy.ValidatePassword(in.NewPassword); err != nil {
		return NewHTTPError(http.StatusBadRequest, "invalid new password")
	}

	user, err := u.userRepo.FindByID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return dbError(err)
	}

	if !u.verifier.Verify(in.CurrentPassword, user.PasswordHash) {
		return ErrWrongPassword
	}

	hashed, err := u.hasher.Hash(in.NewPassword)
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	if err := u.userRepo.UpdatePassword(ctx, userID, hashed); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return dbError(err)
	}
	return nil
}

// DBのカスケードには任せず、カート・注文・ユーザーを順に消す。在庫は戻さない
func (u *UserUsecase) DeleteMe(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return ErrUnauthorized
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cart, err := r.Carts().FindByUserID(ctx, userID)
		switch {
		case err == nil:
			if err := r.Carts().Delete(ctx, cart.ID); err != nil {
				return dbError(err)
			}
		case !errors.Is(err, repo.ErrNotFound):
			return dbError(err)
		}

		if err := r.Orders().DeleteByUserID(ctx, userID); err != nil {
			return dbError(err)
		}

		if err := r.Users().Delete(ctx, userID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrUserNotFound
			}
			return dbError(err)
		}
		return nil
	})
}

func ToUserOutput(user model.User) UserOutput {
	return UserOutput{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Phone:     user.Phone,
		Address:   user.Address,
		Role:      string(user.Role),
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
	}
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

func tooLong(s *string, max int) bool {
	return s != nil && len(*s) > max
}
