package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"ecshop/internal/domain/model"
	"ecshop/internal/repository"
)

// 会員登録の入力
type RegisterUserInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
	Address   string
}

// 会員登録の出力
type RegisterUserOutput struct {
	User model.User `json:"user"`
}

var (
	// 入力が不正
	ErrInvalidEmailFormat = errors.New("invalid email format")
	ErrPasswordTooShort   = errors.New("password too short")
	ErrPasswordTooLong    = errors.New("password too long")
	ErrWeakPassword       = errors.New("weak password")
	ErrInvalidProfile     = errors.New("invalid profile")

	// 競合
	ErrEmailAlreadyExists = errors.New("email already exists")
)

// 平文パスワードからハッシュへ。
type PasswordHasher interface {
	Hash(plain string) (string, error)
}

// 現在の時間
type Clock interface {
	Now() time.Time
}

// 登録入力の検証（形式・強度・重複）
type RegisterValidator interface {
	ValidateRegister(ctx context.Context, email string, password string) error
}

// 登録時にADMINにするか
type RolePolicy interface {
	IsAdminEmail(email string) bool
}

// RegisterUserUsecaseは会員登録の処理。
type RegisterUserUsecase struct {
	userRepo  repository.UserRepository
	validator RegisterValidator
	hasher    PasswordHasher
	roles     RolePolicy
	clock     Clock
}

// DI
func NewRegisterUserUsecase(
	userRepo repository.UserRepository,
	validator RegisterValidator,
	hasher PasswordHasher,
	roles RolePolicy,
	clock Clock,
) *RegisterUserUsecase {
	return &RegisterUserUsecase{
		userRepo:  userRepo,
		validator: validator,
		hasher:    hasher,
		roles:     roles,
		clock:     clock,
	}
}

// 会員登録実行
func (u *RegisterUserUsecase) Execute(ctx context.Context, in RegisterUserInput) (RegisterUserOutput, error) {
	var out RegisterUserOutput

	email := strings.ToLower(strings.TrimSpace(in.Email))
	if err := u.validator.ValidateRegister(ctx, email, in.Password); err != nil {
		return out, err
	}

	firstName := strings.TrimSpace(in.FirstName)
	lastName := strings.TrimSpace(in.LastName)
	if len(firstName) > 100 || len(lastName) > 100 || len(in.Phone) > 30 {
		return out, ErrInvalidProfile
	}

	// パスワードをハッシュ化
	hashed, err := u.hasher.Hash(in.Password)
	if err != nil {
		return out, err
	}

	role := model.RoleUser
	if u.roles != nil && u.roles.IsAdminEmail(email) {
		role = model.RoleAdmin
	}

	now := u.clock.Now()
	user := &model.User{
		Email:        email,
		PasswordHash: hashed, // ハッシュを保存（平文は保存しない）
		FirstName:    firstName,
		LastName:     lastName,
		Phone:        strings.TrimSpace(in.Phone),
		Address:      strings.TrimSpace(in.Address),
		Role:         role,
		TokenVersion: 0,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// 同時登録はDBの一意制約で弾かれる
	if err := u.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return out, ErrEmailAlreadyExists
		}
		return out, err
	}

	// 返すときは password を空にして漏洩防止
	safeUser := *user
	safeUser.PasswordHash = ""

	out.User = safeUser
	return out, nil
}
