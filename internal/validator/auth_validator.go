package validator

import (
	"context"
	"errors"
	"net/mail"
	"regexp"
	"strings"

	"ecshop/internal/repository"
	auth "ecshop/internal/usecase/auth_usecase"
)

// bcryptは72バイトまでしか見ない
const (
	minPasswordLen = 8
	maxPasswordLen = 72
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// よくある弱いパスワード
var weakPasswords = map[string]struct{}{
	"password":     {},
	"password123":  {},
	"123456789012": {},
	"1234567890":   {},
	"12345678":     {},
	"qwertyuiop":   {},
	"letmein123":   {},
	"admin123":     {},
}

type AuthValidator struct {
	users repository.UserRepository
}

func NewAuthValidator(users repository.UserRepository) *AuthValidator {
	return &AuthValidator{users: users}
}

// サインアップの入力を検証
func (v *AuthValidator) ValidateRegister(ctx context.Context, email string, password string) error {
	email = strings.TrimSpace(email)

	if !isEmailLike(email) {
		return auth.ErrInvalidEmailFormat
	}
	if err := v.ValidatePassword(password); err != nil {
		return err
	}

	// email重複チェック（DBが必要）
	u, err := v.users.FindByEmail(ctx, email)
	if err == nil && u != nil {
		return auth.ErrEmailAlreadyExists
	}
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	return nil
}

// パスワード強度
func (v *AuthValidator) ValidatePassword(password string) error {
	if len(password) < minPasswordLen {
		return auth.ErrPasswordTooShort
	}
	if len(password) > maxPasswordLen {
		return auth.ErrPasswordTooLong
	}
	if _, ok := weakPasswords[strings.ToLower(password)]; ok {
		return auth.ErrWeakPassword
	}
	return nil
}

// 簡易メール形式をチェック
func isEmailLike(s string) bool {
	if s == "" || len(s) > 255 || !emailRe.MatchString(s) {
		return false
	}
	_, err := mail.ParseAddress(s)
	return err == nil
}
