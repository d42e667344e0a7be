package repository

import (
	"context"

	"ecshop/internal/domain/model"
)

// 保存・取得を約束
type UserRepository interface {
	// 新規ユーザー作成（email重複はErrConflict）
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, userID int64) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// ユーザー情報の更新（最終ログインなど）
	Update(ctx context.Context, user *model.User) error
	// プロフィールの部分更新
	Patch(ctx context.Context, userID int64, patch model.UserPatch) (*model.User, error)
	// パスワード変更。token_versionも+1して古いトークンを無効にする
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
	IncrementTokenVersion(ctx context.Context, userID int64) error
	Delete(ctx context.Context, userID int64) error
}
