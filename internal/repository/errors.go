package repository

import "errors"

var (
	// 対象が無い
	ErrNotFound = errors.New("not found")
	// 一意制約違反（email / sku / カテゴリ名など）
	ErrConflict = errors.New("conflict")
)
