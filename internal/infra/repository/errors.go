package repository

import (
	"errors"

	repo "ecshop/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// PostgreSQLの unique_violation
const pgUniqueViolation = "23505"

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// gorm/pgxのエラーをrepositoryのエラーへ
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case isNotFound(err):
		return repo.ErrNotFound
	case isUniqueViolation(err):
		return repo.ErrConflict
	default:
		return err
	}
}
