package usecase

import (
	"context"
	"net/http"

	"ecshop/internal/domain/model"
	repo "ecshop/internal/repository"
)

type AuditUsecase struct {
	auditRepo repo.AuditLogRepository
}

func NewAuditUsecase(auditRepo repo.AuditLogRepository) *AuditUsecase {
	return &AuditUsecase{auditRepo: auditRepo}
}

func (u *AuditUsecase) List(ctx context.Context, f repo.AuditLogFilter) ([]model.AuditLog, error) {
	if err := validatePage(f.Offset, f.Limit); err != nil {
		return []model.AuditLog{}, err
	}
	if f.CreatedFrom != nil && f.CreatedTo != nil && f.CreatedFrom.After(*f.CreatedTo) {
		return []model.AuditLog{}, NewHTTPError(http.StatusBadRequest, "invalid period")
	}

	logs, err := u.auditRepo.List(ctx, f)
	if err != nil {
		return []model.AuditLog{}, dbError(err)
	}
	return logs, nil
}
