package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"ecshop/internal/domain/model"
	repo "ecshop/internal/repository"
)

type AdminOrderUsecase struct {
	tx    repo.TransactionManager
	clock Clock
}

func NewAdminOrderUsecase(tx repo.TransactionManager, clock Clock) *AdminOrderUsecase {
	return &AdminOrderUsecase{tx: tx, clock: clock}
}

type AdminUpdateOrderStatusInput struct {
	Status string
}

// 注文一覧（status / user_id で絞り込み）
func (u *AdminOrderUsecase) List(ctx context.Context, f repo.AdminOrderListFilter) ([]OrderOutput, error) {
	if err := validatePage(f.Skip, f.Limit); err != nil {
		return []OrderOutput{}, err
	}
	if f.Status != "" && !f.Status.IsValid() {
		return []OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	var outs []OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, _, err := r.Orders().ListAdmin(ctx, f)
		if err != nil {
			return dbError(err)
		}

		outs = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return dbError(err)
			}
			outs = append(outs, toOrderOutput(o, items))
		}
		return nil
	})

	if err != nil {
		return []OrderOutput{}, err
	}
	return outs, nil
}

// 遷移表にある変更だけ許可する。cancelledへは在庫を戻す
func (u *AdminOrderUsecase) UpdateStatus(ctx context.Context, actorAdminUserID int64, orderID int64, in AdminUpdateOrderStatusInput) (OrderOutput, error) {
	if actorAdminUserID <= 0 {
		return OrderOutput{}, ErrUnauthorized
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	newStatus, err := model.ParseOrderStatus(strings.ToLower(strings.TrimSpace(in.Status)))
	if err != nil {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	var out OrderOutput

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return ErrOrderNotFound
		}
		if err != nil {
			return dbError(err)
		}

		// すでに同じなら何もしない
		if o.Status == newStatus {
			items, err := r.OrderItems().ListByOrderID(ctx, orderID)
			if err != nil {
				return dbError(err)
			}
			out = toOrderOutput(o, items)
			return nil
		}
		if !o.Status.CanTransition(newStatus) {
			return ErrInvalidTransition
		}

		var items []model.OrderItem
		if newStatus == model.OrderStatusCancelled {
			items, err = restoreStock(ctx, r, orderID)
		} else {
			items, err = r.OrderItems().ListByOrderID(ctx, orderID)
		}
		if err != nil {
			return dbError(err)
		}

		beforeStatus := o.Status
		if err := r.Orders().UpdateStatus(ctx, orderID, newStatus); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrOrderNotFound
			}
			return dbError(err)
		}

		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actorAdminUserID,
			Action:       model.AuditActionUpdateOrderStatus,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   orderID,
			BeforeJSON:   auditJSON(map[string]interface{}{"status": beforeStatus}),
			AfterJSON:    auditJSON(map[string]interface{}{"status": newStatus}),
			CreatedAt:    u.clock.Now(),
		}); err != nil {
			return dbError(err)
		}

		o.Status = newStatus
		out = toOrderOutput(o, items)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// 物理削除。キャンセルと違って在庫は戻さない
func (u *AdminOrderUsecase) Delete(ctx context.Context, actorAdminUserID int64, orderID int64) error {
	if actorAdminUserID <= 0 {
		return ErrUnauthorized
	}
	if orderID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return ErrOrderNotFound
		}
		if err != nil {
			return dbError(err)
		}

		if err := r.Orders().Delete(ctx, orderID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrOrderNotFound
			}
			return dbError(err)
		}

		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actorAdminUserID,
			Action:       model.AuditActionDeleteOrder,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   orderID,
			BeforeJSON: auditJSON(map[string]interface{}{
				"status":       o.Status,
				"user_id":      o.UserID,
				"total_amount": money(o.TotalAmount),
			}),
			CreatedAt: u.clock.Now(),
		}); err != nil {
			return dbError(err)
		}
		return nil
	})
}

func auditJSON(v map[string]interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}
