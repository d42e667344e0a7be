package server

import (
	"ecshop/internal/handler"
	"ecshop/internal/middleware"
	"ecshop/internal/repository"

	"github.com/labstack/echo/v4"
)

// ルートごとに登録するhandler一式
type Handlers struct {
	Health       *handler.HealthHandler
	Auth         *handler.AuthHandler
	User         *handler.UserHandler
	Category     *handler.CategoryHandler
	Product      *handler.ProductHandler
	Cart         *handler.CartHandler
	Order        *handler.OrderHandler
	AdminOrder   *handler.AdminOrderHandler
	AdminProduct *handler.AdminProductHandler
	AdminAudit   *handler.AdminAuditHandler
}

// 保護ルートは「JWT必須 + token_version一致」、/admin系はさらにADMIN限定
func NewRouteGuards(verifier middleware.TokenVerifier, userRepo repository.UserRepository) handler.RouteGuards {
	user := []echo.MiddlewareFunc{
		middleware.AuthJWT(verifier),
		middleware.TokenVersionGuard(userRepo),
	}
	admin := append(append([]echo.MiddlewareFunc{}, user...), middleware.AdminRoleGuard())

	return handler.RouteGuards{User: user, Admin: admin}
}

func RegisterRoutes(e *echo.Echo, h Handlers, guards handler.RouteGuards) {
	h.Health.RegisterRoutes(e)
	h.Auth.RegisterRoutes(e)
	h.User.RegisterRoutes(e, guards)
	h.Category.RegisterRoutes(e, guards)
	h.Product.RegisterRoutes(e, guards)
	h.Cart.RegisterRoutes(e, guards)
	h.Order.RegisterRoutes(e, guards)
	h.AdminOrder.RegisterRoutes(e, guards)
	h.AdminProduct.RegisterRoutes(e, guards)
	h.AdminAudit.RegisterRoutes(e, guards)
}
