package server

import (
	"context"

	"ecshop/internal/config"
	"ecshop/internal/handler"
	"ecshop/internal/infra/db"
	infraRepo "ecshop/internal/infra/repository"
	"ecshop/internal/infra/storage"
	"ecshop/internal/infra/token"
	"ecshop/internal/usecase"
	auth "ecshop/internal/usecase/auth_usecase"
	"ecshop/internal/validator"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Wireはrepository→usecase→handlerを組み立ててServerを返す
func Wire(cfg config.Config, log zerolog.Logger, gormDB *gorm.DB) *Server {
	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	categoryRepo := infraRepo.NewCategoryGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	cartRepo := infraRepo.NewCartGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	txm := infraRepo.NewTxManagerGorm(gormDB)

	//usecaseに渡す部品
	clock := usecase.SystemClock{}
	hasher := auth.NewBcryptPasswordHasher(cfg.BcryptCost)
	verifier := auth.NewBcryptPasswordVerifier()
	jwtManager := token.NewJWTManager(cfg.JWTSecret, cfg.AccessTokenTTL)
	authValidator := validator.NewAuthValidator(userRepo)
	images := storage.NewLocalImageStore(cfg.UploadDir, "/static", cfg.MaxUploadBytes)

	//Usecase生成
	registerUC := auth.NewRegisterUserUsecase(userRepo, authValidator, hasher, cfg, clock)
	loginUC := auth.NewLoginUsecase(userRepo, verifier, jwtManager, clock)
	userUC := usecase.NewUserUsecase(userRepo, txm, hasher, verifier, authValidator)
	categoryUC := usecase.NewCategoryUsecase(categoryRepo)
	productUC := usecase.NewProductUsecase(productRepo, categoryRepo, txm, clock)
	cartUC := usecase.NewCartUsecase(cartRepo, cartRepo, productRepo)
	orderUC := usecase.NewOrderUsecase(txm, cfg.StockPolicy, clock)
	adminOrderUC := usecase.NewAdminOrderUsecase(txm, clock)
	auditUC := usecase.NewAuditUsecase(auditRepo)

	//Handler生成
	handlers := Handlers{
		Health: handler.NewHealthHandler(func(ctx context.Context) error {
			return db.Ping(ctx, gormDB)
		}),
		Auth:         handler.NewAuthHandler(registerUC, loginUC),
		User:         handler.NewUserHandler(userUC),
		Category:     handler.NewCategoryHandler(categoryUC, images),
		Product:      handler.NewProductHandler(productUC, images),
		Cart:         handler.NewCartHandler(cartUC),
		Order:        handler.NewOrderHandler(orderUC),
		AdminOrder:   handler.NewAdminOrderHandler(adminOrderUC),
		AdminProduct: handler.NewAdminProductHandler(productUC),
		AdminAudit:   handler.NewAdminAuditHandler(auditUC),
	}
	guards := NewRouteGuards(jwtManager, userRepo)

	return New(cfg, log, handlers, guards)
}
