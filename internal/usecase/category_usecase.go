package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"ecshop/internal/domain/model"
	repo "ecshop/internal/repository"

	"github.com/gosimple/slug"
)

type CategoryUsecase struct {
	categoryRepo repo.CategoryRepository
}

func NewCategoryUsecase(categoryRepo repo.CategoryRepository) *CategoryUsecase {
	return &CategoryUsecase{categoryRepo: categoryRepo}
}

type CategoryListOutput struct {
	Items []model.Category `json:"items"`
	Total int64            `json:"total"`
	Skip  int              `json:"skip"`
	Limit int              `json:"limit"`
}

type CategoryCountOutput struct {
	CategoryID    int64  `json:"category_id"`
	Name          string `json:"name"`
	ProductsCount int64  `json:"products_count"`
}

type CreateCategoryInput struct {
	Name        string
	Description string
	ImageURL    string
}

type UpdateCategoryInput struct {
	Name        *string
	Description *string
	ImageURL    *string
}

func (u *CategoryUsecase) List(ctx context.Context, skip int, limit int) (CategoryListOutput, error) {
	if err := validatePage(skip, limit); err != nil {
		return CategoryListOutput{}, err
	}

	items, total, err := u.categoryRepo.List(ctx, skip, limit)
	if err != nil {
		return CategoryListOutput{}, dbError(err)
	}
	return CategoryListOutput{Items: items, Total: total, Skip: skip, Limit: limit}, nil
}

func (u *CategoryUsecase) Get(ctx context.Context, id int64) (model.Category, error) {
	if id <= 0 {
		return model.Category{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	c, err := u.categoryRepo.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Category{}, ErrCategoryNotFound
	}
	if err != nil {
		return model.Category{}, dbError(err)
	}
	return c, nil
}

func (u *CategoryUsecase) CountProducts(ctx context.Context, id int64) (CategoryCountOutput, error) {
	c, err := u.Get(ctx, id)
	if err != nil {
		return CategoryCountOutput{}, err
	}

	n, err := u.categoryRepo.CountProducts(ctx, id)
	if err != nil {
		return CategoryCountOutput{}, dbError(err)
	}
	return CategoryCountOutput{CategoryID: c.ID, Name: c.Name, ProductsCount: n}, nil
}

func (u *CategoryUsecase) Create(ctx context.Context, in CreateCategoryInput) (model.Category, error) {
	name, slugValue, err := categoryName(in.Name)
	if err != nil {
		return model.Category{}, err
	}

	c, err := u.categoryRepo.Create(ctx, model.Category{
		Name:        name,
		Slug:        slugValue,
		Description: in.Description,
		ImageURL:    in.ImageURL,
	})
	if errors.Is(err, repo.ErrConflict) {
		return model.Category{}, ErrCategoryConflict
	}
	if err != nil {
		return model.Category{}, dbError(err)
	}
	return c, nil
}

// 名前を変えたらslugも作り直す
func (u *CategoryUsecase) Update(ctx context.Context, id int64, in UpdateCategoryInput) (model.Category, error) {
	if id <= 0 {
		return model.Category{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	patch := model.CategoryPatch{
		Description: in.Description,
		ImageURL:    in.ImageURL,
	}
	if in.Name != nil {
		name, slugValue, err := categoryName(*in.Name)
		if err != nil {
			return model.Category{}, err
		}
		patch.Name = &name
		patch.Slug = &slugValue
	}

	c, err := u.categoryRepo.Update(ctx, id, patch)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Category{}, ErrCategoryNotFound
	}
	if errors.Is(err, repo.ErrConflict) {
		return model.Category{}, ErrCategoryConflict
	}
	if err != nil {
		return model.Category{}, dbError(err)
	}
	return c, nil
}

// 所属していた商品は未分類になる
func (u *CategoryUsecase) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	err := u.categoryRepo.Delete(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrCategoryNotFound
	}
	if err != nil {
		return dbError(err)
	}
	return nil
}

func categoryName(raw string) (string, string, error) {
	name := strings.TrimSpace(raw)
	if name == "" || len(name) > 100 {
		return "", "", NewHTTPError(http.StatusBadRequest, "invalid name")
	}
	s := slug.Make(name)
	if s == "" {
		return "", "", NewHTTPError(http.StatusBadRequest, "invalid name")
	}
	return name, s, nil
}
