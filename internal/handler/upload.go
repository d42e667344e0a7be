package handler

import (
	"errors"
	"io"
	"net/http"

	"ecshop/internal/infra/storage"
	"ecshop/internal/usecase"

	"github.com/labstack/echo/v4"
)

// アップロード画像の保存先（infra/storageのLocalImageStoreが実装）
type ImageStore interface {
	Save(dir string, originalName string, r io.Reader) (string, error)
}

// multipartのimageを保存してURLを返す。無ければ""
func saveUploadedImage(c echo.Context, store ImageStore, dir string) (string, error) {
	fh, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return "", nil
	}
	if err != nil {
		return "", usecase.NewHTTPError(http.StatusBadRequest, "invalid image")
	}

	f, err := fh.Open()
	if err != nil {
		return "", usecase.NewHTTPError(http.StatusBadRequest, "invalid image")
	}
	defer f.Close()

	url, err := store.Save(dir, fh.Filename, f)
	switch {
	case errors.Is(err, storage.ErrUnsupportedType):
		return "", usecase.NewHTTPError(http.StatusBadRequest, "unsupported image type")
	case errors.Is(err, storage.ErrTooLarge):
		return "", usecase.NewHTTPError(http.StatusRequestEntityTooLarge, "image too large")
	case err != nil:
		return "", &usecase.HTTPError{Status: http.StatusInternalServerError, Message: "storage error", Err: err}
	}
	return url, nil
}

// フォームに項目があればそのポインタ、無ければnil
func optionalFormValue(c echo.Context, key string) *string {
	params, err := c.FormParams()
	if err != nil {
		return nil
	}
	vs, ok := params[key]
	if !ok || len(vs) == 0 {
		return nil
	}
	v := vs[0]
	return &v
}
