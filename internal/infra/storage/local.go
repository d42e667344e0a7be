package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrTooLarge        = errors.New("file too large")
)

var allowedExt = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".webp": {},
}

// 画像をローカルディスクに保存し、/static 配下のURLを返す
type LocalImageStore struct {
	root      string
	urlPrefix string
	maxBytes  int64
}

func NewLocalImageStore(root string, urlPrefix string, maxBytes int64) *LocalImageStore {
	return &LocalImageStore{root: root, urlPrefix: strings.TrimRight(urlPrefix, "/"), maxBytes: maxBytes}
}

func (s *LocalImageStore) Root() string {
	return s.root
}

// ファイル名はuuidにする（元の名前は拡張子だけ使う）
func (s *LocalImageStore) Save(dir string, originalName string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if _, ok := allowedExt[ext]; !ok {
		return "", ErrUnsupportedType
	}

	dstDir := filepath.Join(s.root, dir)
	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir: %w", err)
	}

	name := strings.ReplaceAll(uuid.NewString(), "-", "") + ext
	dstPath := filepath.Join(dstDir, name)

	f, err := os.Create(dstPath)
	if err != nil {
		return "", fmt.Errorf("create: %w", err)
	}

	// 上限+1バイト読めたらサイズ超過
	n, copyErr := io.Copy(f, io.LimitReader(r, s.maxBytes+1))
	closeErr := f.Close()
	if copyErr == nil && n > s.maxBytes {
		copyErr = ErrTooLarge
	}
	if copyErr != nil || closeErr != nil {
		_ = os.Remove(dstPath)
		if copyErr != nil {
			return "", copyErr
		}
		return "", closeErr
	}

	return path.Join(s.urlPrefix, dir, name), nil
}
