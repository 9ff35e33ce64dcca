package storage

import (
	"context"
	"fmt"
	"path"
	"strings"

	"fridge-chef/internal/infrastructure/config"
)

// 產出檔案的 Content-Type
const (
	ContentTypePNG = "image/png"
	ContentTypePDF = "application/pdf"
)

// Store 發布產出檔案並回傳可供下載的 URL
type Store interface {
	Publish(ctx context.Context, localPath, key, contentType string) (string, error)
}

// New 依 storage.driver 建立 Store
func New(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch cfg.Driver {
	case "", "local":
		return NewLocalStore(cfg.PublicBase), nil
	case "s3":
		return NewS3Store(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// Key 由執行 ID 與檔名組成物件鍵
func Key(runID, fileName string) string {
	return path.Join(runID, fileName)
}

// LocalStore 檔案已在輸出目錄中，只需組出靜態路徑
type LocalStore struct {
	publicBase string
}

// NewLocalStore 創建本機 Store
func NewLocalStore(publicBase string) *LocalStore {
	return &LocalStore{publicBase: strings.TrimSuffix(publicBase, "/")}
}

// Publish 回傳 {public_base}/{key}
func (s *LocalStore) Publish(ctx context.Context, localPath, key, contentType string) (string, error) {
	return s.publicBase + "/" + strings.TrimPrefix(key, "/"), nil
}
