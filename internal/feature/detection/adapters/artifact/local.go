package artifact

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"recipe_backend/internal/feature/detection/usecase"
)

// LocalStore はローカルディレクトリに成果物を保存します。
type LocalStore struct {
	dir string
}

// LocalStoreがImageArchiverを実装していることをコンパイル時に検証します。
var _ usecase.ImageArchiver = (*LocalStore)(nil)

// NewLocalStore はdir配下に保存するLocalStoreを生成します。
func NewLocalStore(dir string) *LocalStore {
	return &LocalStore{dir: dir}
}

// Put はキーをスラッシュ区切りの相対パスとしてファイルに書き込みます。
// ディレクトリ外を指すキーは拒否します。
func (s *LocalStore) Put(ctx context.Context, key, contentType string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rel := filepath.FromSlash(key)
	if key == "" || filepath.IsAbs(rel) || strings.HasPrefix(filepath.Clean(rel), "..") {
		return fmt.Errorf("invalid artifact key %q", key)
	}

	dst := filepath.Join(s.dir, rel)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	return nil
}
