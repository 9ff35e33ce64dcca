package recipe

import (
	"context"
)

// Completer 文字生成服務，cacheable 表示結果可重複使用
type Completer interface {
	Complete(ctx context.Context, prompt string, cacheable bool) (string, error)
}
