// 包 export 负责输出文档：把归一化集合一次性写为 posts.json。
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go-touitr/internal/model"
	"go-touitr/internal/store"
)

// WritePosts 将集合整体序列化并写入 path（带缩进，顺序即归档序）。
func WritePosts(posts []model.Post, path string) error {
	if posts == nil {
		posts = []model.Post{}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(posts); err != nil {
		return fmt.Errorf("encode json to %s: %w", path, err)
	}
	return nil
}

// FromStore 从数据库读回全部结果并导出（正常模式的二次导出入口）。
func FromStore(ctx context.Context, s *store.SQLite, path string) error {
	posts, err := s.ListPosts(ctx)
	if err != nil {
		return fmt.Errorf("list posts: %w", err)
	}
	return WritePosts(posts, path)
}
