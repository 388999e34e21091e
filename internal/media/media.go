// 包 media 负责媒体定位与搬运：
// - 打开归档时对媒体子目录建一次索引，查找不再重复扫描
// - Find 的模式必须唯一命中（调用方用推文 id 作前缀消歧）
// - Extract 幂等：目标文件已存在则跳过，不覆盖、不校验内容
package media

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"go-touitr/internal/archive"
	"go-touitr/internal/logx"
)

var (
	// ErrNotFound 表示模式没有命中任何媒体条目。
	ErrNotFound = errors.New("media: not found")
	// ErrAmbiguous 表示模式命中多个媒体条目，需要更具体的模式。
	ErrAmbiguous = errors.New("media: ambiguous pattern")
)

// Extractor 绑定一个归档子目录与一个输出目录。
type Extractor struct {
	bundle  *archive.Bundle
	destDir string
	names   []string // 子目录下全部条目路径，构造时索引一次
}

// NewExtractor 创建提取器并建立索引；destDir 不存在时创建。
func NewExtractor(b *archive.Bundle, zipDir, destDir string) (*Extractor, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", destDir, err)
	}
	return &Extractor{bundle: b, destDir: destDir, names: b.Glob(zipDir, "")}, nil
}

// Find 在索引中按模糊模式查找唯一条目。
func (e *Extractor) Find(pattern string) (string, error) {
	var hit string
	for _, name := range e.names {
		if !archive.Match(path.Base(name), pattern) {
			continue
		}
		if hit != "" {
			return "", fmt.Errorf("%w: *%s*", ErrAmbiguous, pattern)
		}
		hit = name
	}
	if hit == "" {
		return "", fmt.Errorf("%w: *%s*", ErrNotFound, pattern)
	}
	return hit, nil
}

// Extract 将条目复制到输出目录（文件名取条目 basename），返回该文件名。
// 目标已存在时直接返回，保证重复运行字节不变。
func (e *Extractor) Extract(entry string) (string, error) {
	base := path.Base(entry)
	return base, e.ExtractAs(entry, base)
}

// ExtractAs 以指定文件名提取条目，语义同 Extract。
func (e *Extractor) ExtractAs(entry, destName string) error {
	dest := filepath.Join(e.destDir, destName)
	if _, err := os.Stat(dest); err == nil {
		logx.Debugf("媒体已存在，跳过提取：%s", dest)
		return nil
	}
	data, err := e.bundle.ReadEntry(entry)
	if err != nil {
		return err
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", dest, err)
	}
	return nil
}
