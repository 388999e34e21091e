// 包 archive 负责打开导出压缩包并提供条目访问：
// - ReadEntry：按路径读取字节内容
// - Glob：在固定子目录下按 "*" 分段的子串模式模糊匹配文件名
// - Decode：剥离变量赋值包装后解析内嵌 JSON
package archive

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
)

var (
	// ErrEntryNotFound 表示归档中不存在该路径的条目。
	ErrEntryNotFound = errors.New("archive: entry not found")
	// ErrMalformedData 表示条目剥离包装后不是合法 JSON。
	ErrMalformedData = errors.New("archive: malformed embedded data")
)

// Bundle 表示一个已打开的归档，生命周期为一轮运行。
type Bundle struct {
	rc      *zip.ReadCloser
	entries map[string]*zip.File
}

// Open 打开 zip 归档并建立条目索引（路径统一为 / 分隔）。
func Open(zipPath string) (*Bundle, error) {
	rc, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", zipPath, err)
	}
	b := &Bundle{rc: rc, entries: make(map[string]*zip.File, len(rc.File))}
	for _, f := range rc.File {
		if f.FileInfo().IsDir() {
			continue
		}
		b.entries[strings.ReplaceAll(f.Name, "\\", "/")] = f
	}
	return b, nil
}

func (b *Bundle) Close() error { return b.rc.Close() }

// ReadEntry 读取指定条目的全部字节。
func (b *Bundle) ReadEntry(name string) ([]byte, error) {
	f, ok := b.entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, name)
	}
	r, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open entry %s: %w", name, err)
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read entry %s: %w", name, err)
	}
	return data, nil
}

// Glob 返回 dir 下文件名与 pattern 匹配的条目路径（按名称排序）。
// pattern 以 "*" 分段，各段需按顺序作为子串出现在文件名中，
// 等价于对文件名做 *seg1*seg2* 式的模糊匹配。
func (b *Bundle) Glob(dir, pattern string) []string {
	prefix := strings.TrimSuffix(dir, "/") + "/"
	var out []string
	for name := range b.entries {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		if Match(path.Base(name), pattern) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Match 判断 base 是否按顺序包含 pattern 的各个 "*" 分段。
func Match(base, pattern string) bool {
	rest := base
	for _, seg := range strings.Split(pattern, "*") {
		if seg == "" {
			continue
		}
		i := strings.Index(rest, seg)
		if i < 0 {
			return false
		}
		rest = rest[i+len(seg):]
	}
	return true
}

// Decode 读取条目并解析其内嵌 JSON：
// 导出文件形如 `window.YTD.xxx.part0 = [...]`，需去掉首个 `[`/`{` 之前的
// 赋值前缀与末尾分号后再解析。
func (b *Bundle) Decode(name string, v any) error {
	data, err := b.ReadEntry(name)
	if err != nil {
		return err
	}
	i := bytes.IndexAny(data, "[{")
	if i < 0 {
		return fmt.Errorf("%w: %s: no JSON payload", ErrMalformedData, name)
	}
	payload := bytes.TrimSpace(data[i:])
	payload = bytes.TrimSuffix(payload, []byte(";"))
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformedData, name, err)
	}
	return nil
}
