// 包 cache 提供基于单个 JSON 文件的持久键值缓存：
// 打开时整体载入，每次写入后整体回写（读-改-写全量文件，无增量格式）。
// 缓存对象显式注入使用方，便于测试时使用纯内存实例。
package cache

import (
	"encoding/json"
	"fmt"
	"os"
)

// Store 为 URL → 解析结果 的持久映射。一轮运行内只增不删。
type Store[V any] struct {
	path string // 为空表示纯内存（测试用）
	m    map[string]V
}

// New 创建纯内存缓存（不落盘）。
func New[V any]() *Store[V] {
	return &Store[V]{m: make(map[string]V)}
}

// Open 打开文件缓存：文件存在则整体载入，不存在视为空缓存。
func Open[V any](path string) (*Store[V], error) {
	s := &Store[V]{path: path, m: make(map[string]V)}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("read cache %s: %w", path, err)
	}
	if len(data) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(data, &s.m); err != nil {
		return nil, fmt.Errorf("decode cache %s: %w", path, err)
	}
	return s, nil
}

// Get 查询缓存。
func (s *Store[V]) Get(key string) (V, bool) {
	v, ok := s.m[key]
	return v, ok
}

// Put 写入并同步落盘（整文件重写），返回前保证已持久化。
func (s *Store[V]) Put(key string, v V) error {
	s.m[key] = v
	return s.flush()
}

// Len 返回当前条目数。
func (s *Store[V]) Len() int { return len(s.m) }

// flush 将全量映射回写为带缩进的 JSON（与既有缓存文件格式一致）。
func (s *Store[V]) flush() error {
	if s.path == "" {
		return nil
	}
	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("create cache %s: %w", s.path, err)
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s.m); err != nil {
		return fmt.Errorf("encode cache %s: %w", s.path, err)
	}
	return nil
}
