// 包 shortlink 负责短链解析：
// 命中缓存直接返回；未命中则发起一次不跟随跳转的 GET，
// 只接受 301 + Location，并在返回前把映射落入持久缓存。
// 短链一经创建即不变，因此缓存永不过期；解析失败必须响亮报错，
// 否则坏链会悄悄污染重写后的正文。
package shortlink

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go-touitr/internal/cache"
	"go-touitr/internal/fetch"
	"go-touitr/internal/logx"
)

// ErrUnexpectedStatus 表示短链未按预期返回 301 跳转。
var ErrUnexpectedStatus = errors.New("shortlink: unexpected resolution status")

// Resolver 为短链解析器，缓存对象由调用方注入。
type Resolver struct {
	cl    *fetch.Client
	cache *cache.Store[string]
}

func New(cl *fetch.Client, c *cache.Store[string]) *Resolver {
	return &Resolver{cl: cl, cache: c}
}

// Resolve 将短链解析为目标地址。
func (r *Resolver) Resolve(ctx context.Context, shortURL string) (string, error) {
	if dest, ok := r.cache.Get(shortURL); ok {
		return dest, nil
	}
	logx.Infof("解析短链：%s", shortURL)
	resp, err := r.cl.GetNoRedirect(ctx, shortURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusMovedPermanently {
		return "", fmt.Errorf("%w: %s 返回 %d", ErrUnexpectedStatus, shortURL, resp.StatusCode)
	}
	dest := resp.Header.Get("Location")
	if dest == "" {
		return "", fmt.Errorf("%w: %s 缺少 Location", ErrUnexpectedStatus, shortURL)
	}
	if err := r.cache.Put(shortURL, dest); err != nil {
		return "", err
	}
	logx.Debugf("短链已解析：%s -> %s", shortURL, dest)
	return dest, nil
}
