// 包 preview 负责外链预览：抓取页面 head 中的 og:* 元数据。
// 预览是尽力而为的锦上添花：任何网络/HTTP 失败都退化为空结果，
// 绝不中断流水线；空结果不写缓存，留待下次运行重试。
package preview

import (
	"context"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"

	"go-touitr/internal/cache"
	"go-touitr/internal/fetch"
	"go-touitr/internal/logx"
)

// 页面最多读取 4MB，head 元数据足够了
const maxPageBytes = 4 << 20

// Fetcher 为 Open Graph 元数据抓取器，缓存对象由调用方注入。
type Fetcher struct {
	cl       *fetch.Client
	cache    *cache.Store[map[string]string]
	sanitize *bluemonday.Policy
}

func New(cl *fetch.Client, c *cache.Store[map[string]string]) *Fetcher {
	return &Fetcher{cl: cl, cache: c, sanitize: bluemonday.StrictPolicy()}
}

// Fetch 返回 url 的 og:* 字段集合（可能为空），不返回错误。
// 非空结果在返回前已持久化。
func (f *Fetcher) Fetch(ctx context.Context, url string) map[string]string {
	if og, ok := f.cache.Get(url); ok {
		return og
	}
	resp, err := f.cl.Get(ctx, url)
	if err != nil {
		logx.Warnf("抓取预览失败：%s 错误=%v", url, err)
		return map[string]string{}
	}
	defer resp.Body.Close()
	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		logx.Warnf("解析预览页面失败：%s 错误=%v", url, err)
		return map[string]string{}
	}
	og := make(map[string]string)
	doc.Find("head meta").Each(func(_ int, s *goquery.Selection) {
		prop, _ := s.Attr("property")
		if !strings.HasPrefix(prop, "og:") {
			return
		}
		content, ok := s.Attr("content")
		if !ok {
			return
		}
		og[prop] = f.sanitize.Sanitize(content)
	})
	if len(og) > 0 {
		if err := f.cache.Put(url, og); err != nil {
			logx.Warnf("写入预览缓存失败：%v", err)
		}
	}
	return og
}
