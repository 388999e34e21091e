// 包 rewrite 负责把工作文本改写为安全标记：
// 短链替换为目标地址锚点、实体内的 @提及 与 #话题 转为链接、
// 媒体展开地址从文本剔除、换行转 <br/>。
// 全部替换在一趟内按出现位置完成：先收集所有替换片段并排序，
// 重叠片段丢弃，避免把锚点 HTML 再次当作文本二次替换。
package rewrite

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"go-touitr/internal/model"
	"go-touitr/internal/shortlink"
)

const (
	mentionBase = "https://twitter.com/"
	hashtagBase = "https://twitter.com/hashtag/"
)

var hashtagRe = regexp.MustCompile(`#([^\s]+)`)

// Rewriter 持有短链解析器；解析失败向上传播（对该条推文致命）。
type Rewriter struct {
	links   *shortlink.Resolver
	shortRe *regexp.Regexp
}

func New(links *shortlink.Resolver, shortHost string) *Rewriter {
	return &Rewriter{
		links:   links,
		shortRe: regexp.MustCompile(`https://` + regexp.QuoteMeta(shortHost) + `/\S{10}`),
	}
}

// span 为一个待替换片段：[start,end) 区间与生成的 HTML。
type span struct {
	start, end int
	html       string
}

// Rewrite 执行改写。extended 为扩展媒体实体，其展开地址会被剔除。
func (w *Rewriter) Rewrite(ctx context.Context, text string, ents *model.Entities, extended []model.MediaEntity) (string, error) {
	// 媒体单独渲染，不需要正文里的展开地址（域名归一后剔除）
	for _, m := range extended {
		if m.ExpandedURL == "" {
			continue
		}
		text = strings.ReplaceAll(text, strings.ReplaceAll(m.ExpandedURL, "x.com", "twitter.com"), "")
	}

	var spans []span

	// 短链 → 目标地址锚点
	for _, loc := range w.shortRe.FindAllStringIndex(text, -1) {
		short := text[loc[0]:loc[1]]
		dest, err := w.links.Resolve(ctx, short)
		if err != nil {
			return "", err
		}
		spans = append(spans, span{loc[0], loc[1], "<a href='" + dest + "'>" + dest + "</a>"})
	}

	// 提及：只有出现在实体列表中的 handle 才转链接
	for _, um := range ents.UserMentions {
		tok := "@" + um.ScreenName
		href := mentionBase + um.ScreenName
		for i := 0; ; {
			j := strings.Index(text[i:], tok)
			if j < 0 {
				break
			}
			start := i + j
			spans = append(spans, span{start, start + len(tok), "<a href='" + href + "'>" + tok + "</a>"})
			i = start + len(tok)
		}
	}

	// 话题标签
	for _, loc := range hashtagRe.FindAllStringSubmatchIndex(text, -1) {
		tag := text[loc[2]:loc[3]]
		spans = append(spans, span{loc[0], loc[1], "<a href='" + hashtagBase + tag + "'>#" + tag + "</a>"})
	}

	sort.Slice(spans, func(i, j int) bool {
		if spans[i].start != spans[j].start {
			return spans[i].start < spans[j].start
		}
		return spans[i].end > spans[j].end
	})

	var b strings.Builder
	last := 0
	for _, s := range spans {
		if s.start < last {
			continue // 与已替换片段重叠，丢弃
		}
		b.WriteString(text[last:s.start])
		b.WriteString(s.html)
		last = s.end
	}
	b.WriteString(text[last:])

	return strings.ReplaceAll(b.String(), "\n", "<br/>"), nil
}
