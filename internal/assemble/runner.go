// 包 assemble 负责主流程编排：
// - 解码归档推文并逐条顺序组装（无并行，前一条完成才开始下一条）
// - 关系判定 → 媒体解析 → 引用启发式 → 正文重写 → 外链预览
// - 单条失败收集进报告继续处理，不中断整轮
package assemble

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"go-touitr/internal/archive"
	"go-touitr/internal/classify"
	"go-touitr/internal/config"
	"go-touitr/internal/logx"
	"go-touitr/internal/media"
	"go-touitr/internal/model"
	"go-touitr/internal/preview"
	"go-touitr/internal/rewrite"
	"go-touitr/internal/shortlink"
	"go-touitr/internal/store"
)

const tweetsEntry = "data/tweets.js"

// Runner 组装执行器，持有配置/归档/各解析器。
type Runner struct {
	cfg      *config.Config
	bundle   *archive.Bundle
	owner    *model.Owner
	media    *media.Extractor
	links    *shortlink.Resolver
	previews *preview.Fetcher
	rewriter *rewrite.Rewriter
	// 正常模式落库；极简模式为 nil
	store *store.SQLite
}

// New 创建 Runner。st 可为 nil（极简模式）。
func New(cfg *config.Config, b *archive.Bundle, owner *model.Owner, mx *media.Extractor,
	links *shortlink.Resolver, previews *preview.Fetcher, rw *rewrite.Rewriter, st *store.SQLite) *Runner {
	return &Runner{cfg: cfg, bundle: b, owner: owner, media: mx, links: links, previews: previews, rewriter: rw, store: st}
}

// tweetRecord 为归档 tweets 条目的包装层。
type tweetRecord struct {
	Tweet model.RawTweet `json:"tweet"`
}

// Run 执行一轮组装，返回按归档序排列的结果与逐条报告。
// 归档级错误（tweets 记录缺失/损坏）直接返回 error。
func (r *Runner) Run(ctx context.Context) ([]model.Post, *model.Report, error) {
	var records []tweetRecord
	if err := r.bundle.Decode(tweetsEntry, &records); err != nil {
		return nil, nil, fmt.Errorf("decode %s: %w", tweetsEntry, err)
	}
	logx.Infof("归档推文共 %d 条", len(records))

	report := &model.Report{Total: len(records)}
	posts := make([]model.Post, 0, len(records))
	for i := range records {
		t := &records[i].Tweet
		p, err := r.assemble(ctx, t)
		if err != nil {
			logx.Warnf("推文处理失败：id=%s 错误=%v", tweetID(t), err)
			report.Failed = append(report.Failed, model.Failure{ID: tweetID(t), Err: err})
			continue
		}
		if r.store != nil {
			if err := r.store.UpsertPost(ctx, i, p); err != nil {
				logx.Warnf("写入结果失败：id=%s 错误=%v", p.ID, err)
			}
		}
		posts = append(posts, p)
	}
	return posts, report, nil
}

// assemble 组装单条推文。
func (r *Runner) assemble(ctx context.Context, t *model.RawTweet) (model.Post, error) {
	p := model.Post{
		ID:        tweetID(t),
		Timestamp: t.CreatedAt,
		Author:    r.owner.DisplayName,
		Handle:    r.owner.Handle,
		Avatar:    r.owner.Avatar,
		Type:      typeOrDefault(t.Type),
		Retweets:  atoi(t.RetweetCount),
		Likes:     atoi(t.FavoriteCount),
	}
	if p.ID == "" || p.Timestamp == "" {
		return p, fmt.Errorf("记录缺少 id 或 created_at")
	}

	cls, err := classify.Classify(t, r.owner, r.cfg.ReplyLinkHost)
	if err != nil {
		return p, err
	}
	text := cls.Text
	switch cls.Kind {
	case classify.Retweet:
		// 转推不展示专属头像，作者替换为被转推者
		p.IsRetweet = true
		p.RetweetedBy = r.owner.DisplayName
		p.Avatar = ""
		p.Author = cls.Handle
		p.Handle = cls.Handle
	case classify.ReplyDirect, classify.ReplyFallback:
		p.ReplyTo = cls.ReplyTo
		p.ReplyToAuthor = cls.ReplyToAuthor
	}

	// urls 实体会被媒体步骤消费（媒体自身短链不算外链），操作副本
	urls := append([]model.URLEntity(nil), t.Entities.URLs...)
	var extended []model.MediaEntity
	if t.ExtendedEntities != nil {
		extended = t.ExtendedEntities.Media
	}

	if len(extended) > 0 {
		for _, m := range extended {
			urls = rejectURL(urls, m.URL)
			text = strings.TrimSuffix(text, " "+m.URL)
			item, err := r.resolveMedia(t, m)
			if err != nil {
				return p, err
			}
			p.Media = append(p.Media, item)
		}
	} else if len(t.Entities.Media) > 0 {
		for _, m := range t.Entities.Media {
			entry, err := r.media.Find(lastSegment(m.MediaURLHTTPS))
			if err != nil {
				return p, err
			}
			base, err := r.media.Extract(entry)
			if err != nil {
				return p, err
			}
			p.Media = append(p.Media, model.MediaItem{Type: "photo", URL: assetPath(r.cfg.ImagesDir, base)})
		}
	}

	// 引用启发式：结尾仍挂着一个既非转推也非回复能解释的短链
	if !p.IsRetweet && p.ReplyTo == "" {
		if to, author, ok := classify.QuoteAsReply(text, urls, r.cfg.ShortLinkHost); ok {
			p.ReplyTo = to
			p.ReplyToAuthor = author
		}
	}

	// 重写必须最后做：前面的裁剪都作用在纯文本上
	content, err := r.rewriter.Rewrite(ctx, text, &t.Entities, extended)
	if err != nil {
		return p, err
	}
	p.Content = content

	if len(urls) > 0 {
		p.Link = r.linkPreview(ctx, urls[0].ExpandedURL)
	}
	return p, nil
}

// resolveMedia 按媒体类型定位并提取一项扩展媒体。
func (r *Runner) resolveMedia(t *model.RawTweet, m model.MediaEntity) (model.MediaItem, error) {
	var item model.MediaItem
	var entry string
	var err error
	switch m.Type {
	case "photo":
		item.Type = "photo"
		entry, err = r.media.Find(tweetID(t) + "*" + lastSegment(m.MediaURLHTTPS))
	case "video":
		item.Type = "video"
		item.Thumbnail = m.MediaURL
		entry, err = r.media.Find(tweetIDStr(t))
	case "animated_gif":
		item.Type = "video"
		entry, err = r.media.Find(tweetIDStr(t))
	default:
		return item, fmt.Errorf("不支持的扩展媒体类型 %q", m.Type)
	}
	if err != nil {
		return item, err
	}
	base, err := r.media.Extract(entry)
	if err != nil {
		return item, err
	}
	item.URL = assetPath(r.cfg.ImagesDir, base)
	return item, nil
}

// linkPreview 对首个非平台外链尝试预览，拿不到元数据则不挂 link。
func (r *Runner) linkPreview(ctx context.Context, raw string) *model.LinkPreview {
	if raw == "" {
		return nil
	}
	for _, prefix := range r.cfg.SkipPreviewPrefixes {
		if strings.HasPrefix(raw, prefix) {
			return nil
		}
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return nil
	}
	og := r.previews.Fetch(ctx, raw)
	if len(og) == 0 {
		return nil
	}
	lp := &model.LinkPreview{URL: raw, Domain: u.Host, Description: og["og:description"], Image: og["og:image"]}
	lp.Title = firstNonEmpty(og["og:title"], og["og:site_name"], u.Host)
	return lp
}

func tweetID(t *model.RawTweet) string {
	if t.ID != "" {
		return t.ID
	}
	return t.IDStr
}

func tweetIDStr(t *model.RawTweet) string {
	if t.IDStr != "" {
		return t.IDStr
	}
	return t.ID
}

func typeOrDefault(s string) string {
	if s == "" {
		return "default"
	}
	return s
}

// atoi 宽松解析归档的字符串计数，缺失/非法按 0。
func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func assetPath(imagesDir, base string) string {
	return "/" + imagesDir + "/" + base
}

func lastSegment(raw string) string {
	if i := strings.LastIndex(raw, "/"); i >= 0 {
		return raw[i+1:]
	}
	return raw
}

func rejectURL(urls []model.URLEntity, shortURL string) []model.URLEntity {
	out := urls[:0]
	for _, u := range urls {
		if u.URL != shortURL {
			out = append(out, u)
		}
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
