// 包 classify 负责判定推文的关系类型：
// 原创 / 转推（RT 前缀）/ 直接回复 / 兜底回复（靠开头 @ 提及），
// 以及"结尾短链视作引用"的启发式。判定会同时裁剪工作文本
// （去掉 RT 前缀或开头提及），供后续重写使用。
package classify

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go-touitr/internal/model"
)

// ErrUnresolvableReply 表示像回复但所有规则都无法定位回复对象。
var ErrUnresolvableReply = errors.New("classify: unresolvable reply")

// Kind 为关系类型。
type Kind int

const (
	Original Kind = iota
	Retweet
	ReplyDirect
	ReplyFallback
)

// Result 为判定结果。Text 是裁剪后的工作文本。
type Result struct {
	Kind          Kind
	Handle        string // 转推的实际作者 handle
	ReplyTo       string // 回复目标链接
	ReplyToAuthor string
	Text          string
}

var (
	rtPrefixRe       = regexp.MustCompile(`^RT @([^\s]+):`)
	numericRe        = regexp.MustCompile(`^\d+$`)
	leadingMentionRe = regexp.MustCompile(`^@([^ ]+)`)
)

// StatusLink 构造指向某条推文的跳转链接。
func StatusLink(host, handle, tweetID string) string {
	return "https://" + host + "/" + handle + "/status/" + tweetID
}

// Classify 按优先级应用规则：RT 前缀 > 回复目标 id > 原创。
// 引用启发式不在这里：它必须等媒体短链从文本剔除后再判定（见 QuoteAsReply）。
func Classify(t *model.RawTweet, owner *model.Owner, replyHost string) (Result, error) {
	res := Result{Kind: Original, Text: t.FullText}

	if m := rtPrefixRe.FindStringSubmatch(res.Text); m != nil {
		res.Kind = Retweet
		res.Handle = m[1]
		res.Text = strings.TrimPrefix(res.Text, "RT @"+m[1]+": ")
		return res, nil
	}

	if numericRe.MatchString(t.InReplyToStatusID) {
		// 目标是所有者自己
		if t.InReplyToUserID == owner.ID {
			res.Kind = ReplyDirect
			res.ReplyTo = StatusLink(replyHost, owner.Handle, t.InReplyToStatusID)
			res.ReplyToAuthor = owner.Handle
			return res, nil
		}
		// 目标在提及实体中
		for _, um := range t.Entities.UserMentions {
			if um.ID == t.InReplyToUserID {
				res.Kind = ReplyDirect
				res.ReplyTo = StatusLink(replyHost, um.ScreenName, t.InReplyToStatusID)
				res.ReplyToAuthor = t.InReplyToScreenName
				return res, nil
			}
		}
		// 兜底：正文以 @handle 开头，视其为回复对象并从文本剔除
		if m := leadingMentionRe.FindStringSubmatch(res.Text); m != nil {
			res.Kind = ReplyFallback
			res.Text = strings.TrimPrefix(res.Text, "@"+m[1]+" ")
			res.ReplyTo = StatusLink(replyHost, m[1], t.InReplyToStatusID)
			res.ReplyToAuthor = t.InReplyToScreenName
			return res, nil
		}
		return res, fmt.Errorf("%w: 推文 %s", ErrUnresolvableReply, t.ID)
	}

	return res, nil
}

// QuoteAsReply 判定"结尾短链即引用"：文本以 " https://<host>/xxxxxxxxxx" 结尾
// 且该短链在 urls 实体中有展开地址时，合成一个回复目标。
// 作者取展开地址的第三个路径段（https://host/<author>/status/...）。
// 找不到对应实体时放弃启发式（尽力而为），不报错。
func QuoteAsReply(text string, urls []model.URLEntity, shortHost string) (replyTo, author string, ok bool) {
	re := regexp.MustCompile(` (https://` + regexp.QuoteMeta(shortHost) + `/\S{10})$`)
	m := re.FindStringSubmatch(text)
	if m == nil {
		return "", "", false
	}
	for _, u := range urls {
		if u.URL != m[1] || u.ExpandedURL == "" {
			continue
		}
		parts := strings.Split(u.ExpandedURL, "/")
		if len(parts) < 4 {
			return "", "", false
		}
		return u.ExpandedURL, parts[3], true
	}
	return "", "", false
}
