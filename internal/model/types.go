// 包 model 定义数据模型：归档原始记录（RawTweet 及实体）、
// 归档所有者（Owner）、归一化输出（Post）与运行报告（Report）。
package model

// Owner 表示归档所有者（从 account/profile 记录解析，整轮运行只读）。
type Owner struct {
	Handle      string
	DisplayName string
	ID          string
	Avatar      string
}

// RawTweet 为归档中一条推文的原始记录（只读）。
// 注意：归档导出的数值字段（计数/ID）均为字符串。
type RawTweet struct {
	ID                  string         `json:"id"`
	IDStr               string         `json:"id_str"`
	FullText            string         `json:"full_text"`
	CreatedAt           string         `json:"created_at"`
	Type                string         `json:"type"`
	RetweetCount        string         `json:"retweet_count"`
	FavoriteCount       string         `json:"favorite_count"`
	InReplyToStatusID   string         `json:"in_reply_to_status_id"`
	InReplyToUserID     string         `json:"in_reply_to_user_id_str"`
	InReplyToScreenName string         `json:"in_reply_to_screen_name"`
	Entities            Entities       `json:"entities"`
	ExtendedEntities    *MediaEntities `json:"extended_entities"`
}

// Entities 为推文附带的结构化元数据。
type Entities struct {
	UserMentions []Mention     `json:"user_mentions"`
	Hashtags     []Hashtag     `json:"hashtags"`
	URLs         []URLEntity   `json:"urls"`
	Media        []MediaEntity `json:"media"`
}

// MediaEntities 为扩展媒体实体列表（视频/动图只出现在这里）。
type MediaEntities struct {
	Media []MediaEntity `json:"media"`
}

// Mention 为 @用户 实体。
type Mention struct {
	ScreenName string `json:"screen_name"`
	Name       string `json:"name"`
	ID         string `json:"id"`
}

// Hashtag 为 #话题 实体。
type Hashtag struct {
	Text string `json:"text"`
}

// URLEntity 为短链实体：URL 是 t.co 形式，ExpandedURL 为真实地址。
type URLEntity struct {
	URL         string `json:"url"`
	ExpandedURL string `json:"expanded_url"`
	DisplayURL  string `json:"display_url"`
}

// MediaEntity 为媒体实体（photo/video/animated_gif）。
type MediaEntity struct {
	URL           string `json:"url"`
	ExpandedURL   string `json:"expanded_url"`
	Type          string `json:"type"`
	MediaURL      string `json:"media_url"`
	MediaURLHTTPS string `json:"media_url_https"`
}

// Post 为归一化后的输出单元，字段名由查看器按原样消费，保持稳定。
type Post struct {
	ID            string       `json:"id"`
	Timestamp     string       `json:"timestamp"`
	Author        string       `json:"author"`
	Handle        string       `json:"handle"`
	Avatar        string       `json:"avatar"`
	Content       string       `json:"content"`
	Type          string       `json:"type"`
	IsRetweet     bool         `json:"isRetweet,omitempty"`
	RetweetedBy   string       `json:"retweetedBy,omitempty"`
	ReplyTo       string       `json:"replyTo,omitempty"`
	ReplyToAuthor string       `json:"replyToAuthor,omitempty"`
	Media         []MediaItem  `json:"media,omitempty"`
	Link          *LinkPreview `json:"link,omitempty"`
	Replies       int          `json:"replies"`
	Retweets      int          `json:"retweets"`
	Likes         int          `json:"likes"`
}

// MediaItem 为输出中的一项媒体，URL 指向已提取到输出目录的资源。
type MediaItem struct {
	Type      string `json:"type"`
	URL       string `json:"url"`
	Thumbnail string `json:"thumbnail,omitempty"`
}

// LinkPreview 为外链预览（Open Graph 元数据）。
type LinkPreview struct {
	URL         string `json:"url"`
	Domain      string `json:"domain"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image,omitempty"`
}

// Failure 记录一条处理失败的推文及原因。
type Failure struct {
	ID  string
	Err error
}

// Report 为一轮运行的结果报告：逐条失败被收集而非中断整轮。
type Report struct {
	Total  int
	Failed []Failure
}

// OK 表示本轮没有失败条目。
func (r *Report) OK() bool { return len(r.Failed) == 0 }
