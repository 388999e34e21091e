// 包 config 负责加载与校验应用配置（settings.yaml），
// 对外提供结构体 Config 及默认值/合法性校验。
package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// 仅保留当前需要的字段，避免过度设计（KISS/YAGNI）。
type Config struct {
	CacheDir            string   `yaml:"CACHE_DIR"`      // 持久缓存目录（短链/OG）
	ImagesDir           string   `yaml:"IMAGES_DIR"`     // 输出目录下的媒体子目录名
	ShortLinkHost       string   `yaml:"SHORT_LINK_HOST"`
	ReplyLinkHost       string   `yaml:"REPLY_LINK_HOST"` // 回复跳转链接使用的域名
	SkipPreviewPrefixes []string `yaml:"SKIP_PREVIEW_PREFIXES"`
	HTTPTimeoutSeconds  int      `yaml:"HTTP_TIMEOUT_SECONDS"`
	Retry               int      `yaml:"RETRY"`
	SimpleMode          bool     `yaml:"SIMPLE_MODE"`
	Database            Database `yaml:"DATABASE"`
	Proxy               Proxy    `yaml:"PROXY"`
	LogLevel            string   `yaml:"LOG_LEVEL"`
	LogFormat           string   `yaml:"LOG_FORMAT"` // text|json|pretty
	LogLocale           string   `yaml:"LOG_LOCALE"` // zh-CN|en
	LogColor            string   `yaml:"LOG_COLOR"`  // auto|always|never
}

type Database struct {
	Type string `yaml:"type"` // sqlite (default)
	DSN  string `yaml:"dsn"`  // ./posts.db
}

type Proxy struct {
	HTTP  string `yaml:"http"`
	HTTPS string `yaml:"https"`
}

// Default 返回一份可直接运行的默认配置（settings.yaml 缺省时使用）。
func Default() *Config {
	c := &Config{SimpleMode: true}
	_ = c.Validate()
	return c
}

func Load(path string) (*Config, error) {
	// Load 从文件读取 YAML 并反序列化为 Config，同时进行基础校验与默认值填充。
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config %s: %w", path, err)
	}
	defer f.Close()
	b, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("unmarshal config %s: %w", path, err)
	}
	// YAML 的零值无法区分 "未写" 与 "false"：SIMPLE_MODE 缺省按 true 处理
	if !hasKey(b, "SIMPLE_MODE") {
		c.SimpleMode = true
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

func (c *Config) Validate() error {
	// Validate 负责合法性检查与默认值设置，避免在业务层分散判空逻辑。
	if c.CacheDir == "" {
		c.CacheDir = ".cache"
	}
	if c.ImagesDir == "" {
		c.ImagesDir = "images"
	}
	if c.ShortLinkHost == "" {
		c.ShortLinkHost = "t.co"
	}
	if c.ReplyLinkHost == "" {
		c.ReplyLinkHost = "fxtwitter.com"
	}
	if len(c.SkipPreviewPrefixes) == 0 {
		// 平台自身与个人域名的链接不做预览（与归档来源一致）
		c.SkipPreviewPrefixes = []string{
			"https://x.com/",
			"https://twitter.com",
			"https://goto.ninja",
			"http://goto.ninja",
		}
	}
	if c.HTTPTimeoutSeconds < 0 {
		return errors.New("HTTP_TIMEOUT_SECONDS must be >= 0")
	}
	if c.HTTPTimeoutSeconds == 0 {
		c.HTTPTimeoutSeconds = 25
	}
	if c.Retry < 0 {
		return errors.New("RETRY must be >= 0")
	}
	if c.Database.Type == "" {
		c.Database.Type = "sqlite"
	}
	if c.Database.Type != "sqlite" {
		return fmt.Errorf("unsupported database type: %s", c.Database.Type)
	}
	if c.Database.DSN == "" {
		c.Database.DSN = "./posts.db"
	}
	if c.LogFormat == "" {
		c.LogFormat = "pretty"
	}
	if c.LogLocale == "" {
		c.LogLocale = "zh-CN"
	}
	if c.LogColor == "" {
		c.LogColor = "auto"
	}
	return nil
}

// hasKey 粗略判断 YAML 顶层是否写了某个键（仅用于布尔缺省语义）。
func hasKey(b []byte, key string) bool {
	var m map[string]any
	if err := yaml.Unmarshal(b, &m); err != nil {
		return false
	}
	_, ok := m[key]
	return ok
}
