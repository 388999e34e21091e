package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_DefaultsAndValidate(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "c.yaml")
	// Minimal valid config
	_ = os.WriteFile(f, []byte("LOG_LEVEL: debug\n"), 0644)
	c, err := Load(f)
	if err != nil { t.Fatalf("load: %v", err) }
	if c.CacheDir != ".cache" || c.ImagesDir != "images" { t.Fatalf("dir defaults: %+v", c) }
	if c.ShortLinkHost != "t.co" || c.ReplyLinkHost != "fxtwitter.com" { t.Fatalf("host defaults: %+v", c) }
	if len(c.SkipPreviewPrefixes) == 0 { t.Fatalf("skip prefixes missing") }
	if !c.SimpleMode { t.Fatalf("SIMPLE_MODE should default to true") }
	if c.Database.Type != "sqlite" || c.Database.DSN == "" { t.Fatalf("db defaults: %+v", c.Database) }
	if c.LogFormat == "" || c.LogLocale == "" || c.LogColor == "" { t.Fatalf("log defaults missing") }

	// 显式关闭极简模式
	_ = os.WriteFile(f, []byte("SIMPLE_MODE: false\n"), 0644)
	c2, err := Load(f)
	if err != nil { t.Fatalf("load: %v", err) }
	if c2.SimpleMode { t.Fatalf("SIMPLE_MODE=false not honored") }

	// Negative numbers should error
	_ = os.WriteFile(f, []byte("RETRY: -1\n"), 0644)
	if _, err := Load(f); err == nil { t.Fatalf("expect error for negative RETRY") }
}

func TestDefault(t *testing.T) {
	c := Default()
	if !c.SimpleMode { t.Fatalf("default should be simple mode") }
	if c.HTTPTimeoutSeconds != 25 { t.Fatalf("timeout = %d", c.HTTPTimeoutSeconds) }
}
