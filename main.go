// 命令行入口：
// - 解析 flags 与 settings.yaml
// - 初始化日志、HTTP 客户端、持久缓存、归档与所有者
// - 顺序组装全部推文并导出 posts.json，最后汇报失败条目
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"time"

	"go-touitr/internal/archive"
	"go-touitr/internal/assemble"
	"go-touitr/internal/cache"
	"go-touitr/internal/config"
	"go-touitr/internal/export"
	"go-touitr/internal/fetch"
	"go-touitr/internal/identity"
	"go-touitr/internal/logx"
	"go-touitr/internal/media"
	"go-touitr/internal/preview"
	"go-touitr/internal/rewrite"
	"go-touitr/internal/shortlink"
	"go-touitr/internal/store"
)

const tweetsMediaDir = "data/tweets_media"

func main() {
	var (
		archivePath = flag.String("archive", "", "path to the exported zip archive (required)")
		outDir      = flag.String("out", "site", "output directory for posts.json and media")
		configPath  = flag.String("config", "settings.yaml", "path to settings.yaml (optional)")
	)
	flag.Parse()
	if *archivePath == "" {
		log.Fatalf("usage: go-touitr -archive <export.zip> -out <dir>")
	}

	// 1) 加载配置：settings.yaml 缺省时用默认值即可运行
	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// 2) 初始化日志：级别/格式/语言/颜色
	logx.Init(cfg.LogLevel, cfg.LogFormat, cfg.LogLocale, cfg.LogColor)

	// 3) 初始化 HTTP 客户端（含代理与重试）
	cl, err := fetch.New(fetch.Options{
		ProxyHTTP:  cfg.Proxy.HTTP,
		ProxyHTTPS: cfg.Proxy.HTTPS,
		Timeout:    time.Duration(cfg.HTTPTimeoutSeconds) * time.Second,
		Retry:      cfg.Retry,
	})
	if err != nil {
		log.Fatalf("http client: %v", err)
	}

	// 4) 打开归档与持久缓存
	bundle, err := archive.Open(*archivePath)
	if err != nil {
		log.Fatalf("open archive: %v", err)
	}
	defer bundle.Close()

	if err := os.MkdirAll(cfg.CacheDir, 0o755); err != nil {
		log.Fatalf("mkdir cache dir: %v", err)
	}
	linkCache, err := cache.Open[string](filepath.Join(cfg.CacheDir, "links"))
	if err != nil {
		log.Fatalf("open link cache: %v", err)
	}
	ogCache, err := cache.Open[map[string]string](filepath.Join(cfg.CacheDir, "meta-og"))
	if err != nil {
		log.Fatalf("open og cache: %v", err)
	}
	logx.Debugf("缓存载入：短链=%d 预览=%d", linkCache.Len(), ogCache.Len())

	// 5) 解析所有者并准备媒体提取
	imagesDir := filepath.Join(*outDir, cfg.ImagesDir)
	owner, err := identity.ResolveOwner(bundle, imagesDir, cfg.ImagesDir)
	if err != nil {
		log.Fatalf("resolve owner: %v", err)
	}
	logx.Infof("归档所有者：@%s（%s）", owner.Handle, owner.DisplayName)

	mx, err := media.NewExtractor(bundle, tweetsMediaDir, imagesDir)
	if err != nil {
		log.Fatalf("media extractor: %v", err)
	}

	// 6) 数据存储：极简模式不打开数据库
	var st *store.SQLite
	if !cfg.SimpleMode {
		st, err = store.OpenSQLite(cfg.Database.DSN)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		defer st.Close()
	}

	// 7) 顺序组装并导出
	links := shortlink.New(cl, linkCache)
	previews := preview.New(cl, ogCache)
	rw := rewrite.New(links, cfg.ShortLinkHost)
	run := assemble.New(cfg, bundle, owner, mx, links, previews, rw, st)

	ctx := context.Background()
	posts, report, err := run.Run(ctx)
	if err != nil {
		logx.Errorf("运行失败：%v", err)
		os.Exit(1)
	}

	outPath := filepath.Join(*outDir, "posts.json")
	if err := export.WritePosts(posts, outPath); err != nil {
		log.Fatalf("export json: %v", err)
	}
	logx.Infof("已导出 %s：成功 %d / 共 %d", outPath, len(posts), report.Total)

	if !report.OK() {
		for _, f := range report.Failed {
			logx.Warnf("失败条目：id=%s 原因=%v", f.ID, f.Err)
		}
		os.Exit(1)
	}
}

// loadConfig 读取配置文件；文件不存在时回退到默认配置。
func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config.Default(), nil
	}
	return config.Load(path)
}
