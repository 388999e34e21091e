package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeZip(t *testing.T, files map[string]string) string {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range files {
		f, err := w.Create(name)
		if err != nil { t.Fatalf("create entry: %v", err) }
		if _, err := f.Write([]byte(content)); err != nil { t.Fatalf("write entry: %v", err) }
	}
	if err := w.Close(); err != nil { t.Fatalf("close zip: %v", err) }
	path := filepath.Join(t.TempDir(), "a.zip")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil { t.Fatalf("write zip: %v", err) }
	return path
}

func TestBundle_ReadEntry(t *testing.T) {
	b, err := Open(writeZip(t, map[string]string{"data/account.js": "x"}))
	if err != nil { t.Fatalf("open: %v", err) }
	defer b.Close()
	got, err := b.ReadEntry("data/account.js")
	if err != nil { t.Fatalf("read: %v", err) }
	if string(got) != "x" { t.Fatalf("content = %q", got) }
	if _, err := b.ReadEntry("data/nope.js"); !errors.Is(err, ErrEntryNotFound) {
		t.Fatalf("want ErrEntryNotFound, got %v", err)
	}
}

func TestBundle_Glob(t *testing.T) {
	b, err := Open(writeZip(t, map[string]string{
		"data/tweets_media/111-pic.jpg":  "a",
		"data/tweets_media/222-clip.mp4": "b",
		"data/profile_media/333-me.png":  "c",
	}))
	if err != nil { t.Fatalf("open: %v", err) }
	defer b.Close()

	all := b.Glob("data/tweets_media", "")
	if len(all) != 2 { t.Fatalf("all = %v", all) }
	// 分段模式：*111*pic.jpg*
	got := b.Glob("data/tweets_media", "111*pic.jpg")
	if len(got) != 1 || got[0] != "data/tweets_media/111-pic.jpg" { t.Fatalf("got = %v", got) }
	if got := b.Glob("data/tweets_media", "333"); len(got) != 0 { t.Fatalf("crossed dir: %v", got) }
	if got := b.Glob("data/tweets_media", "pic*111"); len(got) != 0 { t.Fatalf("order ignored: %v", got) }
}

func TestBundle_Decode(t *testing.T) {
	b, err := Open(writeZip(t, map[string]string{
		"data/account.js": "window.YTD.account.part0 = [ { \"n\": 1 } ];",
		"data/bad.js":     "window.YTD.bad.part0 = oops",
	}))
	if err != nil { t.Fatalf("open: %v", err) }
	defer b.Close()

	var v []map[string]int
	if err := b.Decode("data/account.js", &v); err != nil { t.Fatalf("decode: %v", err) }
	if len(v) != 1 || v[0]["n"] != 1 { t.Fatalf("decoded = %v", v) }

	if err := b.Decode("data/bad.js", &v); !errors.Is(err, ErrMalformedData) {
		t.Fatalf("want ErrMalformedData, got %v", err)
	}
	if err := b.Decode("data/none.js", &v); !errors.Is(err, ErrEntryNotFound) {
		t.Fatalf("want ErrEntryNotFound, got %v", err)
	}
}

func TestMatch(t *testing.T) {
	cases := []struct {
		base, pattern string
		want          bool
	}{
		{"111-pic.jpg", "111", true},
		{"111-pic.jpg", "111*jpg", true},
		{"111-pic.jpg", "jpg*111", false},
		{"111-pic.jpg", "", true},
		{"111-pic.jpg", "222", false},
	}
	for _, c := range cases {
		if got := Match(c.base, c.pattern); got != c.want {
			t.Fatalf("Match(%q,%q) = %v, want %v", c.base, c.pattern, got, c.want)
		}
	}
}
