package identity

import (
	"archive/zip"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go-touitr/internal/archive"
)

const accountJS = `window.YTD.account.part0 = [ { "account": {
  "username": "alice", "accountId": "42", "accountDisplayName": "Alice A."
} } ];`

func openBundle(t *testing.T, files map[string]string) *archive.Bundle {
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
	b, err := archive.Open(path)
	if err != nil { t.Fatalf("open: %v", err) }
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestResolveOwner_LocalAvatar(t *testing.T) {
	b := openBundle(t, map[string]string{
		"data/account.js": accountJS,
		"data/profile.js": `window.YTD.profile.part0 = [ { "profile": {
  "avatarMediaUrl": "https://pbs.twimg.com/profile_images/123/me.jpg"
} } ];`,
		"data/profile_media/123-me.jpg": "avatarbytes",
	})
	imagesDir := filepath.Join(t.TempDir(), "images")
	owner, err := ResolveOwner(b, imagesDir, "images")
	if err != nil { t.Fatalf("resolve: %v", err) }
	if owner.Handle != "alice" || owner.ID != "42" || owner.DisplayName != "Alice A." {
		t.Fatalf("owner = %+v", owner)
	}
	if owner.Avatar != "images/profile.jpg" { t.Fatalf("avatar = %q", owner.Avatar) }
	got, err := os.ReadFile(filepath.Join(imagesDir, "profile.jpg"))
	if err != nil { t.Fatalf("read avatar: %v", err) }
	if string(got) != "avatarbytes" { t.Fatalf("avatar bytes = %q", got) }
}

func TestResolveOwner_ExternalAvatarKept(t *testing.T) {
	b := openBundle(t, map[string]string{
		"data/account.js": accountJS,
		"data/profile.js": `window.YTD.profile.part0 = [ { "profile": {
  "avatarMediaUrl": "https://cdn.example.com/elsewhere/me.jpg"
} } ];`,
	})
	owner, err := ResolveOwner(b, t.TempDir(), "images")
	if err != nil { t.Fatalf("resolve: %v", err) }
	if owner.Avatar != "https://cdn.example.com/elsewhere/me.jpg" { t.Fatalf("avatar = %q", owner.Avatar) }
}

func TestResolveOwner_SchemaErrors(t *testing.T) {
	// account 记录缺失
	b := openBundle(t, map[string]string{
		"data/profile.js": `window.YTD.profile.part0 = [ { "profile": { "avatarMediaUrl": "" } } ];`,
	})
	if _, err := ResolveOwner(b, t.TempDir(), "images"); !errors.Is(err, ErrArchiveSchema) {
		t.Fatalf("want ErrArchiveSchema, got %v", err)
	}

	// 必需字段缺失
	b2 := openBundle(t, map[string]string{
		"data/account.js": `window.YTD.account.part0 = [ { "account": { "username": "" } } ];`,
		"data/profile.js": `window.YTD.profile.part0 = [ { "profile": { "avatarMediaUrl": "" } } ];`,
	})
	if _, err := ResolveOwner(b2, t.TempDir(), "images"); !errors.Is(err, ErrArchiveSchema) {
		t.Fatalf("want ErrArchiveSchema, got %v", err)
	}
}
