// 包 identity 负责解析归档所有者：
// 从 account/profile 两条内嵌记录取 handle/昵称/数字 id/头像，
// 头像若存在于归档内则搬运到输出目录并改用本地相对路径。
package identity

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"go-touitr/internal/archive"
	"go-touitr/internal/logx"
	"go-touitr/internal/media"
	"go-touitr/internal/model"
)

// ErrArchiveSchema 表示必需的归档记录或字段缺失。
var ErrArchiveSchema = errors.New("identity: archive schema error")

const (
	accountEntry    = "data/account.js"
	profileEntry    = "data/profile.js"
	profileMediaDir = "data/profile_media"
	avatarFilename  = "profile.jpg"
)

type accountRecord struct {
	Account struct {
		Username           string `json:"username"`
		AccountID          string `json:"accountId"`
		AccountDisplayName string `json:"accountDisplayName"`
	} `json:"account"`
}

type profileRecord struct {
	Profile struct {
		AvatarMediaURL string `json:"avatarMediaUrl"`
	} `json:"profile"`
}

// ResolveOwner 读取 account/profile 记录并返回所有者信息。
// imagesDir 为输出媒体目录（绝对/相对均可），imagesName 为其在
// 输出文档中引用时的相对目录名（如 "images"）。
func ResolveOwner(b *archive.Bundle, imagesDir, imagesName string) (*model.Owner, error) {
	var accounts []accountRecord
	if err := b.Decode(accountEntry, &accounts); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArchiveSchema, err)
	}
	if len(accounts) == 0 {
		return nil, fmt.Errorf("%w: %s: empty account record", ErrArchiveSchema, accountEntry)
	}
	acc := accounts[0].Account
	if acc.Username == "" || acc.AccountID == "" {
		return nil, fmt.Errorf("%w: %s: missing username/accountId", ErrArchiveSchema, accountEntry)
	}

	var profiles []profileRecord
	if err := b.Decode(profileEntry, &profiles); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArchiveSchema, err)
	}
	if len(profiles) == 0 {
		return nil, fmt.Errorf("%w: %s: empty profile record", ErrArchiveSchema, profileEntry)
	}

	owner := &model.Owner{
		Handle:      acc.Username,
		DisplayName: acc.AccountDisplayName,
		ID:          acc.AccountID,
	}
	avatar, err := resolveAvatar(b, profiles[0].Profile.AvatarMediaURL, imagesDir, imagesName)
	if err != nil {
		return nil, err
	}
	owner.Avatar = avatar
	return owner, nil
}

// resolveAvatar 返回头像引用：归档内有对应文件则搬运为 images/profile.jpg，
// 否则原样沿用 profile 中的值（外部 URL）。
func resolveAvatar(b *archive.Bundle, avatarURL, imagesDir, imagesName string) (string, error) {
	if avatarURL == "" {
		logx.Warnf("profile 记录缺少头像字段，输出将不带头像")
		return "", nil
	}
	frag := avatarURL
	if i := strings.LastIndex(frag, "/"); i >= 0 {
		frag = frag[i+1:]
	}
	if frag == "" || len(b.Glob(profileMediaDir, frag)) != 1 {
		return avatarURL, nil
	}
	ex, err := media.NewExtractor(b, profileMediaDir, imagesDir)
	if err != nil {
		return "", err
	}
	entry, err := ex.Find(frag)
	if err != nil {
		return "", err
	}
	if err := ex.ExtractAs(entry, avatarFilename); err != nil {
		return "", err
	}
	return path.Join(imagesName, avatarFilename), nil
}
