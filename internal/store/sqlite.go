// 包 store 提供存储实现（SQLite）：正常模式下每条归一化结果
// 以 id 为主键、归档序为排序键落库，文档本体存为 JSON 列，
// 便于重复运行时增量检查与外部查询。
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"go-touitr/internal/model"
)

// SQLite 封装 *sql.DB，基于 modernc.org/sqlite（纯 Go 实现）。
type SQLite struct {
	db *sql.DB
}

// OpenSQLite 打开 SQLite 数据库并执行自动迁移。
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLite) Close() error { return s.db.Close() }

// migrate 执行建表语句，保持幂等。
func (s *SQLite) migrate() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS posts (
        id TEXT PRIMARY KEY,
        ord INTEGER,
        timestamp TEXT,
        doc TEXT
    );`)
	if err != nil {
		return fmt.Errorf("exec migrate: %w", err)
	}
	return nil
}

// Reset 清空 posts 表（不删除数据库文件）。
func (s *SQLite) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM posts`); err != nil {
		return fmt.Errorf("delete posts: %w", err)
	}
	return nil
}

// UpsertPost 插入或更新一条归一化结果，ord 为其在归档中的序号。
func (s *SQLite) UpsertPost(ctx context.Context, ord int, p model.Post) error {
	if p.ID == "" {
		return errors.New("post.id required")
	}
	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal post %s: %w", p.ID, err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO posts(id, ord, timestamp, doc)
        VALUES(?,?,?,?)
        ON CONFLICT(id) DO UPDATE SET ord=excluded.ord, timestamp=excluded.timestamp, doc=excluded.doc`,
		p.ID, ord, p.Timestamp, string(doc))
	if err != nil {
		return fmt.Errorf("upsert post %s: %w", p.ID, err)
	}
	return nil
}

// ListPosts 按归档序返回全部结果。
func (s *SQLite) ListPosts(ctx context.Context) ([]model.Post, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT doc FROM posts ORDER BY ord`)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()
	out := make([]model.Post, 0)
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan posts: %w", err)
		}
		var p model.Post
		if err := json.Unmarshal([]byte(doc), &p); err != nil {
			return nil, fmt.Errorf("unmarshal post doc: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}
	return out, nil
}

// Count 返回已落库的结果数。
func (s *SQLite) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM posts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return n, nil
}
