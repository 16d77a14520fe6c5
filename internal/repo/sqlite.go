package repo

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore — группы прошлого прогона в SQLite: переживают рестарт сервиса.
type SQLiteStore struct {
	conn *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := conn.Exec(`
		CREATE TABLE IF NOT EXISTS match_groups (
			group_id   TEXT NOT NULL,
			member_key TEXT NOT NULL,
			PRIMARY KEY (group_id, member_key)
		)`); err != nil {
		conn.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &SQLiteStore{conn: conn}, nil
}

func (s *SQLiteStore) Close() error { return s.conn.Close() }

func (s *SQLiteStore) Load(ctx context.Context) ([]StoredGroup, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT group_id, member_key FROM match_groups ORDER BY group_id, member_key`)
	if err != nil {
		return nil, fmt.Errorf("load groups: %w", err)
	}
	defer rows.Close()

	var (
		out []StoredGroup
		cur *StoredGroup
		gid string
		key string
	)
	for rows.Next() {
		if err := rows.Scan(&gid, &key); err != nil {
			return nil, fmt.Errorf("scan group row: %w", err)
		}
		if cur == nil || cur.GroupID != gid {
			out = append(out, StoredGroup{GroupID: gid})
			cur = &out[len(out)-1]
		}
		cur.MemberKeys = append(cur.MemberKeys, key)
	}
	return out, rows.Err()
}

// Save замещает снимок целиком в одной транзакции.
func (s *SQLiteStore) Save(ctx context.Context, groups []StoredGroup) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM match_groups`); err != nil {
		return fmt.Errorf("clear groups: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO match_groups (group_id, member_key) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, g := range groups {
		for _, k := range g.MemberKeys {
			if _, err := stmt.ExecContext(ctx, g.GroupID, k); err != nil {
				return fmt.Errorf("insert group member: %w", err)
			}
		}
	}
	return tx.Commit()
}
