package gamedb

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/John-Robertt/mcsync/internal/domain"
)

func TestLookup_ExactMatch(t *testing.T) {
	db := openFixture(t, [][3]string{
		{"SLUS-00001", "final fantasy vii", "En"},
		{"SLUS-00002", "metal gear solid", "En"},
	})

	rec, ok, err := db.Lookup(context.Background(), "SLUS-00001")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, domain.GameRecord{Code: "SLUS-00001", Title: "final fantasy vii", Language: "En"}, rec)

	// 精确匹配：前缀/大小写不同都不命中。
	_, ok, err = db.Lookup(context.Background(), "SLUS-0000")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = db.Lookup(context.Background(), "slus-00001")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLookup_NoRecordIsNotError(t *testing.T) {
	db := openFixture(t, nil)

	rec, ok, err := db.Lookup(context.Background(), "SCES-99999")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, domain.GameRecord{}, rec)
}

func TestLookup_MultipleRowsReturnsFirst(t *testing.T) {
	db := openFixture(t, [][3]string{
		{"SLES-00001", "first title", "En,Fr"},
		{"SLES-00001", "second title", "De"},
	})

	rec, ok, err := db.Lookup(context.Background(), "SLES-00001")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "first title", rec.Title)
}

func TestLookup_NullLanguage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "games.db")
	w := mustWritable(t, path)
	_, err := w.Exec(`INSERT INTO ps1 (code, title, language) VALUES ('SLPS-00001', 'x', NULL)`)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	db, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rec, ok, err := db.Lookup(context.Background(), "SLPS-00001")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "", rec.Language)
}

func TestLookup_MissingTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.db")
	w, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = w.Exec(`CREATE TABLE other (x TEXT)`)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	db, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, _, err = db.Lookup(context.Background(), "SLUS-00001")
	assert.Error(t, err)
}

func TestOpen_ReadOnly(t *testing.T) {
	db := openFixture(t, [][3]string{{"SLUS-00001", "x", "En"}})

	_, err := db.conn.Exec(`INSERT INTO ps1 (code, title, language) VALUES ('A-1', 'a', 'b')`)
	assert.Error(t, err, "数据集必须以只读方式打开")
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.db"))
	assert.Error(t, err)
}

func TestParseDSN(t *testing.T) {
	cases := []struct {
		dsn, driver, source string
	}{
		{"games.db", "sqlite3", "file:games.db?mode=ro"},
		{"/data/my games.db", "sqlite3", "file:/data/my%20games.db?mode=ro"},
		{"file:games.db", "sqlite3", "file:games.db?mode=ro"},
		{"file:games.db?cache=shared", "sqlite3", "file:games.db?cache=shared&mode=ro"},
		{"file:games.db?mode=rw", "sqlite3", "file:games.db?mode=rw"},
		{"mysql://u:p@tcp(127.0.0.1:3306)/games", "mysql", "u:p@tcp(127.0.0.1:3306)/games"},
		{"postgres://u@localhost/games", "pgx", "postgres://u@localhost/games"},
		{"postgresql://u@localhost/games", "pgx", "postgresql://u@localhost/games"},
	}
	for _, c := range cases {
		driver, source, err := parseDSN(c.dsn)
		require.NoError(t, err, c.dsn)
		assert.Equal(t, c.driver, driver, c.dsn)
		assert.Equal(t, c.source, source, c.dsn)
	}

	_, _, err := parseDSN("  ")
	assert.Error(t, err)
}

func TestNew_PlaceholderByDriver(t *testing.T) {
	assert.Contains(t, New(nil, "pgx").query, "code = $1")
	assert.Contains(t, New(nil, "mysql").query, "code = ?")
	assert.Contains(t, New(nil, "sqlite3").query, "FROM ps1 WHERE")
}

func openFixture(t *testing.T, rows [][3]string) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "games.db")
	w := mustWritable(t, path)
	for _, r := range rows {
		_, err := w.Exec(`INSERT INTO ps1 (code, title, language) VALUES (?, ?, ?)`, r[0], r[1], r[2])
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	db, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func mustWritable(t *testing.T, path string) *sql.DB {
	t.Helper()
	w, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = w.Exec(`CREATE TABLE ps1 (code TEXT, title TEXT, language TEXT)`)
	require.NoError(t, err)
	return w
}
