package migrations

import (
	"strings"
	"testing"
)

func TestEmbeddedPostgresMigrations(t *testing.T) {
	files, err := listSQLFiles(PostgresFS, "postgres")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) == 0 {
		t.Fatal("no embedded postgres migrations")
	}
	for i := 1; i < len(files); i++ {
		if files[i-1] >= files[i] {
			t.Errorf("migrations not in lexical order: %s before %s", files[i-1], files[i])
		}
	}
	if files[0] != "001_market_data.sql" {
		t.Errorf("expected market_data first, got %s", files[0])
	}
}

func TestEmbeddedClickhouseMigrations(t *testing.T) {
	files, err := listSQLFiles(ClickhouseFS, "clickhouse")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) == 0 {
		t.Fatal("no embedded clickhouse migrations")
	}
}

func TestIsCommentOnly(t *testing.T) {
	cases := []struct {
		stmt string
		want bool
	}{
		{"-- just a comment", true},
		{"-- line one\n-- line two", true},
		{"-- header\nCREATE TABLE t (x Int64)", false},
		{"SELECT 1", false},
	}
	for _, tc := range cases {
		if got := isCommentOnly(tc.stmt); got != tc.want {
			t.Errorf("isCommentOnly(%q) = %v, want %v", strings.ReplaceAll(tc.stmt, "\n", "\\n"), got, tc.want)
		}
	}
}
