package migrations

import (
	"errors"
	"io/fs"
	"testing"
	"testing/fstest"
)

func TestSplitStatements(t *testing.T) {
	input := `-- header comment
CREATE TABLE a (x Int64) ENGINE = MergeTree() ORDER BY x;

-- second
CREATE TABLE b (y Int64)
ENGINE = MergeTree() ORDER BY y;
`
	stmts := splitStatements(input)
	if len(stmts) != 2 {
		t.Fatalf("expected 2 statements, got %d: %q", len(stmts), stmts)
	}
	if stmts[0] != "CREATE TABLE a (x Int64) ENGINE = MergeTree() ORDER BY x" {
		t.Errorf("unexpected first statement: %q", stmts[0])
	}
}

func TestValidateNoSemicolonInStrings(t *testing.T) {
	tests := []struct {
		name    string
		sql     string
		wantErr bool
	}{
		{"plain", "SELECT 1;", false},
		{"quoted without semicolon", "SELECT 'a';", false},
		{"escaped quote", "SELECT 'it''s';", false},
		{"semicolon in literal", "SELECT 'a;b';", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateNoSemicolonInStrings(tt.sql)
			if tt.wantErr && !errors.Is(err, errSemicolonInLiteral) {
				t.Errorf("expected errSemicolonInLiteral, got %v", err)
			}
			if (err != nil) != tt.wantErr {
				t.Errorf("validateNoSemicolonInStrings(%q) error = %v, wantErr %v", tt.sql, err, tt.wantErr)
			}
		})
	}
}

func TestDatabaseFromDSN(t *testing.T) {
	db, err := databaseFromDSN("clickhouse://default@localhost:9000/steam")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if db != "steam" {
		t.Errorf("expected steam, got %q", db)
	}
	if _, err := databaseFromDSN("clickhouse://localhost:9000"); err == nil {
		t.Error("expected error for dsn without database")
	}
}

func TestEmbeddedMigrationsValid(t *testing.T) {
	for _, dir := range []struct {
		fsys fs.FS
		name string
	}{{PostgresFS, "postgres"}, {ClickhouseFS, "clickhouse"}} {
		entries, err := fs.ReadDir(dir.fsys, dir.name)
		if err != nil {
			t.Fatalf("read %s: %v", dir.name, err)
		}
		if len(entries) == 0 {
			t.Fatalf("no %s migrations embedded", dir.name)
		}
		for _, e := range entries {
			data, err := fs.ReadFile(dir.fsys, dir.name+"/"+e.Name())
			if err != nil {
				t.Fatalf("read %s: %v", e.Name(), err)
			}
			if err := validateNoSemicolonInStrings(string(data)); err != nil {
				t.Errorf("%s/%s: %v", dir.name, e.Name(), err)
			}
		}
	}
}

func TestLoad_OrderAndSkip(t *testing.T) {
	fsys := fstest.MapFS{
		"pg/002_b.sql": {Data: []byte("CREATE TABLE b (x INT);")},
		"pg/001_a.sql": {Data: []byte("CREATE TABLE a (x INT);")},
		"pg/003_c.sql": {Data: []byte("  \n")},
		"pg/README.md": {Data: []byte("not sql")},
	}
	files, err := load(fsys, "pg")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 migrations, got %d", len(files))
	}
	if files[0].name != "001_a.sql" || files[1].name != "002_b.sql" {
		t.Errorf("unexpected order: %s, %s", files[0].name, files[1].name)
	}
}
