package migration

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSplitStatements(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "single statement with semicolon",
			text: "CREATE TABLE users (id INTEGER PRIMARY KEY);",
			want: []string{"CREATE TABLE users (id INTEGER PRIMARY KEY)"},
		},
		{
			name: "single statement without semicolon",
			text: "CREATE TABLE users (id INTEGER PRIMARY KEY)",
			want: []string{"CREATE TABLE users (id INTEGER PRIMARY KEY)"},
		},
		{
			name: "multiple statements",
			text: "CREATE TABLE a (id INTEGER);\nCREATE TABLE b (id INTEGER);\nINSERT INTO a (id) VALUES (1);",
			want: []string{
				"CREATE TABLE a (id INTEGER)",
				"CREATE TABLE b (id INTEGER)",
				"INSERT INTO a (id) VALUES (1)",
			},
		},
		{
			name: "trailing statement without semicolon",
			text: "SELECT 1; SELECT 2",
			want: []string{"SELECT 1", "SELECT 2"},
		},
		{
			name: "semicolon inside single quoted string",
			text: "SELECT 'a;b'; SELECT 1;",
			want: []string{"SELECT 'a;b'", "SELECT 1"},
		},
		{
			name: "semicolon inside double quoted string",
			text: `INSERT INTO t (s) VALUES ("x;y"); SELECT 1;`,
			want: []string{`INSERT INTO t (s) VALUES ("x;y")`, "SELECT 1"},
		},
		{
			name: "semicolon inside backtick quoted identifier",
			text: "SELECT `weird;name` FROM t; SELECT 1;",
			want: []string{"SELECT `weird;name` FROM t", "SELECT 1"},
		},
		{
			name: "escaped single quote does not close the string",
			text: `INSERT INTO t (s) VALUES ('it\'s;fine'); SELECT 1;`,
			want: []string{`INSERT INTO t (s) VALUES ('it\'s;fine')`, "SELECT 1"},
		},
		{
			name: "line comment stripped",
			text: "-- comment\nSELECT 1;",
			want: []string{"SELECT 1"},
		},
		{
			name: "line comment between statements",
			text: "SELECT 1;\n-- explains the next statement\nSELECT 2;",
			want: []string{"SELECT 1", "SELECT 2"},
		},
		{
			name: "line comment at end of input without newline",
			text: "SELECT 1 -- trailing note",
			want: []string{"SELECT 1"},
		},
		{
			name: "comment marker inside quoted string is literal",
			text: "SELECT '-- not a comment'; SELECT '/* neither */';",
			want: []string{"SELECT '-- not a comment'", "SELECT '/* neither */'"},
		},
		{
			name: "block comment stripped",
			text: "SELECT /* inline */ 1;",
			want: []string{"SELECT  1"},
		},
		{
			name: "block comment spanning statements",
			text: "SELECT 1; /* x; y */ SELECT 2;",
			want: []string{"SELECT 1", "SELECT 2"},
		},
		{
			name: "block comment spanning lines",
			text: "SELECT 1;\n/* a long\n   explanation; with semicolons */\nSELECT 2;",
			want: []string{"SELECT 1", "SELECT 2"},
		},
		{
			name: "unterminated block comment swallows the rest",
			text: "SELECT 1; /* open ended SELECT 2;",
			want: []string{"SELECT 1"},
		},
		{
			name: "empty input",
			text: "",
			want: nil,
		},
		{
			name: "whitespace only",
			text: "  \n\t  \n",
			want: nil,
		},
		{
			name: "comments only",
			text: "-- first\n-- second\n/* third */",
			want: nil,
		},
		{
			name: "empty statements between semicolons",
			text: ";;\nSELECT 1;\n;;",
			want: []string{"SELECT 1"},
		},
		{
			name: "newline of a comment line keeps tokens apart",
			text: "CREATE TABLE t (\n  a INTEGER, -- first column\n  b INTEGER\n);",
			want: []string{"CREATE TABLE t (\n  a INTEGER, \n  b INTEGER\n)"},
		},
		{
			name: "multi line statement preserved verbatim",
			text: "CREATE TABLE sessions (\n  id TEXT PRIMARY KEY,\n  expires_at TIMESTAMP NOT NULL\n);\nCREATE INDEX idx_sessions_expiry ON sessions(expires_at);",
			want: []string{
				"CREATE TABLE sessions (\n  id TEXT PRIMARY KEY,\n  expires_at TIMESTAMP NOT NULL\n)",
				"CREATE INDEX idx_sessions_expiry ON sessions(expires_at)",
			},
		},
		{
			name: "minus is not a comment",
			text: "UPDATE t SET n = n - 1; SELECT 1;",
			want: []string{"UPDATE t SET n = n - 1", "SELECT 1"},
		},
		{
			name: "slash is not a comment",
			text: "UPDATE t SET n = n / 2;",
			want: []string{"UPDATE t SET n = n / 2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitStatements(tt.text)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("SplitStatements() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// Splitting, joining with semicolons, and splitting again must yield the
// same statements for inputs without lexical edge cases.
func TestSplitStatements_RejoinIdempotence(t *testing.T) {
	inputs := []string{
		"SELECT 1; SELECT 2; SELECT 3;",
		"CREATE TABLE a (id INTEGER);\nINSERT INTO a (id) VALUES (1);\nUPDATE a SET id = 2",
		"SELECT 'a;b'; SELECT \"c;d\"; SELECT `e;f`",
	}

	for _, text := range inputs {
		first := SplitStatements(text)
		second := SplitStatements(strings.Join(first, ";"))
		if diff := cmp.Diff(first, second); diff != "" {
			t.Errorf("re-split of joined statements diverged for %q (-first +second):\n%s", text, diff)
		}
	}
}
