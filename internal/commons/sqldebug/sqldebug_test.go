package sqldebug

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/yungbote/neurobridge-commons/internal/data/testutil"
)

type someTable struct {
	ID   uint
	Name string
}

func TestFormat(t *testing.T) {
	in := `SELECT "orders".* FROM "orders"  LEFT OUTER JOIN customers ON customers.id = orders.customer_id WHERE status = 'wip' AND hidden = false GROUP BY   orders.id`
	want := "SELECT orders.*\n" +
		"FROM orders\n" +
		"LEFT OUTER JOIN customers\n" +
		"ON customers.id = orders.customer_id\n" +
		"WHERE status = 'wip'\n" +
		"AND hidden = false\n" +
		"GROUP BY orders.id"
	if got := Format(in); got != want {
		t.Fatalf("Format:\nwant=%q\ngot =%q", want, got)
	}
}

func TestToSQL(t *testing.T) {
	db := testutil.DB(t, &someTable{})
	tests := []struct {
		name string
		got  string
		want string
	}{
		{name: "model", got: ToSQL(db.Model(&someTable{})), want: "SELECT * FROM `some_tables`"},
		{name: "table", got: ToSQL(db.Table("some_tables")), want: "SELECT * FROM `some_tables`"},
		{name: "where", got: ToSQL(db.Model(&someTable{}).Where("name IS NOT NULL")), want: "SELECT * FROM `some_tables` WHERE name IS NOT NULL"},
		{name: "nil", got: ToSQL(nil), want: ""},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Fatalf("%s: want=%q got=%q", tt.name, tt.want, tt.got)
		}
	}
}

func TestRecorder(t *testing.T) {
	r := Recorder{Root: t.TempDir()}
	if got, want := r.File("old", "orders", "index", "psql"), filepath.Join(r.Root, "ab", "old", "orders", "index.psql"); got != want {
		t.Fatalf("File: want=%q got=%q", want, got)
	}

	differs, err := r.Differs("old", "new", "orders", "index", "psql")
	if err != nil || differs {
		t.Fatalf("missing files never differ: differs=%v err=%v", differs, err)
	}

	path, err := r.RecordSQL("old", "orders", "index", `SELECT * FROM "orders" WHERE a = 1`)
	if err != nil {
		t.Fatalf("RecordSQL: %v", err)
	}
	raw, _ := os.ReadFile(path)
	if want := "SELECT *\nFROM orders\nWHERE a = 1"; string(raw) != want {
		t.Fatalf("recorded: want=%q got=%q", want, raw)
	}

	db := testutil.DB(t, &someTable{})
	if _, err := r.RecordScope("new", "orders", "index", db.Model(&someTable{})); err != nil {
		t.Fatalf("RecordScope: %v", err)
	}
	differs, err = r.Differs("old", "new", "orders", "index", "psql")
	if err != nil || !differs {
		t.Fatalf("expected difference: differs=%v err=%v", differs, err)
	}
	if _, err := r.RecordSQL("new", "orders", "index", `SELECT * FROM "orders" WHERE a = 1`); err != nil {
		t.Fatalf("RecordSQL: %v", err)
	}
	if differs, _ = r.Differs("old", "new", "orders", "index", "psql"); differs {
		t.Fatalf("identical recordings should not differ")
	}
	if _, err := r.RecordScope("new", "orders", "x", nil); err == nil {
		t.Fatalf("nil scope should fail")
	}
}
