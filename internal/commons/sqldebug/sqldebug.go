// Package sqldebug renders and records SQL so the output of a rewritten query
// can be compared with the query it replaces.
package sqldebug

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"strings"

	"gorm.io/gorm"
)

var (
	lineBreaks = []string{" FROM", " WHERE", " AND", " OR", " ON", " GROUP BY", " LEFT", " INNER"}
	newlines   = regexp.MustCompile(`\n+|\r+`)
	spaces     = regexp.MustCompile(` {2,}`)
)

// Format puts each major clause on its own line and drops identifier quotes.
func Format(sql string) string {
	for _, kw := range lineBreaks {
		sql = strings.ReplaceAll(sql, kw, "\n"+kw[1:])
	}
	sql = strings.NewReplacer(`"`, "", "`", "").Replace(sql)
	var lines []string
	for _, line := range newlines.Split(sql, -1) {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return Squeeze(strings.Join(lines, "\n"))
}

// Squeeze collapses runs of spaces.
func Squeeze(s string) string {
	return spaces.ReplaceAllString(s, " ")
}

// ToSQL renders a scope's SELECT without running it.
func ToSQL(scope *gorm.DB) string {
	if scope == nil {
		return ""
	}
	return scope.ToSQL(func(tx *gorm.DB) *gorm.DB {
		return tx.Find(destFor(tx))
	})
}

// destFor picks a destination that keeps gorm's default "SELECT *": a slice of
// the model type when one is set, plain maps otherwise.
func destFor(tx *gorm.DB) any {
	if m := tx.Statement.Model; m != nil {
		t := reflect.TypeOf(m)
		for t.Kind() == reflect.Pointer || t.Kind() == reflect.Slice {
			t = t.Elem()
		}
		if t.Kind() == reflect.Struct {
			return reflect.New(reflect.SliceOf(t)).Interface()
		}
	}
	return &[]map[string]any{}
}

// Recorder writes SQL under Root/ab/<ab>/<group>/<name>.<ext>.
type Recorder struct {
	Root string
}

func (r Recorder) File(ab, group, name, ext string) string {
	return filepath.Join(r.Root, "ab", ab, group, name+"."+ext)
}

// RecordSQL formats sql and writes it as a .psql file, returning the path.
func (r Recorder) RecordSQL(ab, group, name, sql string) (string, error) {
	return r.write(r.File(ab, group, name, "psql"), Format(sql))
}

// RecordScope renders scope and records it like RecordSQL.
func (r Recorder) RecordScope(ab, group, name string, scope *gorm.DB) (string, error) {
	if scope == nil {
		return "", fmt.Errorf("record %s/%s: nil scope", group, name)
	}
	return r.RecordSQL(ab, group, name, ToSQL(scope))
}

func (r Recorder) write(path, content string) (string, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("record %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("record %s: %w", path, err)
	}
	return path, nil
}

// Differs reports whether the a and b recordings both exist and differ.
func (r Recorder) Differs(a, b, group, name, ext string) (bool, error) {
	left, err := os.ReadFile(r.File(a, group, name, ext))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	right, err := os.ReadFile(r.File(b, group, name, ext))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return !bytes.Equal(left, right), nil
}
