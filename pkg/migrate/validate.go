package migrate

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"regexp"
	"strings"
)

var (
	sqlFileRe       = regexp.MustCompile(`^(\d{14})_([a-z0-9_]+)\.sql$`)
	createKVTableRe = regexp.MustCompile(`(?i)CREATE\s+TABLE\s+(IF\s+NOT\s+EXISTS\s+)?kv_entries\b`)
)

// ValidateDir validates the migrations in dir on disk.
func ValidateDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("dir is required")
	}
	return ValidateFS(os.DirFS(dir), ".")
}

// ValidateEmbedded validates the migrations compiled into the binary.
func ValidateEmbedded() error {
	return ValidateFS(Embedded, embeddedDir)
}

// ValidateFS checks filenames, versions and goose annotations of every .sql
// file under dir, and requires the earliest migration to create kv_entries.
func ValidateFS(fsys fs.FS, dir string) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("read dir %q: %w", dir, err)
	}

	seen := map[string]string{} // version -> filename
	first := ""
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		name := e.Name()

		m := sqlFileRe.FindStringSubmatch(name)
		if m == nil {
			return fmt.Errorf("invalid migration filename %q (expected YYYYMMDDHHMMSS_name.sql)", name)
		}
		version := m[1]
		if prev, ok := seen[version]; ok {
			return fmt.Errorf("duplicate migration version %s in %q and %q", version, prev, name)
		}
		seen[version] = name

		b, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return fmt.Errorf("read file %q: %w", name, err)
		}
		txt := string(b)
		if err := checkAnnotations(name, txt); err != nil {
			return err
		}

		// ReadDir sorts by name, and names start with the version.
		if first == "" {
			first = name
			if !createKVTableRe.MatchString(txt) {
				return fmt.Errorf("first migration %q must create kv_entries", name)
			}
		}
	}

	if first == "" {
		return fmt.Errorf("no migrations in %q: kv_entries is never created", dir)
	}
	return nil
}

func checkAnnotations(name, txt string) error {
	up := strings.Index(txt, "-- +goose Up")
	down := strings.Index(txt, "-- +goose Down")
	switch {
	case up < 0:
		return fmt.Errorf("migration %q missing \"-- +goose Up\"", name)
	case down < 0:
		return fmt.Errorf("migration %q missing \"-- +goose Down\"", name)
	case down < up:
		return fmt.Errorf("migration %q has \"-- +goose Down\" before \"-- +goose Up\"", name)
	}

	open := false
	for i, line := range strings.Split(txt, "\n") {
		switch strings.TrimSpace(line) {
		case "-- +goose StatementBegin":
			if open {
				return fmt.Errorf("migration %q line %d: nested StatementBegin", name, i+1)
			}
			open = true
		case "-- +goose StatementEnd":
			if !open {
				return fmt.Errorf("migration %q line %d: StatementEnd without StatementBegin", name, i+1)
			}
			open = false
		}
	}
	if open {
		return fmt.Errorf("migration %q has an unterminated StatementBegin", name)
	}
	return nil
}
