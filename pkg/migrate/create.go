package migrate

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"
	"time"
)

const versionLayout = "20060102150405"

var (
	nameSanitizeRe = regexp.MustCompile(`[^a-z0-9_]+`)
	namespaceRe    = regexp.MustCompile(`^[A-Za-z0-9_.:-]{1,64}$`)
)

// kvMigrationTemplate starts every new migration as a statement scoped to one
// kv_entries namespace, so a change to one deployment's state never leaks
// into another sharing the table.
var kvMigrationTemplate = template.Must(template.New("kv_migration").Parse(`-- +goose Up
-- {{.Name}} ({{.Namespace}})
-- +goose StatementBegin
UPDATE kv_entries
SET updated_at = CURRENT_TIMESTAMP
WHERE namespace = '{{.Namespace}}'
  AND entry_key IN ({{.Keys}});
-- +goose StatementEnd

-- +goose Down
-- +goose StatementBegin
UPDATE kv_entries
SET updated_at = CURRENT_TIMESTAMP
WHERE namespace = '{{.Namespace}}'
  AND entry_key IN ({{.Keys}});
-- +goose StatementEnd
`))

// stateKeys are the entry keys the marketplace writes into kv_entries.
var stateKeys = []string{"users", "products", "currentUser", "cart", "purchases"}

// CreateSQLMigration writes a kv_entries migration for namespace:
//
//	<dir>/<YYYYMMDDHHMMSS>_<name>.sql
//
// An empty dir means DefaultDir. The version always sorts after every existing
// migration in dir; a name already used is rejected.
func CreateSQLMigration(dir, name, namespace string) (string, error) {
	if dir == "" {
		dir = DefaultDir
	}
	if !namespaceRe.MatchString(namespace) {
		return "", fmt.Errorf("invalid namespace %q", namespace)
	}

	safe := sanitizeName(name)
	if safe == "" {
		return "", fmt.Errorf("name %q results in empty sanitized filename", name)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %q: %w", dir, err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("read dir %q: %w", dir, err)
	}
	latest := ""
	for _, e := range entries {
		m := sqlFileRe.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		if m[2] == safe {
			return "", fmt.Errorf("migration named %q already exists: %s", safe, e.Name())
		}
		if m[1] > latest {
			latest = m[1]
		}
	}

	at := time.Now().UTC()
	if latest != "" {
		last, err := time.Parse(versionLayout, latest)
		if err != nil {
			return "", fmt.Errorf("parse version %q: %w", latest, err)
		}
		if !at.Truncate(time.Second).After(last) {
			at = last.Add(time.Second)
		}
	}
	version := at.Format(versionLayout)

	quoted := make([]string, len(stateKeys))
	for i, k := range stateKeys {
		quoted[i] = "'" + k + "'"
	}
	var body bytes.Buffer
	if err := kvMigrationTemplate.Execute(&body, map[string]string{
		"Name":      safe,
		"Namespace": namespace,
		"Keys":      strings.Join(quoted, ", "),
	}); err != nil {
		return "", fmt.Errorf("render migration: %w", err)
	}

	fullpath := filepath.Join(dir, fmt.Sprintf("%s_%s.sql", version, safe))
	if err := os.WriteFile(fullpath, body.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write migration %q: %w", fullpath, err)
	}
	return fullpath, nil
}

func sanitizeName(name string) string {
	safe := strings.ToLower(strings.TrimSpace(name))
	safe = strings.ReplaceAll(safe, " ", "_")
	safe = nameSanitizeRe.ReplaceAllString(safe, "_")
	return strings.Trim(safe, "_")
}
