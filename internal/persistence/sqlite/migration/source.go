package migration

import (
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

//go:embed migrations/*.sql
var embedded embed.FS

// fileNamePattern matches {version}_{description}.sql.
var fileNamePattern = regexp.MustCompile(`^(\d+)_([a-zA-Z0-9_-]+)\.sql$`)

// Source lists the migrations available to a runner.
type Source interface {
	Migrations() ([]Migration, error)
}

// FSSource reads migrations from a directory of an fs.FS.
type FSSource struct {
	FS  fs.FS
	Dir string
}

// Embedded returns the migrations compiled into the binary.
func Embedded() FSSource {
	return FSSource{FS: embedded, Dir: "migrations"}
}

// Migrations implements Source. Files are sorted by numeric version; a
// malformed name or a repeated version fails the scan.
func (s FSSource) Migrations() ([]Migration, error) {
	entries, err := fs.ReadDir(s.FS, s.Dir)
	if err != nil {
		return nil, NewMigrationError("", s.Dir, "read directory", err)
	}

	var migrations []Migration
	seen := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		m, err := s.parse(entry.Name())
		if err != nil {
			return nil, err
		}
		if other, ok := seen[m.Version]; ok {
			return nil, NewMigrationError(m.Version, entry.Name(), "check duplicates",
				fmt.Errorf("%w: version %s found in both %s and %s", ErrDuplicateVersion, m.Version, other, entry.Name()))
		}
		seen[m.Version] = entry.Name()
		migrations = append(migrations, m)
	}

	sort.Slice(migrations, func(i, j int) bool {
		vi, _ := strconv.Atoi(migrations[i].Version)
		vj, _ := strconv.Atoi(migrations[j].Version)
		return vi < vj
	})
	return migrations, nil
}

func (s FSSource) parse(name string) (Migration, error) {
	matches := fileNamePattern.FindStringSubmatch(name)
	if matches == nil {
		return Migration{}, NewMigrationError("", name, "validate filename",
			fmt.Errorf("%w: %q does not match {version}_{description}.sql", ErrInvalidMigrationFile, name))
	}

	filePath := path.Join(s.Dir, name)
	raw, err := fs.ReadFile(s.FS, filePath)
	if err != nil {
		return Migration{}, NewMigrationError(matches[1], filePath, "read file", err)
	}
	content := string(raw)
	if len(splitStatements(content)) == 0 {
		return Migration{}, NewMigrationError(matches[1], filePath, "validate content",
			fmt.Errorf("%w: no SQL statements", ErrInvalidMigrationFile))
	}

	description := descriptionFromContent(content)
	if description == "" {
		description = strings.ReplaceAll(matches[2], "_", " ")
	}

	sum := sha256.Sum256(raw)
	return Migration{
		Version:     matches[1],
		Description: description,
		SQL:         content,
		FilePath:    filePath,
		Checksum:    hex.EncodeToString(sum[:]),
	}, nil
}

func descriptionFromContent(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if rest, ok := strings.CutPrefix(line, "-- Description:"); ok {
			return strings.TrimSpace(rest)
		}
	}
	return ""
}

// splitStatements splits SQL on semicolons and drops comment-only lines.
func splitStatements(sql string) []string {
	var out []string
	for _, stmt := range strings.Split(sql, ";") {
		var lines []string
		for _, line := range strings.Split(stmt, "\n") {
			line = strings.TrimSpace(line)
			if line != "" && !strings.HasPrefix(line, "--") {
				lines = append(lines, line)
			}
		}
		if len(lines) > 0 {
			out = append(out, strings.Join(lines, "\n"))
		}
	}
	return out
}
