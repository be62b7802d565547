package main

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"github.com/vncsmyrnk/evote/internal/config"
)

var basePath = filepath.Join(".", "internal", "adapters", "repository", "postgres", "migrations")

// Applies a single migration when a name is given, otherwise every *.up.sql
// file in lexical order.
func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatal(err)
	}

	db, err := sql.Open("postgres", cfg.Postgres.ConnString())
	if err != nil {
		logrus.Fatal(err)
	}
	defer db.Close()

	var files []string
	if len(os.Args) > 1 {
		name, err := migrationFilePath(basePath, os.Args[1])
		if err != nil {
			logrus.Fatal(err)
		}
		files = []string{name}
	} else {
		files, err = upMigrations(basePath)
		if err != nil {
			logrus.Fatal(err)
		}
	}

	for _, name := range files {
		content, err := os.ReadFile(filepath.Join(basePath, name))
		if err != nil {
			logrus.Fatal(err)
		}
		if _, err := db.Exec(string(content)); err != nil {
			logrus.WithField("file", name).Fatalf("Failed to execute SQL file: %v", err)
		}
		logrus.WithField("file", name).Info("Migration file executed successfully.")
	}
}

func upMigrations(basePath string) ([]string, error) {
	entries, err := os.ReadDir(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".up.sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

func migrationFilePath(basePath string, migrationName string) (string, error) {
	regex, err := regexp.Compile(fmt.Sprintf(`^.*%s\.sql$`, regexp.QuoteMeta(migrationName)))
	if err != nil {
		return "", fmt.Errorf("invalid pattern: %w", err)
	}

	files, _ := os.ReadDir(basePath)
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		if regex.MatchString(f.Name()) {
			return f.Name(), nil
		}
	}

	return "", fmt.Errorf("migration file not found")
}
