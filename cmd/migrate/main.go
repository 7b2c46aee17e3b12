// Applies pending SQL files from db/ in lexical order, recording each one in
// the migrations table so reruns are no-ops. Each file and its ledger insert
// commit together.
// Usage: go run ./cmd/migrate (from the repo root)
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil {
		return fmt.Errorf("loading .env: %w", err)
	}

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, os.Getenv("DB_URL"))
	if err != nil {
		return fmt.Errorf("connecting: %w", err)
	}
	defer conn.Close(ctx)

	files, err := filepath.Glob(filepath.Join("db", "*.sql"))
	if err != nil || len(files) == 0 {
		return fmt.Errorf("no .sql files under db/")
	}
	sort.Strings(files)

	applied, err := appliedMigrations(ctx, conn)
	if err != nil {
		return err
	}

	ran := 0
	for _, f := range files {
		name := filepath.Base(f)
		if applied[name] {
			fmt.Printf("up to date: %s\n", name)
			continue
		}
		if err := applyOne(ctx, conn, f); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		fmt.Printf("applied:    %s\n", name)
		ran++
	}

	if ran == 0 {
		fmt.Println("Nothing to apply.")
	} else {
		fmt.Printf("%d file(s) applied.\n", ran)
	}
	return nil
}

// appliedMigrations reads the ledger. A missing table just means nothing has
// been applied yet — the first migration creates it.
func appliedMigrations(ctx context.Context, conn *pgx.Conn) (map[string]bool, error) {
	applied := make(map[string]bool)
	rows, err := conn.Query(ctx, "SELECT migration FROM migrations")
	if err != nil {
		return applied, nil
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		applied[name] = true
	}
	return applied, rows.Err()
}

func applyOne(ctx context.Context, conn *pgx.Conn, path string) error {
	sql, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	tx, err := conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, string(sql)); err != nil {
		return err
	}

	name := filepath.Base(path)
	if _, err := tx.Exec(ctx,
		"INSERT INTO migrations (migration, description) VALUES ($1, $2)",
		name, describe(name)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// describe turns "2026-08-01-001-initial-schema.sql" into "initial schema":
// drop the extension, then everything up to and including the three-digit
// sequence number.
func describe(filename string) string {
	name := strings.TrimSuffix(filename, ".sql")
	parts := strings.SplitN(name, "-", 5)
	if len(parts) == 5 {
		name = parts[4]
	}
	return strings.ReplaceAll(name, "-", " ")
}
