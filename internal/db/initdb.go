// internal/db/initdb.go
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/lib/pq"
)

// CreateDatabaseIfNotExists connects to the server's "postgres" database and
// creates the database named in connString. An existing database is not an error.
func CreateDatabaseIfNotExists(ctx context.Context, connString string) error {
	dbName, err := extractDBName(connString)
	if err != nil {
		return fmt.Errorf("failed to parse connection string: %w", err)
	}

	rootConnStr, err := replaceDBName(connString, "postgres")
	if err != nil {
		return fmt.Errorf("failed to create root connection string: %w", err)
	}

	conn, err := sql.Open("postgres", rootConnStr)
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	defer conn.Close()

	return createDatabase(ctx, conn, dbName)
}

func createDatabase(ctx context.Context, conn *sql.DB, dbName string) error {
	_, err := conn.ExecContext(ctx, "CREATE DATABASE "+pq.QuoteIdentifier(dbName))
	if err == nil {
		slog.Info("created database", "name", dbName)
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == pgerrcode.DuplicateDatabase {
		return nil
	}
	return fmt.Errorf("failed to create database %s: %w", dbName, err)
}

func extractDBName(connString string) (string, error) {
	if isURL(connString) {
		u, err := url.Parse(connString)
		if err != nil {
			return "", fmt.Errorf("failed to parse connection URL: %w", err)
		}
		if name := strings.TrimPrefix(u.Path, "/"); name != "" {
			return name, nil
		}
		return "", errors.New("connection URL has no database name")
	}

	for _, pair := range strings.Fields(connString) {
		if name, ok := strings.CutPrefix(pair, "dbname="); ok {
			return name, nil
		}
	}
	return "", errors.New("could not find database name in connection string")
}

func replaceDBName(connString, newName string) (string, error) {
	if isURL(connString) {
		u, err := url.Parse(connString)
		if err != nil {
			return "", err
		}
		u.Path = "/" + newName
		return u.String(), nil
	}

	pairs := strings.Fields(connString)
	for i, pair := range pairs {
		if strings.HasPrefix(pair, "dbname=") {
			pairs[i] = "dbname=" + newName
		}
	}
	return strings.Join(pairs, " "), nil
}

func isURL(connString string) bool {
	return strings.HasPrefix(connString, "postgres://") || strings.HasPrefix(connString, "postgresql://")
}
