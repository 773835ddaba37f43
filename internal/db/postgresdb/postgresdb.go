// Package postgresdb is the PostgreSQL storage backend. It persists
// users and URL records through database/sql on top of the pgx driver
// and keeps the schema current with goose migrations.
package postgresdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pressly/goose/v3"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/patric-chuzhbe/tinyapp/internal/models"
)

// PostgresDB is a PostgreSQL-backed implementation of the storage
// interface consumed by the auth and service layers.
type PostgresDB struct {
	database          *sql.DB
	connectionTimeout time.Duration
}

// New connects to the database, runs the migrations from
// migrationsDir, and returns a ready PostgresDB.
func New(
	ctx context.Context,
	databaseDSN string,
	connectionTimeout time.Duration,
	migrationsDir string,
) (*PostgresDB, error) {
	database, err := sql.Open("pgx", databaseDSN)
	if err != nil {
		return nil, err
	}

	result := &PostgresDB{
		database:          database,
		connectionTimeout: connectionTimeout,
	}

	if err := goose.SetDialect("postgres"); err != nil {
		return nil, fmt.Errorf("error while `goose.SetDialect()` calling: %w", err)
	}

	if err := goose.Up(result.database, migrationsDir); err != nil {
		return nil, fmt.Errorf("error while `goose.Up()` calling: %w", err)
	}

	return result, nil
}

// CreateUser inserts a new user record.
func (db *PostgresDB) CreateUser(ctx context.Context, usr *models.User) error {
	_, err := db.database.ExecContext(
		ctx,
		`INSERT INTO users (id, email, password_hash) VALUES ($1, $2, $3)`,
		usr.ID,
		usr.Email,
		usr.PasswordHash,
	)

	return err
}

// GetUserByID fetches a user by id. The second result reports
// presence.
func (db *PostgresDB) GetUserByID(ctx context.Context, userID string) (*models.User, bool, error) {
	row := db.database.QueryRowContext(
		ctx,
		`SELECT id, email, password_hash FROM users WHERE id = $1`,
		userID,
	)

	return scanUser(row)
}

// GetUserByEmail fetches a user by email. Backed by the unique index
// on users.email.
func (db *PostgresDB) GetUserByEmail(ctx context.Context, email string) (*models.User, bool, error) {
	row := db.database.QueryRowContext(
		ctx,
		`SELECT id, email, password_hash FROM users WHERE email = $1`,
		email,
	)

	return scanUser(row)
}

// SaveURL inserts a URL record.
func (db *PostgresDB) SaveURL(ctx context.Context, url *models.URL) error {
	_, err := db.database.ExecContext(
		ctx,
		`INSERT INTO urls (short_code, long_url, owner_id) VALUES ($1, $2, $3)`,
		url.ShortCode,
		url.LongURL,
		url.OwnerID,
	)

	return err
}

// FindURLByCode fetches a URL record by shortCode.
func (db *PostgresDB) FindURLByCode(ctx context.Context, shortCode string) (*models.URL, bool, error) {
	row := db.database.QueryRowContext(
		ctx,
		`SELECT short_code, long_url, owner_id FROM urls WHERE short_code = $1`,
		shortCode,
	)

	var url models.URL
	if err := row.Scan(&url.ShortCode, &url.LongURL, &url.OwnerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return &url, true, nil
}

// FindURLsByOwner returns the sub-mapping of records owned by
// ownerID.
func (db *PostgresDB) FindURLsByOwner(ctx context.Context, ownerID string) (models.URLs, error) {
	rows, err := db.database.QueryContext(
		ctx,
		`SELECT short_code, long_url, owner_id FROM urls WHERE owner_id = $1`,
		ownerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := models.URLs{}
	for rows.Next() {
		var url models.URL
		if err := rows.Scan(&url.ShortCode, &url.LongURL, &url.OwnerID); err != nil {
			return nil, err
		}
		result[url.ShortCode] = url
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// UpdateLongURL replaces the redirect target of an existing record.
func (db *PostgresDB) UpdateLongURL(ctx context.Context, shortCode, longURL string) error {
	result, err := db.database.ExecContext(
		ctx,
		`UPDATE urls SET long_url = $1 WHERE short_code = $2`,
		longURL,
		shortCode,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrNotFound
	}

	return nil
}

// DeleteURL removes a record. Deleting an absent shortCode is a
// no-op.
func (db *PostgresDB) DeleteURL(ctx context.Context, shortCode string) error {
	_, err := db.database.ExecContext(
		ctx,
		`DELETE FROM urls WHERE short_code = $1`,
		shortCode,
	)

	return err
}

// IsKeyTaken reports whether key is in use as either a user id or a
// shortCode.
func (db *PostgresDB) IsKeyTaken(ctx context.Context, key string) (bool, error) {
	row := db.database.QueryRowContext(
		ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)
			OR EXISTS (SELECT 1 FROM urls WHERE short_code = $1)`,
		key,
	)

	var taken bool
	if err := row.Scan(&taken); err != nil {
		return false, err
	}

	return taken, nil
}

// Ping checks the database connection.
func (db *PostgresDB) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, db.connectionTimeout)
	defer cancel()

	return db.database.PingContext(ctx)
}

// Close closes the underlying connection pool.
func (db *PostgresDB) Close() error {
	return db.database.Close()
}

func scanUser(row *sql.Row) (*models.User, bool, error) {
	var usr models.User
	if err := row.Scan(&usr.ID, &usr.Email, &usr.PasswordHash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return &usr, true, nil
}
