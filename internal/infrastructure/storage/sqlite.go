package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/platewise/pos-sync-backend/internal/pos"
)

// Storage provides SQLite database access for connections, products and
// sales rollups. It implements the Repository interface.
type Storage struct {
	db *sql.DB
}

// Compile-time check that Storage implements Repository.
var _ Repository = (*Storage)(nil)

// NewStorage creates a new storage instance with a SQLite database.
func NewStorage(dbPath string) (*Storage, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Storage{db: db}

	if err := s.runMigrations(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the database connection.
func (s *Storage) Close() error {
	return s.db.Close()
}

// UpsertConnection inserts or replaces the connection keyed by (user,
// provider).
func (s *Storage) UpsertConnection(ctx context.Context, conn *Connection) (int64, error) {
	query := `
	INSERT INTO pos_connections
	(user_id, provider, access_token, refresh_token, token_expires_at,
	 status, location_id, location_name, merchant_id, config_json, last_tested_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(user_id, provider) DO UPDATE SET
		access_token = excluded.access_token,
		refresh_token = excluded.refresh_token,
		token_expires_at = excluded.token_expires_at,
		status = excluded.status,
		location_id = excluded.location_id,
		location_name = excluded.location_name,
		merchant_id = excluded.merchant_id,
		config_json = excluded.config_json,
		last_tested_at = excluded.last_tested_at,
		updated_at = CURRENT_TIMESTAMP
	`

	_, err := s.db.ExecContext(ctx, query,
		conn.UserID,
		conn.Provider,
		conn.AccessToken,
		nullString(conn.RefreshToken),
		nullTime(conn.TokenExpiresAt),
		string(conn.Status),
		nullString(conn.LocationID),
		nullString(conn.LocationName),
		nullString(conn.MerchantID),
		nullString(conn.ConfigJSON),
		nullTime(conn.LastTestedAt),
	)
	if err != nil {
		return 0, err
	}

	var id int64
	err = s.db.QueryRowContext(ctx,
		"SELECT id FROM pos_connections WHERE user_id = ? AND provider = ?",
		conn.UserID, conn.Provider).Scan(&id)
	if err != nil {
		return 0, err
	}
	conn.ID = id
	return id, nil
}

const connectionColumns = `id, user_id, provider, access_token, refresh_token,
	token_expires_at, status, location_id, location_name, merchant_id,
	config_json, last_sync_at, last_tested_at, created_at, updated_at`

func scanConnection(row interface{ Scan(...any) error }) (*Connection, error) {
	conn := &Connection{}
	var (
		refreshToken   sql.NullString
		tokenExpiresAt sql.NullTime
		locationID     sql.NullString
		locationName   sql.NullString
		merchantID     sql.NullString
		configJSON     sql.NullString
		lastSyncAt     sql.NullTime
		lastTestedAt   sql.NullTime
		status         string
	)

	err := row.Scan(
		&conn.ID,
		&conn.UserID,
		&conn.Provider,
		&conn.AccessToken,
		&refreshToken,
		&tokenExpiresAt,
		&status,
		&locationID,
		&locationName,
		&merchantID,
		&configJSON,
		&lastSyncAt,
		&lastTestedAt,
		&conn.CreatedAt,
		&conn.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	conn.Status = ConnectionStatus(status)
	conn.RefreshToken = refreshToken.String
	conn.LocationID = locationID.String
	conn.LocationName = locationName.String
	conn.MerchantID = merchantID.String
	conn.ConfigJSON = configJSON.String
	if tokenExpiresAt.Valid {
		t := tokenExpiresAt.Time
		conn.TokenExpiresAt = &t
	}
	if lastSyncAt.Valid {
		t := lastSyncAt.Time
		conn.LastSyncAt = &t
	}
	if lastTestedAt.Valid {
		t := lastTestedAt.Time
		conn.LastTestedAt = &t
	}
	return conn, nil
}

// GetConnection retrieves one user's connection to one vendor.
func (s *Storage) GetConnection(ctx context.Context, userID, provider string) (*Connection, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+connectionColumns+" FROM pos_connections WHERE user_id = ? AND provider = ?",
		userID, provider)

	conn, err := scanConnection(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return conn, err
}

// ListConnections returns all of a user's connections.
func (s *Storage) ListConnections(ctx context.Context, userID string) ([]*Connection, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+connectionColumns+" FROM pos_connections WHERE user_id = ? ORDER BY provider",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectConnections(rows)
}

// ListActiveConnections returns every connection with status connected.
func (s *Storage) ListActiveConnections(ctx context.Context) ([]*Connection, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+connectionColumns+" FROM pos_connections WHERE status = ? ORDER BY id",
		string(StatusConnected))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectConnections(rows)
}

func collectConnections(rows *sql.Rows) ([]*Connection, error) {
	var connections []*Connection
	for rows.Next() {
		conn, err := scanConnection(rows)
		if err != nil {
			return nil, err
		}
		connections = append(connections, conn)
	}
	return connections, rows.Err()
}

// UpdateConnectionStatus sets the status enum for a connection.
func (s *Storage) UpdateConnectionStatus(ctx context.Context, id int64, status ConnectionStatus) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE pos_connections SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		string(status), id)
	return err
}

// UpdateConnectionTokens overwrites the stored tokens after a refresh. An
// empty refreshToken leaves the existing one untouched.
func (s *Storage) UpdateConnectionTokens(ctx context.Context, id int64, accessToken, refreshToken string, expiresAt *time.Time) error {
	if refreshToken != "" {
		_, err := s.db.ExecContext(ctx, `
			UPDATE pos_connections
			SET access_token = ?, refresh_token = ?, token_expires_at = ?,
			    status = ?, updated_at = CURRENT_TIMESTAMP
			WHERE id = ?`,
			accessToken, refreshToken, nullTime(expiresAt), string(StatusConnected), id)
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		UPDATE pos_connections
		SET access_token = ?, token_expires_at = ?,
		    status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		accessToken, nullTime(expiresAt), string(StatusConnected), id)
	return err
}

// TouchLastSync records the time a sync pass completed.
func (s *Storage) TouchLastSync(ctx context.Context, id int64, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE pos_connections SET last_sync_at = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		at, id)
	return err
}

// DeleteConnection removes a connection on explicit disconnect.
func (s *Storage) DeleteConnection(ctx context.Context, userID, provider string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM pos_connections WHERE user_id = ? AND provider = ?",
		userID, provider)
	return err
}

// InsertProducts inserts catalog entries for a user. Duplicate external ids
// from repeated imports are accepted as-is.
func (s *Storage) InsertProducts(ctx context.Context, userID, source string, products []pos.UnifiedProduct) (int, error) {
	if len(products) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO products (user_id, name, sku, price, stock_level, category, source, external_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	defer stmt.Close()

	inserted := 0
	for _, product := range products {
		if _, err := stmt.ExecContext(ctx,
			userID,
			product.Name,
			nullString(product.SKU),
			product.Price,
			product.StockLevel,
			nullString(product.Category),
			source,
			product.ID,
		); err != nil {
			_ = tx.Rollback()
			return 0, err
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return inserted, nil
}

// CountProducts returns how many products a user has from a source.
func (s *Storage) CountProducts(ctx context.Context, userID, source string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM products WHERE user_id = ? AND source = ?",
		userID, source).Scan(&count)
	return count, err
}

// UpsertDailySales writes one rollup row keyed by (user, date).
func (s *Storage) UpsertDailySales(ctx context.Context, userID string, date string, total float64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sales_history (user_id, sale_date, total_amount)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id, sale_date) DO UPDATE SET
			total_amount = excluded.total_amount,
			updated_at = CURRENT_TIMESTAMP`,
		userID, date, total)
	return err
}

// GetDailySales returns the rollup total for (user, date).
func (s *Storage) GetDailySales(ctx context.Context, userID string, date string) (float64, bool, error) {
	var total float64
	err := s.db.QueryRowContext(ctx,
		"SELECT total_amount FROM sales_history WHERE user_id = ? AND sale_date = ?",
		userID, date).Scan(&total)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return total, true, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
