package sqlite

import (
	"context"
)

func (r *SQLiteRepo) BlacklistToken(ctx context.Context, jti string, userID int64, expiresAt int64) error {
	_, err := r.conn.Exec(ctx,
		`INSERT OR IGNORE INTO token_blacklist (jti, user_id, expires_at, created_at) VALUES (?, ?, ?, ?)`,
		jti, userID, expiresAt, now())
	return err
}

func (r *SQLiteRepo) IsTokenBlacklisted(ctx context.Context, jti string) (bool, error) {
	var count int
	if err := r.conn.QueryRow(ctx, `SELECT COUNT(1) FROM token_blacklist WHERE jti = ?`, jti).Scan(&count); err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *SQLiteRepo) PurgeExpiredTokens(ctx context.Context, now int64) (int64, error) {
	res, err := r.conn.Exec(ctx, `DELETE FROM token_blacklist WHERE expires_at < ?`, now)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}
