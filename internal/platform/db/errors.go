package db

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// pgUniqueViolation は PostgreSQL の unique_violation SQLSTATE です。
const pgUniqueViolation = "23505"

// IsDuplicateKey はユニーク制約違反かどうかを判定します。
// TranslateError が無効な接続でも PostgreSQL のエラーを検出できるよう pgconn も確認します。
func IsDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
