package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres error codes this store maps onto domain sentinels.
const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

func isUniqueViolation(err error) bool {
	return hasPgCode(err, codeUniqueViolation)
}

func isForeignKeyViolation(err error) bool {
	return hasPgCode(err, codeForeignKeyViolation)
}

func isSerializationFailure(err error) bool {
	return hasPgCode(err, codeSerializationFailure) || hasPgCode(err, codeDeadlockDetected)
}

func hasPgCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
