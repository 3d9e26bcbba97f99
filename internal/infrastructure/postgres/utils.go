package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// codeUndefinedTable SQLSTATE de tabla inexistente.
const codeUndefinedTable = "42P01"

// wrapErr agrega contexto al error y, si falta una tabla, sugiere aplicar las migraciones.
func wrapErr(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == codeUndefinedTable {
		return fmt.Errorf("%s: %w (ejecutar cmd/migrate up)", op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

