package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// querier es el subconjunto de *pgxpool.Pool que usan los repositorios.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// SortOrder es la dirección de orden pedida por el cliente (_order).
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Sort describe un orden (_sort/_order). Se ignora si falta alguno de los dos.
type Sort struct {
	Field string
	Order SortOrder
}

// whereBuilder acumula condiciones y argumentos posicionales ($1, $2...).
type whereBuilder struct {
	conds []string
	args  []any
}

func (b *whereBuilder) add(format string, arg any) {
	b.args = append(b.args, arg)
	b.conds = append(b.conds, fmt.Sprintf(format, len(b.args)))
}

// addLike agrega un ILIKE por substring; escapa los comodines del patrón.
func (b *whereBuilder) addLike(column, value string) {
	b.add(column+" ILIKE '%%' || $%d || '%%'", escapeLike(value))
}

func (b *whereBuilder) sql() string {
	if len(b.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.conds, " AND ")
}

func escapeLike(v string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(v)
}

// orderBy traduce el campo público a columna usando una lista blanca.
// Campos desconocidos producen el orden por defecto.
func orderBy(s Sort, columns map[string]string, fallback string) string {
	col, ok := columns[s.Field]
	if !ok || (s.Order != SortAsc && s.Order != SortDesc) {
		return " ORDER BY " + fallback
	}
	dir := "ASC"
	if s.Order == SortDesc {
		dir = "DESC"
	}
	return " ORDER BY " + col + " " + dir
}
