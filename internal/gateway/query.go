package gateway

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/taibuivan/narratives/internal/platform/apperr"
)

var tracer = otel.Tracer("gateway")

// Query is a table-scoped request built fluently and run by one of the
// executors: [Select], [Single], [Insert], [Update] or [Delete].
//
// Query values are immutable; every builder method returns a copy, so a
// base query can be shared between goroutines.
type Query struct {
	db      Querier
	table   string
	filters []filter
	orders  []order
	limit   int
}

type filter struct {
	column string
	value  any
}

type order struct {
	column    string
	ascending bool
}

// Eq restricts the query to rows where column equals value.
func (q Query) Eq(column string, value any) Query {
	q.filters = append(slices.Clip(q.filters), filter{column: column, value: value})
	return q
}

// Order appends a sort key. Earlier calls take precedence.
func (q Query) Order(column string, ascending bool) Query {
	q.orders = append(slices.Clip(q.orders), order{column: column, ascending: ascending})
	return q
}

// Limit caps the number of returned rows. Zero means no limit.
func (q Query) Limit(n int) Query {
	q.limit = n
	return q
}

// Table returns the table the query targets.
func (q Query) Table() string { return q.table }

// # SQL Rendering

func (q Query) where(args []any) (string, []any) {
	if len(q.filters) == 0 {
		return "", args
	}

	clauses := make([]string, 0, len(q.filters))
	for _, f := range q.filters {
		args = append(args, f.value)
		clauses = append(clauses, ident(f.column)+" = $"+strconv.Itoa(len(args)))
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// SelectSQL renders the SELECT statement and its arguments.
func (q Query) SelectSQL() (string, []any) {
	var builder strings.Builder
	builder.WriteString("SELECT * FROM ")
	builder.WriteString(ident(q.table))

	where, args := q.where(nil)
	builder.WriteString(where)

	if len(q.orders) > 0 {
		keys := make([]string, 0, len(q.orders))
		for _, o := range q.orders {
			direction := "DESC"
			if o.ascending {
				direction = "ASC"
			}
			keys = append(keys, ident(o.column)+" "+direction)
		}
		builder.WriteString(" ORDER BY ")
		builder.WriteString(strings.Join(keys, ", "))
	}

	if q.limit > 0 {
		builder.WriteString(" LIMIT ")
		builder.WriteString(strconv.Itoa(q.limit))
	}

	return builder.String(), args
}

// InsertSQL renders an INSERT ... RETURNING * for one row. Columns are
// emitted in sorted order.
func (q Query) InsertSQL(values map[string]any) (string, []any) {
	columns := sortedKeys(values)

	quoted := make([]string, len(columns))
	placeholders := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, column := range columns {
		quoted[i] = ident(column)
		placeholders[i] = "$" + strconv.Itoa(i+1)
		args[i] = values[column]
	}

	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING *",
		ident(q.table), strings.Join(quoted, ", "), strings.Join(placeholders, ", ")), args
}

// UpdateSQL renders a filtered UPDATE.
func (q Query) UpdateSQL(values map[string]any) (string, []any) {
	columns := sortedKeys(values)

	assignments := make([]string, len(columns))
	args := make([]any, 0, len(columns)+len(q.filters))
	for i, column := range columns {
		args = append(args, values[column])
		assignments[i] = ident(column) + " = $" + strconv.Itoa(len(args))
	}

	where, args := q.where(args)
	return "UPDATE " + ident(q.table) + " SET " + strings.Join(assignments, ", ") + where, args
}

// DeleteSQL renders a filtered DELETE.
func (q Query) DeleteSQL() (string, []any) {
	where, args := q.where(nil)
	return "DELETE FROM " + ident(q.table) + where, args
}

// # Executors

// Select runs the query and scans every row into T by column name.
func Select[T any](ctx context.Context, q Query) ([]T, error) {
	ctx, span := q.span(ctx, "select")
	defer span.End()

	sql, args := q.SelectSQL()
	rows, err := q.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, q.fail(span, err)
	}

	items, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		return nil, q.fail(span, err)
	}

	span.SetAttributes(attribute.Int("db.rows", len(items)))
	return items, nil
}

// Single runs the query and requires exactly one row.
func Single[T any](ctx context.Context, q Query) (T, error) {
	var zero T

	items, err := Select[T](ctx, q.Limit(2))
	if err != nil {
		return zero, err
	}

	if len(items) != 1 {
		return zero, &Error{
			Code:    apperr.CodeNoRows,
			Message: MessageNoRows,
			Details: fmt.Sprintf("The result contains %d rows", len(items)),
		}
	}
	return items[0], nil
}

// Insert adds one row and returns the inserted rows as stored.
func Insert[T any](ctx context.Context, q Query, values map[string]any) ([]T, error) {
	ctx, span := q.span(ctx, "insert")
	defer span.End()

	if len(values) == 0 {
		return nil, q.fail(span, &Error{Code: "42601", Message: "INSERT requires at least one column"})
	}

	sql, args := q.InsertSQL(values)
	rows, err := q.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, q.fail(span, err)
	}

	items, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		return nil, q.fail(span, err)
	}
	return items, nil
}

// Update applies a partial update to the filtered rows and reports how
// many rows changed.
func Update(ctx context.Context, q Query, values map[string]any) (int64, error) {
	ctx, span := q.span(ctx, "update")
	defer span.End()

	if len(q.filters) == 0 {
		return 0, q.fail(span, ErrMissingFilter)
	}
	if len(values) == 0 {
		return 0, nil
	}

	sql, args := q.UpdateSQL(values)
	tag, err := q.db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, q.fail(span, err)
	}
	return tag.RowsAffected(), nil
}

// Delete removes the filtered rows and reports how many were removed.
func Delete(ctx context.Context, q Query) (int64, error) {
	ctx, span := q.span(ctx, "delete")
	defer span.End()

	if len(q.filters) == 0 {
		return 0, q.fail(span, ErrMissingFilter)
	}

	sql, args := q.DeleteSQL()
	tag, err := q.db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, q.fail(span, err)
	}
	return tag.RowsAffected(), nil
}

// # Helpers

func (q Query) span(ctx context.Context, operation string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "gateway."+operation, trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", operation),
		attribute.String("db.table", q.table),
	))
}

func (q Query) fail(span trace.Span, err error) error {
	wrapped := wrap(err)
	span.RecordError(wrapped)
	span.SetStatus(codes.Error, wrapped.Error())
	return wrapped
}

func ident(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

func sortedKeys(values map[string]any) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}
