package database

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/public-forge/go-tower-api/metrics"
	"go.uber.org/zap"
)

// identifierPattern matches a table name, optionally qualified by a schema.
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// Queryer runs a query. Both *sql.Conn and *sql.DB satisfy it.
type Queryer interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

// Quoter quotes an identifier for the target database. gorm.Dialect satisfies it.
type Quoter interface {
	Quote(key string) string
}

// TableReader reads whole tables into rows of typed values.
type TableReader struct {
	quoter       Quoter
	logger       *zap.SugaredLogger
	queryTimeout time.Duration
}

// NewTableReader returns a TableReader quoting identifiers with quoter.
// A non-positive queryTimeout leaves queries bounded only by their context.
func NewTableReader(quoter Quoter, logger *zap.SugaredLogger, queryTimeout time.Duration) *TableReader {
	return &TableReader{quoter: quoter, logger: logger, queryTimeout: queryTimeout}
}

// FetchAll returns every row of table, read through q. Columns keep the
// result-set order and rows the order returned by the database. The result
// set is always closed before FetchAll returns.
func (r *TableReader) FetchAll(ctx context.Context, table string, q Queryer) ([]Row, error) {
	quoted, err := r.quoteTable(table)
	if err != nil {
		r.logger.Errorf("Error fetching data from table '%s': %v", table, err)
		metrics.TableFetchTotal.WithLabelValues(table, metrics.Fail).Inc()
		return nil, err
	}

	if r.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.queryTimeout)
		defer cancel()
	}

	result, err := r.fetch(ctx, quoted, q)
	if err != nil {
		r.logger.Errorf("Error fetching data from table '%s': %v", table, err)
		metrics.TableFetchTotal.WithLabelValues(table, metrics.Fail).Inc()
		return nil, fmt.Errorf("%w: table %s: %w", ErrQueryFailed, table, err)
	}

	metrics.TableFetchTotal.WithLabelValues(table, metrics.Ok).Inc()
	metrics.TableFetchRowsTotal.WithLabelValues(table).Add(float64(len(result)))
	r.logger.Infof("Fetched data from table '%s'", table)
	return result, nil
}

func (r *TableReader) fetch(ctx context.Context, quoted string, q Queryer) ([]Row, error) {
	rows, err := q.QueryContext(ctx, "SELECT * FROM "+quoted)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var result = make([]Row, 0)
	var values = make([]interface{}, len(columns))
	var dest = make([]interface{}, len(columns))
	for i := range values {
		dest[i] = &values[i]
	}

	for rows.Next() {
		if err = rows.Scan(dest...); err != nil {
			return nil, err
		}
		var row = make(Row, len(columns))
		for i, name := range columns {
			row[i] = Column{Name: name, Value: NormalizeValue(values[i])}
		}
		result = append(result, row)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// quoteTable validates table and quotes each of its parts.
func (r *TableReader) quoteTable(table string) (string, error) {
	if !identifierPattern.MatchString(table) {
		return "", fmt.Errorf("%w: %q", ErrInvalidTable, table)
	}
	var parts = strings.Split(table, ".")
	for i, part := range parts {
		parts[i] = r.quoter.Quote(part)
	}
	return strings.Join(parts, "."), nil
}
