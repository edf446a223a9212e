package store

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// row is one result row keyed by lower-cased column name
type row map[string]any

// scanRows reads every row into a column map so that result sets can be
// matched by name regardless of driver column order.
func scanRows(rows *sql.Rows) ([]row, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	var out []row
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		r := make(row, len(cols))
		for i, c := range cols {
			r[strings.ToLower(c)] = values[i]
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}
	return out, nil
}

func (r row) raw(col string) any {
	return r[strings.ToLower(col)]
}

func (r row) str(col string) string {
	return asString(r.raw(col))
}

func (r row) integer(col string) int {
	switch v := r.raw(col).(type) {
	case int64:
		return int(v)
	case int32:
		return int(v)
	case int:
		return v
	case float64:
		return int(v)
	case bool:
		if v {
			return 1
		}
		return 0
	case nil:
		return 0
	default:
		n, _ := strconv.Atoi(strings.TrimSpace(asString(v)))
		return n
	}
}

func (r row) boolean(col string) bool {
	switch v := r.raw(col).(type) {
	case bool:
		return v
	case int64:
		return v != 0
	case nil:
		return false
	default:
		b, err := strconv.ParseBool(strings.TrimSpace(asString(v)))
		return err == nil && b
	}
}

func (r row) money(col string) decimal.Decimal {
	var d decimal.NullDecimal
	if err := d.Scan(r.raw(col)); err != nil || !d.Valid {
		return decimal.Zero
	}
	return d.Decimal
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func (r row) date(col string) time.Time {
	t, _ := asTime(r.raw(col))
	return t
}

func asTime(v any) (time.Time, bool) {
	switch val := v.(type) {
	case time.Time:
		return val, true
	case nil:
		return time.Time{}, false
	default:
		s := strings.TrimSpace(asString(val))
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	}
}

func asString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case time.Time:
		return val.Format("2006-01-02")
	default:
		return fmt.Sprint(val)
	}
}
