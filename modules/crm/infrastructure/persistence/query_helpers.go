package persistence

import (
	"fmt"
	"strings"
)

const defaultPageSize = 20

// paginate appends LIMIT/OFFSET placeholders numbered after the
// existing arguments.
func paginate(query string, args []interface{}, limit, offset int) (string, []interface{}) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if offset < 0 {
		offset = 0
	}
	query = fmt.Sprintf("%s LIMIT $%d OFFSET $%d", query, len(args)+1, len(args)+2)
	return query, append(args, limit, offset)
}

// appendEquals adds an equality condition when the value is present.
func appendEquals(query string, args []interface{}, column, value string) (string, []interface{}) {
	if value == "" {
		return query, args
	}
	query = fmt.Sprintf("%s AND %s = $%d", query, column, len(args)+1)
	return query, append(args, value)
}

// appendSearch adds a case-insensitive search condition over the given
// columns when a query string is present.
func appendSearch(query string, args []interface{}, search string, columns ...string) (string, []interface{}) {
	if strings.TrimSpace(search) == "" {
		return query, args
	}
	index := len(args) + 1
	conds := make([]string, 0, len(columns))
	for _, col := range columns {
		conds = append(conds, fmt.Sprintf("%s ILIKE $%d", col, index))
	}
	query = fmt.Sprintf("%s AND (%s)", query, strings.Join(conds, " OR "))
	return query, append(args, "%"+strings.TrimSpace(search)+"%")
}
