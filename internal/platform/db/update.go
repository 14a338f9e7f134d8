package db

import (
	"fmt"
	"strings"
)

// Updates collects column assignments for a partial UPDATE.
type Updates struct {
	cols []string
	args []any
}

// Set queues col = v.
func (u *Updates) Set(col string, v any) {
	u.args = append(u.args, v)
	u.cols = append(u.cols, fmt.Sprintf("%s = $%d", col, len(u.args)))
}

// Empty reports whether nothing was queued.
func (u *Updates) Empty() bool {
	return len(u.cols) == 0
}

// Statement renders "UPDATE table SET ..., updated_at = NOW() WHERE id = $n"
// together with its arguments.
func (u *Updates) Statement(table string, id int64) (string, []any) {
	args := append(append([]any(nil), u.args...), id)
	sets := append(append([]string(nil), u.cols...), "updated_at = NOW()")
	return fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d", table, strings.Join(sets, ", "), len(args)), args
}
