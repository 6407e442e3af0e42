package repository

import (
	"fmt"
	"strings"
)

// assignments accumulates "col = $n" fragments and their arguments for a
// partial UPDATE.
type assignments struct {
	cols []string
	args []any
}

func (a *assignments) arg(v any) string {
	a.args = append(a.args, v)
	return fmt.Sprintf("$%d", len(a.args))
}

func (a *assignments) set(col string, v any) {
	a.cols = append(a.cols, col+" = "+a.arg(v))
}

func (a *assignments) raw(expr string) {
	a.cols = append(a.cols, expr)
}

func (a *assignments) clause() string {
	return strings.Join(a.cols, ", ")
}
