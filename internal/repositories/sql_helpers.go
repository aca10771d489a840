package repositories

import (
	"strings"
	"time"

	"hardwarestore/pkg/database"
)

type scanner interface {
	Scan(dest ...any) error
}

// setClause collects "column = ?" assignments for partial updates.
type setClause struct {
	cols []string
	args []any
}

func newSetClause() *setClause {
	return &setClause{}
}

// addField assigns column only when v is non-nil.
func addField[T any](s *setClause, column string, v *T) {
	if v == nil {
		return
	}
	s.cols = append(s.cols, column+" = ?")
	s.args = append(s.args, *v)
}

func (s *setClause) raw(expr string, args ...any) {
	s.cols = append(s.cols, expr)
	s.args = append(s.args, args...)
}

func (s *setClause) empty() bool {
	return len(s.cols) == 0
}

func (s *setClause) sql() string {
	return strings.Join(s.cols, ", ")
}

func dateArg(t *time.Time) any {
	if t == nil {
		return nil
	}
	return database.FormatDate(*t)
}

func likePattern(term string) string {
	return "%" + term + "%"
}
