package sqlite

import (
	"fmt"
	"strings"
)

// Active-record predicates. Every query over a soft-deletable table aliases it and uses these.
const (
	userActive    = "u.is_deleted = 0"
	postActive    = "p.is_deleted = 0"
	commentActive = "c.is_deleted = 0"
	tagActive     = "t.is_deleted = 0"
)

type scanner interface {
	Scan(dest ...any) error
}

// where accumulates AND-ed conditions with their positional args.
type where struct {
	conds []string
	args  []any
}

func (w *where) add(cond string, args ...any) {
	w.conds = append(w.conds, cond)
	w.args = append(w.args, args...)
}

func (w *where) contains(column, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	w.add(column+` LIKE ? ESCAPE '\'`, likePattern(value))
}

func (w *where) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(w.conds, " AND ")
}

func likePattern(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + replacer.Replace(value) + "%"
}

func limitClause(limit, offset int) string {
	if limit <= 0 {
		return ""
	}
	if offset < 0 {
		return "\nLIMIT 0"
	}
	return fmt.Sprintf("\nLIMIT %d OFFSET %d", limit, offset)
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "unique")
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
