package store

import (
	"fmt"
	"strings"
)

// whereOpts appends the QueryOpts filters to conds and args. tsColumn names
// the column From and To apply to.
func whereOpts(conds []string, args []any, tsColumn string, opts QueryOpts) ([]string, []any) {
	if opts.After > 0 {
		conds = append(conds, "sequence > ?")
		args = append(args, opts.After)
	}
	if opts.Before > 0 {
		conds = append(conds, "sequence < ?")
		args = append(args, opts.Before)
	}
	if !opts.From.IsZero() {
		conds = append(conds, tsColumn+" >= ?")
		args = append(args, opts.From.UTC())
	}
	if !opts.To.IsZero() {
		conds = append(conds, tsColumn+" <= ?")
		args = append(args, opts.To.UTC())
	}
	return conds, args
}

func buildQuery(base string, conds []string, order string, limit int) string {
	var b strings.Builder
	b.WriteString(base)
	if len(conds) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(conds, " AND "))
	}
	b.WriteString(" ORDER BY ")
	b.WriteString(order)
	if limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", limit)
	}
	return b.String()
}
