package version

import (
	"regexp"
	"strings"
)

// Resolver narrows a candidate set to the latest version. A Resolver is used
// for a single resolution and is not safe for concurrent use.
type Resolver struct {
	raws  []string
	rows  [][]string
	width int
}

// NewResolver builds a resolver over raw versions in their scraped order.
func NewResolver(raws []string) *Resolver {
	rows := SplitAll(raws)
	return &Resolver{
		raws:  raws,
		rows:  rows,
		width: Width(rows),
	}
}

// Resolve is shorthand for NewResolver(raws).Resolve().
func Resolve(raws []string) (string, bool) {
	return NewResolver(raws).Resolve()
}

// Rows returns the rows still in the candidate set.
func (r *Resolver) Rows() [][]string {
	return r.rows
}

// Width returns the column count of the widest remaining row.
func (r *Resolver) Width() int {
	return r.width
}

// Resolve narrows the candidates and returns the winning raw version. It
// reports false when there are no candidates or no raw version matches the
// surviving columns.
func (r *Resolver) Resolve() (string, bool) {
	if len(r.rows) == 0 {
		return "", false
	}
	r.narrow()
	if len(r.rows) == 0 {
		return "", false
	}

	pattern, err := r.pattern()
	if err != nil {
		return "", false
	}
	for _, raw := range r.raws {
		if pattern.MatchString(raw) {
			return raw, true
		}
	}
	return "", false
}

func (r *Resolver) narrow() {
	for col := 0; col < r.width; col++ {
		max, ok := r.maxAt(col)
		if !ok {
			break
		}
		r.filter(col, max)
		r.width = Width(r.rows)
	}
}

// maxAt returns the greatest value in column col, skipping rows that are too
// short. The first of several equal values wins.
func (r *Resolver) maxAt(col int) (string, bool) {
	var (
		best    string
		bestKey Key
		found   bool
	)
	for _, row := range r.rows {
		if col >= len(row) {
			continue
		}
		key := ParseKey(row[col])
		if !found || key.Compare(bestKey) > 0 {
			best, bestKey, found = row[col], key, true
		}
	}
	return best, found
}

// filter keeps rows whose column col is literally value.
func (r *Resolver) filter(col int, value string) {
	kept := r.rows[:0:0]
	for _, row := range r.rows {
		if col < len(row) && row[col] == value {
			kept = append(kept, row)
		}
	}
	r.rows = kept
}

// pattern rebuilds a prefix pattern from the first surviving row. Separators
// are not kept positionally by Split, so every gap accepts any delimiter.
func (r *Resolver) pattern() (*regexp.Regexp, error) {
	row := r.rows[0]
	n := r.width
	if n > len(row) {
		n = len(row)
	}
	parts := make([]string, n)
	for i := 0; i < n; i++ {
		parts[i] = regexp.QuoteMeta(row[i])
	}
	return regexp.Compile("^" + strings.Join(parts, Delimiters))
}
