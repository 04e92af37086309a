// Package sheet turns uploaded spreadsheets (CSV or XLSX) into a header
// indexed grid of trimmed string cells.
package sheet

import "strings"

// Grid is one parsed upload. Headers are lower-cased and trimmed. Rows may be
// shorter than Headers; missing cells read as "".
type Grid struct {
	Headers []string
	Rows    [][]string

	index map[string]int
}

func newGrid(records [][]string) *Grid {
	g := &Grid{Headers: []string{}, Rows: [][]string{}}

	start := -1
	for i, rec := range records {
		if !blank(rec) {
			start = i
			break
		}
	}
	if start < 0 {
		g.buildIndex()
		return g
	}

	for _, h := range records[start] {
		g.Headers = append(g.Headers, normalizeHeader(h))
	}
	for _, rec := range records[start+1:] {
		if blank(rec) {
			continue
		}
		row := make([]string, len(rec))
		for i, v := range rec {
			row[i] = strings.TrimSpace(v)
		}
		g.Rows = append(g.Rows, row)
	}
	g.buildIndex()
	return g
}

func (g *Grid) buildIndex() {
	g.index = make(map[string]int, len(g.Headers))
	for i, h := range g.Headers {
		if _, seen := g.index[h]; !seen && h != "" {
			g.index[h] = i
		}
	}
}

// Index returns the column position of name, or -1.
func (g *Grid) Index(name string) int {
	if g.index == nil {
		g.buildIndex()
	}
	if i, ok := g.index[strings.ToLower(strings.TrimSpace(name))]; ok {
		return i
	}
	return -1
}

// Has reports whether the column exists.
func (g *Grid) Has(name string) bool { return g.Index(name) >= 0 }

// Value returns the cell at data row i and column name.
func (g *Grid) Value(i int, name string) string {
	col := g.Index(name)
	if col < 0 || i < 0 || i >= len(g.Rows) {
		return ""
	}
	row := g.Rows[i]
	if col >= len(row) {
		return ""
	}
	return row[col]
}

// MissingColumns returns the names from required that the header lacks, in
// the order given.
func (g *Grid) MissingColumns(required ...string) []string {
	var missing []string
	for _, name := range required {
		if !g.Has(name) {
			missing = append(missing, name)
		}
	}
	return missing
}

// Distinct collects the distinct non-empty values of a column after applying
// fn, in first-seen order.
func (g *Grid) Distinct(name string, fn func(string) string) []string {
	col := g.Index(name)
	if col < 0 {
		return nil
	}
	seen := make(map[string]struct{})
	var out []string
	for i := range g.Rows {
		v := g.Value(i, name)
		if fn != nil {
			v = fn(v)
		}
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	return strings.TrimSpace(strings.TrimSuffix(h, "*"))
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
