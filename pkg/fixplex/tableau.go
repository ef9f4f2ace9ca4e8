package fixplex

import "golang.org/x/exp/slices"

// Entry is one (variable, coefficient) pair of a row or column.
type Entry struct {
	Var   VarID
	Coeff Numeral
}

// Tableau is the sparse matrix M of spec.md §4.3: rows indexed by
// RowID, columns indexed by VarID, with dual indexing so both
// row_entries and col_entries are O(row/column size) rather than O(all
// entries). Mirrors the dual forward/backward bookkeeping the teacher
// keeps for constraint propagation (pkg/minikanren/fd.go's var->peers
// links), generalized from "variables that share a constraint" to
// "variables that share a row".
type Tableau struct {
	ring    *Ring
	rows    map[RowID]map[VarID]Numeral
	cols    map[VarID]map[RowID]struct{}
	nextRow RowID
}

// NewTableau constructs an empty tableau over ring.
func NewTableau(ring *Ring) *Tableau {
	return &Tableau{
		ring: ring,
		rows: make(map[RowID]map[VarID]Numeral),
		cols: make(map[VarID]map[RowID]struct{}),
	}
}

// MkRow allocates a new, empty row and returns its id.
func (t *Tableau) MkRow() RowID {
	id := t.nextRow
	t.nextRow++
	t.rows[id] = make(map[VarID]Numeral)
	return id
}

func (t *Tableau) link(r RowID, v VarID) {
	cs, ok := t.cols[v]
	if !ok {
		cs = make(map[RowID]struct{})
		t.cols[v] = cs
	}
	cs[r] = struct{}{}
}

func (t *Tableau) unlink(r RowID, v VarID) {
	if cs, ok := t.cols[v]; ok {
		delete(cs, r)
		if len(cs) == 0 {
			delete(t.cols, v)
		}
	}
}

// AddVar adds c*v to row r, combining with any existing coefficient of
// v and dropping the entry entirely if the combined coefficient is
// zero (spec.md §4.3).
func (t *Tableau) AddVar(r RowID, c Numeral, v VarID) {
	row := t.rows[r]
	cur, had := row[v]
	next := t.ring.Add(cur, c)
	if next == 0 {
		if had {
			delete(row, v)
			t.unlink(r, v)
		}
		return
	}
	row[v] = next
	if !had {
		t.link(r, v)
	}
}

// SetVar overwrites (rather than accumulates) the coefficient of v in
// row r. add_row builds rows with AddVar; SetVar is used by tests.
func (t *Tableau) SetVar(r RowID, c Numeral, v VarID) {
	row := t.rows[r]
	_, had := row[v]
	if c == 0 {
		if had {
			delete(row, v)
			t.unlink(r, v)
		}
		return
	}
	row[v] = c
	if !had {
		t.link(r, v)
	}
}

// Coeff returns the coefficient of v in row r (0 if absent).
func (t *Tableau) Coeff(r RowID, v VarID) Numeral {
	return t.rows[r][v]
}

// Mul scales every coefficient of row r by k in place.
func (t *Tableau) Mul(r RowID, k Numeral) {
	row := t.rows[r]
	if k == 0 {
		for v := range row {
			delete(row, v)
			t.unlink(r, v)
		}
		return
	}
	for v, c := range row {
		row[v] = t.ring.Mul(c, k)
	}
}

// Add performs r_dst += k * r_src: entries that cancel to zero are
// removed, entries newly introduced by r_src are inserted (spec.md
// §4.3). r_src is read-only; it may equal r_dst only when k==1 is not
// the intended use (callers pivoting a row onto itself never occur in
// this solver).
func (t *Tableau) Add(rDst RowID, k Numeral, rSrc RowID) {
	src := t.rows[rSrc]
	for v, c := range src {
		t.AddVar(rDst, t.ring.Mul(k, c), v)
	}
}

// Del unlinks row r from every column it touches and removes it.
func (t *Tableau) Del(r RowID) {
	row, ok := t.rows[r]
	if !ok {
		return
	}
	for v := range row {
		t.unlink(r, v)
	}
	delete(t.rows, r)
}

// RowEntries returns the entries of row r, sorted by VarID for
// deterministic iteration (observable order is not meaningful per
// spec.md §4.3, but determinism keeps tests and Display reproducible).
func (t *Tableau) RowEntries(r RowID) []Entry {
	row := t.rows[r]
	out := make([]Entry, 0, len(row))
	for v, c := range row {
		out = append(out, Entry{Var: v, Coeff: c})
	}
	slices.SortFunc(out, func(a, b Entry) int { return int(a.Var - b.Var) })
	return out
}

// ColEntry is one (row, coefficient) pair of a column.
type ColEntry struct {
	Row   RowID
	Coeff Numeral
}

// ColEntries returns the entries of column v (one per row that
// mentions v), sorted by RowID.
func (t *Tableau) ColEntries(v VarID) []ColEntry {
	cs := t.cols[v]
	out := make([]ColEntry, 0, len(cs))
	for r := range cs {
		out = append(out, ColEntry{Row: r, Coeff: t.rows[r][v]})
	}
	slices.SortFunc(out, func(a, b ColEntry) int { return int(a.Row - b.Row) })
	return out
}

// ColumnSize returns the number of rows mentioning v.
func (t *Tableau) ColumnSize(v VarID) int {
	return len(t.cols[v])
}

// RowSize returns the number of non-zero entries of row r.
func (t *Tableau) RowSize(r RowID) int {
	return len(t.rows[r])
}

// HasRow reports whether r currently exists.
func (t *Tableau) HasRow(r RowID) bool {
	_, ok := t.rows[r]
	return ok
}
