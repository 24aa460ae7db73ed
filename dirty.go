package rowmap

// dirtyEntry remembers value of a column before first change
type dirtyEntry struct {
	col *Column
	old interface{}
}

// dirtyMap is an insertion ordered map from column to its original value.
// It is not thread-safe, Row guards it.
type dirtyMap struct {
	entries []dirtyEntry
	index   map[*Column]int
}

func (m *dirtyMap) len() int {
	return len(m.entries)
}

func (m *dirtyMap) has(c *Column) bool {
	_, ok := m.index[c]
	return ok
}

func (m *dirtyMap) get(c *Column) (interface{}, bool) {
	idx, ok := m.index[c]
	if !ok {
		return nil, false
	}
	return m.entries[idx].old, true
}

// remember records v as original value of c, only if c is not recorded yet
func (m *dirtyMap) remember(c *Column, v interface{}) bool {
	if m.has(c) {
		return false
	}

	if m.index == nil {
		m.index = map[*Column]int{}
	}
	m.index[c] = len(m.entries)
	m.entries = append(m.entries, dirtyEntry{col: c, old: v})
	return true
}

// replace updates recorded original value of c, if c is recorded
func (m *dirtyMap) replace(c *Column, v interface{}) bool {
	idx, ok := m.index[c]
	if !ok {
		return false
	}
	m.entries[idx].old = v
	return true
}

func (m *dirtyMap) columns() []*Column {
	ret := make([]*Column, len(m.entries))
	for idx, e := range m.entries {
		ret[idx] = e.col
	}
	return ret
}

func (m *dirtyMap) clear() {
	m.entries = nil
	m.index = nil
}
