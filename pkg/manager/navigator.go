package manager

// The table interleaves one row per group with one row per profile, in document
// order:
//
//	0  lab            (group)
//	1    core         (profile lab[0])
//	2    console      (profile lab[1])
//	3  prod           (group)
//	4    web          (profile prod[0])
//
// The navigator keeps a single flat index into that sequence. Nothing derived
// from the document is cached; every operation walks the groups afresh so that
// indices can never go stale after an insert, delete or reload.

// RowKind distinguishes group header rows from profile rows.
type RowKind int

const (
	RowGroup RowKind = iota
	RowProfile
)

// Row identifies what a flat index refers to. Profile is -1 for group rows.
type Row struct {
	Kind    RowKind
	Group   int
	Profile int
}

// MaxRowIndex returns (groups-1)+profiles, or -1 when the document has no groups.
func MaxRowIndex(doc *Document) int {
	groups := doc.GroupCount()
	if groups == 0 {
		return -1
	}
	return (groups - 1) + doc.ProfileCount()
}

// RowAt resolves a flat index by walking groups and profiles in order,
// counting the index down to zero.
func (d *Document) RowAt(index int) (Row, bool) {
	if d == nil || index < 0 {
		return Row{}, false
	}
	remaining := index
	for gi, g := range d.Groups {
		if remaining == 0 {
			return Row{Kind: RowGroup, Group: gi, Profile: -1}, true
		}
		remaining--
		for pi := range g.Profiles {
			if remaining == 0 {
				return Row{Kind: RowProfile, Group: gi, Profile: pi}, true
			}
			remaining--
		}
	}
	return Row{}, false
}

// RemoveRow deletes whatever the flat index refers to: a whole group for a
// group row, a single profile for a profile row.
func (d *Document) RemoveRow(index int) (Row, bool) {
	row, ok := d.RowAt(index)
	if !ok {
		return Row{}, false
	}
	switch row.Kind {
	case RowGroup:
		d.Groups = append(d.Groups[:row.Group], d.Groups[row.Group+1:]...)
	case RowProfile:
		g := &d.Groups[row.Group]
		g.Profiles = append(g.Profiles[:row.Profile], g.Profiles[row.Profile+1:]...)
	}
	return row, true
}

// Navigator tracks the selected flat index.
type Navigator struct {
	selected int
	valid    bool
}

// Selected returns the selected index and whether there is a selection.
func (n *Navigator) Selected() (int, bool) {
	return n.selected, n.valid
}

// Clear drops the selection.
func (n *Navigator) Clear() {
	n.selected, n.valid = 0, false
}

func (n *Navigator) set(i int) {
	n.selected, n.valid = i, true
}

// Next selects the following row, wrapping to 0 past the last one. Without a
// selection it selects row 0. An empty document leaves nothing selected.
func (n *Navigator) Next(doc *Document) {
	maxIdx := MaxRowIndex(doc)
	if maxIdx < 0 {
		n.Clear()
		return
	}
	if !n.valid {
		n.set(0)
		return
	}
	next := n.selected + 1
	if next > maxIdx {
		next = 0
	}
	n.set(next)
}

// Previous selects the preceding row, wrapping from 0 to the last row. Without
// a selection it selects row 0, like Next.
func (n *Navigator) Previous(doc *Document) {
	maxIdx := MaxRowIndex(doc)
	if maxIdx < 0 {
		n.Clear()
		return
	}
	if !n.valid {
		n.set(0)
		return
	}
	prev := n.selected - 1
	if prev < 0 || prev > maxIdx {
		prev = maxIdx
	}
	n.set(prev)
}

// Clamp pulls the selection back inside the document after it shrank.
func (n *Navigator) Clamp(doc *Document) {
	if !n.valid {
		return
	}
	maxIdx := MaxRowIndex(doc)
	switch {
	case maxIdx < 0:
		n.Clear()
	case n.selected > maxIdx:
		n.set(maxIdx)
	}
}

// SelectedRow resolves the current selection against doc.
func (n *Navigator) SelectedRow(doc *Document) (Row, bool) {
	if !n.valid {
		return Row{}, false
	}
	return doc.RowAt(n.selected)
}

// SelectedProfile returns the profile under the cursor; group rows yield false.
func (n *Navigator) SelectedProfile(doc *Document) (Profile, bool) {
	row, ok := n.SelectedRow(doc)
	if !ok || row.Kind != RowProfile {
		return Profile{}, false
	}
	return doc.Groups[row.Group].Profiles[row.Profile], true
}

// RemoveSelected deletes the selected group or profile and clamps the selection.
func (n *Navigator) RemoveSelected(doc *Document) (Row, bool) {
	if !n.valid {
		return Row{}, false
	}
	row, ok := doc.RemoveRow(n.selected)
	n.Clamp(doc)
	return row, ok
}
