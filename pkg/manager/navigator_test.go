package manager

import "testing"

func TestNavigator_NextWrapsAfterGroupsPlusProfiles(t *testing.T) {
	doc := sampleDocument() // 3 groups, 3 profiles
	var nav Navigator

	steps := doc.GroupCount() + doc.ProfileCount()
	for i := 0; i < steps; i++ {
		nav.Next(doc)
	}
	// First Next selects 0, so after G+P calls we are on the last row.
	if got, ok := nav.Selected(); !ok || got != MaxRowIndex(doc) {
		t.Fatalf("after %d Next() calls expected %d, got %d (ok=%v)", steps, MaxRowIndex(doc), got, ok)
	}
	nav.Next(doc)
	if got, _ := nav.Selected(); got != 0 {
		t.Fatalf("expected wrap to 0, got %d", got)
	}
}

func TestNavigator_NextFromUnselectedCyclesBackToZero(t *testing.T) {
	doc := sampleDocument()
	var nav Navigator
	nav.Next(doc) // 0
	for i := 0; i < doc.GroupCount()+doc.ProfileCount(); i++ {
		nav.Next(doc)
	}
	if got, _ := nav.Selected(); got != 0 {
		t.Fatalf("expected a full cycle to land on 0, got %d", got)
	}
}

func TestNavigator_PreviousFromZeroWrapsToMax(t *testing.T) {
	doc := sampleDocument()
	var nav Navigator
	nav.Next(doc)
	nav.Previous(doc)

	want := (doc.GroupCount() - 1) + doc.ProfileCount()
	if got, ok := nav.Selected(); !ok || got != want {
		t.Fatalf("expected %d, got %d (ok=%v)", want, got, ok)
	}
	nav.Previous(doc)
	if got, _ := nav.Selected(); got != want-1 {
		t.Fatalf("expected %d, got %d", want-1, got)
	}
}

func TestNavigator_PreviousWithoutSelectionSelectsZero(t *testing.T) {
	doc := sampleDocument()
	var nav Navigator
	nav.Previous(doc)
	if got, ok := nav.Selected(); !ok || got != 0 {
		t.Fatalf("expected 0, got %d (ok=%v)", got, ok)
	}
}

func TestNavigator_EmptyDocumentIsNoop(t *testing.T) {
	doc := NewDocument()
	var nav Navigator
	nav.Next(doc)
	nav.Previous(doc)
	if _, ok := nav.Selected(); ok {
		t.Fatalf("expected no selection on empty document")
	}
	if MaxRowIndex(doc) != -1 {
		t.Fatalf("expected max index -1, got %d", MaxRowIndex(doc))
	}
	if _, ok := nav.RemoveSelected(doc); ok {
		t.Fatalf("expected nothing to remove")
	}
}

func TestDocumentRowAt_InterleavesGroupsAndProfiles(t *testing.T) {
	doc := sampleDocument()
	want := []Row{
		{RowGroup, 0, -1},
		{RowProfile, 0, 0},
		{RowProfile, 0, 1},
		{RowGroup, 1, -1},
		{RowGroup, 2, -1},
		{RowProfile, 2, 0},
	}
	for i, w := range want {
		got, ok := doc.RowAt(i)
		if !ok || got != w {
			t.Fatalf("RowAt(%d) = %+v (ok=%v), want %+v", i, got, ok, w)
		}
	}
	if _, ok := doc.RowAt(len(want)); ok {
		t.Fatalf("expected out-of-range index to resolve to nothing")
	}
}

func TestNavigator_RemoveSelectedGroupRow(t *testing.T) {
	doc := sampleDocument()
	var nav Navigator
	nav.Next(doc) // row 0: group "lab"

	row, ok := nav.RemoveSelected(doc)
	if !ok || row.Kind != RowGroup {
		t.Fatalf("expected group removal, got %+v ok=%v", row, ok)
	}
	if doc.GroupCount() != 2 || doc.Groups[0].Name != "empty" {
		t.Fatalf("expected lab removed, groups=%v", doc.Groups)
	}
}

func TestNavigator_RemoveSelectedProfileRow(t *testing.T) {
	doc := sampleDocument()
	var nav Navigator
	nav.Next(doc)
	nav.Next(doc)
	nav.Next(doc) // row 2: lab/console

	row, ok := nav.RemoveSelected(doc)
	if !ok || row.Kind != RowProfile || row.Group != 0 || row.Profile != 1 {
		t.Fatalf("unexpected removal %+v ok=%v", row, ok)
	}
	if len(doc.Groups[0].Profiles) != 1 || doc.Groups[0].Profiles[0].Name != "core" {
		t.Fatalf("expected only core left in lab, got %v", doc.Groups[0].Profiles)
	}
	if doc.GroupCount() != 3 {
		t.Fatalf("group count changed: %d", doc.GroupCount())
	}
}

func TestNavigator_RemoveLastRowClampsSelection(t *testing.T) {
	doc := sampleDocument()
	var nav Navigator
	nav.Next(doc)
	nav.Previous(doc) // last row: prod/web (index 5)

	if _, ok := nav.RemoveSelected(doc); !ok {
		t.Fatalf("expected removal")
	}
	got, ok := nav.Selected()
	if !ok || got != MaxRowIndex(doc) {
		t.Fatalf("expected selection clamped to %d, got %d ok=%v", MaxRowIndex(doc), got, ok)
	}
}

func TestNavigator_SelectedProfileSkipsGroupRows(t *testing.T) {
	doc := sampleDocument()
	var nav Navigator
	nav.Next(doc)
	if _, ok := nav.SelectedProfile(doc); ok {
		t.Fatalf("group row must not resolve to a profile")
	}
	nav.Next(doc)
	p, ok := nav.SelectedProfile(doc)
	if !ok || p.Name != "core" {
		t.Fatalf("expected core, got %+v ok=%v", p, ok)
	}
}
