package tt

import "testing"

// TestFlowTableInsertLookupDelete exercises invariant 2: addressing
// survives insert/delete and count tracks live ids.
func TestFlowTableInsertLookupDelete(t *testing.T) {
	ft := NewFlowTable()

	entry := &FlowEntry{FlowID: 5, Period: 1000, Offset: 0}
	if err := ft.Insert(entry); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	got, ok := ft.Lookup(5)
	if !ok || got != entry {
		t.Fatalf("Lookup(5) = %v, %v, want %v, true", got, ok, entry)
	}

	if ft.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", ft.Count())
	}

	ft.Delete(5)

	if _, ok := ft.Lookup(5); ok {
		t.Fatal("Lookup(5) ok = true after delete, want false")
	}
	if ft.Count() != 0 {
		t.Fatalf("Count() = %d, want 0", ft.Count())
	}
}

func TestFlowTableDeleteMissingIsNoop(t *testing.T) {
	ft := NewFlowTable()
	ft.Delete(42) // must not panic or corrupt state
	if ft.Count() != 0 {
		t.Fatalf("Count() = %d, want 0", ft.Count())
	}
}

func TestFlowTableReplaceExisting(t *testing.T) {
	ft := NewFlowTable()

	first := &FlowEntry{FlowID: 2, Period: 100, Offset: 0}
	second := &FlowEntry{FlowID: 2, Period: 200, Offset: 0}

	if err := ft.Insert(first); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if err := ft.Insert(second); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	if ft.Count() != 1 {
		t.Fatalf("Count() = %d, want 1 after replacing same id", ft.Count())
	}

	got, _ := ft.Lookup(2)
	if got != second {
		t.Fatalf("Lookup(2) = %v, want %v", got, second)
	}
}

// TestFlowTableGrowsOnOutOfRangeInsert checks the resize-monotonicity
// invariant: capacity always covers the highest inserted flow id.
func TestFlowTableGrowsOnOutOfRangeInsert(t *testing.T) {
	ft := NewFlowTable()

	if err := ft.Insert(&FlowEntry{FlowID: 40, Period: 100, Offset: 0}); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	if got, want := ft.Capacity(), 40+MinCap; got != want {
		t.Fatalf("Capacity() = %d, want %d", got, want)
	}
	if _, ok := ft.Lookup(40); !ok {
		t.Fatal("Lookup(40) ok = false, want true")
	}
}

// TestFlowTableResizeShrink reproduces scenario S5: inserting ids 0..32
// grows capacity to at least 33, and deleting back down halves capacity
// at each threshold crossing without ever going below MinCap.
func TestFlowTableResizeShrink(t *testing.T) {
	ft := NewFlowTable()

	for id := uint16(0); id <= 32; id++ {
		if err := ft.Insert(&FlowEntry{FlowID: id, Period: 100, Offset: 0}); err != nil {
			t.Fatalf("Insert(%d) error = %v", id, err)
		}
	}

	if got := ft.Capacity(); got < 33 {
		t.Fatalf("Capacity() = %d, want >= 33", got)
	}

	for id := uint16(0); id <= 32; id++ {
		ft.Delete(id)
		if got := ft.Capacity(); got < MinCap {
			t.Fatalf("Capacity() = %d, fell below MinCap=%d", got, MinCap)
		}
	}

	if got := ft.Count(); got != 0 {
		t.Fatalf("Count() = %d, want 0", got)
	}
	if got := ft.Capacity(); got != MinCap {
		t.Fatalf("Capacity() = %d, want MinCap=%d after draining", got, MinCap)
	}
}

func TestFlowTableEntriesSnapshot(t *testing.T) {
	ft := NewFlowTable()
	ft.Insert(&FlowEntry{FlowID: 1, Period: 100, Offset: 0})
	ft.Insert(&FlowEntry{FlowID: 3, Period: 200, Offset: 0})

	entries := ft.Entries()
	if len(entries) != 2 {
		t.Fatalf("Entries() len = %d, want 2", len(entries))
	}

	ft.Insert(&FlowEntry{FlowID: 9, Period: 300, Offset: 0})
	if len(entries) != 2 {
		t.Fatalf("earlier snapshot mutated: len = %d, want 2", len(entries))
	}
}
