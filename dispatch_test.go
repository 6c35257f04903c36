package tt

import "testing"

func newSendTable(t *testing.T, entries ...*FlowEntry) *FlowTable {
	t.Helper()
	ft := NewFlowTable()
	for _, e := range entries {
		if err := ft.Insert(e); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}
	return ft
}

// TestDispatchEmptyTable checks that an empty send table fails with
// ErrNothingToSchedule rather than producing a zero-length cache.
func TestDispatchEmptyTable(t *testing.T) {
	ft := NewFlowTable()
	if _, _, err := Dispatch(ft); err != ErrNothingToSchedule {
		t.Fatalf("Dispatch() error = %v, want ErrNothingToSchedule", err)
	}
}

// TestDispatchScenarioS1 reproduces the two-flow collision scenario.
func TestDispatchScenarioS1(t *testing.T) {
	ft := newSendTable(t,
		&FlowEntry{FlowID: 0, Offset: 0, Period: 300},
		&FlowEntry{FlowID: 1, Offset: 100, Period: 500},
	)

	cache, collisions, err := Dispatch(ft)
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}

	if cache.MacroPeriod != 1500 {
		t.Fatalf("MacroPeriod = %d, want 1500", cache.MacroPeriod)
	}
	if len(cache.Times) != 8 {
		t.Fatalf("size = %d, want 8", len(cache.Times))
	}

	want := []int64{0, 100, 300, 600, 600, 900, 1100, 1200}
	for i, w := range want {
		if cache.Times[i] != w {
			t.Fatalf("Times[%d] = %d, want %d (full: %v)", i, cache.Times[i], w, cache.Times)
		}
	}

	if len(collisions) != 1 {
		t.Fatalf("collisions = %v, want exactly one at instant 600", collisions)
	}
	if collisions[0].Instant != 600 {
		t.Fatalf("collision instant = %d, want 600", collisions[0].Instant)
	}
}

// TestDispatchScenarioS2 reproduces the single-flow scenario, including
// the Next() lookup at t=0.
func TestDispatchScenarioS2(t *testing.T) {
	ft := newSendTable(t, &FlowEntry{FlowID: 7, Offset: 250, Period: 1000})

	cache, collisions, err := Dispatch(ft)
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if len(collisions) != 0 {
		t.Fatalf("collisions = %v, want none", collisions)
	}
	if cache.MacroPeriod != 1000 {
		t.Fatalf("MacroPeriod = %d, want 1000", cache.MacroPeriod)
	}
	if len(cache.Times) != 1 || cache.Times[0] != 250 || cache.FlowIDs[0] != 7 {
		t.Fatalf("cache = %+v, want times=[250] flow_ids=[7]", cache)
	}

	wait, flowID, idx := cache.Next(0)
	if wait != 1000 || flowID != 7 || idx != 0 {
		t.Fatalf("Next(0) = (%d, %d, %d), want (1000, 7, 0)", wait, flowID, idx)
	}
}

// TestDispatchEveryEntryAppearsExactCount checks invariant 4: every entry
// appears exactly macro_period/period times and no time exceeds
// macro_period-1.
func TestDispatchEveryEntryAppearsExactCount(t *testing.T) {
	ft := newSendTable(t,
		&FlowEntry{FlowID: 0, Offset: 0, Period: 200},
		&FlowEntry{FlowID: 1, Offset: 50, Period: 300},
	)

	cache, _, err := Dispatch(ft)
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}

	counts := map[uint16]int{}
	for i, ft := range cache.FlowIDs {
		counts[ft]++
		if cache.Times[i] < 0 || cache.Times[i] >= cache.MacroPeriod {
			t.Fatalf("Times[%d] = %d out of [0, %d)", i, cache.Times[i], cache.MacroPeriod)
		}
	}

	if counts[0] != int(cache.MacroPeriod/200) {
		t.Fatalf("flow 0 appears %d times, want %d", counts[0], cache.MacroPeriod/200)
	}
	if counts[1] != int(cache.MacroPeriod/300) {
		t.Fatalf("flow 1 appears %d times, want %d", counts[1], cache.MacroPeriod/300)
	}

	for i := 1; i < len(cache.Times); i++ {
		if cache.Times[i] < cache.Times[i-1] {
			t.Fatalf("Times not ascending at %d: %v", i, cache.Times)
		}
	}
}

// TestSendCacheNextWrapsAround checks invariant 6 at the boundary: a
// lookup past the last instant wraps to size-1.
func TestSendCacheNextWrapsAround(t *testing.T) {
	ft := newSendTable(t, &FlowEntry{FlowID: 7, Offset: 250, Period: 1000})
	cache, _, err := Dispatch(ft)
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}

	wait, flowID, idx := cache.Next(999)
	if idx != 0 || flowID != 7 {
		t.Fatalf("Next(999) = (%d, %d, %d), want idx=0 flow=7", wait, flowID, idx)
	}
	if wait != 1000 {
		t.Fatalf("Next(999) wait = %d, want 1000 (wraps a full macro period)", wait)
	}
}
