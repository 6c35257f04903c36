package tt

import (
	"sort"
)

// SendCache is the dispatcher's output for one port: the sorted timeline of
// firing instants within a single macro period, paired with the flow id
// that fires at each instant.
type SendCache struct {
	MacroPeriod int64
	Times       []int64
	FlowIDs     []uint16
}

// Collision describes two entries whose expanded instants coincided during
// dispatch. The schedule is still installed; collisions are reported, not
// rejected.
type Collision struct {
	Instant int64
	FlowIDA uint16
	FlowIDB uint16
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func lcm(a, b int64) int64 {
	return a / gcd(a, b) * b
}

// Dispatch computes the macro period of every entry in table and expands
// it into a sorted (time, flow_id) timeline. It returns any collisions
// detected during the scan alongside the installed cache: a collision
// does not abort installation.
func Dispatch(ft *FlowTable) (*SendCache, []Collision, error) {
	entries := ft.Entries()
	if len(entries) == 0 {
		return nil, nil, ErrNothingToSchedule
	}

	macroPeriod := entries[0].Period
	for _, e := range entries[1:] {
		macroPeriod = lcm(macroPeriod, e.Period)
	}

	size := 0
	for _, e := range entries {
		size += int(macroPeriod / e.Period)
	}

	times := make([]int64, 0, size)
	flowIDs := make([]uint16, 0, size)

	for _, e := range entries {
		for k := e.Offset; k < macroPeriod; k += e.Period {
			times = append(times, k)
			flowIDs = append(flowIDs, e.FlowID)
		}
	}

	sortTimeline(times, flowIDs)

	var collisions []Collision
	for i := 1; i < len(times); i++ {
		if times[i] <= times[i-1] {
			collisions = append(collisions, Collision{
				Instant: times[i],
				FlowIDA: flowIDs[i-1],
				FlowIDB: flowIDs[i],
			})
		}
	}

	cache := &SendCache{
		MacroPeriod: macroPeriod,
		Times:       times,
		FlowIDs:     flowIDs,
	}
	return cache, collisions, nil
}

// sortTimeline sorts times ascending, carrying flowIDs along as a
// parallel array. sort.Sort over an index-based Swap keeps the pairing
// intact; stability is not required.
func sortTimeline(times []int64, flowIDs []uint16) {
	sort.Sort(&timelineSorter{times: times, flowIDs: flowIDs})
}

type timelineSorter struct {
	times   []int64
	flowIDs []uint16
}

func (s *timelineSorter) Len() int { return len(s.times) }

func (s *timelineSorter) Less(i, j int) bool { return s.times[i] < s.times[j] }

func (s *timelineSorter) Swap(i, j int) {
	s.times[i], s.times[j] = s.times[j], s.times[i]
	s.flowIDs[i], s.flowIDs[j] = s.flowIDs[j], s.flowIDs[i]
}

// Next locates the timeline slot due at or before modTime by binary
// search: idx is the greatest i with Times[i] <= modTime, wrapping to
// size-1 if none. It returns the
// wait until the following instant (with the macro-period wraparound
// adjustment already applied), the flow id due to fire, and the index
// itself for callers that need it (the timer handler computes the send
// instant from Times[idx]).
func (c *SendCache) Next(modTime int64) (waitNs int64, flowID uint16, idx int) {
	size := len(c.Times)

	// sort.Search finds the first index where Times[i] > modTime; the
	// entry actually due is one position back, wrapping to the last
	// entry when modTime precedes every recorded instant.
	insertion := sort.Search(size, func(i int) bool {
		return c.Times[i] > modTime
	})

	idx = insertion - 1
	if idx < 0 {
		idx = size - 1
	}

	next := (idx + 1) % size
	waitNs = c.Times[next] - c.Times[idx]
	if next <= idx {
		waitNs += c.MacroPeriod
	}

	return waitNs, c.FlowIDs[idx], idx
}
