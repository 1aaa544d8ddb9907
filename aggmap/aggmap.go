// Package aggmap implements the AggregationMap: a per-dimension,
// per-query run-length-encoded table mapping each source base id to
// a sequence of (target id, weight) pairs.
package aggmap

import (
	"sort"

	"github.com/grailbio/stoap/errs"
	"github.com/grailbio/stoap/rangeset"
)

type sequence struct {
	offset, length int
}

type run struct {
	begin  uint64
	seqIdx int32
}

// emptySeqIdx is sequence 0, reserved at construction time for
// "no targets" — used for any source id inside [minBase, maxBase]
// that never appeared in the build phase (a gap in the window).
const emptySeqIdx = 0

// Map is one dimension's AggregationMap for a single query.
type Map struct {
	minBase, maxBase uint64
	haveAny          bool

	targetIDs    []uint64
	weightBuffer []float64 // shorter than targetIDs unless some sequence needs it
	sequences    []sequence

	runStarts []run   // sparse mode, sorted ascending by begin
	dense     []int32 // dense mode: index by sourceID-minBase
	denseMode bool
	built     bool

	scratch map[uint64]map[uint64]float64 // baseID -> targetID -> weight
}

// New returns an empty AggregationMap ready for BuildBaseToParentMap
// calls.
func New() *Map {
	return &Map{
		sequences: []sequence{{0, 0}},
		scratch:   make(map[uint64]map[uint64]float64),
	}
}

// BuildBaseToParentMap folds targetID's base expansion into the
// scratch map: for every (baseID, weight) pair, it appends a row
// baseID -> (targetID, weight). Called once per target element of
// this dimension, before Compact.
func (m *Map) BuildBaseToParentMap(targetID uint64, bases *rangeset.WeightedSet) {
	for it := bases.Begin(); !it.Done(); it.Next() {
		baseID := it.Value()
		weight := bases.Weight(baseID)
		row := m.scratch[baseID]
		if row == nil {
			row = make(map[uint64]float64)
			m.scratch[baseID] = row
		}
		row[targetID] = weight

		if !m.haveAny {
			m.minBase, m.maxBase = baseID, baseID
			m.haveAny = true
		} else {
			if baseID < m.minBase {
				m.minBase = baseID
			}
			if baseID > m.maxBase {
				m.maxBase = baseID
			}
		}
	}
}

// Compact builds the run-start-encoded source->sequence table from the
// scratch map accumulated by BuildBaseToParentMap, storing one new
// sequence per distinct base id and choosing between
// the sparse run-starts representation and the dense lookup vector by
// comparing their memory footprints. It does not attempt to detect
// and reuse identical sequences across distinct base ids — that
// reuse-check is purely a memory optimization, not a correctness
// requirement, and is left out rather than carried forward disabled.
func (m *Map) Compact() {
	if m.built {
		return
	}
	m.built = true
	if !m.haveAny {
		return
	}

	sortedBases := make([]uint64, 0, len(m.scratch))
	for baseID := range m.scratch {
		sortedBases = append(sortedBases, baseID)
	}
	sort.Slice(sortedBases, func(i, j int) bool { return sortedBases[i] < sortedBases[j] })

	appendRun := func(begin uint64, seqIdx int32) {
		if len(m.runStarts) == 0 || m.runStarts[len(m.runStarts)-1].seqIdx != seqIdx {
			m.runStarts = append(m.runStarts, run{begin: begin, seqIdx: seqIdx})
		}
	}

	expected := m.minBase
	for _, baseID := range sortedBases {
		if baseID > expected {
			appendRun(expected, emptySeqIdx)
		}
		targets := m.scratch[baseID]
		ids := make([]uint64, 0, len(targets))
		for tid := range targets {
			ids = append(ids, tid)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		weights := make([]float64, len(ids))
		for i, tid := range ids {
			weights[i] = targets[tid]
		}
		seqIdx := m.storeDistributionSequence(ids, weights)
		appendRun(baseID, int32(seqIdx))
		expected = baseID + 1
	}
	if expected <= m.maxBase {
		appendRun(expected, emptySeqIdx)
	}

	windowSize := m.maxBase - m.minBase + 1
	sparseBytes := uint64(len(m.runStarts)) * 12
	denseBytes := windowSize * 4
	if sparseBytes > denseBytes {
		m.switchToDense(windowSize)
	}

	m.scratch = nil
}

func (m *Map) storeDistributionSequence(targetIDs []uint64, weights []float64) int {
	offset := len(m.targetIDs)
	m.targetIDs = append(m.targetIDs, targetIDs...)

	anyNonOne := false
	for _, w := range weights {
		if w != 1 {
			anyNonOne = true
			break
		}
	}
	if anyNonOne {
		for len(m.weightBuffer) < offset {
			m.weightBuffer = append(m.weightBuffer, 1)
		}
		m.weightBuffer = append(m.weightBuffer, weights...)
	}

	m.sequences = append(m.sequences, sequence{offset: offset, length: len(targetIDs)})
	return len(m.sequences) - 1
}

func (m *Map) switchToDense(windowSize uint64) {
	dense := make([]int32, windowSize)
	for i, r := range m.runStarts {
		end := m.maxBase
		if i+1 < len(m.runStarts) {
			end = m.runStarts[i+1].begin - 1
		}
		for id := r.begin; id <= end; id++ {
			dense[id-m.minBase] = r.seqIdx
		}
	}
	m.dense = dense
	m.denseMode = true
	m.runStarts = nil
}

// sequenceFor resolves sourceID to its sequence index.
func (m *Map) sequenceFor(sourceID uint64) int32 {
	if m.denseMode {
		return m.dense[sourceID-m.minBase]
	}
	i := sort.Search(len(m.runStarts), func(i int) bool {
		return m.runStarts[i].begin > sourceID
	})
	return m.runStarts[i-1].seqIdx
}

// GetTargets returns a TargetReader over sourceID's distribution
// sequence. It fails (as errs.Internal, the out-of-range-source-in-
// AggregationMap case) if sourceID is outside [minBase, maxBase].
func (m *Map) GetTargets(sourceID uint64) (*TargetReader, error) {
	if !m.haveAny || sourceID < m.minBase || sourceID > m.maxBase {
		return nil, errs.New(errs.Internal, "aggmap: source id %d out of range", sourceID)
	}
	seqIdx := m.sequenceFor(sourceID)
	seq := m.sequences[seqIdx]
	ids := m.targetIDs[seq.offset : seq.offset+seq.length]
	var weights []float64
	if seq.offset < len(m.weightBuffer) {
		end := seq.offset + seq.length
		if end > len(m.weightBuffer) {
			end = len(m.weightBuffer)
		}
		weights = m.weightBuffer[seq.offset:end]
	}
	return &TargetReader{ids: ids, weights: weights}, nil
}

// HasSource reports whether sourceID lies in range and resolves to a
// non-empty target sequence — the "real source for that dimension"
// test the aggregation processor's hot loop uses to discard
// irrelevant base cells cheaply.
func (m *Map) HasSource(sourceID uint64) bool {
	if !m.haveAny || sourceID < m.minBase || sourceID > m.maxBase {
		return false
	}
	seqIdx := m.sequenceFor(sourceID)
	return m.sequences[seqIdx].length > 0
}

// Bounds returns the map's [minBase, maxBase] window. Undefined if no
// base id was ever added.
func (m *Map) Bounds() (min, max uint64) { return m.minBase, m.maxBase }

// TargetReader is a forward iterator over one source's distribution
// sequence: its target ids and their weights (or implied weight 1).
type TargetReader struct {
	ids     []uint64
	weights []float64
	idx     int
}

// Size returns the number of targets in the sequence.
func (r *TargetReader) Size() int { return len(r.ids) }

// Reset repositions the reader at its first target.
func (r *TargetReader) Reset() { r.idx = 0 }

// Done reports whether the reader has advanced past the last target.
func (r *TargetReader) Done() bool { return r.idx >= len(r.ids) }

// Next advances the reader.
func (r *TargetReader) Next() { r.idx++ }

// Value returns the current target id.
func (r *TargetReader) Value() uint64 { return r.ids[r.idx] }

// Weight returns the current target's weight, or 1 if the weight
// buffer is absent or does not reach this index.
func (r *TargetReader) Weight() float64 {
	if r.idx >= len(r.weights) {
		return 1
	}
	return r.weights[r.idx]
}
