// Package storage implements the base-value storage: a dense,
// open-addressing hash map from packed 64-bit cell key to float64,
// and the identically-shaped result storage the aggregation
// processor scatters into.
//
// The table is a flat slice of slots rather than Go's built-in map,
// grounded on the sharded open-addressing idiom in
// encoding/bamprovider/concurrentmap.go, stripped of its concurrency:
// a single query owns its storage for the whole aggregation pass, and
// the underlying base storage is read-only once loaded, so no
// locking is needed.
package storage

import (
	"encoding/binary"

	"blainsmith.com/go/seahash"

	"github.com/grailbio/stoap/bitutil"
	"github.com/grailbio/stoap/key"
)

const (
	maxLoadFactorNum = 3
	maxLoadFactorDen = 4
)

type slot struct {
	k uint64
	v float64
}

// Storage is an open-addressing hash table from packed cell key to
// float64. The zero value is not usable; use New.
type Storage struct {
	slots []slot
	count int
}

// New returns an empty storage pre-sized to hold at least capacity
// entries without rehashing, per the engine's policy of preallocating
// transient buffers to their worst-case size at query setup.
func New(capacity int) *Storage {
	n := bitutil.NextPow2(uint64(capacity)*maxLoadFactorDen/maxLoadFactorNum + 1)
	if n < 8 {
		n = 8
	}
	s := &Storage{slots: make([]slot, n)}
	for i := range s.slots {
		s.slots[i].k = key.None
	}
	return s
}

func hashSlot(k uint64, n int) int {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], k)
	h := seahash.Sum64(buf[:])
	return int(h & uint64(n-1))
}

func (s *Storage) grow() {
	old := s.slots
	s.slots = make([]slot, len(old)*2)
	for i := range s.slots {
		s.slots[i].k = key.None
	}
	s.count = 0
	for _, sl := range old {
		if sl.k != key.None {
			s.Set(sl.k, sl.v)
		}
	}
}

func (s *Storage) maybeGrow() {
	if uint64(len(s.slots))*maxLoadFactorNum <= uint64(s.count+1)*maxLoadFactorDen {
		s.grow()
	}
}

// Set stores value under k, overwriting any existing entry. k must
// not equal key.None, the reserved empty-slot sentinel; callers that
// control the key codec's layout are guaranteed this by construction
// (see the key package's NewCodec documentation).
func (s *Storage) Set(k uint64, value float64) {
	s.maybeGrow()
	n := len(s.slots)
	i := hashSlot(k, n)
	for {
		if s.slots[i].k == key.None {
			s.slots[i] = slot{k: k, v: value}
			s.count++
			return
		}
		if s.slots[i].k == k {
			s.slots[i].v = value
			return
		}
		i = (i + 1) & (n - 1)
	}
}

// Add scatter-adds delta into k's stored value (creating the entry if
// absent). This is the write path the aggregation processor uses
// against result storage.
func (s *Storage) Add(k uint64, delta float64) {
	s.maybeGrow()
	n := len(s.slots)
	i := hashSlot(k, n)
	for {
		if s.slots[i].k == key.None {
			s.slots[i] = slot{k: k, v: delta}
			s.count++
			return
		}
		if s.slots[i].k == k {
			s.slots[i].v += delta
			return
		}
		i = (i + 1) & (n - 1)
	}
}

// Get returns the value stored under k and whether it was found.
func (s *Storage) Get(k uint64) (float64, bool) {
	n := len(s.slots)
	i := hashSlot(k, n)
	for {
		if s.slots[i].k == key.None {
			return 0, false
		}
		if s.slots[i].k == k {
			return s.slots[i].v, true
		}
		i = (i + 1) & (n - 1)
	}
}

// Size returns the number of stored entries.
func (s *Storage) Size() int { return s.count }

// Each calls fn once per stored (key, value) pair, in slot order. The
// order is a fixed function of insertion history and table size, so
// iterating an unchanged table twice visits entries in the same order
// both times — the determinism property the processor's source-based
// strategy relies on.
func (s *Storage) Each(fn func(k uint64, v float64)) {
	for _, sl := range s.slots {
		if sl.k != key.None {
			fn(sl.k, sl.v)
		}
	}
}
