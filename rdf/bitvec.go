package rdf

import (
	"math/bits"
)

// BitVector represents a set of IDs as packed 64-bit words. Bit i is set iff
// ID i is a member. Capacity grows monotonically (doubling) to cover the
// largest ID seen; testing past the current capacity answers "not a member"
// rather than erroring. Binary operations between vectors of unequal
// capacity logically zero-extend the shorter operand.
//
// All word and bit offset arithmetic lives here; no other package computes
// word addresses directly.
type BitVector struct {
	words []uint64
}

// NewBitVector returns a vector sized to cover IDs in [0, capacity).
func NewBitVector(capacity int) *BitVector {
	if capacity <= 0 {
		return &BitVector{}
	}
	return &BitVector{words: make([]uint64, (capacity+63)/64)}
}

// grow ensures at least n words, doubling to amortize reallocation.
func (v *BitVector) grow(n int) {
	if n <= len(v.words) {
		return
	}
	newLen := len(v.words) * 2
	if newLen < n {
		newLen = n
	}
	next := make([]uint64, newLen)
	copy(next, v.words)
	v.words = next
}

// Set marks id as a member, growing capacity if needed.
func (v *BitVector) Set(id ID) {
	idx := int(id) >> 6
	if idx >= len(v.words) {
		v.grow(idx + 1)
	}
	v.words[idx] |= 1 << (uint(id) & 63)
}

// Test reports whether id is a member. Out-of-range IDs are non-members.
func (v *BitVector) Test(id ID) bool {
	idx := int(id) >> 6
	if idx >= len(v.words) {
		return false
	}
	return v.words[idx]&(1<<(uint(id)&63)) != 0
}

// And intersects v with other in place. Words of v beyond other's capacity
// are cleared, since other is logically zero there.
func (v *BitVector) And(other *BitVector) {
	n := len(other.words)
	if n > len(v.words) {
		n = len(v.words)
	}
	for i := 0; i < n; i++ {
		v.words[i] &= other.words[i]
	}
	for i := n; i < len(v.words); i++ {
		v.words[i] = 0
	}
}

// Or unions other into v in place, growing v to other's capacity if needed.
func (v *BitVector) Or(other *BitVector) {
	if len(other.words) > len(v.words) {
		v.grow(len(other.words))
	}
	for i, w := range other.words {
		v.words[i] |= w
	}
}

// AndNot removes other's members from v in place.
func (v *BitVector) AndNot(other *BitVector) {
	n := len(other.words)
	if n > len(v.words) {
		n = len(v.words)
	}
	for i := 0; i < n; i++ {
		v.words[i] &^= other.words[i]
	}
}

// Not returns the complement of v within v's current capacity.
func (v *BitVector) Not() *BitVector {
	out := &BitVector{words: make([]uint64, len(v.words))}
	for i, w := range v.words {
		out.words[i] = ^w
	}
	return out
}

// Popcount returns the number of members. bits.OnesCount64 compiles to the
// hardware POPCNT instruction where available.
func (v *BitVector) Popcount() int {
	n := 0
	for _, w := range v.words {
		n += bits.OnesCount64(w)
	}
	return n
}

// Any reports whether v has at least one member. Cheaper than Popcount when
// only emptiness matters.
func (v *BitVector) Any() bool {
	for _, w := range v.words {
		if w != 0 {
			return true
		}
	}
	return false
}

// Capacity returns the number of IDs the vector currently covers.
func (v *BitVector) Capacity() int {
	return len(v.words) * 64
}

// Clone returns a deep copy of v.
func (v *BitVector) Clone() *BitVector {
	out := &BitVector{words: make([]uint64, len(v.words))}
	copy(out.words, v.words)
	return out
}

// Equal reports whether v and other represent the same set, ignoring
// capacity differences.
func (v *BitVector) Equal(other *BitVector) bool {
	long, short := v.words, other.words
	if len(short) > len(long) {
		long, short = short, long
	}
	for i, w := range short {
		if long[i] != w {
			return false
		}
	}
	for _, w := range long[len(short):] {
		if w != 0 {
			return false
		}
	}
	return true
}

// Each calls yield for every member in ascending order, stopping early if
// yield returns false. Uses trailing-zero stripping so cost is proportional
// to capacity/64 plus the member count.
func (v *BitVector) Each(yield func(ID) bool) {
	for i, w := range v.words {
		for w != 0 {
			bit := bits.TrailingZeros64(w)
			if !yield(ID(i<<6 + bit)) {
				return
			}
			w &= w - 1
		}
	}
}

// Members returns the set as a sorted slice. Diagnostic paths only; hot
// paths iterate with Each.
func (v *BitVector) Members() []ID {
	out := make([]ID, 0, v.Popcount())
	v.Each(func(id ID) bool {
		out = append(out, id)
		return true
	})
	return out
}
