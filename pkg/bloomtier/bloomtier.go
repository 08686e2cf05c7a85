// Package bloomtier implements the inline reference-set bloom filter that
// a folded directory node carries, sized by a fixed tier table keyed on
// the directory's resolved reference count rather than a dynamically
// computed optimal size. Each tier reuses the Kirsch/Mitzenmacher
// double-hashing technique (two FNV-128a halves deriving k bit
// positions) so membership probes stay branch-predictable regardless of
// tier width.
package bloomtier

import (
	"encoding/binary"
	"hash/fnv"
)

// Tier names a fixed bit-array width. The zero value is TierNone.
type Tier int

const (
	TierNone Tier = iota
	Tier16        // u16
	Tier32        // u32
	Tier64        // u64
	Tier128       // 2x64
	Tier256       // 4x64
	Tier512       // 8x64
	Tier1024      // 16x64
	Tier2048      // 32x64
	TierMuch      // unconditional match, no filter participates in lookup
)

// bits returns the bit-array width for a tier; TierNone and TierMuch have
// no backing array.
func (t Tier) bits() uint {
	switch t {
	case Tier16:
		return 16
	case Tier32:
		return 32
	case Tier64:
		return 64
	case Tier128:
		return 128
	case Tier256:
		return 256
	case Tier512:
		return 512
	case Tier1024:
		return 1024
	case Tier2048:
		return 2048
	case TierNone, TierMuch:
		return 0
	default:
		return 0
	}
}

// hashCount is k, the number of derived bit positions probed per element.
// Fixed at 3 across all sized tiers — the table trades space for
// predictability, not for an optimal false-positive rate per tier.
const hashCount = 3

// SelectTier maps a resolved reference count (and the skipped_ana flag)
// to its bloom tier, per the fixed threshold table: 0, 8, 15, 30, 100,
// 150, 256, 512, 1024, 2048 map to None, 16, 32, 64, 128, 256, 512,
// 1024, 2048, 2048 respectively; skipped_ana or refs > 2048 always
// yields TierMuch, since the reference set itself is elided and the
// filter cannot participate in lookup at all.
func SelectTier(refsCount int, skippedAna bool) Tier {
	switch {
	case skippedAna || refsCount > 2048:
		return TierMuch
	case refsCount > 1024:
		return Tier2048
	case refsCount > 512:
		return Tier2048
	case refsCount > 256:
		return Tier1024
	case refsCount > 150:
		return Tier512
	case refsCount > 100:
		return Tier256
	case refsCount > 30:
		return Tier128
	case refsCount > 15:
		return Tier64
	case refsCount > 8:
		return Tier32
	case refsCount > 0:
		return Tier16
	default:
		return TierNone
	}
}

// Filter is the inline bloom filter attached to a folded directory node.
// A TierNone filter always reports "not present"; a TierMuch filter
// always reports "present" — it stands in for an elided reference set.
type Filter struct {
	tier  Tier
	words []uint64
}

// New allocates a filter of the given tier, empty.
func New(tier Tier) Filter {
	n := tier.bits()
	if n == 0 {
		return Filter{tier: tier}
	}

	words := (n + 63) / 64

	return Filter{tier: tier, words: make([]uint64, words)}
}

// Tier reports the filter's tier.
func (f Filter) Tier() Tier { return f.tier }

// Add inserts data into the filter. A no-op on TierNone and TierMuch.
func (f *Filter) Add(data []byte) {
	if f.tier == TierNone || f.tier == TierMuch {
		return
	}

	h1, h2 := hashKernel(data)
	m := uint64(f.tier.bits())

	for i := uint64(0); i < hashCount; i++ {
		pos := (h1 + i*h2) % m
		f.words[pos/64] |= 1 << (pos % 64)
	}
}

// Test reports whether data is possibly in the filter. TierNone always
// returns false; TierMuch always returns true (the directory's
// reference set was elided, so membership cannot be ruled out).
func (f Filter) Test(data []byte) bool {
	switch f.tier {
	case TierNone:
		return false
	case TierMuch:
		return true
	}

	h1, h2 := hashKernel(data)
	m := uint64(f.tier.bits())

	for i := uint64(0); i < hashCount; i++ {
		pos := (h1 + i*h2) % m
		if f.words[pos/64]&(1<<(pos%64)) == 0 {
			return false
		}
	}

	return true
}

// hashKernel derives two 64-bit hashes from an FNV-128a digest, the same
// double-hashing split used by the ambient dynamic bloom filter.
func hashKernel(data []byte) (h1, h2 uint64) {
	h := fnv.New128a()
	_, _ = h.Write(data)
	sum := h.Sum(nil)

	h1 = binary.BigEndian.Uint64(sum[:8])
	h2 = binary.BigEndian.Uint64(sum[8:])
	h2 |= 1

	return h1, h2
}
