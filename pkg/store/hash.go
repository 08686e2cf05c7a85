package store

import "hash/fnv"

// Hashes is the structural/label/syntax hash triple computed on every
// node insertion. Structural ignores labels entirely (so two
// differently-named but structurally identical subtrees collide on
// structural hash, and are told apart only by the equality callback at
// insertion time); syntax folds in the label and is what hash-consing
// keys on.
type Hashes struct {
	Structural uint32
	Label      uint32
	Syntax     uint32
}

// Hash32 is the label/string hashing primitive used throughout: FNV-1a,
// the same non-cryptographic mixing function the ambient bloom filter
// package builds on (there FNV-128a for two independent halves; here a
// single 32-bit digest is all a label hash needs).
func Hash32(data []byte) uint32 {
	h := fnv.New32a()
	_, _ = h.Write(data)

	return h.Sum32()
}

// InnerNodeHash composes a node's hash from its type tag, label hash,
// subtree size and the sum of its children's hashes of the same kind.
// Passing label=0 yields the structural-only variant described in
// spec §4.1/§4.4 ("the structural hash is a pure function of (type, 0,
// size, child-syntax-hashes)"); passing the real label hash yields the
// full syntax hash used for hash-consing.
func InnerNodeHash(kind uint32, label uint32, size uint32, childHashSum uint32) uint32 {
	h := fnv.New32a()

	var buf [4]byte

	putUint32(&buf, kind)
	_, _ = h.Write(buf[:])
	putUint32(&buf, label)
	_, _ = h.Write(buf[:])
	putUint32(&buf, size)
	_, _ = h.Write(buf[:])
	putUint32(&buf, childHashSum)
	_, _ = h.Write(buf[:])

	return h.Sum32()
}

func putUint32(buf *[4]byte, v uint32) {
	buf[0] = byte(v >> 24)
	buf[1] = byte(v >> 16)
	buf[2] = byte(v >> 8)
	buf[3] = byte(v)
}

// SumChildHashes folds a slice of child hashes (structural or syntax, as
// selected by the caller) into the scalar InnerNodeHash expects.
func SumChildHashes(hashes []uint32) uint32 {
	var sum uint32
	for _, h := range hashes {
		sum += h
	}

	return sum
}
