package driver

import "github.com/zeebo/xxh3"

// seenLines remembers line hashes. Two distinct lines with the same 64-bit
// hash are treated as duplicates.
type seenLines map[uint64]struct{}

// add reports whether line was not seen before.
func (s seenLines) add(line []byte) bool {
	h := xxh3.Hash(line)
	if _, ok := s[h]; ok {
		return false
	}
	s[h] = struct{}{}
	return true
}
