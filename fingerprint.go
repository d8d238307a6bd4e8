package mapstream

import (
	"encoding/binary"
	"fmt"
	"hash"
	"math"
	"sort"

	"golang.org/x/crypto/blake2b"
)

// Fingerprint returns a BLAKE2b-256 digest of the map's contents.
//
// Keys are hashed in sorted order, so maps that are Equal fingerprint the
// same regardless of insertion order. Opaque values contribute their Go
// type and %v rendering.
func (m *Map) Fingerprint() [32]byte {
	h, _ := blake2b.New256(nil)
	writeMap(h, m)
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

func writeMap(h hash.Hash, m *Map) {
	keys := m.Keys()
	sort.Strings(keys)
	writeUint(h, byte(KindMap), uint64(len(keys)))
	for _, k := range keys {
		writeBytes(h, []byte(k))
		v, _ := m.Get(k)
		writeValue(h, v)
	}
}

func writeValue(h hash.Hash, v Value) {
	switch v.kind {
	case KindNull:
		h.Write([]byte{byte(KindNull)})
	case KindBool:
		b := uint64(0)
		if v.b {
			b = 1
		}
		writeUint(h, byte(KindBool), b)
	case KindInt:
		writeUint(h, byte(KindInt), uint64(v.i))
	case KindFloat:
		f := v.f
		if f == 0 {
			f = 0 // -0 and +0 are Equal
		}
		writeUint(h, byte(KindFloat), math.Float64bits(f))
	case KindString:
		h.Write([]byte{byte(KindString)})
		writeBytes(h, []byte(v.s))
	case KindList:
		writeUint(h, byte(KindList), uint64(len(v.list)))
		for _, e := range v.list {
			writeValue(h, e)
		}
	case KindMap:
		writeMap(h, v.m)
	case KindOpaque:
		h.Write([]byte{byte(KindOpaque)})
		writeBytes(h, []byte(fmt.Sprintf("%T:%v", v.o, v.o)))
	}
}

func writeUint(h hash.Hash, tag byte, u uint64) {
	var buf [9]byte
	buf[0] = tag
	binary.BigEndian.PutUint64(buf[1:], u)
	h.Write(buf[:])
}

func writeBytes(h hash.Hash, b []byte) {
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], uint64(len(b)))
	h.Write(n[:])
	h.Write(b)
}
