package driver

import (
	"crypto/sha256"
	"encoding/binary"

	"llasm/internal/asm"
)

// Digest keys entries of the disk cache.
type Digest [32]byte

// cacheKey: H(schema || align policy || content hash). Политика align влияет
// на исход разбора, поэтому входит в ключ.
func cacheKey(content [32]byte, align asm.AlignPolicy) Digest {
	h := sha256.New()
	var hdr [3]byte
	binary.LittleEndian.PutUint16(hdr[:2], diskCacheSchemaVersion)
	hdr[2] = byte(align)
	_, _ = h.Write(hdr[:])
	_, _ = h.Write(content[:])
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}
