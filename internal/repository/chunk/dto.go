package chunk

import (
	"encoding/binary"
	"math"
	"strconv"

	"github.com/kognita-cloud/ragdex/internal/domain"
)

func parseChunkFields(id string, m map[string]string) domain.Chunk {
	index, _ := strconv.Atoi(m["index"])
	return domain.Chunk{
		ID:         id,
		DocumentID: m["document_id"],
		Index:      index,
		Content:    m["content"],
	}
}

// vectorToString serializes []float32 to a binary string (4 bytes per float,
// little-endian).
func vectorToString(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}

// stringToVector deserializes a binary string back to []float32. Malformed
// input yields nil, which similarity scoring treats as score 0.
func stringToVector(s string) []float32 {
	b := []byte(s)
	if len(b) == 0 || len(b)%4 != 0 {
		return nil
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}
