package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/pageza/chefai/backend/internal/recommend"
)

// DefaultHashDim is the vector size of a HashEmbedder built with a zero dimension.
const DefaultHashDim = 256

// HashEmbedder is a deterministic bag-of-words embedder using the hashing trick. It needs no
// network and is used when no Gemini key is configured.
type HashEmbedder struct {
	dim int
}

var _ recommend.TextEmbedder = HashEmbedder{}

func NewHashEmbedder(dim int) HashEmbedder {
	if dim <= 0 {
		dim = DefaultHashDim
	}
	return HashEmbedder{dim: dim}
}

func (h HashEmbedder) Name() string {
	return "hash-" + strconv.Itoa(h.dimension())
}

func (h HashEmbedder) dimension() int {
	if h.dim <= 0 {
		return DefaultHashDim
	}
	return h.dim
}

// Encode returns an L2-normalized vector. Text without words maps to the zero vector.
func (h HashEmbedder) Encode(_ context.Context, text string) ([]float32, error) {
	dim := h.dimension()
	vec := make([]float64, dim)

	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		hash := fnv.New64a()
		_, _ = hash.Write([]byte(w))
		sum := hash.Sum64()
		idx := int(sum % uint64(dim))
		if sum&(1<<63) != 0 {
			vec[idx]--
		} else {
			vec[idx]++
		}
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	out := make([]float32, dim)
	if norm == 0 {
		return out, nil
	}
	norm = math.Sqrt(norm)
	for i, v := range vec {
		out[i] = float32(v / norm)
	}
	return out, nil
}
