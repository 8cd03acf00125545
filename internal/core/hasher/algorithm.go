package hasher

import (
	"crypto/sha256"
	"crypto/sha512"
	"hash"
	"sort"
	"strings"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// DefaultAlgorithm is used when the caller does not name one.
const DefaultAlgorithm = "sha256"

// NewHashFunc constructs a fresh hash accumulator.
type NewHashFunc func() hash.Hash

// defaultAlgorithms maps the names accepted in Options.Hash to their
// constructors. Keys are lower case.
var defaultAlgorithms = map[string]NewHashFunc{
	"sha256":     sha256.New,
	"sha384":     sha512.New384,
	"sha512":     sha512.New,
	"sha512-256": sha512.New512_256,
	"sha3-256":   sha3.New256,
	"sha3-384":   sha3.New384,
	"sha3-512":   sha3.New512,
	"blake2b-256": func() hash.Hash {
		// A nil key never fails.
		h, _ := blake2b.New256(nil)
		return h
	},
	"blake2b-512": func() hash.Hash {
		h, _ := blake2b.New512(nil)
		return h
	},
	"blake3": func() hash.Hash { return blake3.New() },
}

// Algorithms returns the sorted names of the built-in algorithms.
func Algorithms() []string {
	names := make([]string, 0, len(defaultAlgorithms))
	for name := range defaultAlgorithms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Supported reports whether name is a built-in algorithm.
func Supported(name string) bool {
	_, ok := defaultAlgorithms[strings.ToLower(name)]
	return ok
}

func copyAlgorithms() map[string]NewHashFunc {
	m := make(map[string]NewHashFunc, len(defaultAlgorithms))
	for name, fn := range defaultAlgorithms {
		m[name] = fn
	}
	return m
}
