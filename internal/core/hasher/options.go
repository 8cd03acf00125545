package hasher

import (
	"fmt"
	"strings"
)

// Options describes a single digest request.
//
//	File    path of the file to hash (required)
//	Hash    algorithm name, DefaultAlgorithm when empty
//	Prefix  prepend "<hash>-" to the digest, true when nil
type Options struct {
	File   string `json:"file" toml:"file"`
	Hash   string `json:"hash,omitempty" toml:"hash,omitempty"`
	Prefix *bool  `json:"prefix,omitempty" toml:"prefix,omitempty"`
}

// FromFile returns the options used when only a filename is given.
func FromFile(path string) Options {
	return Options{File: path}
}

// WithHash returns a copy of o using the named algorithm.
func (o Options) WithHash(name string) Options {
	o.Hash = name
	return o
}

// WithPrefix returns a copy of o with prefixing switched on or off.
func (o Options) WithPrefix(prefix bool) Options {
	o.Prefix = &prefix
	return o
}

// Algorithm returns the effective algorithm name after defaults are applied.
func (o Options) Algorithm() string {
	if o.Hash == "" {
		return DefaultAlgorithm
	}
	return strings.ToLower(o.Hash)
}

// Prefixed returns the effective prefix setting after defaults are applied.
func (o Options) Prefixed() bool {
	if o.Prefix == nil {
		return true
	}
	return *o.Prefix
}

// request is the normalized, immutable form of Options.
type request struct {
	file   string
	hash   string
	prefix bool
}

func (o Options) normalize() (request, error) {
	if o.File == "" {
		return request{}, fmt.Errorf("%w: no file to hash", ErrInvalidArgument)
	}
	return request{
		file:   o.File,
		hash:   o.Algorithm(),
		prefix: o.Prefixed(),
	}, nil
}
