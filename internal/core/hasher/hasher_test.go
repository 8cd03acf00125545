// Package hasher_test contains tests for the hasher package.
package hasher_test

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"hash"
	"hash/crc32"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nightconcept/srihash/internal/core/hasher"
)

const (
	emptySHA256 = "47DEQpj8HBSa+/TImW+5JCeuQeRkm5NMpJWZG3hSuFU="
	emptySHA512 = "z4PhNX7vuL3xVChQ1m2AB9Yg5AULVxXcg/SpIdNs6c5H0NE8XYXysP+DGNKHfuwvY7kxvUdBeoGlODJ6+SfaPg=="
	greeting    = "Hello, srihash!"
)

// newMemComputer returns a Computer backed by an in-memory filesystem
// holding an empty sample.js and a greeting.txt.
func newMemComputer(t *testing.T, opts ...hasher.Option) (*hasher.Computer, afero.Fs) {
	t.Helper()
	memFs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(memFs, "fixtures/sample.js", nil, 0644))
	require.NoError(t, afero.WriteFile(memFs, "fixtures/greeting.txt", []byte(greeting), 0644))
	return hasher.New(append([]hasher.Option{hasher.WithFs(memFs)}, opts...)...), memFs
}

func wait(t *testing.T, p *hasher.Pending) (string, error) {
	t.Helper()
	require.NotNil(t, p)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return p.Wait(ctx)
}

func TestHash_EmptyFileDefaults(t *testing.T) {
	t.Parallel()
	c, _ := newMemComputer(t)

	p, err := c.Hash("fixtures/sample.js")
	require.NoError(t, err)
	digest, err := wait(t, p)
	require.NoError(t, err)
	assert.Equal(t, "sha256-"+emptySHA256, digest)
}

func TestHashOptions_NoPrefix(t *testing.T) {
	t.Parallel()
	c, _ := newMemComputer(t)

	p, err := c.HashOptions(hasher.FromFile("fixtures/sample.js").WithPrefix(false))
	require.NoError(t, err)
	digest, err := wait(t, p)
	require.NoError(t, err)
	assert.Equal(t, emptySHA256, digest)
}

func TestHashOptions_SHA512(t *testing.T) {
	t.Parallel()
	c, _ := newMemComputer(t)

	p, err := c.HashOptions(hasher.Options{File: "fixtures/sample.js", Hash: "sha512"})
	require.NoError(t, err)
	digest, err := wait(t, p)
	require.NoError(t, err)
	assert.Equal(t, "sha512-"+emptySHA512, digest)
}

func TestHashOptions_KnownContent(t *testing.T) {
	t.Parallel()
	c, _ := newMemComputer(t)

	tests := []struct {
		algorithm string
		expected  string
	}{
		{"sha256", "sha256-JqIgUmulv2oNOyHElUHkYVAVlvf8ZFHaBc8SNVnrKpk="},
		{"sha384", "sha384-rsDXSIAhZNsHx5hNlOfujKFJQLiEBLUsmeDFwNN8dKb+gW4DggOn3G3XhnNhuiRm"},
		{"sha512", "sha512-3mc2QAUO2kcUn8FCf9/21Zusp2qz5Gc/mCNmVZDg25GpBumpEVhHh032vzQLl0NZUx5gcHabVcWMPPg6Ru7sKQ=="},
		{"sha3-256", "sha3-256-RwXmCVVf9S14aAIhoDQaO2rbFn9SlI5ZCA3Yazl+r5E="},
		{"blake2b-256", "blake2b-256-sfc9twjnejnflTtZ/OWREKfCuZbA4AuZTQ7mseltLWU="},
		{"SHA256", "sha256-JqIgUmulv2oNOyHElUHkYVAVlvf8ZFHaBc8SNVnrKpk="},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.algorithm, func(t *testing.T) {
			t.Parallel()
			digest, err := c.Compute(hasher.FromFile("fixtures/greeting.txt").WithHash(tt.algorithm))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, digest)
		})
	}
}

func TestHash_Deterministic(t *testing.T) {
	t.Parallel()
	c, _ := newMemComputer(t)

	first, err := c.Compute(hasher.FromFile("fixtures/greeting.txt"))
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := c.Compute(hasher.FromFile("fixtures/greeting.txt"))
		require.NoError(t, err)
		assert.Equal(t, first, again, "Digest changed between calls")
	}
}

func TestHash_PrefixToggle(t *testing.T) {
	t.Parallel()
	c, _ := newMemComputer(t)

	for _, alg := range hasher.Algorithms() {
		opts := hasher.FromFile("fixtures/greeting.txt").WithHash(alg)
		prefixed, err := c.Compute(opts.WithPrefix(true))
		require.NoError(t, err, alg)
		bare, err := c.Compute(opts.WithPrefix(false))
		require.NoError(t, err, alg)
		assert.Equal(t, alg+"-"+bare, prefixed, alg)
	}
}

func TestHash_AlgorithmDigestLengths(t *testing.T) {
	t.Parallel()
	c, _ := newMemComputer(t)

	d256, err := c.Compute(hasher.FromFile("fixtures/greeting.txt").WithHash("sha256").WithPrefix(false))
	require.NoError(t, err)
	d512, err := c.Compute(hasher.FromFile("fixtures/greeting.txt").WithHash("sha512").WithPrefix(false))
	require.NoError(t, err)

	assert.NotEqual(t, d256, d512)
	raw256, err := base64.StdEncoding.DecodeString(d256)
	require.NoError(t, err)
	raw512, err := base64.StdEncoding.DecodeString(d512)
	require.NoError(t, err)
	assert.Len(t, raw256, 32)
	assert.Len(t, raw512, 64)
}

func TestHash_DefaultsMatchExplicitOptions(t *testing.T) {
	t.Parallel()
	c, _ := newMemComputer(t)

	p, err := c.Hash("fixtures/greeting.txt")
	require.NoError(t, err)
	implicit, err := wait(t, p)
	require.NoError(t, err)

	explicit, err := c.Compute(hasher.Options{File: "fixtures/greeting.txt"}.WithHash("sha256").WithPrefix(true))
	require.NoError(t, err)
	assert.Equal(t, explicit, implicit)
}

func TestHash_MissingFile(t *testing.T) {
	t.Parallel()
	c, _ := newMemComputer(t)

	p, err := c.Hash("fixtures/nooooooo.js")
	require.NoError(t, err, "A missing file must not fail synchronously")

	digest, err := wait(t, p)
	require.Error(t, err)
	assert.Empty(t, digest)
	assert.ErrorIs(t, err, hasher.ErrIO)
	assert.ErrorIs(t, err, fs.ErrNotExist)

	var ioErr *hasher.IOError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, "ENOENT", ioErr.Code())
	assert.Equal(t, "fixtures/nooooooo.js", ioErr.Path)
}

func TestHash_MissingFileOnDisk(t *testing.T) {
	t.Parallel()
	missing := filepath.Join(t.TempDir(), "nooooooo.js")

	p, err := hasher.Hash(missing)
	require.NoError(t, err)
	_, err = wait(t, p)
	require.Error(t, err)
	assert.True(t, os.IsNotExist(errors.Unwrap(err)), "Underlying error should be a not-exist error")

	var pathErr *fs.PathError
	assert.ErrorAs(t, err, &pathErr)
}

func TestHash_Directory(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	p, err := hasher.Hash(dir)
	require.NoError(t, err)
	digest, err := wait(t, p)
	require.Error(t, err)
	assert.Empty(t, digest)
	assert.ErrorIs(t, err, hasher.ErrIO)
	assert.NotErrorIs(t, err, fs.ErrNotExist)
}

func TestHash_UnsupportedAlgorithm(t *testing.T) {
	t.Parallel()
	c, _ := newMemComputer(t)

	p, err := c.HashOptions(hasher.FromFile("fixtures/sample.js").WithHash("md4"))
	require.NoError(t, err, "An unknown algorithm must be reported through the result")

	digest, err := wait(t, p)
	require.Error(t, err)
	assert.Empty(t, digest)
	assert.ErrorIs(t, err, hasher.ErrUnsupportedAlgorithm)

	var algErr *hasher.UnsupportedAlgorithmError
	require.ErrorAs(t, err, &algErr)
	assert.Equal(t, "md4", algErr.Name)
}

func TestHash_EmptyPathIsInvalidArgument(t *testing.T) {
	t.Parallel()
	c, _ := newMemComputer(t)

	for _, opts := range []hasher.Options{{}, {Hash: "sha512"}} {
		p, err := c.HashOptions(opts)
		assert.ErrorIs(t, err, hasher.ErrInvalidArgument)
		assert.Nil(t, p, "No deferred result may be returned for a usage error")
	}

	p, err := c.Hash("")
	assert.ErrorIs(t, err, hasher.ErrInvalidArgument)
	assert.Nil(t, p)

	_, err = c.Compute(hasher.Options{})
	assert.ErrorIs(t, err, hasher.ErrInvalidArgument)
}

func TestHash_WhitespaceFilename(t *testing.T) {
	t.Parallel()
	c, memFs := newMemComputer(t)
	require.NoError(t, afero.WriteFile(memFs, " ", nil, 0644))

	p, err := c.Hash(" ")
	require.NoError(t, err, "A blank but non-empty name is a valid path")
	digest, err := wait(t, p)
	require.NoError(t, err)
	assert.Equal(t, "sha256-"+emptySHA256, digest)

	p, err = c.Hash("   ")
	require.NoError(t, err, "A missing blank name must fail through the result")
	_, err = wait(t, p)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestHash_PrefixUsesLowercaseName(t *testing.T) {
	t.Parallel()
	c, _ := newMemComputer(t)

	for _, name := range []string{"SHA512", "Sha512", "sha512"} {
		p, err := c.HashOptions(hasher.FromFile("fixtures/sample.js").WithHash(name))
		require.NoError(t, err, name)
		digest, err := wait(t, p)
		require.NoError(t, err, name)
		assert.Equal(t, "sha512-"+emptySHA512, digest, "Prefix should not keep the caller's casing for %q", name)
	}
}

func TestHash_PermissionDenied(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root bypasses file permissions")
	}
	t.Parallel()
	locked := filepath.Join(t.TempDir(), "locked.js")
	require.NoError(t, os.WriteFile(locked, []byte(greeting), 0o000))

	p, err := hasher.Hash(locked)
	require.NoError(t, err)
	digest, err := wait(t, p)
	require.Error(t, err)
	assert.Empty(t, digest)
	assert.ErrorIs(t, err, hasher.ErrIO)
	assert.ErrorIs(t, err, fs.ErrPermission)

	var ioErr *hasher.IOError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, "EACCES", ioErr.Code())
}

func TestHashFunc_Success(t *testing.T) {
	t.Parallel()
	c, _ := newMemComputer(t)

	type outcome struct {
		err    error
		digest string
	}
	results := make(chan outcome, 2)
	err := c.HashFunc(hasher.FromFile("fixtures/sample.js"), func(err error, digest string) {
		results <- outcome{err, digest}
	})
	require.NoError(t, err)

	select {
	case got := <-results:
		assert.NoError(t, got.err)
		assert.Equal(t, "sha256-"+emptySHA256, got.digest)
	case <-time.After(5 * time.Second):
		t.Fatal("Completion func was not called")
	}

	select {
	case <-results:
		t.Fatal("Completion func was called more than once")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHashFunc_MissingFile(t *testing.T) {
	t.Parallel()
	c, _ := newMemComputer(t)

	done := make(chan struct{})
	err := c.HashFunc(hasher.FromFile("fixtures/nooooooo.js"), func(err error, digest string) {
		defer close(done)
		assert.ErrorIs(t, err, fs.ErrNotExist)
		assert.Empty(t, digest)
	})
	require.NoError(t, err)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Completion func was not called")
	}
}

func TestHashFunc_InvalidArgumentNeverCallsBack(t *testing.T) {
	t.Parallel()
	c, _ := newMemComputer(t)

	called := make(chan struct{}, 1)
	err := c.HashFunc(hasher.Options{}, func(error, string) { called <- struct{}{} })
	require.ErrorIs(t, err, hasher.ErrInvalidArgument)

	err = c.HashFunc(hasher.FromFile("fixtures/sample.js"), nil)
	require.ErrorIs(t, err, hasher.ErrInvalidArgument)

	select {
	case <-called:
		t.Fatal("Completion func must not run for a usage error")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHash_ChannelsAgree(t *testing.T) {
	t.Parallel()
	c, _ := newMemComputer(t)
	opts := hasher.FromFile("fixtures/greeting.txt").WithHash("sha384")

	p, err := c.HashOptions(opts)
	require.NoError(t, err)
	deferred, err := wait(t, p)
	require.NoError(t, err)

	viaFunc := make(chan string, 1)
	require.NoError(t, c.HashFunc(opts, func(err error, digest string) {
		assert.NoError(t, err)
		viaFunc <- digest
	}))

	select {
	case digest := <-viaFunc:
		assert.Equal(t, deferred, digest)
	case <-time.After(5 * time.Second):
		t.Fatal("Completion func was not called")
	}
}

func TestHash_SmallChunksMatchSinglePass(t *testing.T) {
	t.Parallel()
	content := bytes.Repeat([]byte("0123456789abcdef"), 4099)
	c, memFs := newMemComputer(t, hasher.WithChunkSize(7))
	require.NoError(t, afero.WriteFile(memFs, "big.bin", content, 0644))

	sum := sha256.Sum256(content)
	expected := "sha256-" + base64.StdEncoding.EncodeToString(sum[:])

	digest, err := c.Compute(hasher.FromFile("big.bin"))
	require.NoError(t, err)
	assert.Equal(t, expected, digest)
}

func TestHash_ConcurrentCalls(t *testing.T) {
	t.Parallel()
	c, memFs := newMemComputer(t)

	const n = 32
	expected := make([]string, n)
	pending := make([]*hasher.Pending, n)
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("files/%02d.txt", i)
		content := []byte(strings.Repeat(name, i+1))
		require.NoError(t, afero.WriteFile(memFs, name, content, 0644))
		sum := sha256.Sum256(content)
		expected[i] = "sha256-" + base64.StdEncoding.EncodeToString(sum[:])

		p, err := c.Hash(name)
		require.NoError(t, err)
		pending[i] = p
	}

	for i, p := range pending {
		digest, err := wait(t, p)
		require.NoError(t, err)
		assert.Equal(t, expected[i], digest)
	}
}

// gatedHash blocks every Write until release is closed.
type gatedHash struct {
	hash.Hash
	release <-chan struct{}
}

func (g gatedHash) Write(p []byte) (int, error) {
	<-g.release
	return g.Hash.Write(p)
}

func TestPending_WaitRespectsContext(t *testing.T) {
	t.Parallel()
	release := make(chan struct{})
	c, _ := newMemComputer(t, hasher.WithAlgorithm("gated", func() hash.Hash {
		return gatedHash{Hash: sha256.New(), release: release}
	}))

	p, err := c.HashOptions(hasher.FromFile("fixtures/greeting.txt").WithHash("gated").WithPrefix(false))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.Wait(ctx)
	require.ErrorIs(t, err, context.Canceled)

	select {
	case <-p.Done():
		t.Fatal("Computation finished before its hash was released")
	default:
	}

	close(release)
	digest, err := wait(t, p)
	require.NoError(t, err)
	assert.Equal(t, "JqIgUmulv2oNOyHElUHkYVAVlvf8ZFHaBc8SNVnrKpk=", digest)
}

func TestWithAlgorithm_Custom(t *testing.T) {
	t.Parallel()
	c, _ := newMemComputer(t, hasher.WithAlgorithm("CRC32", func() hash.Hash { return crc32.NewIEEE() }))

	digest, err := c.Compute(hasher.FromFile("fixtures/sample.js").WithHash("crc32"))
	require.NoError(t, err)
	assert.Equal(t, "crc32-AAAAAA==", digest)
}

func TestAlgorithms(t *testing.T) {
	t.Parallel()
	names := hasher.Algorithms()
	assert.Contains(t, names, "sha256")
	assert.Contains(t, names, "sha512")
	assert.Contains(t, names, "blake3")
	assert.IsIncreasing(t, names)

	assert.True(t, hasher.Supported("SHA512"))
	assert.False(t, hasher.Supported("md5"))
}

func TestOptions_Effective(t *testing.T) {
	t.Parallel()
	opts := hasher.FromFile("a.js")
	assert.Equal(t, "sha256", opts.Algorithm())
	assert.True(t, opts.Prefixed())

	opts = opts.WithHash("SHA384").WithPrefix(false)
	assert.Equal(t, "sha384", opts.Algorithm())
	assert.False(t, opts.Prefixed())
	assert.Equal(t, "a.js", opts.File)
}
