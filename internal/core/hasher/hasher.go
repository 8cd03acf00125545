// Package hasher computes Subresource Integrity digests of files.
//
// A digest is the base64 encoding of a file's hash, optionally prefixed with
// the algorithm name ("sha256-47DEQpj8..."). Files are streamed through the
// hash in fixed-size chunks, so memory use does not depend on file size.
//
// Each request can be consumed as a deferred result (Hash, HashOptions) or
// through a completion callback (HashFunc). Both share one computation path.
// A missing file path is reported synchronously as ErrInvalidArgument; every
// other failure is delivered through the result.
package hasher

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// DefaultChunkSize is the read buffer used while streaming a file.
const DefaultChunkSize = 32 * 1024

// CompleteFunc receives the outcome of HashFunc. Exactly one of err and
// digest is set.
type CompleteFunc func(err error, digest string)

// Computer streams files from a filesystem into hash accumulators.
// It holds no per-call state and is safe for concurrent use.
type Computer struct {
	fs         afero.Fs
	algorithms map[string]NewHashFunc
	chunkSize  int
	log        logrus.FieldLogger
}

// Option configures a Computer.
type Option func(*Computer)

// WithFs reads files from fs instead of the OS filesystem.
func WithFs(fs afero.Fs) Option {
	return func(c *Computer) { c.fs = fs }
}

// WithChunkSize sets the read buffer size. Values below 1 are ignored.
func WithChunkSize(n int) Option {
	return func(c *Computer) {
		if n > 0 {
			c.chunkSize = n
		}
	}
}

// WithLogger sends debug output to log.
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Computer) {
		if log != nil {
			c.log = log
		}
	}
}

// WithAlgorithm registers (or replaces) an algorithm under name.
func WithAlgorithm(name string, fn NewHashFunc) Option {
	return func(c *Computer) { c.algorithms[strings.ToLower(name)] = fn }
}

// New returns a Computer reading from the OS filesystem with the built-in
// algorithms.
func New(opts ...Option) *Computer {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	c := &Computer{
		fs:         afero.NewOsFs(),
		algorithms: copyAlgorithms(),
		chunkSize:  DefaultChunkSize,
		log:        discard,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compute hashes the file described by opts and blocks until done.
func (c *Computer) Compute(opts Options) (string, error) {
	req, err := opts.normalize()
	if err != nil {
		return "", err
	}
	return c.compute(req)
}

// Hash starts hashing path with the default algorithm and prefixing.
func (c *Computer) Hash(path string) (*Pending, error) {
	return c.HashOptions(FromFile(path))
}

// HashOptions starts hashing the file described by opts and returns the
// deferred result. The only error returned directly is ErrInvalidArgument.
func (c *Computer) HashOptions(opts Options) (*Pending, error) {
	req, err := opts.normalize()
	if err != nil {
		return nil, err
	}
	return c.start(req), nil
}

// HashFunc starts hashing the file described by opts and calls done exactly
// once, from another goroutine, when the outcome is known. The only error
// returned directly is ErrInvalidArgument, in which case done is never called.
func (c *Computer) HashFunc(opts Options, done CompleteFunc) error {
	if done == nil {
		return fmt.Errorf("%w: nil completion func", ErrInvalidArgument)
	}
	p, err := c.HashOptions(opts)
	if err != nil {
		return err
	}
	go func() {
		digest, err := p.Wait(context.Background())
		done(err, digest)
	}()
	return nil
}

func (c *Computer) start(req request) *Pending {
	p := newPending()
	go func() {
		p.resolve(c.compute(req))
	}()
	return p
}

func (c *Computer) compute(req request) (string, error) {
	log := c.log.WithFields(logrus.Fields{"file": req.file, "algorithm": req.hash})

	newHash, ok := c.algorithms[req.hash]
	if !ok {
		log.Debug("unsupported algorithm")
		return "", &UnsupportedAlgorithmError{Name: req.hash}
	}

	f, err := c.fs.Open(req.file)
	if err != nil {
		log.WithError(err).Debug("open failed")
		return "", &IOError{Path: req.file, Err: err}
	}
	defer func() { _ = f.Close() }()

	h := newHash()
	// Hide any WriterTo on the file so reads go through buf.
	buf := make([]byte, c.chunkSize)
	n, err := io.CopyBuffer(h, struct{ io.Reader }{f}, buf)
	if err != nil {
		log.WithError(err).Debug("read failed")
		return "", &IOError{Path: req.file, Err: err}
	}

	digest := base64.StdEncoding.EncodeToString(h.Sum(nil))
	log.WithField("bytes", n).Debug("digest computed")
	if req.prefix {
		return req.hash + "-" + digest, nil
	}
	return digest, nil
}

var defaultComputer = New()

// Hash starts hashing path on the OS filesystem with default options.
func Hash(path string) (*Pending, error) {
	return defaultComputer.Hash(path)
}

// HashOptions starts hashing the file described by opts on the OS filesystem.
func HashOptions(opts Options) (*Pending, error) {
	return defaultComputer.HashOptions(opts)
}

// HashFunc hashes the file described by opts on the OS filesystem and reports
// the outcome through done.
func HashFunc(opts Options, done CompleteFunc) error {
	return defaultComputer.HashFunc(opts, done)
}
