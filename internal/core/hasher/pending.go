package hasher

import "context"

// Pending is the deferred result of a digest computation.
// Its outcome is set once and never changes.
type Pending struct {
	done   chan struct{}
	digest string
	err    error
}

func newPending() *Pending {
	return &Pending{done: make(chan struct{})}
}

func (p *Pending) resolve(digest string, err error) {
	if err != nil {
		digest = ""
	}
	p.digest, p.err = digest, err
	close(p.done)
}

// Done is closed once the outcome is known.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the digest is ready or ctx is done. Giving up on ctx
// does not stop the computation; a later Wait still sees its outcome.
func (p *Pending) Wait(ctx context.Context) (string, error) {
	select {
	case <-p.done:
		return p.digest, p.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
