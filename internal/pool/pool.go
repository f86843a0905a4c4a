// Package pool manages a set of long-lived command-server sessions,
// keyed by repository path, so callers don't have to hand-manage a
// *transport.Session's lifetime for every command. It is the concrete
// counterpart to the client library's "you may run multiple sessions in
// parallel, pooling is up to you" stance: an optional convenience, not a
// requirement.
package pool

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/cenkalti/backoff"
	"golang.org/x/time/rate"

	"github.com/go-mercurial/cmdserver/internal/errors"
	"github.com/go-mercurial/cmdserver/internal/transport"
)

// DefaultMaxIdlePerRepo caps how many idle sessions the pool keeps warm
// per repository before a release func starts closing surplus ones.
const DefaultMaxIdlePerRepo = 4

// Options configures a Pool.
type Options struct {
	// SessionConfig is applied to every session the pool opens. Its
	// Encoding/Configs/Env/HgPath fields are shared across repositories;
	// the repo path itself is supplied per Acquire call.
	SessionConfig transport.SessionConfig

	// MaxIdlePerRepo caps warm, released sessions kept per repo. 0 uses
	// DefaultMaxIdlePerRepo.
	MaxIdlePerRepo int

	// SpawnsPerSecond throttles how fast the pool launches new `hg`
	// processes across all repositories. 0 disables throttling.
	SpawnsPerSecond float64

	// BackoffInitial and BackoffMax bound the retry delay when a launch
	// or handshake fails transiently. Zero values pick backoff's own
	// defaults.
	BackoffInitial time.Duration
	BackoffMax     time.Duration
}

// Pool owns a per-repository set of idle, ready-to-use sessions.
// Acquire hands one out (opening a new one if none are idle); the
// returned release func returns it to the idle set, or closes it if that
// repository's idle set is already full. The release func does not check
// whether the session was poisoned; Discard is the way to close one.
type Pool struct {
	opts Options

	mu   sync.Mutex
	idle map[string][]*transport.Session

	limiter *rate.Limiter
}

// New creates a Pool. opts.SpawnsPerSecond of 0 means unthrottled.
func New(opts Options) *Pool {
	var limiter *rate.Limiter
	if opts.SpawnsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.SpawnsPerSecond), 1)
	}
	return &Pool{
		opts:    opts,
		idle:    make(map[string][]*transport.Session),
		limiter: limiter,
	}
}

// Acquire returns a ready Session for repoPath, either reused from the
// idle set or freshly opened, plus a release func the caller must call
// exactly once when done with it. Launch/handshake failures are retried
// with exponential backoff; retries stop once ctx is done.
func (p *Pool) Acquire(ctx context.Context, repoPath string) (*transport.Session, func(), error) {
	if s := p.takeIdle(repoPath); s != nil {
		return s, p.releaseFunc(repoPath, s), nil
	}

	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, nil, err
		}
	}

	s, err := p.openWithRetry(ctx, repoPath)
	if err != nil {
		return nil, nil, err
	}
	return s, p.releaseFunc(repoPath, s), nil
}

func (p *Pool) takeIdle(repoPath string) *transport.Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	bucket := p.idle[repoPath]
	if len(bucket) == 0 {
		return nil
	}
	s := bucket[len(bucket)-1]
	p.idle[repoPath] = bucket[:len(bucket)-1]
	return s
}

func (p *Pool) openWithRetry(ctx context.Context, repoPath string) (*transport.Session, error) {
	b := backoff.NewExponentialBackOff()
	if p.opts.BackoffInitial > 0 {
		b.InitialInterval = p.opts.BackoffInitial
	}
	if p.opts.BackoffMax > 0 {
		b.MaxInterval = p.opts.BackoffMax
	}
	retrier := backoff.WithContext(b, ctx)

	var session *transport.Session
	operation := func() error {
		s, err := transport.Open(ctx, repoPath, p.opts.SessionConfig)
		if err != nil {
			if errors.IsCode(err, errors.CodeInvalidRepository) {
				return backoff.Permanent(err)
			}
			log.Printf("pool: retrying session open for %s: %v", repoPath, err)
			return err
		}
		session = s
		return nil
	}

	if err := backoff.Retry(operation, retrier); err != nil {
		return nil, err
	}
	return session, nil
}

// releaseFunc returns a session to the idle bucket for reuse. Callers
// that know their session was poisoned (a CodeServerClosed or
// CodeProtocolError from RunCommand) should call Discard instead, since
// the Pool has no way to detect poisoning on its own without issuing a
// probe command.
func (p *Pool) releaseFunc(repoPath string, s *transport.Session) func() {
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()

		maxIdle := p.opts.MaxIdlePerRepo
		if maxIdle == 0 {
			maxIdle = DefaultMaxIdlePerRepo
		}
		if len(p.idle[repoPath]) >= maxIdle {
			_ = s.Close()
			return
		}
		p.idle[repoPath] = append(p.idle[repoPath], s)
	}
}

// Discard closes s. Callers that detect a poisoned session (e.g. a
// CodeServerClosed/CodeProtocolError from RunCommand) should call Discard
// instead of the release func. Discard does not record s anywhere: if the
// release func for s is still called afterwards, the closed session is put
// back in the idle set like any other.
func (p *Pool) Discard(s *transport.Session) {
	_ = s.Close()
}

// CloseAll closes every idle session across all repositories. In-flight
// (acquired but not yet released) sessions are unaffected.
func (p *Pool) CloseAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for repo, bucket := range p.idle {
		for _, s := range bucket {
			_ = s.Close()
		}
		delete(p.idle, repo)
	}
}
