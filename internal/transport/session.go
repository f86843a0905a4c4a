// Package transport owns the command-server child process: spawning it,
// performing the handshake, serializing run_command calls across a
// session-wide mutex, and demultiplexing the channel-tagged response
// stream (see internal/wire and demux.go).
package transport

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"syscall"

	"github.com/google/uuid"
	"golang.org/x/text/encoding"

	"github.com/go-mercurial/cmdserver/internal/errors"
	"github.com/go-mercurial/cmdserver/internal/parse"
	"github.com/go-mercurial/cmdserver/internal/wire"
)

// SessionConfig holds the parameters for Open. HgPath defaults to "hg" on
// PATH. Encoding, if non-empty, is propagated to the child as HGENCODING.
type SessionConfig struct {
	HgPath   string
	Encoding string
	Configs  map[string]string
	Env      map[string]string
}

// CommandResult is the decoded outcome of a run_command round trip: the
// Output and Error channel bytes decoded with the session's negotiated
// encoding, plus the exit code.
type CommandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int32
}

// Session owns one `hg serve --cmdserver pipe` child process. Exactly one
// command runs at a time; RunCommand holds mu for the full round trip.
// Once poisoned (after a ServerClosed or ProtocolError), a Session must
// not be reused.
type Session struct {
	repoPath string

	cmd    *exec.Cmd
	stdin  *bufio.Writer
	stdout io.Reader
	stderr *bytes.Buffer

	rawEncoding  string
	encoding     encoding.Encoding
	capabilities map[string]struct{}

	mu         sync.Mutex
	poisoned   error
	closed     bool
	commandSeq uint64

	configCache  map[string]string
	rootCache    *string
	versionCache *string
}

// Open validates repoPath is a Mercurial repository, spawns the command
// server, and performs the handshake.
func Open(ctx context.Context, repoPath string, cfg SessionConfig) (*Session, error) {
	info, err := os.Stat(filepath.Join(repoPath, ".hg"))
	if err != nil || !info.IsDir() {
		return nil, errors.InvalidRepository(repoPath)
	}

	hgPath := cfg.HgPath
	if hgPath == "" {
		hgPath = "hg"
	}

	argv := []string{"serve", "--cmdserver", "pipe", "--cwd", repoPath, "--repository", repoPath}
	if len(cfg.Configs) > 0 {
		argv = append(argv, "--config", joinConfigs(cfg.Configs))
	}

	cmd := exec.CommandContext(ctx, hgPath, argv...)
	cmd.Env = buildEnv(cfg)
	setProcessGroup(cmd)

	stdinPipe, err := cmd.StdinPipe()
	if err != nil {
		return nil, errors.ServerLaunchFailed(hgPath, err)
	}
	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return nil, errors.ServerLaunchFailed(hgPath, err)
	}
	stderrBuf := &bytes.Buffer{}
	cmd.Stderr = stderrBuf

	if err := cmd.Start(); err != nil {
		return nil, errors.ServerLaunchFailed(hgPath, err)
	}

	s := &Session{
		repoPath: repoPath,
		cmd:      cmd,
		stdin:    bufio.NewWriter(stdinPipe),
		stdout:   stdoutPipe,
		stderr:   stderrBuf,
	}

	if err := s.handshake(); err != nil {
		_ = s.Close()
		return nil, err
	}

	log.Printf("cmdserver: session opened for %s (encoding=%s, capabilities=%d)",
		repoPath, s.rawEncoding, len(s.capabilities))
	return s, nil
}

func joinConfigs(configs map[string]string) string {
	keys := make([]string, 0, len(configs))
	for k := range configs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+configs[k])
	}
	return strings.Join(pairs, ",")
}

func buildEnv(cfg SessionConfig) []string {
	env := os.Environ()
	env = append(env, "LANG=en_US")
	for k, v := range cfg.Env {
		env = append(env, k+"="+v)
	}
	// HGENCODING is set when the caller supplies a non-empty encoding
	// override; otherwise the child picks its own default.
	if cfg.Encoding != "" {
		env = append(env, "HGENCODING="+cfg.Encoding)
	}
	return env
}

// handshake reads the single Output frame the server sends on startup and
// extracts the required "encoding" and "capabilities" headers.
func (s *Session) handshake() error {
	hdr, err := wire.ReadHeader(s.stdout)
	if err != nil {
		return errors.HandshakeError(fmt.Sprintf("failed to read handshake frame: %v; stderr: %s", err, s.stderr.String()))
	}
	if hdr.Channel != wire.Output {
		return errors.HandshakeError(fmt.Sprintf("expected handshake on Output channel, got %v", hdr.Channel))
	}

	payload, err := wire.ReadPayload(s.stdout, hdr.Length)
	if err != nil {
		return errors.HandshakeError(fmt.Sprintf("failed to read handshake payload: %v", err))
	}

	headers := parse.ParseKV(string(payload), []string{": "})
	encodingName, ok := headers["encoding"]
	if !ok {
		return errors.HandshakeError("missing required \"encoding\" header")
	}
	capsLine, ok := headers["capabilities"]
	if !ok {
		return errors.HandshakeError("missing required \"capabilities\" header")
	}

	enc, err := ResolveEncoding(encodingName)
	if err != nil {
		return errors.HandshakeError(err.Error())
	}

	s.rawEncoding = encodingName
	s.encoding = enc
	s.capabilities = make(map[string]struct{})
	for _, capability := range strings.Fields(capsLine) {
		s.capabilities[capability] = struct{}{}
	}
	if _, ok := s.capabilities["runcommand"]; !ok {
		return errors.HandshakeError("server did not advertise the required \"runcommand\" capability")
	}
	return nil
}

// Encoding returns the negotiated encoding name from the handshake.
func (s *Session) Encoding() string { return s.rawEncoding }

// Capabilities returns the capability tokens the server advertised.
func (s *Session) Capabilities() map[string]struct{} {
	caps := make(map[string]struct{}, len(s.capabilities))
	for k := range s.capabilities {
		caps[k] = struct{}{}
	}
	return caps
}

// RunCommand writes a runcommand frame for argv and drives the
// demultiplexer until the Result frame, decoding the Output/Error bytes
// with the session's negotiated encoding. inputs, if non-nil, answers
// Input/Line prompts for interactive commands (e.g. merge conflict
// resolution); most commands pass nil.
//
// Exactly one RunCommand call executes at a time per Session: mu is held
// for the full round trip, including output decoding.
func (s *Session) RunCommand(argv []string, inputs map[wire.ChannelTag]InputProvider) (CommandResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return CommandResult{}, errors.ServerClosed(nil)
	}
	if s.poisoned != nil {
		return CommandResult{}, errors.ServerClosed(s.poisoned)
	}

	seq := s.commandSeq
	s.commandSeq++
	corrID := uuid.New()
	log.Printf("cmdserver: run_command seq=%d id=%s argv=%v", seq, corrID, argv)

	if err := wire.WriteRunCommand(s.stdin, argv); err != nil {
		s.poison(errors.ServerClosed(err))
		return CommandResult{}, s.poisoned
	}

	var stdout, stderr bytes.Buffer
	demux := &Demultiplexer{
		Outputs: map[wire.ChannelTag]io.Writer{
			wire.Output: &stdout,
			wire.Error:  &stderr,
		},
		Inputs: inputs,
	}

	exitCode, err := demux.Run(s.stdout, s.stdin)
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			s.poison(errors.ServerClosed(fmt.Errorf("seq=%d id=%s: %w", seq, corrID, err)))
		} else {
			s.poison(errors.ProtocolError(fmt.Sprintf("seq=%d id=%s: %v", seq, corrID, err)))
		}
		return CommandResult{}, s.poisoned
	}

	return CommandResult{
		Stdout:   decodeBytes(s.encoding, stdout.Bytes()),
		Stderr:   decodeBytes(s.encoding, stderr.Bytes()),
		ExitCode: exitCode,
	}, nil
}

func decodeBytes(enc encoding.Encoding, raw []byte) string {
	if enc == nil {
		return string(raw)
	}
	decoded, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		// Fall back to the raw bytes rather than losing output the
		// caller may still need to inspect for diagnostics.
		return string(raw)
	}
	return string(decoded)
}

// poison marks the session unusable for any further RunCommand calls.
// Must be called with mu held.
func (s *Session) poison(err error) {
	if s.poisoned == nil {
		s.poisoned = err
	}
}

// Root returns the repository root path, issuing `root` on first call and
// caching the result for the lifetime of the session.
func (s *Session) Root() (string, error) {
	s.mu.Lock()
	cached := s.rootCache
	s.mu.Unlock()
	if cached != nil {
		return *cached, nil
	}

	res, err := s.RunCommand([]string{"root"}, nil)
	if err != nil {
		return "", err
	}
	if res.ExitCode != 0 {
		return "", errors.CommandFailed([]string{"root"}, res.ExitCode, res.Stdout, res.Stderr)
	}
	root := strings.TrimSpace(res.Stdout)

	s.mu.Lock()
	s.rootCache = &root
	s.mu.Unlock()
	return root, nil
}

// Version returns the server's normalized version string ("5.9.1"),
// issuing `version` on first call and caching the result.
func (s *Session) Version() (string, error) {
	s.mu.Lock()
	cached := s.versionCache
	s.mu.Unlock()
	if cached != nil {
		return *cached, nil
	}

	res, err := s.RunCommand([]string{"version", "--quiet"}, nil)
	if err != nil {
		return "", err
	}
	if res.ExitCode != 0 {
		return "", errors.CommandFailed([]string{"version"}, res.ExitCode, res.Stdout, res.Stderr)
	}
	version, err := parse.NormalizeVersion(res.Stdout)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.versionCache = &version
	s.mu.Unlock()
	return version, nil
}

// Configuration returns the repository's effective configuration as a
// flat key/value map, issuing `showconfig` on first call and caching the
// result.
func (s *Session) Configuration() (map[string]string, error) {
	s.mu.Lock()
	cached := s.configCache
	s.mu.Unlock()
	if cached != nil {
		return cached, nil
	}

	res, err := s.RunCommand([]string{"showconfig"}, nil)
	if err != nil {
		return nil, err
	}
	if res.ExitCode != 0 {
		return nil, errors.CommandFailed([]string{"showconfig"}, res.ExitCode, res.Stdout, res.Stderr)
	}
	config := parse.ParseKV(res.Stdout, []string{"="})

	s.mu.Lock()
	s.configCache = config
	s.mu.Unlock()
	return config, nil
}

// Close terminates the command server's process group and releases its
// pipes. Safe to call multiple times; safe to call after a poisoning
// error. Does not return the underlying wait error, since callers close a
// session to discard it, not to inspect its exit status.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	if s.cmd.Process != nil {
		if err := killProcessGroup(s.cmd, syscall.SIGTERM); err != nil {
			log.Printf("cmdserver: error signaling session for %s: %v", s.repoPath, err)
		}
	}
	_ = s.cmd.Wait()
	return nil
}
