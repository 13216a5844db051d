// Package fleetssh provides scoped SSH sessions against network devices:
// retrying connect, prompt detection, and sequential command execution
// shared by every collector in pkg/collect.
package fleetssh

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/crypto/ssh"

	"github.com/fleetsync/fleetsync/internal/errs"
	"github.com/fleetsync/fleetsync/internal/logging"
	"github.com/fleetsync/fleetsync/pkg/fleetdevice"
)

// Options configures session acquisition.
type Options struct {
	SocketTimeout    time.Duration
	TransportTimeout time.Duration
	DriverTag        string
	Retries          int
	RetryDelay       time.Duration
}

// promptRe recognizes a trailing device prompt: one of '#', '>', '$',
// possibly followed by trailing whitespace.
var promptRe = regexp.MustCompile(`[#>$]\s*$`)

// Session is a live, authenticated SSH session against one device. Commands
// are sent sequentially; Session is not safe for concurrent use by design
// (sequential commands per device within one session).
type Session struct {
	client   *ssh.Client
	sess     *ssh.Session
	stdin    io.WriteCloser
	stdout   *bufio.Reader
	prompt   string
	hostname string

	mu     sync.Mutex
	closed bool
}

// Open acquires a Session against dev, retrying per Options, and returns it
// to the caller. Prefer WithSession unless the caller has a reason to manage
// the session's lifetime itself (e.g. a long-lived interactive shell).
//
// Retry policy: 1 + opts.Retries attempts. Authentication failure is
// terminal. Timeout or connect error triggers linear backoff (opts.RetryDelay)
// and one more attempt up to the cap.
func Open(ctx context.Context, dev *fleetdevice.Device, creds fleetdevice.Credentials, opts Options) (*Session, error) {
	log := logging.WithDevice(dev.Host)

	var sess *Session
	operation := func() error {
		s, err := dial(ctx, dev, creds, opts)
		if err != nil {
			if isAuthFailure(err) {
				log.WithOperation("connect").Warn("authentication failed, not retrying")
				return backoff.Permanent(err)
			}
			return err
		}
		sess = s
		return nil
	}

	bo := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(opts.retryDelayOrDefault()), uint64(opts.Retries)),
		ctx,
	)

	if err := backoff.Retry(operation, bo); err != nil {
		dev.SetError(err)
		return nil, err
	}

	dev.SetConnected(sess.hostname, time.Now())
	log.WithOperation("connect").Info("session established")
	return sess, nil
}

// WithSession is a scoped-acquisition combinator: the callback receives an
// opened Session, which is closed on every return path including a panic
// propagating out of fn.
func WithSession(ctx context.Context, dev *fleetdevice.Device, creds fleetdevice.Credentials, opts Options, fn func(*Session) error) (err error) {
	sess, err := Open(ctx, dev, creds, opts)
	if err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			sess.Close()
			panic(r)
		}
	}()
	defer sess.Close()
	return fn(sess)
}

func (o Options) retryDelayOrDefault() time.Duration {
	if o.RetryDelay > 0 {
		return o.RetryDelay
	}
	return 2 * time.Second
}

func isAuthFailure(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, errs.ErrAuthenticationFailed) ||
		strings.Contains(err.Error(), "unable to authenticate") ||
		strings.Contains(err.Error(), "authentication failed")
}

func dial(ctx context.Context, dev *fleetdevice.Device, creds fleetdevice.Credentials, opts Options) (*Session, error) {
	config := &ssh.ClientConfig{
		User: creds.Username,
		Auth: []ssh.AuthMethod{
			ssh.Password(creds.Password),
		},
		// Network devices rarely present a key fleetsync can pre-validate
		// against a known_hosts file; operators are expected to run this
		// inside a trusted management network.
		HostKeyCallback: ssh.InsecureIgnoreHostKey,
		Timeout:         opts.socketTimeoutOrDefault(),
	}

	addr := fmt.Sprintf("%s:%d", dev.Host, dev.PortOrDefault())
	client, err := ssh.Dial("tcp", addr, config)
	if err != nil {
		if strings.Contains(err.Error(), "unable to authenticate") {
			return nil, fmt.Errorf("%s: %w: %v", dev.Host, errs.ErrAuthenticationFailed, err)
		}
		if strings.Contains(err.Error(), "timeout") || strings.Contains(err.Error(), "i/o timeout") {
			return nil, fmt.Errorf("%s: %w: %v", dev.Host, errs.ErrConnectTimeout, err)
		}
		return nil, fmt.Errorf("%s: %w: %v", dev.Host, errs.ErrConnectFailed, err)
	}

	sshSess, err := client.NewSession()
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("%s: %w: opening ssh session: %v", dev.Host, errs.ErrConnectFailed, err)
	}

	if err := sshSess.RequestPty("vt100", 0, 200, ssh.TerminalModes{
		ssh.ECHO: 0,
	}); err != nil {
		sshSess.Close()
		client.Close()
		return nil, fmt.Errorf("%s: %w: requesting pty: %v", dev.Host, errs.ErrConnectFailed, err)
	}

	stdin, err := sshSess.StdinPipe()
	if err != nil {
		sshSess.Close()
		client.Close()
		return nil, fmt.Errorf("%s: %w: %v", dev.Host, errs.ErrConnectFailed, err)
	}
	stdoutPipe, err := sshSess.StdoutPipe()
	if err != nil {
		sshSess.Close()
		client.Close()
		return nil, fmt.Errorf("%s: %w: %v", dev.Host, errs.ErrConnectFailed, err)
	}

	if err := sshSess.Shell(); err != nil {
		sshSess.Close()
		client.Close()
		return nil, fmt.Errorf("%s: %w: starting shell: %v", dev.Host, errs.ErrConnectFailed, err)
	}

	s := &Session{
		client: client,
		sess:   sshSess,
		stdin:  stdin,
		stdout: bufio.NewReader(stdoutPipe),
	}

	timeout := opts.transportTimeoutOrDefault()
	banner, err := s.readUntilQuiet(timeout)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("%s: %w: probing prompt: %v", dev.Host, errs.ErrConnectTimeout, err)
	}
	s.hostname = derivePromptHostname(banner)
	s.prompt = promptRe.FindString(banner)

	return s, nil
}

func (o Options) socketTimeoutOrDefault() time.Duration {
	if o.SocketTimeout > 0 {
		return o.SocketTimeout
	}
	return 10 * time.Second
}

func (o Options) transportTimeoutOrDefault() time.Duration {
	if o.TransportTimeout > 0 {
		return o.TransportTimeout
	}
	return 15 * time.Second
}

// derivePromptHostname strips a trailing '#', '>', or '$' prompt character
// (and surrounding whitespace) from the last non-empty line of banner.
func derivePromptHostname(banner string) string {
	lines := strings.Split(strings.ReplaceAll(banner, "\r\n", "\n"), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		line = strings.TrimRight(line, "#>$ \t")
		// Strip an enable-mode parenthetical suffix, e.g. "switch(config)".
		if idx := strings.Index(line, "("); idx > 0 {
			line = line[:idx]
		}
		return line
	}
	return ""
}

// readUntilQuiet reads from stdout until no new bytes arrive for a short
// quiet interval, or until timeout elapses. Used to collect a command's full
// output without depending on knowing the exact prompt text in advance.
func (s *Session) readUntilQuiet(timeout time.Duration) (string, error) {
	type chunk struct {
		b   []byte
		err error
	}
	ch := make(chan chunk, 16)
	go func() {
		buf := make([]byte, 4096)
		for {
			n, err := s.stdout.Read(buf)
			if n > 0 {
				cp := make([]byte, n)
				copy(cp, buf[:n])
				ch <- chunk{b: cp}
			}
			if err != nil {
				ch <- chunk{err: err}
				return
			}
		}
	}()

	var out strings.Builder
	quiet := 200 * time.Millisecond
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	idle := time.NewTimer(quiet)
	defer idle.Stop()

	for {
		select {
		case c := <-ch:
			if len(c.b) > 0 {
				out.Write(c.b)
				if !idle.Stop() {
					select {
					case <-idle.C:
					default:
					}
				}
				idle.Reset(quiet)
			}
			if c.err != nil {
				if out.Len() > 0 {
					return out.String(), nil
				}
				return "", c.err
			}
		case <-idle.C:
			if out.Len() > 0 {
				return out.String(), nil
			}
			idle.Reset(quiet)
		case <-deadline.C:
			if out.Len() > 0 {
				return out.String(), nil
			}
			return "", fmt.Errorf("timed out waiting for device output")
		}
	}
}

// Hostname returns the hostname derived from the device's prompt.
func (s *Session) Hostname() string { return s.hostname }

// SendCommand writes cmd to the shell and returns its raw text output with
// the echoed command line and trailing prompt stripped. No parsing is
// performed here — that is pkg/textparse's job.
func (s *Session) SendCommand(cmd string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := io.WriteString(s.stdin, cmd+"\n"); err != nil {
		return "", fmt.Errorf("%w: writing command %q: %v", errs.ErrCommandFailed, cmd, err)
	}

	raw, err := s.readUntilQuiet(30 * time.Second)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", errs.ErrCommandFailed, cmd, err)
	}

	return cleanOutput(raw, cmd), nil
}

// cleanOutput removes the echoed command and trailing prompt line from raw
// shell output.
func cleanOutput(raw, cmd string) string {
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
	var kept []string
	for i, line := range lines {
		if i == 0 && strings.TrimSpace(line) == strings.TrimSpace(cmd) {
			continue
		}
		kept = append(kept, line)
	}
	if len(kept) > 0 && promptRe.MatchString(kept[len(kept)-1]) {
		kept = kept[:len(kept)-1]
	}
	return strings.Join(kept, "\n")
}

// Close releases the session and its underlying SSH connection. Safe to call
// more than once; session close errors are logged, not propagated.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	if s.sess != nil {
		if err := s.sess.Close(); err != nil && err != io.EOF {
			logging.WithDevice(s.hostname).WithOperation("disconnect").WithField("err", err).Debug("session close error")
		}
	}
	if s.client != nil {
		if err := s.client.Close(); err != nil {
			logging.WithDevice(s.hostname).WithOperation("disconnect").WithField("err", err).Debug("client close error")
		}
	}
	return nil
}
