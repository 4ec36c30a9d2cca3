// Package server implements the async TCP server: a single-threaded,
// readiness-multiplexed accept/read/write loop over non-blocking sockets,
// the Go analogue of a select()-based event loop built on
// golang.org/x/sys/unix.
package server

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"github.com/adithya-search/boolsearch/internal/analyzer"
)

const (
	welcomeMessage = "Welcome to async server!\n"
	readBufferSize = 4096
	listenBacklog  = 128
)

// Searcher answers boolean AND queries over stemmed terms. *boolindex.Index[string]
// satisfies this directly.
type Searcher interface {
	AndQuery(terms []string) []string
}

// client tracks one connected socket's accumulated, not-yet-newline-terminated
// input. Partial reads are appended here and dispatched only once a full
// line has arrived — this is the per-client buffering the source's shadowed
// multi-recv loop should have implemented.
type client struct {
	fd  int
	buf bytes.Buffer
}

// Server is the single-threaded non-blocking TCP query server.
type Server struct {
	index            Searcher
	logger           *slog.Logger
	port             int
	pollTimeout      time.Duration
	maxResponseCount int
	readBufferSize   int

	listenFD int
	clients  map[int]*client

	onAccept func()
	onClose  func()
}

// Option configures optional Server behavior.
type Option func(*Server)

// WithPollTimeout overrides the default 5-second poll timeout.
func WithPollTimeout(d time.Duration) Option {
	return func(s *Server) { s.pollTimeout = d }
}

// WithReadBufferSize overrides the default 4 KiB per-read buffer.
func WithReadBufferSize(n int) Option {
	return func(s *Server) { s.readBufferSize = n }
}

// WithConnectionHooks registers callbacks fired on client accept and close,
// used to drive the active-connections gauge.
func WithConnectionHooks(onAccept, onClose func()) Option {
	return func(s *Server) {
		s.onAccept = onAccept
		s.onClose = onClose
	}
}

// New creates a Server bound to no socket yet; call Start to bind and
// listen.
func New(index Searcher, port, maxResponseCount int, opts ...Option) *Server {
	s := &Server{
		index:            index,
		logger:           slog.Default().With("component", "server"),
		port:             port,
		pollTimeout:      5 * time.Second,
		maxResponseCount: maxResponseCount,
		readBufferSize:   readBufferSize,
		listenFD:         -1,
		clients:          make(map[int]*client),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start creates, binds, and listens on the configured port. Failure here is
// a StartupFailure: fatal, and must be surfaced to the caller.
func (s *Server) Start() error {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		return fmt.Errorf("creating socket: %w", err)
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return fmt.Errorf("setting SO_REUSEADDR: %w", err)
	}
	addr := &unix.SockaddrInet4{Port: s.port}
	if err := unix.Bind(fd, addr); err != nil {
		unix.Close(fd)
		return fmt.Errorf("binding port %d: %w", s.port, err)
	}
	if err := unix.Listen(fd, listenBacklog); err != nil {
		unix.Close(fd)
		return fmt.Errorf("listening on port %d: %w", s.port, err)
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return fmt.Errorf("setting listen socket non-blocking: %w", err)
	}
	s.listenFD = fd
	if bound, err := unix.Getsockname(fd); err == nil {
		if in4, ok := bound.(*unix.SockaddrInet4); ok {
			s.port = in4.Port
		}
	}
	s.logger.Info("server listening", "port", s.port)
	return nil
}

// Port returns the bound listening port, resolved from the kernel once
// Start has run — useful when the server was started on port 0.
func (s *Server) Port() int {
	return s.port
}

// Run enters the poll loop and blocks until ctx is cancelled. Shutdown is
// cooperative: the loop checks ctx.Done() between wakes, matching a
// signal-set flag observed at the top of a select loop.
func (s *Server) Run(ctx context.Context) error {
	defer s.closeAll()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("server shutting down")
			return nil
		default:
		}

		fds := s.buildPollSet()
		n, err := unix.Poll(fds, int(s.pollTimeout/time.Millisecond))
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return fmt.Errorf("poll: %w", err)
		}
		if n == 0 {
			continue
		}

		for _, pfd := range fds {
			if pfd.Revents&unix.POLLIN == 0 {
				continue
			}
			if int(pfd.Fd) == s.listenFD {
				s.acceptNewClient()
				continue
			}
			s.handleClientData(int(pfd.Fd))
		}
	}
}

func (s *Server) buildPollSet() []unix.PollFd {
	fds := make([]unix.PollFd, 0, len(s.clients)+1)
	fds = append(fds, unix.PollFd{Fd: int32(s.listenFD), Events: unix.POLLIN})
	for fd := range s.clients {
		fds = append(fds, unix.PollFd{Fd: int32(fd), Events: unix.POLLIN})
	}
	return fds
}

func (s *Server) acceptNewClient() {
	connFD, _, err := unix.Accept(s.listenFD)
	if err != nil {
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			return
		}
		s.logger.Warn("accept failed", "error", err)
		return
	}
	if err := unix.SetNonblock(connFD, true); err != nil {
		s.logger.Warn("setting client non-blocking failed", "error", err)
		unix.Close(connFD)
		return
	}
	s.clients[connFD] = &client{fd: connFD}
	if s.onAccept != nil {
		s.onAccept()
	}
	if err := writeAll(connFD, []byte(welcomeMessage)); err != nil {
		s.logger.Debug("welcome message failed", "fd", connFD, "error", err)
	}
	s.logger.Debug("client connected", "fd", connFD)
}

// handleClientData performs one receive into a fixed-size buffer, appends
// it to the client's accumulator, and dispatches every complete
// newline-terminated line found so far.
func (s *Server) handleClientData(fd int) {
	c, ok := s.clients[fd]
	if !ok {
		return
	}

	buf := make([]byte, s.readBufferSize)
	n, err := unix.Read(fd, buf)
	if n <= 0 {
		if err != nil && (err == unix.EAGAIN || err == unix.EWOULDBLOCK) {
			return
		}
		s.closeClient(fd)
		return
	}
	c.buf.Write(buf[:n])

	for {
		data := c.buf.Bytes()
		idx := bytes.IndexByte(data, '\n')
		if idx < 0 {
			break
		}
		line := string(data[:idx])
		c.buf.Next(idx + 1)
		s.handleRequest(fd, line)
	}
}

// handleRequest strips surrounding whitespace, runs the analyzer and an AND
// query, and writes the (possibly empty) result back newline-terminated.
func (s *Server) handleRequest(fd int, raw string) {
	query := strings.TrimSpace(raw)
	s.logger.Debug("request", "fd", fd, "query", query)

	terms := analyzer.Analyze(query)
	docs := s.index.AndQuery(terms)

	var out strings.Builder
	count := 0
	for _, doc := range docs {
		if s.maxResponseCount != 0 && count >= s.maxResponseCount {
			break
		}
		out.WriteString(doc)
		out.WriteByte('\n')
		count++
	}
	if out.Len() == 0 {
		return
	}
	if err := writeAll(fd, []byte(out.String())); err != nil {
		s.logger.Debug("write failed, closing client", "fd", fd, "error", err)
		s.closeClient(fd)
	}
}

func (s *Server) closeClient(fd int) {
	if _, ok := s.clients[fd]; !ok {
		return
	}
	unix.Close(fd)
	delete(s.clients, fd)
	if s.onClose != nil {
		s.onClose()
	}
	s.logger.Debug("client closed", "fd", fd)
}

func (s *Server) closeAll() {
	for fd := range s.clients {
		unix.Close(fd)
		delete(s.clients, fd)
	}
	if s.listenFD >= 0 {
		unix.Close(s.listenFD)
		s.listenFD = -1
	}
}

// writeAll retries partial writes until every byte is sent or a
// non-transient error occurs, resolving the source's "best-effort,
// non-acked" open question by treating a write as complete only once all
// bytes have been accepted by the kernel.
func writeAll(fd int, data []byte) error {
	for len(data) > 0 {
		n, err := unix.Write(fd, data)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK || err == unix.EINTR {
				continue
			}
			return err
		}
		data = data[n:]
	}
	return nil
}

// Addr formats the server's listening address for logging.
func (s *Server) Addr() string {
	return ":" + strconv.Itoa(s.port)
}
