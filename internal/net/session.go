package net

import (
	"bufio"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

const writeTimeout = 10 * time.Second

// Session is a single remote console connection. Network I/O runs in
// dedicated goroutines; replies are queued from the game loop only.
type Session struct {
	ID   uint64
	conn net.Conn

	InQueue  chan string // game loop reads command lines from here
	OutQueue chan string // writer goroutine reads from here

	IP string

	outBuf []string // buffered replies, flushed once per tick (game loop only)

	onDead    func(id uint64)
	closeCh   chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool

	log *zap.Logger
}

// NewSession wraps conn. onDead, if set, is called once when the session closes.
func NewSession(conn net.Conn, id uint64, inSize, outSize int, onDead func(uint64), log *zap.Logger) *Session {
	return &Session{
		ID:       id,
		conn:     conn,
		InQueue:  make(chan string, inSize),
		OutQueue: make(chan string, outSize),
		IP:       conn.RemoteAddr().String(),
		onDead:   onDead,
		closeCh:  make(chan struct{}),
		log:      log.With(zap.Uint64("session", id)),
	}
}

// Start launches the reader and writer goroutines.
func (s *Session) Start() {
	go s.readLoop()
	go s.writeLoop()
}

// Send buffers a reply. Nothing is written until FlushOutput.
// Called only from the game loop goroutine; no lock needed on outBuf.
func (s *Session) Send(text string) {
	if s.closed.Load() {
		return
	}
	s.outBuf = append(s.outBuf, text)
}

// FlushOutput drains the output buffer to OutQueue for the writeLoop goroutine.
// Non-blocking: if OutQueue is full, the session is disconnected (backpressure).
func (s *Session) FlushOutput() {
	for _, text := range s.outBuf {
		select {
		case s.OutQueue <- text:
		default:
			s.log.Warn("console output queue full, dropping slow client")
			s.Close()
			s.outBuf = s.outBuf[:0]
			return
		}
	}
	s.outBuf = s.outBuf[:0]
}

// Close gracefully shuts down the session.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		close(s.closeCh)
		s.conn.Close()
		if s.onDead != nil {
			s.onDead(s.ID)
		}
	})
}

func (s *Session) IsClosed() bool {
	return s.closed.Load()
}

// readLoop reads console lines and pushes non-empty ones onto InQueue.
func (s *Session) readLoop() {
	defer s.Close()

	r := bufio.NewReader(s.conn)
	for {
		line, err := ReadLine(r)
		if err != nil {
			if !s.closed.Load() {
				s.log.Debug("console read ended", zap.Error(err))
			}
			return
		}
		if line == "" {
			continue
		}

		// Block until InQueue has space or session closes.
		select {
		case s.InQueue <- line:
		case <-s.closeCh:
			return
		}
	}
}

// writeLoop writes queued replies to the connection.
func (s *Session) writeLoop() {
	defer s.Close()

	for {
		select {
		case text := <-s.OutQueue:
			s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := WriteLine(s.conn, text); err != nil {
				if !s.closed.Load() {
					s.log.Debug("console write failed", zap.Error(err))
				}
				return
			}
		case <-s.closeCh:
			return
		}
	}
}
