package gossip

import (
	"bufio"
	"encoding/binary"
	"io"
	"net"
	"sync"
	"time"

	"github.com/ecoblock/ecoblock/src/tangle"
	"github.com/sirupsen/logrus"
)

// maxFrameSize bounds the declared length of an inbound frame. Blocks are a
// few KB of JSON; a header announcing more than this is not a block.
const maxFrameSize = 1024 * 1024

/*
TCPTransport pushes blocks to remote nodes over plain TCP. Each frame is a
4-byte big-endian length followed by the canonical JSON encoding of the
block. Connections are pooled per target and reused across pushes.
*/
type TCPTransport struct {
	logger *logrus.Entry

	connPool     map[string][]*tcpConn
	connPoolLock sync.Mutex
	maxPool      int

	consumerCh chan *tangle.Block

	listener net.Listener

	shutdown     bool
	shutdownCh   chan struct{}
	shutdownLock sync.Mutex

	timeout time.Duration
}

type tcpConn struct {
	target string
	conn   net.Conn
	w      *bufio.Writer
}

// Release closes the underlying connection.
func (c *tcpConn) Release() error {
	return c.conn.Close()
}

// NewTCPTransport creates a transport listening on bindAddr. The maxPool
// parameter controls how many connections are pooled per target; timeout
// applies IO deadlines on both sides.
func NewTCPTransport(bindAddr string,
	maxPool int,
	timeout time.Duration,
	logger *logrus.Entry,
) (*TCPTransport, error) {

	if logger == nil {
		log := logrus.New()
		log.Level = logrus.DebugLevel
		logger = logrus.NewEntry(log)
	}

	listener, err := net.Listen("tcp", bindAddr)
	if err != nil {
		return nil, err
	}

	t := &TCPTransport{
		logger:     logger,
		connPool:   make(map[string][]*tcpConn),
		maxPool:    maxPool,
		consumerCh: make(chan *tangle.Block, 16),
		listener:   listener,
		shutdownCh: make(chan struct{}),
		timeout:    timeout,
	}

	go t.listen()

	return t, nil
}

// LocalAddr implements the Transport interface.
func (t *TCPTransport) LocalAddr() string {
	return t.listener.Addr().String()
}

// Consumer implements the Transport interface.
func (t *TCPTransport) Consumer() <-chan *tangle.Block {
	return t.consumerCh
}

// PropagateBlock implements the Transport interface.
func (t *TCPTransport) PropagateBlock(target string, block *tangle.Block) error {
	t.shutdownLock.Lock()
	shutdown := t.shutdown
	t.shutdownLock.Unlock()

	if shutdown {
		return ErrTransportShutdown
	}

	conn, err := t.getConn(target)
	if err != nil {
		return err
	}

	if err := t.writeBlock(conn, block); err != nil {
		conn.Release()
		return err
	}

	t.returnConn(conn)
	return nil
}

// Close implements the Transport interface.
func (t *TCPTransport) Close() error {
	t.shutdownLock.Lock()
	defer t.shutdownLock.Unlock()

	if !t.shutdown {
		close(t.shutdownCh)
		t.listener.Close()
		t.shutdown = true
	}

	t.connPoolLock.Lock()
	defer t.connPoolLock.Unlock()
	for _, conns := range t.connPool {
		for _, conn := range conns {
			conn.Release()
		}
	}
	t.connPool = make(map[string][]*tcpConn)

	return nil
}

// listen accepts inbound connections and decodes block frames off them.
func (t *TCPTransport) listen() {
	for {
		conn, err := t.listener.Accept()
		if err != nil {
			select {
			case <-t.shutdownCh:
				return
			default:
				t.logger.WithError(err).Error("Failed to accept connection")
				continue
			}
		}

		t.logger.WithField("node", conn.RemoteAddr()).Debug("accepted connection")

		go t.handleConn(conn)
	}
}

// handleConn reads block frames from a single inbound connection until EOF
// and feeds them to the consumer channel.
func (t *TCPTransport) handleConn(conn net.Conn) {
	defer conn.Close()
	r := bufio.NewReader(conn)

	for {
		if t.timeout > 0 {
			conn.SetReadDeadline(time.Now().Add(t.timeout))
		}

		var length uint32
		if err := binary.Read(r, binary.BigEndian, &length); err != nil {
			if err != io.EOF {
				t.logger.WithError(err).Debug("failed to read frame header")
			}
			return
		}

		if length > maxFrameSize {
			t.logger.WithField("length", length).Debug("frame exceeds size limit, dropping connection")
			return
		}

		buf := make([]byte, length)
		if _, err := io.ReadFull(r, buf); err != nil {
			t.logger.WithError(err).Debug("failed to read frame body")
			return
		}

		block := new(tangle.Block)
		if err := block.Unmarshal(buf); err != nil {
			t.logger.WithError(err).Debug("failed to decode block")
			return
		}

		select {
		case t.consumerCh <- block:
		case <-t.shutdownCh:
			return
		}
	}
}

func (t *TCPTransport) writeBlock(conn *tcpConn, block *tangle.Block) error {
	buf, err := block.Marshal()
	if err != nil {
		return err
	}

	if t.timeout > 0 {
		conn.conn.SetWriteDeadline(time.Now().Add(t.timeout))
	}

	if err := binary.Write(conn.w, binary.BigEndian, uint32(len(buf))); err != nil {
		return err
	}
	if _, err := conn.w.Write(buf); err != nil {
		return err
	}

	return conn.w.Flush()
}

// getConn pops a pooled connection to the target or dials a new one.
func (t *TCPTransport) getConn(target string) (*tcpConn, error) {
	t.connPoolLock.Lock()
	conns, ok := t.connPool[target]
	if ok && len(conns) > 0 {
		var conn *tcpConn
		num := len(conns)
		conn, conns[num-1] = conns[num-1], nil
		t.connPool[target] = conns[:num-1]
		t.connPoolLock.Unlock()
		return conn, nil
	}
	t.connPoolLock.Unlock()

	dialer := &net.Dialer{Timeout: t.timeout}
	conn, err := dialer.Dial("tcp", target)
	if err != nil {
		return nil, err
	}

	return &tcpConn{
		target: target,
		conn:   conn,
		w:      bufio.NewWriter(conn),
	}, nil
}

// returnConn puts a connection back in the pool, or releases it if the pool
// is full or the transport is shut down.
func (t *TCPTransport) returnConn(conn *tcpConn) {
	t.connPoolLock.Lock()
	defer t.connPoolLock.Unlock()

	if t.shutdown || len(t.connPool[conn.target]) >= t.maxPool {
		conn.Release()
		return
	}

	t.connPool[conn.target] = append(t.connPool[conn.target], conn)
}
