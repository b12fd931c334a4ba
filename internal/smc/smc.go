package smc

import (
	"sync"
)

// Transport is the low-level controller access the connection is built on.
// The production implementation talks to the SMC through IOKit; tests
// substitute an in-memory fake.
type Transport interface {
	ReadKey(key Key) (RawReading, error)
	KeyCount() (uint32, error)
	KeyByIndex(index uint32) (Key, error)
	Close() error
}

// Conn is an exclusive handle to the sensor controller. A single connection
// is opened once per process and owned by the sampling actor; it is not
// safe for concurrent readers and does not need to be.
type Conn struct {
	transport Transport

	mu     sync.Mutex
	closed bool
}

// Open acquires the controller handle through the platform transport.
// Fails with smc_not_available or smc_insufficient_privileges when the
// platform API refuses.
func Open() (*Conn, error) {
	t, err := openTransport()
	if err != nil {
		return nil, err
	}

	return NewConn(t), nil
}

// NewConn wraps an already-open transport. Exposed so tests and the
// one-shot commands can inject fakes.
func NewConn(t Transport) *Conn {
	return &Conn{transport: t}
}

// ReadKey issues one synchronous hardware read for the given key.
// Every call is a fresh read; nothing is cached.
func (c *Conn) ReadKey(key Key) (RawReading, error) {
	if _, err := ParseKey(string(key)); err != nil {
		return RawReading{}, err
	}
	if c.isClosed() {
		return RawReading{}, errFactory.New(ErrConnectionClosed)
	}

	return c.transport.ReadKey(key)
}

// KeyCount returns the number of keys the controller exposes
func (c *Conn) KeyCount() (uint32, error) {
	if c.isClosed() {
		return 0, errFactory.New(ErrConnectionClosed)
	}

	return c.transport.KeyCount()
}

// KeyByIndex returns the key at the given controller index, used to
// enumerate everything the hardware exposes
func (c *Conn) KeyByIndex(index uint32) (Key, error) {
	if c.isClosed() {
		return "", errFactory.New(ErrConnectionClosed)
	}

	return c.transport.KeyByIndex(index)
}

// Close releases the controller handle. Safe to call more than once.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	if err := c.transport.Close(); err != nil {
		return errFactory.Wrap(ErrIOFailed, err)
	}

	return nil
}

func (c *Conn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
