package auth

import (
	"bytes"
	"crypto/cipher"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"
)

// maxFrameSize bounds one encrypted frame. API requests and responses are a
// few KB at most, so 2 MB leaves generous headroom while still rejecting a
// garbage length prefix before allocating for it.
const maxFrameSize = 2 * 1024 * 1024

// Conn is a net.Conn carrying ChaCha20-Poly1305 frames over the underlying
// stream. Each frame on the wire is a 4-byte big-endian length, a 12-byte
// nonce, and the sealed payload. The writer stamps a monotonically increasing
// counter into the nonce tail, so nonces are never reused within a session.
type Conn struct {
	net.Conn
	aead cipher.AEAD

	writeMu  sync.Mutex
	writeSeq uint64

	// pending holds decrypted bytes not yet consumed by Read, so short
	// reads drain a frame across multiple calls.
	pending bytes.Buffer
}

// WrapConn layers the encrypted framing over conn using the negotiated
// session key.
func WrapConn(conn net.Conn, sessionKey []byte) (net.Conn, error) {
	aead, err := chacha20poly1305.New(sessionKey)
	if err != nil {
		return nil, err
	}
	return &Conn{Conn: conn, aead: aead}, nil
}

// Write seals p into a single frame and writes it in one call on the
// underlying connection.
func (c *Conn) Write(p []byte) (int, error) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	nonce := make([]byte, chacha20poly1305.NonceSize)
	binary.BigEndian.PutUint64(nonce[4:], c.writeSeq)
	c.writeSeq++

	sealed := c.aead.Seal(nil, nonce, p, nil)

	frame := binary.BigEndian.AppendUint32(nil, uint32(len(nonce)+len(sealed)))
	frame = append(frame, nonce...)
	frame = append(frame, sealed...)
	if _, err := c.Conn.Write(frame); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Read returns decrypted bytes, pulling the next frame off the wire when the
// previous one is fully consumed.
func (c *Conn) Read(p []byte) (int, error) {
	if c.pending.Len() == 0 {
		if err := c.readFrame(); err != nil {
			return 0, err
		}
	}
	return c.pending.Read(p)
}

// readFrame reads and decrypts one frame into the pending buffer.
func (c *Conn) readFrame() error {
	var hdr [4]byte
	if _, err := io.ReadFull(c.Conn, hdr[:]); err != nil {
		return err
	}
	size := binary.BigEndian.Uint32(hdr[:])
	if size < chacha20poly1305.NonceSize {
		return fmt.Errorf("encrypted frame too short: %d bytes", size)
	}
	if size > maxFrameSize {
		return fmt.Errorf("encrypted frame too large: %d bytes", size)
	}

	body := make([]byte, size)
	if _, err := io.ReadFull(c.Conn, body); err != nil {
		return err
	}

	plain, err := c.aead.Open(nil, body[:chacha20poly1305.NonceSize], body[chacha20poly1305.NonceSize:], nil)
	if err != nil {
		return err
	}
	c.pending.Write(plain)
	return nil
}
