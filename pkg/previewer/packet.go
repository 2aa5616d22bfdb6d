package previewer

import (
	"encoding/binary"
	"io"
	"net"
	"strings"
)

// tev IPC packet types.
const (
	packetOpenImage byte = 7 // OpenImageV2
)

// encodeOpenImage builds an OpenImage packet: uint32 little-endian total
// length (length field included), type byte, grabFocus byte, then the image
// path and channel selector as NUL-terminated strings.
func encodeOpenImage(path, channelSelector string, grabFocus bool) ([]byte, error) {
	if strings.ContainsRune(path, 0) || strings.ContainsRune(channelSelector, 0) {
		return nil, ErrBadPath
	}

	size := 4 + 1 + 1 + len(path) + 1 + len(channelSelector) + 1
	buf := make([]byte, 4, size)
	binary.LittleEndian.PutUint32(buf, uint32(size))
	buf = append(buf, packetOpenImage)
	if grabFocus {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}
	buf = append(buf, path...)
	buf = append(buf, 0)
	buf = append(buf, channelSelector...)
	buf = append(buf, 0)
	return buf, nil
}

// Client speaks tev's IPC protocol over one connection.
type Client struct {
	conn net.Conn
}

// NewClient wraps an established connection.
func NewClient(conn net.Conn) *Client {
	return &Client{conn: conn}
}

// OpenImage asks tev to load path without taking focus.
func (c *Client) OpenImage(path string) error {
	pkt, err := encodeOpenImage(path, "", false)
	if err != nil {
		return err
	}
	return writeFull(c.conn, pkt)
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

func writeFull(w io.Writer, b []byte) error {
	for len(b) > 0 {
		n, err := w.Write(b)
		if err != nil {
			return err
		}
		b = b[n:]
	}
	return nil
}
