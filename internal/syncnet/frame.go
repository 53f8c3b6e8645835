// Package syncnet implements the LAN transfer protocol: a full-tree
// push-and-replace sync channel and a manifest-exchange/selective-push
// compare channel, both framed with fixed-width ASCII headers so the
// receiver knows exactly when a payload ends without a delimiter.
package syncnet

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	// HeaderSize is the fixed width of the ASCII decimal length header:
	// left-justified, space-padded, giving the exact byte length of the
	// payload that follows.
	HeaderSize = 10

	// TagSize is the fixed width of the request-type tag that opens a
	// compare connection, letting one port serve two operations.
	TagSize = 20

	// chunkSize bounds each read/write of a bulk transfer so progress can
	// be reported independent of payload size.
	chunkSize = 8 * 1024

	// maxHeaderValue is the largest length a 10-digit header can carry.
	maxHeaderValue = 9_999_999_999
)

// Request-type tags for the compare channel.
const (
	TagFilesInfo    = "GET_FILES_INFO"
	TagReceiveFiles = "RECEIVE_FILES"
)

// Transfer status replies.
const (
	ReplyOK   = "OK"
	ReplyFail = "FAIL"
	replySize = 2
)

// WriteHeader writes the 10-byte length header for a payload of length n.
func WriteHeader(w io.Writer, n int64) error {
	if n < 0 || n > maxHeaderValue {
		return fmt.Errorf("payload length %d does not fit header", n)
	}
	if _, err := fmt.Fprintf(w, "%-*d", HeaderSize, n); err != nil {
		return fmt.Errorf("write length header: %w", err)
	}
	return nil
}

// ReadHeader reads the 10-byte length header and returns the declared
// payload length. A short read or non-numeric header is a protocol error.
func ReadHeader(r io.Reader) (int64, error) {
	var buf [HeaderSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, fmt.Errorf("read length header: %w", err)
	}
	n, err := strconv.ParseInt(strings.TrimSpace(string(buf[:])), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed length header %q", string(buf[:]))
	}
	if n < 0 {
		return 0, fmt.Errorf("negative length header %d", n)
	}
	return n, nil
}

// WriteTag writes the 20-byte space-padded request-type tag.
func WriteTag(w io.Writer, tag string) error {
	if len(tag) > TagSize {
		return fmt.Errorf("tag %q exceeds %d bytes", tag, TagSize)
	}
	if _, err := fmt.Fprintf(w, "%-*s", TagSize, tag); err != nil {
		return fmt.Errorf("write request tag: %w", err)
	}
	return nil
}

// ReadTag reads the 20-byte request-type tag, trimmed of padding.
func ReadTag(r io.Reader) (string, error) {
	var buf [TagSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return "", fmt.Errorf("read request tag: %w", err)
	}
	return strings.TrimRight(string(buf[:]), " "), nil
}

// copyN streams exactly length bytes from src to dst in bounded chunks,
// reporting cumulative bytes after each chunk. An early EOF is a transfer
// failure: the declared length is authoritative.
func copyN(dst io.Writer, src io.Reader, length int64, progress func(written int64)) error {
	buf := make([]byte, chunkSize)
	var written int64
	for written < length {
		n := int64(len(buf))
		if rem := length - written; rem < n {
			n = rem
		}
		rn, err := io.ReadFull(src, buf[:n])
		if rn > 0 {
			if _, werr := dst.Write(buf[:rn]); werr != nil {
				return fmt.Errorf("write payload: %w", werr)
			}
			written += int64(rn)
			if progress != nil {
				progress(written)
			}
		}
		if err != nil {
			return fmt.Errorf("payload ended early at %d of %d bytes: %w", written, length, err)
		}
	}
	return nil
}

// writeReply sends the 2-or-4-byte transfer status.
func writeReply(w io.Writer, ok bool) error {
	reply := ReplyFail
	if ok {
		reply = ReplyOK
	}
	if _, err := io.WriteString(w, reply); err != nil {
		return fmt.Errorf("write reply: %w", err)
	}
	return nil
}

// readReply reads the first two status bytes; anything but "OK" is a
// rejection. FAIL is longer than two bytes, so this never blocks on a
// well-formed reply.
func readReply(r io.Reader) (bool, error) {
	var buf [replySize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return false, fmt.Errorf("read reply: %w", err)
	}
	return string(buf[:]) == ReplyOK, nil
}
