package ipc

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/voxellabs/voxel-presence/internal/codec"
)

const (
	HeaderLen = 8
	// MaxPayloadLen is the exclusive upper bound on a declared payload length.
	MaxPayloadLen = 1 << 16
)

var ErrMalformedFrame = errors.New("ipc: malformed frame")

func EncodeFrame(op OpCode, payload []byte) []byte {
	buf := make([]byte, HeaderLen+len(payload))
	binary.LittleEndian.PutUint32(buf[0:4], uint32(op))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(len(payload)))
	copy(buf[HeaderLen:], payload)
	return buf
}

func EncodeFrameOp(op OpCode, payload any) ([]byte, error) {
	j, err := codec.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", op, err)
	}
	if len(j) >= MaxPayloadLen {
		return nil, fmt.Errorf("%w: payload length %d", ErrMalformedFrame, len(j))
	}
	return EncodeFrame(op, j), nil
}

// DecodeHeader validates the declared length before the caller allocates anything.
func DecodeHeader(b []byte) (OpCode, uint32, error) {
	if len(b) != HeaderLen {
		return 0, 0, fmt.Errorf("%w: header length %d", ErrMalformedFrame, len(b))
	}
	op := OpCode(binary.LittleEndian.Uint32(b[0:4]))
	length := binary.LittleEndian.Uint32(b[4:8])
	if length >= MaxPayloadLen {
		return 0, 0, fmt.Errorf("%w: payload length %d", ErrMalformedFrame, length)
	}
	return op, length, nil
}

func DecodeFrame(b []byte) (Frame, error) {
	if len(b) < HeaderLen {
		return Frame{}, fmt.Errorf("%w: buffer too small", ErrMalformedFrame)
	}
	op, length, err := DecodeHeader(b[:HeaderLen])
	if err != nil {
		return Frame{}, err
	}
	if len(b[HeaderLen:]) != int(length) {
		return Frame{}, fmt.Errorf("%w: frame length mismatch: expected %d got %d", ErrMalformedFrame, length, len(b[HeaderLen:]))
	}
	payload := make(codec.RawMessage, length)
	copy(payload, b[HeaderLen:])
	return Frame{Op: op, Payload: payload}, nil
}

func ReadFrame(r io.Reader) (Frame, error) {
	var header [HeaderLen]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return Frame{}, err
	}
	op, length, err := DecodeHeader(header[:])
	if err != nil {
		return Frame{}, err
	}
	payload := make(codec.RawMessage, length)
	if length > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return Frame{}, fmt.Errorf("read %s payload: %w", op, err)
		}
	}
	return Frame{Op: op, Payload: payload}, nil
}
