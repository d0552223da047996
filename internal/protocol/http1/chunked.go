package http1

import (
	"bytes"
	"io"

	"github.com/indigo-web/h2tp/http/status"
	"github.com/indigo-web/h2tp/internal/hexconv"
)

type chunkedState uint8

const (
	eChunkLength chunkedState = iota
	eChunkExt
	eChunkLengthLF
	eChunkBody
	eChunkBodyCR
	eChunkBodyLF
	eChunkTrailer
	eChunkTrailerLF
	eChunkTrailerFieldLine
)

// maxChunkLengthDigits keeps the chunk length within the positive int64 range.
const maxChunkLengthDigits = 15

// chunkedDecoder decodes the chunked transfer coding. Chunk lengths are hexadecimal, as
// RFC 9112 mandates. Chunk extensions and trailer fields are skipped.
type chunkedDecoder struct {
	state        chunkedState
	lengthDigits uint8
	chunkLength  uint64
}

// Parse returns a piece of chunk data as soon as there's any. extra is the rest of data
// which wasn't consumed yet, nil if all of it was. io.EOF signals that the terminating
// zero-length chunk and the trailer section were consumed. The decoder resets itself after
// that.
func (c *chunkedDecoder) Parse(data []byte) (chunk, extra []byte, err error) {
	switch c.state {
	case eChunkLength:
		goto chunkLength
	case eChunkExt:
		goto chunkExt
	case eChunkLengthLF:
		goto chunkLengthLF
	case eChunkBody:
		goto chunkBody
	case eChunkBodyCR:
		goto chunkBodyCR
	case eChunkBodyLF:
		goto chunkBodyLF
	case eChunkTrailer:
		goto trailer
	case eChunkTrailerLF:
		goto trailerLF
	case eChunkTrailerFieldLine:
		goto trailerFieldLine
	default:
		panic("unreachable code")
	}

chunkLength:
	for i := 0; i < len(data); i++ {
		switch char := data[i]; char {
		case '\r':
			if c.lengthDigits == 0 {
				return nil, nil, status.ErrBadChunk
			}

			data = data[i+1:]
			goto chunkLengthLF
		case ';':
			if c.lengthDigits == 0 {
				return nil, nil, status.ErrBadChunk
			}

			data = data[i+1:]
			goto chunkExt
		default:
			val := hexconv.Halfbyte[char]
			if val == 0xFF {
				return nil, nil, status.ErrBadChunk
			}

			c.chunkLength = (c.chunkLength << 4) | uint64(val)
			if c.lengthDigits++; c.lengthDigits > maxChunkLengthDigits {
				return nil, nil, status.ErrBadChunk
			}
		}
	}

	c.state = eChunkLength
	return nil, nil, nil

chunkExt:
	{
		// currently no chunk extensions are supported, therefore completely ignored.
		boundary := bytes.IndexByte(data, '\r')
		if boundary == -1 {
			c.state = eChunkExt
			return nil, nil, nil
		}

		data = data[boundary+1:]
		goto chunkLengthLF
	}

chunkLengthLF:
	if len(data) == 0 {
		c.state = eChunkLengthLF
		return nil, nil, nil
	}

	if data[0] != '\n' {
		return nil, nil, status.ErrBadChunk
	}

	data = data[1:]
	c.lengthDigits = 0

	if c.chunkLength == 0 {
		goto trailer
	}

	goto chunkBody

chunkBody:
	{
		if len(data) == 0 {
			c.state = eChunkBody
			return nil, nil, nil
		}

		n := min(c.chunkLength, uint64(len(data)))
		c.chunkLength -= n

		if c.chunkLength == 0 {
			c.state = eChunkBodyCR
		} else {
			c.state = eChunkBody
		}

		return data[:n], data[n:], nil
	}

chunkBodyCR:
	if len(data) == 0 {
		c.state = eChunkBodyCR
		return nil, nil, nil
	}

	if data[0] != '\r' {
		return nil, nil, status.ErrBadChunk
	}

	data = data[1:]
	goto chunkBodyLF

chunkBodyLF:
	if len(data) == 0 {
		c.state = eChunkBodyLF
		return nil, nil, nil
	}

	if data[0] != '\n' {
		return nil, nil, status.ErrBadChunk
	}

	data = data[1:]
	goto chunkLength

trailer:
	if len(data) == 0 {
		c.state = eChunkTrailer
		return nil, nil, nil
	}

	if data[0] == '\r' {
		data = data[1:]
		goto trailerLF
	}

	// we've got some field lines
	goto trailerFieldLine

trailerLF:
	if len(data) == 0 {
		c.state = eChunkTrailerLF
		return nil, nil, nil
	}

	if data[0] != '\n' {
		return nil, nil, status.ErrBadChunk
	}

	c.reset()
	return nil, data[1:], io.EOF

trailerFieldLine:
	{
		boundary := bytes.IndexByte(data, '\n')
		if boundary == -1 {
			c.state = eChunkTrailerFieldLine
			return nil, nil, nil
		}

		data = data[boundary+1:]
		goto trailer
	}
}

func (c *chunkedDecoder) reset() {
	*c = chunkedDecoder{}
}
