package rawhttp1

import (
	"bufio"
	"bytes"
	"io"
	"strconv"
	"strings"

	"github.com/smuggledetect/smuggledetect/pkg/errors"
)

// readChunkedBody reads a chunked transfer-coded body: hex size line
// (chunk-extensions after ';' ignored), chunk data, trailing CRLF, repeated
// until a zero-size chunk, followed by optional trailers and a blank line.
// Adapted from the teacher's readChunkedBody.
func readChunkedBody(r *bufio.Reader, resp *Response) error {
	for {
		line, err := readLine(r)
		if err != nil {
			return errors.NewProtocolError("reading chunk size", err)
		}
		if _, err := resp.Raw.Write([]byte(line + "\r\n")); err != nil {
			return err
		}

		sizeField := line
		if idx := strings.IndexByte(line, ';'); idx >= 0 {
			sizeField = line[:idx]
		}
		size, err := strconv.ParseInt(strings.TrimSpace(sizeField), 16, 64)
		if err != nil {
			return errors.NewProtocolError("invalid chunk size", err)
		}

		if size == 0 {
			break
		}

		n, err := io.CopyN(io.MultiWriter(resp.Body, resp.Raw), r, size)
		resp.BodyBytes += n
		if err != nil {
			return errors.NewProtocolError("reading chunk body", err)
		}

		crlf := make([]byte, 2)
		if _, err := io.ReadFull(r, crlf); err != nil {
			return errors.NewProtocolError("reading chunk CRLF", err)
		}
		if _, err := resp.Raw.Write(crlf); err != nil {
			return err
		}
	}

	// Trailers, terminated by a blank line.
	for {
		line, err := readLine(r)
		if err != nil {
			return errors.NewProtocolError("reading chunk trailer", err)
		}
		if _, err := resp.Raw.Write([]byte(line + "\r\n")); err != nil {
			return err
		}
		if line == "" {
			break
		}
		if name, value, ok := strings.Cut(line, ":"); ok {
			resp.Headers.Add(strings.TrimSpace(name), strings.TrimSpace(value))
		}
	}

	return nil
}

// WriteChunked encodes body as a chunked-transfer-coded byte string using
// the given chunk sizes, cycling through sizes if the body is longer than
// their sum. Used by the chunked round-trip property test; the CL.TE/TE.CL
// probe bodies are written out as literals instead.
func WriteChunked(body []byte, chunkSizes ...int) []byte {
	if len(chunkSizes) == 0 {
		chunkSizes = []int{len(body)}
	}

	var out []byte
	offset := 0
	i := 0
	for offset < len(body) {
		size := chunkSizes[i%len(chunkSizes)]
		if size <= 0 {
			size = 1
		}
		if offset+size > len(body) {
			size = len(body) - offset
		}
		out = append(out, []byte(strconv.FormatInt(int64(size), 16))...)
		out = append(out, '\r', '\n')
		out = append(out, body[offset:offset+size]...)
		out = append(out, '\r', '\n')
		offset += size
		i++
	}
	out = append(out, '0', '\r', '\n', '\r', '\n')
	return out
}

// DecodeChunked decodes a standalone chunked-transfer-coded byte string
// (no surrounding status line/headers), for round-trip property testing.
func DecodeChunked(data []byte) ([]byte, error) {
	r := bufio.NewReader(bytes.NewReader(data))
	var out bytes.Buffer

	for {
		line, err := readLine(r)
		if err != nil {
			return nil, errors.NewProtocolError("reading chunk size", err)
		}
		sizeField := line
		if idx := strings.IndexByte(line, ';'); idx >= 0 {
			sizeField = line[:idx]
		}
		size, err := strconv.ParseInt(strings.TrimSpace(sizeField), 16, 64)
		if err != nil {
			return nil, errors.NewProtocolError("invalid chunk size", err)
		}
		if size == 0 {
			break
		}
		if _, err := io.CopyN(&out, r, size); err != nil {
			return nil, errors.NewProtocolError("reading chunk body", err)
		}
		crlf := make([]byte, 2)
		if _, err := io.ReadFull(r, crlf); err != nil {
			return nil, errors.NewProtocolError("reading chunk CRLF", err)
		}
	}

	return out.Bytes(), nil
}
