package rawhttp2

import (
	"strconv"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/hpack"

	"github.com/smuggledetect/smuggledetect/pkg/errors"
	"github.com/smuggledetect/smuggledetect/pkg/header"
)

// encodeHeaderBlock HPACK-encodes pseudo headers (in wire order) followed by
// the regular header list, exactly as given — no case-folding, no stripping
// of connection-specific or duplicate pseudo-headers. Grounded on the
// teacher's FrameHandler.sendHeadersFrame/Converter.EncodeHeaders, which
// already builds the block with its own hpack.Encoder ahead of any
// request-validating Transport. Removing that validation step is what this
// function is for: the caller decides what goes in pseudo/regular, and every
// byte it contains reaches the wire.
func (c *connection) encodeHeaderBlock(pseudo []header.Field, regular header.List) ([]byte, error) {
	c.encBuf.Reset()
	for _, f := range pseudo {
		if err := c.encoder.WriteField(hpack.HeaderField{Name: f.NameString(), Value: f.ValueString()}); err != nil {
			return nil, errors.NewProtocolError("encoding pseudo-header "+f.NameString(), err)
		}
	}
	for _, f := range regular {
		if err := c.encoder.WriteField(hpack.HeaderField{Name: f.NameString(), Value: f.ValueString()}); err != nil {
			return nil, errors.NewProtocolError("encoding header "+f.NameString(), err)
		}
	}
	out := make([]byte, c.encBuf.Len())
	copy(out, c.encBuf.Bytes())
	return out, nil
}

// sendHeaders emits a HEADERS frame via Framer.WriteRawFrame, the
// pre-validation path golang.org/x/net/http2 exposes for exactly this
// purpose: unlike Framer.WriteHeaders, WriteRawFrame performs no checks on
// the block fragment's contents (duplicate pseudo-headers, forbidden
// connection-specific headers, header ordering) — it writes the 9-byte
// frame header and the block verbatim.
func (c *connection) sendHeaders(streamID uint32, block []byte, endStream bool) error {
	var flags http2.Flags = http2.FlagHeadersEndHeaders
	if endStream {
		flags |= http2.FlagHeadersEndStream
	}
	if err := c.framer.WriteRawFrame(http2.FrameHeaders, flags, streamID, block); err != nil {
		return errors.NewProtocolError("writing HEADERS frame", err)
	}
	return nil
}

// sendData emits a DATA frame. The caller controls EndStream; when false,
// per §4.3 the stream is deliberately left half-open so a probe can withhold
// the chunked terminator or trailing smuggled bytes.
func (c *connection) sendData(streamID uint32, data []byte, endStream bool) error {
	if err := c.framer.WriteData(streamID, endStream, data); err != nil {
		return errors.NewProtocolError("writing DATA frame", err)
	}
	return nil
}

// decodeHeaderBlock HPACK-decodes a HEADERS frame's block fragment into an
// ordered header.List, splitting out the status pseudo-header. Decoding uses
// the connection's single decoder instance so its dynamic table tracks the
// peer's encoder state across frames on this connection.
func (c *connection) decodeHeaderBlock(block []byte) (status int, regular header.List, err error) {
	fields, decErr := c.decoder.DecodeFull(block)
	if decErr != nil {
		return 0, nil, errors.NewProtocolError("decoding HPACK block", decErr)
	}
	for _, f := range fields {
		if f.Name == ":status" {
			status, _ = strconv.Atoi(f.Value)
			continue
		}
		if len(f.Name) > 0 && f.Name[0] == ':' {
			continue
		}
		regular.Add(f.Name, f.Value)
	}
	return status, regular, nil
}

// readUntilComplete reads frames from the connection until the stream
// receives END_STREAM, the server sends GOAWAY or RST_STREAM for this
// stream, or the read deadline fires. It always returns the Response
// accumulated so far: a timeout mid-stream is the expected shape of a
// vulnerable-target probe, not a failure to report upward (§4.3, §5).
func (c *connection) readUntilComplete(st *stream) error {
	resp := st.response
	for {
		f, err := c.framer.ReadFrame()
		if err != nil {
			return errors.NewProtocolError("reading frame", err)
		}

		switch frame := f.(type) {
		case *http2.HeadersFrame:
			if frame.StreamID != st.id {
				continue
			}
			status, regular, err := c.decodeHeaderBlock(frame.HeaderBlockFragment())
			if err != nil {
				return err
			}
			if status != 0 {
				resp.StatusCode = status
			}
			resp.Headers = append(resp.Headers, regular...)
			if frame.StreamEnded() {
				resp.EndStreamReceived = true
				return nil
			}

		case *http2.DataFrame:
			if frame.StreamID != st.id {
				continue
			}
			data := frame.Data()
			resp.Body = append(resp.Body, data...)
			if n := len(data); n > 0 {
				c.framer.WriteWindowUpdate(frame.StreamID, uint32(n))
				c.framer.WriteWindowUpdate(0, uint32(n))
			}
			if frame.StreamEnded() {
				resp.EndStreamReceived = true
				return nil
			}

		case *http2.SettingsFrame:
			if !frame.IsAck() {
				c.framer.WriteSettingsAck()
			}

		case *http2.WindowUpdateFrame:
			// Nothing to act on: probe bodies are small enough that this
			// client never needs to track its own send window.

		case *http2.PingFrame:
			c.framer.WritePing(true, frame.Data)

		case *http2.GoAwayFrame:
			resp.GoAway = true
			resp.GoAwayErrorCode = uint32(frame.ErrCode)
			return nil

		case *http2.RSTStreamFrame:
			if frame.StreamID == st.id {
				resp.StreamReset = true
				resp.StreamResetCode = uint32(frame.ErrCode)
				return nil
			}
		}
	}
}
