package rawhttp2

import (
	"github.com/smuggledetect/smuggledetect/pkg/header"
	"github.com/smuggledetect/smuggledetect/pkg/timing"
)

// Response accumulates whatever HEADERS/DATA a stream received before
// END_STREAM, GOAWAY, RST_STREAM, or a read timeout ended the attempt. A
// timed-out or reset Response is still returned with ElapsedSeconds set —
// the detector kernel relies on partial results exactly as it does for C2.
type Response struct {
	StreamID   uint32
	StatusCode int
	Headers    header.List
	Body       []byte

	EndStreamReceived bool
	GoAway            bool
	GoAwayErrorCode   uint32
	StreamReset       bool
	StreamResetCode   uint32

	ElapsedSeconds float64
	ConnectMetrics timing.Metrics

	NegotiatedProtocol string
	TLSVersion         string
	TLSCipherSuite     string
	TLSServerName      string
}

func newResponse(streamID uint32) *Response {
	return &Response{StreamID: streamID}
}
