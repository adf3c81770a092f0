package rawhttp2

// newStream allocates the next client stream ID, registers a *stream for it
// in the connection's registry, and returns it. Simplified from the
// teacher's StreamManager: no concurrent-stream limit, no total-stream cap,
// and no mutex — §5 restricts a connection to one goroutine and exactly one
// in-flight stream (baseline and probe never overlap on the same socket),
// so the teacher's locking and exhaustion bookkeeping has nothing to guard
// against here.
func (c *connection) newStream() *stream {
	id := c.allocateStreamID()
	st := &stream{id: id, response: newResponse(id)}
	c.streams[id] = st
	return st
}

// getStream looks up a previously registered stream by ID.
func (c *connection) getStream(id uint32) (*stream, bool) {
	st, ok := c.streams[id]
	return st, ok
}
