package proto

import (
	"io"
)

// linkCall scripts the outcome of one Read or Write on a fakeLink.
type linkCall struct {
	n    int // bytes to report; -1 means "whatever fits"
	err  error
	data []byte
}

func callOK(data []byte) linkCall { return linkCall{n: -1, data: data} }

func callStall() linkCall { return linkCall{n: 0} }

func callErr(err error) linkCall { return linkCall{err: err} }

func callData(n int, data []byte) linkCall { return linkCall{n: n, data: data} }

// fakeLink records every frame and payload the protocol engine writes
// and plays back scripted read/write outcomes.
type fakeLink struct {
	writes      [][]byte
	writeScript []linkCall
	readScript  []linkCall

	writeCalls int
	readCalls  int
	purges     int
	chunk      int
}

func (l *fakeLink) Write(p []byte) (int, error) {
	l.writeCalls++
	c := linkCall{n: -1}
	if len(l.writeScript) > 0 {
		c = l.writeScript[0]
		l.writeScript = l.writeScript[1:]
	}
	if c.err != nil {
		return 0, c.err
	}
	buf := make([]byte, len(p))
	copy(buf, p)
	l.writes = append(l.writes, buf)
	if c.n < 0 || c.n > len(p) {
		return len(p), nil
	}
	return c.n, nil
}

func (l *fakeLink) Read(p []byte) (int, error) {
	l.readCalls++
	if len(l.readScript) == 0 {
		return 0, io.EOF
	}
	c := l.readScript[0]
	l.readScript = l.readScript[1:]
	if c.err != nil {
		return 0, c.err
	}
	n := copy(p, c.data)
	if c.n >= 0 && c.n < n {
		n = c.n
	}
	return n, nil
}

func (l *fakeLink) Purge() error {
	l.purges++
	return nil
}

func (l *fakeLink) SetChunkSize(n int) error {
	l.chunk = n
	return nil
}

func (l *fakeLink) Close() error {
	return nil
}
