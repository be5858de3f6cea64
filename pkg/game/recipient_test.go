package game

import (
	"errors"
	"sync"
)

// testRecipient records every line sent to it and can be told to fail.
type testRecipient struct {
	mu    sync.Mutex
	addr  string
	lines []string
	fail  bool
}

func newTestRecipient(addr string) *testRecipient {
	return &testRecipient{addr: addr}
}

func (r *testRecipient) Send(line string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.fail {
		return errors.New("peer gone")
	}
	r.lines = append(r.lines, line)

	return nil
}

func (r *testRecipient) RemoteAddr() string { return r.addr }

func (r *testRecipient) sent() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]string(nil), r.lines...)
}

func (r *testRecipient) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lines = nil
}

func (r *testRecipient) setFail(fail bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.fail = fail
}
