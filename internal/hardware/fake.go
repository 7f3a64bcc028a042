package hardware

import (
	"sync"
)

// FakeLink is a scripted Link for tests. Frames queued with Respond are
// returned by Poll after the next Request; MissRequests makes that many
// requests go unanswered.
type FakeLink struct {
	mu        sync.Mutex
	requests  int
	commands  [][2]byte
	responses [][]byte
	ready     [][]byte
	miss      int
	pollErr   error
	cmdErr    error
	closed    bool
}

func NewFakeLink() *FakeLink { return &FakeLink{} }

// Respond queues a frame to answer a future request.
func (f *FakeLink) Respond(frame []byte) {
	f.mu.Lock()
	f.responses = append(f.responses, frame)
	f.mu.Unlock()
}

// MissRequests leaves the next n requests unanswered.
func (f *FakeLink) MissRequests(n int) {
	f.mu.Lock()
	f.miss = n
	f.mu.Unlock()
}

// FailCommands makes every Command return err.
func (f *FakeLink) FailCommands(err error) {
	f.mu.Lock()
	f.cmdErr = err
	f.mu.Unlock()
}

func (f *FakeLink) Request(tag byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrClosed
	}
	f.requests++
	f.ready = nil
	if f.miss > 0 {
		f.miss--
		return nil
	}
	if len(f.responses) > 0 {
		f.ready = append(f.ready, f.responses[0])
		f.responses = f.responses[1:]
	}
	return nil
}

func (f *FakeLink) Poll() ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pollErr != nil {
		return nil, false, f.pollErr
	}
	if len(f.ready) == 0 {
		return nil, false, nil
	}
	fr := f.ready[0]
	f.ready = f.ready[1:]
	return fr, true, nil
}

func (f *FakeLink) Command(tag byte, pumpID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cmdErr != nil {
		return f.cmdErr
	}
	f.commands = append(f.commands, [2]byte{tag, byte(pumpID)})
	return nil
}

func (f *FakeLink) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

// Requests returns how many requests were sent.
func (f *FakeLink) Requests() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests
}

// Commands returns every command sent, oldest first.
func (f *FakeLink) Commands() [][2]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][2]byte, len(f.commands))
	copy(out, f.commands)
	return out
}

// FailPolls makes every Poll return err.
func (f *FakeLink) FailPolls(err error) {
	f.mu.Lock()
	f.pollErr = err
	f.mu.Unlock()
}
