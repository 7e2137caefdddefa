package broadcast

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// busEndpoint is one side of an in-process transport pair. Sends are
// non-blocking: when the peer's buffer is full the message is dropped, which
// is harmless because the receiver only ever keeps the latest snapshot.
type busEndpoint struct {
	out  chan Message
	in   chan Message
	done chan struct{}
	once *sync.Once
}

// NewBus returns a connected transport pair for a console and display running
// in the same process. Closing either side closes both.
func NewBus(buffer int) (console Transport, display Transport) {
	if buffer <= 0 {
		buffer = 16
	}
	toDisplay := make(chan Message, buffer)
	toConsole := make(chan Message, buffer)
	done := make(chan struct{})
	once := &sync.Once{}

	console = &busEndpoint{out: toDisplay, in: toConsole, done: done, once: once}
	display = &busEndpoint{out: toConsole, in: toDisplay, done: done, once: once}
	return console, display
}

func (b *busEndpoint) Send(msg Message) error {
	select {
	case <-b.done:
		return nil // closed peer, fire-and-forget drop
	default:
	}
	select {
	case b.out <- msg:
	default:
		log.Warn().Str("type", string(msg.Type)).Msg("bus buffer full, dropping message")
	}
	return nil
}

func (b *busEndpoint) Receive() <-chan Message {
	return b.in
}

func (b *busEndpoint) Close() error {
	b.once.Do(func() {
		close(b.done)
	})
	return nil
}
