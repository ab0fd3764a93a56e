package repotest

import (
	"context"
	"sync"
)

// Bus is an in-memory pub/sub with the same shape as cache.Bus.
type Bus struct {
	mu        sync.Mutex
	subs      map[string][]chan []byte
	Published map[string][][]byte
}

func NewBus() *Bus {
	return &Bus{
		subs:      map[string][]chan []byte{},
		Published: map[string][][]byte{},
	}
}

func (b *Bus) Publish(_ context.Context, channel string, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Published[channel] = append(b.Published[channel], payload)
	for _, ch := range b.subs[channel] {
		select {
		case ch <- payload:
		default:
		}
	}
	return nil
}

func (b *Bus) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	ch := make(chan []byte, 16)
	b.mu.Lock()
	b.subs[channel] = append(b.subs[channel], ch)
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		defer b.mu.Unlock()
		subs := b.subs[channel]
		for i, c := range subs {
			if c == ch {
				b.subs[channel] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
		close(ch)
	}()
	return ch, nil
}

// Count returns how many payloads were published on channel.
func (b *Bus) Count(channel string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.Published[channel])
}
