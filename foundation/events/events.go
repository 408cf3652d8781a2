// Package events fans out messages describing committed sale activity to
// any number of subscribers, such as websocket clients.
package events

import (
	"fmt"
	"sync"
)

// Message is a single notification sent to subscribers.
type Message struct {
	Kind string `json:"kind"`
	Data any    `json:"data"`
}

// Events maintains a mapping of subscriber id and channels so goroutines
// can register and receive messages.
type Events struct {
	m  map[string]chan Message
	mu sync.RWMutex
}

// New constructs an events value for registering and receiving messages.
func New() *Events {
	return &Events{
		m: make(map[string]chan Message),
	}
}

// Shutdown closes and removes all channels that were provided by the call
// to Acquire.
func (evt *Events) Shutdown() {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	for id, ch := range evt.m {
		delete(evt.m, id)
		close(ch)
	}
}

// Acquire takes a unique id and returns a channel that can be used to
// receive messages.
func (evt *Events) Acquire(id string) chan Message {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	ch, exists := evt.m[id]
	if exists {
		return ch
	}

	// A message is dropped when the receiver is not ready, so the buffer
	// gives a slow websocket writer room to catch up.
	const messageBuffer = 100

	evt.m[id] = make(chan Message, messageBuffer)
	return evt.m[id]
}

// Release closes and removes the channel that was provided by the call to
// Acquire.
func (evt *Events) Release(id string) error {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	ch, exists := evt.m[id]
	if !exists {
		return fmt.Errorf("id %q does not exist", id)
	}

	delete(evt.m, id)
	close(ch)
	return nil
}

// Send signals a message to every registered channel. Send will not block
// waiting for a receiver on any given channel and reports how many
// subscribers the message was delivered to.
func (evt *Events) Send(kind string, data any) int {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	msg := Message{Kind: kind, Data: data}

	var sent int
	for _, ch := range evt.m {
		select {
		case ch <- msg:
			sent++
		default:
		}
	}

	return sent
}

// Subscribers returns the number of registered channels.
func (evt *Events) Subscribers() int {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	return len(evt.m)
}
