// Package hub fans dashboard updates out to websocket clients. One goroutine
// owns the client set; everything else talks to it over channels.
package hub

import "github.com/gofiber/websocket/v2"

// Message is one frame sent to every client of a hub.
type Message struct {
	Binary bool
	Data   []byte
}

// Text wraps pre-encoded JSON.
func Text(data []byte) Message {
	return Message{Data: data}
}

// Binary wraps raw bytes such as a JPEG preview frame.
func Binary(data []byte) Message {
	return Message{Binary: true, Data: data}
}

// frameType is the websocket opcode for m.
func (m Message) frameType() int {
	if m.Binary {
		return websocket.BinaryMessage
	}
	return websocket.TextMessage
}
