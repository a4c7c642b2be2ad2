package server

import (
	"bufio"
	"bytes"
)

type protocolType int

const (
	protocolTCP protocolType = iota
	protocolHTTP
)

func (p protocolType) String() string {
	if p == protocolHTTP {
		return "websocket"
	}
	return "tcp"
}

// detectProtocol peeks at the first bytes to decide between a WebSocket
// handshake and raw chat lines. A line shorter than four bytes must not block
// the peek, so the full method is only read once the first byte is 'G'.
func detectProtocol(reader *bufio.Reader) (protocolType, error) {
	first, err := reader.Peek(1)
	if err != nil {
		return protocolTCP, err
	}
	if first[0] != 'G' {
		return protocolTCP, nil
	}

	peek, err := reader.Peek(4)
	if err != nil {
		// "G" followed by a short line and EOF is still a chat client.
		return protocolTCP, nil
	}
	if bytes.Equal(peek, []byte("GET ")) {
		return protocolHTTP, nil
	}
	return protocolTCP, nil
}
