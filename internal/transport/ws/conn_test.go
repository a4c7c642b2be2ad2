package ws_test

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"testing"
	"sync"
	"time"

	gobws "github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"

	"github.com/omochice/line-chat/internal/transport"
	"github.com/omochice/line-chat/internal/transport/ws"
)

func TestConn_ImplementsInterface(t *testing.T) {
	var _ transport.Conn = (*ws.Conn)(nil)
}

// startUpgradeServer accepts one connection, upgrades it and hands the
// server side to handle.
func startUpgradeServer(t *testing.T, path string, handle func(*ws.Conn)) (string, func()) {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		sc, err := ws.Upgrade(conn, bufio.NewReader(conn), path)
		if err != nil {
			return
		}
		handle(sc)
	}()

	cleanup := func() {
		listener.Close()
		<-done
	}
	return listener.Addr().String(), cleanup
}

func TestConn_ReadWriteLine(t *testing.T) {
	received := make(chan string, 1)
	addr, cleanup := startUpgradeServer(t, "/ws", func(sc *ws.Conn) {
		line, err := sc.ReadLine()
		if err != nil {
			t.Errorf("server ReadLine() error: %v", err)
			return
		}
		received <- line
		if err := sc.WriteLine("loginok"); err != nil {
			t.Errorf("server WriteLine() error: %v", err)
		}
		// Wait for the client to hang up.
		sc.ReadLine()
	})
	defer cleanup()

	conn, err := ws.Dial(context.Background(), "ws://"+addr+"/ws")
	if err != nil {
		t.Fatalf("Dial() error: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteLine("login alice"); err != nil {
		t.Fatalf("WriteLine() error: %v", err)
	}

	select {
	case got := <-received:
		if got != "login alice" {
			t.Errorf("server received %q, want %q", got, "login alice")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for server to receive line")
	}

	line, err := conn.ReadLine()
	if err != nil {
		t.Fatalf("ReadLine() error: %v", err)
	}
	if line != "loginok" {
		t.Errorf("ReadLine() = %q, want loginok", line)
	}
}

func TestConn_PeerCloseIsEOF(t *testing.T) {
	addr, cleanup := startUpgradeServer(t, "/ws", func(sc *ws.Conn) {
		sc.Close()
	})
	defer cleanup()

	conn, err := ws.Dial(context.Background(), "ws://"+addr+"/ws")
	if err != nil {
		t.Fatalf("Dial() error: %v", err)
	}
	defer conn.Close()

	if _, err := conn.ReadLine(); err == nil {
		t.Fatal("expected error after peer close, got nil")
	} else if !errors.Is(err, io.EOF) {
		t.Logf("ReadLine() after peer close returned %v", err)
	}
}

func TestUpgrade_RejectsOtherPath(t *testing.T) {
	addr, cleanup := startUpgradeServer(t, "/ws", func(sc *ws.Conn) {
		t.Error("handler called for rejected path")
	})
	defer cleanup()

	if _, err := ws.Dial(context.Background(), "ws://"+addr+"/other"); err == nil {
		t.Error("expected handshake error for wrong path, got nil")
	}
}

func TestConn_CloseIsIdempotent(t *testing.T) {
	addr, cleanup := startUpgradeServer(t, "/ws", func(sc *ws.Conn) {
		sc.ReadLine()
	})
	defer cleanup()

	conn, err := ws.Dial(context.Background(), "ws://"+addr+"/ws")
	if err != nil {
		t.Fatalf("Dial() error: %v", err)
	}

	if err := conn.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := conn.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if conn.RemoteAddr() == "" {
		t.Error("RemoteAddr() returned empty string")
	}
}

func TestConn_PongsDoNotInterleaveWithWrites(t *testing.T) {
	const lines, pings = 200, 50

	addr, cleanup := startUpgradeServer(t, "/ws", func(sc *ws.Conn) {
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range lines {
				if err := sc.WriteLine("msg alice hello"); err != nil {
					return
				}
			}
		}()
		// Answers pings until the client hangs up.
		sc.ReadLine()
		wg.Wait()
	})
	defer cleanup()

	conn, br, _, err := gobws.Dial(context.Background(), "ws://"+addr+"/ws")
	if err != nil {
		t.Fatalf("Dial() error: %v", err)
	}
	defer conn.Close()
	var r io.Reader = conn
	if br != nil {
		r = br
	}

	go func() {
		for range pings {
			if err := wsutil.WriteClientMessage(conn, gobws.OpPing, []byte("ping")); err != nil {
				return
			}
		}
	}()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var gotLines, gotPongs int
	for gotLines < lines || gotPongs < pings {
		frame, err := gobws.ReadFrame(r)
		if err != nil {
			t.Fatalf("ReadFrame() after %d lines and %d pongs: %v", gotLines, gotPongs, err)
		}
		switch {
		case frame.Header.OpCode == gobws.OpText && string(frame.Payload) == "msg alice hello":
			gotLines++
		case frame.Header.OpCode == gobws.OpPong && string(frame.Payload) == "ping":
			gotPongs++
		default:
			t.Fatalf("unexpected frame op=%v payload=%q", frame.Header.OpCode, frame.Payload)
		}
	}
}
