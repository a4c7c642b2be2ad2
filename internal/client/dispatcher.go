package client

import (
	"fmt"
	"reflect"
	"runtime/debug"
	"slices"
	"sync"

	"github.com/omochice/line-chat/internal/logger"
	"github.com/omochice/line-chat/internal/metrics"
	"github.com/omochice/line-chat/pkg/protocol"
)

// Dispatcher keeps the ordered set of listeners and delivers events to them.
type Dispatcher struct {
	mu        sync.RWMutex
	listeners []Listener
	logger    logger.Logger
}

// NewDispatcher creates a Dispatcher with no listeners.
func NewDispatcher(log logger.Logger) *Dispatcher {
	if log == nil {
		log = logger.Nop()
	}
	return &Dispatcher{logger: log}
}

// Add registers l. Adding a listener that is already registered is a no-op.
// Listeners are matched with ==, so a listener whose dynamic type is not
// comparable is rejected.
func (d *Dispatcher) Add(l Listener) {
	if l == nil {
		return
	}
	if !isComparable(l) {
		d.logger.Warn("listener rejected, type is not comparable", "type", fmt.Sprintf("%T", l))
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if slices.Contains(d.listeners, l) {
		return
	}
	d.listeners = append(d.listeners, l)
}

// Remove unregisters l. Removing an unknown listener is a no-op.
func (d *Dispatcher) Remove(l Listener) {
	if l == nil || !isComparable(l) {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if i := slices.Index(d.listeners, l); i >= 0 {
		d.listeners = slices.Delete(d.listeners, i, i+1)
	}
}

func isComparable(l Listener) bool {
	return reflect.TypeOf(l).Comparable()
}

// Len returns the number of registered listeners.
func (d *Dispatcher) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.listeners)
}

// Dispatch delivers ev to every listener in registration order, on the
// calling goroutine. Listeners may add or remove listeners from a handler;
// the change applies from the next event on. Unrecognized events are not
// delivered.
func (d *Dispatcher) Dispatch(ev protocol.Event) {
	if ev == nil || ev.Type() == protocol.EventUnrecognized {
		return
	}

	d.mu.RLock()
	listeners := slices.Clone(d.listeners)
	d.mu.RUnlock()

	metrics.ClientEventsDispatched.WithLabelValues(ev.Type().String()).Inc()
	for _, l := range listeners {
		d.deliver(l, ev)
	}
}

// deliver calls the handler for ev on l. A panicking handler is logged and
// does not stop delivery to the remaining listeners.
func (d *Dispatcher) deliver(l Listener, ev protocol.Event) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("listener panicked",
				"event", ev.Type().String(),
				"panic_info", fmt.Sprintf("%v", r),
				"stacktrace", string(debug.Stack()),
			)
		}
	}()

	switch e := ev.(type) {
	case protocol.LoginResult:
		l.OnLoginResult(e.Success, e.Detail)
	case protocol.Disconnected:
		l.OnDisconnect()
	case protocol.UsersList:
		l.OnUserList(e.Usernames)
	case protocol.PublicMessage:
		l.OnMessageReceived(TextMessage{Sender: e.Sender, Private: false, Text: e.Text})
	case protocol.PrivateMessage:
		l.OnMessageReceived(TextMessage{Sender: e.Sender, Private: true, Text: e.Text})
	case protocol.MessageDeliveryError:
		l.OnMessageError(e.Detail)
	case protocol.CommandError:
		l.OnCommandError(e.Detail)
	case protocol.SupportedCommands:
		l.OnSupportedCommands(e.Names)
	case protocol.MessageAck:
		if al, ok := l.(AckListener); ok {
			al.OnMessageAck()
		}
	}
}
