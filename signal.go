package rowan

import "fmt"

// SignalHandler is a subscriber callback. Arguments are passed through from
// Emit unchanged.
type SignalHandler func(args ...any)

// Connection is the handle returned by Connect, used to disconnect.
// Go function values are not comparable, so disconnection is by handle
// rather than by callback.
type Connection struct {
	signal  *signal
	fn      SignalHandler
	oneShot bool
	dead    bool
}

// Active reports whether the connection is still registered.
func (c *Connection) Active() bool {
	return c != nil && !c.dead
}

// signal is a single named channel: an ordered list of live connections.
type signal struct {
	name  string
	conns []*Connection
}

// connect appends a connection. Delivery order equals connection order.
func (s *signal) connect(fn SignalHandler, oneShot bool) *Connection {
	c := &Connection{signal: s, fn: fn, oneShot: oneShot}
	s.conns = append(s.conns, c)
	return c
}

// disconnect removes a connection. No-op if it is not present.
func (s *signal) disconnect(c *Connection) {
	if c == nil || c.dead || c.signal != s {
		return
	}
	c.dead = true
	for i, cc := range s.conns {
		if cc == c {
			copy(s.conns[i:], s.conns[i+1:])
			s.conns[len(s.conns)-1] = nil
			s.conns = s.conns[:len(s.conns)-1]
			return
		}
	}
}

// emit invokes every current subscriber in connection order, synchronously.
//
// The connection list is snapshotted before iterating, so a subscriber added
// during emission is not invoked in the same emission, and one disconnected
// during emission is skipped if not yet reached. One-shot connections are
// disconnected immediately before their callback runs.
func (s *signal) emit(args []any) {
	if len(s.conns) == 0 {
		return
	}
	snapshot := make([]*Connection, len(s.conns))
	copy(snapshot, s.conns)
	for _, c := range snapshot {
		if c.dead {
			continue
		}
		if c.oneShot {
			s.disconnect(c)
		}
		c.fn(args...)
	}
}

// --- Object-level signal surface ---

// AddSignal declares a named signal channel on the object. Each name may be
// declared once per instance; redeclaring is a programming error and panics.
func (o *Object) AddSignal(name string) {
	if o.signals == nil {
		o.signals = make(map[string]*signal)
	}
	if _, ok := o.signals[name]; ok {
		panic(fmt.Sprintf("rowan: signal %q declared twice", name))
	}
	o.signals[name] = &signal{name: name}
}

// HasSignal reports whether the named signal is declared on the object.
func (o *Object) HasSignal(name string) bool {
	_, ok := o.signals[name]
	return ok
}

// Connect registers a subscriber on the named signal and returns its
// connection handle. Fails with ErrUnknownSignal if the name was never
// declared.
func (o *Object) Connect(name string, fn SignalHandler) (*Connection, error) {
	sig, ok := o.signals[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q on class %q", ErrUnknownSignal, name, o.Class)
	}
	return sig.connect(fn, false), nil
}

// ConnectOnce registers a subscriber that auto-disconnects immediately
// before its first invocation.
func (o *Object) ConnectOnce(name string, fn SignalHandler) (*Connection, error) {
	sig, ok := o.signals[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q on class %q", ErrUnknownSignal, name, o.Class)
	}
	return sig.connect(fn, true), nil
}

// Disconnect removes a connection. No-op if the connection is nil, already
// disconnected, or not owned by this object.
func (o *Object) Disconnect(c *Connection) {
	if c == nil || c.signal == nil {
		return
	}
	c.signal.disconnect(c)
}

// Emit invokes every subscriber of the named signal in connection order,
// passing args unchanged. Fails with ErrUnknownSignal if the name was never
// declared.
func (o *Object) Emit(name string, args ...any) error {
	sig, ok := o.signals[name]
	if !ok {
		return fmt.Errorf("%w: %q on class %q", ErrUnknownSignal, name, o.Class)
	}
	sig.emit(args)
	return nil
}

// ConnectionCount returns the number of live connections on the named
// signal, or 0 if the signal is not declared.
func (o *Object) ConnectionCount(name string) int {
	if sig, ok := o.signals[name]; ok {
		return len(sig.conns)
	}
	return 0
}
