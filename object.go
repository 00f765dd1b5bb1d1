package rowan

// Object is the base identity every node carries: a class name binding the
// instance to its property registry entry, and a table of declared signals.
// Object owns no tree semantics.
type Object struct {
	// Class names the concrete type in the class registry. Set by the
	// constructor, stable for the life of the instance.
	Class string

	signals map[string]*signal
}

// clearSignals drops every signal channel and its connections. Called when
// a node is freed so stale connections cannot fire into a dead object.
func (o *Object) clearSignals() {
	for _, sig := range o.signals {
		for _, c := range sig.conns {
			c.dead = true
		}
		sig.conns = nil
	}
	o.signals = nil
}
