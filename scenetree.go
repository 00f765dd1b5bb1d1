package rowan

import (
	"time"

	"go.uber.org/zap"
)

// defaultPhysicsStep is the fixed timestep of the physics pass.
const defaultPhysicsStep = 1.0 / 60.0

// TreeConfig configures a SceneTree. The zero value gives a 1/60 physics
// step, a Z scale of 1, and a no-op logger.
type TreeConfig struct {
	// PhysicsStep is the fixed timestep of the physics pass, in seconds.
	PhysicsStep float64
	// ZScale converts a canvas item's effective Z index into 3D depth.
	ZScale float64
	// Logger receives lifecycle traces and per-frame stats. Defaults to
	// zap.NewNop.
	Logger *zap.Logger
}

// SceneTree owns the live root node and drives the per-frame traversal.
// Scheduling is single-threaded, cooperative, and frame-stepped: _ready,
// _process, _physicsProcess, and signal emission all run to completion
// before control returns to the frame driver. No node callback may block;
// long-running work belongs in a deferred callback resumed on a later
// frame.
type SceneTree struct {
	root    *Node
	current *Node

	// Paused suspends process callbacks of ProcessModePausable nodes.
	Paused bool

	log   *zap.Logger
	debug bool

	physicsStep  float64
	physicsAccum float64
	zScale       float64
	frame        uint64

	// locked is set for the duration of a traversal; structural edits
	// while locked go through the deferred queue.
	locked    bool
	deferred  []func()
	freeQueue []*Node

	tweens  []*PropertyTween
	cameras []*Camera

	// Reused draw item buffer for Render; grows to high-water mark.
	drawBuf []DrawItem

	statVisited int
}

// NewSceneTree constructs a tree with a plain root node already attached.
func NewSceneTree(cfg TreeConfig) *SceneTree {
	if cfg.PhysicsStep <= 0 {
		cfg.PhysicsStep = defaultPhysicsStep
	}
	if cfg.ZScale == 0 {
		cfg.ZScale = 1
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	s := &SceneTree{
		log:         cfg.Logger,
		physicsStep: cfg.PhysicsStep,
		zScale:      cfg.ZScale,
	}
	s.root = NewNode("root")
	s.root.tree = s
	return s
}

// Root returns the tree's root node.
func (s *SceneTree) Root() *Node {
	return s.root
}

// Current returns the current scene node, or nil if none was set.
func (s *SceneTree) Current() *Node {
	return s.current
}

// ChangeScene frees the current scene (if any), attaches next under the
// root, and makes it current. Mid-traversal the swap is deferred to the
// frame boundary, so a frame never observes a half-switched tree.
func (s *SceneTree) ChangeScene(next *Node) {
	apply := func() {
		if s.current != nil && !s.current.IsFreed() {
			s.current.Free()
		}
		s.root.AddChild(next)
		s.current = next
		s.log.Debug("scene changed", zap.String("scene", next.Name()))
	}
	if s.locked {
		s.deferred = append(s.deferred, apply)
		return
	}
	apply()
}

// SetLogger replaces the tree's logger. Pass nil to silence it.
func (s *SceneTree) SetLogger(log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	s.log = log
}

// SetDebugMode enables freed-node use checks, tree shape warnings, and
// per-frame stats logging. Mirrors into the package-level flag so node
// operations without a tree pointer can check it cheaply; only valid with
// a single tree in debug mode at a time.
func (s *SceneTree) SetDebugMode(enabled bool) {
	s.debug = enabled
	globalDebug = enabled
	debugLogger = s.log
}

// ZScale returns the canvas depth scale used by the 2D->3D bridge.
func (s *SceneTree) ZScale() float64 {
	return s.zScale
}

// Frame returns the number of completed Step calls.
func (s *SceneTree) Frame() uint64 {
	return s.frame
}

// --- Frame stepping ---

// Step advances the tree by delta seconds: tweens and cameras first, then a
// deterministic depth-first pre-order traversal firing ready-once and
// process callbacks, then as many fixed physics steps as the accumulator
// covers, and finally the deferred structural-edit queue. Traversal order
// is child array order and is stable across runs for identical trees.
func (s *SceneTree) Step(delta float64) {
	s.frame++
	var t0 time.Time
	if s.debug {
		t0 = time.Now()
		s.statVisited = 0
	}

	s.stepTweens(delta)
	for _, cam := range s.cameras {
		cam.Update(delta)
	}

	s.locked = true
	s.processNode(s.root, delta)
	s.locked = false

	s.physicsAccum += delta
	for s.physicsAccum >= s.physicsStep {
		s.physicsAccum -= s.physicsStep
		s.locked = true
		s.physicsNode(s.root, s.physicsStep)
		s.locked = false
	}

	s.flushDeferred()

	if s.debug {
		s.log.Debug("frame",
			zap.Uint64("frame", s.frame),
			zap.Int("nodes", s.statVisited),
			zap.Duration("took", time.Since(t0)),
		)
	}
}

// processNode fires ready-once and process on n, then recurses in child
// order. Freed nodes (queued mid-frame) are simply absent from further
// work: the tree itself is the scheduling domain, so no cancellation token
// is needed.
func (s *SceneTree) processNode(n *Node, delta float64) {
	if n.freed {
		return
	}
	if s.debug {
		s.statVisited++
	}
	if !n.ready {
		if n.OnReady != nil {
			n.OnReady(n)
		}
		n.ready = true
		_ = n.Emit(SignalReady)
	}
	if n.OnProcess != nil && s.canProcess(n) {
		n.OnProcess(n, delta)
	}
	for _, c := range n.children {
		s.processNode(c, delta)
	}
}

// physicsNode drives the fixed-step pass over nodes flagged for physics.
func (s *SceneTree) physicsNode(n *Node, delta float64) {
	if n.freed {
		return
	}
	if n.physicsEnabled && n.OnPhysicsProcess != nil && s.canProcess(n) {
		n.OnPhysicsProcess(n, delta)
	}
	for _, c := range n.children {
		s.physicsNode(c, delta)
	}
}

// canProcess resolves a node's process mode against the tree's pause state.
func (s *SceneTree) canProcess(n *Node) bool {
	switch n.ProcessMode {
	case ProcessModeDisabled:
		return false
	case ProcessModeAlways:
		return true
	default:
		return !s.Paused
	}
}

// --- Deferred structural edits ---

// Defer queues fn to run after the current traversal, at the frame
// boundary. Safe to call at any time; outside a frame the callback still
// waits for the next flush so ordering stays predictable.
func (s *SceneTree) Defer(fn func()) {
	s.deferred = append(s.deferred, fn)
}

// Flush runs the deferred queue immediately. Must not be called from
// inside a traversal; Step calls it at the frame boundary.
func (s *SceneTree) Flush() {
	if s.locked {
		panic("rowan: Flush during tree traversal")
	}
	s.flushDeferred()
}

func (s *SceneTree) queueFree(n *Node) {
	for _, q := range s.freeQueue {
		if q == n {
			return
		}
	}
	s.freeQueue = append(s.freeQueue, n)
}

// flushDeferred drains deferred callbacks and queued frees. Either may
// enqueue more work; the loop runs until both queues are empty.
func (s *SceneTree) flushDeferred() {
	for len(s.deferred) > 0 || len(s.freeQueue) > 0 {
		fns := s.deferred
		s.deferred = nil
		for _, fn := range fns {
			fn()
		}
		queue := s.freeQueue
		s.freeQueue = nil
		for _, n := range queue {
			if n == s.current {
				s.current = nil
			}
			n.Free()
		}
	}
}

// --- Cameras ---

// AttachCamera registers a camera to be updated each frame.
func (s *SceneTree) AttachCamera(cam *Camera) {
	s.cameras = append(s.cameras, cam)
}

// DetachCamera removes a camera. No-op if it is not attached.
func (s *SceneTree) DetachCamera(cam *Camera) {
	for i, c := range s.cameras {
		if c == cam {
			s.cameras = append(s.cameras[:i], s.cameras[i+1:]...)
			return
		}
	}
}

// Cameras returns the attached cameras. The returned slice MUST NOT be
// mutated by the caller.
func (s *SceneTree) Cameras() []*Camera {
	return s.cameras
}

// --- Teardown ---

// Free destroys the whole tree: the root's free cascades depth-first
// through every attached node, children before parents.
func (s *SceneTree) Free() {
	if s.locked {
		panic("rowan: SceneTree.Free during traversal")
	}
	s.flushDeferred()
	if s.root != nil && !s.root.IsFreed() {
		s.root.Free()
	}
	s.current = nil
	s.tweens = nil
	s.cameras = nil
}

// logLifecycle traces a node lifecycle event through the tree's logger.
func (s *SceneTree) logLifecycle(event string, n *Node) {
	s.log.Debug("lifecycle",
		zap.String("event", event),
		zap.String("node", n.name),
		zap.Uint32("id", n.ID),
	)
}
