package rowan

import (
	"fmt"

	"go.uber.org/zap"
)

// globalDebug mirrors the most recently set SceneTree debug flag so that
// node operations (which lack a tree pointer) can check it cheaply. Only
// valid with a single tree; multiple trees with differing debug modes
// reflect whichever called SetDebugMode last.
var globalDebug bool

// debugLogger receives debug-mode warnings. Set alongside globalDebug.
var debugLogger = zap.NewNop()

// debugCheckFreed panics with a descriptive message when a freed node is
// used in a tree operation. Only called in debug mode; release-mode callers
// skip this entirely.
func debugCheckFreed(n *Node, op string) {
	if n.freed {
		panic(fmt.Sprintf("rowan debug: %s on freed node %q", op, n.name))
	}
}

// debugMaxTreeDepth is the depth past which a warning is logged.
const debugMaxTreeDepth = 32

func debugCheckTreeDepth(n *Node) {
	depth := 0
	for p := n; p != nil; p = p.parent {
		depth++
	}
	if depth > debugMaxTreeDepth {
		debugLogger.Warn("tree depth exceeds threshold",
			zap.Int("depth", depth),
			zap.Int("threshold", debugMaxTreeDepth),
			zap.String("node", n.name),
		)
	}
}

// debugMaxChildCount is the child count past which a warning is logged.
const debugMaxChildCount = 1000

func debugCheckChildCount(n *Node) {
	if len(n.children) > debugMaxChildCount {
		debugLogger.Warn("node child count exceeds threshold",
			zap.Int("children", len(n.children)),
			zap.Int("threshold", debugMaxChildCount),
			zap.String("node", n.name),
		)
	}
}
