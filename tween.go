package rowan

import (
	"fmt"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// PropertyTween animates one float property of a node through the property
// reflection surface. Tweens advance at the start of each Step, before
// process callbacks, so a frame always observes the tweened value.
type PropertyTween struct {
	node     *Node
	property string
	tween    *gween.Tween
	done     bool

	// OnFinished fires once when the tween reaches its target.
	OnFinished func()
}

// Done reports whether the tween has completed or been stopped.
func (t *PropertyTween) Done() bool {
	return t.done
}

// Stop halts the tween without firing OnFinished. The property keeps its
// current value.
func (t *PropertyTween) Stop() {
	t.done = true
}

// TweenProperty animates a registered float property of node from its
// current value to target over duration seconds. Fails with
// ErrUnknownProperty for an unregistered name and ErrInvalidPropertyValue
// if the property is not a float.
func (s *SceneTree) TweenProperty(node *Node, property string, target float64, duration float32, easeFn ease.TweenFunc) (*PropertyTween, error) {
	cur, err := GetProperty(node, property)
	if err != nil {
		return nil, err
	}
	from, ok := cur.(float64)
	if !ok {
		return nil, fmt.Errorf("%w: TweenProperty wants a float property, %q is %T", ErrInvalidPropertyValue, property, cur)
	}
	t := &PropertyTween{
		node:     node,
		property: property,
		tween:    gween.New(float32(from), float32(target), duration, easeFn),
	}
	s.tweens = append(s.tweens, t)
	return t, nil
}

// stepTweens advances every live tween and compacts the list in place.
// The list is detached while stepping so an OnFinished callback (or a
// signal handler reached through SetProperty) may register new tweens;
// those start on the next frame.
func (s *SceneTree) stepTweens(delta float64) {
	if len(s.tweens) == 0 {
		return
	}
	stepping := s.tweens
	s.tweens = nil
	alive := stepping[:0]
	for _, t := range stepping {
		if t.done || t.node.IsFreed() {
			continue
		}
		value, finished := t.tween.Update(float32(delta))
		if err := SetProperty(t.node, t.property, float64(value)); err != nil {
			// Property vanished (class table changed); drop the tween.
			t.done = true
			continue
		}
		if finished {
			t.done = true
			if t.OnFinished != nil {
				t.OnFinished()
			}
			continue
		}
		alive = append(alive, t)
	}
	s.tweens = append(alive, s.tweens...)
}
