package rowan

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

// Snapshot is the serializable shape of a subtree handed across the
// persistence boundary: class name, property values, and ordered children.
// The external persistence layer decides where and how snapshots are
// stored; EncodeSnapshot/DecodeSnapshot provide the reference YAML codec.
type Snapshot struct {
	Class      string         `yaml:"class"`
	Name       string         `yaml:"name"`
	Properties map[string]any `yaml:"properties,omitempty"`
	Children   []*Snapshot    `yaml:"children,omitempty"`
}

// TakeSnapshot captures a subtree: every registered property of each node
// (in declared group and property order) plus the ordered child list.
func TakeSnapshot(n *Node) *Snapshot {
	s := &Snapshot{
		Class: n.Class,
		Name:  n.Name(),
	}
	if ci := classRegistry[n.Class]; ci != nil {
		for _, group := range ci.groups {
			for _, d := range ci.byGroup[group] {
				if d.Name == "name" {
					continue // carried by the Name field
				}
				if s.Properties == nil {
					s.Properties = make(map[string]any)
				}
				s.Properties[d.Name] = d.Get(n)
			}
		}
	}
	for _, c := range n.Children() {
		s.Children = append(s.Children, TakeSnapshot(c))
	}
	return s
}

// Instantiate rebuilds a detached subtree from the snapshot through the
// registered class constructors. Fails with ErrUnknownClass for an
// unregistered class and with the usual property errors for bad values.
func (s *Snapshot) Instantiate() (*Node, error) {
	ci := classRegistry[s.Class]
	if ci == nil || ci.Construct == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownClass, s.Class)
	}
	n := ci.Construct(s.Name)
	n.name = s.Name
	for name, raw := range s.Properties {
		d, ok := ci.byName[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q on class %q", ErrUnknownProperty, name, s.Class)
		}
		value, err := coerceDecoded(d, raw)
		if err != nil {
			return nil, err
		}
		if err := d.Set(n, value); err != nil {
			return nil, err
		}
	}
	for _, cs := range s.Children {
		child, err := cs.Instantiate()
		if err != nil {
			return nil, err
		}
		n.AddChild(child)
	}
	return n, nil
}

// EncodeSnapshot marshals a snapshot to YAML.
func EncodeSnapshot(s *Snapshot) ([]byte, error) {
	return yaml.Marshal(s)
}

// DecodeSnapshot unmarshals a YAML snapshot.
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("rowan: decoding snapshot: %w", err)
	}
	return &s, nil
}

// coerceDecoded converts a generic decoded YAML value into the exact Go
// type the descriptor's setter wants. SetProperty itself never coerces;
// the codec boundary is the one place loosely-typed values are converted.
func coerceDecoded(d *PropertyDescriptor, v any) (any, error) {
	switch d.Type {
	case PropertyBool, PropertyString, PropertyEnum, PropertyResource:
		return v, nil
	case PropertyInt:
		if f, ok := v.(float64); ok && f == float64(int(f)) {
			return int(f), nil
		}
		return v, nil
	case PropertyFloat:
		if i, ok := v.(int); ok {
			return float64(i), nil
		}
		return v, nil
	case PropertyVector2:
		if p, ok := v.(Vec2); ok {
			return p, nil
		}
		if m, ok := v.(map[string]any); ok {
			x, okX := numberValue(m["x"])
			y, okY := numberValue(m["y"])
			if okX && okY {
				return Vec2{x, y}, nil
			}
		}
	case PropertyVector3:
		if p, ok := v.(mgl64.Vec3); ok {
			return p, nil
		}
		if seq, ok := v.([]any); ok && len(seq) == 3 {
			x, okX := numberValue(seq[0])
			y, okY := numberValue(seq[1])
			z, okZ := numberValue(seq[2])
			if okX && okY && okZ {
				return mgl64.Vec3{x, y, z}, nil
			}
		}
	case PropertyColor:
		if c, ok := v.(Color); ok {
			return c, nil
		}
		if m, ok := v.(map[string]any); ok {
			r, okR := numberValue(m["r"])
			g, okG := numberValue(m["g"])
			b, okB := numberValue(m["b"])
			a, okA := numberValue(m["a"])
			if okR && okG && okB && okA {
				return Color{r, g, b, a}, nil
			}
		}
	}
	return v, nil
}

// numberValue widens decoded YAML numbers to float64.
func numberValue(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
