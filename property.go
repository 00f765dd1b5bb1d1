package rowan

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// PropertyType is the semantic type tag of a property descriptor. It
// determines the exact Go type accepted by SetProperty; values of any other
// type fail with ErrInvalidPropertyValue rather than being coerced.
type PropertyType uint8

const (
	PropertyBool     PropertyType = iota // bool
	PropertyInt                          // int
	PropertyFloat                        // float64
	PropertyString                       // string
	PropertyVector2                      // Vec2
	PropertyVector3                      // mgl64.Vec3
	PropertyColor                        // Color
	PropertyEnum                         // string, one of Descriptor.Options
	PropertyResource                     // string reference to an external resource
)

// PropertyHint suggests which control a generic inspector should render.
type PropertyHint uint8

const (
	HintNone        PropertyHint = iota // plain field for the type
	HintRange                           // slider / spinbox
	HintEnumPicker                      // dropdown over Options
	HintColorPicker                     // color swatch + picker
	HintResourceRef                     // resource path picker
)

// PropertyDescriptor is per-class metadata for one inspectable field.
// Descriptors are metadata only; values live on the instance and are
// reached through the bound Get/Set pair.
type PropertyDescriptor struct {
	Name    string
	Type    PropertyType
	Group   string
	Hint    PropertyHint
	Options []string // enum option list, in declared order

	Get func(n *Node) any
	Set func(n *Node, v any) error
}

// ClassInfo is the registry entry for one concrete node class: its
// constructor and property descriptors in declared group/property order.
type ClassInfo struct {
	Name string

	// Construct builds a detached instance of the class with the given
	// display name. Used by snapshot instantiation.
	Construct func(name string) *Node

	groups  []string
	byGroup map[string][]*PropertyDescriptor
	byName  map[string]*PropertyDescriptor
}

// classRegistry is populated once per class at class-registration time.
// Single-threaded by the scheduling model, like everything else here.
var classRegistry = map[string]*ClassInfo{}

// RegisterClass registers a concrete node class. Registering the same name
// twice is a programming error and panics.
func RegisterClass(name string, construct func(name string) *Node) *ClassInfo {
	if _, ok := classRegistry[name]; ok {
		panic(fmt.Sprintf("rowan: class %q registered twice", name))
	}
	ci := &ClassInfo{
		Name:      name,
		Construct: construct,
		byGroup:   make(map[string][]*PropertyDescriptor),
		byName:    make(map[string]*PropertyDescriptor),
	}
	classRegistry[name] = ci
	return ci
}

// LookupClass returns the registry entry for a class name, or nil.
func LookupClass(name string) *ClassInfo {
	return classRegistry[name]
}

// AddProperty declares a property on the class. Declaration order is
// preserved within each group, and group order follows first declaration.
// Duplicate names panic.
func (ci *ClassInfo) AddProperty(d PropertyDescriptor) *ClassInfo {
	if _, ok := ci.byName[d.Name]; ok {
		panic(fmt.Sprintf("rowan: property %q declared twice on class %q", d.Name, ci.Name))
	}
	desc := &d
	if _, ok := ci.byGroup[d.Group]; !ok {
		ci.groups = append(ci.groups, d.Group)
	}
	ci.byGroup[d.Group] = append(ci.byGroup[d.Group], desc)
	ci.byName[d.Name] = desc
	return ci
}

// inherit copies every descriptor (and the constructor-independent group
// order) from a base class. Declared before the subclass's own properties
// so base groups list first, matching how an inspector sections them.
func (ci *ClassInfo) inherit(base *ClassInfo) *ClassInfo {
	for _, g := range base.groups {
		for _, d := range base.byGroup[g] {
			ci.AddProperty(*d)
		}
	}
	return ci
}

// --- Reflection surface (consumed by inspector UIs) ---

// ListGroups returns the class's property groups in declared order.
// Returns nil for an unknown class.
func ListGroups(class string) []string {
	ci := classRegistry[class]
	if ci == nil {
		return nil
	}
	out := make([]string, len(ci.groups))
	copy(out, ci.groups)
	return out
}

// ListProperties returns the descriptors of one group in declared order.
// Returns nil for an unknown class or group.
func ListProperties(class, group string) []PropertyDescriptor {
	ci := classRegistry[class]
	if ci == nil {
		return nil
	}
	descs := ci.byGroup[group]
	out := make([]PropertyDescriptor, len(descs))
	for i, d := range descs {
		out[i] = *d
	}
	return out
}

// GetProperty reads a named property through the node's class registry.
func GetProperty(n *Node, name string) (any, error) {
	d, err := lookupDescriptor(n, name)
	if err != nil {
		return nil, err
	}
	return d.Get(n), nil
}

// SetProperty writes a named property through the node's class registry.
// Unknown names fail with ErrUnknownProperty; a value of the wrong type
// fails with ErrInvalidPropertyValue and leaves the node unmodified.
func SetProperty(n *Node, name string, value any) error {
	d, err := lookupDescriptor(n, name)
	if err != nil {
		return err
	}
	return d.Set(n, value)
}

func lookupDescriptor(n *Node, name string) (*PropertyDescriptor, error) {
	ci := classRegistry[n.Class]
	if ci == nil {
		return nil, fmt.Errorf("%w: class %q is not registered", ErrUnknownProperty, n.Class)
	}
	d, ok := ci.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q on class %q", ErrUnknownProperty, name, n.Class)
	}
	return d, nil
}

// --- Typed value helpers for Set implementations ---

func wantBool(name string, v any) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, typeErr(name, "bool", v)
	}
	return b, nil
}

func wantInt(name string, v any) (int, error) {
	i, ok := v.(int)
	if !ok {
		return 0, typeErr(name, "int", v)
	}
	return i, nil
}

func wantFloat(name string, v any) (float64, error) {
	f, ok := v.(float64)
	if !ok {
		return 0, typeErr(name, "float64", v)
	}
	return f, nil
}

func wantString(name string, v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", typeErr(name, "string", v)
	}
	return s, nil
}

func wantVec2(name string, v any) (Vec2, error) {
	p, ok := v.(Vec2)
	if !ok {
		return Vec2{}, typeErr(name, "Vec2", v)
	}
	return p, nil
}

func wantVec3(name string, v any) (mgl64.Vec3, error) {
	p, ok := v.(mgl64.Vec3)
	if !ok {
		return mgl64.Vec3{}, typeErr(name, "mgl64.Vec3", v)
	}
	return p, nil
}

func wantColor(name string, v any) (Color, error) {
	c, ok := v.(Color)
	if !ok {
		return Color{}, typeErr(name, "Color", v)
	}
	return c, nil
}

// wantEnum validates that v is a string and one of the declared options.
func wantEnum(name string, options []string, v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", typeErr(name, "string (enum)", v)
	}
	for _, opt := range options {
		if opt == s {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q is not an option of %q", ErrInvalidPropertyValue, s, name)
}

func typeErr(name, want string, got any) error {
	return fmt.Errorf("%w: property %q wants %s, got %T", ErrInvalidPropertyValue, name, want, got)
}
