package rowan

// Built-in class registration. The registry is populated once per class at
// package init; descriptors bind typed accessors so dynamic-name access
// never loses type safety at the boundary.
func init() {
	nodeClass := RegisterClass("Node", NewNode).
		AddProperty(PropertyDescriptor{
			Name: "name", Type: PropertyString, Group: "node",
			Get: func(n *Node) any { return n.name },
			Set: func(n *Node, v any) error {
				s, err := wantString("name", v)
				if err != nil {
					return err
				}
				n.SetName(s)
				return nil
			},
		}).
		AddProperty(PropertyDescriptor{
			Name: "process_mode", Type: PropertyEnum, Group: "node", Hint: HintEnumPicker,
			Options: []string{"pausable", "always", "disabled"},
			Get:     func(n *Node) any { return n.ProcessMode.String() },
			Set: func(n *Node, v any) error {
				s, err := wantEnum("process_mode", []string{"pausable", "always", "disabled"}, v)
				if err != nil {
					return err
				}
				m, _ := processModeFromString(s)
				n.ProcessMode = m
				return nil
			},
		}).
		AddProperty(PropertyDescriptor{
			Name: "visible", Type: PropertyBool, Group: "node",
			Get: func(n *Node) any { return n.Visible },
			Set: func(n *Node, v any) error {
				b, err := wantBool("visible", v)
				if err != nil {
					return err
				}
				n.SetVisible(b)
				return nil
			},
		})

	node2D := RegisterClass("Node2D", NewNode2D).
		inherit(nodeClass).
		AddProperty(PropertyDescriptor{
			Name: "position", Type: PropertyVector2, Group: "transform",
			Get: func(n *Node) any { return Vec2{n.X, n.Y} },
			Set: func(n *Node, v any) error {
				p, err := wantVec2("position", v)
				if err != nil {
					return err
				}
				n.SetPosition2D(p.X, p.Y)
				return nil
			},
		}).
		AddProperty(PropertyDescriptor{
			Name: "rotation", Type: PropertyFloat, Group: "transform", Hint: HintRange,
			Get: func(n *Node) any { return n.Rotation },
			Set: func(n *Node, v any) error {
				f, err := wantFloat("rotation", v)
				if err != nil {
					return err
				}
				n.SetRotation2D(f)
				return nil
			},
		}).
		AddProperty(PropertyDescriptor{
			Name: "scale", Type: PropertyVector2, Group: "transform",
			Get: func(n *Node) any { return Vec2{n.ScaleX, n.ScaleY} },
			Set: func(n *Node, v any) error {
				p, err := wantVec2("scale", v)
				if err != nil {
					return err
				}
				n.SetScale2D(p.X, p.Y)
				return nil
			},
		}).
		AddProperty(PropertyDescriptor{
			Name: "skew", Type: PropertyVector2, Group: "transform",
			Get: func(n *Node) any { return Vec2{n.SkewX, n.SkewY} },
			Set: func(n *Node, v any) error {
				p, err := wantVec2("skew", v)
				if err != nil {
					return err
				}
				n.SetSkew2D(p.X, p.Y)
				return nil
			},
		}).
		AddProperty(PropertyDescriptor{
			Name: "pivot", Type: PropertyVector2, Group: "transform",
			Get: func(n *Node) any { return Vec2{n.PivotX, n.PivotY} },
			Set: func(n *Node, v any) error {
				p, err := wantVec2("pivot", v)
				if err != nil {
					return err
				}
				n.SetPivot2D(p.X, p.Y)
				return nil
			},
		})

	RegisterClass("Node3D", NewNode3D).
		inherit(nodeClass).
		AddProperty(PropertyDescriptor{
			Name: "position", Type: PropertyVector3, Group: "transform",
			Get: func(n *Node) any { return n.Position },
			Set: func(n *Node, v any) error {
				p, err := wantVec3("position", v)
				if err != nil {
					return err
				}
				n.SetPosition3D(p)
				return nil
			},
		}).
		AddProperty(PropertyDescriptor{
			Name: "rotation_degrees", Type: PropertyVector3, Group: "transform", Hint: HintRange,
			Get: func(n *Node) any { return n.RotationDegrees() },
			Set: func(n *Node, v any) error {
				p, err := wantVec3("rotation_degrees", v)
				if err != nil {
					return err
				}
				n.SetRotationDegrees(p)
				return nil
			},
		}).
		AddProperty(PropertyDescriptor{
			Name: "scale", Type: PropertyVector3, Group: "transform",
			Get: func(n *Node) any { return n.Scale },
			Set: func(n *Node, v any) error {
				p, err := wantVec3("scale", v)
				if err != nil {
					return err
				}
				n.SetScale3D(p)
				return nil
			},
		})

	RegisterClass("CanvasItem", func(name string) *Node { return NewCanvasItem(name, 0, 0) }).
		inherit(node2D).
		AddProperty(PropertyDescriptor{
			Name: "size", Type: PropertyVector2, Group: "canvas",
			Get: func(n *Node) any { return n.Size() },
			Set: func(n *Node, v any) error {
				p, err := wantVec2("size", v)
				if err != nil {
					return err
				}
				n.SetSize(p.X, p.Y)
				return nil
			},
		}).
		AddProperty(PropertyDescriptor{
			Name: "z_index", Type: PropertyInt, Group: "canvas", Hint: HintRange,
			Get: func(n *Node) any { return n.ZIndex() },
			Set: func(n *Node, v any) error {
				i, err := wantInt("z_index", v)
				if err != nil {
					return err
				}
				n.SetZIndex(i)
				return nil
			},
		}).
		AddProperty(PropertyDescriptor{
			Name: "z_as_relative", Type: PropertyBool, Group: "canvas",
			Get: func(n *Node) any { return n.ZAsRelative() },
			Set: func(n *Node, v any) error {
				b, err := wantBool("z_as_relative", v)
				if err != nil {
					return err
				}
				n.SetZAsRelative(b)
				return nil
			},
		}).
		AddProperty(PropertyDescriptor{
			Name: "modulate", Type: PropertyColor, Group: "canvas", Hint: HintColorPicker,
			Get: func(n *Node) any { return n.Modulate() },
			Set: func(n *Node, v any) error {
				c, err := wantColor("modulate", v)
				if err != nil {
					return err
				}
				n.SetModulate(c)
				return nil
			},
		})
}
