package game_object

import (
	"log/slog"
	"reflect"

	"github.com/Carmen-Shannon/oxy-gl/engine/model"
	"github.com/Carmen-Shannon/oxy-gl/engine/transform"

	"github.com/jinzhu/copier"
)

var deepCopy = copier.Option{DeepCopy: true}

// Copy clones the subtree in two passes. The first pass clones every node; the second
// walks the new tree and retargets skin joints and animation channel targets, which
// usually point at siblings or cousins and so cannot be resolved until the whole copy
// exists. References that lead outside the copied subtree are kept as they are.
//
// The copy has no parent and no attached light.
func (g *gameObject) Copy() GameObject {
	c := g.copyTree()
	c.Traverse(func(n GameObject) {
		n.(*gameObject).repair(g, c)
	})
	return c
}

func (g *gameObject) copyTree() *gameObject {
	c := &gameObject{
		id:             nextID.Add(1),
		alive:          true,
		name:           g.name,
		visible:        g.visible,
		active:         g.active,
		castShadows:    g.castShadows,
		receiveShadows: g.receiveShadows,
		layer:          g.layer,
		customData:     copyCustomData(g.customData),
	}
	c.transform = transform.NewTransform(c, transform.WithMatrix(g.transform.LocalMatrix()))
	c.prevModelMatrix = g.prevModelMatrix

	if g.meshRenderer != nil {
		c.meshRenderer = g.meshRenderer.Copy()
	}
	if g.controller != nil {
		c.controller = g.controller.Copy()
	}
	for _, comp := range g.components {
		c.AddComponent(copyComponent(comp))
	}
	for _, child := range g.children {
		if _, err := c.AddChild(child.copyTree()); err != nil {
			panic(err)
		}
	}
	return c
}

// repair retargets the cross references of g, a node of the copy newRoot made from
// oldRoot.
func (g *gameObject) repair(oldRoot, newRoot *gameObject) {
	if skinned, ok := g.meshRenderer.(model.SkinnedRenderer); ok {
		skin := skinned.Skin()
		joints := skin.Joints()
		mapped := make([]transform.Transform, len(joints))
		for i, j := range joints {
			mapped[i] = retarget(j, oldRoot, newRoot)
		}
		skin.SetJoints(mapped)
		if root := skin.Root(); root != nil {
			skin.SetRoot(retarget(root, oldRoot, newRoot))
		}
	}
	if g.controller != nil {
		for i, ch := range g.controller.Channels() {
			if ch.Target != nil {
				g.controller.SetChannelTarget(i, retarget(ch.Target, oldRoot, newRoot))
			}
		}
	}
}

// retarget maps a transform of the old tree onto the node at the same hierarchy path
// in the new tree.
func retarget(t transform.Transform, oldRoot, newRoot *gameObject) transform.Transform {
	owner, ok := t.Owner().(*gameObject)
	if !ok {
		return t
	}
	path, ok := owner.HierarchyPath(oldRoot)
	if !ok {
		return t
	}
	n := newRoot.ChildFromHierarchyPath(path)
	if n == nil {
		return t
	}
	return n.Transform()
}

func copyComponent(c Component) Component {
	if cp, ok := c.(Copyable); ok {
		return cp.Copy()
	}
	if dc, ok := c.(DeepCopyable); ok && dc.DeepCopyable() {
		v := reflect.ValueOf(c)
		if v.Kind() == reflect.Pointer {
			dup := reflect.New(v.Elem().Type())
			if err := copier.CopyWithOption(dup.Interface(), c, deepCopy); err == nil {
				if out, ok := dup.Interface().(Component); ok {
					return out
				}
			} else {
				slog.Warn("game_object: deep copy failed, sharing component", "error", err)
			}
		}
	}
	return c
}

func copyCustomData(src map[string]any) map[string]any {
	dst := make(map[string]any, len(src))
	if len(src) == 0 {
		return dst
	}
	if err := copier.CopyWithOption(&dst, &src, deepCopy); err != nil {
		slog.Warn("game_object: deep copy of custom data failed, copying shallowly", "error", err)
		for k, v := range src {
			dst[k] = v
		}
	}
	return dst
}
