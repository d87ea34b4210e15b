package hast

import "errors"

// SkipChildren may be returned by an enter callback to skip a node's
// descendants. The node's leave callback still runs.
//
//nolint:gochecknoglobals // Sentinel error.
var SkipChildren = errors.New("skip children")

// WalkFunc is the callback signature for Walk.
// Return a non-nil error to stop the walk.
type WalkFunc func(n *Node) error

// Walk performs a pre-order traversal starting at root. Returning
// SkipChildren skips the node's descendants; any other error stops the walk
// and is returned.
//
// The traversal uses an explicit stack, so deep trees do not grow the call stack.
func Walk(root *Node, walkFunc WalkFunc) error {
	return WalkWithContext(root, walkFunc, nil)
}

type walkFrame struct {
	node  *Node
	child int
}

// WalkWithContext performs a traversal with enter and leave callbacks.
// Enter is called before visiting children, leave after. Either callback may
// be nil.
func WalkWithContext(root *Node, enter, leave WalkFunc) error {
	if root == nil {
		return nil
	}

	stack := make([]walkFrame, 0, 16)

	push := func(n *Node) error {
		if enter != nil {
			err := enter(n)
			if errors.Is(err, SkipChildren) {
				if leave != nil {
					return leave(n)
				}
				return nil
			}
			if err != nil {
				return err
			}
		}
		stack = append(stack, walkFrame{node: n})
		return nil
	}

	if err := push(root); err != nil {
		return err
	}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.child < len(top.node.Children) {
			next := top.node.Children[top.child]
			top.child++
			if err := push(next); err != nil {
				return err
			}
			continue
		}

		node := top.node
		stack = stack[:len(stack)-1]
		if leave != nil {
			if err := leave(node); err != nil {
				return err
			}
		}
	}

	return nil
}

// MaxDepth returns the deepest element nesting level under root.
// The root itself is depth 0.
func MaxDepth(root *Node) int {
	depth, deepest := 0, 0
	//nolint:errcheck,revive // callbacks never fail
	WalkWithContext(root, func(n *Node) error {
		if n.Type == ElementNode {
			depth++
			if depth > deepest {
				deepest = depth
			}
		}
		return nil
	}, func(n *Node) error {
		if n.Type == ElementNode {
			depth--
		}
		return nil
	})
	return deepest
}
