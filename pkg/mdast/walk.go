package mdast

import "errors"

// SkipChildren may be returned by an enter callback to skip the node's
// descendants. The leave callback still runs for the node itself.
//
//nolint:gochecknoglobals,revive // Sentinel value.
var SkipChildren = errors.New("skip children")

// WalkFunc is the function signature for Walk callbacks.
// Return a non-nil error to stop the walk.
type WalkFunc func(n *Node) error

// Walk performs a pre-order traversal of the AST starting at root.
// The callback walkFunc is called for each node. If walkFunc returns a non-nil error,
// the walk stops immediately and returns that error.
func Walk(root *Node, walkFunc WalkFunc) error {
	return WalkWithContext(root, walkFunc, nil)
}

// WalkContextFunc is the callback type of WalkWithContext. It is the same
// type as WalkFunc, so a WalkFunc can be passed as enter or leave.
type WalkContextFunc = WalkFunc

// WalkWithContext performs a traversal with enter and leave callbacks.
// Enter is called before visiting children, leave is called after.
// Either callback may be nil.
//
// The traversal keeps an explicit stack so arbitrarily deep trees do not
// grow the goroutine stack.
func WalkWithContext(root *Node, enter, leave WalkContextFunc) error {
	if root == nil {
		return nil
	}

	visit := func(n *Node) (bool, error) {
		if enter == nil {
			return true, nil
		}
		err := enter(n)
		if errors.Is(err, SkipChildren) {
			return false, nil
		}
		return err == nil, err
	}

	descend, err := visit(root)
	if err != nil {
		return err
	}
	if !descend {
		return leaveNode(root, leave)
	}

	// Each stack entry is a node whose children are being visited. The next
	// child to visit follows the last visited node.
	stack := []*Node{root}
	var last *Node
	for len(stack) > 0 {
		top := stack[len(stack)-1]

		var next *Node
		if last == nil {
			next = top.FirstChild
		} else {
			next = last.Next
		}

		if next == nil {
			stack = stack[:len(stack)-1]
			if err := leaveNode(top, leave); err != nil {
				return err
			}
			last = top
			continue
		}

		descend, err := visit(next)
		if err != nil {
			return err
		}
		if !descend {
			if err := leaveNode(next, leave); err != nil {
				return err
			}
			last = next
			continue
		}
		stack = append(stack, next)
		last = nil
	}

	return nil
}

func leaveNode(n *Node, leave WalkContextFunc) error {
	if leave == nil {
		return nil
	}
	return leave(n)
}

// FindAll returns all nodes matching the predicate.
func FindAll(root *Node, predicate func(n *Node) bool) []*Node {
	var result []*Node

	//nolint:errcheck,revive // Walk only returns nil errors in this usage
	Walk(root, func(node *Node) error {
		if predicate(node) {
			result = append(result, node)
		}
		return nil
	})

	return result
}

// FindByKind returns all nodes of the specified kind.
func FindByKind(root *Node, kind NodeKind) []*Node {
	return FindAll(root, func(n *Node) bool {
		return n.Kind == kind
	})
}

// TextContent concatenates the text of all Text and CodeSpan descendants.
func TextContent(root *Node) string {
	var out []byte
	//nolint:errcheck,revive // Walk only returns nil errors in this usage
	Walk(root, func(n *Node) error {
		if (n.Kind == NodeText || n.Kind == NodeCodeSpan) && n.Inline != nil {
			out = append(out, n.Inline.Text...)
		}
		return nil
	})
	return string(out)
}
