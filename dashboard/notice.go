package dashboard

// Notice holds one value that must be delivered at most once. A newer
// post replaces an unread one. Callers hold the State lock.
type Notice[T any] struct {
	value    T
	pending  bool
	consumed bool
}

func (n *Notice[T]) post(v T) {
	n.value = v
	n.pending = true
	n.consumed = false
}

// take returns the value and marks it consumed; later calls get ok=false
// until the next post.
func (n *Notice[T]) take() (T, bool) {
	var zero T
	if !n.pending || n.consumed {
		return zero, false
	}
	n.consumed = true
	v := n.value
	n.value = zero
	return v, true
}

func (n *Notice[T]) peek() bool {
	return n.pending && !n.consumed
}
