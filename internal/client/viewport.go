package client

// Viewport is the scroll geometry of a message list, in pixels or rows.
type Viewport struct {
	ScrollTop    float64
	ClientHeight float64
	ScrollHeight float64
}

// AtBottom reports whether the list is scrolled all the way down.
func (v Viewport) AtBottom() bool {
	return v.ScrollTop+v.ClientHeight >= v.ScrollHeight
}

// NearTop reports whether the view is within the top third of the list.
func (v Viewport) NearTop() bool {
	return v.ScrollTop < v.ScrollHeight/3
}

// Anchor remembers the distance from the bottom of the list so the view can
// stay on the same message after older ones are prepended.
type Anchor struct {
	fromBottom float64
}

func (v Viewport) Anchor() Anchor {
	return Anchor{fromBottom: v.ScrollHeight - v.ScrollTop}
}

// Restore returns the scroll top that keeps the anchored content in place in
// a list that is now newScrollHeight tall.
func (a Anchor) Restore(newScrollHeight float64) float64 {
	return max(0, newScrollHeight-a.fromBottom)
}

// Follow returns the scroll top after the list grew to newScrollHeight. A
// view that was at the bottom stays pinned there; any other view keeps its
// position.
func (v Viewport) Follow(wasAtBottom bool, newScrollHeight float64) float64 {
	if wasAtBottom {
		return max(0, newScrollHeight-v.ClientHeight)
	}
	return v.ScrollTop
}
