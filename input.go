package starmap

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

const (
	maxPointers         = 10  // pointer 0 = mouse, 1-9 = touch
	defaultDragDeadZone = 4.0 // pixels
	hitMargin           = 6.0 // pixels, screen space
	wheelZoomStep       = 1.12
)

// pointerState tracks one pointer through a down/move/up cycle.
// Coordinates are screen-space; hit testing converts to world on demand.
type pointerState struct {
	down    bool
	startX  float64
	startY  float64
	lastX   float64
	lastY   float64
	dragged bool
}

type pinchState struct {
	active   bool
	prevDist float64
}

// InteractionHandler converts pointer/touch input into intents: pan deltas,
// pivot-preserving zoom deltas, hover changes and clicks. It performs no
// rendering and owns no camera mutation; intents go out through callbacks.
//
// A click on empty space fires OnClick(nil); deselect is a meaningful
// event, not an error.
type InteractionHandler struct {
	cam   *Camera
	nodes func() []*Node // live arena provider, drawn first-to-last

	// Intent callbacks. Any of them may be nil. OnPinch, when set, receives
	// pinch zoom deltas instead of OnZoom; pinch factors arrive every frame
	// and want snapping, while wheel ticks want tweening.
	OnPan   func(dx, dy float64)
	OnZoom  func(factor, pivotX, pivotY float64)
	OnPinch func(factor, pivotX, pivotY float64)
	OnHover func(*Node)
	OnClick func(*Node)

	dragDeadZone float64
	enabled      bool
	pointers     [maxPointers]pointerState
	pinch        pinchState
	hovered      *Node

	touchMap     [maxPointers]ebiten.TouchID
	touchUsed    [maxPointers]bool
	prevTouchIDs []ebiten.TouchID
}

// NewInteractionHandler creates a handler reading transforms from cam and
// hit-testing against the node arena returned by nodes.
func NewInteractionHandler(cam *Camera, nodes func() []*Node) *InteractionHandler {
	return &InteractionHandler{
		cam:          cam,
		nodes:        nodes,
		dragDeadZone: defaultDragDeadZone,
		enabled:      true,
	}
}

// SetDragDeadZone sets the minimum movement in pixels before a drag starts.
func (h *InteractionHandler) SetDragDeadZone(pixels float64) {
	h.dragDeadZone = pixels
}

// SetEnabled gates input processing. Disabling mid-gesture resets all
// pointer state so no stale drag survives a view transition.
func (h *InteractionHandler) SetEnabled(enabled bool) {
	if h.enabled == enabled {
		return
	}
	h.enabled = enabled
	if !enabled {
		h.pointers = [maxPointers]pointerState{}
		h.pinch = pinchState{}
	}
}

// Enabled reports whether input is being processed.
func (h *InteractionHandler) Enabled() bool { return h.enabled }

// Hovered returns the currently hovered node, or nil.
func (h *InteractionHandler) Hovered() *Node { return h.hovered }

// HitTest finds the topmost node at the given screen point, scanning the
// arena back-to-front (later nodes draw on top). The hit radius is the
// node radius plus a screen-space margin, divided by the current scale, so
// the clickable area stays finger-sized at any zoom. Returns nil on miss.
func (h *InteractionHandler) HitTest(sx, sy float64) *Node {
	t := h.cam.Transform
	wx, wy := t.Invert(sx, sy)
	scale := t.Scale
	if scale <= 0 {
		return nil
	}

	arena := h.nodes()
	for i := len(arena) - 1; i >= 0; i-- {
		n := arena[i]
		if !n.HasPosition {
			continue
		}
		hitR := (n.Radius + hitMargin) / scale
		dx := wx - n.X
		dy := wy - n.Y
		if dx*dx+dy*dy <= hitR*hitR {
			return n
		}
	}
	return nil
}

// PointerDown records the press position and clears the dragged flag.
func (h *InteractionHandler) PointerDown(id int, sx, sy float64) {
	if !h.enabled || id < 0 || id >= maxPointers {
		return
	}
	ps := &h.pointers[id]
	ps.down = true
	ps.startX, ps.startY = sx, sy
	ps.lastX, ps.lastY = sx, sy
	ps.dragged = false
}

// PointerMove either advances a drag (emitting a pan delta once movement
// exceeds the dead zone) or performs hover hit-testing.
func (h *InteractionHandler) PointerMove(id int, sx, sy float64) {
	if !h.enabled || id < 0 || id >= maxPointers {
		return
	}
	ps := &h.pointers[id]

	if ps.down {
		dx := sx - ps.lastX
		dy := sy - ps.lastY
		if !ps.dragged {
			tx := sx - ps.startX
			ty := sy - ps.startY
			if math.Hypot(tx, ty) > h.dragDeadZone {
				ps.dragged = true
			}
		}
		if ps.dragged && !h.pinch.active && h.OnPan != nil && (dx != 0 || dy != 0) {
			h.OnPan(dx, dy)
		}
		ps.lastX, ps.lastY = sx, sy
		return
	}

	// Hover path (mouse only in practice; touch moves arrive pressed).
	if sx != ps.lastX || sy != ps.lastY {
		h.updateHover(sx, sy)
		ps.lastX, ps.lastY = sx, sy
	}
}

// PointerUp ends the gesture. If no drag occurred, the release performs a
// hit test and emits a click with the found node or nil.
func (h *InteractionHandler) PointerUp(id int, sx, sy float64) {
	if id < 0 || id >= maxPointers {
		return
	}
	ps := &h.pointers[id]
	if !ps.down {
		return
	}
	wasDragged := ps.dragged
	ps.down = false
	ps.dragged = false

	if !h.enabled || wasDragged || h.pinch.active {
		return
	}
	if h.OnClick != nil {
		h.OnClick(h.HitTest(sx, sy))
	}
}

// Wheel emits a zoom delta pivoted on the cursor. Positive ticks zoom in.
func (h *InteractionHandler) Wheel(ticks, sx, sy float64) {
	if !h.enabled || ticks == 0 || h.OnZoom == nil {
		return
	}
	h.OnZoom(math.Pow(wheelZoomStep, ticks), sx, sy)
}

// PinchMove tracks a two-finger gesture: the distance ratio between frames
// becomes a zoom factor and the touch midpoint is the pivot.
func (h *InteractionHandler) PinchMove(x0, y0, x1, y1 float64) {
	if !h.enabled {
		return
	}
	dist := math.Hypot(x1-x0, y1-y0)
	if !h.pinch.active {
		h.pinch.active = true
		h.pinch.prevDist = dist
		return
	}
	if h.pinch.prevDist > 0 {
		factor := dist / h.pinch.prevDist
		if h.OnPinch != nil {
			h.OnPinch(factor, (x0+x1)/2, (y0+y1)/2)
		} else if h.OnZoom != nil {
			h.OnZoom(factor, (x0+x1)/2, (y0+y1)/2)
		}
	}
	h.pinch.prevDist = dist
}

// PinchEnd closes an active pinch gesture.
func (h *InteractionHandler) PinchEnd() {
	h.pinch.active = false
	h.pinch.prevDist = 0
}

// updateHover hit-tests and fires OnHover only on change.
func (h *InteractionHandler) updateHover(sx, sy float64) {
	hit := h.HitTest(sx, sy)
	if hit == h.hovered {
		return
	}
	h.hovered = hit
	if h.OnHover != nil {
		h.OnHover(hit)
	}
}

// ClearHover resets hover state, firing OnHover(nil) if a node was hovered.
// Called on data replacement so callbacks never reference stale nodes.
func (h *InteractionHandler) ClearHover() {
	if h.hovered == nil {
		return
	}
	h.hovered = nil
	if h.OnHover != nil {
		h.OnHover(nil)
	}
}

// Poll reads ebiten mouse and touch state and routes it through the pure
// pointer methods. Call once per update tick; tests skip Poll and drive
// the pointer methods directly.
func (h *InteractionHandler) Poll() {
	mx, my := ebiten.CursorPosition()
	sx, sy := float64(mx), float64(my)

	pressed := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	if pressed && !h.pointers[0].down {
		h.PointerDown(0, sx, sy)
	} else if !pressed && h.pointers[0].down {
		h.PointerUp(0, sx, sy)
	} else {
		h.PointerMove(0, sx, sy)
	}

	if _, wy := ebiten.Wheel(); wy != 0 {
		h.Wheel(wy, sx, sy)
	}

	h.pollTouches()
}

// pollTouches maps live ebiten touch IDs onto pointer slots 1-9 and drives
// the pointer state machines, promoting two active touches into a pinch.
func (h *InteractionHandler) pollTouches() {
	touchIDs := ebiten.AppendTouchIDs(h.prevTouchIDs[:0])
	h.prevTouchIDs = touchIDs

	var activeSlots [maxPointers]bool
	type touchPos struct{ slot int; x, y float64 }
	var active []touchPos

	for _, tid := range touchIDs {
		slot := h.touchSlot(tid)
		if slot < 0 {
			continue
		}
		activeSlots[slot] = true

		tx, ty := ebiten.TouchPosition(tid)
		x, y := float64(tx), float64(ty)
		active = append(active, touchPos{slot, x, y})

		if !h.pointers[slot].down {
			h.PointerDown(slot, x, y)
		} else {
			h.PointerMove(slot, x, y)
		}
	}

	// Release slots whose touch lifted this frame.
	for i := 1; i < maxPointers; i++ {
		if h.touchUsed[i] && !activeSlots[i] {
			if h.pointers[i].down {
				h.PointerUp(i, h.pointers[i].lastX, h.pointers[i].lastY)
			}
			h.touchUsed[i] = false
			h.touchMap[i] = 0
		}
	}

	if len(active) == 2 {
		h.PinchMove(active[0].x, active[0].y, active[1].x, active[1].y)
	} else if h.pinch.active {
		h.PinchEnd()
	}
}

// touchSlot maps an ebiten.TouchID to a pointer slot (1-9).
// Returns the existing slot or allocates a new one. Returns -1 if full.
func (h *InteractionHandler) touchSlot(tid ebiten.TouchID) int {
	for i := 1; i < maxPointers; i++ {
		if h.touchUsed[i] && h.touchMap[i] == tid {
			return i
		}
	}
	for i := 1; i < maxPointers; i++ {
		if !h.touchUsed[i] {
			h.touchUsed[i] = true
			h.touchMap[i] = tid
			return i
		}
	}
	return -1
}
