package gateway

import "sync"

// hub tracks which local connections belong to which session group.
// Membership is transport-level only: a disconnect removes the connection
// from its groups and never touches game state.
type hub struct {
	mu     sync.Mutex
	groups map[string]map[*client]struct{}
}

func newHub() *hub {
	return &hub{groups: make(map[string]map[*client]struct{})}
}

func (h *hub) join(gameCode string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	g, ok := h.groups[gameCode]
	if !ok {
		g = make(map[*client]struct{})
		h.groups[gameCode] = g
	}
	g[c] = struct{}{}
}

// leaveGroup removes the connection from one session group, for joins that
// were registered optimistically and then failed.
func (h *hub) leaveGroup(gameCode string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	g := h.groups[gameCode]
	delete(g, c)
	if len(g) == 0 {
		delete(h.groups, gameCode)
	}
}

func (h *hub) leave(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for code, g := range h.groups {
		delete(g, c)
		if len(g) == 0 {
			delete(h.groups, code)
		}
	}
}

// broadcast delivers a frame to every local member of the session group.
// Clients that cannot keep up are evicted rather than allowed to stall the
// group.
func (h *hub) broadcast(gameCode string, msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.groups[gameCode] {
		if !c.enqueue(msg) {
			delete(h.groups[gameCode], c)
			c.close()
		}
	}
}
