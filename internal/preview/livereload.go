package preview

import (
	"bufio"
	"bytes"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// heartbeat is the interval of SSE keep-alive comments.
const heartbeat = 30 * time.Second

// Hub fans report versions out to Server-Sent Events clients.
type Hub struct {
	logger *log.Logger

	mu      sync.RWMutex
	nextID  int
	clients map[int]*client
	closed  bool
	last    string
}

type client struct {
	ch   chan string
	done chan struct{}
}

// NewHub returns an empty hub. A nil logger uses log.Default().
func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.Default()
	}
	return &Hub{logger: logger, clients: map[int]*client{}}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP streams version events until the client disconnects or the
// hub shuts down. A new client first receives the current version.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "stream unsupported", http.StatusInternalServerError)
		return
	}

	c := &client{ch: make(chan string, 8), done: make(chan struct{})}
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		http.Error(w, "livereload shutting down", http.StatusServiceUnavailable)
		return
	}
	id := h.nextID
	h.nextID++
	h.clients[id] = c
	current := h.last
	h.mu.Unlock()
	defer h.remove(id)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	bw := bufio.NewWriter(w)
	send := func(s string) bool {
		if _, err := bw.WriteString(s); err != nil {
			h.logger.Debug("livereload write", "err", err)
			return false
		}
		if err := bw.Flush(); err != nil {
			return false
		}
		flusher.Flush()
		return true
	}

	hello := ": connected\n\n"
	if current != "" {
		hello += event(current)
	}
	if !send(hello) {
		return
	}

	hb := time.NewTicker(heartbeat)
	defer hb.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-c.done:
			return
		case <-hb.C:
			send(": ping\n\n")
		case v := <-c.ch:
			if !send(event(v)) {
				return
			}
		}
	}
}

func event(version string) string {
	var b bytes.Buffer
	b.WriteString(`data: {"version":"`)
	b.WriteString(version)
	b.WriteString("\"}\n\n")
	return b.String()
}

func (h *Hub) remove(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.clients[id]; ok {
		delete(h.clients, id)
		close(c.done)
	}
}

// Broadcast sends version to every client. Repeats of the last version
// are ignored and clients that cannot keep up are dropped.
func (h *Hub) Broadcast(version string) {
	h.mu.Lock()
	if h.closed || version == "" || version == h.last {
		h.mu.Unlock()
		return
	}
	h.last = version
	snapshot := make(map[int]*client, len(h.clients))
	for id, c := range h.clients {
		snapshot[id] = c
	}
	h.mu.Unlock()

	dropped := 0
	for id, c := range snapshot {
		select {
		case c.ch <- version:
		default:
			dropped++
			h.remove(id)
		}
	}
	h.logger.Debug("livereload broadcast", "version", version, "clients", len(snapshot), "dropped", dropped)
}

// Shutdown disconnects every client and stops further broadcasts.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, c := range h.clients {
		delete(h.clients, id)
		close(c.done)
	}
}
