// Package preview serves a report over HTTP and reloads open browser
// tabs whenever the report file is rewritten.
package preview

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/unbound-force/edareport/internal/browser"
)

// DefaultDebounce collapses bursts of file events into one reload.
const DefaultDebounce = 300 * time.Millisecond

// Script reconnects on error and reloads the page when the version
// changes. It is injected into the served report, never into the file.
const Script = `(() => {
  if (window.__EDAREPORT_LR__) return;
  window.__EDAREPORT_LR__ = true;
  function connect() {
    const es = new EventSource('/livereload');
    let current = null;
    es.onmessage = (e) => {
      try {
        const p = JSON.parse(e.data);
        if (current === null) { current = p.version; return; }
        if (p.version && p.version !== current) { location.reload(); }
      } catch (_) {}
    };
    es.onerror = () => { es.close(); setTimeout(connect, 2000); };
  }
  connect();
})();`

// Options configures a Server.
type Options struct {
	// Port is the listen port on localhost. Zero picks a free one.
	Port int

	// Open launches a browser tab once the server is listening.
	Open bool

	// Opener defaults to browser.Open.
	Opener browser.Opener

	// Debounce defaults to DefaultDebounce.
	Debounce time.Duration

	// Ready, when set, receives the report URL once the server is
	// listening.
	Ready func(url string)

	// Logger defaults to log.Default().
	Logger *log.Logger
}

// Server previews one report file.
type Server struct {
	path string
	dir  string
	name string
	opts Options
	hub  *Hub
}

// New returns a server for the report at path. The file need not exist
// yet.
func New(path string, opts Options) (*Server, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving report path: %w", err)
	}
	if opts.Port < 0 || opts.Port > 65535 {
		return nil, fmt.Errorf("port %d out of range", opts.Port)
	}
	if opts.Opener == nil {
		opts.Opener = browser.Open
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Server{
		path: abs,
		dir:  filepath.Dir(abs),
		name: filepath.Base(abs),
		opts: opts,
		hub:  NewHub(opts.Logger),
	}, nil
}

// Hub returns the server's live-reload hub.
func (s *Server) Hub() *Hub { return s.hub }

// Handler serves the report with the reload script at "/" and under its
// own name, the rest of its directory as static files, and the event
// stream at /livereload.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/livereload", s.hub)
	files := http.FileServer(http.Dir(s.dir))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" || r.URL.Path == "/"+s.name {
			s.serveReport(w)
			return
		}
		files.ServeHTTP(w, r)
	})
	return mux
}

func (s *Server) serveReport(w http.ResponseWriter) {
	page, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		http.Error(w, "report not built yet", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(Inject(page))
}

// Inject inserts the reload script before the page's last </body>, or
// appends it when there is none.
func Inject(page []byte) []byte {
	tag := []byte("<script>" + Script + "</script>\n")
	i := bytes.LastIndex(page, []byte("</body>"))
	if i < 0 {
		return append(append([]byte(nil), page...), tag...)
	}
	out := make([]byte, 0, len(page)+len(tag))
	out = append(out, page[:i]...)
	out = append(out, tag...)
	return append(out, page[i:]...)
}

// Run serves until ctx is cancelled, broadcasting a new version each
// time the report file is written.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(s.opts.Port)))
	if err != nil {
		return fmt.Errorf("listening: %w", err)
	}
	url := fmt.Sprintf("http://%s/%s", ln.Addr(), s.name)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		ln.Close()
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer watcher.Close()
	// The directory is watched because atomic rewrites replace the file.
	if err := watcher.Add(s.dir); err != nil {
		ln.Close()
		return fmt.Errorf("watching %s: %w", s.dir, err)
	}

	srv := &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}
	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(ln) }()

	s.opts.Logger.Info("preview server listening", "url", url)
	if s.opts.Ready != nil {
		s.opts.Ready(url)
	}
	if s.opts.Open {
		go func() {
			if err := s.opts.Opener(ctx, url); err != nil {
				s.opts.Logger.Warn("could not open browser", "err", err)
			}
		}()
	}

	trigger, stop := debounce(s.opts.Debounce, func() {
		s.opts.Logger.Info("report changed; reloading")
		s.hub.Broadcast(strconv.FormatInt(time.Now().UnixNano(), 10))
	})
	defer stop()

	for {
		select {
		case <-ctx.Done():
			return s.shutdown(srv)
		case err := <-serveErr:
			s.hub.Shutdown()
			return fmt.Errorf("serving: %w", err)
		case ev, ok := <-watcher.Events:
			if !ok {
				return s.shutdown(srv)
			}
			if ev.Name == s.path && ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				s.opts.Logger.Debug("report event", "op", ev.Op.String())
				trigger()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return s.shutdown(srv)
			}
			s.opts.Logger.Warn("watcher error", "err", err)
		}
	}
}

func (s *Server) shutdown(srv *http.Server) error {
	s.opts.Logger.Info("shutting down preview server")
	s.hub.Shutdown()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}

// debounce returns a trigger that calls fn once d after the last of a
// burst of calls, and a stop that cancels any pending call.
func debounce(d time.Duration, fn func()) (trigger, stop func()) {
	var mu sync.Mutex
	var timer *time.Timer
	trigger = func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(d, fn)
	}
	stop = func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
	}
	return trigger, stop
}
