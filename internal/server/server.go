// Package server hosts the captive web content and its command bridge: a
// static file server over an ordered list of content directories, a JSON
// command endpoint, and a web socket session carrying host instructions
// back to the page.
package server

import (
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"path"
	"strings"
	"sync"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/omnissa-archive/captive-web-view/internal/bridge"
	"github.com/omnissa-archive/captive-web-view/internal/screens"
)

// Options configure a harness server.
type Options struct {
	// Directories is the ordered list of content directories. The embedded
	// library is always appended after them.
	Directories []string
	// Library is the fallback content file system.
	Library fs.FS
	// Registry maps page names to screens.
	Registry *screens.Registry
	// StartPage is the screen that handles commands before any navigation.
	StartPage string
	// Storage is the sandboxed directory for the write command.
	Storage string
	// LoadVisibilityTimeout rides along with load instructions, in seconds.
	LoadVisibilityTimeout int
	Logger                *slog.Logger
}

// Server is the harness: content, bridge, and host session. It implements
// bridge.Host by pushing instructions to the attached web socket session.
type Server struct {
	resolver *Resolver
	registry *screens.Registry
	storage  string
	timeout  int
	logger   *slog.Logger
	fetcher  *bridge.Fetcher

	// mu serialises command handling, keeping the single-threaded dispatch
	// model of the protocol, and guards the fields below.
	mu        sync.Mutex
	startPage string
	screen    string
	responder bridge.Responder
	session   *Session
}

func New(options Options) (*Server, error) {
	resolver, err := NewResolver(options.Directories, options.Library)
	if err != nil {
		return nil, err
	}
	registry := options.Registry
	if registry == nil {
		registry = screens.NewRegistry()
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	start := options.StartPage
	if start == "" {
		start = screens.PageMain
	}
	server := &Server{
		resolver:  resolver,
		registry:  registry,
		storage:   options.Storage,
		timeout:   options.LoadVisibilityTimeout,
		logger:    logger,
		startPage: start,
	}
	server.fetcher = &bridge.Fetcher{
		OnFailure: func(err error) { logger.Warn("fetch failed", "error", err) },
	}
	server.setScreen(start)
	return server, nil
}

// setScreen swaps the current screen. Callers hold mu, or are still wiring
// the server up.
func (server *Server) setScreen(page string) {
	server.screen = page
	server.responder = server.registry.New(page)
}

// dispatcher builds the bridge dispatcher for the current screen. Callers
// hold mu.
func (server *Server) dispatcher() *bridge.Dispatcher {
	return &bridge.Dispatcher{
		Screen:    server.screen,
		Host:      server,
		Pages:     server.registry,
		Responder: server.responder,
		Storage:   server.storage,
		Fetcher:   server.fetcher,
	}
}

// Router builds the harness routes: the web socket endpoint, the command
// bridge on POST /, and everything else as content.
func (server *Server) Router() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/ws", server.serveSocket).Methods(http.MethodGet)
	router.HandleFunc("/", server.serveBridge).Methods(http.MethodPost)
	router.PathPrefix("/").HandlerFunc(server.serveContent).Methods(http.MethodGet)
	return router
}

// serveBridge runs one command round trip. Command failures travel in the
// response envelope's failed field, never as HTTP errors; only an
// undecodable request is refused outright.
func (server *Server) serveBridge(writer http.ResponseWriter, request *http.Request) {
	body, err := io.ReadAll(request.Body)
	if err != nil || len(body) == 0 {
		http.Error(writer, "empty command body", http.StatusBadRequest)
		return
	}
	envelope, err := bridge.Parse(body)
	if err != nil {
		http.Error(writer, err.Error(), http.StatusBadRequest)
		return
	}

	server.mu.Lock()
	command, _ := envelope.Command()
	screen := server.screen
	response := server.dispatcher().Handle(envelope)
	server.mu.Unlock()

	server.logger.Debug("bridge round trip",
		"screen", screen, "command", command, "failed", response.Failed())
	writer.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(writer).Encode(response); err != nil {
		server.logger.Error("response didn't encode", "error", err)
	}
}

func (server *Server) serveContent(writer http.ResponseWriter, request *http.Request) {
	if !server.resolver.Allowed(request.URL.Path) {
		http.Error(writer, "path isn't under a content directory", http.StatusForbidden)
		return
	}
	fsys, name, err := server.resolver.Resolve(request.URL.Path)
	if err != nil {
		http.Error(writer, err.Error(), http.StatusNotFound)
		return
	}
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		http.Error(writer, err.Error(), http.StatusNotFound)
		return
	}
	if contentType := mime.TypeByExtension(path.Ext(name)); contentType != "" {
		writer.Header().Set("Content-Type", contentType)
	}
	writer.Write(data)
}

// upgrader allows any origin: the harness binds to localhost and the pages
// it serves are the only expected callers.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

// serveSocket attaches a web view session. A new session replaces any
// previous one, which gets closed.
func (server *Server) serveSocket(writer http.ResponseWriter, request *http.Request) {
	conn, err := upgrader.Upgrade(writer, request, nil)
	if err != nil {
		server.logger.Warn("web socket upgrade failed", "error", err)
		return
	}

	server.mu.Lock()
	if server.session != nil {
		server.session.close()
	}
	server.session = newSession(conn, server.logger)
	server.mu.Unlock()
	server.logger.Info("web view attached", "remote", conn.RemoteAddr().String())
}

// ShowPage queues a load of the named asset into the attached web view.
// Without a session it is a no-op, so headless bridge clients still get
// their confirmation.
func (server *Server) ShowPage(name string) error {
	if server.session == nil || !server.session.alive() {
		server.logger.Debug("no web view for page load", "page", name)
		return nil
	}
	return server.session.push(instruction{
		Instruction:       "load",
		Page:              name,
		VisibilityTimeout: server.timeout,
	})
}

// Navigate switches to the screen registered for the page and tells the
// attached web view to show its HTML. Called with mu held, from inside a
// command round trip.
func (server *Server) Navigate(page string) error {
	if !server.registry.Has(page) {
		return fmt.Errorf("page %q isn't in the page registry", page)
	}
	server.setScreen(page)
	if server.session == nil || !server.session.alive() {
		return nil
	}
	return server.session.push(instruction{
		Instruction:       "load",
		Page:              page + ".html",
		VisibilityTimeout: server.timeout,
	})
}

// Focus asks the attached web view for input focus. Focus is granted only
// while a session is attached.
func (server *Server) Focus() bool {
	if server.session == nil || !server.session.alive() {
		return false
	}
	return server.session.push(instruction{Instruction: "focus"}) == nil
}

// Close ends the current screen: the web view is told to close and command
// handling falls back to the start screen. Called with mu held.
func (server *Server) Close() error {
	if server.session != nil && server.session.alive() {
		if err := server.session.push(instruction{Instruction: "close"}); err != nil {
			return err
		}
	}
	server.setScreen(server.startPage)
	return nil
}

// StartMessage describes the running server for the log: its URL and the
// demo pages it serves.
func (server *Server) StartMessage(address string) string {
	host, port, err := net.SplitHostPort(address)
	if err != nil {
		host, port = "localhost", "8001"
	}
	if host == "" || host == "127.0.0.1" || host == "::" {
		host = "localhost"
	}
	url := fmt.Sprintf("http://%s:%s", host, port)
	lines := []string{"Starting HTTP server at " + url + " for:"}
	for _, page := range server.resolver.Pages() {
		lines = append(lines, url+"/"+page)
	}
	return strings.Join(lines, "\n")
}

// ListenAndServe runs the harness until the listener fails.
func (server *Server) ListenAndServe(address string) error {
	server.logger.Info(server.StartMessage(address))
	return http.ListenAndServe(address, server.Router())
}
