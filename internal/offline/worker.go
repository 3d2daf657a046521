package offline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// State is the lifecycle of a Worker.
type State string

const (
	StateInstalling State = "installing"
	StateInstalled  State = "installed"
	StateActive     State = "active"
	StateTerminated State = "terminated"
)

const cachePrefix = "karwan-auliya-"

// Config describes the origin the worker fronts.
type Config struct {
	Origin      string
	Version     string
	GatewayHost string   // requests for this host are never cached
	Assets      []string // precached on install
	Client      *http.Client
}

// Worker is an http.Handler that fronts the single-page app origin and
// answers from cache when the origin cannot be reached.
type Worker struct {
	origin      *url.URL
	cacheName   string
	gatewayHost string
	assets      []string
	client      *http.Client
	storage     Storage

	mu    sync.RWMutex
	state State

	refreshes sync.WaitGroup
}

func NewWorker(cfg Config, storage Storage) (*Worker, error) {
	origin, err := url.Parse(cfg.Origin)
	if err != nil || origin.Scheme == "" || origin.Host == "" {
		return nil, fmt.Errorf("invalid origin %q", cfg.Origin)
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Worker{
		origin:      origin,
		cacheName:   cachePrefix + cfg.Version,
		gatewayHost: cfg.GatewayHost,
		assets:      cfg.Assets,
		client:      client,
		storage:     storage,
		state:       StateInstalling,
	}, nil
}

func (w *Worker) CacheName() string { return w.cacheName }

func (w *Worker) State() State {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.state
}

func (w *Worker) setState(s State) {
	w.mu.Lock()
	w.state = s
	w.mu.Unlock()
	log.Info().Str("cache", w.cacheName).Str("state", string(s)).Msg("[OFFLINE] state changed")
}

// Install precaches the shell assets. A failed asset is logged and skipped;
// installation always completes.
func (w *Worker) Install(ctx context.Context) {
	store := w.storage.Open(w.cacheName)
	for _, asset := range w.assets {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.target(asset), nil)
		if err != nil {
			log.Warn().Err(err).Str("asset", asset).Msg("[OFFLINE] bad asset path")
			continue
		}
		entry, err := w.fetch(req)
		if err != nil {
			log.Warn().Err(err).Str("asset", asset).Msg("[OFFLINE] precache failed")
			continue
		}
		if entry.Status == http.StatusOK {
			store.Put(asset, entry)
		}
	}
	w.setState(StateInstalled)
}

// Activate removes caches of other versions and starts serving.
func (w *Worker) Activate(context.Context) {
	for _, name := range w.storage.Names() {
		if name != w.cacheName {
			w.storage.Delete(name)
			log.Info().Str("cache", name).Msg("[OFFLINE] deleted old cache")
		}
	}
	w.setState(StateActive)
}

// Start installs then activates.
func (w *Worker) Start(ctx context.Context) {
	w.Install(ctx)
	w.Activate(ctx)
}

// Terminate stops serving from cache and waits for background refreshes.
func (w *Worker) Terminate() {
	w.setState(StateTerminated)
	w.Drain()
}

// Drain waits for every background cache refresh to finish.
func (w *Worker) Drain() {
	w.refreshes.Wait()
}

func (w *Worker) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	if w.State() != StateActive || r.Method != http.MethodGet || w.isGateway(r) {
		w.passThrough(rw, r)
		return
	}

	switch {
	case isNavigation(r):
		w.networkFirst(rw, r)
	case isStaticAsset(r):
		w.cacheFirst(rw, r)
	default:
		w.passThrough(rw, r)
	}
}

// networkFirst serves the origin's answer, falling back to the cached page
// and then to the cached shell.
func (w *Worker) networkFirst(rw http.ResponseWriter, r *http.Request) {
	store := w.storage.Open(w.cacheName)
	key := cacheKey(r)

	entry, err := w.fetch(w.originRequest(r))
	if err == nil {
		if entry.Status == http.StatusOK {
			store.Put(key, entry)
		}
		write(rw, entry)
		return
	}

	log.Debug().Err(err).Str("path", key).Msg("[OFFLINE] network failed, serving cache")
	if cached, ok := store.Match(key); ok {
		write(rw, cached)
		return
	}
	if shell, ok := store.Match("/"); ok {
		write(rw, shell)
		return
	}
	http.Error(rw, "offline", http.StatusServiceUnavailable)
}

// cacheFirst serves a cached asset and refreshes it in the background.
func (w *Worker) cacheFirst(rw http.ResponseWriter, r *http.Request) {
	store := w.storage.Open(w.cacheName)
	key := cacheKey(r)

	if cached, ok := store.Match(key); ok {
		write(rw, cached)

		refresh := w.originRequest(r).WithContext(context.WithoutCancel(r.Context()))
		w.refreshes.Add(1)
		go func() {
			defer w.refreshes.Done()
			entry, err := w.fetch(refresh)
			if err == nil && entry.Status == http.StatusOK {
				store.Put(key, entry)
			}
		}()
		return
	}

	entry, err := w.fetch(w.originRequest(r))
	if err != nil {
		http.Error(rw, "offline", http.StatusServiceUnavailable)
		return
	}
	if entry.Status == http.StatusOK {
		store.Put(key, entry)
	}
	write(rw, entry)
}

func (w *Worker) passThrough(rw http.ResponseWriter, r *http.Request) {
	entry, err := w.fetch(w.originRequest(r))
	if err != nil {
		http.Error(rw, "bad gateway", http.StatusBadGateway)
		return
	}
	write(rw, entry)
}

func (w *Worker) fetch(req *http.Request) (Entry, error) {
	resp, err := w.client.Do(req)
	if err != nil {
		return Entry{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Entry{}, err
	}
	return Entry{Status: resp.StatusCode, Header: resp.Header.Clone(), Body: body}, nil
}

func (w *Worker) target(p string) string {
	u := *w.origin
	u.Path = path.Join("/", w.origin.Path, p)
	if strings.HasSuffix(p, "/") && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

func (w *Worker) originRequest(r *http.Request) *http.Request {
	u := *w.origin
	u.Path = r.URL.Path
	u.RawQuery = r.URL.RawQuery

	var body io.Reader
	if r.Body != nil && r.Method != http.MethodGet && r.Method != http.MethodHead {
		raw, _ := io.ReadAll(r.Body)
		body = bytes.NewReader(raw)
	}
	out, _ := http.NewRequestWithContext(r.Context(), r.Method, u.String(), body)
	out.Header = r.Header.Clone()
	return out
}

func (w *Worker) isGateway(r *http.Request) bool {
	if w.gatewayHost == "" {
		return false
	}
	host := r.Host
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return strings.Contains(host, w.gatewayHost)
}

func cacheKey(r *http.Request) string {
	if r.URL.RawQuery == "" {
		return r.URL.Path
	}
	return r.URL.Path + "?" + r.URL.RawQuery
}

func isNavigation(r *http.Request) bool {
	if r.Header.Get("Sec-Fetch-Mode") == "navigate" {
		return true
	}
	return r.Header.Get("Sec-Fetch-Mode") == "" && strings.Contains(r.Header.Get("Accept"), "text/html")
}

var assetDestinations = map[string]bool{"image": true, "style": true, "script": true, "font": true}

var assetExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".svg": true, ".webp": true, ".ico": true,
	".css": true, ".js": true, ".mjs": true,
	".woff": true, ".woff2": true, ".ttf": true, ".otf": true,
}

func isStaticAsset(r *http.Request) bool {
	if dest := r.Header.Get("Sec-Fetch-Dest"); dest != "" {
		return assetDestinations[dest]
	}
	return assetExtensions[strings.ToLower(path.Ext(r.URL.Path))]
}

func write(rw http.ResponseWriter, e Entry) {
	for k, vs := range e.Header {
		for _, v := range vs {
			rw.Header().Add(k, v)
		}
	}
	rw.WriteHeader(e.Status)
	_, _ = rw.Write(e.Body)
}
