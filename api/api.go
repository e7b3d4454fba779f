// Package api serves an http endpoint for sending messages and previewing the reply template
package api

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/xackery/replyquote/config"
	"github.com/xackery/replyquote/model"
	"github.com/xackery/replyquote/quote"
	"golang.org/x/time/rate"
)

// Dispatcher invokes a named send operation
type Dispatcher interface {
	Send(ctx context.Context, name string, req *model.SendRequest) (*discordgo.Message, error)
}

// API represents the api service
type API struct {
	ctx         context.Context
	cancel      context.CancelFunc
	isConnected bool
	mutex       sync.RWMutex
	config      config.API
	server      *http.Server
	board       Dispatcher
	template    func() string
	renderer    *quote.Renderer
	limiter     *rate.Limiter
}

// New creates a new api endpoint. Sends are dispatched through board
func New(ctx context.Context, config config.API, board Dispatcher, template func() string, renderer *quote.Renderer) (*API, error) {
	if board == nil {
		return nil, errors.New("dispatcher must be set")
	}
	if template == nil {
		template = func() string { return quote.DefaultTemplate }
	}
	if renderer == nil {
		renderer = quote.NewRenderer(nil)
	}
	limit := rate.Inf
	if config.RateLimit > 0 {
		limit = rate.Limit(config.RateLimit)
	}
	burst := config.Burst
	if burst < 1 {
		burst = 1
	}
	ctx, cancel := context.WithCancel(ctx)
	t := &API{
		ctx:      ctx,
		cancel:   cancel,
		config:   config,
		board:    board,
		template: template,
		renderer: renderer,
		limiter:  rate.NewLimiter(limit, burst),
	}
	return t, nil
}

// Router returns the http routes served by the api
func (t *API) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api", t.index).Methods("GET")
	r.HandleFunc("/api/template/variables", t.variables).Methods("GET")
	r.HandleFunc("/api/template/preview", t.preview).Methods("POST")
	r.Handle("/api/channels/{channel_id}/messages", t.rateLimit(http.HandlerFunc(t.sendMessage))).Methods("POST")
	return r
}

// Connect establishes a server for API
func (t *API) Connect(ctx context.Context) error {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	log := model.NewLogger(ctx)
	if !t.config.IsEnabled {
		log.Debug().Msg("api is disabled, skipping connect")
		return nil
	}

	if t.server != nil {
		t.server.Close()
		t.server = nil
		t.cancel()
	}
	t.ctx, t.cancel = context.WithCancel(ctx)

	log.Info().Msgf("api listening on %s...", t.config.Host)

	server := &http.Server{
		Addr:              t.config.Host,
		Handler:           t.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return t.ctx
		},
	}
	t.server = server

	go func() {
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("api listenandserve")
		}
		t.mutex.Lock()
		if t.server == server {
			t.isConnected = false
		}
		t.mutex.Unlock()
	}()

	t.isConnected = true
	log.Info().Msgf("api started successfully")
	return nil
}

// IsConnected returns if a connection is established
func (t *API) IsConnected() bool {
	t.mutex.RLock()
	isConnected := t.isConnected
	t.mutex.RUnlock()
	return isConnected
}

// Disconnect stops a previously started api server.
// If called while a connection is not active, returns nil
func (t *API) Disconnect(ctx context.Context) error {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	log := model.NewLogger(ctx)
	if !t.config.IsEnabled {
		log.Debug().Msg("api is disabled, skipping disconnect")
		return nil
	}
	if t.server == nil {
		log.Debug().Msg("api is already disconnected, skipping disconnect")
		return nil
	}
	err := t.server.Shutdown(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("api disconnect")
	}
	t.cancel()
	t.server = nil
	t.isConnected = false
	return nil
}

func (t *API) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !t.limiter.Allow() {
			writeJSON(r.Context(), w, http.StatusTooManyRequests, &errorResponse{Message: "rate limited"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (t *API) index(w http.ResponseWriter, r *http.Request) {
	type Resp struct {
		Template string `json:"template"`
	}
	writeJSON(r.Context(), w, http.StatusOK, &Resp{Template: t.template()})
}

type errorResponse struct {
	Message string `json:"message"`
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		log := model.NewLogger(ctx)
		log.Warn().Err(err).Msg("encode response")
	}
}
