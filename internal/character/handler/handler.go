package handler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"potterdex/internal/character/filter"
	"potterdex/internal/character/models"
	"potterdex/internal/character/render"
	"potterdex/internal/platform/metrics"
	"potterdex/internal/platform/middleware"
	dErrors "potterdex/pkg/domain-errors"
	"potterdex/pkg/platform/httputil"
	metadata "potterdex/pkg/platform/middleware/metadata"
	"potterdex/pkg/platform/middleware/requesttime"
)

const (
	// ListPath is where mutations redirect after success.
	ListPath = "/mostrarTodos"

	// RateLimitClass names the limiter bucket shared by the mutating routes.
	RateLimitClass = "mutation"

	defaultMaxBodyBytes   = 1 << 20
	defaultRequestTimeout = 30 * time.Second
)

// Service defines the interface for character operations.
type Service interface {
	Import(ctx context.Context) (int, error)
	List(ctx context.Context) ([]models.Character, error)
	ListFiltered(ctx context.Context, code filter.Code) ([]models.Character, error)
	Create(ctx context.Context, form models.CharacterForm) (models.Character, error)
	Delete(ctx context.Context, id string) error
}

// Renderer writes the listing page.
type Renderer interface {
	Render(w io.Writer, page render.Page) error
}

// RateLimiter wraps routes with a per-client limit.
type RateLimiter interface {
	RateLimit(class string) func(http.Handler) http.Handler
}

// Handler serves the character pages.
type Handler struct {
	logger         *slog.Logger
	service        Service
	renderer       Renderer
	metrics        *metrics.Metrics
	limiter        RateLimiter
	clientIP       *metadata.Resolver
	maxBodyBytes   int64
	requestTimeout time.Duration
}

type Option func(*Handler)

func WithMetrics(m *metrics.Metrics) Option {
	return func(h *Handler) {
		h.metrics = m
	}
}

func WithRateLimiter(limiter RateLimiter) Option {
	return func(h *Handler) {
		h.limiter = limiter
	}
}

// WithClientResolver sets how the client address is derived. The default
// trusts no proxy headers.
func WithClientResolver(res *metadata.Resolver) Option {
	return func(h *Handler) {
		if res != nil {
			h.clientIP = res
		}
	}
}

// WithMaxBodyBytes bounds the insert form body.
func WithMaxBodyBytes(n int64) Option {
	return func(h *Handler) {
		if n > 0 {
			h.maxBodyBytes = n
		}
	}
}

// WithRequestTimeout sets the per-request deadline. Zero disables it.
func WithRequestTimeout(d time.Duration) Option {
	return func(h *Handler) {
		h.requestTimeout = d
	}
}

// New creates a new character Handler.
func New(service Service, renderer Renderer, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{
		logger:         logger,
		service:        service,
		renderer:       renderer,
		clientIP:       &metadata.Resolver{},
		maxBodyBytes:   defaultMaxBodyBytes,
		requestTimeout: defaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register registers the character routes with the chi router. Unknown paths
// and known paths with the wrong method both get the plain-text 404.
func (h *Handler) Register(r chi.Router) {
	r.Use(middleware.Recovery(h.logger))
	r.Use(middleware.RequestID)
	r.Use(h.clientIP.Middleware)
	r.Use(requesttime.Middleware)
	r.Use(middleware.Logger(h.logger))
	r.Use(middleware.Timeout(h.requestTimeout))
	r.Use(middleware.LatencyMiddleware(h.metrics))

	r.NotFound(h.handleNotFound)
	r.MethodNotAllowed(h.handleNotFound)

	r.Get("/", h.handleList)
	r.Get(ListPath, h.handleList)
	r.Get("/filtro*", h.handleFilter)

	r.Group(func(r chi.Router) {
		if h.limiter != nil {
			r.Use(h.limiter.RateLimit(RateLimitClass))
		}
		r.Get("/importar", h.handleImport)
		r.Get("/borrar", h.handleDelete)
		r.Post("/insertar", h.handleInsert)
	})
}

// handleImport reloads the collection from the seed file and renders it.
func (h *Handler) handleImport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	n, err := h.service.Import(ctx)
	if err != nil {
		h.fail(w, r, "failed to import characters", err)
		return
	}
	h.logger.InfoContext(ctx, "collection imported",
		"request_id", middleware.GetRequestID(ctx),
		"inserted", n,
	)

	records, err := h.service.List(ctx)
	if err != nil {
		h.fail(w, r, "failed to list characters", err)
		return
	}
	h.renderPage(w, r, render.Page{Characters: records})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.List(r.Context())
	if err != nil {
		h.fail(w, r, "failed to list characters", err)
		return
	}
	h.renderPage(w, r, render.Page{Characters: records})
}

// handleFilter resolves the filter code from the first digits in the path.
func (h *Handler) handleFilter(w http.ResponseWriter, r *http.Request) {
	code, err := filter.Resolve(r.URL.Path)
	if err != nil {
		h.fail(w, r, "invalid filter path", err)
		return
	}

	records, err := h.service.ListFiltered(r.Context(), code)
	if err != nil {
		h.fail(w, r, "failed to filter characters", err)
		return
	}
	h.renderPage(w, r, render.Page{Heading: code.Label(), Characters: records})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), r.URL.Query().Get("id")); err != nil {
		h.fail(w, r, "failed to delete character", err)
		return
	}
	httputil.Redirect(w, r, ListPath)
}

func (h *Handler) handleInsert(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.fail(w, r, "insert body too large", dErrors.Wrap(err, dErrors.CodePayloadTooLarge, "Cuerpo de la solicitud demasiado grande"))
			return
		}
		h.fail(w, r, "invalid insert form", dErrors.Wrap(err, dErrors.CodeBadRequest, "Formulario no válido"))
		return
	}

	if _, err := h.service.Create(r.Context(), models.NewCharacterForm(r.PostForm)); err != nil {
		h.fail(w, r, "failed to insert character", err)
		return
	}
	httputil.Redirect(w, r, ListPath)
}

func (h *Handler) handleNotFound(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteText(w, http.StatusNotFound, httputil.MsgNotFound)
}

// renderPage renders into a buffer first so a template failure still yields a clean 500.
func (h *Handler) renderPage(w http.ResponseWriter, r *http.Request, page render.Page) {
	var buf bytes.Buffer
	if err := h.renderer.Render(&buf, page); err != nil {
		h.fail(w, r, "failed to render page", err)
		return
	}
	httputil.WriteHTML(w, http.StatusOK, &buf)
}

// fail logs err and writes the mapped response. Client errors log at warn.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	ctx := r.Context()
	attrs := []any{
		"request_id", middleware.GetRequestID(ctx),
		"path", r.URL.Path,
		"error", err.Error(),
	}
	if code, ok := dErrors.CodeOf(err); ok && code != dErrors.CodeInternal && code != dErrors.CodeUnavailable {
		h.logger.WarnContext(ctx, msg, attrs...)
	} else {
		h.logger.ErrorContext(ctx, msg, attrs...)
	}
	httputil.WriteError(w, err)
}
