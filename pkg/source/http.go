package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"

	"github.com/pluqqy/itemgrid/pkg/models"
)

// retryLogger implements the retryablehttp.LeveledLogger interface
type retryLogger struct {
	log zerolog.Logger
}

func (l *retryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.log.Error().Fields(keysAndValues).Msg(msg)
}

func (l *retryLogger) Info(msg string, keysAndValues ...interface{}) {
	// Only log errors and warnings
}

func (l *retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l *retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.log.Warn().Fields(keysAndValues).Msg(msg)
}

// HTTPOptions configures an HTTPSource.
type HTTPOptions struct {
	Timeout time.Duration
	// Retries is the transport-level retry count. The grid window retries
	// failed pages itself, so this is usually zero.
	Retries int
	Logger  zerolog.Logger
}

// HTTPSource reads pages from an itemgrid server.
type HTTPSource struct {
	httpClient *http.Client
	baseURL    string
}

// NewHTTPSource creates a source for the server at baseURL.
func NewHTTPSource(baseURL string, opts HTTPOptions) (*HTTPSource, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid remote URL %q", baseURL)
	}
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = opts.Retries
	retryClient.RetryWaitMin = 200 * time.Millisecond
	retryClient.RetryWaitMax = 2 * time.Second
	retryClient.Logger = &retryLogger{log: opts.Logger}
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	if opts.Timeout > 0 {
		retryClient.HTTPClient.Timeout = opts.Timeout
	}
	return &HTTPSource{
		httpClient: retryClient.StandardClient(),
		baseURL:    strings.TrimSuffix(baseURL, "/"),
	}, nil
}

func queryValues(q models.Query) url.Values {
	v := url.Values{}
	if text := strings.TrimSpace(q.Text); text != "" {
		v.Set("q", text)
	}
	if q.SortBy != "" {
		v.Set("sort", q.SortBy)
	}
	if q.Direction != "" {
		v.Set("dir", string(q.Direction))
	}
	return v
}

// FetchRange implements Source.
func (s *HTTPSource) FetchRange(ctx context.Context, q models.Query, offset, count int) (Page, error) {
	v := queryValues(q)
	v.Set("offset", strconv.Itoa(offset))
	v.Set("count", strconv.Itoa(count))

	var page Page
	if err := s.get(ctx, "/items", v, &page); err != nil {
		return Page{}, fmt.Errorf("fetch %d+%d: %w", offset, count, err)
	}
	return page, nil
}

// IndexOf implements Locator.
func (s *HTTPSource) IndexOf(ctx context.Context, q models.Query, key string) (int, error) {
	v := queryValues(q)
	v.Set("key", key)

	var resp struct {
		Index int `json:"index"`
	}
	if err := s.get(ctx, "/items/index", v, &resp); err != nil {
		return -1, fmt.Errorf("locate %s: %w", key, err)
	}
	return resp.Index, nil
}

func (s *HTTPSource) get(ctx context.Context, path string, v url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path+"?"+v.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		// the retry transport wraps the context error
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode != http.StatusOK:
		var e errorResponse
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(body, &e) == nil && e.Error != "" {
			return fmt.Errorf("server returned %d: %s", resp.StatusCode, e.Error)
		}
		return fmt.Errorf("server returned %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server exposes a Source over HTTP for HTTPSource clients.
type Server struct {
	src Source
	log zerolog.Logger
}

// NewServer creates a server backed by src.
func NewServer(src Source, log zerolog.Logger) *Server {
	return &Server{src: src, log: log}
}

func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/items", s.handleItems)
	mux.HandleFunc("/items/index", s.handleIndex)
	mux.HandleFunc("/healthz", handleHealthz)
}

// maxPageSize bounds the count a client may ask for in one request.
const maxPageSize = 500

func parseQuery(r *http.Request) models.Query {
	v := r.URL.Query()
	q := models.Query{
		Text:      v.Get("q"),
		SortBy:    v.Get("sort"),
		Direction: models.SortDirection(v.Get("dir")),
	}
	if q.Direction != models.SortDesc {
		q.Direction = models.SortAsc
	}
	return q
}

func nonNegative(v url.Values, name string, fallback int) (int, error) {
	raw := v.Get(name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", name)
	}
	return n, nil
}

func (s *Server) handleItems(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	v := r.URL.Query()
	offset, err := nonNegative(v, "offset", 0)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	count, err := nonNegative(v, "count", 50)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if count > maxPageSize {
		count = maxPageSize
	}
	page, err := s.src.FetchRange(r.Context(), parseQuery(r), offset, count)
	if err != nil {
		s.log.Error().Err(err).Int("offset", offset).Int("count", count).Msg("fetch items")
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if page.Records == nil {
		page.Records = []models.Record{}
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	locator, ok := s.src.(Locator)
	if !ok {
		writeJSON(w, http.StatusNotImplemented, errorResponse{Error: "source cannot locate records"})
		return
	}
	key := r.URL.Query().Get("key")
	if key == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "key is required"})
		return
	}
	idx, err := locator.IndexOf(r.Context(), parseQuery(r), key)
	if errors.Is(err, ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}
	if err != nil {
		s.log.Error().Err(err).Str("key", key).Msg("locate item")
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"index": idx})
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
