package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/classgraph/pkg/buildinfo"
	cgerrors "github.com/matzehuels/classgraph/pkg/errors"
	cgio "github.com/matzehuels/classgraph/pkg/io"
	"github.com/matzehuels/classgraph/pkg/pipeline"
)

// Response headers set on diagram responses.
const (
	WarningsHeader = "X-Classgraph-Warnings"
	CacheHeader    = "X-Classgraph-Cache"
)

var contentTypes = map[string]string{
	pipeline.FormatDOT: "text/vnd.graphviz; charset=utf-8",
	pipeline.FormatSVG: "image/svg+xml",
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Service: buildinfo.Name,
		Version: buildinfo.Resolve(),
		Uptime:  time.Since(s.started).Round(time.Second).String(),
	})
}

func (s *Server) handleDiagram(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	opts, format, err := s.requestOptions(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if format == pipeline.FormatXMI {
		s.fail(w, r, cgerrors.Unsupported("XMI output"))
		return
	}

	cat, err := cgio.ReadJSON(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	res, err := s.runner.Generate(ctx, cat, opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set(WarningsHeader, strconv.Itoa(res.Stats.Warnings))

	body := []byte(res.DOT)
	if format == pipeline.FormatSVG {
		var hit bool
		body, hit, err = s.renderSVG(ctx, res, opts)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		w.Header().Set(CacheHeader, map[bool]string{true: "hit", false: "miss"}[hit])
	}

	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		s.logger.Warn("write response", "id", RequestID(ctx), "err", err)
	}
}

type svgResult struct {
	data []byte
	hit  bool
}

// renderSVG renders through the runner cache. Identical concurrent renders
// share one call; the shared call is detached from any single request so one
// client going away does not fail the others.
func (s *Server) renderSVG(ctx context.Context, res *pipeline.Result, opts pipeline.Options) ([]byte, bool, error) {
	opts.Formats = []string{pipeline.FormatSVG}
	key := s.runner.Keyer.ArtifactKey(res.DOTHash, opts.ArtifactKeyOpts(pipeline.FormatSVG))

	v, err, shared := s.renders.Do(key, func() (any, error) {
		artifacts, hit, err := s.runner.RenderWithCacheInfo(context.WithoutCancel(ctx), res.DOT, opts)
		if err != nil {
			return nil, err
		}
		return svgResult{data: artifacts[pipeline.FormatSVG], hit: hit}, nil
	})
	if err != nil {
		return nil, false, err
	}
	if shared {
		s.logger.Debug("shared render", "id", RequestID(ctx), "key", key)
	}
	out := v.(svgResult)
	return out.data, out.hit, nil
}

// requestOptions builds pipeline options from the configured defaults, the
// route and the query string.
func (s *Server) requestOptions(r *http.Request) (pipeline.Options, string, error) {
	opts := s.defaults()
	diagramType := strings.ToLower(chi.URLParam(r, "type"))
	if !pipeline.ValidDiagramTypes[diagramType] {
		return opts, "", cgerrors.New(cgerrors.ErrCodeNotFound, "unknown diagram type %q", diagramType)
	}
	opts.DiagramType = diagramType

	q := r.URL.Query()
	format := pipeline.FormatDOT
	if v := q.Get("format"); v != "" {
		format = strings.ToLower(v)
	}
	if format != pipeline.FormatDOT && format != pipeline.FormatSVG && format != pipeline.FormatXMI {
		return opts, "", cgerrors.New(cgerrors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: dot, svg, xmi)", format)
	}
	opts.Formats = []string{format}

	flags := map[string]*bool{
		"brief":           &opts.Brief,
		"hide_magic":      &opts.HideMagic,
		"hide_types":      &opts.HideTypes,
		"content_only":    &opts.ContentOnly,
		"inheritance":     &opts.Inheritance,
		"transitive":      &opts.Transitive,
		"hide_belongs_to": &opts.HideBelongsTo,
		"all":             &opts.All,
		"modules":         &opts.Modules,
		"label":           &opts.ShowLabel,
		"edge_lengths":    &opts.EdgeLengths,
		"refresh":         &opts.Refresh,
	}
	for name, dst := range flags {
		v := q.Get(name)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, "", cgerrors.New(cgerrors.ErrCodeInvalidInput, "%s: invalid boolean %q", name, v)
		}
		*dst = b
	}
	if v, ok := q["filter"]; ok {
		opts.Filter = v
	}
	if v := q.Get("title"); v != "" {
		opts.Title = v
	}
	if v := q.Get("colors"); v != "" {
		opts.Colors = v
	}
	if v := q.Get("seed"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return opts, "", cgerrors.New(cgerrors.ErrCodeInvalidInput, "seed: invalid number %q", v)
		}
		opts.Seed = &seed
	}
	return opts, format, nil
}

// defaults returns a copy of the configured defaults that a request may
// modify freely.
func (s *Server) defaults() pipeline.Options {
	d := s.cfg.Defaults
	opts := pipeline.Options{
		Brief:         d.Brief,
		HideMagic:     d.HideMagic,
		HideTypes:     d.HideTypes,
		ContentOnly:   d.ContentOnly,
		Inheritance:   d.Inheritance,
		Transitive:    d.Transitive,
		HideBelongsTo: d.HideBelongsTo,
		All:           d.All,
		Modules:       d.Modules,
		Filter:        append([]string(nil), d.Filter...),
		LinkBase:      d.LinkBase,
		LinkRoots:     append([]string(nil), d.LinkRoots...),
		LinkExt:       d.LinkExt,
		ShowLabel:     d.ShowLabel,
		Title:         d.Title,
		Colors:        d.Colors,
		EdgeLengths:   d.EdgeLengths,
		Logger:        s.logger,
		FS:            d.FS,
		Now:           d.Now,
	}
	if d.Seed != nil {
		seed := *d.Seed
		opts.Seed = &seed
	}
	return opts
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	code := string(cgerrors.GetCode(err))
	if code == "" {
		code = string(cgerrors.ErrCodeInternal)
	}
	msg := cgerrors.UserMessage(err)
	var coded *cgerrors.Error
	if status < http.StatusInternalServerError && errors.As(err, &coded) && coded.Cause != nil {
		msg += ": " + coded.Cause.Error()
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		status, code = http.StatusRequestEntityTooLarge, "BODY_TOO_LARGE"
		msg = "request body exceeds " + strconv.FormatInt(tooLarge.Limit, 10) + " bytes"
	}
	if status >= http.StatusInternalServerError && status != http.StatusNotImplemented {
		s.logger.Error("request failed", "id", RequestID(r.Context()), "err", err)
	}
	writeError(w, r, status, code, msg)
}

// statusFor maps error codes to HTTP status codes.
func statusFor(err error) int {
	switch cgerrors.GetCode(err) {
	case cgerrors.ErrCodeInvalidInput, cgerrors.ErrCodeInvalidCatalog, cgerrors.ErrCodeInvalidFormat,
		cgerrors.ErrCodeInvalidEdgeKind, cgerrors.ErrCodeInvalidNode, cgerrors.ErrCodeDuplicateNode,
		cgerrors.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case cgerrors.ErrCodeNotFound, cgerrors.ErrCodeNodeNotFound:
		return http.StatusNotFound
	case cgerrors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg, Code: code, RequestID: RequestID(r.Context())})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
