package tools

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
)

// maxRequestBody caps the size of a tool call body.
const maxRequestBody = 1 << 20

type httpResponse struct {
	Tool   string `json:"tool,omitempty"`
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

type httpHost struct {
	tools  *Toolset
	logger *slog.Logger
}

// NewHTTPHandler serves the tools as JSON over HTTP:
//
//	GET  /tools        tool definitions
//	POST /tools/:name  call a tool with a JSON object of arguments
//	GET  /healthz      liveness
func NewHTTPHandler(ts *Toolset, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	h := &httpHost{tools: ts, logger: logger}

	router := httprouter.New()
	router.GET("/tools", h.list)
	router.POST("/tools/:name", h.call)
	router.GET("/healthz", func(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
		w.WriteHeader(http.StatusNoContent)
	})
	router.PanicHandler = func(w http.ResponseWriter, r *http.Request, v any) {
		h.logger.Error("http handler panicked", "path", r.URL.Path, "panic", v)
		h.write(w, http.StatusInternalServerError, httpResponse{Error: "internal error"})
	}
	return router
}

func (h *httpHost) list(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	h.write(w, http.StatusOK, Definitions)
}

func (h *httpHost) call(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	name := ps.ByName("name")
	if _, ok := Lookup(name); !ok {
		h.write(w, http.StatusNotFound, httpResponse{Tool: name, Error: fmt.Sprintf("unknown tool %q", name)})
		return
	}

	args, err := decodeArgs(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		h.write(w, http.StatusBadRequest, httpResponse{Tool: name, Error: err.Error()})
		return
	}

	result, err := h.tools.Invoke(r.Context(), name, args)
	switch {
	case errors.Is(err, ErrUnknownTool):
		h.write(w, http.StatusNotFound, httpResponse{Tool: name, Error: err.Error()})
	case err != nil:
		h.write(w, http.StatusBadRequest, httpResponse{Tool: name, Error: err.Error()})
	default:
		h.write(w, http.StatusOK, httpResponse{Tool: name, Result: result})
	}
}

// decodeArgs reads a JSON object. An empty body means no arguments.
func decodeArgs(r io.Reader) (Args, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if strings.TrimSpace(string(body)) == "" {
		return Args{}, nil
	}

	dec := json.NewDecoder(strings.NewReader(string(body)))
	dec.UseNumber()
	var args Args
	if err := dec.Decode(&args); err != nil {
		return nil, fmt.Errorf("invalid JSON body: %w", err)
	}
	if args == nil {
		return nil, errors.New("invalid JSON body: expected an object")
	}
	return args, nil
}

func (h *httpHost) write(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}
