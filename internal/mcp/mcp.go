// Package mcp implements the read-side tool server exposed to MCP
// clients, grounded on original_source/mcp_server/mcp_server.py's
// StockMCPServer (its ToolManager.add_tool registry of
// name/description/output_schema/fn, and its three tools: list_tools,
// get_similar_articles, get_article_historical_analysis). Transport is
// plain net/http JSON rather than the Python fastmcp framework's
// transport, since no MCP-protocol library ships anywhere in the
// example pack.
package mcp

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/wayming/Automated-Trading-System/internal/metrics"
)

// state is the invocation state machine each tool call moves through.
type state string

const (
	stateReceived  state = "received"
	stateValidated state = "validated"
	stateExecuted  state = "executed"
	stateResponded state = "responded"
	stateErrored   state = "errored"
)

// Handler executes one tool call against a decoded params object and
// returns a JSON-serialisable result.
type Handler func(ctx context.Context, params map[string]any) (any, error)

// Tool is one registered MCP tool.
type Tool struct {
	Name         string
	Description  string
	OutputSchema map[string]any
	Handler      Handler
}

// Registry holds the set of tools this server exposes.
type Registry struct {
	tools   map[string]Tool
	order   []string
	metrics *metrics.Pipeline
	logger  *zap.Logger
}

// NewRegistry creates an empty Registry.
func NewRegistry(metrics *metrics.Pipeline, logger *zap.Logger) *Registry {
	return &Registry{tools: make(map[string]Tool), metrics: metrics, logger: logger}
}

// Register adds t to the registry. Registering the same name twice
// replaces the earlier tool and preserves its original position.
func (r *Registry) Register(t Tool) {
	if _, exists := r.tools[t.Name]; !exists {
		r.order = append(r.order, t.Name)
	}
	r.tools[t.Name] = t
}

// List returns the registered tools in registration order.
func (r *Registry) List() []Tool {
	out := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}
	return out
}

type toolDescriptor struct {
	Name         string         `json:"name"`
	Description  string         `json:"description"`
	OutputSchema map[string]any `json:"output_schema"`
}

type callRequest struct {
	Name   string         `json:"name"`
	Params map[string]any `json:"params"`
}

type callResponse struct {
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Mux builds the HTTP handler exposing /tools/list and /tools/call.
func (r *Registry) Mux() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/tools/list", r.handleList)
	mux.HandleFunc("/tools/call", r.handleCall)
	return mux
}

func (r *Registry) handleList(w http.ResponseWriter, req *http.Request) {
	descriptors := make([]toolDescriptor, 0, len(r.order))
	for _, t := range r.List() {
		descriptors = append(descriptors, toolDescriptor{
			Name:         t.Name,
			Description:  t.Description,
			OutputSchema: t.OutputSchema,
		})
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(descriptors)
}

func (r *Registry) handleCall(w http.ResponseWriter, req *http.Request) {
	st := stateReceived
	var call callRequest
	if err := json.NewDecoder(req.Body).Decode(&call); err != nil {
		st = stateErrored
		r.respondError(w, http.StatusBadRequest, "", st, err)
		return
	}

	tool, ok := r.tools[call.Name]
	if !ok {
		st = stateErrored
		r.respondError(w, http.StatusNotFound, call.Name, st, errUnknownTool(call.Name))
		return
	}
	st = stateValidated

	result, err := tool.Handler(req.Context(), call.Params)
	if err != nil {
		st = stateErrored
		r.respondError(w, http.StatusInternalServerError, call.Name, st, err)
		return
	}
	st = stateExecuted

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(callResponse{Result: result})
	st = stateResponded

	if r.metrics != nil {
		r.metrics.McpToolCalls.WithLabelValues(call.Name, "ok").Inc()
	}
	r.logger.Info("tool call completed", zap.String("tool", call.Name), zap.String("state", string(st)))
}

func (r *Registry) respondError(w http.ResponseWriter, status int, toolName string, st state, err error) {
	if r.metrics != nil {
		r.metrics.McpToolCalls.WithLabelValues(toolName, "error").Inc()
	}
	r.logger.Error("tool call failed", zap.String("tool", toolName), zap.String("state", string(st)), zap.Error(err))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(callResponse{Error: err.Error()})
}

type unknownToolError struct{ name string }

func (e *unknownToolError) Error() string { return "mcp: unknown tool " + e.name }

func errUnknownTool(name string) error { return &unknownToolError{name: name} }
