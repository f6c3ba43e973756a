package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"issue-history/internal/config"
	"issue-history/internal/history"
	"issue-history/internal/query"

	"github.com/rs/zerolog/log"
)

// JSONRPCRequest represents a standard MCP/JSON-RPC request.
type JSONRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// JSONRPCResponse represents a standard MCP/JSON-RPC response.
type JSONRPCResponse struct {
	JSONRPC string `json:"jsonrpc"`
	ID      any    `json:"id"`
	Result  any    `json:"result,omitempty"`
	Error   any    `json:"error,omitempty"`
}

// Backend resolves queries against the issue feed.
type Backend interface {
	history.Source
	Count(ctx context.Context, q query.Query) (int, error)
}

// Server holds the state for the MCP server.
type Server struct {
	cfg     *config.AppConfig
	backend Backend
	engine  *history.Engine
	version string
}

// NewServer creates a new MCP server.
func NewServer(cfg *config.AppConfig, backend Backend, version string) *Server {
	return &Server{
		cfg:     cfg,
		backend: backend,
		engine:  history.NewEngine(backend, cfg.Concurrency),
		version: version,
	}
}

// Serve runs the JSON-RPC loop, one request per line, until in is exhausted or ctx is done.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	reader := bufio.NewReader(in)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, err := reader.ReadBytes('\n')
		if len(line) > 0 {
			var req JSONRPCRequest
			if jerr := json.Unmarshal(line, &req); jerr != nil {
				log.Error().Err(jerr).Msg("Failed to unmarshal request")
			} else if resp, ok := s.handleRequest(ctx, req); ok {
				payload, merr := json.Marshal(resp)
				if merr != nil {
					return merr
				}
				if _, werr := fmt.Fprintf(out, "%s\n", payload); werr != nil {
					return werr
				}
			}
		}
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
	}
}

// handleRequest returns false for notifications, which get no response.
func (s *Server) handleRequest(ctx context.Context, req JSONRPCRequest) (JSONRPCResponse, bool) {
	var result any
	var errRes any

	log.Debug().Str("method", req.Method).Msg("MCP request")

	switch req.Method {
	case "initialize":
		result = map[string]any{
			"protocolVersion": "2024-11-05",
			"capabilities": map[string]any{
				"tools": map[string]any{},
			},
			"serverInfo": map[string]any{
				"name":    "issue-history",
				"version": s.version,
			},
		}
	case "notifications/initialized":
		return JSONRPCResponse{}, false
	case "ping":
		result = map[string]any{}
	case "tools/list":
		result = s.listTools()
	case "tools/call":
		result, errRes = s.callTool(ctx, req.Params)
	default:
		errRes = map[string]any{
			"code":    -32601,
			"message": fmt.Sprintf("Method %s not found", req.Method),
		}
	}

	return JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result:  result,
		Error:   errRes,
	}, true
}

func (s *Server) callTool(ctx context.Context, params json.RawMessage) (any, any) {
	var call struct {
		Name      string         `json:"name"`
		Arguments map[string]any `json:"arguments"`
	}
	if err := json.Unmarshal(params, &call); err != nil {
		return nil, map[string]any{"code": -32602, "message": "Invalid params"}
	}
	args := call.Arguments

	var data any
	var err error

	switch call.Name {
	case "count_issues":
		data, err = s.handleCountIssues(ctx, queryOptions(args))
	case "group_issues":
		data, err = s.handleGroupIssues(ctx, queryOptions(args), asString(args["property"]), asInt(args["hint"]))
	case "issue_history":
		data, err = s.handleIssueHistory(ctx, queryOptions(args),
			asString(args["start_date"]), asString(args["end_date"]),
			asInt(args["step_days"]), asString(args["group_by"]))
	default:
		return nil, map[string]any{"code": -32601, "message": "Tool not found"}
	}

	if err != nil {
		log.Error().Err(err).Str("tool", call.Name).Msg("Tool call failed")
		return nil, map[string]any{"code": -32000, "message": err.Error()}
	}

	return map[string]any{
		"content": []any{
			map[string]any{
				"type": "text",
				"text": formatResult(data),
			},
		},
	}, nil
}

