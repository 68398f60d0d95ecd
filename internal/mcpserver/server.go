// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the dashboard operations for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/ncdash/internal/dashboard"
	"github.com/starford/ncdash/internal/models"
)

const plotKeysURI = "ncdash://plot-keys"

// Server wraps the MCP server with dashboard tools.
type Server struct {
	mcp *server.MCPServer
	svc *dashboard.Service
}

// New creates a new MCP server with all dashboard tools registered.
func New(svc *dashboard.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"ncdash",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_datasets",
		mcp.WithDescription("Fetch the datasets known to the backend."),
	), s.listDatasets)

	s.mcp.AddTool(mcp.NewTool("dataset_info",
		mcp.WithDescription("Load the dimensions and variables of a dataset. "+
			"Every variable starts unchecked."),
		mcp.WithString("dataset_id", mcp.Required(), mcp.Description("Dataset id from list_datasets")),
	), s.datasetInfo)

	s.mcp.AddTool(mcp.NewTool("generate_plot",
		mcp.WithDescription("Render one image of a variable and return it. "+
			"Read the ncdash://plot-keys resource for the key scheme."),
		mcp.WithString("dataset", mcp.Required(), mcp.Description("Dataset id")),
		mcp.WithString("variable", mcp.Required(), mcp.Description("Variable name")),
		mcp.WithString("dimension", mcp.Description("4d (default), 3d or 1d"),
			mcp.Enum(string(models.Dim4D), string(models.Dim3D), string(models.Dim1D))),
		mcp.WithNumber("depth_index", mcp.Description("Depth index (4d only)")),
		mcp.WithNumber("time_index", mcp.Description("Time index")),
	), s.generatePlot)

	s.mcp.AddTool(mcp.NewTool("generate_transect",
		mcp.WithDescription("Render a vertical section of a variable between two points."),
		mcp.WithString("dataset", mcp.Required(), mcp.Description("Dataset id")),
		mcp.WithString("variable", mcp.Required(), mcp.Description("Variable name")),
		mcp.WithNumber("start_lat", mcp.Required()),
		mcp.WithNumber("start_lon", mcp.Required()),
		mcp.WithNumber("end_lat", mcp.Required()),
		mcp.WithNumber("end_lon", mcp.Required()),
		mcp.WithNumber("depth_index", mcp.Description("Depth index")),
		mcp.WithNumber("time_index", mcp.Description("Time index")),
		mcp.WithBoolean("invert_y_axis", mcp.Description("Flip the depth axis")),
	), s.generateTransect)

	s.mcp.AddTool(mcp.NewTool("list_sessions",
		mcp.WithDescription("List the backend sessions."),
	), s.listSessions)

	s.mcp.AddTool(mcp.NewTool("create_session",
		mcp.WithDescription("Create a session on a dataset and make it active."),
		mcp.WithString("dataset_id", mcp.Required(), mcp.Description("Dataset id")),
		mcp.WithString("parent_id", mcp.Description("Optional parent session id")),
	), s.createSession)

	s.mcp.AddTool(mcp.NewTool("search_images",
		mcp.WithDescription("Search previously generated images by dataset, variable or key."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Substring to match")),
		mcp.WithNumber("limit", mcp.Description("Max results (default 20)")),
	), s.searchImages)

	s.mcp.AddTool(mcp.NewTool("get_plot_keys",
		mcp.WithDescription("Returns the image key scheme and the backend error codes."),
	), s.getPlotKeys)

	s.mcp.AddResource(
		mcp.NewResource(plotKeysURI, "Plot Keys",
			mcp.WithResourceDescription("Image key scheme and backend error codes."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readPlotKeysResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}

func (s *Server) listDatasets(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list, err := s.svc.FetchDataSets(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(list), nil
}

func (s *Server) datasetInfo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("dataset_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	info, err := s.svc.FetchDatasetInfo(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(info), nil
}

func (s *Server) generatePlot(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dataset, err := req.RequireString("dataset")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	variable, err := req.RequireString("variable")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if _, err := s.svc.EnsureInfo(ctx, dataset); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res, err := s.svc.GeneratePlot(ctx, dashboard.PlotParams{
		Dataset:    dataset,
		Variable:   variable,
		Dimension:  models.Dimension(req.GetString("dimension", "")),
		DepthIndex: req.GetInt("depth_index", 0),
		TimeIndex:  req.GetInt("time_index", 0),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.imageResult(res)
}

func (s *Server) generateTransect(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dataset, err := req.RequireString("dataset")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	variable, err := req.RequireString("variable")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var coords [4]float64
	for i, key := range []string{"start_lat", "start_lon", "end_lat", "end_lon"} {
		if coords[i], err = req.RequireFloat(key); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	res, err := s.svc.GenerateTransect(ctx, dashboard.TransectParams{
		Dataset:     dataset,
		Variable:    variable,
		Points:      [][2]float64{{coords[0], coords[1]}, {coords[2], coords[3]}},
		DepthIndex:  req.GetInt("depth_index", 0),
		TimeIndex:   req.GetInt("time_index", 0),
		InvertYAxis: req.GetBool("invert_y_axis", false),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.imageResult(res)
}

// imageResult returns the image bytes behind res with its reference as text.
func (s *Server) imageResult(res *dashboard.PlotResult) (*mcp.CallToolResult, error) {
	data, err := s.svc.ImageBytes(res.Ref)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	text := fmt.Sprintf("key: %s\nref: %s\ncached: %t", res.Key, res.Ref, res.Cached)
	return mcp.NewToolResultImage(text, base64.StdEncoding.EncodeToString(data), http.DetectContentType(data)), nil
}

func (s *Server) listSessions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list, err := s.svc.ListSessions(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(list), nil
}

func (s *Server) createSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("dataset_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sess, err := s.svc.CreateSession(ctx, id, req.GetString("parent_id", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(sess), nil
}

func (s *Server) searchImages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	recs, err := s.svc.SearchImages(q, req.GetInt("limit", 0))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(recs), nil
}

func (s *Server) getPlotKeys(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(PlotKeysContract), nil
}

func (s *Server) readPlotKeysResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      plotKeysURI,
			MIMEType: "text/markdown",
			Text:     PlotKeysContract,
		},
	}, nil
}
