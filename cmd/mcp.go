/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"context"
	"fmt"
	"os"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	mcppresenter "github.com/josephgoksu/smarttask/internal/mcp"
	"github.com/josephgoksu/smarttask/internal/session"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server for AI tool integration",
	Long: `Start a Model Context Protocol (MCP) server so AI assistants can validate,
rank and fetch suggestions for task batches.

Tools:
  validate_tasks   validate a JSON or YAML batch
  analyze_tasks    validate a batch and rank it with the analysis service
  suggest_tasks    fetch the service's suggestions

The server speaks JSON-RPC over stdio and runs until the client disconnects.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMCPServer(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

// mcpMarkdownResponse wraps Markdown content in an MCP tool result.
func mcpMarkdownResponse(markdown string) (*mcpsdk.CallToolResultFor[any], error) {
	return &mcpsdk.CallToolResultFor[any]{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: markdown}},
	}, nil
}

// mcpFormattedErrorResponse wraps pre-formatted error text with IsError=true.
// Tool errors go in the result so the model can see them and retry.
func mcpFormattedErrorResponse(formattedError string) (*mcpsdk.CallToolResultFor[any], error) {
	return &mcpsdk.CallToolResultFor[any]{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: formattedError}},
		IsError: true,
	}, nil
}

func mcpResult(content, errMsg string) (*mcpsdk.CallToolResultFor[any], error) {
	if errMsg != "" {
		return mcpFormattedErrorResponse(content)
	}
	return mcpMarkdownResponse(content)
}

// newMCPDeps wires the tool handlers to the configured service and policies.
func newMCPDeps() (mcppresenter.Deps, func(), error) {
	rec := newRecorder()
	deps := mcppresenter.Deps{
		Analyzer: newAnalyzer(),
		Listener: rec.Listener(),
	}
	engine, err := newPolicyEngine()
	if err != nil {
		_ = rec.Close()
		return deps, nil, err
	}
	if engine.PolicyCount() > 0 {
		deps.Gate = session.Gate(engine.Check)
	}
	return deps, func() { _ = rec.Close() }, nil
}

func newMCPServer(deps mcppresenter.Deps) *mcpsdk.Server {
	impl := &mcpsdk.Implementation{
		Name:    "smarttask-mcp",
		Version: version,
	}
	serverOpts := &mcpsdk.ServerOptions{
		InitializedHandler: func(ctx context.Context, session *mcpsdk.ServerSession, params *mcpsdk.InitializedParams) {
			fmt.Fprintf(os.Stderr, "✓ MCP connection established\n")
			if viper.GetBool("verbose") {
				fmt.Fprintf(os.Stderr, "[DEBUG] Client initialized\n")
			}
		},
	}
	server := mcpsdk.NewServer(impl, serverOpts)

	validateTool := &mcpsdk.Tool{
		Name:        "validate_tasks",
		Description: `Validate a task batch without ranking it. {"batch":"[{\"title\":\"Write report\",\"due_date\":\"2025-03-01\",\"estimated_hours\":2,\"importance\":8,\"dependencies\":[]}]","format":"json"}. Each task needs a non-empty title, due_date as YYYY-MM-DD, estimated_hours > 0 and importance 1-10.`,
	}
	mcpsdk.AddTool(server, validateTool, func(ctx context.Context, session *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[mcppresenter.BatchParams]) (*mcpsdk.CallToolResultFor[any], error) {
		result, err := mcppresenter.HandleValidate(ctx, deps, params.Arguments)
		if err != nil {
			return mcpFormattedErrorResponse(mcppresenter.FormatError(err.Error()))
		}
		return mcpResult(result.Content, result.Error)
	})

	analyzeTool := &mcpsdk.Tool{
		Name:        "analyze_tasks",
		Description: "Validate a task batch and rank it with the analysis service. Same batch format as validate_tasks. Optional strategy: smart_balance (default), fastest_wins, high_impact, deadline_driven.",
	}
	mcpsdk.AddTool(server, analyzeTool, func(ctx context.Context, session *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[mcppresenter.AnalyzeParams]) (*mcpsdk.CallToolResultFor[any], error) {
		result, err := mcppresenter.HandleAnalyze(ctx, deps, params.Arguments)
		if err != nil {
			return mcpFormattedErrorResponse(mcppresenter.FormatError(err.Error()))
		}
		return mcpResult(result.Content, result.Error)
	})

	suggestTool := &mcpsdk.Tool{
		Name:        "suggest_tasks",
		Description: "Fetch the tasks the analysis service recommends working on next, with a reason for each.",
	}
	mcpsdk.AddTool(server, suggestTool, func(ctx context.Context, session *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[mcppresenter.SuggestParams]) (*mcpsdk.CallToolResultFor[any], error) {
		result, err := mcppresenter.HandleSuggest(ctx, deps)
		if err != nil {
			return mcpFormattedErrorResponse(mcppresenter.FormatError(err.Error()))
		}
		return mcpResult(result.Content, result.Error)
	})

	return server
}

func runMCPServer(ctx context.Context) error {
	// stdout carries JSON-RPC; status goes to stderr.
	fmt.Fprintln(os.Stderr, "smarttask MCP server starting...")

	deps, closeDeps, err := newMCPDeps()
	if err != nil {
		return fmt.Errorf("failed to load policies: %w", err)
	}
	defer closeDeps()

	server := newMCPServer(deps)
	if err := server.Run(ctx, mcpsdk.NewStdioTransport()); err != nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	return nil
}
