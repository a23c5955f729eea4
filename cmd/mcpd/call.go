package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/mcp-dispatch/client"
)

func newCallCmd() *cobra.Command {
	var (
		timeout time.Duration
		session string
	)

	cmd := &cobra.Command{
		Use:   "call <url> <tool> [json-args]",
		Short: "Invoke a tool on a remote MCP server",
		Example: `  mcpd call http://localhost:8080/mcp/demo echo '{"message":"hi"}'
  mcpd call http://localhost:8080/mcp/demo echo '{"message":"hi","repeat":3}'`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			url, tool := args[0], args[1]

			toolArgs := map[string]any{}
			if len(args) > 2 {
				if err := json.Unmarshal([]byte(args[2]), &toolArgs); err != nil {
					return fmt.Errorf("invalid JSON arguments: %w", err)
				}
			}

			var opts []client.HTTPOption
			if session != "" {
				opts = append(opts, client.WithSession(session))
			}
			c := client.New(client.NewHTTPTransport(url, opts...),
				client.WithTimeout(timeout),
				client.WithClientInfo("mcpd", Version),
			)
			if session == "" {
				defer func() { _ = c.Close() }()
			}

			ctx := cmd.Context()
			if _, err := c.Initialize(ctx); err != nil {
				return fmt.Errorf("initialize: %w", err)
			}
			res, err := c.CallTool(ctx, tool, toolArgs)
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(res, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			if res.IsError {
				return fmt.Errorf("tool %q reported an error", tool)
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Request timeout")
	cmd.Flags().StringVar(&session, "session", "", "Reuse an existing session id")
	return cmd
}
