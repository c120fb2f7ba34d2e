package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/directmsg/dmc/internal/config"
)

var healthJSON bool

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the server and your session",
	Long: `Check that the server answers its health endpoint and that the
configured session is accepted.

Examples:
  dmc health
  dmc health --json`,
	Args: cobra.NoArgs,
	RunE: runHealth,
}

func init() {
	healthCmd.Flags().BoolVar(&healthJSON, "json", false, "Output as JSON")
}

// HealthResult contains the result of the health command.
type HealthResult struct {
	Server       string `json:"server"`
	ServerOK     bool   `json:"server_ok"`
	SessionOK    bool   `json:"session_ok"`
	Me           string `json:"me,omitempty"`
	SessionError string `json:"session_error,omitempty"`
}

func runHealth(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	result, err := checkHealthWithConfig(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	fmt.Fprint(color.Output, formatHealthOutput(result, healthJSON))
	if !result.SessionOK {
		return fmt.Errorf("session rejected")
	}
	return nil
}

// checkHealthWithConfig probes the server, then the session (for testing).
// Only an unreachable or unhealthy server is an error.
func checkHealthWithConfig(ctx context.Context, cfg *config.Config) (*HealthResult, error) {
	s, err := openSession(ctx, cfg, newLogger(cfg), false)
	if err != nil {
		return nil, err
	}
	result := &HealthResult{Server: cfg.BaseURL()}

	resp, err := s.client.Health(ctx)
	if err != nil {
		return nil, describeAPIError(fmt.Errorf("checking server health: %w", err))
	}
	if !resp.OK {
		return nil, fmt.Errorf("server %s reports unhealthy", cfg.BaseURL())
	}
	result.ServerOK = true

	if _, err := s.client.ListConversations(ctx); err != nil {
		result.SessionError = describeAPIError(err).Error()
		return result, nil
	}
	result.SessionOK = true

	if page, err := s.client.Bootstrap(ctx, cfg.PagePathOrDefault()); err == nil {
		result.Me = page.Me
	}
	if result.Me == "" {
		result.Me = cfg.Me
	}
	return result, nil
}

func formatHealthOutput(result *HealthResult, jsonMode bool) string {
	if jsonMode {
		return renderJSON(result)
	}

	ok := color.New(color.FgGreen).Sprint("ok")
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Server:  %s (%s)\n", result.Server, ok))
	if result.SessionOK {
		who := ""
		if result.Me != "" {
			who = " as " + color.New(color.Bold).Sprint(result.Me)
		}
		sb.WriteString(fmt.Sprintf("Session: %s%s\n", ok, who))
	} else {
		sb.WriteString(fmt.Sprintf("Session: %s\n", color.New(color.FgRed).Sprint(result.SessionError)))
	}
	return sb.String()
}
