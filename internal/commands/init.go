package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/directmsg/dmc/internal/config"
)

// CLI flags for init command
var (
	initURL      string
	initSession  string
	initMe       string
	initForce    bool
	initNoVerify bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the dmc configuration file",
	Long: `Create .dmc.yaml with the server URL and your session cookie.

Configuration sources (in priority order):
1. Command line flags (--url, --session, --me)
2. Environment variables (DMC_URL, DMC_SESSION, DMC_ME)
3. .env file in current directory
4. Interactive prompts (TTY mode only; the session is read without echo)

The session cookie is the value of the server's session cookie after you
log in with a browser. The file is written with owner-only permissions;
do not commit it.

Unless --no-verify is given, the server and session are checked before
anything is written.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInit(cmd.Context())
	},
}

func init() {
	initCmd.Flags().StringVar(&initURL, "url", "", "Server URL (e.g., https://chat.example.com)")
	initCmd.Flags().StringVar(&initSession, "session", "", "Session cookie value")
	initCmd.Flags().StringVar(&initMe, "me", "", "Your username, if the server page does not show it")
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config file")
	initCmd.Flags().BoolVar(&initNoVerify, "no-verify", false, "Write the file without contacting the server")
}

// isTTY returns true if stdin is a terminal.
func isTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// firstNonEmpty returns the first non-blank value, trimmed.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func runInit(ctx context.Context) error {
	path := config.GetPath()
	if _, err := os.Stat(path); err == nil && !initForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	tty := isTTY()
	reader := bufio.NewReader(os.Stdin)

	cfg := &config.Config{
		ServerURL:     firstNonEmpty(initURL, os.Getenv("DMC_URL")),
		SessionCookie: firstNonEmpty(initSession, os.Getenv("DMC_SESSION")),
		Me:            firstNonEmpty(initMe, os.Getenv("DMC_ME")),
	}

	if cfg.ServerURL == "" {
		if !tty {
			return fmt.Errorf("server URL required: use --url or DMC_URL")
		}
		var err error
		cfg.ServerURL, err = promptLine(reader, os.Stdout, "Server URL", "")
		if err != nil {
			return err
		}
	}
	if cfg.SessionCookie == "" && tty {
		var err error
		cfg.SessionCookie, err = promptSecret(os.Stdout, "Session cookie")
		if err != nil {
			return err
		}
	}
	if cfg.SessionCookie == "" {
		return fmt.Errorf("session cookie required: use --session or DMC_SESSION")
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if !initNoVerify {
		result, err := checkHealthWithConfig(ctx, cfg)
		if err != nil {
			return err
		}
		if !result.SessionOK {
			return fmt.Errorf("session rejected: %s", result.SessionError)
		}
		if cfg.Me == "" && result.Me == "" && tty {
			me, err := promptLine(reader, os.Stdout, "Your username (optional)", "")
			if err != nil {
				return err
			}
			cfg.Me = me
		}
		if result.Me != "" {
			fmt.Printf("Signed in as %s\n", result.Me)
		}
	}

	if err := cfg.Save(); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", path)
	fmt.Println("Run 'dmc' to open the client, or 'dmc conversations' to list conversations.")
	return nil
}

// promptLine asks for one line of input, returning def on an empty answer.
func promptLine(reader *bufio.Reader, out io.Writer, label, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(out, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(out, "%s: ", label)
	}
	input, err := reader.ReadString('\n')
	if err != nil && !(err == io.EOF && input != "") {
		return "", err
	}
	input = strings.TrimSpace(input)
	if input == "" {
		return def, nil
	}
	return input, nil
}

// promptSecret reads a value from the terminal without echoing it.
func promptSecret(out io.Writer, label string) (string, error) {
	fmt.Fprintf(out, "%s: ", label)
	data, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimSpace(string(data)), nil
}
