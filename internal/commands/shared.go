package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	xansi "github.com/charmbracelet/x/ansi"

	"github.com/directmsg/dmc/internal/chat"
	"github.com/directmsg/dmc/internal/client"
	"github.com/directmsg/dmc/internal/config"
	"github.com/directmsg/dmc/internal/logging"
	"github.com/directmsg/dmc/internal/render"
)

// maxErrorBody bounds how much of a server error page is echoed back.
const maxErrorBody = 200

// loadConfig loads, overlays and validates the configuration. With no file
// present, DMC_URL alone is enough to run.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		if strings.TrimSpace(os.Getenv("DMC_URL")) == "" {
			return nil, fmt.Errorf("no %s found - run 'dmc init' first", config.FileName)
		}
		cfg = &config.Config{}
	}
	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s config: %w", config.FileName, err)
	}
	return cfg, nil
}

// newLogger is the stderr logger used by the one-shot commands. It stays
// quiet below warnings unless --verbose or log_level asks otherwise.
func newLogger(cfg *config.Config) logging.Logger {
	level := logging.Warn
	if cfg.LogLevel != "" {
		level = logging.ParseLevel(cfg.LogLevel)
	}
	if verbose {
		level = logging.Debug
	}
	return logging.New(os.Stderr, level)
}

func newClient(cfg *config.Config, log logging.Logger) (*client.Client, error) {
	opts := []client.Option{
		client.WithAPIPrefix(cfg.APIPrefixOrDefault()),
		client.WithCSRFCookieName(cfg.CSRFCookieNameOrDefault()),
		client.WithCSRFHeader(cfg.CSRFHeaderOrDefault()),
		client.WithTimeout(cfg.RequestTimeoutDuration()),
		client.WithLogger(log),
	}
	if cfg.SessionCookie != "" {
		opts = append(opts, client.WithSessionCookie(cfg.SessionCookieNameOrDefault(), cfg.SessionCookie))
	}
	c, err := client.New(cfg.BaseURL(), opts...)
	if err != nil {
		return nil, fmt.Errorf("creating client: %w", err)
	}
	return c, nil
}

// session is a configured client plus the identity learned at startup.
type session struct {
	cfg    *config.Config
	client *client.Client
	me     string
	log    logging.Logger
}

// openSession creates the client. With bootstrap set it loads the
// application page first, which primes the CSRF cookie that mutating
// requests need and names the signed-in user.
func openSession(ctx context.Context, cfg *config.Config, log logging.Logger, bootstrap bool) (*session, error) {
	c, err := newClient(cfg, log)
	if err != nil {
		return nil, err
	}
	s := &session{cfg: cfg, client: c, me: cfg.Me, log: log}
	if !bootstrap {
		return s, nil
	}

	page, err := c.Bootstrap(ctx, cfg.PagePathOrDefault())
	if err != nil {
		return nil, describeAPIError(fmt.Errorf("loading %s: %w", cfg.PagePathOrDefault(), err))
	}
	if page.Me != "" {
		s.me = page.Me
	}
	if page.CSRFToken == "" {
		log.Warn("page set no CSRF cookie", logging.F("cookie", cfg.CSRFCookieNameOrDefault()))
	}
	return s, nil
}

func (s *session) controller(sink chat.Sink) *chat.Controller {
	return chat.New(s.client, sink, chat.Options{
		Me:             s.me,
		PollInterval:   s.cfg.PollIntervalDuration(),
		SearchDelay:    s.cfg.SearchDelayDuration(),
		MinQueryLength: s.cfg.MinQueryLengthOrDefault(),
		Logger:         s.log,
	})
}

// describeAPIError turns a server rejection into a short user-facing error.
// Other errors pass through unchanged.
func describeAPIError(err error) error {
	var clientErr *client.Error
	if !errors.As(err, &clientErr) {
		return err
	}
	body := xansi.Truncate(render.SingleLine(strings.TrimSpace(clientErr.Body)), maxErrorBody, "...")
	if body == "" {
		body = http.StatusText(clientErr.StatusCode)
	}
	switch clientErr.StatusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("server error (%d): %s - session expired? run 'dmc init'", clientErr.StatusCode, body)
	case http.StatusForbidden:
		if clientErr.Method != http.MethodGet {
			return fmt.Errorf("server error (%d): %s - check csrf_cookie_name and csrf_header", clientErr.StatusCode, body)
		}
	}
	return fmt.Errorf("server error (%d): %s", clientErr.StatusCode, body)
}

func parseConversationID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(strings.TrimSpace(raw), "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid conversation id %q", raw)
	}
	return id, nil
}

// conversationName finds a conversation's display name in the list, empty
// when it is not there.
func conversationName(rows []chat.ConversationRow, id int64) string {
	for _, row := range rows {
		if row.ID == id {
			return row.Name
		}
	}
	return ""
}
