package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"webview-cli/internal/auth"
	"webview-cli/internal/fault"
)

// WebViewBasePath is where bare CGI names (info.cgi, control.cgi) live.
const WebViewBasePath = "/-wvhttp-01-/"

// DefaultTimeout applies when ClientConfig.Timeout is zero.
const DefaultTimeout = 5 * time.Second

type WebViewClient struct {
	HTTP   *resty.Client
	Config ClientConfig

	digest *auth.Digest
	log    zerolog.Logger
}

type ClientConfig struct {
	// Host is an address or a full root URL such as http://10.0.0.5:8080.
	Host     string
	Port     int
	Username string
	Password string
	Timeout  time.Duration
}

// Status tags the outcome of a request.
type Status string

const (
	StatusOK     Status = "ok"
	StatusFailed Status = "failed"
)

// Result is the outcome of Send. Err is nil when Status is ok.
type Result struct {
	Status     Status `json:"status"`
	Body       string `json:"body,omitempty"`
	StatusCode int    `json:"statusCode,omitempty"`
	Err        error  `json:"-"`
}

// OK reports whether the request succeeded.
func (r Result) OK() bool { return r.Status == StatusOK }

func failed(code int, err error) Result {
	return Result{Status: StatusFailed, StatusCode: code, Err: err}
}

func New(cfg ClientConfig, log zerolog.Logger) *WebViewClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	r := resty.New()
	r.SetTimeout(cfg.Timeout)
	r.SetHeader("Accept", "text/plain, */*")
	r.SetLogger(restyLogger{log})
	// Legacy cameras only speak plain HTTP; resty would warn on every Basic request.
	r.SetDisableWarn(true)

	return &WebViewClient{
		HTTP:   r,
		Config: cfg,
		digest: auth.NewDigest(cfg.Username, cfg.Password),
		log:    log,
	}
}

// Root returns scheme://host:port without a trailing slash.
func (c *WebViewClient) Root() string {
	host := strings.TrimRight(c.Config.Host, "/")
	if strings.Contains(host, "://") {
		return host
	}
	if c.Config.Port > 0 && c.Config.Port != 80 {
		return fmt.Sprintf("http://%s:%d", host, c.Config.Port)
	}
	return "http://" + host
}

// Resolve turns a command into a request URL. Absolute URLs pass through,
// absolute paths resolve against the device root and anything else against
// the WebView base path.
func (c *WebViewClient) Resolve(command string) string {
	switch {
	case strings.HasPrefix(command, "http://"), strings.HasPrefix(command, "https://"):
		return command
	case strings.HasPrefix(command, "/"):
		return c.Root() + command
	default:
		return c.Root() + WebViewBasePath + command
	}
}

// Send issues a GET for command and returns the body verbatim. A 401 carrying
// a Digest challenge is answered once; every other outcome is returned as is.
func (c *WebViewClient) Send(ctx context.Context, command string) Result {
	target := c.Resolve(command)

	req := c.HTTP.R().SetContext(ctx)
	if c.Config.Username != "" {
		req.SetBasicAuth(c.Config.Username, c.Config.Password)
	}

	resp, err := req.Get(target)
	if err != nil {
		return failed(0, fault.New(fault.KindTransport, "GET "+command, err))
	}

	if resp.StatusCode() == http.StatusUnauthorized {
		if ch, ok := digestChallenge(resp.Header()); ok {
			return c.retryDigest(ctx, command, target, ch)
		}
	}

	return toResult(command, resp)
}

func (c *WebViewClient) retryDigest(ctx context.Context, command, target string, ch auth.Challenge) Result {
	u, err := url.Parse(target)
	if err != nil {
		return failed(http.StatusUnauthorized, fault.New(fault.KindAuth, "GET "+command, err))
	}

	header, err := c.digest.Authorize(ch, http.MethodGet, u.RequestURI())
	if err != nil {
		return failed(http.StatusUnauthorized, fault.New(fault.KindAuth, "GET "+command, err))
	}

	c.log.Debug().Str("cmd", command).Str("realm", ch.Realm).Msg("answering digest challenge")

	resp, err := c.HTTP.R().
		SetContext(ctx).
		SetHeader("Authorization", header).
		Get(target)
	if err != nil {
		return failed(0, fault.New(fault.KindTransport, "GET "+command+" (digest)", err))
	}
	return toResult(command, resp)
}

func digestChallenge(h http.Header) (auth.Challenge, bool) {
	for _, v := range h.Values("WWW-Authenticate") {
		if ch, ok := auth.ParseChallenge(v); ok {
			return ch, true
		}
	}
	return auth.Challenge{}, false
}

func toResult(command string, resp *resty.Response) Result {
	if resp.IsError() {
		res := failed(resp.StatusCode(), fault.Newf(fault.KindTransport, "GET "+command, "status %d", resp.StatusCode()))
		res.Body = resp.String()
		return res
	}
	return Result{Status: StatusOK, Body: resp.String(), StatusCode: resp.StatusCode()}
}

// restyLogger routes resty's internal messages through zerolog.
type restyLogger struct{ l zerolog.Logger }

func (r restyLogger) Errorf(format string, v ...interface{}) { r.l.Error().Msgf(format, v...) }
func (r restyLogger) Warnf(format string, v ...interface{})  { r.l.Warn().Msgf(format, v...) }
func (r restyLogger) Debugf(format string, v ...interface{}) { r.l.Debug().Msgf(format, v...) }
