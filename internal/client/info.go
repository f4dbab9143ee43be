package client

import "context"

// CGI endpoints of the WebView family.
const (
	InfoCGI    = "info.cgi"
	ControlCGI = "control.cgi"
	StandbyCGI = "standby.cgi"
)

// GetInfo fetches the flat key=value status dump.
func (c *WebViewClient) GetInfo(ctx context.Context) Result {
	return c.Send(ctx, InfoCGI)
}
