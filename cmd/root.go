package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"webview-cli/internal/config"
	"webview-cli/internal/session"
)

var cfgFile string
var jsonOutput bool

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "webview-cli",
	Short: "A CLI for controlling Canon WebView HTTP cameras",
	Long: `Query and control legacy Canon VB-series cameras through the WebView
CGI interface (info.cgi, control.cgi, standby.cgi), or run a long-lived
session that exposes a control API and Prometheus metrics.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(func() { config.InitConfig(cfgFile) })

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.webview-cli.yaml)")
	pf.BoolVar(&jsonOutput, "json", false, "Output results as JSON")

	pf.String("host", "", "Camera address (host or http://host:port)")
	pf.Int("http-port", 80, "Camera HTTP port")
	pf.String("username", "", "Camera username")
	pf.String("password", "", "Camera password")
	pf.String("model", "", "Camera model (see 'webview-cli models')")
	pf.Int("http-timeout", 5000, "Request timeout in milliseconds")
	pf.BoolP("verbose", "v", false, "Enable debug logging")

	for key, flag := range map[string]string{
		"host":         "host",
		"http_port":    "http-port",
		"username":     "username",
		"password":     "password",
		"model":        "model",
		"http_timeout": "http-timeout",
		"verbose":      "verbose",
	} {
		_ = viper.BindPFlag(key, pf.Lookup(flag))
	}
}

// newLogger builds the console logger; verbose lowers the level to debug.
func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).
		With().Timestamp().Logger()
}

// mustSettings loads the configuration or exits.
func mustSettings() config.Settings {
	s, err := config.Load()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		fmt.Println("Run 'webview-cli configure' or pass --host.")
		os.Exit(1)
	}
	return s
}

// openSession builds a one-shot session without periodic polling.
func openSession() (*session.Session, zerolog.Logger) {
	s := mustSettings()
	s.PollMS = 0
	log := newLogger(s.Verbose)
	return session.New(s, session.Options{Logger: log}), log
}

func commandContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

// issue runs one session command and exits on failure. When prime is set
// the session polls first so commands that read the snapshot see it.
func issue(name string, opts map[string]string, prime bool) {
	sess, log := openSession()
	defer sess.Close()

	ctx, cancel := commandContext()
	defer cancel()

	if prime {
		if err := sess.Poll(ctx); err != nil {
			log.Error().Err(err).Msg("poll failed")
			os.Exit(1)
		}
	}
	if err := sess.IssueCommand(ctx, name, opts); err != nil {
		os.Exit(1)
	}
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Printf("Error encoding JSON: %v\n", err)
		os.Exit(1)
	}
}
