package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kardianos/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"webview-cli/internal/config"
	"webview-cli/internal/metrics"
	"webview-cli/internal/session"
	"webview-cli/internal/state"
	"webview-cli/internal/surface"
)

var (
	serveListen   string
	servePoll     int
	serviceAction string // install, uninstall, start, stop
)

// --- SERVICE WRAPPER ---

// program implements the kardianos/service interface
type program struct {
	settings config.Settings
	log      zerolog.Logger

	cancel  context.CancelFunc
	sess    *session.Session
	server  *surface.Server
	stopped chan struct{}
}

func (p *program) Start(s service.Service) error {
	// Start should not block. Do the actual work async.
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.stopped = make(chan struct{})

	if !p.settings.Verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	pub := surface.NewPublisher(p.log)
	p.sess = session.New(p.settings, session.Options{Sink: pub, Logger: p.log})
	p.sess.OnChange(func(r state.Reconciliation) {
		p.log.Debug().Strs("promoted", r.Promoted).Msg("control surface rebuilt")
	})

	registry := prometheus.NewRegistry()
	registry.MustRegister(metrics.NewCollector(p.sess), collectors.NewGoCollector())
	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	p.server = surface.NewServer(p.sess, pub, handler, p.log)

	go p.run(ctx)
	return nil
}

func (p *program) run(ctx context.Context) {
	defer close(p.stopped)

	if err := p.sess.Start(ctx); err != nil {
		p.log.Error().Err(err).Msg("session start failed")
	}
	if err := p.server.ListenAndServe(p.settings.Listen); err != nil {
		p.log.Error().Err(err).Msg("HTTP server error")
	}
}

func (p *program) Stop(s service.Service) error {
	p.log.Info().Msg("stopping service")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := p.server.Shutdown(ctx); err != nil {
		p.log.Warn().Err(err).Msg("server forced to shutdown")
	}
	p.sess.Close()
	p.cancel()

	select {
	case <-p.stopped:
	case <-ctx.Done():
	}
	return nil
}

// --- COMMAND ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a polling session with a control API and Prometheus metrics",
	Long: `Starts a long-running session that polls the camera, exposes its state and
a command API under /api, and Prometheus metrics under /metrics.
Can be installed as a system service.`,
	Run: func(cmd *cobra.Command, args []string) {
		s := mustSettings()
		if cmd.Flags().Changed("listen") {
			s.Listen = serveListen
		}
		if cmd.Flags().Changed("poll-interval") {
			s.PollMS = servePoll
		}
		log := newLogger(s.Verbose)

		svcConfig := &service.Config{
			Name:        "webview-cli",
			DisplayName: "WebView Camera Control",
			Description: "Polls a Canon WebView camera and exposes a control API and metrics",
			Arguments:   []string{"serve", "--listen", s.Listen},
		}
		if f := viper.ConfigFileUsed(); f != "" {
			svcConfig.Arguments = append(svcConfig.Arguments, "--config", f)
		}

		prg := &program{settings: s, log: log}
		svc, err := service.New(prg, svcConfig)
		if err != nil {
			log.Fatal().Err(err).Msg("service setup failed")
		}

		// Handle Service Control Actions (Install, Start, Stop, Uninstall)
		if serviceAction != "" {
			if serviceAction == "install" && viper.ConfigFileUsed() == "" {
				fmt.Println("Error: run 'webview-cli configure' first so the service has a config file to read.")
				os.Exit(1)
			}
			if err := service.Control(svc, serviceAction); err != nil {
				log.Fatal().Err(err).Msgf("failed to %s service", serviceAction)
			}
			fmt.Printf("Service action '%s' completed successfully.\n", serviceAction)
			return
		}

		// Runs until the service manager or an interrupt stops it.
		if err := svc.Run(); err != nil {
			log.Error().Err(err).Msg("service exited")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveListen, "listen", ":9110", "Address for the control API and metrics")
	serveCmd.Flags().IntVar(&servePoll, "poll-interval", 2000, "Poll interval in milliseconds (0 disables polling)")
	serveCmd.Flags().StringVar(&serviceAction, "service", "", "Service action: install, uninstall, start, stop")
}
