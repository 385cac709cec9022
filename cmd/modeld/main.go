package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"modeld/internal/accounting"
	"modeld/internal/adminctl"
	"modeld/internal/config"
	"modeld/internal/httpapi"
	"modeld/internal/logstream"
	"modeld/internal/manager"
	"modeld/internal/process"
	"modeld/internal/registry"
)

func main() {
	root := buildRootCmd()
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// buildRootCmd roots the binary's command tree on Cobra: a serve subcommand
// running the fleet gateway (also the root's default action, for drop-in
// compatibility with a bare `modeld` invocation) plus the operator
// subcommands from adminctl for one-shot pricing edits and catalogue checks.
func buildRootCmd() *cobra.Command {
	var settingsPath, corsOrigins string

	serveRun := func(cmd *cobra.Command, args []string) error {
		return runServe(settingsPath, corsOrigins)
	}

	root := &cobra.Command{
		Use:           "modeld",
		Short:         "Local LLM fleet orchestrator and OpenAI-compatible gateway",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serveRun,
	}
	root.PersistentFlags().StringVar(&settingsPath, "settings", os.Getenv("MODELD_SETTINGS"), "path to settings TOML file")
	root.PersistentFlags().StringVar(&corsOrigins, "cors-origins", "", "comma-separated CORS allowed origins (overrides settings file)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the gateway server (default when no subcommand is given)",
		RunE:  serveRun,
	}
	root.AddCommand(serveCmd)

	adminCfg := adminctl.NewRootConfig("")
	root.PersistentFlags().StringVar(&adminCfg.APIBase, "api", adminCfg.APIBase, "base URL of a running modeld instance, for admin subcommands")
	root.AddCommand(adminctl.Commands(adminCfg)...)

	return root
}

// runServe wires every component and blocks serving HTTP until SIGINT/SIGTERM.
func runServe(settingsPath, corsOriginsFlag string) error {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	httpapi.SetLogger(log)

	settings, err := config.LoadSettings(settingsPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load settings")
	}

	devices := registry.NewDeviceRegistry(settings.DeviceTTL)
	if err := config.LoadDevices(settings.DevicesPath, devices); err != nil {
		log.Fatal().Err(err).Str("path", settings.DevicesPath).Msg("load devices")
	}

	cat, err := config.LoadCatalogue(settings.CataloguePath, devices)
	if err != nil {
		log.Fatal().Err(err).Str("path", settings.CataloguePath).Msg("load catalogue")
	}

	sanity := manager.SanityCheck(cat, devices)
	sanityLog := log.Info()
	if !sanity.OK() {
		sanityLog = log.Warn()
	}
	sanityLog.Strs("missing_binary", sanity.MissingBinary).Strs("offline_only", sanity.OfflineOnly).Msg(sanity.String())

	store, err := accounting.Open(settings.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Str("path", settings.DatabasePath).Msg("open accounting store")
	}
	defer store.Close()
	for _, m := range cat.Models {
		if err := store.EnsureModel(m.Name); err != nil {
			log.Fatal().Err(err).Str("model", m.Name).Msg("ensure model in accounting store")
		}
	}

	logs := logstream.New(logstream.Config{
		BufferCapacity:     settings.LogBufferCap,
		SubscriberQueueLen: settings.LogSubQueueDepth,
	})
	runner := process.NewRunner(func(model, text string) { logs.Append(model, text) })

	startedAt := time.Now()
	if err := store.RecordProgramStart(float64(startedAt.Unix())); err != nil {
		log.Warn().Err(err).Msg("record program start")
	}

	ctrl := manager.New(manager.Config{
		Catalogue:     cat,
		Devices:       devices,
		Runner:        runner,
		Logs:          logs,
		Publisher:     httpapi.MultiPublisher(eventPublisher{store: store, log: log}, httpapi.NewMetricsPublisher()),
		HealthTimeout: settings.HealthTimeout,
		DrainTimeout:  settings.DrainTimeout,
		IdleTimeout:   settings.IdleTimeout,
		SweepPeriod:   settings.IdleSweepPeriod,
	})
	ctrl.StartSweeper()
	defer ctrl.Close()

	if started := ctrl.RestartAutostart(context.Background()); len(started) > 0 {
		log.Info().Strs("models", started).Msg("auto-started models")
	}

	origins := settings.CORSOrigins
	if corsOriginsFlag != "" {
		origins = splitCSV(corsOriginsFlag)
	}
	httpapi.SetCORSOptions(settings.CORSEnabled, origins, []string{"GET", "POST", "DELETE"}, []string{"Content-Type", "X-Log-Level"})

	mux := httpapi.NewMux(httpapi.Deps{
		Controller: ctrl,
		Store:      store,
		Devices:    devices,
		Logs:       logs,
		StartedAt:  startedAt,
		DBPath:     settings.DatabasePath,
	})

	srv := &http.Server{Addr: settings.Addr, Handler: mux}
	baseCtx, cancelBase := context.WithCancel(context.Background())
	httpapi.SetBaseContext(baseCtx)

	go func() {
		log.Info().Str("addr", settings.Addr).Msg("modeld listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	cancelBase()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("graceful shutdown")
	}
	if err := store.TouchProgramRuntime(float64(time.Now().Unix())); err != nil {
		log.Warn().Err(err).Msg("record program end")
	}
	return nil
}

// eventPublisher fans a lifecycle event out to the runtime-interval table
// (start/stop bracket a runtime interval used by hourly billing) and to the
// structured logger, alongside the metrics publisher's Prometheus counter.
type eventPublisher struct {
	store *accounting.Store
	log   zerolog.Logger
}

func (p eventPublisher) Publish(e manager.Event) {
	p.log.Info().Str("event", e.Name).Str("model", e.ModelID).Interface("fields", e.Fields).Msg("lifecycle event")
	switch e.Name {
	case "start_ready":
		if err := p.store.StartRuntime(e.ModelID, float64(time.Now().Unix())); err != nil {
			p.log.Warn().Err(err).Str("model", e.ModelID).Msg("record runtime start")
		}
	case "stop_done", "drain_start", "idle_evict":
		if err := p.store.TouchRuntime(e.ModelID, float64(time.Now().Unix())); err != nil {
			p.log.Warn().Err(err).Str("model", e.ModelID).Msg("record runtime stop")
		}
	}
}

// splitCSV parses a comma-separated flag value, trimming whitespace and
// dropping empty entries.
func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
