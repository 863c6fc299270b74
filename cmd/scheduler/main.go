package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/content-optimizer/internal/app"
	"github.com/content-optimizer/internal/config"
	"github.com/content-optimizer/internal/dashboard"
	"github.com/content-optimizer/internal/stage"
	"github.com/content-optimizer/pkg/logger"
)

var (
	cfgFile string
	noServe bool
	cfg     *config.Config
	log     *logger.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "content-optimizer-scheduler",
		Short: "Background scheduler for the content pipeline",
		Long: `Runs topic collection and the optimization pipeline on cron schedules
and serves the dashboard (health, metrics, stage runs) while running.`,
		RunE:         runScheduler,
		SilenceUsage: true,
	}

	rootCmd.Flags().StringVar(&cfgFile, "config", "", "config file path")
	rootCmd.Flags().BoolVar(&noServe, "no-serve", false, "do not serve the dashboard")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runScheduler(cmd *cobra.Command, args []string) error {
	var err error

	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.ValidateScheduler(); err != nil {
		return err
	}

	log = app.NewLogger(cfg.Logging)
	log.Info().Msg("Starting content optimizer scheduler")

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.InitTabs(ctx); err != nil {
		return err
	}

	c := cron.New(cron.WithLogger(cronLogger{log}), cron.WithChain(cron.SkipIfStillRunning(cronLogger{log})))

	jobs := []struct {
		name   string
		spec   string
		stages []string
	}{
		{"collect", cfg.Scheduler.CollectCron, app.CollectStages},
		{"pipeline", cfg.Scheduler.PipelineCron, app.PipelineStages},
	}
	for _, job := range jobs {
		job := job
		if _, err := c.AddFunc(job.spec, func() { runJob(ctx, a.Registry, job.name, job.stages) }); err != nil {
			return fmt.Errorf("failed to schedule %s job: %w", job.name, err)
		}
		log.Info().Str("job", job.name).Str("cron", job.spec).Strs("stages", job.stages).Msg("Job scheduled")
	}

	c.Start()
	log.Info().Msg("Scheduler started")

	if noServe {
		<-ctx.Done()
	} else {
		srv := dashboard.New(dashboard.Options{
			Runner:    a.Registry,
			Generator: a.Generator,
			Store:     a.Store,
			Tabs:      a.TabNames(),
			Mode:      cfg.Dashboard.Mode,
		}, log)
		if err := srv.ListenAndServe(ctx, cfg.Dashboard.Addr); err != nil {
			log.Error().Err(err).Msg("Dashboard stopped")
		}
		<-ctx.Done()
	}

	log.Info().Msg("Shutting down scheduler")
	<-c.Stop().Done()

	return nil
}

func runJob(ctx context.Context, registry *stage.Registry, name string, stages []string) {
	log.Info().Str("job", name).Msg("Running scheduled job")

	results, err := registry.RunSequence(ctx, stages...)
	if err != nil {
		log.Error().Err(err).Str("job", name).Msg("Scheduled job failed")
		return
	}

	written := 0
	for _, res := range results {
		written += res.RowsWritten
	}
	log.Info().
		Str("job", name).
		Int("stages", len(results)).
		Int("rows_written", written).
		Msg("Scheduled job completed")
}

// cronLogger adapts our logger for cron
type cronLogger struct {
	log *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
