package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/content-optimizer/internal/app"
	"github.com/content-optimizer/internal/config"
	"github.com/content-optimizer/internal/content"
	"github.com/content-optimizer/internal/dashboard"
	"github.com/content-optimizer/internal/models"
	"github.com/content-optimizer/internal/stage"
	"github.com/content-optimizer/internal/stage/abtester"
	"github.com/content-optimizer/internal/stage/analyzer"
	"github.com/content-optimizer/internal/stage/coach"
	"github.com/content-optimizer/internal/stage/collector"
	"github.com/content-optimizer/internal/stage/optimizer"
	"github.com/content-optimizer/internal/stage/reporter"
	"github.com/content-optimizer/internal/viral"
	"github.com/content-optimizer/pkg/logger"
)

var (
	cfgFile string
	cfg     *config.Config
	log     *logger.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "content-optimizer",
		Short: "Marketing content pipeline",
		Long: `Collects topics, generates platform copy with Claude, then optimizes,
scores, A/B tests and predicts the best platform for every piece of content.`,
		PersistentPreRunE: initializeApp,
		SilenceUsage:      true,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")

	rootCmd.AddCommand(stageCmd("collect", "Collect new topics from the configured sources", collector.Name))
	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(stageCmd("optimize", "Optimize generated content and score it", optimizer.Name))
	rootCmd.AddCommand(stageCmd("sentiment", "Classify the sentiment of generated content", analyzer.Name))
	rootCmd.AddCommand(stageCmd("abtest", "A/B test generated content against its variant", abtester.Name))
	rootCmd.AddCommand(stageCmd("metrics", "Append a performance metrics snapshot", reporter.Name))
	rootCmd.AddCommand(stageCmd("predict", "Predict the best platform for each A/B winner", coach.Name))
	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(sourcesCmd())
	rootCmd.AddCommand(tabsCmd())
	rootCmd.AddCommand(scoreCmd())
	rootCmd.AddCommand(variantCmd())
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func initializeApp(cmd *cobra.Command, args []string) error {
	var err error

	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log = app.NewLogger(cfg.Logging)
	return nil
}

// openApp connects the store and builds every stage
func openApp(ctx context.Context) (*app.App, error) {
	return app.New(ctx, cfg, log)
}

// ============ STAGE COMMANDS ============

func stageCmd(use, short, name string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.Registry.Run(ctx, name)
			if res != nil {
				printResult(res)
			}
			return err
		},
	}
}

func generateCmd() *cobra.Command {
	var topic, platform string
	var pending bool

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate platform content with Claude",
		Long: `Generate content for a single topic (--topic and --platform) or for the
pending topics of the topics tab (--pending).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if pending == (topic != "") {
				return fmt.Errorf("use either --topic with --platform or --pending")
			}
			if topic != "" && platform == "" {
				return fmt.Errorf("--platform is required with --topic")
			}
			if err := cfg.ValidateGeneration(); err != nil {
				return err
			}

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if pending {
				res, err := a.Registry.Run(ctx, a.Generator.Name())
				if res != nil {
					printResult(res)
				}
				return err
			}

			text, err := a.Generator.GenerateOne(ctx, topic, platform)
			if err != nil {
				return err
			}

			fmt.Printf("\n=== %s ===\n\n%s\n", models.ParsePlatform(platform), text)
			return nil
		},
	}

	cmd.Flags().StringVar(&topic, "topic", "", "Topic to write about")
	cmd.Flags().StringVar(&platform, "platform", "", "Target platform (reddit, twitter, youtube)")
	cmd.Flags().BoolVar(&pending, "pending", false, "Generate for pending topics in the topics tab")
	return cmd
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run every stage in pipeline order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			results, err := a.Registry.RunAll(ctx)
			for _, res := range results {
				printResult(res)
			}
			return err
		},
	}
}

func sourcesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "Check that every enabled topic source is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			health := a.Sources.CheckAll(ctx)
			if len(health) == 0 {
				fmt.Println("No topic sources enabled")
				return nil
			}

			failed := 0
			for _, h := range health {
				status := "ok"
				if h.Err != nil {
					status = h.Err.Error()
					failed++
				}
				fmt.Printf("%-8s %-30s %s\n", h.Type, truncateStr(h.Name, 30), status)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d sources unreachable", failed, len(health))
			}
			return nil
		},
	}
}

// ============ TABS COMMANDS ============

func tabsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tabs",
		Short: "Inspect and initialize the row store",
	}

	cmd.AddCommand(tabsInitCmd())
	cmd.AddCommand(tabsShowCmd())
	return cmd
}

func tabsInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create every tab with its header",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.InitTabs(ctx); err != nil {
				return err
			}

			fmt.Printf("Row store initialized (%s)\n", cfg.Store.Driver)
			for _, t := range a.Tabs() {
				fmt.Printf("\n%s\n", t.Name)
				for i, col := range t.Header {
					fmt.Printf("  %d. %s\n", i+1, col)
				}
			}
			return nil
		},
	}
}

func tabsShowCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "show <tab>",
		Short: "Print the last rows of a tab",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			table, err := a.Store.ReadAll(ctx, args[0])
			if err != nil {
				return err
			}

			rows := table.Rows
			if limit > 0 && len(rows) > limit {
				rows = rows[len(rows)-limit:]
			}

			fmt.Printf("\n=== %s (%d of %d rows) ===\n\n", table.Name, len(rows), len(table.Rows))
			for _, row := range rows {
				fmt.Printf("[%d]\n", row.Index)
				for _, col := range table.Header {
					if v := row.Fields[col]; v != "" {
						fmt.Printf("    %s: %s\n", col, truncateStr(oneLine(v), 100))
					}
				}
				fmt.Println()
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum rows to show")
	return cmd
}

// ============ OFFLINE COMMANDS ============

func scoreCmd() *cobra.Command {
	var platform string

	cmd := &cobra.Command{
		Use:   "score <text>",
		Short: "Score text with the offline rules",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			r := dashboard.Analyze(viral.Default(), text, models.ParsePlatform(platform))

			fmt.Printf("\n=== Score ===\n")
			fmt.Printf("A/B Score:          %d/%d\n", r.Score, content.MaxScore)
			fmt.Printf("Optimization Score: %d/%d\n", r.OptimizationScore, content.MaxScore)
			fmt.Printf("Sentiment:          %s (%d)\n", r.Sentiment.Label, r.Sentiment.Score)
			fmt.Printf("Best Platform:      %s\n", r.Prediction.Platform)
			fmt.Printf("Viral Score:        %.3f\n", r.Prediction.ViralScore)
			fmt.Printf("Recommended Time:   %s\n", r.Prediction.RecommendedTime)
			return nil
		},
	}

	cmd.Flags().StringVar(&platform, "platform", "", "Platform used for the optimization score")
	return cmd
}

func variantCmd() *cobra.Command {
	var platform string

	cmd := &cobra.Command{
		Use:   "variant <text>",
		Short: "Build the A/B variant of a text and compare both",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			test := abtester.Compare(models.ContentItem{Platform: models.ParsePlatform(platform), OriginalText: text})

			fmt.Printf("\n=== %s ===\n\n%s\n\n", test.B.Label, test.B.Text)
			fmt.Printf("Score A: %d\n", test.A.Score)
			fmt.Printf("Score B: %d\n", test.B.Score)
			fmt.Printf("Winner:  %s\n", test.Winner)
			return nil
		},
	}

	cmd.Flags().StringVar(&platform, "platform", "", "Target platform (twitter, reddit, youtube)")
	_ = cmd.MarkFlagRequired("platform")
	return cmd
}

// ============ SERVE ============

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if addr == "" {
				addr = cfg.Dashboard.Addr
			}
			return serveDashboard(ctx, a, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from dashboard.addr)")
	return cmd
}

func serveDashboard(ctx context.Context, a *app.App, addr string) error {
	srv := dashboard.New(dashboard.Options{
		Runner:    a.Registry,
		Generator: a.Generator,
		Store:     a.Store,
		Tabs:      a.TabNames(),
		Mode:      cfg.Dashboard.Mode,
	}, log)
	return srv.ListenAndServe(ctx, addr)
}

// ============ OUTPUT ============

func printResult(res *stage.Result) {
	fmt.Printf("\n=== %s ===\n", res.Stage)
	fmt.Printf("Run ID:       %s\n", res.RunID)
	fmt.Printf("Rows Read:    %d\n", res.RowsRead)
	fmt.Printf("Rows Written: %d\n", res.RowsWritten)
	fmt.Printf("Rows Skipped: %d\n", res.RowsSkipped)
	fmt.Printf("Duration:     %s\n", res.Duration.Round(time.Millisecond))

	if len(res.Errors) > 0 {
		fmt.Printf("\nErrors:\n")
		for _, e := range res.Errors {
			fmt.Printf("  - %s\n", e)
		}
	}
}

func truncateStr(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
