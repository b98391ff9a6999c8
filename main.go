package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"go.uber.org/zap"

	"github.com/example/greekbot/internal/config"
	"github.com/example/greekbot/internal/database"
	"github.com/example/greekbot/internal/importer"
	"github.com/example/greekbot/internal/messenger"
	"github.com/example/greekbot/internal/metrics"
	"github.com/example/greekbot/internal/report"
	"github.com/example/greekbot/internal/scheduler"
	"github.com/example/greekbot/internal/srs"
	"github.com/example/greekbot/internal/telegram"
	"github.com/example/greekbot/pkg/models"
)

const usage = `greekbot - proactive Greek vocabulary trainer

Usage:
  greekbot serve              run the scheduler and metrics listener
  greekbot import <file>      import vocabulary from a CSV or XLSX file
  greekbot report             print the progress report
  greekbot due                list words currently due
  greekbot review <greek> <q> record a review (quality 0-5)
  greekbot skip <greek>       exclude a word from scheduling
`

func main() {
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(logger, flag.Args()); err != nil {
		logger.Fatal("command failed", zap.Error(err))
	}
}

func run(logger *zap.Logger, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if err := database.Connect(cfg.DatabaseURL, cfg.SQLitePath); err != nil {
		return err
	}
	defer database.Close()

	engine := srs.NewEngine(database.NewReviewRepository(), logger)
	ctx := context.Background()

	switch cmd := args[0]; cmd {
	case "serve":
		return serve(ctx, cfg, engine, logger)
	case "import":
		if len(args) < 2 {
			return errors.New("usage: greekbot import <file>")
		}
		result, err := importer.New(logger).ImportFile(ctx, args[1])
		if err != nil {
			return err
		}
		fmt.Printf("Imported %d words, skipped %d\n", result.Added, result.Skipped)
		return nil
	case "report":
		text, err := report.New(engine).Generate(ctx)
		if err != nil {
			return err
		}
		fmt.Println(text)
		return nil
	case "due":
		return printDue(ctx, engine)
	case "review":
		if len(args) < 3 {
			return errors.New("usage: greekbot review <greek> <quality>")
		}
		return recordReview(ctx, engine, args[1], args[2])
	case "skip":
		if len(args) < 2 {
			return errors.New("usage: greekbot skip <greek>")
		}
		return skipWord(ctx, args[1])
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// serve wires up delivery, composition, and the scheduler, then blocks until
// SIGINT or SIGTERM.
func serve(ctx context.Context, cfg *config.Config, engine *srs.Engine, logger *zap.Logger) error {
	if cfg.TelegramBotToken == "" || cfg.TelegramChatID == 0 {
		return errors.New("TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID are required for serve")
	}
	if cfg.AnthropicAPIKey == "" {
		return errors.New("ANTHROPIC_API_KEY is required for serve")
	}

	sender, err := telegram.New(cfg.TelegramBotToken, cfg.TelegramChatID, logger)
	if err != nil {
		return err
	}
	composer := messenger.NewClaudeComposer(cfg.AnthropicAPIKey)
	reporter := report.New(engine)
	msgr := messenger.New(engine, composer, sender, reporter.Generate, logger)

	sched := scheduler.New(cfg, msgr, engine, logger)
	if err := sched.Start(ctx); err != nil {
		return err
	}
	defer sched.Stop()

	go metrics.Serve(cfg.MetricsAddr, logger)

	logger.Info("greekbot running")
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info("shutting down", zap.String("signal", sig.String()))
	return nil
}

func printDue(ctx context.Context, engine *srs.Engine) error {
	due, err := engine.DueCards(ctx, 0)
	if err != nil {
		return err
	}
	if len(due) == 0 {
		fmt.Println("Nothing due.")
		return nil
	}
	for _, c := range due {
		status := "new"
		if c.LastReview != nil {
			if c.IsLearning() {
				status = "learning"
			} else {
				status = "review"
			}
		}
		fmt.Printf("%s (%s) [%s] ease %.2f interval %.2fd\n",
			c.Greek, c.English, status, c.EaseFactor, c.Interval)
	}
	return nil
}

func recordReview(ctx context.Context, engine *srs.Engine, greek, qualityArg string) error {
	quality, err := strconv.Atoi(qualityArg)
	if err != nil {
		return fmt.Errorf("quality must be a number 0-5: %w", err)
	}

	word, err := database.NewWordRepository().GetByGreek(ctx, greek)
	if err != nil {
		return err
	}
	state, err := engine.RecordReview(ctx, word.ID, quality)
	if err != nil {
		return err
	}

	outcome := metrics.OutcomePass
	if quality < srs.PassThreshold {
		outcome = metrics.OutcomeFail
	}
	metrics.ReviewsRecorded.WithLabelValues(outcome).Inc()

	fmt.Printf("%s: interval %.2fd, ease %.2f, repetition %d\n",
		state.Greek, state.Interval, state.EaseFactor, state.Repetition)
	return nil
}

func skipWord(ctx context.Context, greek string) error {
	words := database.NewWordRepository()
	word, err := words.GetByGreek(ctx, greek)
	if err != nil {
		return err
	}
	if err := words.AddTag(ctx, word.ID, models.TagManualSkip); err != nil {
		return err
	}
	fmt.Printf("%s excluded from scheduling\n", word.Greek)
	return nil
}
