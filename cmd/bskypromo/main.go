package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"bskypromo/internal/compose"
	"bskypromo/internal/config"
	"bskypromo/internal/content"
	"bskypromo/internal/domain"
	"bskypromo/internal/linkcheck"
	"bskypromo/internal/notify"
	"bskypromo/internal/storage"
	"bskypromo/internal/twitter"
)

const version = "1.0.0"

// historyLogLimit caps how many past posts are logged at startup for
// operator context.
const historyLogLimit = 5

func main() {
	os.Exit(run())
}

// run performs exactly one bot invocation: select, render, post, record.
// Scheduling is the service manager's job; the exit code tells it how the
// run went.
func run() int {
	dryRun := flag.Bool("dry-run", false, "render a tweet and print it without posting")
	checkLinks := flag.Bool("check", false, "verify that every content link is alive instead of posting")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("bskypromo " + version)
		return 0
	}

	// --- Configuration Loading ---
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return 1
	}

	// --- Logger Setup ---
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	// Signal-aware context so an in-flight network call can be cancelled
	// when the service manager stops the unit.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Content Loading ---
	loader := content.NewLoader(log)
	packs, err := loader.LoadStarterPacks(cfg.StarterPacksCSV)
	if err != nil {
		log.WithError(err).Error("Failed to load starter packs")
		return 1
	}
	feeds, err := loader.LoadFeeds(cfg.FeedsCSV)
	if err != nil {
		log.WithError(err).Error("Failed to load feeds")
		return 1
	}
	reasons, err := loader.LoadReasons(cfg.ReasonsFile)
	if err != nil {
		log.WithError(err).Error("Failed to load reasons")
		return 1
	}
	log.WithFields(logrus.Fields{
		"starter_packs": len(packs),
		"feeds":         len(feeds),
		"reasons":       len(reasons),
	}).Info("Content loaded")

	// --- Link Check Mode ---
	if *checkLinks {
		checker := linkcheck.NewRodChecker(log)
		results := linkcheck.CheckAll(ctx, checker, packs, feeds, log)
		failures := linkcheck.Failures(results)
		log.WithFields(logrus.Fields{
			"checked":  len(results),
			"failures": failures,
		}).Info("Link check finished")
		if failures > 0 {
			return 1
		}
		return 0
	}

	// --- Failure Alerting (optional) ---
	var notifier notify.Notifier
	if cfg.TelegramBotToken != "" && cfg.TelegramChatID != 0 {
		notifier, err = notify.NewTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramChatID, log)
		if err != nil {
			log.WithError(err).Warn("Failure alerting disabled")
			notifier = nil
		}
	}
	alert := func(message string) {
		if notifier == nil {
			return
		}
		if err := notifier.Notify(ctx, message); err != nil {
			log.WithError(err).Warn("Could not deliver failure alert")
		}
	}

	// --- Compose ---
	rng := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	composer := compose.NewComposer(packs, feeds, reasons, rng, log)

	result, err := composer.Compose()
	if err != nil {
		log.WithError(err).Error("Failed to compose tweet")
		alert(fmt.Sprintf("bskypromo: failed to compose tweet: %v", err))
		return 1
	}
	log.WithFields(logrus.Fields{
		"kind":   result.Kind,
		"title":  result.Title,
		"length": len([]rune(result.Text)),
	}).Info("Tweet composed")

	if *dryRun {
		fmt.Println(result.Text)
		return 0
	}

	// --- Post History ---
	repo, err := storage.NewBadgerRepository(cfg.HistoryDBPath, log)
	if err != nil {
		log.WithError(err).Error("Failed to open post history")
		return 1
	}
	defer func() {
		if err := repo.Close(); err != nil {
			log.WithError(err).Error("Error closing post history")
		}
	}()
	if recent, err := repo.RecentPosts(ctx, historyLogLimit); err == nil && len(recent) > 0 {
		log.WithFields(logrus.Fields{
			"count":       len(recent),
			"last_posted": recent[0].PostedAt,
		}).Info("Post history loaded")
	}

	// --- Submit ---
	client := twitter.NewClient(twitter.Credentials{
		ConsumerKey:    cfg.TwitterConsumerKey,
		ConsumerSecret: cfg.TwitterConsumerSecret,
		AccessToken:    cfg.TwitterAccessToken,
		AccessSecret:   cfg.TwitterAccessSecret,
	}, cfg.TwitterAPIBaseURL, log)

	tweetID, err := client.Post(ctx, result.Text)
	if err != nil {
		log.WithError(err).WithField("kind", result.Kind).Error("Failed to post tweet")
		alert(fmt.Sprintf("bskypromo: failed to post tweet (%s): %v", result.Kind, err))
		return 1
	}

	// The tweet is out, so a history write failure is logged but does not
	// fail the run.
	if err := repo.SavePost(ctx, domain.PostRecord{
		Text:     result.Text,
		Kind:     result.Kind,
		TweetID:  tweetID,
		PostedAt: time.Now(),
	}); err != nil {
		log.WithError(err).Warn("Posted tweet was not recorded in history")
	}

	log.WithFields(logrus.Fields{
		"tweet_id": tweetID,
		"kind":     result.Kind,
	}).Info("Run completed successfully")
	return 0
}
