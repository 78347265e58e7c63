// Command dedupe reports sessions that share a trainer slot and, with
// -apply, deletes all but the newest of each group.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"time"

	"alcyxob/studio-calendar/internal/config"
	"alcyxob/studio-calendar/internal/repository/mongo"
	"alcyxob/studio-calendar/internal/service"

	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", ".", "directory holding config.yaml and .env")
	apply := flag.Bool("apply", false, "delete duplicates instead of only reporting them")
	site := flag.String("site", "", "site id to clean (defaults to studio.site_id)")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		panic("could not load config: " + err.Error())
	}
	logger, err := cfg.Log.NewLogger()
	if err != nil {
		panic("could not build logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	siteID := cfg.Studio.SiteID
	if *site != "" {
		siteID = *site
	}

	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		logger.Fatal("could not connect to MongoDB", zap.Error(err))
	}
	defer func() { _ = mongo.DisconnectDB(dbClient) }()

	sessionRepo := mongo.NewMongoSessionRepository(dbClient.Database(cfg.Database.Name), siteID, cfg.Booking.BatchLimit)
	audit := service.NewAuditService(sessionRepo, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	var (
		report  *service.AuditReport
		deleted int64
	)
	if *apply {
		report, deleted, err = audit.RemoveDuplicates(ctx)
	} else {
		report, err = audit.FindDuplicates(ctx)
	}
	if err != nil {
		logger.Fatal("dedupe failed", zap.String("site_id", siteID), zap.Error(err))
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		logger.Error("failed to write report", zap.Error(err))
	}
	logger.Info("dedupe finished",
		zap.String("site_id", siteID),
		zap.Bool("applied", *apply),
		zap.Int("groups", len(report.Groups)),
		zap.Int("removable", report.Removable),
		zap.Int64("deleted", deleted),
	)
}
