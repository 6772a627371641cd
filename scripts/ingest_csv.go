package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"

	"alfredoptarigan/nps-analyzer/internal/config"
	"alfredoptarigan/nps-analyzer/internal/logger"
	"alfredoptarigan/nps-analyzer/internal/repositories"
	"alfredoptarigan/nps-analyzer/internal/services"
)

// Bulk-ingests every .csv file in a directory through the same pipeline
// the upload endpoint uses.
//
//	go run ./scripts/ingest_csv.go -dir ./imports
func main() {
	dir := flag.String("dir", "./imports", "directory containing CSV files")
	flag.Parse()

	// Load configuration
	cfg := config.Load()

	appLog, err := logger.New(cfg.Server.Env)
	if err != nil {
		log.Fatalf("❌ Failed to initialize logger: %v", err)
	}
	defer appLog.Sync()

	appLog.Info("🚀 Starting CSV ingestion...", "dir", *dir)

	db, err := config.InitDatabase(cfg)
	if err != nil {
		appLog.Fatal("❌ Failed to initialize database", "error", err)
	}

	historyRepo := repositories.NewHistoryRepository(db)
	evalRepo := repositories.NewEvaluationRepository(db)
	uploadRepo := repositories.NewUploadRepository(db)

	clock := time.Now
	backupService := services.NewBackupService(cfg.Backup.Path, cfg.Backup.Retention, clock, historyRepo, uploadRepo, evalRepo, appLog)
	historyStore := services.NewHistoryStore(db, historyRepo, evalRepo, uploadRepo, backupService, clock, appLog)
	ingestService := services.NewIngestService(services.NewCSVParser(clock, appLog), historyStore, appLog)

	files, err := csvFiles(*dir)
	if err != nil {
		appLog.Fatal("❌ Failed to read import directory", "dir", *dir, "error", err)
	}
	if len(files) == 0 {
		appLog.Warn("⚠️ No CSV files found", "dir", *dir)
		return
	}

	ctx := context.Background()
	successCount := 0
	failCount := 0
	totalRecords := 0

	bar := progressbar.Default(int64(len(files)), "ingesting")
	for _, path := range files {
		result, err := ingestService.IngestFile(ctx, path, filepath.Base(path))
		if err != nil {
			appLog.Error("❌ failed to ingest file", "file", path, "error", err)
			failCount++
		} else {
			successCount++
			totalRecords += result.TotalRecords
		}
		_ = bar.Add(1)
	}

	appLog.Info("📊 Ingestion summary",
		"successful_files", successCount,
		"records", totalRecords,
		"failed_files", failCount,
	)

	if failCount > 0 {
		appLog.Warn("⚠️ Some files failed to ingest, check the logs above")
		appLog.Sync()
		os.Exit(1)
	}

	appLog.Info("✅ All files ingested successfully")
}

func csvFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}
