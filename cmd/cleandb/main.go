package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"alfredoptarigan/nps-analyzer/internal/config"
	"alfredoptarigan/nps-analyzer/internal/logger"
	"alfredoptarigan/nps-analyzer/internal/repositories"
	"alfredoptarigan/nps-analyzer/internal/services"
)

// Wipes history, stored evaluations and backup files after confirmation.
// A final backup is taken by the clear itself and then purged with the rest
// unless -keep-backups is set.
func main() {
	yes := flag.Bool("yes", false, "skip the confirmation prompt")
	keepBackups := flag.Bool("keep-backups", false, "do not delete backup files")
	flag.Parse()

	cfg := config.Load()

	appLog, err := logger.New(cfg.Server.Env)
	if err != nil {
		log.Fatalf("❌ Failed to initialize logger: %v", err)
	}
	defer appLog.Sync()

	if !*yes && !confirm(fmt.Sprintf("This deletes all NPS history and evaluations in %s. Continue? [y/N] ", cfg.Database.Driver)) {
		appLog.Info("Aborted")
		return
	}

	db, err := config.InitDatabase(cfg)
	if err != nil {
		appLog.Fatal("❌ Failed to initialize database", "error", err)
	}

	historyRepo := repositories.NewHistoryRepository(db)
	evalRepo := repositories.NewEvaluationRepository(db)
	uploadRepo := repositories.NewUploadRepository(db)

	backupService := services.NewBackupService(cfg.Backup.Path, cfg.Backup.Retention, time.Now, historyRepo, uploadRepo, evalRepo, appLog)
	historyStore := services.NewHistoryStore(db, historyRepo, evalRepo, uploadRepo, backupService, time.Now, appLog)

	result, err := historyStore.Clear(context.Background())
	if err != nil {
		appLog.Fatal("❌ Failed to clear database", "error", err)
	}
	appLog.Info("🧹 Database cleared",
		"history_deleted", result.HistoryDeleted,
		"evaluations_deleted", result.EvaluationsDeleted,
	)

	if *keepBackups {
		appLog.Info("💾 Backups kept", "latest", result.Backup.Name)
		return
	}

	removed, err := backupService.Purge()
	if err != nil {
		appLog.Fatal("❌ Failed to delete backups", "error", err)
	}
	appLog.Info("🗑️ Backups removed", "files", removed)
	appLog.Info("✅ Database cleaned")
}

func confirm(prompt string) bool {
	fmt.Print(prompt)
	answer, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
