package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/jhlj/backend/internal/report"
	"github.com/wonny/jhlj/backend/internal/store"
	"github.com/wonny/jhlj/backend/pkg/config"
	"github.com/wonny/jhlj/backend/pkg/database"
	"github.com/wonny/jhlj/backend/pkg/logger"
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "CSV 내보내기",
	Long: `일별 인덱스와 최신 매물 스냅샷을 CSV 파일로 내보냅니다.

Example:
  go run ./cmd/jhlj export
  go run ./cmd/jhlj export --out index.csv`,
	RunE: runExport,
}

var (
	exportOut string
)

func init() {
	rootCmd.AddCommand(exportCmd)

	// Flags
	exportCmd.Flags().StringVar(&exportOut, "out", "", "출력 파일 경로 (기본값: jhlj_index_export_<timestamp>.csv)")
}

func runExport(cmd *cobra.Command, args []string) error {
	fmt.Println("=== JHLJ CSV Export ===")

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Connect to database
	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	// 4. Create report service
	listingRepo := store.NewListingRepository(db.Pool)
	quoteRepo := store.NewQuoteRepository(db.Pool)

	svc := report.NewService(listingRepo, quoteRepo, report.Options{
		Symbol: cfg.Index.Symbol,
	}, log)

	// 5. Write the export
	out := exportOut
	if out == "" {
		out = fmt.Sprintf("jhlj_index_export_%s.csv", time.Now().UTC().Format("20060102_150405"))
	}

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer f.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if err := svc.ExportCSV(ctx, f); err != nil {
		os.Remove(out)
		return fmt.Errorf("export: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat output file: %w", err)
	}

	PrintSuccess(fmt.Sprintf("Exported to %s (%d bytes)", out, info.Size()))
	return nil
}
