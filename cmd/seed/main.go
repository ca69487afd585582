// Command seed resets the schema and loads sample content for local development.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"folio/internal/app"
	"folio/internal/config"
	contentSvc "folio/internal/domain/services/content"
	"folio/internal/repository/postgres"
	"folio/internal/service/content"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	if err := newRootCmd(cfg).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	var dropTables, schemaOnly bool

	cmd := &cobra.Command{
		Use:          "seed",
		Short:        "Migrate the database and load sample content",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cfg.DatabaseURL == "" {
				return errors.New("DATABASE_URL is required")
			}
			// Prevent destructive operations in production
			if cfg.Environment == "prod" && dropTables {
				return errors.New("--drop-tables is blocked in prod")
			}
			return runSeed(cmd.Context(), cfg, dropTables, schemaOnly)
		},
	}

	cmd.Flags().BoolVar(&dropTables, "drop-tables", false, "roll back every migration before seeding (fresh start)")
	cmd.Flags().BoolVar(&schemaOnly, "schema-only", false, "only apply migrations, don't seed content")

	return cmd
}

func runSeed(ctx context.Context, cfg *config.Config, dropTables, schemaOnly bool) error {
	logger, closeLog, err := app.NewLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	if dropTables {
		logger.Warn("dropping all tables")
		if err := postgres.MigrateDown(cfg.DatabaseURL, logger); err != nil {
			return fmt.Errorf("drop tables: %w", err)
		}
	}

	if err := postgres.RunMigrations(cfg.DatabaseURL, logger); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	if schemaOnly {
		logger.Info("schema ready (schema-only mode)")
		return nil
	}

	// Migrations already ran above.
	appCfg := *cfg
	appCfg.RunMigrations = false
	a, err := app.New(ctx, &appCfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	svc := content.NewContentService(a.Contents, a.Processor, a.Tracker, a.TxManager, logger)

	created := 0
	for _, sample := range samples(cfg.DevUserID) {
		record, err := svc.CreateContent(ctx, sample)
		if err != nil {
			logger.Error("failed to seed content", "title", sample.Title, "error", err)
			continue
		}
		created++
		log.Printf("created %q (id %s, %s, %d words)", record.Title, record.ID, record.ContentType, record.WordCount)
	}

	logger.Info("seeding complete", "created", created)
	return nil
}

// samples returns demo content covering each content type.
func samples(authorID string) []*contentSvc.CreateContentRequest {
	return []*contentSvc.CreateContentRequest{
		{
			AuthorID: authorID,
			Title:    "Welcome",
			Content:  "Welcome to the notebook.\n\nThis entry is plain text, so nothing here is formatted.",
		},
		{
			AuthorID: authorID,
			Title:    "Formatting guide",
			Content: `---
tags: [guide, markdown]
pinned: true
---
# Formatting guide

Write **bold**, _italic_ and ` + "`code`" + `.

- lists
- [links](https://example.com)

| column | value |
|--------|-------|
| a      | 1     |

- [x] task lists work too
`,
		},
		{
			AuthorID:    authorID,
			Title:       "Imported page",
			ContentType: "raw_markup",
			Content: `<h2>Imported from the old editor</h2>
<p onclick="steal()">Legacy HTML keeps its structure <a href="javascript:alert(1)">without scripts</a>.</p>
<script>alert("removed")</script>
<img src="https://example.com/banner.png" alt="banner">`,
		},
	}
}
