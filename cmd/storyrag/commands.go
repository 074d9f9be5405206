package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sagarzanwar92/rag-story-research/internal/audit"
	"github.com/sagarzanwar92/rag-story-research/internal/config"
	"github.com/sagarzanwar92/rag-story-research/internal/engine"
	"github.com/sagarzanwar92/rag-story-research/internal/ingest"
	"github.com/sagarzanwar92/rag-story-research/internal/logstore"
	"github.com/sagarzanwar92/rag-story-research/internal/retrieval"
	"github.com/sagarzanwar92/rag-story-research/internal/storage"
)

// --- audit ---

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Re-evaluate logged answers against their retrieved context",
	Long: `Run a single audit pass over the interaction log.

Each logged answer is replayed through the judge model, which checks its
dates and setting against the context the answer was grounded on and labels
it FAITHFUL or HALLUCINATION. The full report replaces any previous one.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		setupLogging(cfg)

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		eng, err := engineFromConfig(cfg)
		if err != nil {
			return err
		}
		_, judgeModel, _ := resolveModels(cfg)
		if err := engine.EnsureReady(ctx, eng, os.Stderr, judgeModel); err != nil {
			return err
		}

		interactions := logstore.NewStore(cfg.Storage.LogFile)
		report := audit.NewReportStore(cfg.Storage.AuditFile)

		progress := func(i, total int, rec audit.Record) {
			printStep("[%d/%d] %s", i, total, rec.Query)
			switch rec.Classification {
			case audit.ClassFaithful:
				printSuccess("verdict: %s", rec.Classification)
			case audit.ClassHallucination:
				printError("verdict: %s", rec.Classification)
			default:
				printWarning("verdict: %s", rec.Classification)
			}
		}

		judge := audit.NewJudge(eng, interactions, report, judgeModel, progress)
		summary, err := judge.Run(ctx)
		if err != nil {
			return err
		}
		if summary.Total == 0 {
			fmt.Fprintln(os.Stderr, "No logged interactions found. Ask some questions first.")
			return nil
		}

		fmt.Fprintln(os.Stderr)
		printStatus("audited", "%d", summary.Total)
		printStatus("faithful", "%d", summary.Faithful)
		printStatus("hallucinations", "%d", summary.Hallucinations)
		if summary.Unparseable > 0 {
			printStatus("unparseable", "%d", summary.Unparseable)
		}
		if summary.Failed > 0 {
			printStatus("failed", "%d", summary.Failed)
		}
		printSuccess("Audit complete. Verdicts saved to %s", report.Path())
		return nil
	},
}

// --- ingest ---

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest a document into the corpus",
	Long: `Ingest a document into the corpus.

Examples:
  storyrag ingest --file ./persuasion.pdf
  storyrag ingest --file ./notes.txt
  storyrag ingest --url https://example.com/article`,
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		url, _ := cmd.Flags().GetString("url")
		if (file == "") == (url == "") {
			return fmt.Errorf("exactly one of --file or --url is required")
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		setupLogging(cfg)

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		eng, err := engineFromConfig(cfg)
		if err != nil {
			return err
		}
		_, _, embedModel := resolveModels(cfg)
		if err := engine.EnsureReady(ctx, eng, os.Stderr, embedModel); err != nil {
			return err
		}

		store, err := storage.Open(cfg.Storage.DataDir)
		if err != nil {
			return fmt.Errorf("opening storage: %w", err)
		}
		defer store.Close()

		embedder := retrieval.NewEmbedder(eng, embedModel)
		vectorStore := retrieval.NewSQLiteStore(store.DB())
		pipeline := ingest.NewPipeline(embedder, vectorStore, store, cfg.Chunking.Size, cfg.Chunking.Overlap)

		var doc storage.Document
		if file != "" {
			printStep("ingesting %s", file)
			doc, err = pipeline.IngestFile(ctx, file)
		} else {
			printStep("fetching %s", url)
			doc, err = pipeline.IngestURL(ctx, url)
		}
		if err != nil {
			return err
		}

		printSuccess("Ingested %q (%d chunks)", doc.Title, doc.ChunkCount)
		return nil
	},
}

// --- status ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show corpus and engine status",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		ctx := context.Background()
		eng, err := engineFromConfig(cfg)
		if err != nil {
			return err
		}
		if eng.IsRunning(ctx) {
			printSuccess("inference engine reachable")
		} else {
			printError("inference engine not reachable")
		}

		store, err := storage.Open(cfg.Storage.DataDir)
		if err != nil {
			return fmt.Errorf("opening storage: %w", err)
		}
		defer store.Close()

		docCount, err := store.CountDocuments()
		if err != nil {
			return err
		}
		vectorStore := retrieval.NewSQLiteStore(store.DB())
		chunkCount, err := vectorStore.Count()
		if err != nil {
			return err
		}

		interactions := logstore.NewStore(cfg.Storage.LogFile)
		records, err := interactions.ReadAll()
		if err != nil {
			return err
		}

		printStatus("documents", "%d", docCount)
		printStatus("chunks", "%d", chunkCount)
		printStatus("logged interactions", "%d", len(records))
		printStatus("data dir", "%s", cfg.Storage.DataDir)
		return nil
	},
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		keys := config.ShowAll(cfg)
		for _, k := range keys {
			fmt.Printf("  %s = %s\n", colorize(colorBold, k.Key), k.Value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

func init() {
	ingestCmd.Flags().String("file", "", "path to a PDF or text file")
	ingestCmd.Flags().String("url", "", "URL of a page to fetch")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
