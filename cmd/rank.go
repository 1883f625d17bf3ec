package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/cv-ranker/internal/batch"
	"github.com/spigell/cv-ranker/internal/document"
	"github.com/spigell/cv-ranker/internal/logger"
	"github.com/spigell/cv-ranker/internal/observability/metrics"
	"github.com/spigell/cv-ranker/internal/ranking"
	"github.com/spigell/cv-ranker/internal/store"
	"github.com/spigell/cv-ranker/internal/tiebreak"
)

const (
	PromptYes            = "Yes"
	PromptNo             = "No"
	PromptExit           = "Exit"
	PromptShowVerdicts   = "Show raw verdicts"
	PromptReportBySource = "Report by score source"
	PromptDumpToFile     = "Dump results to file"
	PromptExportXLSX     = "Export results to xlsx"
	defaultXLSXPath      = "ranking.xlsx"
)

var errExit = errors.New("exit requested")

var actionsPrompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptExit, PromptShowVerdicts, PromptReportBySource, PromptDumpToFile, PromptExportXLSX},
}

var rankCmd = &cobra.Command{
	Use:   "rank [files or directories...]",
	Short: "Score résumés against a job description and print the ranking",
	Args:  cobra.ArbitraryArgs,
	Run: func(cmd *cobra.Command, args []string) {
		rank(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(rankCmd)

	rankCmd.Flags().String("jd", "", "job description text")
	rankCmd.Flags().String("jd-file", "", "file with the job description")
	rankCmd.Flags().BoolP("auto-approve", "y", false, "do not ask for confirmation and skip the actions menu")
	rankCmd.Flags().IntP("workers", "w", 0, "number of documents scored concurrently (default is the number of CPUs)")
	rankCmd.Flags().String("provider", "", "oracle provider: gemini or openai")
	rankCmd.Flags().Uint64("seed", 0, "tie-break seed, 0 draws a random one")
	rankCmd.Flags().String("xlsx", "", "export the ranking to this xlsx file")

	viper.BindPFlag("workers", rankCmd.Flags().Lookup("workers"))
	viper.BindPFlag("oracle.provider", rankCmd.Flags().Lookup("provider"))
	viper.BindPFlag("tie-break.seed", rankCmd.Flags().Lookup("seed"))
}

// rank is the main command for the cli.
func rank(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	defer logger.Sync()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the cv-ranker", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(redacted(config), "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	inline, _ := cmd.Flags().GetString("jd")
	jdFile, _ := cmd.Flags().GetString("jd-file")
	jobDescription, err := resolveJobDescription(inline, jdFile, config.JobDescriptionFile)
	if err != nil {
		logger.Fatal("loading job description",
			zap.Error(err),
			zap.String("hint", "pass --jd, --jd-file or set job-description-file in the configuration file"),
		)
	}

	docs, err := collectDocuments(args)
	if err != nil {
		logger.Fatal("collecting documents", zap.Error(err))
	}
	if len(docs) == 0 {
		logger.Fatal("no documents to score", zap.String("hint", "pass pdf files or directories as arguments"))
	}

	autoApprove, _ := cmd.Flags().GetBool("auto-approve")
	if !autoApprove {
		confirm := promptui.Select{
			Label: fmt.Sprintf("Score %d document(s) with %s?", len(docs), config.Oracle.Provider),
			Items: []string{PromptYes, PromptNo},
		}
		_, answer, err := confirm.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}
		if answer != PromptYes {
			logger.Info("exiting", zap.String("reason", "got no from prompt"))
			return
		}
	}

	oracle, generator, err := newOracle(ctx, config.Oracle, logger)
	if err != nil {
		logger.Fatal("building the oracle", zap.Error(err))
	}

	st, err := store.Open(ctx, config.Store)
	if err != nil {
		logger.Fatal("opening the candidate store", zap.Error(err), zap.String("driver", config.Store.Driver))
	}
	defer st.Close()

	batchMetrics := metrics.NewBatchMetrics(generator.Provider())

	coordinator, err := batch.New(batch.Config{
		Workers:  config.Workers,
		Provider: generator.Provider(),
	}, batch.Deps{
		Extractor:  document.NewExtractor(),
		Oracle:     oracle,
		Store:      st,
		TieBreaker: tiebreak.New(config.TieBreak.Spread, config.TieBreak.Seed),
		Metrics:    batchMetrics,
		Logger:     logger,
	})
	if err != nil {
		logger.Fatal("building the batch", zap.Error(err))
	}

	result, err := coordinator.Run(ctx, jobDescription, docs)
	if err != nil && result == nil {
		logger.Fatal("scoring batch", zap.Error(err))
	}
	if err != nil {
		logger.Warn("batch did not finish cleanly", zap.Error(err))
	}

	if path := config.Metrics.Textfile; path != "" {
		if err := batchMetrics.WriteTextfile(path); err != nil {
			logger.Warn("writing metrics", zap.Error(err))
		}
	}

	table := ranking.FromBatch(result)
	if err := table.Render(os.Stdout); err != nil {
		logger.Fatal("rendering results", zap.Error(err))
	}

	if path, _ := cmd.Flags().GetString("xlsx"); path != "" {
		if err := exportXLSX(table, path, logger); err != nil {
			logger.Fatal("exporting results", zap.Error(err))
		}
	}

	if autoApprove {
		return
	}

	for {
		_, action, err := actionsPrompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(action, table, logger); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(action string, table *ranking.Table, logger *zap.Logger) error {
	switch action {
	case PromptExit:
		return errExit
	case PromptShowVerdicts:
		return table.RenderVerdicts(os.Stdout)
	case PromptReportBySource:
		pretty, _ := json.MarshalIndent(table.ReportBySource(), "", "  ")
		logger.Info(string(pretty), zap.Int("candidates count", table.Len()))
		return nil
	case PromptDumpToFile:
		filename, err := table.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	case PromptExportXLSX:
		pathPrompt := promptui.Prompt{Label: "Export to", Default: defaultXLSXPath}
		path, err := pathPrompt.Run()
		if err != nil {
			return err
		}
		return exportXLSX(table, path, logger)
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func exportXLSX(table *ranking.Table, path string, logger *zap.Logger) error {
	if err := table.ExportXLSX(path); err != nil {
		return err
	}
	logger.Info("exported results", zap.String("filename", path))
	return nil
}

// redacted returns a copy of config that is safe to log.
func redacted(config *Config) *Config {
	out := *config
	if len(config.Oracle.Options) > 0 {
		out.Oracle.Options = make(map[string]any, len(config.Oracle.Options))
		for k, v := range config.Oracle.Options {
			if k == "api-key" {
				v = "***"
			}
			out.Oracle.Options[k] = v
		}
	}
	if out.Store.DSN != "" {
		out.Store.DSN = "***"
	}
	return &out
}
