package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/cv-matcher/internal/ai"
	"github.com/spigell/cv-matcher/internal/ai/gemini"
	"github.com/spigell/cv-matcher/internal/candidates"
	"github.com/spigell/cv-matcher/internal/export"
	"github.com/spigell/cv-matcher/internal/filtering"
	"github.com/spigell/cv-matcher/internal/logger"
	"github.com/spigell/cv-matcher/internal/matching"
	"github.com/spigell/cv-matcher/internal/requirements"
	"github.com/spigell/cv-matcher/internal/secrets"
	"github.com/spigell/cv-matcher/internal/skills"
)

const (
	PromptExit                = "Exit"
	PromptReportBySpecialty   = "Report by specialty"
	PromptExportToExcel       = "Export to Excel"
	PromptCandidatesToFile    = "Dump candidates to file"
	PromptAppendToExcludeFile = "Append all candidates to exclude file"
	PromptShowFilters         = "Show filter status"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptReportBySpecialty, PromptExportToExcel, PromptCandidatesToFile, PromptAppendToExcludeFile, PromptShowFilters, PromptExit},
}

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Score and rank candidates against job requirements",
	Run: func(cmd *cobra.Command, _ []string) {
		match(cmd)
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().StringP("candidates", "c", "", "candidates file (YAML or JSON)")
	matchCmd.Flags().StringP("requirements", "r", "", "requirements file (YAML or JSON)")
	matchCmd.Flags().StringP("text", "t", "", "free-text job description used when no requirements file is given")
	matchCmd.Flags().StringP("exclude-file", "e", "", "special file with candidates to exclude. Default is unset.")
	matchCmd.Flags().IntP("min-score", "m", 0, "minimum match score to keep a candidate")
	matchCmd.Flags().StringP("output", "o", "", "spreadsheet path for the export action")
	matchCmd.Flags().Bool("no-ai", false, "skip AI rescoring even if enabled in config")
	matchCmd.Flags().BoolP("auto-approve", "y", false, "do not ask what to do, print the report and export a spreadsheet")

	viper.BindPFlag("candidates", matchCmd.Flags().Lookup("candidates"))
	viper.BindPFlag("requirements", matchCmd.Flags().Lookup("requirements"))
	viper.BindPFlag("text", matchCmd.Flags().Lookup("text"))
	viper.BindPFlag("exclude-file", matchCmd.Flags().Lookup("exclude-file"))
	viper.BindPFlag("export.path", matchCmd.Flags().Lookup("output"))
}

// match is the main command for the cli.
func match(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	defer logger.Sync()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	if cmd.Flags().Changed("min-score") {
		config.Matching.MinScore, _ = cmd.Flags().GetInt("min-score")
	}

	logger.Info("starting the cv-matcher", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	if config.Candidates == "" {
		logger.Fatal("candidates file is required", zap.String("hint", "pass --candidates or set 'candidates' in the config file"))
	}

	list, err := candidates.Load(config.Candidates)
	if err != nil {
		logger.Fatal("loading candidates", zap.Error(err))
	}
	logger.Info("candidates loaded", zap.Int("count", len(list)))

	reqText, reqs, err := resolveRequirements(config)
	if err != nil {
		logger.Fatal("loading requirements", zap.Error(err))
	}
	if len(reqs) == 0 {
		logger.Info("exiting", zap.String("reason", "no requirements recognised"))
		return
	}
	logger.Info("requirements resolved", zap.Int("count", len(reqs)), zap.Strings("skills", reqs.Skills()))

	skillConfig := skills.DefaultConfig(
		skills.WithVocabulary(config.Matching.Vocabulary...),
		skills.WithRoleKeywords(config.Matching.RoleKeywords...),
	)
	logger.Debug("skill configuration",
		zap.Strings("vocabulary", skillConfig.Vocabulary()),
		zap.Strings("role_keywords", skillConfig.RoleKeywords()),
		zap.Any("section_weights", skillConfig.SectionWeights()),
	)

	matcher := matching.NewMatcher(
		skillConfig,
		matching.WithWorkers(config.Matching.Workers),
		matching.WithLogger(logger.Named("matching")),
	)

	results, err := candidates.Match(ctx, matcher, list, reqs)
	if err != nil {
		logger.Fatal("matching candidates", zap.Error(err))
	}

	noAI, _ := cmd.Flags().GetBool("no-ai")
	steps, deps := prepareFilters(ctx, config, noAI, reqText, reqs, logger)

	results, err = filtering.Run(ctx, filterConfig(config), deps, steps, results)
	if err != nil {
		logger.Fatal("filtering failed", zap.Error(err))
	}

	if results.Len() == 0 {
		logger.Info("exiting", zap.String("reason", "no candidates left after filters"))
		return
	}
	logger.Debug("candidates left after filters", zap.Strings("ids", results.IDs()))

	for i, res := range results.Items {
		logger.Info("ranked candidate",
			zap.Int("rank", i+1),
			zap.String("candidate_id", res.Candidate.ID),
			zap.String("name", res.Candidate.Name),
			zap.Int("match_score", res.MatchScore),
			zap.String("reasoning", res.Reasoning),
		)
	}

	if autoApprove, _ := cmd.Flags().GetBool("auto-approve"); autoApprove {
		for _, action := range []string{PromptReportBySpecialty, PromptExportToExcel} {
			if err := handleAction(action, logger, config, results, steps); err != nil {
				logger.Fatal("exiting", zap.Error(err))
			}
		}
		return
	}

	for {
		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		logger.Info("current list of candidates", zap.Int("count", results.Len()))

		if err := handleAction(action, logger, config, results, steps); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(action string, logger *zap.Logger, config *Config, results *candidates.Results, steps []filtering.Filter) error {
	switch action {
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	case PromptReportBySpecialty:
		pretty, _ := json.MarshalIndent(results.ReportBySpecialty(), "", "  ")
		fmt.Println(string(pretty))
		return nil
	case PromptExportToExcel:
		path, err := export.MatchingResults(results, config.Export.Path)
		if err != nil {
			return fmt.Errorf("export results: %w", err)
		}
		logger.Info("results exported", zap.String("filename", path))
		return nil
	case PromptCandidatesToFile:
		filename, err := results.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	case PromptAppendToExcludeFile:
		return appendToExcludeFile(logger, config.ExcludeFile, results)
	case PromptShowFilters:
		pretty, _ := json.MarshalIndent(filtering.Describe(steps), "", "  ")
		fmt.Println(string(pretty))
		return nil
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func appendToExcludeFile(logger *zap.Logger, path string, results *candidates.Results) error {
	if path == "" {
		logger.Warn("exclude file is not configured", zap.String("hint", "pass --exclude-file or set 'exclude-file' in the config file"))
		return nil
	}

	excluded, err := candidates.ReadExcludedFromFile(path)
	if err != nil {
		return err
	}

	excluded.Append(results.ToExcluded())

	if err := excluded.ToFile(path); err != nil {
		return err
	}

	logger.Info("appended to exclude file", zap.String("filename", path), zap.Int("count", results.Len()))
	return nil
}

// resolveRequirements returns the requirements text shown to the AI scorer and
// the structured list used for scoring.
func resolveRequirements(config *Config) (string, requirements.List, error) {
	if config.Requirements != "" {
		doc, err := requirements.LoadFile(config.Requirements)
		if err != nil {
			return "", nil, err
		}
		return doc.Text, doc.Resolve(), nil
	}

	text := strings.TrimSpace(config.Text)
	if text == "" {
		return "", nil, errors.New("either a requirements file or a job description text is required")
	}

	reqs := requirements.Parse(text)
	return text, reqs, reqs.Validate()
}

func filterConfig(config *Config) *filtering.Config {
	cfg := &filtering.Config{
		ExcludeFile: config.ExcludeFile,
		MinScore:    config.Matching.MinScore,
	}

	if config.AI != nil {
		cfg.AI = &filtering.AIConfig{
			Enabled:  config.AI.Enabled,
			Provider: config.AI.Provider,
			Timeout:  config.AI.Timeout,
			Delay:    config.AI.Delay,
		}
		if config.AI.Gemini != nil {
			cfg.AI.Gemini = &filtering.GeminiConfig{
				Model:        config.AI.Gemini.Model,
				MaxRetries:   config.AI.Gemini.MaxRetries,
				MaxLogLength: config.AI.Gemini.MaxLogLength,
			}
		}
	}

	return cfg
}

func prepareFilters(ctx context.Context, config *Config, noAI bool, reqText string, reqs requirements.List, logger *zap.Logger) ([]filtering.Filter, filtering.Deps) {
	steps := filtering.Default()
	deps := filtering.Deps{
		Logger:           logger,
		RequirementsText: reqText,
		Requirements:     reqs,
	}

	switch {
	case noAI:
		filtering.DisableByName(steps, "ai_rescore", "disabled by --no-ai flag")
	case config.AI == nil || !config.AI.Enabled:
		filtering.DisableByName(steps, "ai_rescore", "ai is disabled in config")
	default:
		scorer, err := newAIScorer(ctx, config.AI, logger)
		if err != nil {
			logger.Warn("skipping AI filter", zap.Error(err))
			filtering.DisableByName(steps, "ai_rescore", err.Error())
			break
		}
		deps.Scorer = scorer
	}

	return steps, deps
}

func newAIScorer(ctx context.Context, cfg *AIConfig, base *zap.Logger) (ai.Scorer, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	if cfg.Gemini == nil {
		return nil, errors.New("gemini configuration is required when ai is enabled")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		File:  cfg.Gemini.APIKeyFile,
		Value: cfg.Gemini.APIKey,
		Env:   "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file, GEMINI_API_KEY_FILE or GEMINI_API_KEY)", err)
	}

	genLogger := logger.WithAIFields(base, "gemini", cfg.Gemini.Model).With(
		zap.Int("ai_retry_attempts", cfg.Gemini.MaxRetries),
	)

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, genLogger)
	if err != nil {
		return nil, err
	}
	generator.SetMaxRetries(cfg.Gemini.MaxRetries)

	scorer := gemini.NewScorer(generator, cfg.Gemini.MaxLogLength, logger.WithAIFields(base, "gemini", generator.Model()))
	if cfg.Prompt != nil {
		scorer.SetPromptOverrides(*cfg.Prompt)
	}

	return scorer, nil
}
