package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/skillfit/internal/ai/gemini"
	"github.com/spigell/skillfit/internal/audit"
	"github.com/spigell/skillfit/internal/bias"
	"github.com/spigell/skillfit/internal/ingest"
	"github.com/spigell/skillfit/internal/logger"
	"github.com/spigell/skillfit/internal/matcher"
	"github.com/spigell/skillfit/internal/panel"
	"github.com/spigell/skillfit/internal/pipeline"
	"github.com/spigell/skillfit/internal/scoring"
	"github.com/spigell/skillfit/internal/secrets"
	"github.com/spigell/skillfit/internal/semantic"
	"github.com/spigell/skillfit/internal/skills"
)

const (
	app = "skillfit"

	envGeminiAPIKey = "SKILLFIT_GEMINI_API_KEY"
	envDatabaseURL  = "SKILLFIT_DATABASE_URL"

	backendTFIDF  = "tfidf"
	backendGemini = "gemini"
)

type Config struct {
	Catalog    string              `mapstructure:"catalog"`
	Roles      string              `mapstructure:"roles"`
	Extraction matcher.Policy      `mapstructure:"extraction"`
	Semantic   SemanticConfig      `mapstructure:"semantic"`
	Gemini     GeminiConfig        `mapstructure:"gemini"`
	Bias       bias.Config         `mapstructure:"bias"`
	Thresholds pipeline.Thresholds `mapstructure:"thresholds"`
	Personas   []panel.Persona     `mapstructure:"personas"`
	Pipeline   PipelineConfig      `mapstructure:"pipeline"`
	Audit      audit.Config        `mapstructure:"audit"`
}

type SemanticConfig struct {
	Enabled       bool    `mapstructure:"enabled"`
	Backend       string  `mapstructure:"backend"`
	TopK          int     `mapstructure:"top-k"`
	MinSimilarity float64 `mapstructure:"min-similarity"`
}

type GeminiConfig struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
	MaxRetries int    `mapstructure:"max-retries"`
	BatchSize  int    `mapstructure:"batch-size"`
}

type PipelineConfig struct {
	Disabled    []string `mapstructure:"disabled"`
	Parallelism int      `mapstructure:"parallelism"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "skillfit matches resumes against role skill profiles and explains the hiring recommendation",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("catalog", "SKILLFIT_CATALOG"); err != nil {
		log.Fatalf("binding SKILLFIT_CATALOG environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is skillfit.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))

	setDefaults()
}

func setDefaults() {
	def := pipeline.DefaultConfig()

	viper.SetDefault("extraction.confidence-threshold", def.Extraction.ConfidenceThreshold)
	viper.SetDefault("extraction.max-skills", def.Extraction.MaxSkills)
	viper.SetDefault("extraction.mandatory-threshold", def.Extraction.MandatoryThreshold)

	viper.SetDefault("semantic.enabled", true)
	viper.SetDefault("semantic.backend", backendTFIDF)
	viper.SetDefault("semantic.min-similarity", semantic.DefaultMinSimilarity)

	viper.SetDefault("bias.max-adjustment", def.Bias.MaxAdjustment)
	viper.SetDefault("bias.jd-inflation-size", def.Bias.JDInflationSize)
	viper.SetDefault("bias.jd-inflation-bonus", def.Bias.JDInflationBonus)
	viper.SetDefault("bias.min-resume-skills", def.Bias.MinResumeSkills)
	viper.SetDefault("bias.density-score-ceiling", def.Bias.DensityScoreCeiling)
	viper.SetDefault("bias.density-bonus", def.Bias.DensityBonus)
	viper.SetDefault("bias.generic-vocabulary", def.Bias.GenericVocabulary)
	viper.SetDefault("bias.vocabulary-score-ceiling", def.Bias.VocabularyScoreCeiling)
	viper.SetDefault("bias.vocabulary-bonus", def.Bias.VocabularyBonus)

	viper.SetDefault("thresholds.hire", def.Thresholds.Hire)
	viper.SetDefault("thresholds.target", def.Thresholds.Target)

	personas := make([]map[string]any, 0, len(def.Personas))
	for _, p := range def.Personas {
		personas = append(personas, map[string]any{
			"name":         p.Name,
			"risk-penalty": p.RiskPenalty,
			"threshold":    p.Threshold,
		})
	}
	viper.SetDefault("personas", personas)

	viper.SetDefault("pipeline.parallelism", def.Parallelism)

	viper.SetDefault("audit.backend", audit.BackendNone)
	viper.SetDefault("audit.dir", "decisions")
	viper.SetDefault("audit.sqlite-path", app+".db")
}

func initConfig() {
	if versionCmd.CalledAs() != "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// An explicit config must parse. The default one may be absent.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}

func (c *Config) pipelineConfig() pipeline.Config {
	return pipeline.Config{
		Extraction:  c.Extraction,
		Bias:        c.Bias,
		Thresholds:  c.Thresholds,
		Personas:    c.Personas,
		Disabled:    c.Pipeline.Disabled,
		Parallelism: c.Pipeline.Parallelism,
	}
}

// setup builds the logger and decodes the configuration. Failures are fatal.
func setup() (*zap.Logger, *Config) {
	logger, err := logger.New(logger.Options{
		JSON:  viper.GetBool("json"),
		Debug: viper.GetBool("debug"),
	})
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}
	if config == nil {
		logger.Fatal("config is required")
	}

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	return logger, config
}

func loadRoles(config *Config) (*scoring.Table, error) {
	if strings.TrimSpace(config.Roles) == "" {
		return scoring.DefaultTable(), nil
	}
	return scoring.LoadTable(config.Roles)
}

// loadCatalog reads the configured catalog. Without one the vocabulary is
// the union of every role's skills.
func loadCatalog(config *Config, roles *scoring.Table) ([]string, error) {
	if path := strings.TrimSpace(config.Catalog); path != "" {
		catalog, err := skills.LoadCatalog(path)
		if err != nil {
			return nil, err
		}
		return catalog.Names(), nil
	}

	var names []string
	for _, role := range roles.Roles() {
		names = append(names, role.Skills.Sorted()...)
	}
	return skills.NewCatalog(names).Names(), nil
}

func newSearcher(ctx context.Context, config *Config, catalog []string, logger *zap.Logger) (semantic.Searcher, error) {
	backend := strings.TrimSpace(strings.ToLower(config.Semantic.Backend))
	switch backend {
	case "", backendTFIDF:
		return semantic.Build(catalog, semantic.WithMinSimilarity(config.Semantic.MinSimilarity)), nil
	case backendGemini:
	default:
		return nil, fmt.Errorf("unsupported semantic backend: %s", config.Semantic.Backend)
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: config.Gemini.APIKey,
		Env:   envGeminiAPIKey,
		File:  config.Gemini.APIKeyFile,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set gemini.api-key-file or %s)", err, envGeminiAPIKey)
	}

	embedLogger := logger.With(
		zap.String("provider", "gemini"),
		zap.String("model", config.Gemini.Model),
		zap.Int("ai_retry_attempts", config.Gemini.MaxRetries),
	)

	embedder, err := gemini.NewEmbedder(ctx, apiKey, gemini.Config{
		Model:      config.Gemini.Model,
		MaxRetries: config.Gemini.MaxRetries,
	}, embedLogger)
	if err != nil {
		return nil, err
	}

	return semantic.NewEmbeddingSearcher(ctx, embedder, catalog, semantic.EmbeddingConfig{
		BatchSize:     config.Gemini.BatchSize,
		MinSimilarity: &config.Semantic.MinSimilarity,
	})
}

func openStore(ctx context.Context, config *Config) (audit.Store, error) {
	cfg := config.Audit
	if strings.EqualFold(cfg.Backend, audit.BackendPostgres) {
		url, err := secrets.Load(secrets.Source{
			Name:  "database url",
			Value: cfg.DatabaseURL,
			Env:   envDatabaseURL,
		})
		if err != nil {
			return nil, err
		}
		cfg.DatabaseURL = url
	}
	return audit.Open(ctx, cfg)
}

// newEngine wires the engine from config. The returned store may be nil and
// must be closed by the caller otherwise.
func newEngine(ctx context.Context, config *Config, logger *zap.Logger, withStore bool) (*pipeline.Engine, audit.Store, error) {
	roles, err := loadRoles(config)
	if err != nil {
		return nil, nil, fmt.Errorf("loading roles: %w", err)
	}

	catalog, err := loadCatalog(config, roles)
	if err != nil {
		return nil, nil, fmt.Errorf("loading catalog: %w", err)
	}
	logger.Debug("catalog loaded", zap.Int("skills", len(catalog)), zap.Int("roles", roles.Len()))

	opts := []pipeline.Option{
		pipeline.WithRoles(roles),
		pipeline.WithLogger(logger),
		pipeline.WithTopK(config.Semantic.TopK),
	}

	if config.Semantic.Enabled {
		searcher, err := newSearcher(ctx, config, catalog, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("building semantic searcher: %w", err)
		}
		opts = append(opts, pipeline.WithSearcher(searcher))
	} else {
		opts = append(opts, pipeline.WithoutSemantic())
	}

	var store audit.Store
	if withStore {
		store, err = openStore(ctx, config)
		if err != nil {
			return nil, nil, fmt.Errorf("opening audit store: %w", err)
		}
		if store != nil {
			opts = append(opts, pipeline.WithStore(store))
		}
	}

	engine, err := pipeline.NewEngine(catalog, config.pipelineConfig(), opts...)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, nil, err
	}

	return engine, store, nil
}

// readInput reads a document through the provider picked by its extension.
// "-" reads stdin as plain text.
func readInput(ctx context.Context, path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", nil
	}
	return ingest.ExtractFile(ctx, path)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
