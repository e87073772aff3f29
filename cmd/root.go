package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/internmatch/internal/advisor"
	"github.com/spigell/internmatch/internal/catalog"
	"github.com/spigell/internmatch/internal/filtering"
	"github.com/spigell/internmatch/internal/logger"
	"github.com/spigell/internmatch/internal/matching"
	"github.com/spigell/internmatch/internal/recommend"
	"github.com/spigell/internmatch/internal/secrets"
)

const (
	app       = "internmatch"
	envPrefix = "INTERNMATCH"
)

type Config struct {
	Catalog     CatalogConfig `mapstructure:"catalog"`
	Ranking     RankingConfig `mapstructure:"ranking"`
	Server      ServerConfig  `mapstructure:"server"`
	ExcludeFile string        `mapstructure:"exclude-file"`
	Exclude     ExcludeConfig `mapstructure:"exclude"`
	SkipFilters []string      `mapstructure:"skip-filters" validate:"dive,oneof=companies exclude_file"`
	Notes       NotesConfig   `mapstructure:"notes"`
}

type CatalogConfig struct {
	Path string `mapstructure:"path" validate:"required_without=URL"`
	URL  string `mapstructure:"url" validate:"omitempty,url"`
}

type RankingConfig struct {
	TopN        int              `mapstructure:"top-n" validate:"gte=0"`
	Parallelism int              `mapstructure:"parallelism" validate:"gte=0,lte=256"`
	Weights     matching.Weights `mapstructure:"weights"`
}

type ServerConfig struct {
	Listen  string `mapstructure:"listen" validate:"required,hostname_port"`
	Metrics bool   `mapstructure:"metrics"`
}

type ExcludeConfig struct {
	Companies []string `mapstructure:"companies"`
}

type NotesConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Gemini  *GeminiConfig `mapstructure:"gemini" validate:"required_if=Enabled true"`
}

type GeminiConfig struct {
	APIKey       string `mapstructure:"api-key"`
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries" validate:"gte=0,lte=10"`
	MaxLogLength int    `mapstructure:"max-log-length" validate:"gte=0"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "internmatch ranks internship postings against a candidate profile",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is internmatch.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("catalog", "", "path to the internship catalog CSV")
	rootCmd.PersistentFlags().String("catalog-url", "", "download the catalog CSV from this URL instead of reading a file")
	rootCmd.PersistentFlags().StringP("exclude-file", "e", "", "file with postings to exclude. Default is unset.")
	rootCmd.PersistentFlags().StringSlice("skip-filter", nil, "filters to turn off for this run: companies, exclude_file")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("catalog.path", rootCmd.PersistentFlags().Lookup("catalog"))
	viper.BindPFlag("catalog.url", rootCmd.PersistentFlags().Lookup("catalog-url"))
	viper.BindPFlag("exclude-file", rootCmd.PersistentFlags().Lookup("exclude-file"))
	viper.BindPFlag("skip-filters", rootCmd.PersistentFlags().Lookup("skip-filter"))

	setDefaults(viper.GetViper())
}

func setDefaults(v *viper.Viper) {
	weights := matching.DefaultWeights()

	v.SetDefault("catalog.path", "internships.csv")
	v.SetDefault("catalog.url", "")
	v.SetDefault("ranking.top-n", matching.DefaultTopN)
	v.SetDefault("ranking.parallelism", 0)
	v.SetDefault("ranking.weights.education", weights.Education)
	v.SetDefault("ranking.weights.skills", weights.Skills)
	v.SetDefault("ranking.weights.sector", weights.Sector)
	v.SetDefault("ranking.weights.location", weights.Location)
	v.SetDefault("server.listen", ":5000")
	v.SetDefault("server.metrics", true)
	v.SetDefault("exclude-file", "")
	v.SetDefault("exclude.companies", []string{})
	v.SetDefault("skip-filters", []string{})
	v.SetDefault("notes.enabled", false)
	v.SetDefault("notes.gemini.api-key", "")
	v.SetDefault("notes.gemini.api-key-file", "")
	v.SetDefault("notes.gemini.model", "")
	v.SetDefault("notes.gemini.max-retries", 2)
	v.SetDefault("notes.gemini.max-log-length", 200)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
}

func initConfig() {
	// A missing .env is fine, a broken one is not.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env: %v", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// Without an explicit --config the defaults are enough to start.
		if cfgFile == "" && errors.As(err, &notFound) {
			return
		}
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	return loadConfig(viper.GetViper())
}

// loadConfig unmarshals and validates the configuration held by v.
func loadConfig(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if err := config.Ranking.Weights.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: ranking.weights: %w", err)
	}

	return &config, nil
}

func newLogger() *zap.Logger {
	l, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	return l
}

// loadCatalog reads the catalog from the configured URL, or from the local
// file when no URL is set.
func loadCatalog(ctx context.Context, config *Config, logger *zap.Logger) (*catalog.Catalog, error) {
	if url := strings.TrimSpace(config.Catalog.URL); url != "" {
		logger.Info("downloading the catalog", zap.String("url", url))
		return catalog.NewFetcher(logger).Fetch(ctx, url)
	}

	logger.Info("reading the catalog", zap.String("path", config.Catalog.Path))
	return catalog.LoadFile(config.Catalog.Path)
}

func prepareFilters(config *Config, logger *zap.Logger) (*filtering.Filtering, error) {
	steps := []filtering.Filter{
		filtering.NewExcludedCompanies(config.Exclude.Companies, logger),
		filtering.NewExcludeFile(config.ExcludeFile, logger),
	}

	filters := filtering.New(steps, logger)
	for _, name := range config.SkipFilters {
		filters.DisableByName(name, "skipped by configuration")
	}

	if err := filters.Validate(); err != nil {
		return nil, fmt.Errorf("validating filters: %w", err)
	}

	for _, status := range filters.Describe() {
		logger.Debug("filter configured",
			zap.String("name", status.Name),
			zap.Bool("enabled", status.Enabled),
			zap.String("reason", status.Reason),
		)
	}

	return filters, nil
}

// prepareService wires the catalog, filters and ranker into a recommend.Service.
func prepareService(ctx context.Context, config *Config, logger *zap.Logger) (*recommend.Service, error) {
	c, err := loadCatalog(ctx, config, logger)
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}

	logger.Info("catalog loaded", zap.Int("postings", c.Len()))

	filters, err := prepareFilters(config, logger)
	if err != nil {
		return nil, err
	}

	ranker := matching.NewRanker(
		matching.NewScorer(config.Ranking.Weights),
		matching.WithParallelism(config.Ranking.Parallelism),
		matching.WithLogger(logger),
	)

	return recommend.New(recommend.Deps{
		Catalog: c,
		Filters: filters,
		Ranker:  ranker,
		Logger:  logger,
	}, config.Ranking.TopN)
}

// newAdvisor returns nil when application notes are disabled.
func newAdvisor(ctx context.Context, config *NotesConfig, logger *zap.Logger) (*advisor.Advisor, error) {
	if config == nil || !config.Enabled || config.Gemini == nil {
		return nil, nil
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		File:  config.Gemini.APIKeyFile,
		Env:   "GEMINI_API_KEY",
		Value: config.Gemini.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set notes.gemini.api-key-file or GEMINI_API_KEY)", err)
	}

	generator, err := advisor.NewGenerator(ctx, apiKey, config.Gemini.Model)
	if err != nil {
		return nil, err
	}

	advisorLogger := logger.With(
		zap.String("provider", "gemini"),
		zap.String("model", generator.Model()),
		zap.Int("max_retries", config.Gemini.MaxRetries),
	)

	return advisor.New(generator, config.Gemini.MaxRetries, config.Gemini.MaxLogLength, advisorLogger), nil
}
