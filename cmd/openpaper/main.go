// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the openpaper CLI. It finds
// open-access papers across Semantic Scholar, arXiv and OpenAlex, ranks
// them against a title, and downloads the ones a user picks.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/openpaper/internal/secrets"
	"github.com/pdiddy/openpaper/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

const (
	defaultStorageRoot = "downloads"
	defaultTimeout     = 60 * time.Second
	defaultUserAgent   = "openpaper/0.1"
	defaultThreshold   = 5
	secretsDir         = ".secrets/"
)

// logger is built in PersistentPreRunE once flags are parsed.
var logger = log.New(os.Stderr)

var rootCmd = &cobra.Command{
	Use:   "openpaper",
	Short: "Find and download open-access research papers",
	Long: `openpaper searches Semantic Scholar, arXiv and OpenAlex for papers matching
a title, author, category or affiliation, ranks the candidates by how closely
their titles match, and downloads the open-access ones you select.

Downloads land under the storage root as <id>/paper.pdf with a metadata.json
beside it, and are indexed in manifest.json. Candidates that could not be
downloaded are kept in unavailable.json, grouped by the query that found them.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		logger = newLogger(verbose)

		creds, err := secrets.LoadCredentials(secretsDir)
		if err != nil {
			return err
		}
		// Defaults sit below config file and environment.
		if creds.SemanticScholarAPIKey != "" {
			viper.SetDefault("semantic_scholar.api_key", creds.SemanticScholarAPIKey)
		}
		if creds.OpenAlexEmail != "" {
			viper.SetDefault("openalex.email", creds.OpenAlexEmail)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./openpaper.yaml or ~/.config/openpaper/openpaper.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().String("storage-root", "", "directory for downloaded papers (default \"downloads\")")
	rootCmd.PersistentFlags().Duration("timeout", 0, "HTTP request timeout (default 60s)")

	viper.BindPFlag("storage_root", rootCmd.PersistentFlags().Lookup("storage-root"))
	viper.BindPFlag("http.timeout", rootCmd.PersistentFlags().Lookup("timeout"))

	setDefaults(viper.GetViper())
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("storage_root", defaultStorageRoot)
	v.SetDefault("http.timeout", defaultTimeout)
	v.SetDefault("http.user_agent", defaultUserAgent)
	v.SetDefault("semantic_scholar.rate", 1.0)
	v.SetDefault("semantic_scholar.burst", 1)
	v.SetDefault("resolve.threshold", defaultThreshold)
	v.SetDefault("search.limit", types.DefaultLimit)
	v.SetDefault("download.delay", time.Duration(0))
}

func initConfig() {
	if err := secrets.LoadEnv(".env"); err != nil {
		fmt.Fprintln(os.Stderr, "warning:", err)
	}

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("openpaper")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "openpaper"))
		}
	}

	bindEnv(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// bindEnv maps OPENPAPER_<KEY> onto every key, plus the unprefixed
// variable names the credentials are usually exported under.
func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix("OPENPAPER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.BindEnv("semantic_scholar.api_key", "OPENPAPER_SEMANTIC_SCHOLAR_API_KEY", secrets.SemanticScholarKeyEnv)
	v.BindEnv("openalex.email", "OPENPAPER_OPENALEX_EMAIL", secrets.OpenAlexEmailEnv)
	v.BindEnv("storage_root", "OPENPAPER_STORAGE_ROOT", "DOWNLOAD_DIR")
}

func newLogger(verbose bool) *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		ReportTimestamp: true,
		Prefix:          "openpaper",
	})
}

func httpConfig(v *viper.Viper) types.HTTPConfig {
	return types.HTTPConfig{
		Timeout:   v.GetDuration("http.timeout"),
		UserAgent: v.GetString("http.user_agent"),
	}
}

func discoveryConfig(v *viper.Viper) types.DiscoveryConfig {
	return types.DiscoveryConfig{
		HTTPConfig:            httpConfig(v),
		SemanticScholarAPIKey: v.GetString("semantic_scholar.api_key"),
		SemanticScholarRate:   v.GetFloat64("semantic_scholar.rate"),
		SemanticScholarBurst:  v.GetInt("semantic_scholar.burst"),
		OpenAlexEmail:         v.GetString("openalex.email"),
	}
}

func downloadConfig(v *viper.Viper) types.DownloadConfig {
	return types.DownloadConfig{
		HTTPConfig:  httpConfig(v),
		StorageRoot: v.GetString("storage_root"),
		Delay:       v.GetDuration("download.delay"),
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
