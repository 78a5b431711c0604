package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/silicogen/postengine"
)

// version is set at build time via ldflags.
var version = "dev"

var cfgFile string

// appConfig is filled by initializeConfig before any command runs.
var appConfig fileConfig

// fileConfig mirrors config.yaml. Every key can also be set through a
// POSTENGINE_ environment variable.
type fileConfig struct {
	Name        string `mapstructure:"name"`
	URL         string `mapstructure:"url"`
	Description string `mapstructure:"description"`
	Author      string `mapstructure:"author"`

	ContentDir      string `mapstructure:"content_dir"`
	StaticDir       string `mapstructure:"static_dir"`
	FallbackAuthor  string `mapstructure:"fallback_author"`
	FrontmatterMode string `mapstructure:"frontmatter_mode"`
	CodeStyle       string `mapstructure:"code_style"`

	Addr                  string `mapstructure:"addr"`
	DatabasePath          string `mapstructure:"database_path"`
	AnalyticsEnabled      bool   `mapstructure:"analytics_enabled"`
	AnalyticsDatabasePath string `mapstructure:"analytics_database_path"`

	AdminPassword string `mapstructure:"admin_password"`
	SessionSecret string `mapstructure:"session_secret"`
	CookieSecure  bool   `mapstructure:"cookie_secure"`

	SnapshotTTL time.Duration `mapstructure:"snapshot_ttl"`
	Watch       bool          `mapstructure:"watch"`
	LogLevel    string        `mapstructure:"log_level"`
}

// SiteConfig converts the file settings into the app configuration.
func (c fileConfig) SiteConfig() postengine.SiteConfig {
	return postengine.SiteConfig{
		Name:                  c.Name,
		URL:                   c.URL,
		Description:           c.Description,
		Author:                c.Author,
		ContentDir:            c.ContentDir,
		FallbackAuthor:        c.FallbackAuthor,
		FrontmatterMode:       c.FrontmatterMode,
		CodeStyle:             c.CodeStyle,
		Addr:                  c.Addr,
		DatabasePath:          c.DatabasePath,
		AnalyticsEnabled:      c.AnalyticsEnabled,
		AnalyticsDatabasePath: c.AnalyticsDatabasePath,
		AdminPassword:         c.AdminPassword,
		SessionSecret:         c.SessionSecret,
		CookieSecure:          c.CookieSecure,
		SnapshotTTL:           c.SnapshotTTL,
		WatchContent:          c.Watch,
		LogLevel:              c.LogLevel,
	}
}

var rootCmd = &cobra.Command{
	Use:   "postengine",
	Short: "A Markdown blog engine built with Go, Echo, and goldmark",
	Long: `postengine serves a blog straight from a directory of Markdown files.
Posts are named YYYY-MM-DD_Title.md and may start with a --- frontmatter block.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeConfig(cmd)
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.AddCommand(serveCmd, postsCmd, newCmd, versionCmd)
}

func newViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("name", "Blog")
	v.SetDefault("url", "http://localhost:3000")
	v.SetDefault("description", "")
	v.SetDefault("author", "")
	v.SetDefault("content_dir", "content/blog")
	v.SetDefault("static_dir", "public")
	v.SetDefault("fallback_author", "")
	v.SetDefault("frontmatter_mode", "tolerant")
	v.SetDefault("code_style", "onedark")
	v.SetDefault("addr", ":3000")
	v.SetDefault("database_path", "data/site.db")
	v.SetDefault("analytics_enabled", false)
	v.SetDefault("analytics_database_path", "data/analytics.db")
	v.SetDefault("admin_password", "")
	v.SetDefault("session_secret", "")
	v.SetDefault("cookie_secure", false)
	v.SetDefault("snapshot_ttl", "5m")
	v.SetDefault("watch", false)
	v.SetDefault("log_level", "info")

	v.SetEnvPrefix("POSTENGINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// initializeConfig reads config.yaml (or --config) and the environment into
// appConfig. A missing default config file is not an error.
func initializeConfig(cmd *cobra.Command) error {
	v := newViper()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || cfgFile != "" {
			return fmt.Errorf("read config: %w", err)
		}
	} else if cmd.Name() == serveCmd.Name() {
		fmt.Fprintln(cmd.ErrOrStderr(), "Using config file:", v.ConfigFileUsed())
	}

	if err := v.Unmarshal(&appConfig); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the postengine version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintf(cmd.OutOrStdout(), "postengine %s\n", version)
		return nil
	},
}
