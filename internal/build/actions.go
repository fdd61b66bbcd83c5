// Package build wires the CLI build command: asset extraction, content scan,
// page assembly and sitemap emission.
package build

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/davyos/siteforge/models"
	"github.com/davyos/siteforge/pkg/assembler"
	"github.com/davyos/siteforge/pkg/assets"
	"github.com/davyos/siteforge/pkg/category"
	"github.com/davyos/siteforge/pkg/htmldoc"
	"github.com/davyos/siteforge/pkg/linkres"
	"github.com/davyos/siteforge/pkg/scanner"
	"github.com/davyos/siteforge/pkg/sitemap"
)

// NewLogger builds the JSON logger the commands share. --quiet keeps errors only.
func NewLogger(c *cli.Context) *slog.Logger {
	logLevel := slog.LevelInfo
	if c.Bool("quiet") {
		logLevel = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}

// LoadConfig reads the config file and applies the shared flag overrides.
func LoadConfig(c *cli.Context, logger *slog.Logger) (*models.SiteConfig, error) {
	cfg, err := models.LoadConfig(c.String("config"))
	if err != nil {
		return nil, err
	}
	if c.IsSet("domain") {
		cfg.Domain = c.String("domain")
	}
	return cfg, nil
}

func BuildAction(c *cli.Context) error {
	logger := NewLogger(c)
	root := c.String("root")

	cfg, err := LoadConfig(c, logger)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(2)
	}

	// The root template is the one input the pipeline cannot proceed without:
	// no template, no asset bundle, no base configuration.
	tpl, err := htmldoc.Load(root, cfg.TemplatePath)
	if err != nil {
		logger.Error("failed to read root template", "file", cfg.TemplatePath, "error", err)
		os.Exit(2)
	}

	bundle := assets.Extract(tpl)
	logger.Info("extracted template assets",
		"nav", bundle.HasNav(), "footer", bundle.HasFooter(),
		"favicons", len(bundle.Favicons), "resources", len(bundle.HeadResources))

	classifier := category.NewClassifier(cfg.Categories)
	scan := &scanner.Scanner{
		RootDir:    root,
		Section:    cfg.ContentDir,
		Domain:     cfg.Domain,
		Classifier: classifier,
		Logger:     logger,
	}
	articles, err := scan.Scan()
	if err != nil {
		logger.Error("content scan failed", "error", err)
		os.Exit(2)
	}
	logger.Info("scanned content", "articles", len(articles))

	asm := &assembler.Assembler{
		RootDir:    root,
		Config:     cfg,
		Assets:     bundle,
		Articles:   articles,
		Classifier: classifier,
		Resolver: &linkres.Resolver{
			RootDir:        root,
			Domain:         cfg.Domain,
			IgnorePrefixes: cfg.IgnoreURLPrefixes,
		},
		Sitemap: sitemap.NewCollector(cfg.Domain, "/"+cfg.ContentDir, cfg.SitemapExclude, cfg.LegacyPriorities),
		Logger:  logger,
	}
	if err := asm.Run(); err != nil {
		return err
	}

	sitemapPath := filepath.Join(root, filepath.FromSlash(cfg.SitemapPath))
	if err := asm.Sitemap.WriteFile(sitemapPath); err != nil {
		return err
	}
	logger.Info("build complete", "sitemap_entries", asm.Sitemap.Len(), "sitemap", cfg.SitemapPath)
	return nil
}
