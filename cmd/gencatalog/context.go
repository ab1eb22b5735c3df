package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"gencatalog/internal/cache"
	"gencatalog/internal/config"
	"gencatalog/internal/gencode"
	"gencatalog/internal/logging"
	"gencatalog/internal/metrics"
	"gencatalog/internal/ucsc"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger

	metrics *metrics.Metrics

	storeOnce sync.Once
	store     *cache.Store
	storeErr  error
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
		metrics:      metrics.New(nil),
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
			cfg.Logging.Level = strings.ToLower(strings.TrimSpace(*c.logLevelFlag))
			if err := cfg.Validate(); err != nil {
				c.configErr = err
				return
			}
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) log() *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg, _ := c.ensureConfig()
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			logger = logging.NewNop()
		}
		c.logger = logger
	})
	return c.logger
}

func (c *commandContext) cacheStore() (*cache.Store, error) {
	c.storeOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.storeErr = err
			return
		}
		c.store, c.storeErr = cache.Open(cfg.Cache.Dir,
			cache.WithLogger(c.log()),
			cache.WithMetrics(c.metrics))
	})
	return c.store, c.storeErr
}

func (c *commandContext) policies() (cache.Policy, cache.Policy) {
	cfg, _ := c.ensureConfig()
	if cfg == nil {
		return cache.LongLived, cache.ShortLived
	}
	return cache.LongLived.WithTTL(cfg.LongTTL()), cache.ShortLived.WithTTL(cfg.ShortTTL())
}

// newProvider builds an uninitialized provider wired to the cache and the
// UCSC peer.
func (c *commandContext) newProvider() (*gencode.Provider, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	store, err := c.cacheStore()
	if err != nil {
		return nil, err
	}
	longPolicy, shortPolicy := c.policies()

	peerClient, err := ucsc.New(cfg.UCSC.APIURL, cfg.UCSC.DownloadBaseURL,
		ucsc.WithHTTPClient(&http.Client{Timeout: cfg.UCSCTimeout()}),
		ucsc.WithCache(store, longPolicy),
		ucsc.WithLogger(c.log()))
	if err != nil {
		return nil, err
	}
	return gencode.NewProvider(gencode.Options{
		BaseURL:     cfg.Gencode.BaseURL,
		Timeout:     cfg.GencodeTimeout(),
		Peer:        peerClient,
		Cache:       store,
		LongPolicy:  longPolicy,
		ShortPolicy: shortPolicy,
		Logger:      c.log(),
		Metrics:     c.metrics,
	})
}

// openProvider returns a fully initialized provider.
func (c *commandContext) openProvider(ctx context.Context) (*gencode.Provider, error) {
	provider, err := c.newProvider()
	if err != nil {
		return nil, err
	}
	if err := provider.Initialize(ctx); err != nil {
		return nil, fmt.Errorf("initialize gencode provider: %w", err)
	}
	return provider, nil
}

// close exports metrics and releases the cache store.
func (c *commandContext) close() error {
	var errs []error
	if cfg := c.config; cfg != nil && cfg.Metrics.Textfile != "" {
		if err := c.metrics.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			errs = append(errs, err)
		}
	}
	if c.store != nil {
		if err := c.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close cache: %w", err))
		}
		c.store = nil
	}
	return errors.Join(errs...)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
