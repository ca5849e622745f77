// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/content-engine/internal/ai"
	"github.com/pdiddy/content-engine/internal/history"
	"github.com/pdiddy/content-engine/internal/logging"
	"github.com/pdiddy/content-engine/internal/research"
	"github.com/pdiddy/content-engine/internal/schedule"
	"github.com/pdiddy/content-engine/internal/secrets"
	"github.com/pdiddy/content-engine/internal/source"
	"github.com/pdiddy/content-engine/internal/tenant"
	"github.com/pdiddy/content-engine/internal/workflow"
	"github.com/pdiddy/content-engine/pkg/types"
)

const defaultUserAgent = "content-engine/0.1"

// setDefaults registers every config key so that environment variables
// reach viper.Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("ai.provider", string(types.ProviderOpenAI))
	v.SetDefault("ai.model", "")
	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.base_url", "")
	v.SetDefault("ai.max_tokens", 2048)
	v.SetDefault("ai.timeout", 60*time.Second)

	// Synchronous actor runs routinely take more than a minute.
	v.SetDefault("source.provider", string(types.SourceApify))
	v.SetDefault("source.timeout", 180*time.Second)
	v.SetDefault("source.user_agent", defaultUserAgent)
	v.SetDefault("source.max_retries", 3)
	v.SetDefault("source.apify.token", "")
	v.SetDefault("source.apify.base_url", "")
	v.SetDefault("source.apify.search_actor", source.DefaultSearchActor)
	v.SetDefault("source.apify.profile_actor", source.DefaultProfileActor)
	v.SetDefault("source.mastodon.instance", "")
	v.SetDefault("source.mastodon.access_token", "")
	v.SetDefault("source.feeds", []string{})
	v.SetDefault("source.fetch_articles", false)

	v.SetDefault("news.timeout", 30*time.Second)
	v.SetDefault("news.user_agent", defaultUserAgent)
	v.SetDefault("news.max_retries", 3)
	v.SetDefault("news.language", "es")
	v.SetDefault("news.max_items", 3)

	v.SetDefault("store.dir", "data")
	v.SetDefault("tenants_file", "tenants.yaml")
}

// loadConfig decodes the merged configuration and fills credentials left
// empty from the secrets directory.
func loadConfig(v *viper.Viper, s secrets.Secrets) (types.Config, error) {
	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decoding config: %w", err)
	}
	resolveSecrets(&cfg, s)
	return cfg, nil
}

// resolveSecrets fills API keys from s. Values set in the config file or
// environment take precedence.
func resolveSecrets(cfg *types.Config, s secrets.Secrets) {
	key := secrets.OpenAIKey
	if cfg.AI.Provider == types.ProviderClaude {
		key = secrets.AnthropicKey
	}
	cfg.AI.APIKey = s.Get(key, cfg.AI.APIKey)
	cfg.Source.Apify.Token = s.Get(secrets.ApifyToken, cfg.Source.Apify.Token)
	cfg.Source.Mastodon.AccessToken = s.Get(secrets.MastodonToken, cfg.Source.Mastodon.AccessToken)
}

// app holds the components shared by the subcommands. Gateways are built on
// demand so that commands which only read the store need no credentials.
type app struct {
	cfg    types.Config
	logger *slog.Logger
	store  *history.Store
}

func newApp() (*app, error) {
	cfg, err := loadConfig(viper.GetViper(), loadedSecrets)
	if err != nil {
		return nil, err
	}
	logger := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)

	store, err := history.NewStore(cfg.Store, logger)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, logger: logger, store: store}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

func (a *app) generator() (*ai.Generator, error) {
	c, err := ai.New(a.cfg.AI, a.logger)
	if err != nil {
		return nil, err
	}
	return ai.NewGenerator(c, a.logger), nil
}

func (a *app) source() (source.Gateway, error) {
	return source.New(a.cfg.Source, a.logger)
}

func (a *app) tenants() (*tenant.Registry, error) {
	return tenant.Load(a.cfg.TenantsFile)
}

// scheduler wires the full acquisition and generation workflow.
func (a *app) scheduler() (*schedule.Scheduler, error) {
	src, err := a.source()
	if err != nil {
		return nil, err
	}
	gen, err := a.generator()
	if err != nil {
		return nil, err
	}
	runner := workflow.NewRunner(src, gen, a.store, a.logger)
	return schedule.New(runner, a.store, a.logger), nil
}

func (a *app) researcher() (*research.Researcher, error) {
	src, err := a.source()
	if err != nil {
		return nil, err
	}
	gen, err := a.generator()
	if err != nil {
		return nil, err
	}
	news := research.NewNewsFinder(a.cfg.News)
	return research.New(src, news, gen, a.store, a.logger), nil
}
