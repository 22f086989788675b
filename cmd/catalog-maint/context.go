package main

import (
	"context"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/belovedzguard/beloved-api/internal/bootstrap"
	"github.com/belovedzguard/beloved-api/pkg/config"
	"github.com/belovedzguard/beloved-api/pkg/logger"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	log        logger.Logger
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, err := bootstrap.LoadConfig(path)
		if err != nil {
			c.configErr = err
			return
		}
		log, err := bootstrap.NewLogger(cfg.Log)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.log = log
	})
	return c.config, c.configErr
}

func (c *commandContext) logger() logger.Logger {
	if c.log == nil {
		return logger.Default()
	}
	return c.log
}

func (c *commandContext) pool(ctx context.Context) (*pgxpool.Pool, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return bootstrap.OpenPool(ctx, cfg.Postgres)
}
