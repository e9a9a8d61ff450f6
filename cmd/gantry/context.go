package main

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"gantry/internal/config"
	"gantry/internal/logging"
	"gantry/internal/runindex"
	"gantry/internal/workflow"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
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
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// openIndex connects to the run index. Callers own the returned store.
func (c *commandContext) openIndex() (*runindex.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	store, err := runindex.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open run index: %w", err)
	}
	return store, nil
}

// withOrchestrator builds an orchestrator backed by the run index and hands
// it to fn, closing the index afterwards.
func (c *commandContext) withOrchestrator(fn func(*workflow.Orchestrator) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}

	index, err := c.openIndex()
	var recorder workflow.RunRecorder
	if err != nil {
		// Tracking is best effort; the workflow itself must still run.
		logger.Warn("run index unavailable", "error", err)
	} else {
		recorder = index
		defer func() { _ = index.Close() }()
	}

	return fn(workflow.New(cfg, logger, recorder))
}

// resolveWorkdir picks the explicit --workdir when given, otherwise the most
// recently updated active run from the index.
func (c *commandContext) resolveWorkdir(cmd *cobra.Command, workdirFlag string) (string, error) {
	if strings.TrimSpace(workdirFlag) != "" {
		return workdirFlag, nil
	}

	index, err := c.openIndex()
	if err != nil {
		return "", err
	}
	defer func() { _ = index.Close() }()

	run, err := index.MostRecentActive(cmd.Context())
	if errors.Is(err, runindex.ErrNotFound) {
		return "", errors.New("no active runs; pass --workdir or start a new run with `gantry start`")
	}
	if err != nil {
		return "", err
	}
	return run.Workdir, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
