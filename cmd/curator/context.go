package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"curator/internal/config"
	"curator/internal/history"
	"curator/internal/ipc"
	"curator/internal/logging"
	"curator/internal/notifications"
	"curator/internal/services/emby"
	"curator/internal/services/tmdb"
	"curator/internal/syncer"
)

type commandContext struct {
	socketFlag *string
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(socketFlag, configFlag *string) *commandContext {
	return &commandContext{
		socketFlag: socketFlag,
		configFlag: configFlag,
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
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) socketPath() string {
	if c.socketFlag != nil && strings.TrimSpace(*c.socketFlag) != "" {
		return *c.socketFlag
	}
	if cfg, err := c.ensureConfig(); err == nil && cfg.Paths.SocketPath != "" {
		return cfg.Paths.SocketPath
	}
	if socket, err := config.ExpandPath("~/.local/share/curator/state/curatord.sock"); err == nil {
		return socket
	}
	return filepath.Join(os.TempDir(), "curatord.sock")
}

func (c *commandContext) withClient(fn func(*ipc.Client) error) error {
	client, err := c.dialClient()
	if err != nil {
		return err
	}
	defer client.Close()
	return fn(client)
}

func (c *commandContext) dialClient() (*ipc.Client, error) {
	socket := c.socketPath()
	client, err := ipc.Dial(socket)
	if err != nil {
		return nil, wrapDialError(err, socket)
	}
	return client, nil
}

func wrapDialError(err error, socket string) error {
	switch {
	case errors.Is(err, syscall.ENOENT) || os.IsNotExist(err):
		return fmt.Errorf("connect to daemon: socket %s not found; start the daemon with `curatord`", socket)
	case errors.Is(err, syscall.ECONNREFUSED):
		return fmt.Errorf("connect to daemon: socket %s refused the connection; verify the daemon is running", socket)
	default:
		return fmt.Errorf("connect to daemon: %w", err)
	}
}

// directSyncer builds a syncer that talks to Emby and TMDB without the
// daemon. Collection and criteria edits use it so they work even while the
// daemon is offline.
func (c *commandContext) directSyncer(withStore bool) (*syncer.Syncer, func(), error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}

	library, err := emby.NewClient(cfg.Emby.URL, cfg.Emby.APIKey)
	if err != nil {
		return nil, nil, fmt.Errorf("emby client: %w", err)
	}
	enricher, err := tmdb.New(cfg.TMDB.APIKey, cfg.TMDB.BaseURL, cfg.TMDB.Language)
	if err != nil {
		return nil, nil, fmt.Errorf("tmdb client: %w", err)
	}

	var store *history.Store
	cleanup := func() {}
	if withStore {
		store, err = history.Open(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("open history store: %w", err)
		}
		cleanup = func() { store.Close() }
	}

	s, err := syncer.New(cfg, library, enricher, store, notifications.NewService(cfg), logging.NewNop())
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return s, cleanup, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
