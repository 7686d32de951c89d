package command

import (
	"fmt"
	"io"
	"log"

	"github.com/adamavenir/amelie/internal/core"
	"github.com/adamavenir/amelie/internal/db"
	"github.com/adamavenir/amelie/internal/favorites"
	"github.com/adamavenir/amelie/internal/guideclient"
	"github.com/adamavenir/amelie/internal/session"
	"github.com/spf13/cobra"
)

const dotenvFile = ".env"

// CommandContext provides shared command resources.
type CommandContext struct {
	Settings   core.Settings
	JSONMode   bool
	Logger     *log.Logger
	Client     *guideclient.Client
	Store      *session.Store
	Favorites  *favorites.Sync
	Controller *session.Controller
	History    *db.History
}

// GetContext resolves settings and wires a session for a command. The
// history database is opened when withHistory is set; if it cannot be
// opened the session runs without it.
func GetContext(cmd *cobra.Command, withHistory bool) (*CommandContext, error) {
	jsonMode, _ := cmd.Flags().GetBool("json")

	settings, err := resolveSettings(cmd)
	if err != nil {
		return nil, err
	}
	logger := newLogger(cmd)

	client, err := guideclient.New(settings.APIBase,
		guideclient.WithTimeout(settings.Timeout),
		guideclient.WithLogger(logger),
		guideclient.WithUserAgent(AppName+"/"+Version),
	)
	if err != nil {
		return nil, err
	}

	store := session.NewStore()
	favSync := favorites.New(client, store, logger)
	controller := session.NewController(store, client, favSync, logger)

	ctx := &CommandContext{
		Settings:   settings,
		JSONMode:   jsonMode,
		Logger:     logger,
		Client:     client,
		Store:      store,
		Favorites:  favSync,
		Controller: controller,
	}

	if withHistory {
		conn, err := db.OpenHistory(settings.HistoryPath)
		if err != nil {
			logger.Printf("guide history disabled: %v", err)
		} else {
			ctx.History = db.NewHistory(conn)
			controller.History = ctx.History
		}
	}
	return ctx, nil
}

// Close releases the history database.
func (c *CommandContext) Close() {
	if c.History != nil {
		_ = c.History.Close()
	}
}

func resolveSettings(cmd *cobra.Command) (core.Settings, error) {
	settings, err := core.LoadSettings(dotenvFile)
	if err != nil {
		return core.Settings{}, err
	}
	if api, _ := cmd.Flags().GetString("api"); api != "" {
		settings.APIBase = api
	}
	if raw, _ := cmd.Flags().GetString("timeout"); raw != "" {
		timeout, err := core.ParseTimeout(raw)
		if err != nil {
			return core.Settings{}, fmt.Errorf("--timeout: %w", err)
		}
		settings.Timeout = timeout
	}
	return settings, nil
}

func newLogger(cmd *cobra.Command) *log.Logger {
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		return log.New(cmd.ErrOrStderr(), "["+AppName+"] ", log.LstdFlags)
	}
	return log.New(io.Discard, "", 0)
}
