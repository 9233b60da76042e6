// Command harness serves Captive Web View content with the command bridge
// behind it. Positional arguments are content directories, searched in
// order before the built-in library.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/omnissa-archive/captive-web-view/internal/config"
	"github.com/omnissa-archive/captive-web-view/internal/keystore"
	"github.com/omnissa-archive/captive-web-view/internal/logging"
	"github.com/omnissa-archive/captive-web-view/internal/screens"
	"github.com/omnissa-archive/captive-web-view/internal/server"
	"github.com/omnissa-archive/captive-web-view/web"
)

var rootCmd = &cobra.Command{
	Use:   "harness [directory ...]",
	Short: "Captive Web View development harness",
	Long: `Serve Captive Web View applications from one or more content
directories, with the JSON command bridge and the demonstration screens
behind them. Settings come from CAPTIVE_ environment variables; flags
override them.`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func run(command *cobra.Command, arguments []string) error {
	loaded, err := config.Load()
	if err != nil {
		return err
	}
	flags := command.Flags()
	if flags.Changed("port") {
		loaded.Port, _ = flags.GetInt("port")
	}
	if flags.Changed("storage") {
		loaded.Storage, _ = flags.GetString("storage")
	}
	if flags.Changed("timeout") {
		loaded.LoadVisibilityTimeout, _ = flags.GetInt("timeout")
	}
	if flags.Changed("log-level") {
		loaded.LogLevel, _ = flags.GetString("log-level")
	}
	loaded.Directories = append(arguments, loaded.Directories...)

	logger := logging.Setup(loaded.LogLevel)

	if err := os.MkdirAll(loaded.Storage, 0o700); err != nil {
		return fmt.Errorf("storage directory couldn't be created: %w", err)
	}
	store, err := keystore.Open(loaded.KeyringService, loaded.Storage)
	if err != nil {
		return err
	}

	harness, err := server.New(server.Options{
		Directories:           loaded.Directories,
		Library:               web.Library(),
		Registry:              screens.Default(store),
		Storage:               loaded.Storage,
		LoadVisibilityTimeout: loaded.LoadVisibilityTimeout,
		Logger:                logger,
	})
	if err != nil {
		return err
	}
	return harness.ListenAndServe(fmt.Sprintf("localhost:%d", loaded.Port))
}

func init() {
	flags := rootCmd.Flags()
	flags.IntP("port", "p", 8001, "port number")
	flags.String("storage", "", "storage directory for the write command and key store")
	flags.Int("timeout", 10, "load visibility timeout, seconds")
	flags.String("log-level", "info", "debug, info, warn or error")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
