package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hyperjump/kotae/internal/cli"
	"github.com/hyperjump/kotae/internal/config"
)

const (
	defaultConfigPath = "/usr/local/etc/kotae/config.yaml"
	defaultServerURL  = "http://localhost:8000"
)

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	envFile    string
	debug      bool
	serverURL  string
	output     string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "kotae",
		Short: "Kotae answers questions about your documents",
		Long: `Kotae is a document question-answering service. Upload plain-text documents,
then ask questions: answers are grounded on the most relevant passages and cite
the documents they come from.

Run "kotae server" to start the HTTP API; the other commands talk to a running server.`,
		SilenceUsage: true,
		Version:      version,
	}
	cmd.SetVersionTemplate("kotae version {{.Version}}\n")

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", defaultConfigPath, "config file path")
	flags.StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before the config")
	flags.BoolVar(&opts.debug, "debug", false, "enable debug logging")
	flags.StringVar(&opts.serverURL, "server", defaultServerURL, "server URL for client commands")
	flags.StringVarP(&opts.output, "output", "o", "text", "output format: text or json")

	cmd.AddCommand(
		newServerCmd(opts),
		newUploadCmd(opts),
		newAskCmd(opts),
		newSummarizeCmd(opts),
		newDocumentsCmd(opts),
		newDeleteCmd(opts),
		newAnalyticsCmd(opts),
		newHealthCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "kotae version %s\n", version)
		},
	}
}

func (o *rootOptions) outputFormat() (cli.OutputFormat, error) {
	return cli.ParseOutputFormat(o.output)
}

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory, so "kotae server" run from a project dir uses
// that project's config. Returns the config and the path that was actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}
