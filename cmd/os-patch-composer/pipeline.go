package main

import (
	"context"
	"fmt"

	"github.com/open-edge-platform/os-patch-composer/internal/config"
	"github.com/open-edge-platform/os-patch-composer/internal/patch"
	"github.com/open-edge-platform/os-patch-composer/internal/repo"
	"github.com/open-edge-platform/os-patch-composer/internal/utils/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Flags shared by every command that loads sources
var (
	inputFormat  string = ""
	keyringPath  string = ""
	showProgress bool   = false
)

// addSourceFlags registers the source loading flags on fs.
func addSourceFlags(fs *pflag.FlagSet) {
	fs.StringVar(&inputFormat, "input-format", "",
		"Decode every source with this format (dump-json, dump-yaml, updateinfo, rpm-md)")
	fs.StringVar(&keyringPath, "keyring", "",
		"Armored OpenPGP keyring; every source must carry a detached .asc signature")
	fs.BoolVar(&showProgress, "progress", false,
		"Show a progress bar while loading sources")
}

// sourceCompletion completes SOURCE arguments with files of known formats.
func sourceCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return []string{"json", "yaml", "yml", "xml", "repo", "gz", "zst", "xz"}, cobra.ShellCompDirectiveFilterFileExt
}

// runPipeline loads the sources and extracts their patches.
func runPipeline(cmd *cobra.Command, sources []string) (repo.Repositories, *patch.Result, error) {
	log := logger.Logger()
	h := config.NewConfigHelpers(config.Global())

	keyring := h.Keyring()
	if cmd.Flags().Changed("keyring") {
		keyring = keyringPath
	}

	opts := []repo.Option{
		repo.WithHTTPClient(repo.NewSecureHTTPClient(h.Timeout())),
		repo.WithLogger(log),
	}
	if inputFormat != "" {
		opts = append(opts, repo.WithFormat(inputFormat))
	}
	if keyring != "" {
		kr, err := repo.ReadKeyringFile(keyring)
		if err != nil {
			return nil, nil, err
		}
		log.Debugf("verifying signatures with %d keys from %s", len(kr), keyring)
		opts = append(opts, repo.WithKeyring(kr))
	}
	if showProgress {
		opts = append(opts, repo.WithProgress(cmd.ErrOrStderr()))
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	repos, err := repo.NewLoader(opts...).LoadAll(ctx, sources, h.Workers())
	if err != nil {
		return nil, nil, fmt.Errorf("loading sources: %w", err)
	}

	res, err := patch.New(patch.WithLogger(log)).Extract(repos)
	if err != nil {
		return nil, nil, err
	}
	log.Infof("extracted %d patches from %d sources", len(res.Patches), len(repos))
	return repos, res, nil
}
