package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/ghpm/internal/service/catalog"
	"github.com/oshokin/ghpm/internal/service/selfupdate"
	"github.com/oshokin/ghpm/internal/service/transfer"
)

var (
	// checkOnly reports the latest version without replacing the binary.
	checkOnly bool

	// selfUpdateCmd replaces the running binary with the latest release.
	selfUpdateCmd = &cobra.Command{
		Use:   "self-update",
		Short: "Update ghpm to the latest release",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			scratchDir, err := transfer.NewScratchDir(settings.ScratchDir)
			if err != nil {
				return err
			}

			defer func() {
				_ = os.RemoveAll(scratchDir)
			}()

			result, err := selfupdate.Run(ctx, &selfupdate.Options{
				Catalog: catalog.NewClient(
					catalog.WithBaseURL(settings.APIURL),
					catalog.WithTimeout(settings.HTTPTimeout),
				),
				Downloader: transfer.NewDownloader(transfer.WithTimeout(settings.HTTPTimeout)),
				ScratchDir: scratchDir,
				CheckOnly:  checkOnly,
			})
			if err != nil {
				return err
			}

			switch {
			case result.UpToDate():
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "ghpm %s is up to date\n", result.Current)
			case result.Updated:
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "ghpm updated from %s to %s\n", result.Current, result.Latest)
			default:
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "ghpm %s is available (running %s)\n", result.Latest, result.Current)
			}

			return err
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	selfUpdateCmd.Flags().BoolVar(&checkOnly, "check", false, "only report whether an update is available")
}
