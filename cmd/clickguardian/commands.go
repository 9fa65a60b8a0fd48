package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"clickguardian/internal/core/counter"
	"clickguardian/internal/platform"
	"clickguardian/internal/storage"

	"github.com/spf13/cobra"
)

func newStatusCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the persisted click counter and settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := storage.NewStore(opts.statePath, opts.logger.Named("store"))
			document, err := store.Read()
			if errors.Is(err, os.ErrNotExist) {
				document = storage.DefaultDocument(time.Now())
				fmt.Fprintf(cmd.OutOrStdout(), "No state file at %s, showing defaults.\n", store.Path())
			} else if err != nil {
				return err
			}

			state, rolled := counter.Reconcile(document.Counter, time.Now())
			config := document.Config
			out := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(out, "Clicks\t%d/%d\n", state.Count, config.ClickLimit)
			fmt.Fprintf(out, "Month\t%04d-%02d\n", state.ResetYear, int(state.ResetMonth))
			if rolled {
				fmt.Fprintf(out, "\t(new month, counter restarts on the next click)\n")
			}
			fmt.Fprintf(out, "Unlock time\t%s\n", config.UnlockDuration)
			fmt.Fprintf(out, "Block clicks\t%s\n", onOff(config.BlockClicks))
			fmt.Fprintf(out, "Grace period\t%d\n", config.GracePeriod)
			fmt.Fprintf(out, "Tray icon\t%s\n", onOff(config.ShowTrayIcon))
			fmt.Fprintf(out, "Exit button\t%s\n", onOff(config.ShowExitButton))
			fmt.Fprintf(out, "Autostart\t%s\n", onOff(config.RegisterForReboot))
			fmt.Fprintf(out, "Redirect on unlock\t%s\n", onOff(config.RedirectOnUnlock))
			return out.Flush()
		},
	}
}

func newHistoryCommand(opts *options) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent blocking episodes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			journal, err := storage.OpenJournal(opts.historyPath, opts.logger.Named("journal"))
			if err != nil {
				return err
			}
			defer journal.Close()

			episodes, err := journal.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(episodes) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No episodes recorded.")
				return nil
			}

			out := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(out, "STARTED\tDURATION\tLIMIT\tCOUNT\tRESOLUTION\tID")
			for _, episode := range episodes {
				duration, resolution := "-", "open"
				if !episode.Open() {
					duration = episode.EndedAt.Sub(episode.StartedAt).Round(time.Second).String()
					resolution = episode.Resolution
				}
				fmt.Fprintf(out, "%s\t%s\t%d\t%d\t%s\t%s\n",
					episode.StartedAt.Local().Format(time.DateTime),
					duration,
					episode.Limit,
					episode.CountAtEnd,
					resolution,
					episode.ID)
			}
			return out.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of episodes to show")
	return cmd
}

func newResetCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Zero the monthly click counter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			guard, err := platform.AcquireSingleInstance(appName)
			if err != nil {
				return fmt.Errorf("%s is running, exit it before resetting", appName)
			}
			defer guard.Release()

			store := storage.NewStore(opts.statePath, opts.logger.Named("store"))
			document := store.Load()
			document.Counter = counter.New(document.Config.ClickLimit, document.Config.GracePeriod, time.Now())
			if err := store.Save(document); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Click counter reset (limit %d).\n", document.Config.ClickLimit)
			return nil
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}

func onOff(value bool) string {
	if value {
		return "on"
	}
	return "off"
}
