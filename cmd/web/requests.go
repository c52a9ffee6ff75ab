package main

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"
	"virtual-env-server/internal/models"
	"virtual-env-server/internal/repository"

	"github.com/spf13/cobra"
)

type requestsOptions struct {
	accessDB string
	limit    int
}

func newRequestsCommand() *cobra.Command {
	var opts requestsOptions

	cmd := &cobra.Command{
		Use:   "requests [OPTIONS]",
		Short: "List requests recorded with --access-db",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRequests(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.accessDB, "access-db", "", "SQLite database written by the server")
	flags.IntVarP(&opts.limit, "limit", "n", 20, "Number of requests to show")

	return cmd
}

func runRequests(cmd *cobra.Command, opts requestsOptions) error {
	if opts.accessDB == "" {
		return errors.New("--access-db is required")
	}

	repo, err := repository.NewSQLiteRepository(opts.accessDB)
	if err != nil {
		return err
	}
	defer repo.Close()

	ctx := cmd.Context()
	records, err := repo.ListRecent(ctx, opts.limit)
	if err != nil {
		return err
	}
	counts, err := repo.CountByClass(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tMETHOD\tPATH\tSTATUS\tBYTES\tDURATION\tID")
	for _, rec := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
			rec.CreatedAt.Format(time.RFC3339),
			rec.Method,
			rec.Path,
			rec.Status,
			rec.Bytes,
			rec.Duration.Round(time.Microsecond),
			rec.ID,
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nok=%d not_found=%d error=%d\n",
		counts[models.ClassOK], counts[models.ClassNotFound], counts[models.ClassError])
	return nil
}
