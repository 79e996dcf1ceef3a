package main

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/uptrace/bun"

	"github.com/JonMunkholm/csvport/internal/core"
	"github.com/JonMunkholm/csvport/internal/store"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create missing tables and indexes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.svc.Migrate(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
			return nil
		},
	}
}

func newEntitiesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "entities",
		Short: "List the entities that can be exported and imported",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ENTITY\tLABEL\tCOLUMNS\tREQUIRED\tKEY")
			for _, info := range a.svc.ListEntities() {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					info.Key,
					info.Label,
					strings.Join(info.ExportColumns, ","),
					strings.Join(info.Required, ","),
					strings.Join(info.NaturalKey, ","),
				)
			}
			return tw.Flush()
		},
	}
}

func newExportCmd(a *app) *cobra.Command {
	var (
		offset  int
		limit   int
		only    []int64
		exclude []int64
		native  bool
		stdout  bool
	)

	cmd := &cobra.Command{
		Use:   "export <entity>",
		Short: "Write an entity to a CSV file in EXPORT_DIR",
		Long: `Write an entity to a CSV file in EXPORT_DIR.

By default rows are read in batches through the ORM and written as a
human-readable CSV. With --native the database's own bulk writer dumps
every column; this requires DB_DRIVER=postgres.`,
		Example: `  csvport export projects
  csvport export users --offset 100 --limit 50
  csvport export projects --exclude-ids 2,3 --stdout
  csvport export users --ids 1,4`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			key := args[0]

			var opts core.ExportOptions
			if cmd.Flags().Changed("offset") {
				opts.Offset = &offset
			}
			if cmd.Flags().Changed("limit") {
				opts.Limit = &limit
			}
			switch {
			case len(only) > 0 && len(exclude) > 0:
				keep, drop := store.OnlyIDs(only...), store.ExcludeIDs(exclude...)
				opts.Scope = func(q *bun.SelectQuery) *bun.SelectQuery { return drop(keep(q)) }
			case len(only) > 0:
				opts.Scope = store.OnlyIDs(only...)
			case len(exclude) > 0:
				opts.Scope = store.ExcludeIDs(exclude...)
			}

			if stdout {
				w := cmd.OutOrStdout()
				if native {
					_, err := a.svc.ExportNativeTo(ctx, key, w, opts)
					return err
				}
				_, err := a.svc.ExportTo(ctx, key, w, opts)
				return err
			}

			var (
				res *core.RunResult
				err error
			)
			if native {
				res, err = a.svc.ExportNative(ctx, key, opts)
			} else {
				res, err = a.svc.Export(ctx, key, opts)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d rows written to %s\n", res.Entity, res.Rows, res.Path)
			return nil
		},
	}

	cmd.Flags().IntVar(&offset, "offset", 0, "Skip this many records")
	cmd.Flags().IntVar(&limit, "limit", 0, "Export at most this many records")
	cmd.Flags().Int64SliceVar(&only, "ids", nil, "Export only records with these ids")
	cmd.Flags().Int64SliceVar(&exclude, "exclude-ids", nil, "Leave out records with these ids")
	cmd.Flags().BoolVar(&native, "native", false, "Use the database's bulk writer (postgres only)")
	cmd.Flags().BoolVar(&stdout, "stdout", false, "Write to standard output instead of a file; the run is not recorded")
	return cmd
}

func newImportCmd(a *app) *cobra.Command {
	var strategy string

	cmd := &cobra.Command{
		Use:   "import <entity> <file>",
		Short: "Load a CSV file into an entity",
		Long: `Load a CSV file into an entity.

Strategies:
  bulk            multi-row inserts flushed every IMPORT_BATCH_SIZE rows
  find-or-create  one lookup per row; rows whose natural key exists are skipped
  native          the database's bulk loader (postgres only)`,
		Example: `  csvport import projects csvs/projects_2020-01-02_08_59_59_000JST.csv
  csvport import users users.csv --strategy find-or-create`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := core.ParseStrategy(strategy)
			if err != nil {
				return err
			}
			res, err := a.svc.Import(cmd.Context(), args[0], args[1], st)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d rows read, %d inserted from %s\n",
				res.Entity, res.Rows, res.Inserted, res.Path)
			return nil
		},
	}

	cmd.Flags().StringVar(&strategy, "strategy", string(core.StrategyBulk), "Import strategy: bulk, find-or-create or native")
	return cmd
}

func newHistoryCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent export and import runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runs, err := a.svc.History(cmd.Context(), limit)
			if err != nil {
				return err
			}
			zone := a.svc.Zone()
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "STARTED\tENTITY\tDIRECTION\tSTRATEGY\tROWS\tFILE\tERROR")
			for _, r := range runs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
					zone.Human(r.StartedAt), r.Entity, r.Direction, r.Strategy, r.Rows, r.FileName, r.Error)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Number of runs to show")
	return cmd
}

func newResetCmd(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every project, user, membership and recorded run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return withCode(exitUsage, errors.New("reset deletes all data; pass --yes to confirm"))
			}
			if err := a.svc.Reset(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "all records deleted")
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm deletion")
	return cmd
}
