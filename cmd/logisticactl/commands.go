package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"logistica/internal/buildinfo"
	"logistica/internal/config"
	"logistica/internal/planner"
	"logistica/internal/store"
)

type rootOptions struct {
	configPath string
	cfg        config.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:          "logisticactl",
		Short:        "Operate the logistics API: solve routes, seed and migrate the store, watch vehicle events",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			opts.cfg = cfg
			return nil
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a YAML config file (default $CONFIG_FILE)")
	root.AddCommand(
		newSolveCmd(opts),
		newSeedCmd(opts),
		newMigrateCmd(opts),
		newWatchCmd(),
		newVersionCmd(),
	)
	return root
}

func newSolveCmd(opts *rootOptions) *cobra.Command {
	var (
		to       []string
		seedFile string
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:     "solve --to A,B,C",
		Short:   "Print the cheapest round trip through the named nodes",
		Example: "  logisticactl solve --seed configs/seed.yaml --to Rosario,Cordoba,Mendoza",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			installLogger(cmd, opts.cfg)
			st, err := store.Open(ctx, opts.cfg.Database.URL, opts.cfg.Database.SQLitePath)
			if err != nil {
				return err
			}
			defer st.Close()
			if seedFile != "" {
				if _, err := store.SeedFromFile(ctx, st, seedFile); err != nil {
					return err
				}
			}
			pl := planner.New(st, planner.Options{MaxDestinations: opts.cfg.Solve.MaxDestinations, MaxNodes: opts.cfg.Solve.MaxNodes, Timeout: opts.cfg.Solve.Timeout})
			resp, err := pl.ShortestRoute(ctx, to)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(resp)
			}
			names := make([]string, 0, len(resp.ShorterRoute)+1)
			for _, n := range resp.ShorterRoute {
				names = append(names, n.Name)
			}
			if len(names) > 1 {
				names = append(names, names[0])
			}
			fmt.Fprintf(out, "cost: %d\n", resp.MinDistance)
			fmt.Fprintf(out, "tour: %s\n", strings.Join(names, " -> "))
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&to, "to", nil, "destination node names, comma separated")
	cmd.Flags().StringVar(&seedFile, "seed", "", "YAML seed file loaded before solving")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the API response document")
	return cmd
}

func newSeedCmd(opts *rootOptions) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed --file seed.yaml",
		Short: "Load nodes, routes and vehicles from YAML into the configured store",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			installLogger(cmd, opts.cfg)
			if file == "" {
				file = opts.cfg.SeedFile
			}
			if file == "" {
				return fmt.Errorf("seed: --file is required")
			}
			st, err := store.Open(ctx, opts.cfg.Database.URL, opts.cfg.Database.SQLitePath)
			if err != nil {
				return err
			}
			defer st.Close()
			rep, err := store.SeedFromFile(ctx, st, file)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %s store: %d nodes, %d routes, %d vehicles\n", store.Backend(st), rep.Nodes, rep.Routes, rep.Vehicles)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML seed file (default seedFile from config)")
	return cmd
}

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			installLogger(cmd, opts.cfg)
			if opts.cfg.Database.URL == "" && opts.cfg.Database.SQLitePath == "" {
				return fmt.Errorf("migrate: no database configured (set DATABASE_URL or SQLITE_PATH)")
			}
			st, err := store.Open(cmd.Context(), opts.cfg.Database.URL, opts.cfg.Database.SQLitePath)
			if err != nil {
				return err
			}
			defer st.Close()
			fmt.Fprintf(cmd.OutOrStdout(), "%s schema up to date\n", store.Backend(st))
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(buildinfo.Info())
		},
	}
}

// installLogger sends logs to stderr so stdout carries only command output.
func installLogger(cmd *cobra.Command, cfg config.Config) {
	slog.SetDefault(cfg.NewLogger(cmd.ErrOrStderr()))
}
