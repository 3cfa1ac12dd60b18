package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"stackecho/application/ports"
	"stackecho/application/store"
	"stackecho/infrastructure/config"
	"stackecho/infrastructure/di"
)

type cli struct {
	out        io.Writer
	configPath string
}

func newRootCmd(out io.Writer) *cobra.Command {
	c := &cli{out: out}

	root := &cobra.Command{
		Use:           "stackctl",
		Short:         "Manage stackecho session snapshots",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "YAML config file (defaults to $"+config.ConfigPathEnv+")")
	root.SetOut(out)

	snapshot := &cobra.Command{
		Use:   "snapshot",
		Short: "Inspect or rewrite the snapshot of one session",
	}
	snapshot.AddCommand(
		&cobra.Command{
			Use:   "show <session>",
			Short: "Print the stored snapshot as JSON",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.withSnapshots(cmd.Context(), func(cfg *config.Config, snaps ports.SnapshotStore) error {
					return c.show(cmd.Context(), cfg, snaps, args[0])
				})
			},
		},
		&cobra.Command{
			Use:   "reset <session>",
			Short: "Delete the stored snapshot so the session restarts from seed data",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.withSnapshots(cmd.Context(), func(cfg *config.Config, snaps ports.SnapshotStore) error {
					key := ports.SessionKey(cfg.Storage.Name, args[0])
					if err := snaps.Delete(cmd.Context(), key); err != nil {
						return err
					}
					fmt.Fprintf(c.out, "deleted %s\n", key)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "seed <session>",
			Short: "Write a signed-out snapshot holding the seed questions",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.withSnapshots(cmd.Context(), func(cfg *config.Config, snaps ports.SnapshotStore) error {
					key := ports.SessionKey(cfg.Storage.Name, args[0])
					s := store.New(store.WithSnapshotStore(snaps, key), store.WithPersistTimeout(cfg.Storage.PersistTimeout))
					s.Reset()
					fmt.Fprintf(c.out, "seeded %s with %d questions\n", key, len(s.Questions()))
					return nil
				})
			},
		},
	)

	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration helpers",
	}
	cfgCmd.AddCommand(&cobra.Command{
		Use:   "print",
		Short: "Print the effective configuration with secrets redacted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(c.out)
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(cfg.Redacted())
		},
	})

	root.AddCommand(snapshot, cfgCmd)
	return root
}

func (c *cli) loadConfig() (*config.Config, error) {
	if c.configPath != "" {
		return config.LoadFrom(c.configPath)
	}
	return config.LoadConfig()
}

// withSnapshots opens the configured snapshot backend for the duration of fn.
func (c *cli) withSnapshots(ctx context.Context, fn func(*config.Config, ports.SnapshotStore) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	var client *awsdynamodb.Client
	if cfg.Storage.Backend == config.BackendDynamoDB {
		awsCfg, err := di.ProvideAWSConfig(ctx, cfg)
		if err != nil {
			return fmt.Errorf("load AWS config: %w", err)
		}
		client = di.ProvideDynamoDBClient(awsCfg)
	}

	snaps, cleanup, err := di.ProvideSnapshotStore(cfg, client, nil, zap.NewNop())
	if err != nil {
		return err
	}
	defer cleanup()
	return fn(cfg, snaps)
}

func (c *cli) show(ctx context.Context, cfg *config.Config, snaps ports.SnapshotStore, sessionID string) error {
	key := ports.SessionKey(cfg.Storage.Name, sessionID)
	snap, err := snaps.Load(ctx, key)
	if err != nil {
		return err
	}
	if snap == nil {
		return fmt.Errorf("no snapshot stored under %s", key)
	}
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}
