package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"taccd/internal/blobstore"
	"taccd/internal/config"
	"taccd/internal/server"
)

// seedManifest maps blob names to their values. Values may be any
// YAML shape; strings are stored verbatim, everything else as JSON.
type seedManifest map[string]any

func newSeedCmd(cfg *config.Config) *cobra.Command {
	var decoy bool
	var prune bool

	cmd := &cobra.Command{
		Use:   "seed <manifest.yaml>",
		Short: "Load blobs from a YAML manifest into the data store",
		Long: `Seed reads a YAML manifest mapping blob names to values and writes
each entry into the real namespace, or into the decoy namespace with
--decoy. Existing blobs with the same name are overwritten. With
--prune, blobs not named in the manifest are removed afterwards.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.DataDir == "" {
				return fmt.Errorf("data dir is required")
			}

			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			var manifest seedManifest
			if err := yaml.Unmarshal(raw, &manifest); err != nil {
				return fmt.Errorf("parse manifest: %w", err)
			}
			if len(manifest) == 0 {
				return fmt.Errorf("manifest is empty")
			}

			blobs, err := blobstore.NewDual(cfg.DataDir)
			if err != nil {
				return err
			}

			ns := blobstore.NamespaceReal
			if decoy {
				ns = blobstore.NamespaceDecoy
			}

			svc := server.NewBlobService(blobs)
			ctx := context.Background()
			for name, value := range manifest {
				if _, err := svc.Save(ctx, ns, name, value); err != nil {
					return fmt.Errorf("seed %q: %w", name, err)
				}
			}

			pruned := 0
			if prune {
				pruned, err = pruneNamespace(ctx, blobs, ns, manifest)
				if err != nil {
					return err
				}
			}

			fmt.Printf("Seeded %d blobs into the %s namespace.\n", len(manifest), ns)
			if prune {
				fmt.Printf("Pruned %d stale blobs.\n", pruned)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&decoy, "decoy", false, "write into the decoy namespace")
	cmd.Flags().BoolVar(&prune, "prune", false, "delete blobs not named in the manifest")
	return cmd
}

func pruneNamespace(ctx context.Context, blobs *blobstore.Dual, ns blobstore.Namespace, manifest seedManifest) (int, error) {
	st, err := blobs.Namespace(ns)
	if err != nil {
		return 0, err
	}
	names, err := st.List(ctx)
	if err != nil {
		return 0, err
	}
	pruned := 0
	for _, name := range names {
		if _, ok := manifest[name]; ok {
			continue
		}
		if err := st.Delete(ctx, name); err != nil {
			return pruned, fmt.Errorf("prune %q: %w", name, err)
		}
		pruned++
	}
	return pruned, nil
}
