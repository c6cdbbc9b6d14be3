package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"taccd/internal/blobstore"
	"taccd/internal/config"
	"taccd/internal/mailer"
	"taccd/internal/server"
	"taccd/internal/store"
)

func newSrvCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "srv",
		Short: "Run the taccd API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg == nil {
				return fmt.Errorf("config not initialized")
			}
			if cfg.DBPath == "" {
				return fmt.Errorf("db path is required")
			}
			if cfg.DataDir == "" {
				return fmt.Errorf("data dir is required")
			}

			logger := slog.Default().With("component", "server")

			addr, err := server.ListenAddr(cfg.APIURL)
			if err != nil {
				return err
			}

			logger.Info("opening database", "path", cfg.DBPath)
			st, err := store.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			defer st.Close()

			blobs, err := blobstore.NewDual(cfg.DataDir)
			if err != nil {
				return err
			}

			mail := mailer.NewSMTP(cfg.Mail.SMTPAddr, cfg.Mail.From,
				cfg.Mail.Username, cfg.Mail.Password)

			srv := server.New(addr, cfg, st, blobs, nil, mail, logger)

			stop := srv.StartTokenSweeper(context.Background())
			defer stop()

			return srv.ListenAndServe()
		},
	}
}
