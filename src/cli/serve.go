// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"github.com/spf13/cobra"

	"github.com/H0llyW00dzZ/x509-chain-verifier/src/config"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/httpapi"
	"github.com/H0llyW00dzZ/x509-chain-verifier/src/logger"
)

// newServeCommand returns the "serve" subcommand, which runs the HTTP API
// until the command context is cancelled.
func newServeCommand(version string) *cobra.Command {
	var addr, configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve chain verification over HTTP",
		Long: `Starts an HTTP server exposing POST /v1/verify, GET /v1/schema,
GET /v1/version and GET /healthz. Access logs are written to stderr as JSON.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			log := logger.NewStructuredLogger(cmd.ErrOrStderr(), false).WithField("component", "httpapi")
			srv, err := httpapi.NewServer(cfg, version, log)
			if err != nil {
				return err
			}
			return srv.ListenAndServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVarP(&addr, "listen", "l", httpapi.DefaultAddr, "address to listen on")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "configuration file (JSON or YAML), defaults to $"+config.EnvConfigFile)

	return cmd
}
