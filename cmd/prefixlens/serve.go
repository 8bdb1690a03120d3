package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	httpDelivery "github.com/prefixlens/backend/internal/delivery/http"
)

func newServeCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the clustering API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}

			router := httpDelivery.NewRouter(cfg)

			addr := fmt.Sprintf(":%s", cfg.Server.Port)
			log.Printf("Server listening on %s (%s)", addr, cfg.Server.Environment)
			return router.Run(addr)
		},
	}

	cmd.Flags().StringP("port", "p", "", "listen port")
	_ = v.BindPFlag("server.port", cmd.Flags().Lookup("port"))

	return cmd
}
