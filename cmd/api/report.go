package main

import (
	"fmt"

	"github.com/georgemunganga/accessories-admin/internal/modules/order"
	"github.com/georgemunganga/accessories-admin/internal/modules/sales"
	"github.com/spf13/cobra"
)

var salesReportCmd = &cobra.Command{
	Use:   "sales-report",
	Short: "Print the sales summary for every order",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.ValidateStore(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		ctx := cmd.Context()
		store, closer, err := openStore(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer closer.Close()

		orders := order.NewService(order.NewStoreRepository(store), logger.Named("order"))
		report := sales.NewService(orders, logger.Named("sales")).Report(ctx)
		return sales.Print(cmd.OutOrStdout(), report)
	},
}
