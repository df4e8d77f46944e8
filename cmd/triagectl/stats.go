package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spec-kit/ticket-triage/internal/api/dto"
	"github.com/spec-kit/ticket-triage/internal/domain"
	"github.com/spec-kit/ticket-triage/internal/persistence"
	"github.com/spec-kit/ticket-triage/internal/service"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print aggregate ticket statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		store, err := persistence.OpenStore(ctx, cfg.Database, logger)
		if err != nil {
			return err
		}
		defer store.Close()

		report, err := service.NewStatsService(service.StatsDependencies{Reader: store.Tickets}).ComputeStats(ctx)
		if err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(dto.NewStatsResponse(report))
		}
		fmt.Printf("total tickets:       %d\n", report.TotalTickets)
		fmt.Printf("open tickets:        %d\n", report.OpenTickets)
		fmt.Printf("avg tickets per day: %.1f\n", report.AvgTicketsPerDay)
		fmt.Println("by priority:")
		for _, p := range domain.Priorities {
			fmt.Printf("  %-10s %d\n", p, report.PriorityBreakdown[p])
		}
		fmt.Println("by category:")
		for _, c := range domain.Categories {
			fmt.Printf("  %-10s %d\n", c, report.CategoryBreakdown[c])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
