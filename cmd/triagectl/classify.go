package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spec-kit/ticket-triage/internal/api/dto"
	"github.com/spec-kit/ticket-triage/internal/classification"
	"github.com/spec-kit/ticket-triage/internal/persistence"
	"github.com/spec-kit/ticket-triage/internal/service"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <description>",
	Short: "Suggest a category and priority for a ticket description",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		redis := persistence.NewRedis(ctx, cfg.Redis, logger)
		defer redis.Close()

		gateway, err := classification.NewFromConfig(
			cfg.Classifier,
			classification.NewRedisCache(redis.ClientHandle(), cfg.Classifier.CacheTTL()),
			logger,
			nil,
		)
		if err != nil {
			return err
		}
		triage := service.NewTriageService(service.TriageDependencies{Classifier: gateway, Logger: logger})

		result, err := triage.Suggest(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(dto.ClassifyResponse{
				SuggestedCategory: result.Category,
				SuggestedPriority: result.Priority,
			})
		}
		category, priority := "-", "-"
		if result.Category != nil {
			category = string(*result.Category)
		}
		if result.Priority != nil {
			priority = string(*result.Priority)
		}
		fmt.Printf("category: %s\npriority: %s\n", category, priority)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(classifyCmd)
}
