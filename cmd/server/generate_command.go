package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oceanair/partner-report/apimodels"
	"github.com/oceanair/partner-report/internal/llm"
	"github.com/oceanair/partner-report/internal/report"
)

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	var req apimodels.GenerateReportRequest
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a single report and print it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, generator, err := ctx.ensureGenerator()
			if err != nil {
				return err
			}

			resp, err := generator.Generate(cmd.Context(), req)
			if err != nil {
				return clientError(err, cfg.ProviderName())
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(resp)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), resp.Report)
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&req.RawFeedback, "feedback", "", "Raw feedback from the guide (required)")
	flags.StringVar(&req.CustomerName, "customer", "", "Customer name")
	flags.StringVar(&req.BookingReference, "booking", "", "Booking reference")
	flags.StringVar(&req.Platform, "platform", "generic", "Partner platform: getyourguide, viator or generic")
	flags.StringVar(&req.TourName, "tour", "", "Tour name")
	flags.StringVar(&req.GuideRemarks, "remarks", "", "Additional guide remarks")
	flags.StringVar(&req.MealType, "meal", "", "Meal inclusion")
	flags.StringVar(&req.Tone, "tone", "neutral", "Report tone: neutral, soft or firm")
	flags.BoolVar(&asJSON, "json", false, "Print the full result as JSON")

	return cmd
}

// clientError reduces a generation failure to the message an API client
// would see, so upstream details stay out of the terminal too.
func clientError(err error, provider string) error {
	var rerr *report.Error
	if errors.As(err, &rerr) {
		return errors.New(rerr.Message)
	}
	n := llm.MapError(err, provider)
	if n.RetryAfterSeconds > 0 {
		return fmt.Errorf("%s (retry after %ds)", n.Message, n.RetryAfterSeconds)
	}
	return errors.New(n.Message)
}
