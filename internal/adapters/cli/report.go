package cli

import (
	"time"

	"distribution-backend/internal/app"

	"github.com/spf13/cobra"
)

func newReportCommand(env Environment) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Period reports",
	}

	var year, month int
	shares := &cobra.Command{
		Use:     "shares",
		Short:   "Owner and reserve totals for one month",
		Example: "  distro report shares --year 2024 --month 3",
		Args:    cobra.NoArgs,
		RunE: withService(env, func(cmd *cobra.Command, svc app.ApplicationService, _ []string) error {
			if year == 0 && month == 0 {
				now := time.Now()
				year, month = now.Year(), int(now.Month())
			}
			summary, err := svc.ProfitSharingReport(cmd.Context(), year, month)
			if err != nil {
				return err
			}
			printPeriodSummary(cmd.OutOrStdout(), summary)
			return nil
		}),
	}
	shares.Flags().IntVar(&year, "year", 0, "report year (default current)")
	shares.Flags().IntVar(&month, "month", 0, "report month (default current)")

	cmd.AddCommand(shares)
	return cmd
}
