package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var verifyJSON bool

var verifyCmd = &cobra.Command{
	Use:   "verify <url>",
	Short: "Smoke-test a deployed application",
	Long: `Runs the verification suite against a live deployment: page
loads, API endpoints, a signup/login round trip, security headers, and
response time.`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

func init() {
	verifyCmd.Flags().BoolVar(&verifyJSON, "json", false, "output the report as JSON")
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	if verifier == nil {
		return errors.New("verify service not configured")
	}

	report, err := verifier.Verify(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("verification failed: %w", err)
	}

	if verifyJSON {
		if err := outputJSON(cmd, report); err != nil {
			return err
		}
	} else {
		cmd.Printf("Verifying %s\n\n", report.BaseURL)
		for _, category := range report.Categories {
			cmd.Printf("%s (%d/%d)\n", category.Name, category.Passed(), len(category.Checks))
			for _, check := range category.Checks {
				glyph := "x"
				if check.Passed {
					glyph = "+"
				}
				cmd.Printf("  %s %s", glyph, check.Name)
				if check.Message != "" && check.Message != "OK" {
					cmd.Printf(" (%s)", check.Message)
				}
				cmd.Println()
			}
		}
		cmd.Printf("\n%d/%d checks passed (%.1f%%)\n",
			report.PassedChecks(), report.TotalChecks(), report.PassRate())
	}

	if !report.Success() {
		return errors.New("verification did not pass")
	}
	return nil
}
