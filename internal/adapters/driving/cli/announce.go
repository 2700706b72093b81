package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shipforge-labs/shipforge-cli/internal/core/domain"
	"github.com/shipforge-labs/shipforge-cli/internal/core/ports/driven"
)

var (
	announceJSON bool
	announceSend bool
	announceTo   []string
)

var announceCmd = &cobra.Command{
	Use:   "announce <app-name> <url>",
	Short: "Generate launch announcement content",
	Long: `Generates an announcement email and a social post for a
deployed application. Requires OPENAI_API_KEY.

With --send the email is delivered through the configured mail
provider to the --to recipients.`,
	Args: cobra.ExactArgs(2),
	RunE: runAnnounce,
}

func init() {
	announceCmd.Flags().BoolVar(&announceJSON, "json", false, "output as JSON")
	announceCmd.Flags().BoolVar(&announceSend, "send", false, "send the email through the configured mail provider")
	announceCmd.Flags().StringSliceVar(&announceTo, "to", nil, "recipient addresses for --send")
	rootCmd.AddCommand(announceCmd)
}

func runAnnounce(cmd *cobra.Command, args []string) error {
	if announcer == nil {
		return errors.New("announce service not configured (set OPENAI_API_KEY)")
	}
	appName, liveURL := args[0], args[1]

	content, err := announcer.Announce(context.Background(), appName, liveURL)
	if err != nil {
		return fmt.Errorf("announcement generation failed: %w", err)
	}

	if announceSend {
		if emailService == nil {
			return errors.New("no mail provider configured (set SENDGRID_API_KEY or MAILGUN_API_KEY)")
		}
		if len(announceTo) == 0 {
			return fmt.Errorf("%w: --send requires at least one --to recipient", domain.ErrInvalidInput)
		}
		msg := driven.Message{
			From:    fmt.Sprintf("noreply@%s", domain.DefaultDomain(appName)),
			To:      announceTo,
			Subject: content.Subject,
			HTML:    content.EmailHTML,
		}
		if err := emailService.Send(context.Background(), "", msg); err != nil {
			return fmt.Errorf("sending announcement failed: %w", err)
		}
		cmd.Printf("Sent to %d recipient(s)\n", len(announceTo))
	}

	if announceJSON {
		return outputJSON(cmd, content)
	}
	cmd.Printf("Subject: %s\n\n", content.Subject)
	cmd.Println(content.EmailHTML)
	cmd.Println()
	cmd.Println("Social post:")
	cmd.Println(content.SocialPost)
	return nil
}
