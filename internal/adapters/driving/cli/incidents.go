package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	incidentsJSON    bool
	incidentsUrgency string
	incidentsStatus  string
)

var incidentsCmd = &cobra.Command{
	Use:   "incidents",
	Short: "Manage monitoring incidents",
	Long: `Creates, lists, and resolves incidents on the configured
monitoring provider. Requires PAGERDUTY_API_KEY.`,
}

var incidentsCreateCmd = &cobra.Command{
	Use:   "create <service-id> <title>",
	Short: "Trigger an incident on a monitored service",
	Args:  cobra.ExactArgs(2),
	RunE:  runIncidentsCreate,
}

var incidentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List incidents by status",
	Args:  cobra.NoArgs,
	RunE:  runIncidentsList,
}

var incidentsResolveCmd = &cobra.Command{
	Use:   "resolve <incident-id>",
	Short: "Mark an incident resolved",
	Args:  cobra.ExactArgs(1),
	RunE:  runIncidentsResolve,
}

func init() {
	incidentsCreateCmd.Flags().StringVar(&incidentsUrgency, "urgency", "high", "incident urgency (high|low)")
	incidentsListCmd.Flags().StringVar(&incidentsStatus, "status", "triggered", "filter by status (triggered|acknowledged|resolved)")
	incidentsListCmd.Flags().BoolVar(&incidentsJSON, "json", false, "output as JSON")
	incidentsCmd.AddCommand(incidentsCreateCmd)
	incidentsCmd.AddCommand(incidentsListCmd)
	incidentsCmd.AddCommand(incidentsResolveCmd)
	rootCmd.AddCommand(incidentsCmd)
}

func requireIncidentManager() error {
	if incidentManager == nil {
		return errors.New("incident manager not configured (set PAGERDUTY_API_KEY)")
	}
	return nil
}

func runIncidentsCreate(cmd *cobra.Command, args []string) error {
	if err := requireIncidentManager(); err != nil {
		return err
	}

	incident, err := incidentManager.CreateIncident(context.Background(), args[0], args[1], incidentsUrgency)
	if err != nil {
		return fmt.Errorf("creating incident: %w", err)
	}
	cmd.Printf("Incident %s created (%s, urgency %s)\n", incident.ID, incident.Status, incident.Urgency)
	return nil
}

func runIncidentsList(cmd *cobra.Command, _ []string) error {
	if err := requireIncidentManager(); err != nil {
		return err
	}

	incidents, err := incidentManager.ListIncidents(context.Background(), incidentsStatus)
	if err != nil {
		return fmt.Errorf("listing incidents: %w", err)
	}

	if incidentsJSON {
		return outputJSON(cmd, incidents)
	}
	if len(incidents) == 0 {
		cmd.Printf("No %s incidents.\n", incidentsStatus)
		return nil
	}
	for _, in := range incidents {
		cmd.Printf("%-14s %-12s %-5s %s\n", in.ID, in.Status, in.Urgency, in.Title)
	}
	return nil
}

func runIncidentsResolve(cmd *cobra.Command, args []string) error {
	if err := requireIncidentManager(); err != nil {
		return err
	}

	incident, err := incidentManager.ResolveIncident(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("resolving incident: %w", err)
	}
	cmd.Printf("Incident %s is %s\n", incident.ID, incident.Status)
	return nil
}
