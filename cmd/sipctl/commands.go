package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pmsportal/internal/models/response_models"
	"pmsportal/internal/services"
)

func reconcileCmd() *cobra.Command {
	var nuvamaCode, status string
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Re-fetch one account's open transactions from the gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			report, err := e.reconcile.SyncClient(cmd.Context(), nuvamaCode, status)
			if report != nil {
				_ = printJSON(cmd.OutOrStdout(), report)
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&nuvamaCode, "nuvama-code", "c", "", "Account code (required)")
	cmd.Flags().StringVarP(&status, "status", "s", "", "Row filter: pending or unsync (default: all open rows)")
	_ = cmd.MarkFlagRequired("nuvama-code")
	return cmd
}

func reconcileAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile-all",
		Short: "Run the reconciliation sweep over every account with open transactions",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			reports, err := e.reconcile.SyncAll(cmd.Context())
			_ = printJSON(cmd.OutOrStdout(), summarize(reports))
			return err
		},
	}
}

type sweepSummary struct {
	Accounts int                          `json:"accounts"`
	Updated  int                          `json:"updated"`
	Failed   int                          `json:"failed"`
	NotFound int                          `json:"not_found"`
	Reports  []response_models.SyncReport `json:"reports"`
}

func summarize(reports []response_models.SyncReport) sweepSummary {
	s := sweepSummary{Accounts: len(reports), Reports: reports}
	for _, r := range reports {
		s.Updated += r.Updated
		s.Failed += r.Failed
		s.NotFound += r.NotFound
	}
	return s
}

func manageCmd() *cobra.Command {
	var subscriptionID, nuvamaCode string
	cmd := &cobra.Command{
		Use:   "manage <pause|resume|cancel>",
		Short: "Pause, resume or cancel a SIP on behalf of a client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			action, err := services.ParseSIPAction(args[0])
			if err != nil {
				return err
			}

			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			result, err := e.sips.Manage(cmd.Context(), subscriptionID, nuvamaCode, string(action))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s -> %s\n", result.OrderID, result.PreviousStatus, result.NewStatus)
			return nil
		},
	}

	cmd.Flags().StringVar(&subscriptionID, "subscription-id", "", "SIP order id (required)")
	cmd.Flags().StringVarP(&nuvamaCode, "nuvama-code", "c", "", "Account code owning the SIP (required)")
	_ = cmd.MarkFlagRequired("subscription-id")
	_ = cmd.MarkFlagRequired("nuvama-code")
	return cmd
}

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print the transaction known under an order, gateway or payment id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			details, err := e.orders.PaymentDetails(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), details)
		},
	}
}
