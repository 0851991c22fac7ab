package main

import (
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"
)

func init() {
	sessionsCmd := &cobra.Command{Use: "sessions", Short: "Session operations"}

	var contentAddr string
	var claimedUnits uint64
	submitCmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a session for curation",
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(func(c *resty.Client) (*resty.Response, error) {
				return c.R().
					SetBody(map[string]interface{}{"contentAddress": contentAddr, "claimedUnits": claimedUnits}).
					Post("/v1/sessions")
			})
		},
	}
	submitCmd.Flags().StringVarP(&contentAddr, "content", "c", "", "Content address (required)")
	submitCmd.Flags().Uint64Var(&claimedUnits, "units", 0, "Claimed weight units for gating")
	_ = submitCmd.MarkFlagRequired("content")
	sessionsCmd.AddCommand(submitCmd)

	sessionsCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(func(c *resty.Client) (*resty.Response, error) {
				return c.R().Get("/v1/sessions")
			})
		},
	})

	sessionsCmd.AddCommand(&cobra.Command{
		Use:   "get SESSION_ID",
		Short: "Get a session by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(func(c *resty.Client) (*resty.Response, error) {
				return c.R().Get(fmt.Sprintf("/v1/sessions/%s", args[0]))
			})
		},
	})

	sessionsCmd.AddCommand(&cobra.Command{
		Use:   "retract SESSION_ID",
		Short: "Retract an own session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(func(c *resty.Client) (*resty.Response, error) {
				return c.R().Delete(fmt.Sprintf("/v1/sessions/%s", args[0]))
			})
		},
	})

	var reactor string
	var reactUnits uint64
	reactCmd := &cobra.Command{
		Use:   "react SESSION_ID",
		Short: "React to a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(func(c *resty.Client) (*resty.Response, error) {
				body := map[string]interface{}{"claimedUnits": reactUnits}
				if reactor != "" {
					body["reactor"] = reactor
				}
				return c.R().SetBody(body).Post(fmt.Sprintf("/v1/sessions/%s/reactions", args[0]))
			})
		},
	}
	reactCmd.Flags().StringVar(&reactor, "reactor", "", "React on behalf of this principal (requires delegation)")
	reactCmd.Flags().Uint64Var(&reactUnits, "units", 0, "Claimed weight units for gating")
	sessionsCmd.AddCommand(reactCmd)

	var msgAddr string
	messageCmd := &cobra.Command{
		Use:   "message SESSION_ID",
		Short: "Attach a message to a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(func(c *resty.Client) (*resty.Response, error) {
				return c.R().
					SetBody(map[string]interface{}{"contentAddress": msgAddr}).
					Post(fmt.Sprintf("/v1/sessions/%s/messages", args[0]))
			})
		},
	}
	messageCmd.Flags().StringVarP(&msgAddr, "content", "c", "", "Message content address (required)")
	_ = messageCmd.MarkFlagRequired("content")
	sessionsCmd.AddCommand(messageCmd)

	rootCmd.AddCommand(sessionsCmd)

	periodCmd := &cobra.Command{Use: "period", Short: "Period operations"}
	periodCmd.AddCommand(&cobra.Command{
		Use:   "info",
		Short: "Show the current period",
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(func(c *resty.Client) (*resty.Response, error) {
				return c.R().Get("/v1/period")
			})
		},
	})
	periodCmd.AddCommand(&cobra.Command{
		Use:   "select",
		Short: "Close the period and select a winner",
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(func(c *resty.Client) (*resty.Response, error) {
				return c.R().Post("/v1/period/select")
			})
		},
	})
	rootCmd.AddCommand(periodCmd)
}
