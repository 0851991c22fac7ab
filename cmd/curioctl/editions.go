package main

import (
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"
)

func init() {
	editionsCmd := &cobra.Command{Use: "editions", Short: "Edition operations"}

	editionsCmd.AddCommand(&cobra.Command{
		Use:   "get SESSION_ID",
		Short: "Show the edition of a winning session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(func(c *resty.Client) (*resty.Response, error) {
				return c.R().Get(fmt.Sprintf("/v1/editions/%s", args[0]))
			})
		},
	})

	var amount, payment uint64
	buyCmd := &cobra.Command{
		Use:   "buy SESSION_ID",
		Short: "Purchase edition units",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(func(c *resty.Client) (*resty.Response, error) {
				return c.R().
					SetBody(map[string]interface{}{"amount": amount, "payment": payment}).
					Post(fmt.Sprintf("/v1/editions/%s/purchase", args[0]))
			})
		},
	}
	buyCmd.Flags().Uint64Var(&amount, "amount", 1, "Units to purchase")
	buyCmd.Flags().Uint64Var(&payment, "payment", 0, "Payment offered (required)")
	_ = buyCmd.MarkFlagRequired("payment")
	editionsCmd.AddCommand(buyCmd)

	rootCmd.AddCommand(editionsCmd)

	balancesCmd := &cobra.Command{Use: "balances", Short: "Credit ledger operations"}
	balancesCmd.AddCommand(&cobra.Command{
		Use:   "get PRINCIPAL",
		Short: "Show a principal's balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(func(c *resty.Client) (*resty.Response, error) {
				return c.R().Get(fmt.Sprintf("/v1/balances/%s", args[0]))
			})
		},
	})
	balancesCmd.AddCommand(&cobra.Command{
		Use:   "withdraw",
		Short: "Withdraw the caller's accrued balance",
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(func(c *resty.Client) (*resty.Response, error) {
				return c.R().Post(fmt.Sprintf("/v1/balances/%s/withdraw", principalFlag))
			})
		},
	})
	rootCmd.AddCommand(balancesCmd)

	adminCmd := &cobra.Command{Use: "admin", Short: "Administrative operations"}
	adminCmd.AddCommand(&cobra.Command{
		Use:   "config",
		Short: "Show active and pending configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(func(c *resty.Client) (*resty.Response, error) {
				return c.R().Get("/v1/admin/config")
			})
		},
	})
	adminCmd.AddCommand(&cobra.Command{
		Use:   "pause",
		Short: "Pause all mutating operations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(func(c *resty.Client) (*resty.Response, error) {
				return c.R().Post("/v1/admin/pause")
			})
		},
	})
	adminCmd.AddCommand(&cobra.Command{
		Use:   "unpause",
		Short: "Resume mutating operations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(func(c *resty.Client) (*resty.Response, error) {
				return c.R().Post("/v1/admin/unpause")
			})
		},
	})

	var role, rolePrincipal string
	var revoke bool
	roleCmd := &cobra.Command{
		Use:   "role",
		Short: "Grant or revoke a role",
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(func(c *resty.Client) (*resty.Response, error) {
				return c.R().
					SetBody(map[string]interface{}{"role": role, "principal": rolePrincipal, "grant": !revoke}).
					Post("/v1/admin/roles")
			})
		},
	}
	roleCmd.Flags().StringVar(&role, "role", "", "Role name: admin or relayer (required)")
	roleCmd.Flags().StringVar(&rolePrincipal, "to", "", "Target principal (required)")
	roleCmd.Flags().BoolVar(&revoke, "revoke", false, "Revoke instead of grant")
	_ = roleCmd.MarkFlagRequired("role")
	_ = roleCmd.MarkFlagRequired("to")
	adminCmd.AddCommand(roleCmd)

	rootCmd.AddCommand(adminCmd)
}
