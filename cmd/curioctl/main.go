package main

import (
	"fmt"
	"os"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"
)

var (
	apiFlag       string
	principalFlag string
	rootCmd       = &cobra.Command{
		Use:   "curioctl",
		Short: "CLI client for the Curio curation REST API",
	}
)

func client() *resty.Client {
	c := resty.New().SetBaseURL(apiFlag)
	if principalFlag != "" {
		c.SetHeader("X-Curio-Principal", principalFlag)
	}
	return c
}

// call performs a request and prints the response body; non-2xx responses
// become errors carrying the server's message.
func call(req func(c *resty.Client) (*resty.Response, error)) error {
	resp, err := req(client())
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("%s: %s", resp.Status(), resp.String())
	}
	if len(resp.Body()) > 0 {
		fmt.Println(resp.String())
	}
	return nil
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&apiFlag, "api", "a", "http://localhost:8080", "Curio service base URL")
	rootCmd.PersistentFlags().StringVarP(&principalFlag, "principal", "p", "", "Caller principal identity")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
