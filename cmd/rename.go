package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leonali030/policyengine-app/internal/naming"
)

var renameCountry string

var renameCmd = &cobra.Command{
	Use:   "rename <policy-id> <name>",
	Short: "Submit a new name for a reform policy",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		policyID, name := args[0], args[1]
		country := renameCountry
		if country == "" {
			country = cfg.API.CountryID
		}

		e, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		policy, err := e.loadPolicy(ctx, country, policyID)
		if err != nil {
			return err
		}

		svc := naming.NewService(e.client, cfg.Naming.Debounce())
		done := make(chan naming.Outcome, 1)
		svc.Rename(ctx, country, policy.Data, name, func(out naming.Outcome) {
			done <- out
		})

		out := <-done
		switch {
		case out.Err != nil:
			return out.Err
		case out.Conflict:
			return fmt.Errorf("naming conflict: %s", out.Message)
		default:
			cmd.Printf("renamed: policy %s\n", out.PolicyID)
			return nil
		}
	},
}

func init() {
	renameCmd.Flags().StringVar(&renameCountry, "country", "", "country id (defaults to api.country_id)")
	rootCmd.AddCommand(renameCmd)
}
