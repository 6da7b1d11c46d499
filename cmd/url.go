package main

import (
	"net/url"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/leonali030/policyengine-app/internal/compare"
	"github.com/leonali030/policyengine-app/internal/model"
)

var urlCountry string

var urlCmd = &cobra.Command{
	Use:   "url",
	Short: "Operate on URL-encoded comparison state",
}

var urlRepairCmd = &cobra.Command{
	Use:   "repair <query-string>",
	Short: "Fill missing comparison keys with metadata defaults",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := url.ParseQuery(args[0])
		if err != nil {
			return eris.Wrap(err, "parse query string")
		}

		e, meta, err := initWithMetadata(cmd, urlCountry)
		if err != nil {
			return err
		}
		defer e.Close()

		result := compare.Repair(params, meta)
		cmd.Println(result.Params.Encode())
		if !result.Complete {
			cmd.PrintErrln("note: no reform policy is set")
		}
		return nil
	},
}

var urlSwapCmd = &cobra.Command{
	Use:   "swap <query-string>",
	Short: "Swap which policy id is baseline versus reform",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := url.ParseQuery(args[0])
		if err != nil {
			return eris.Wrap(err, "parse query string")
		}

		e, meta, err := initWithMetadata(cmd, urlCountry)
		if err != nil {
			return err
		}
		defer e.Close()

		cmd.Println(compare.SwapBaselineAndReform(params, meta).Encode())
		return nil
	},
}

func initWithMetadata(cmd *cobra.Command, country string) (*env, *model.Metadata, error) {
	ctx := cmd.Context()
	if country == "" {
		country = cfg.API.CountryID
	}
	e, err := initEnv(ctx)
	if err != nil {
		return nil, nil, err
	}
	meta, err := e.loadMetadata(ctx, country)
	if err != nil {
		e.Close()
		return nil, nil, err
	}
	return e, meta, nil
}

func init() {
	urlCmd.PersistentFlags().StringVar(&urlCountry, "country", "", "country id (defaults to api.country_id)")
	urlCmd.AddCommand(urlRepairCmd, urlSwapCmd)
	rootCmd.AddCommand(urlCmd)
}
