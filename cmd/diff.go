package main

import (
	"encoding/json"
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/leonali030/policyengine-app/internal/model"
	"github.com/leonali030/policyengine-app/internal/reform"
	"github.com/leonali030/policyengine-app/internal/render"
)

var (
	diffCountry string
	diffOutput  string
	diffLenient bool
)

var diffCmd = &cobra.Command{
	Use:   "diff <policy-id>",
	Short: "Render the semantic diff of a reform against current law",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		policyID := args[0]
		country := diffCountry
		if country == "" {
			country = cfg.API.CountryID
		}

		e, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		var (
			meta   *model.Metadata
			policy *model.Policy
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			meta, err = e.loadMetadata(gctx, country)
			return err
		})
		g.Go(func() error {
			var err error
			policy, err = e.loadPolicy(gctx, country, policyID)
			return err
		})
		if err := g.Wait(); err != nil {
			return err
		}

		ix := meta.Index()
		var entries []reform.DiffEntry
		if diffLenient {
			entries = reform.ComputeDiffsLenient(policy.Data, ix)
		} else {
			entries, err = reform.ComputeDiffs(policy.Data, ix)
			if err != nil {
				return err
			}
		}

		return printDiff(cmd, policy, entries)
	},
}

func printDiff(cmd *cobra.Command, policy *model.Policy, entries []reform.DiffEntry) error {
	switch diffOutput {
	case "json":
		out, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return eris.Wrap(err, "marshal diff")
		}
		cmd.Println(string(out))
	case "yaml":
		out, err := yaml.Marshal(entries)
		if err != nil {
			return eris.Wrap(err, "marshal diff")
		}
		cmd.Print(string(out))
	case "text":
		cmd.Println(policy.DisplayLabel())
		if len(entries) == 0 {
			cmd.Println(render.EmptyReformMessage)
			return nil
		}
		for _, group := range render.GroupChanges(entries) {
			cmd.Printf("%s:\n", group.Label)
			for _, change := range group.Changes {
				cmd.Printf("  %s\n", change)
			}
		}
	default:
		return fmt.Errorf("unknown output format %q", diffOutput)
	}
	return nil
}

func init() {
	diffCmd.Flags().StringVar(&diffCountry, "country", "", "country id (defaults to api.country_id)")
	diffCmd.Flags().StringVarP(&diffOutput, "output", "o", "text", "output format: text, json or yaml")
	diffCmd.Flags().BoolVar(&diffLenient, "lenient", false, "skip and log entries with data-integrity errors")
	rootCmd.AddCommand(diffCmd)
}
