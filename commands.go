// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/danielhkuo/electsim/ballotgen"
	"github.com/danielhkuo/electsim/election"
)

// definition is an election file for the calc command. YAML and JSON are
// both accepted.
type definition struct {
	System            string   `yaml:"system"`
	Systems           []string `yaml:"systems"`
	election.Election `yaml:",inline"`
	election.Params   `yaml:",inline"`
}

func loadDefinition(path string) (*definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var def definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &def, nil
}

func newCalcCmd() *cobra.Command {
	var system string
	var compare bool

	cmd := &cobra.Command{
		Use:   "calc FILE",
		Short: "Calculate an election defined in a YAML or JSON file",
		Long: `Calculate an election defined in a YAML or JSON file and print the
result as JSON. --system overrides the file's system. --compare, or a
systems list in the file, runs every listed system side by side.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := loadDefinition(args[0])
			if err != nil {
				return err
			}
			if system != "" {
				def.System = system
			}

			if compare || len(def.Systems) > 0 {
				return runCompare(cmd, def)
			}

			s, err := election.ParseSystem(def.System)
			if err != nil {
				return err
			}
			res, err := election.Calculate(s, def.Election, def.Params)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringVarP(&system, "system", "s", "", "Electoral system (overrides the file)")
	cmd.Flags().BoolVar(&compare, "compare", false, "Compare every system, or the file's systems list")
	return cmd
}

func runCompare(cmd *cobra.Command, def *definition) error {
	systems := election.Systems()
	if len(def.Systems) > 0 {
		systems = nil
		for _, name := range def.Systems {
			s, err := election.ParseSystem(name)
			if err != nil {
				return err
			}
			systems = append(systems, s)
		}
	}
	out, err := election.Compare(cmd.Context(), systems, def.Election, def.Params)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), out)
}

func newGenerateCmd() *cobra.Command {
	var candidates string
	var voters int
	var distribution string
	var seed uint64

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate ranked ballots from an ideological distribution",
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := splitList(candidates)
			d, err := ballotgen.ParseDistribution(distribution)
			if err != nil {
				return err
			}

			gen := ballotgen.NewRandom()
			if cmd.Flags().Changed("seed") {
				gen = ballotgen.New(seed)
			}
			res, err := gen.Generate(ids, voters, d)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringVarP(&candidates, "candidates", "c", "", "Comma-separated candidate ids, left to right")
	cmd.Flags().IntVarP(&voters, "voters", "n", 1000, "Number of voters")
	cmd.Flags().StringVarP(&distribution, "distribution", "d", string(ballotgen.Normal),
		"Voter distribution (normal, polarized, left, right, uniform)")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Seed for a reproducible electorate")
	return cmd
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
