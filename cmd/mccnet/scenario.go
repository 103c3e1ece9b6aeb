package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"mccnet/internal/codec"
)

func newEncodeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "encode FILE",
		Short: "Print the scenario string for a topology JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := openInput(cmd, args[0])
			if err != nil {
				return err
			}
			defer in.Close()

			topology, err := codec.NewJSONCodec().Parse(in)
			if err != nil {
				return err
			}
			if err := topology.Validate(); err != nil {
				return err
			}

			scenario, err := codec.NewScenarioCodec().Encode(topology)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), scenario)
			return err
		},
	}
}

func newDecodeCmd(opts *options) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "decode [FILE|-]",
		Short: "Print the topology held by a scenario string",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			in, err := openInput(cmd, path)
			if err != nil {
				return err
			}
			defer in.Close()

			topology, err := codec.NewScenarioCodec().Parse(in)
			if err != nil {
				return err
			}

			exporter, err := codec.ExporterFor(format)
			if err != nil {
				return err
			}
			return exporter.Export(topology, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json, yaml, ansible-inventory")

	return cmd
}

// openInput opens path, or the command's stdin for "-"
func openInput(cmd *cobra.Command, path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	return f, nil
}
