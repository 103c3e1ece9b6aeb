package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mccnet/internal/builder"
	"mccnet/internal/codec"
	"mccnet/internal/device"
	"mccnet/internal/domain"
	"mccnet/internal/generator"
	"mccnet/internal/mutation"
)

type generateFlags struct {
	anchor    string
	count     int
	role      string
	image     string
	bandwidth float64
	delay     string
	format    string
	seed      int64
}

func newGenerateCmd(opts *options) *cobra.Command {
	f := &generateFlags{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Print a generated batch of nodes linked to an anchor switch",
		Long: `Generate synthesizes --count nodes of --role, each linked to the anchor.
The anchor is emitted as a switch so the output decodes on its own.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("count") {
				f.count = opts.cfg.Generation.DefaultQuantity
			}
			if !cmd.Flags().Changed("seed") {
				f.seed = opts.cfg.Generation.Seed
			}

			topology, err := generateTopology(opts, f)
			if err != nil {
				return err
			}

			exporter, err := codec.ExporterFor(f.format)
			if err != nil {
				return err
			}
			if err := exporter.Export(topology, cmd.OutOrStdout()); err != nil {
				return err
			}
			if f.format == "scenario" {
				fmt.Fprintln(cmd.OutOrStdout())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&f.anchor, "anchor", "", "id of the node every generated node links to")
	cmd.Flags().IntVarP(&f.count, "count", "n", 0, "number of nodes to generate")
	cmd.Flags().StringVar(&f.role, "role", string(domain.RoleClient), "role of generated nodes: client, server, switch")
	cmd.Flags().StringVar(&f.image, "image", "", "image override for generated nodes")
	cmd.Flags().Float64Var(&f.bandwidth, "bandwidth", 0, "bandwidth of generated edges")
	cmd.Flags().StringVar(&f.delay, "delay", "0", "delay of generated edges, in milliseconds")
	cmd.Flags().StringVarP(&f.format, "format", "f", "json", "output format: json, yaml, scenario, ansible-inventory")
	cmd.Flags().Int64Var(&f.seed, "seed", 0, "random seed (0 = random)")
	_ = cmd.MarkFlagRequired("anchor")

	return cmd
}

func generateTopology(opts *options, f *generateFlags) (*domain.Topology, error) {
	role, err := domain.ParseRole(f.role)
	if err != nil {
		return nil, err
	}
	delay, err := mutation.ParseDelay(f.delay)
	if err != nil {
		return nil, err
	}

	images := opts.cfg.ImageResolver()
	gen := generator.NewFaker(uint64(f.seed))
	b := builder.New(gen, &images, opts.cfg.Generation.MaxQuantity)

	batch, err := b.Build(f.anchor, f.count,
		builder.EdgeTemplate{Bandwidth: f.bandwidth, Delay: delay},
		builder.NodeTemplate{Type: role, Image: f.image},
	)
	if err != nil {
		return nil, err
	}

	// The anchor keeps the id the edges were built against
	anchor := domain.NewNode(f.anchor, domain.RoleSwitch, f.anchor)
	anchor.Image = device.KindFor(domain.RoleSwitch)
	anchor.Title = domain.NodeTitle(anchor)

	topology := domain.NewTopology()
	topology.AddNode(*anchor)
	for _, node := range batch.Nodes {
		topology.AddNode(node)
	}
	for _, edge := range batch.Edges {
		topology.AddEdge(edge)
	}
	return topology, nil
}
