package main

import (
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newBuildCmd())
}

func newBuildCmd() *cobra.Command {
	var output string
	var mapOutput string

	cmd := &cobra.Command{
		Use:   "build <image.yaml>",
		Short: "Build a memory image from a YAML description",
		Long: `The build command lays out every segment in the description, assigns
object table coordinates and physical addresses, and writes the image.

Example:
  i432img build system.yaml -o system.bin
  i432img build system.yaml -o system.bin --map system.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, args[0], output, mapOutput)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Image file to write")
	cmd.Flags().StringVar(&mapOutput, "map", "", "Also write the allocation map as JSON to this file")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func runBuild(cmd *cobra.Command, descriptionPath, output, mapOutput string) error {
	description, err := loadDescription(descriptionPath)
	if err != nil {
		return err
	}

	builder, err := newBuilder(description)
	if err != nil {
		return err
	}

	img, err := builder.Build()
	if err != nil {
		return errors.Wrap(err, "building image")
	}

	if err := os.WriteFile(output, img, 0o644); err != nil {
		return errors.Wrap(err, "writing image")
	}

	if mapOutput != "" {
		writer := jwriter.NewWriter()
		obj := writer.Object()
		err = builder.Map(&obj)
		if err != nil {
			return err
		}
		obj.End()

		if err := writer.Error(); err != nil {
			return errors.Wrap(err, "rendering allocation map")
		}
		if err := os.WriteFile(mapOutput, writer.Bytes(), 0o644); err != nil {
			return errors.Wrap(err, "writing allocation map")
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d bytes holding %d segments to %s\n", len(img), len(builder.Segments()), output)
	return nil
}
