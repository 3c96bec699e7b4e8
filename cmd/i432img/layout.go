package main

import (
	"fmt"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newLayoutCmd())
}

func newLayoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "layout <image.yaml>",
		Short: "Print the field layout of every segment in a YAML description",
		Long: `The layout command places the fields of every segment in the description
and prints each segment's offsets and trimmed length as JSON.

Example:
  i432img layout system.yaml --policy rotating-first-fit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLayout(cmd, args[0])
		},
	}
}

func runLayout(cmd *cobra.Command, descriptionPath string) error {
	description, err := loadDescription(descriptionPath)
	if err != nil {
		return err
	}

	builder, err := newBuilder(description)
	if err != nil {
		return err
	}

	writer := jwriter.NewWriter()
	obj := writer.Object()
	segments := obj.Name("Segments").Array()
	for _, s := range description.Segments {
		seg, _ := builder.Segment(s.Name)

		segObj := segments.Object()
		segObj.Name("Name").String(seg.Name)
		seg.Layout.WriteJson(&segObj)
		segObj.End()
	}
	segments.End()
	obj.End()

	if err := writer.Error(); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), string(writer.Bytes()))
	return nil
}
