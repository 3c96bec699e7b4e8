package main

import (
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/spf13/cobra"
	"github.com/vkngwrapper/i432/decode"
)

func init() {
	rootCmd.AddCommand(newDecodeCmd())
}

func newDecodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode <image.bin>",
		Short: "Decode the object tables of a memory image",
		Long: `The decode command walks the object table hierarchy of an image starting
from the object table directory, checks that no two segments overlap, and prints
every object table entry as JSON.

Example:
  i432img decode system.bin`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecode(cmd, args[0])
		},
	}
}

func runDecode(cmd *cobra.Command, imagePath string) error {
	img, err := os.ReadFile(imagePath)
	if err != nil {
		return errors.Wrap(err, "reading image")
	}

	decoded, err := decode.Decode(newLogger(), img)
	if err != nil {
		return err
	}

	writer := jwriter.NewWriter()
	obj := writer.Object()
	decoded.WriteJson(&obj)
	obj.End()

	if err := writer.Error(); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), string(writer.Bytes()))
	return nil
}
