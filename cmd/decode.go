package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smazurov/everloopd/internal/colorx"
	"github.com/smazurov/everloopd/internal/frame"
)

// CreateDecodeCmd creates the decode command.
func CreateDecodeCmd() *cobra.Command {
	var color string
	var level int
	var strict bool

	cmd := &cobra.Command{
		Use:   "decode",
		Short: "Decode a color and brightness into an RGBW element",
		Long: `Applies the same decoding the control loop uses and prints the element as "r,g,b,w". ` +
			`Invalid colors decode to black unless --strict is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := decodeElement(color, level)
			if err != nil && strict {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), e)
			return err
		},
	}

	cmd.Flags().StringVar(&color, "color", "#ffffff", "Color as #rrggbb")
	cmd.Flags().IntVar(&level, "level", colorx.MaxLevel, "Brightness from 0 to 100")
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail on an invalid color instead of printing black")
	return cmd
}

func decodeElement(color string, level int) (frame.Element, error) {
	rgb, err := colorx.ParseHex(color)
	if err != nil {
		return frame.Black, err
	}
	rgb = colorx.Dim(rgb, level)
	return frame.Element{Red: rgb.Red, Green: rgb.Green, Blue: rgb.Blue}, nil
}
