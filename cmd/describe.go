package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/smazurov/everloopd/internal/things"
)

// CreateDescribeCmd creates the describe command.
func CreateDescribeCmd() *cobra.Command {
	var noGPIO bool

	cmd := &cobra.Command{
		Use:   "describe",
		Short: "Print the Web Thing description",
		Long:  `Prints the thing description the daemon serves at /things/board, as indented JSON.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return writeDescription(cmd.OutOrStdout(), !noGPIO)
		},
	}

	cmd.Flags().BoolVar(&noGPIO, "no-gpio", false, "Describe the variant without GPIO level properties")
	return cmd
}

func writeDescription(w io.Writer, gpio bool) error {
	d, err := things.NewBoardDevice(gpio)
	if err != nil {
		return fmt.Errorf("failed to build device: %w", err)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d.Describe())
}
