package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/smazurov/profilenode/pkg/dds"
	"github.com/spf13/cobra"
)

// CreateDecodeCmd creates the decode command, which decodes a JSON wire array and
// describes the resulting profile.
func CreateDecodeCmd() *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "decode [message]",
		Short: "Decode a positional profile message",
		Long: `Decodes a JSON wire array such as '[60, "Z16 ", 640, 480]' into a stream profile. ` +
			`The stream kind selects the variant. Reads stdin when no message is given.`,
		Example: `  profilenode decode --kind depth '[60, "Z16 ", 640, 480]'
  echo '[200, "MXYZ"]' | profilenode decode --kind gyro`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var data []byte
			if len(args) == 1 {
				data = []byte(args[0])
			} else {
				var err error
				if data, err = io.ReadAll(cmd.InOrStdin()); err != nil {
					return err
				}
			}

			k, err := dds.ParseStreamKind(kind)
			if err != nil {
				return err
			}
			msg, err := dds.ParseMessage(data)
			if err != nil {
				return err
			}
			p, err := dds.ParseProfile(k, msg)
			if err != nil {
				return err
			}
			return describeProfile(cmd.OutOrStdout(), p)
		},
	}

	cmd.Flags().StringVarP(&kind, "kind", "k", "depth", "Stream kind ("+kindList()+")")
	return cmd
}

func describeProfile(w io.Writer, p dds.Profile) error {
	encoded, err := p.Encode().MarshalJSON()
	if err != nil {
		return err
	}

	driver := "unknown"
	if dev, err := p.Format().ToRS2(); err == nil {
		driver = dev.String()
	}

	_, err = fmt.Fprintf(w, "%s\n  format:    %q (rs2 %s)\n  frequency: %d Hz\n  encoded:   %s\n",
		p, p.Format().Text(), driver, p.Frequency(), encoded)
	return err
}

func kindList() string {
	kinds := []dds.StreamKind{
		dds.KindDepth, dds.KindIR, dds.KindColor, dds.KindFisheye, dds.KindConfidence,
		dds.KindMotion, dds.KindAccel, dds.KindGyro, dds.KindPose,
	}
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}
