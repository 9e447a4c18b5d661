package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/smazurov/profilenode/pkg/dds"
	"github.com/smazurov/profilenode/pkg/rs2"
	"github.com/spf13/cobra"
)

type formatRow struct {
	FourCC      string `json:"fourcc"`
	RS2         string `json:"rs2"`
	Canonical   bool   `json:"canonical"`
	Provisional bool   `json:"provisional"`
}

type reverseRow struct {
	RS2    string `json:"rs2"`
	FourCC string `json:"fourcc,omitempty"`
	Error  string `json:"error,omitempty"`
}

// CreateFormatsCmd creates the formats command, which prints both translation tables.
func CreateFormatsCmd() *cobra.Command {
	var asJSON bool
	var reverse bool

	cmd := &cobra.Command{
		Use:   "formats",
		Short: "Print the format code translation tables",
		Long: `Prints every wire format code with the driver format it maps to. ` +
			`With --reverse, prints every driver format with the code emitted for it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if reverse {
				return printReverse(cmd.OutOrStdout(), asJSON)
			}
			return printForward(cmd.OutOrStdout(), asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	cmd.Flags().BoolVar(&reverse, "reverse", false, "Print the driver format to code direction")
	return cmd
}

func printForward(w io.Writer, asJSON bool) error {
	known := dds.KnownStreamFormats()
	rows := make([]formatRow, 0, len(known))
	for _, m := range known {
		canonical, err := dds.StreamFormatFromRS2(m.RS2)
		rows = append(rows, formatRow{
			FourCC:      m.Format.String(),
			RS2:         m.RS2.String(),
			Canonical:   err == nil && canonical.Equal(m.Format),
			Provisional: dds.IsProvisional(m.RS2),
		})
	}

	if asJSON {
		return writeJSON(w, rows)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FOURCC\tRS2\tCANONICAL\tPROVISIONAL")
	for _, r := range rows {
		fmt.Fprintf(tw, "%q\t%s\t%t\t%t\n", r.FourCC, r.RS2, r.Canonical, r.Provisional)
	}
	return tw.Flush()
}

func printReverse(w io.Writer, asJSON bool) error {
	rows := make([]reverseRow, 0, rs2.FormatCount)
	for f := rs2.Format(0); f < rs2.FormatCount; f++ {
		row := reverseRow{RS2: f.String()}
		if code, err := dds.StreamFormatFromRS2(f); err != nil {
			row.Error = err.Error()
		} else {
			row.FourCC = code.String()
		}
		rows = append(rows, row)
	}

	if asJSON {
		return writeJSON(w, rows)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RS2\tFOURCC")
	for _, r := range rows {
		code := "-"
		if r.FourCC != "" {
			code = fmt.Sprintf("%q", r.FourCC)
		}
		fmt.Fprintf(tw, "%s\t%s\n", r.RS2, code)
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
