package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/lintas"
)

// render writes v in the format selected by --json/--yaml, or calls table.
func render(w io.Writer, v any, table func(io.Writer) error) error {
	switch {
	case asJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(v)
	case asYAML:
		// Round-trip through JSON so the flat dataset layout is kept.
		raw, err := json.Marshal(v)
		if err != nil {
			return err
		}
		var generic any
		if err := json.Unmarshal(raw, &generic); err != nil {
			return err
		}
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		defer encoder.Close()
		return encoder.Encode(generic)
	default:
		return table(w)
	}
}

func renderDatasets(w io.Writer, ds []lintas.Dataset) error {
	if ds == nil {
		ds = []lintas.Dataset{}
	}
	return render(w, ds, func(w io.Writer) error {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tTITLE\tCATEGORY\tYEAR\tUPLOADED")
		for _, d := range ds {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", d.ID, d.Title, d.Category, d.Year, formatDate(d.UploadDate))
		}
		return tw.Flush()
	})
}

func renderDataset(w io.Writer, d lintas.Dataset) error {
	return render(w, d, func(w io.Writer) error {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintf(tw, "ID\t%s\n", d.ID)
		fmt.Fprintf(tw, "Title\t%s\n", d.Title)
		fmt.Fprintf(tw, "Description\t%s\n", d.Description)
		fmt.Fprintf(tw, "Category\t%s\n", d.Category)
		fmt.Fprintf(tw, "Year\t%d\n", d.Year)
		fmt.Fprintf(tw, "Uploaded\t%s\n", formatDate(d.UploadDate))
		fmt.Fprintf(tw, "Payload\t%d field(s)\n", len(d.Payload))
		return tw.Flush()
	})
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}
