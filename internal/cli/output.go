package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"

	"github.com/Sternrassler/boutique-hotel-client/internal/tui"
	"github.com/Sternrassler/boutique-hotel-client/pkg/pagination"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

func validateFormat(format string) error {
	switch format {
	case formatTable, formatJSON, formatYAML:
		return nil
	default:
		return fmt.Errorf("unknown output format %q (want table, json or yaml)", format)
	}
}

// render writes v as JSON or YAML, or calls asTable for the table format.
func render(w io.Writer, format string, v any, asTable func(io.Writer) error) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return asTable(w)
	}
}

// renderPage writes one page of items with a "page x/y" footer.
func renderPage[T any](w io.Writer, format string, page pagination.Page[T], headers []string, row func(T) []string) error {
	return render(w, format, page, func(w io.Writer) error {
		rows := make([][]string, len(page.Items))
		for i, item := range page.Items {
			rows[i] = row(item)
		}
		if err := writeTable(w, headers, rows); err != nil {
			return err
		}
		_, err := fmt.Fprintln(w, tui.FooterStyle.Render(tui.Footer(page)))
		return err
	})
}

func writeTable(w io.Writer, headers []string, rows [][]string) error {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(tui.ColorMuted)).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Foreground(tui.ColorHeader).Bold(true).Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers(headers...).
		Rows(rows...)
	_, err := fmt.Fprintln(w, t.String())
	return err
}

// writeFields prints label/value pairs, one per line.
func writeFields(w io.Writer, fields [][2]string) error {
	label := lipgloss.NewStyle().Foreground(tui.ColorLabel)
	width := 0
	for _, f := range fields {
		width = max(width, lipgloss.Width(f[0]))
	}
	for _, f := range fields {
		if _, err := fmt.Fprintf(w, "%s  %s\n", label.Width(width).Render(f[0]), f[1]); err != nil {
			return err
		}
	}
	return nil
}
