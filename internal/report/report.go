// Package report prints the last import without the interactive screen.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/tormodhaugland/lastimport/internal/model"
)

const footnote = "Current Price* = price of the stock when the data was extracted."

// PageInfo describes which slice of the stocks is being printed.
type PageInfo struct {
	Page       int // zero-based
	TotalPages int
	TotalRows  int
}

type Options struct {
	Color    bool
	Location *time.Location
	// Indicators adds one column per indicator name of the first row.
	Indicators bool
}

// Render writes the import header, one page of stocks and the footnote.
func Render(w io.Writer, snap *model.StockImportSnapshot, rows []model.Stock, page PageInfo, opts Options) error {
	if snap == nil {
		return errors.New("no snapshot to render")
	}

	bold := func(s string) string { return s }
	if opts.Color {
		bold = func(s string) string { return text.Bold.Sprint(s) }
	}

	errs := snap.ErrorsLabel()
	if opts.Color && snap.HasErrors() {
		errs = text.Colors{text.FgRed}.Sprint(errs)
	}
	fmt.Fprintf(w, "%s %s\n", bold("Date:"), snap.DateLabel(opts.Location))
	fmt.Fprintf(w, "%s %s\n\n", bold("Errors:"), errs)
	fmt.Fprintln(w, bold("Stocks:"))

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	if opts.Color {
		tw.SetStyle(table.StyleColoredDark)
	} else {
		tw.SetStyle(table.StyleLight)
	}
	tw.Style().Options.DrawBorder = false
	tw.Style().Options.SeparateRows = false
	tw.Style().Options.SeparateColumns = false

	var extra []string
	if opts.Indicators && len(rows) > 0 {
		for _, name := range rows[0].IndicatorsValues.Names() {
			if name == model.ReservedIndicatorKey || name == model.CurrentPriceIndicator {
				continue
			}
			extra = append(extra, name)
		}
	}

	hdr := table.Row{"Stock Code", "Current Price*"}
	for _, name := range extra {
		hdr = append(hdr, name)
	}
	tw.AppendHeader(hdr)

	cfgs := []table.ColumnConfig{{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignRight}}
	for i := range extra {
		cfgs = append(cfgs, table.ColumnConfig{Number: i + 3, Align: text.AlignRight, AlignHeader: text.AlignRight})
	}
	tw.SetColumnConfigs(cfgs)

	for _, st := range rows {
		row := table.Row{st.Code, st.PriceLabel()}
		for _, name := range extra {
			v, _ := st.IndicatorsValues.Get(name)
			row = append(row, model.FormatValue(v))
		}
		tw.AppendRow(row)
	}
	if len(rows) == 0 {
		tw.AppendRow(table.Row{"(no stocks)", ""})
	}
	tw.Render()

	fmt.Fprintf(w, "\npage %d/%d (%d stocks)\n", page.Page+1, max(page.TotalPages, 1), page.TotalRows)
	fmt.Fprintln(w, footnote)
	return nil
}

// RenderStock lists every indicator of one stock in wire order, without
// the storage identifier.
func RenderStock(w io.Writer, st model.Stock, opts Options) error {
	title := st.Code + " indicators"
	if opts.Color {
		title = text.Bold.Sprint(title)
	}
	fmt.Fprintln(w, title)

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	if opts.Color {
		tw.SetStyle(table.StyleColoredDark)
	} else {
		tw.SetStyle(table.StyleLight)
	}
	tw.Style().Options.DrawBorder = false
	tw.Style().Options.SeparateRows = false
	tw.Style().Options.SeparateColumns = false
	tw.AppendHeader(table.Row{"Indicator", "Value"})
	tw.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignRight}})

	inds := st.IndicatorsValues.Without(model.ReservedIndicatorKey)
	for _, ind := range inds {
		tw.AppendRow(table.Row{ind.Name, model.FormatValue(ind.Value)})
	}
	if len(inds) == 0 {
		tw.AppendRow(table.Row{"(no indicators)", ""})
	}
	tw.Render()
	return nil
}

// RenderJSON writes the snapshot as indented JSON, the same shape the
// backend serves. LoadSnapshot reads it back.
func RenderJSON(w io.Writer, snap *model.StockImportSnapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}
