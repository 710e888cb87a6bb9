package main

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pevans/newscrape/pipeline"
)

// printSummary renders one row per extracted site.
func printSummary(w io.Writer, summary pipeline.Summary) {
	if len(summary.Sites) == 0 {
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Site", "Links", "Articles", "Status"})

	for _, r := range summary.Sites {
		status := "ok"
		if r.Err != nil {
			status = r.Err.Error()
		}
		t.AppendRow(table.Row{r.Site, r.Links, r.Articles, status})
	}

	t.AppendFooter(table.Row{"Total", "", summary.Articles(), ""})
	t.Render()
}
