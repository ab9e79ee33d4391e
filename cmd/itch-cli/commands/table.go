package commands

import (
	"os"
	"strconv"
	"strings"

	"itchscraper/internal/scrapers/itchio"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
)

func newTable(header table.Row) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(header)
	return t
}

func formatPlatforms(platforms []itchio.Platform) string {
	names := make([]string, len(platforms))
	for i, p := range platforms {
		names[i] = p.String()
	}
	return strings.Join(names, ", ")
}

// formatSize shows the size itch.io displays followed by the parsed size, if
// the text could not be parsed only the text is shown.
func formatSize(text string, size uint64, ok bool) string {
	if !ok {
		return text
	}
	return text + " (" + humanize.Bytes(size) + ")"
}

func formatId(id *uint64) string {
	if id == nil {
		return "-"
	}
	return strconv.FormatUint(*id, 10)
}
