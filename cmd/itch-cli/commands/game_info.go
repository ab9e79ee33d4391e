package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(gameInfoCmd)
}

var gameInfoCmd = &cobra.Command{
	Use:   "game-info <url>",
	Short: "Prints the information on a game page.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		page, err := client.GamePage(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		viewHtml := "-"
		if page.ViewHtmlUrl != nil {
			viewHtml = page.ViewHtmlUrl.String()
		}

		info := newTable(table.Row{"Field", "Value"})
		info.AppendRows([]table.Row{
			{"Title", page.Title},
			{"Url", page.CanonicalUrl.String()},
			{"CSRF Token", page.CsrfToken},
			{"Viewer Url", viewHtml},
		})
		info.Render()

		if len(page.Downloads) == 0 {
			fmt.Println("no downloads")
			return nil
		}

		downloads := newTable(table.Row{"#", "Title", "Size", "Id", "Platforms"})
		for i, d := range page.Downloads {
			size, ok := d.ParseSize()
			downloads.AppendRow(table.Row{
				i, d.Title, formatSize(d.SizeText, size, ok), formatId(d.Id), formatPlatforms(d.Platforms),
			})
		}
		downloads.Render()
		return nil
	},
}
