package commands

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(downloadPageCmd)
}

var downloadPageCmd = &cobra.Command{
	Use:   "download-page <url>",
	Short: "Prints the download page of a game, which lists the id of every upload.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		page, err := client.GamePage(ctx, args[0])
		if err != nil {
			return err
		}
		info, err := client.DownloadPageUrl(ctx, page.CanonicalUrl.String(), page.CsrfToken)
		if err != nil {
			return err
		}
		downloadPage, err := client.DownloadPage(ctx, info.Url.String())
		if err != nil {
			return err
		}

		t := newTable(table.Row{"Title", "Size", "Id", "Platforms"})
		for _, d := range downloadPage.Downloads {
			size, ok := d.ParseSize()
			t.AppendRow(table.Row{d.Title, formatSize(d.SizeText, size, ok), d.Id, formatPlatforms(d.Platforms)})
		}
		t.Render()
		return nil
	},
}
