package commands

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(resolveCmd)
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <url>",
	Short: "Resolves the id and file url of every download on a game page.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		page, err := client.GamePage(ctx, args[0])
		if err != nil {
			return err
		}
		resolved, err := client.ResolveAll(ctx, page)
		if err != nil {
			return err
		}

		t := newTable(table.Row{"Title", "Id", "External", "Url"})
		for _, r := range resolved {
			t.AppendRow(table.Row{r.Download.Title, r.Id, r.Info.External, r.Info.Url.String()})
		}
		t.Render()
		return nil
	},
}
