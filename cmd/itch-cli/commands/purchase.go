package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var showLightbox *bool

func init() {
	showLightbox = purchaseCmd.Flags().Bool("lightbox", false, "Print the html of the dialog.")
	rootCmd.AddCommand(purchaseCmd)
}

var purchaseCmd = &cobra.Command{
	Use:   "purchase <url>",
	Short: "Prints the purchase dialog of a game page.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dialog, err := client.PurchaseDialog(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		t := newTable(table.Row{"Field"})
		for _, name := range dialog.FieldNames() {
			t.AppendRow(table.Row{name})
		}
		t.Render()

		if *showLightbox {
			lightbox, ok := dialog.Lightbox()
			if !ok {
				return fmt.Errorf("dialog has no lightbox")
			}
			fmt.Println(lightbox)
		}
		return nil
	},
}
