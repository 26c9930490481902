package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sternrassler/boutique-hotel-client/internal/tui"
)

const aboutText = `A small hotel with a handful of individually furnished rooms.
Browse the rooms, check which are free for your dates and book directly.
No account is needed to book; sign in to see your profile.`

const impressumText = `Boutique Hotel
Operator and contact details are published by the hotel at its website.
The booking service is provided through the hotel's public API.`

func newAboutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "about",
		Short: "About the hotel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), tui.TitleStyle.Render("About")+"\n"+aboutText)
			return err
		},
	}
}

func newImpressumCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "impressum",
		Short: "Legal notice",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), tui.TitleStyle.Render("Impressum")+"\n"+impressumText)
			return err
		},
	}
}
