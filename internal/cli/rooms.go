package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Sternrassler/boutique-hotel-client/internal/tui"
	"github.com/Sternrassler/boutique-hotel-client/pkg/hotel"
	"github.com/Sternrassler/boutique-hotel-client/pkg/pagination"
)

type pageFlags struct {
	page     int
	pageSize int
}

func (p *pageFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&p.page, "page", pagination.DefaultPage, "page to show (clamped to the available pages)")
	cmd.Flags().IntVar(&p.pageSize, "page-size", 0, "items per page (default HOTEL_PAGE_SIZE or 5)")
}

func newRoomsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rooms",
		Short: "List rooms and check availability",
	}
	cmd.AddCommand(newRoomsListCmd(a), newRoomsAvailableCmd(a), newRoomsBrowseCmd(a))
	return cmd
}

func newRoomsListCmd(a *app) *cobra.Command {
	var pf pageFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all rooms, one page at a time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.rooms.FetchRooms(cmd.Context()); err != nil {
				return err
			}
			pager := pagination.New[hotel.Room](pagination.SourceFunc[hotel.Room](a.rooms.Rooms), pagination.Options{
				PageSize:    a.pageSize(pf.pageSize),
				InitialPage: pf.page,
			})
			return renderPage(cmd.OutOrStdout(), a.flags.output, pager.State(), tui.RoomHeaders, tui.RoomRow)
		},
	}
	pf.register(cmd)
	return cmd
}

func newRoomsAvailableCmd(a *app) *cobra.Command {
	var pf pageFlags
	var from, to string

	cmd := &cobra.Command{
		Use:     "available",
		Short:   "List rooms available for a stay",
		Example: "  hotel rooms available --from 2025-05-01 --to 2025-05-04",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := hotel.ValidateDates(from, to); err != nil {
				return err
			}
			if err := a.rooms.FetchRooms(ctx); err != nil {
				return err
			}
			a.rooms.SetSelectedDates(from, to)
			if _, err := a.rooms.FetchAvailableRooms(ctx, from, to); err != nil {
				return err
			}
			logger.Debug().Str("from", from).Str("to", to).Int("available", len(a.rooms.AvailableRooms())).Msg("Availability loaded")

			pager := pagination.New[hotel.Room](pagination.SourceFunc[hotel.Room](a.rooms.AvailableRooms), pagination.Options{
				PageSize:    a.pageSize(pf.pageSize),
				InitialPage: pf.page,
			})
			return renderPage(cmd.OutOrStdout(), a.flags.output, pager.State(), tui.RoomHeaders, tui.RoomRow)
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "arrival date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "departure date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	pf.register(cmd)
	return cmd
}

func newRoomsBrowseCmd(a *app) *cobra.Command {
	var pf pageFlags
	var from, to string

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Page through rooms interactively",
		Long:  "Page through rooms interactively. Keys: n/→ next, p/← previous, g first, G last, +/- page size, q quit.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := a.rooms.FetchRooms(ctx); err != nil {
				return err
			}

			title := "Rooms"
			source := pagination.SourceFunc[hotel.Room](a.rooms.Rooms)
			if from != "" || to != "" {
				if _, err := a.rooms.FetchAvailableRooms(ctx, from, to); err != nil {
					return err
				}
				title = fmt.Sprintf("Rooms available %s – %s", from, to)
				source = a.rooms.AvailableRooms
			}

			pager := pagination.New[hotel.Room](source, pagination.Options{
				PageSize:    a.pageSize(pf.pageSize),
				InitialPage: pf.page,
			})
			p := tea.NewProgram(
				tui.NewRoomBrowser(title, pager),
				tea.WithContext(ctx),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
			)
			_, err := p.Run()
			return err
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "only rooms available from this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "only rooms available until this date (YYYY-MM-DD)")
	cmd.MarkFlagsRequiredTogether("from", "to")
	pf.register(cmd)
	return cmd
}
