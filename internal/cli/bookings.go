package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Sternrassler/boutique-hotel-client/pkg/hotel"
	"github.com/Sternrassler/boutique-hotel-client/pkg/pagination"
)

var bookingHeaders = []string{"ID", "Room", "From", "To", "Guest", "Email"}

func bookingRow(b hotel.Booking) []string {
	return []string{
		strconv.Itoa(b.ID),
		strconv.Itoa(b.RoomID),
		b.From,
		b.To,
		b.Firstname + " " + b.Lastname,
		b.Email,
	}
}

func newBookingsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bookings",
		Short: "List and create bookings",
	}
	cmd.AddCommand(newBookingsListCmd(a), newBookingsCreateCmd(a))
	return cmd
}

func newBookingsListCmd(a *app) *cobra.Command {
	var pf pageFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List bookings, one page at a time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := a.bookings.FetchBookings(cmd.Context()); err != nil {
				return err
			}
			pager := pagination.New[hotel.Booking](pagination.SourceFunc[hotel.Booking](a.bookings.Bookings), pagination.Options{
				PageSize:    a.pageSize(pf.pageSize),
				InitialPage: pf.page,
			})
			return renderPage(cmd.OutOrStdout(), a.flags.output, pager.State(), bookingHeaders, bookingRow)
		},
	}
	pf.register(cmd)
	return cmd
}

func newBookingsCreateCmd(a *app) *cobra.Command {
	var (
		roomID   int
		from, to string
		customer hotel.Customer
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Book a room for a stay",
		Example: `  hotel bookings create --room 3 --from 2025-05-01 --to 2025-05-04 \
    --firstname Ada --lastname Lovelace --email ada@example.com --birthdate 1815-12-10`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			flow := a.bookings

			flow.ResetBookingFlow()
			flow.SetCustomerDraft(customer)
			logger.Info().Str("step", string(flow.BookingStep())).Int("room_id", roomID).Msg("Booking details entered")

			if err := hotel.ValidateDates(from, to); err != nil {
				return err
			}

			// Look the room up for the summary; a missing catalogue is not fatal.
			var room *hotel.Room
			if err := a.rooms.FetchRooms(ctx); err != nil {
				logger.Warn().Err(err).Msg("Room catalogue unavailable for summary")
			} else if r, ok := a.rooms.Room(roomID); ok {
				room = &r
				a.rooms.SetSelectedRoom(room)
			} else {
				return fmt.Errorf("room %d does not exist", roomID)
			}
			a.rooms.SetSelectedDates(from, to)

			flow.SetBookingStep(hotel.StepCheck)
			logger.Info().Str("step", string(flow.BookingStep())).Int("room_id", roomID).Msg("Checking booking")
			if a.flags.output == formatTable {
				if err := writeSummary(out, roomID, room, from, to, flow.CustomerDraft()); err != nil {
					return err
				}
			}

			booking, err := flow.BookRoom(ctx, roomID, from, to, flow.CustomerDraft())
			if err != nil {
				return err
			}

			flow.SetBookingStep(hotel.StepConfirmation)
			logger.Info().Str("step", string(flow.BookingStep())).Int("booking_id", booking.ID).Msg("Booking confirmed")

			return render(out, a.flags.output, booking, func(w io.Writer) error {
				if _, err := fmt.Fprintln(w, "\nBooking confirmed."); err != nil {
					return err
				}
				return writeTable(w, bookingHeaders, [][]string{bookingRow(*booking)})
			})
		},
	}

	f := cmd.Flags()
	f.IntVar(&roomID, "room", 0, "room ID")
	f.StringVar(&from, "from", "", "arrival date (YYYY-MM-DD)")
	f.StringVar(&to, "to", "", "departure date (YYYY-MM-DD)")
	f.StringVar(&customer.Firstname, "firstname", "", "guest first name")
	f.StringVar(&customer.Lastname, "lastname", "", "guest last name")
	f.StringVar(&customer.Email, "email", "", "guest email")
	f.StringVar(&customer.Birthdate, "birthdate", "", "guest birth date (YYYY-MM-DD)")
	for _, name := range []string{"room", "from", "to", "firstname", "lastname", "email"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func writeSummary(w io.Writer, roomID int, room *hotel.Room, from, to string, c hotel.Customer) error {
	roomLabel := strconv.Itoa(roomID)
	if room != nil {
		roomLabel = fmt.Sprintf("%d (%s)", room.ID, room.RoomsName)
	}
	return writeFields(w, [][2]string{
		{"Room", roomLabel},
		{"Stay", from + " → " + to},
		{"Guest", c.Firstname + " " + c.Lastname},
		{"Email", c.Email},
		{"Birthdate", c.Birthdate},
	})
}
