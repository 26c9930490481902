// Package hotel holds the client-side state of the boutique hotel: the room
// catalogue and availability, the booking flow and the signed-in user.
//
// Each store wraps the API behind small methods that record a loading flag
// and the last error message, so a front end can render them directly:
//
//	api, _ := client.New(client.DefaultConfig(client.DefaultBaseURL, nil))
//	rooms := hotel.NewRoomStore(api)
//	if err := rooms.FetchRooms(ctx); err != nil {
//		return err
//	}
//	pages := pagination.New[hotel.Room](pagination.SourceFunc[hotel.Room](rooms.Rooms), pagination.Options{})
package hotel
