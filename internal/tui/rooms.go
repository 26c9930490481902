package tui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/table"

	"github.com/Sternrassler/boutique-hotel-client/pkg/hotel"
)

// RoomHeaders are the column titles for room listings.
var RoomHeaders = []string{"ID", "Name", "Beds", "Price/Night"}

// RoomRow formats a room for a table row.
func RoomRow(r hotel.Room) []string {
	return []string{
		strconv.Itoa(r.ID),
		r.RoomsName,
		strconv.Itoa(r.Beds),
		fmt.Sprintf("%.2f €", r.PricePerNight),
	}
}

func roomColumns() []table.Column {
	widths := []int{5, 28, 6, 12}
	cols := make([]table.Column, len(RoomHeaders))
	for i, title := range RoomHeaders {
		cols[i] = table.Column{Title: title, Width: widths[i]}
	}
	return cols
}

func roomRows(rooms []hotel.Room) []table.Row {
	rows := make([]table.Row, len(rooms))
	for i, r := range rooms {
		rows[i] = RoomRow(r)
	}
	return rows
}
