package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/gnmweb/internal/common"
	"github.com/dmitrijs2005/gnmweb/internal/models"
	"github.com/dmitrijs2005/gnmweb/internal/services"
)

// loadBoard fetches both admin lists. A backend refusal is reported the same
// way as a missing staff flag.
func (a *App) loadBoard(ctx context.Context) error {
	board := a.admin.Load(ctx)
	if errors.Is(board.BookingsErr, common.ErrForbidden) || errors.Is(board.UsersErr, common.ErrForbidden) {
		fmt.Fprintln(a.out, "Access denied: staff only.")
		return common.ErrForbidden
	}
	if board.BookingsErr != nil {
		fmt.Fprintln(a.out, "Bookings could not be loaded.")
	}
	if board.UsersErr != nil {
		fmt.Fprintln(a.out, "Users could not be loaded.")
	}
	a.board = board
	return nil
}

func (a *App) ensureBoard(ctx context.Context) error {
	if a.board != nil && a.board.BookingsErr == nil {
		return nil
	}
	return a.loadBoard(ctx)
}

// Admin reloads the dashboard and prints the stats and the bookings that
// match term.
func (a *App) Admin(ctx context.Context, term string) error {
	if err := a.loadBoard(ctx); err != nil {
		return err
	}

	st := a.board.Stats(a.now())
	fmt.Fprintf(a.out, "Bookings: %d  Users: %d  Upcoming: %d  Past: %d\n",
		st.TotalBookings, st.TotalUsers, st.UpcomingEvents, st.PastEvents)

	list := a.board.FilterBookings(term)
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No bookings found.")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCLIENT\tEMAIL\tEVENT\tDATE\tGUESTS\tSTATUS\tACCOUNT")
	for _, b := range list {
		account := b.UserEmail
		if account == "" {
			account = "guest"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			b.ID, b.Name, b.Email, b.EventType, b.EventDate, b.GuestCount, b.Status.Label(), account)
	}
	return tw.Flush()
}

// Users prints the accounts matching term with their booking counts.
func (a *App) Users(ctx context.Context, term string) error {
	if a.board == nil || a.board.UsersErr != nil {
		if err := a.loadBoard(ctx); err != nil {
			return err
		}
	}

	list := a.board.FilterUsers(term)
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No users found.")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tROLE\tBOOKINGS")
	for _, u := range list {
		var roles []string
		if u.IsSuperuser {
			roles = append(roles, "superuser")
		}
		if u.IsStaff {
			roles = append(roles, "staff")
		}
		if !u.IsActive {
			roles = append(roles, "inactive")
		}

		ub := a.board.UserBookings(u.ID, services.PreviewCap)
		summary := strconv.Itoa(ub.Count)
		if ub.More > 0 {
			summary += fmt.Sprintf(" (+%d more)", ub.More)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", u.ID, u.DisplayName(), u.Email, strings.Join(roles, ","), summary)
	}
	return tw.Flush()
}

func (a *App) boardBooking(ctx context.Context, arg string) (models.Booking, error) {
	id, err := parseID(arg)
	if err != nil {
		fmt.Fprintln(a.out, err)
		return models.Booking{}, err
	}
	if err := a.ensureBoard(ctx); err != nil {
		return models.Booking{}, err
	}
	b, ok := a.board.Booking(id)
	if !ok {
		fmt.Fprintf(a.out, "No booking #%d.\n", id)
		return models.Booking{}, common.ErrNotFound
	}
	return b, nil
}

// Edit prompts for every field of a booking, showing the current values.
// Pressing Enter keeps a value.
func (a *App) Edit(ctx context.Context, arg string) error {
	b, err := a.boardBooking(ctx, arg)
	if err != nil {
		return err
	}

	e := services.EditFor(b)
	ask := func(dst *string, prompt string) {
		if err == nil {
			*dst, err = GetWithDefault(a.reader, prompt, *dst, a.out)
		}
	}

	ask(&e.Name, "Name")
	ask(&e.Email, "Email")
	ask(&e.Phone, "Phone")
	if err == nil {
		e.EventType, err = a.askEventType(e.EventType)
	}
	ask(&e.EventDate, "Event date (YYYY-MM-DD)")
	ask(&e.Venue, "Venue")
	guests := strconv.Itoa(e.GuestCount)
	ask(&guests, "Number of guests")
	ask(&e.Budget, "Budget")
	ask(&e.SpecialRequests, "Special requests")

	statuses := make([]string, 0, len(models.Statuses))
	for _, s := range models.Statuses {
		statuses = append(statuses, string(s))
	}
	ask(&e.Status, "Status ("+strings.Join(statuses, ", ")+")")
	if err != nil {
		return err
	}
	if e.GuestCount, err = strconv.Atoi(guests); err != nil {
		fmt.Fprintln(a.out, "Number of guests must be a whole number.")
		return err
	}

	if _, err := a.admin.Update(ctx, a.board, &e); err != nil {
		fmt.Fprintln(a.out, services.NoticeFor(err, services.NoticeUpdateFailed))
		printFieldErrors(a.out, err)
		return err
	}
	fmt.Fprintln(a.out, services.NoticeBookingUpdated)
	return nil
}

// Remove deletes any booking after a confirmation.
func (a *App) Remove(ctx context.Context, arg string) error {
	b, err := a.boardBooking(ctx, arg)
	if err != nil {
		return err
	}

	ok, err := GetConfirm(a.reader, fmt.Sprintf("Delete booking #%d (%s, %s on %s)?", b.ID, b.Name, b.EventType, b.EventDate), a.out)
	if err != nil || !ok {
		return err
	}

	if err := a.admin.Delete(ctx, a.board, b.ID); err != nil {
		fmt.Fprintln(a.out, services.NoticeFor(err, services.NoticeDeleteFailed))
		return err
	}
	fmt.Fprintln(a.out, services.NoticeBookingDeleted)
	return nil
}
