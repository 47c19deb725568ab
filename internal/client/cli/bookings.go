package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/gnmweb/internal/common"
	"github.com/dmitrijs2005/gnmweb/internal/models"
	"github.com/dmitrijs2005/gnmweb/internal/services"
)

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid booking id %q", arg)
	}
	return id, nil
}

// printFieldErrors lists validation messages in a stable order.
func printFieldErrors(w io.Writer, err error) {
	fe := services.AsFieldErrors(err)
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "  %s: %s\n", k, fe[k])
	}
}

// History lists the caller's own bookings with the past/upcoming summary.
func (a *App) History(ctx context.Context) error {
	list, err := a.bookings.History(ctx)
	if err != nil {
		fmt.Fprintln(a.out, "We couldn't load your bookings. Please try again.")
		return err
	}
	a.history = list

	now := a.now()
	sum := services.Summarize(list, now)
	fmt.Fprintf(a.out, "Total: %d  Upcoming: %d  Past: %d\n", sum.Total, sum.Upcoming, sum.Past)
	if len(list) == 0 {
		fmt.Fprintln(a.out, "You have no bookings yet.")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tEVENT\tGUESTS\tSTATUS\t")
	for _, b := range list {
		when := ""
		if services.IsPast(b, now) {
			when = "past"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%s\n", b.ID, b.EventDate, b.EventType, b.GuestCount, b.Status.Label(), when)
	}
	return tw.Flush()
}

// Delete removes one of the caller's bookings after a confirmation.
func (a *App) Delete(ctx context.Context, arg string) error {
	id, err := parseID(arg)
	if err != nil {
		fmt.Fprintln(a.out, err)
		return err
	}

	if a.history == nil {
		if a.history, err = a.bookings.History(ctx); err != nil {
			fmt.Fprintln(a.out, "We couldn't load your bookings. Please try again.")
			return err
		}
	}

	var target *models.Booking
	for i := range a.history {
		if a.history[i].ID == id {
			target = &a.history[i]
			break
		}
	}
	if target == nil {
		fmt.Fprintf(a.out, "No booking #%d in your history.\n", id)
		return common.ErrNotFound
	}

	ok, err := GetConfirm(a.reader, fmt.Sprintf("Delete booking #%d (%s on %s)?", id, target.EventType, target.EventDate), a.out)
	if err != nil || !ok {
		return err
	}

	list, err := a.bookings.DeleteOwn(ctx, a.history, id)
	if err != nil {
		fmt.Fprintln(a.out, services.NoticeFor(err, services.NoticeDeleteFailed))
		return err
	}
	a.history = list
	fmt.Fprintln(a.out, services.NoticeBookingDeleted)
	return nil
}

// askEventType shows the numbered event types and accepts a number or a
// name.
func (a *App) askEventType(current string) (string, error) {
	var b strings.Builder
	b.WriteString("Event type")
	for i, t := range models.EventTypes {
		fmt.Fprintf(&b, "\n  %d) %s", i+1, t)
	}
	v, err := GetWithDefault(a.reader, b.String(), current, a.out)
	if err != nil {
		return "", err
	}
	if n, err := strconv.Atoi(v); err == nil && n >= 1 && n <= len(models.EventTypes) {
		return models.EventTypes[n-1], nil
	}
	for _, t := range models.EventTypes {
		if strings.EqualFold(t, v) {
			return t, nil
		}
	}
	return v, nil
}

// Book walks through the booking form. A signed-in account pre-fills name
// and email.
func (a *App) Book(ctx context.Context) error {
	f := &services.BookingForm{GuestCount: 1}
	if a.identity != nil {
		f.Name = a.identity.DisplayName()
		f.Email = a.identity.Email
	}

	var err error
	ask := func(dst *string, prompt string) {
		if err == nil {
			*dst, err = GetWithDefault(a.reader, prompt, *dst, a.out)
		}
	}

	ask(&f.Name, "Full name")
	ask(&f.Email, "Email")
	ask(&f.Phone, "Phone")
	if err == nil {
		f.EventType, err = a.askEventType(f.EventType)
	}
	if err == nil && f.EventType == models.EventTypeOther {
		ask(&f.CustomEventType, "Please specify the event type")
	}
	ask(&f.EventDate, "Event date (YYYY-MM-DD)")
	ask(&f.Venue, "Venue")
	guests := strconv.Itoa(f.GuestCount)
	ask(&guests, "Number of guests")
	ask(&f.Budget, "Budget")
	if err == nil {
		f.SpecialRequests, err = GetMultiline(a.reader, "Special requests", a.out)
	}
	if err != nil {
		return err
	}
	if f.GuestCount, err = strconv.Atoi(guests); err != nil {
		fmt.Fprintln(a.out, "Number of guests must be a whole number.")
		return err
	}

	b, err := a.bookings.Create(ctx, f)
	if err != nil {
		fmt.Fprintln(a.out, services.NoticeFor(err, services.NoticeBookingFailed))
		printFieldErrors(a.out, err)
		return err
	}
	a.history = nil
	fmt.Fprintln(a.out, services.NoticeBookingSent)
	if b.ID != 0 {
		fmt.Fprintf(a.out, "Reference: #%d\n", b.ID)
	}
	return nil
}
