// Package cli provides the interactive GNM Events console client.
//
// It drives the same services layer as the web site against the same
// backend, keeping one cookie jar for the whole run. Typical flow: log in,
// look at or create bookings, and, for staff accounts, work through the
// admin dashboard.
//
// Key features:
//   - Login / Logout / Whoami
//   - Book an event, list and delete your own bookings
//   - Staff only: list and filter all bookings and users, edit and remove bookings
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See runREPL for the command set.
package cli
