// Package models holds the wire types exchanged with the booking backend.
// JSON tags follow the backend's field names.
package models
