// Package services holds the site's workflows on top of the backend client:
// authentication, booking creation and history, the admin board, profile
// self-service and the contact form.
//
// Every form is a closed struct with one field per input. Validation runs
// before any backend call and reports FieldErrors keyed by the form field name.
// Lists held by callers change only after the backend confirmed a mutation.
package services
