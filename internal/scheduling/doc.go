// Package scheduling decides which dates and time slots a staff member can be
// offered for an in-person visit, and validates bookings against the service
// radius, the leave calendar and existing visits.
//
// Every function works on snapshots supplied by the caller and keeps no
// state, so independent queries may run concurrently. Persisting a booking
// atomically is the storage layer's job: the validation in RequestVisit must
// run inside the same transaction that inserts the visit.
package scheduling
