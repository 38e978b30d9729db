// Package domain defines the Card scheduling record, its invariants and the
// calendar-date helpers shared by the scheduler, the stores and the API.
package domain
