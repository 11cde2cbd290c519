// Package store persists users and completed transformations in SQLite.
// Image bytes live in the database alongside their metadata so a single
// file holds everything the daemon needs.
package store
