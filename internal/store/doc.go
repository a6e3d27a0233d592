// Package store groups the persistence implementations for scrape runs
// and normalized records. The interfaces live in the portal package;
// subpackages provide in-memory and Postgres backends and must stay
// swappable behind those interfaces.
package store
