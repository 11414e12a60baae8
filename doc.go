// Package main is the entry point of PagodaAdmin, the typed settings service
// of the pagoda booking system. Settings are kept in a SQL database as raw
// text plus a type tag and served through a JSON API on fiber and a cobra
// command line.
package main
