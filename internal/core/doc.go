// Package core runs the jobs that build the holiday calendar.
//
// This package holds the domain logic between the spreadsheet model
// ([ods]), the date grid ([calendar]) and the listing scraper ([scrape]). It is
// used by the CLI and the HTTP server alike and performs no interactive I/O.
//
// # Runs
//
// A [Service] performs three kinds of run, each producing a [RunReport]:
//
//   - [Service.Populate]: build the date header for a calendar window, colour
//     every country row from its status column, scrape each country's
//     listing pages and write the holidays, then save a dated copy.
//   - [Service.ApplyOverrides]: write hand-entered holidays from a YAML file
//     into an already populated calendar.
//   - [Service.RefreshURLs]: rewrite every country's listing URL for a year.
//
// Only one run owns the document at a time. [RunLimiter] has a single slot;
// [Service.Populate] waits for it, [Service.StartPopulate] refuses with
// [ErrRunInProgress].
//
// # Styling
//
// National holidays are amber and regional ones pink. A supported row is
// green except where a holiday is already highlighted; an unsupported row is
// grey throughout and is not scraped:
//
//	Status "yes" -> GreenRow over [0, last date column], holidays kept
//	Status "no"  -> GreyRow forced over [0, last date column]
//	Status ""    -> holidays only
//
// # Issues
//
// Lookup misses, fetch failures and bad override dates never abort a run.
// Each one becomes an [Issue] on the country's [CountryReport] with a code
// from [MapError] and is logged with the country, date and URL:
//
//   - LOAD001-LOAD003: Document errors (fatal)
//   - LOOKUP001-LOOKUP004: Lookup misses
//   - FETCH001-FETCH004: Fetch errors
//   - PARSE001-PARSE002: Override and filter input
//   - SAVE001: Save failures (fatal, previous output kept)
//   - RUN001-RUN003: Run admission
package core
