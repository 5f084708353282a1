// Package instrument reads raw gas-chromatograph exports into the
// standardized run format the analysis package consumes.
//
// Each rig has its own parser because each vendor export looks different,
// but every parser produces the same thing: a domain.Run with an elapsed
// time-on-stream index in hours (first retained sample at zero), lower-case
// compound columns and response-factor-corrected areas rounded to two
// decimals.
//
// # Parsers
//
//	CoFeedRig        single-detector OpenLab CSV export
//	HighPressureRig  dual-FID rig, one spreadsheet per detector
//
// # Failure policy
//
// A missing or invalid instrument record is fatal. A malformed row (empty or
// unparseable time cell, unreadable run time) is dropped and logged at debug
// level; empty numeric cells read as zero. Structural problems with the file
// itself, missing sentinel rows or no data rows at all, fail the whole parse.
package instrument
