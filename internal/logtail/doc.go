// Package logtail reads the end of Skipper's own log file for display in
// the TUI.
//
// Read walks the file backwards in fixed-size chunks, so the cost depends on
// the number of lines requested rather than the file size. Missing files
// return no lines and no error; the log may not exist before the first poll.
//
// StripPrefix trims the logger prefix and date written by the standard
// library logger, leaving the time of day and the message.
package logtail
