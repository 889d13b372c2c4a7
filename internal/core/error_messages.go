package core

// error_messages.go maps technical errors to operator messages with codes.
//
// Every non-fatal condition of a run lands in the run report as an [Issue]
// carrying one of these codes, and fatal errors surface through the CLI and
// HTTP API the same way. Operators can quote the code when reporting a
// problem with a run.
//
// # Document Errors (LOAD001-LOAD099)
//
//	LOAD001 - Document unreadable: The spreadsheet could not be opened
//	          Action: Check the template path and that the file is an .ods archive
//	          Patterns: "load "
//
//	LOAD002 - No content: The archive has no content.xml member
//	          Action: Re-save the template from a spreadsheet application
//	          Patterns: "no content.xml"
//
//	LOAD003 - No sheet: The document has no spreadsheet table
//	          Action: Make sure the template contains a sheet
//	          Patterns: "no spreadsheet table"
//
// # Lookup Misses (LOOKUP001-LOOKUP099)
//
//	LOOKUP001 - Country not found: No row has this country name
//	            Action: Check the spelling against the country column
//	            Patterns: "country not found"
//
//	LOOKUP002 - Date outside calendar: The date has no header column
//	            Action: Check the target year and fiscal offset
//	            Patterns: "not in calendar"
//
//	LOOKUP003 - Cell out of range: A row or column does not exist
//	            Action: Check the sheet column settings
//	            Patterns: "out of range"
//
//	LOOKUP004 - No source: The country has no scrapeable source URL
//	            Action: Run the URL refresh or add holidays as overrides
//	            Patterns: "no scrapeable source"
//
// # Fetch Errors (FETCH001-FETCH099)
//
//	FETCH001 - Not published: Holidays for this year are not online yet
//	           Action: None; the year is fetched again on the next run
//	           Patterns: "not yet published"
//
//	FETCH002 - Bad response: The listing site returned an error status
//	           Action: Check the source URL in the sheet
//	           Patterns: ": status "
//
//	FETCH003 - Timeout: The listing site did not answer in time
//	           Action: Retry later or raise SCRAPE_TIMEOUT
//	           Patterns: "deadline exceeded", "timeout"
//
//	FETCH004 - Unreachable: The listing site could not be reached
//	           Action: Check network access and the source URL host
//	           Patterns: "no such host", "connection refused", "connection reset"
//
// # Input Errors (PARSE001-PARSE099)
//
//	PARSE001 - Invalid date: A literal date is not DD/MM/YY
//	           Action: Fix the date in the override file
//	           Patterns: "invalid date"
//
//	PARSE002 - Invalid input: An override file or filter expression is malformed
//	           Action: Fix the syntax and run again
//	           Patterns: "override file", "filter expression"
//
// # Save Errors (SAVE001-SAVE099)
//
//	SAVE001 - Save failed: The populated calendar could not be written
//	          Action: Check the output directory exists and is writable
//	          Patterns: "save "
//
// # Run Errors (RUN001-RUN099)
//
//	RUN001 - Run in progress: Another run owns the document
//	         Action: Wait for the current run to finish
//	         Patterns: "run already in progress"
//
//	RUN002 - Run cancelled: The run was stopped before it finished
//	         Action: Start a new run
//	         Patterns: "context canceled"
//
//	RUN003 - Run not found: No run with this ID is known
//	         Action: Check the run ID
//	         Patterns: "run not found"
//
// # Default Error (ERR000)
//
//	ERR000 - Unknown error: An unexpected error occurred
//	         Action: Check the logs for the run
//
// Patterns are matched case-insensitively with strings.Contains and the
// first match wins, so specific patterns come before general ones.

import (
	"fmt"
	"strings"
)

// UserMessage provides operator-facing error information with guidance.
type UserMessage struct {
	Message string `json:"message"` // What happened
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Code for support reference
}

// errorPattern defines a pattern to match and its corresponding message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

var (
	msgLoadUnreadable = UserMessage{
		Message: "The spreadsheet could not be opened",
		Action:  "Check the template path and that the file is an .ods archive",
		Code:    "LOAD001",
	}
	msgFetchTimeout = UserMessage{
		Message: "The listing site did not answer in time",
		Action:  "Retry later or raise SCRAPE_TIMEOUT",
		Code:    "FETCH003",
	}
	msgFetchUnreachable = UserMessage{
		Message: "The listing site could not be reached",
		Action:  "Check network access and the source URL host",
		Code:    "FETCH004",
	}
	msgInvalidInput = UserMessage{
		Message: "An override file or filter expression is malformed",
		Action:  "Fix the syntax and run again",
		Code:    "PARSE002",
	}
)

// errorPatterns maps technical error patterns (case-insensitive) to messages.
// The first matching pattern wins, so order matters.
var errorPatterns = []errorPattern{
	// Document
	{
		pattern: "no content.xml",
		msg: UserMessage{
			Message: "The archive has no content.xml member",
			Action:  "Re-save the template from a spreadsheet application",
			Code:    "LOAD002",
		},
	},
	{
		pattern: "no spreadsheet table",
		msg: UserMessage{
			Message: "The document has no spreadsheet table",
			Action:  "Make sure the template contains a sheet",
			Code:    "LOAD003",
		},
	},

	// Lookups
	{
		pattern: "country not found",
		msg: UserMessage{
			Message: "No row has this country name",
			Action:  "Check the spelling against the country column",
			Code:    "LOOKUP001",
		},
	},
	{
		pattern: "not in calendar",
		msg: UserMessage{
			Message: "The date has no header column",
			Action:  "Check the target year and fiscal offset",
			Code:    "LOOKUP002",
		},
	},
	{
		pattern: "out of range",
		msg: UserMessage{
			Message: "A row or column does not exist",
			Action:  "Check the sheet column settings",
			Code:    "LOOKUP003",
		},
	},
	{
		pattern: "no scrapeable source",
		msg: UserMessage{
			Message: "The country has no scrapeable source URL",
			Action:  "Run the URL refresh or add holidays as overrides",
			Code:    "LOOKUP004",
		},
	},

	// Fetch
	{
		pattern: "not yet published",
		msg: UserMessage{
			Message: "Holidays for this year are not online yet",
			Action:  "None; the year is fetched again on the next run",
			Code:    "FETCH001",
		},
	},
	{
		pattern: ": status ",
		msg: UserMessage{
			Message: "The listing site returned an error status",
			Action:  "Check the source URL in the sheet",
			Code:    "FETCH002",
		},
	},
	{pattern: "deadline exceeded", msg: msgFetchTimeout},
	{pattern: "timeout", msg: msgFetchTimeout},
	{pattern: "no such host", msg: msgFetchUnreachable},
	{pattern: "connection refused", msg: msgFetchUnreachable},
	{pattern: "connection reset", msg: msgFetchUnreachable},

	// Input
	{
		pattern: "invalid date",
		msg: UserMessage{
			Message: "A literal date is not DD/MM/YY",
			Action:  "Fix the date in the override file",
			Code:    "PARSE001",
		},
	},
	{pattern: "override file", msg: msgInvalidInput},
	{pattern: "filter expression", msg: msgInvalidInput},

	// Save
	{
		pattern: "save ",
		msg: UserMessage{
			Message: "The populated calendar could not be written",
			Action:  "Check the output directory exists and is writable",
			Code:    "SAVE001",
		},
	},

	// Generic load comes after the specific load causes above.
	{pattern: "load ", msg: msgLoadUnreadable},

	// Runs
	{
		pattern: "run already in progress",
		msg: UserMessage{
			Message: "Another run owns the document",
			Action:  "Wait for the current run to finish",
			Code:    "RUN001",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "The run was stopped before it finished",
			Action:  "Start a new run",
			Code:    "RUN002",
		},
	},
	{
		pattern: "run not found",
		msg: UserMessage{
			Message: "No run with this ID is known",
			Action:  "Check the run ID",
			Code:    "RUN003",
		},
	},
}

// defaultMessage is returned when no pattern matches.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Check the logs for the run",
	Code:    "ERR000",
}

// MapError converts a technical error to an operator message.
// It searches through known error patterns (case-insensitive) and returns
// the first match. If no pattern matches, a generic fallback message with
// code ERR000 is returned.
//
// Example:
//
//	err := fmt.Errorf("France: %w", ErrCountryNotFound)
//	msg := MapError(err)
//	// msg.Code == "LOOKUP001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing checks if an error matches a known pattern.
// Returns true if the error matches a specific pattern (not the generic ERR000 fallback).
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	msg := MapError(err)
	return msg.Code != defaultMessage.Code
}
