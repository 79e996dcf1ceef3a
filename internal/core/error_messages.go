// Package core error codes.
//
// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support reference.
// When a command fails, the CLI prints the mapped message and code next to the
// technical error.
//
// Error codes are grouped by category:
//
// # Database Errors (DB001-DB099)
//
// Errors related to database operations and constraints:
//
//	DB001 - A record with this ID already exists
//	        Action: Remove or renumber rows whose id is already stored
//	        Patterns: "duplicate key"
//
//	DB002 - This value must be unique but already exists
//	        Action: Check for duplicate names or emails in your CSV
//	        Patterns: "unique constraint", "violates unique"
//
//	DB003 - Referenced record does not exist
//	        Action: Import projects and users before memberships
//	        Patterns: "foreign key constraint", "violates foreign key"
//
//	DB004 - Unable to connect to database
//	        Action: Check DATABASE_URL and that the database is running
//	        Patterns: "connection refused"
//
//	DB005 - Database connection was interrupted
//	        Action: Please try again
//	        Patterns: "connection reset"
//
//	DB006 - Operation timed out
//	        Action: Try a smaller file or try again later
//	        Patterns: "timeout"
//
//	DB007 - Database was busy with conflicting operations
//	        Action: Please try again
//	        Patterns: "deadlock"
//
//	DB008 - Database file is locked by another process
//	        Action: Close other programs using the SQLite file and try again
//	        Patterns: "database is locked"
//
//
// # Configuration Errors (CFG001-CFG099)
//
// Errors raised before any row is read; retrying cannot help:
//
//	CFG001 - The storage engine has no native bulk transfer
//	         Action: Use the bulk or find-or-create strategy, or switch DB_DRIVER to postgres
//	         Patterns: "native bulk transfer is not supported"
//
//	CFG002 - Unknown entity
//	         Action: Use one of: projects, users, memberships
//	         Patterns: "unknown entity"
//
//	CFG003 - Unknown import strategy
//	         Action: Use one of: bulk, find-or-create, native
//	         Patterns: "unknown strategy"
//
//	CFG004 - Invalid export option
//	         Action: Offset and limit must be zero or positive
//	         Patterns: "invalid export option"
//
//	CFG005 - Configuration is invalid
//	         Action: Check the environment variables listed above
//	         Patterns: "config validation", "config load", "configuration error"
//
//
// # Validation Errors (VAL001-VAL099)
//
// Errors related to data validation and format checking:
//
//	VAL001 - Invalid date format detected
//	         Action: Use YYYY-MM-DD
//	         Patterns: "invalid date"
//
//	VAL002 - Invalid timestamp format detected
//	         Action: Use YYYY-MM-DD HH:MM:SS in the configured time zone
//	         Patterns: "invalid timestamp"
//
//	VAL003 - Invalid number format detected
//	         Action: Use whole numbers for ids
//	         Patterns: "invalid integer"
//
//	VAL004 - Required field is empty
//	         Action: Ensure all required columns have values
//	         Patterns: "is required"
//
//	VAL005 - Required column is missing from CSV
//	         Action: Check that all required columns are present in your file
//	         Patterns: "missing required column"
//
//	VAL006 - CSV contains a column that cannot be imported
//	         Action: Remove the column or fix its header spelling
//	         Patterns: "unknown column"
//
//	VAL007 - Record failed validation
//	         Action: Fix the fields listed in the error
//	         Patterns: "is invalid:"
//
//	VAL008 - Project name does not match any stored project
//	         Action: Import projects before users
//	         Patterns: "unknown project"
//
//	VAL009 - CSV header names a column twice
//	         Action: Keep one column per header name
//	         Patterns: "duplicate column"
//
//
// # File Errors (FILE001-FILE099)
//
// Errors related to file handling and parsing:
//
//	FILE001 - Row has more fields than the header
//	          Action: Ensure every row has the same columns as the header
//	          Patterns: "wrong number of fields"
//
//	FILE002 - File is not a valid CSV
//	          Action: Check quoting: quotes inside fields must be doubled
//	          Patterns: "quoted-field"
//
//	FILE003 - The file has no header row
//	          Action: Add a header row naming the columns
//	          Patterns: "missing header row"
//
//	FILE004 - File not found
//	          Action: Check the file path
//	          Patterns: "no such file"
//
//	FILE005 - File cannot be read or written
//	          Action: Check file and directory permissions
//	          Patterns: "permission denied"
//
//
// # Run Errors (RUN001-RUN099)
//
// Errors related to the run itself:
//
//	RUN001 - Run was cancelled
//	         Action: Start the run again when ready
//	         Patterns: "context canceled"
//
//	RUN002 - Run timed out
//	         Action: Try a smaller file
//	         Patterns: "context deadline exceeded"
//
// # Default Error (ERR000)
//
// Fallback when no specific pattern matches:
//
//	ERR000 - An unexpected error occurred
//	         Action: Check the log output for the technical error
//
// # Pattern Matching
//
// Error patterns are matched case-insensitively using strings.Contains.
// The first matching pattern wins, so more specific patterns should be
// defined before general ones. Multiple patterns can map to the same code
// (e.g., DB002 matches both "unique constraint" and "violates unique").
package core

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
// The first matching pattern wins, so order matters:
//   - Configuration patterns come first; their messages embed other text
//   - More specific patterns should come before general ones
var errorPatterns = []errorPattern{
	// =========================================================================
	// Configuration Errors (CFG001-CFG005)
	// =========================================================================
	{
		pattern: "native bulk transfer is not supported",
		msg: UserMessage{
			Message: "The storage engine has no native bulk transfer",
			Action:  "Use the bulk or find-or-create strategy, or switch DB_DRIVER to postgres",
			Code:    "CFG001",
		},
	},
	{
		pattern: "unknown entity",
		msg: UserMessage{
			Message: "Unknown entity",
			Action:  "Use one of: projects, users, memberships",
			Code:    "CFG002",
		},
	},
	{
		pattern: "unknown strategy",
		msg: UserMessage{
			Message: "Unknown import strategy",
			Action:  "Use one of: bulk, find-or-create, native",
			Code:    "CFG003",
		},
	},
	{
		pattern: "invalid export option",
		msg: UserMessage{
			Message: "Invalid export option",
			Action:  "Offset and limit must be zero or positive",
			Code:    "CFG004",
		},
	},
	{
		pattern: "config validation",
		msg: UserMessage{
			Message: "Configuration is invalid",
			Action:  "Check the environment variables listed above",
			Code:    "CFG005",
		},
	},
	{
		pattern: "config load",
		msg: UserMessage{
			Message: "Configuration is invalid",
			Action:  "Check the environment variables listed above",
			Code:    "CFG005",
		},
	},
	{
		pattern: "configuration error",
		msg: UserMessage{
			Message: "Configuration is invalid",
			Action:  "Check the environment variables listed above",
			Code:    "CFG005",
		},
	},

	// =========================================================================
	// Database Errors (DB001-DB008)
	// =========================================================================
	{
		pattern: "duplicate key",
		msg: UserMessage{
			Message: "A record with this ID already exists",
			Action:  "Remove or renumber rows whose id is already stored",
			Code:    "DB001",
		},
	},
	{
		pattern: "unique constraint",
		msg: UserMessage{
			Message: "This value must be unique but already exists",
			Action:  "Check for duplicate names or emails in your CSV",
			Code:    "DB002",
		},
	},
	{
		pattern: "violates unique",
		msg: UserMessage{
			Message: "This value must be unique but already exists",
			Action:  "Check for duplicate names or emails in your CSV",
			Code:    "DB002",
		},
	},
	{
		pattern: "foreign key constraint",
		msg: UserMessage{
			Message: "Referenced record does not exist",
			Action:  "Import projects and users before memberships",
			Code:    "DB003",
		},
	},
	{
		pattern: "violates foreign key",
		msg: UserMessage{
			Message: "Referenced record does not exist",
			Action:  "Import projects and users before memberships",
			Code:    "DB003",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Check DATABASE_URL and that the database is running",
			Code:    "DB004",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB005",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Try a smaller file or try again later",
			Code:    "DB006",
		},
	},
	{
		pattern: "deadlock",
		msg: UserMessage{
			Message: "Database was busy with conflicting operations",
			Action:  "Please try again",
			Code:    "DB007",
		},
	},
	{
		pattern: "database is locked",
		msg: UserMessage{
			Message: "Database file is locked by another process",
			Action:  "Close other programs using the SQLite file and try again",
			Code:    "DB008",
		},
	},

	// =========================================================================
	// Validation Errors (VAL001-VAL009)
	// =========================================================================
	{
		pattern: "invalid date",
		msg: UserMessage{
			Message: "Invalid date format detected",
			Action:  "Use YYYY-MM-DD",
			Code:    "VAL001",
		},
	},
	{
		pattern: "invalid timestamp",
		msg: UserMessage{
			Message: "Invalid timestamp format detected",
			Action:  "Use YYYY-MM-DD HH:MM:SS in the configured time zone",
			Code:    "VAL002",
		},
	},
	{
		pattern: "invalid integer",
		msg: UserMessage{
			Message: "Invalid number format detected",
			Action:  "Use whole numbers for ids",
			Code:    "VAL003",
		},
	},
	{
		pattern: "is required",
		msg: UserMessage{
			Message: "Required field is empty",
			Action:  "Ensure all required columns have values",
			Code:    "VAL004",
		},
	},
	{
		pattern: "missing required column",
		msg: UserMessage{
			Message: "Required column is missing from CSV",
			Action:  "Check that all required columns are present in your file",
			Code:    "VAL005",
		},
	},
	{
		pattern: "unknown column",
		msg: UserMessage{
			Message: "CSV contains a column that cannot be imported",
			Action:  "Remove the column or fix its header spelling",
			Code:    "VAL006",
		},
	},
	{
		pattern: "is invalid:",
		msg: UserMessage{
			Message: "Record failed validation",
			Action:  "Fix the fields listed in the error",
			Code:    "VAL007",
		},
	},
	{
		pattern: "unknown project",
		msg: UserMessage{
			Message: "Project name does not match any stored project",
			Action:  "Import projects before users",
			Code:    "VAL008",
		},
	},
	{
		pattern: "duplicate column",
		msg: UserMessage{
			Message: "CSV header names a column twice",
			Action:  "Keep one column per header name",
			Code:    "VAL009",
		},
	},

	// =========================================================================
	// File Errors (FILE001-FILE005)
	// =========================================================================
	{
		pattern: "wrong number of fields",
		msg: UserMessage{
			Message: "Row has more fields than the header",
			Action:  "Ensure every row has the same columns as the header",
			Code:    "FILE001",
		},
	},
	{
		pattern: "quoted-field",
		msg: UserMessage{
			Message: "File is not a valid CSV",
			Action:  "Check quoting: quotes inside fields must be doubled",
			Code:    "FILE002",
		},
	},
	{
		pattern: "missing header row",
		msg: UserMessage{
			Message: "The file has no header row",
			Action:  "Add a header row naming the columns",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no such file",
		msg: UserMessage{
			Message: "File not found",
			Action:  "Check the file path",
			Code:    "FILE004",
		},
	},
	{
		pattern: "permission denied",
		msg: UserMessage{
			Message: "File cannot be read or written",
			Action:  "Check file and directory permissions",
			Code:    "FILE005",
		},
	},

	// =========================================================================
	// Run Errors (RUN001-RUN002)
	// =========================================================================
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Run was cancelled",
			Action:  "Start the run again when ready",
			Code:    "RUN001",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Run timed out",
			Action:  "Try a smaller file",
			Code:    "RUN002",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Check the log output for the technical error",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It searches through known error patterns (case-insensitive) and returns
// the first match. If no pattern matches, a generic fallback message with
// code ERR000 is returned.
//
// Example:
//
//	err := errors.New("duplicate key violation")
//	msg := MapError(err)
//	// msg.Code == "DB001"
//	// msg.Message == "A record with this ID already exists"
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
