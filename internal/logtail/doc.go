// Package logtail reads the tail of the wishtrack log file and decodes its
// JSON lines.
//
// Read keeps a ring buffer of the last N lines, so memory stays
// O(N × line length) whatever the file size. Parse understands the
// production zap encoding (timestamp, level, logger, message, then fields).
// Lines that are not JSON, such as development console output, pass through
// untouched in Entry.Raw.
package logtail
