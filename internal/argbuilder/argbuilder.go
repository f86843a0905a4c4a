// Package argbuilder provides small helpers for assembling Mercurial
// command argument vectors, used by every high-level command in the
// client.
package argbuilder

import "time"

// DateLayout is the Go time.Format layout Mercurial's command-server
// expects for date flags: "yyyy-MM-dd HH:mm:ss".
const DateLayout = "2006-01-02 15:04:05"

// AddIf appends flag to args if condition is true.
func AddIf(args []string, condition bool, flag string) []string {
	if condition {
		return append(args, flag)
	}
	return args
}

// AddPairIfNonEmpty appends prefix and value as two separate argv entries
// if value is non-empty.
func AddPairIfNonEmpty(args []string, prefix, value string) []string {
	if value == "" {
		return args
	}
	return append(args, prefix, value)
}

// AddDateIf appends prefix and the formatted date as two separate argv
// entries if date is non-nil.
func AddDateIf(args []string, prefix string, date *time.Time) []string {
	if date == nil {
		return args
	}
	return append(args, prefix, date.Format(DateLayout))
}

// AddAllIfNonEmpty appends prefix before each value in values, for every
// non-empty value. Used for repeated flags such as --include/--exclude.
func AddAllIfNonEmpty(args []string, prefix string, values []string) []string {
	for _, v := range values {
		args = AddPairIfNonEmpty(args, prefix, v)
	}
	return args
}
