// Package linefile implements the line-oriented edits the configuration steps
// apply to pacman.conf, fstab and the environment defaults file. All functions
// are pure over file content; callers handle reading, backups and writing.
package linefile

import (
	"strings"
)

// HasLine reports whether an exact line (after trimming surrounding
// whitespace) is present.
func HasLine(content, line string) bool {
	want := strings.TrimSpace(line)
	for _, l := range strings.Split(content, "\n") {
		if strings.TrimSpace(l) == want {
			return true
		}
	}
	return false
}

// AppendLine appends the line unless it is already present. The second return
// value is false when the content was already satisfied.
func AppendLine(content, line string) (string, bool) {
	if HasLine(content, line) {
		return content, false
	}
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return content + line + "\n", true
}

// HasOption reports whether an uncommented `key` or `key = value` line is
// present, matching pacman.conf option syntax.
func HasOption(content, key, value string) bool {
	return HasLine(content, optionLine(key, value))
}

// EnsureOption makes sure an uncommented option line exists. A commented-out
// variant or an uncommented line with a different value is replaced in place;
// otherwise the line is inserted right after the [options] section header, or
// appended when no such section exists. The second return value is false when
// the content was already satisfied.
func EnsureOption(content, key, value string) (string, bool) {
	target := optionLine(key, value)
	lines := strings.Split(content, "\n")

	replaceAt := -1
	insertAfter := -1
	for i, l := range lines {
		t := strings.TrimSpace(l)
		if t == target {
			return content, false
		}
		if t == "[options]" {
			insertAfter = i
		}
		if replaceAt == -1 && optionKey(t) == key {
			replaceAt = i
		}
	}

	if replaceAt >= 0 {
		lines[replaceAt] = target
		return strings.Join(lines, "\n"), true
	}

	if insertAfter >= 0 {
		lines = append(lines[:insertAfter+1], append([]string{target}, lines[insertAfter+1:]...)...)
		return strings.Join(lines, "\n"), true
	}

	out, _ := AppendLine(content, target)
	return out, true
}

// HasKey reports whether a `key=value` assignment for the key exists,
// regardless of its value. Commented lines do not count.
func HasKey(content, key string) bool {
	for _, l := range strings.Split(content, "\n") {
		t := strings.TrimSpace(l)
		if strings.HasPrefix(t, "#") {
			continue
		}
		k, _, found := strings.Cut(t, "=")
		if found && strings.TrimSpace(k) == key {
			return true
		}
	}
	return false
}

// AppendKeyValue appends `key=value` unless any assignment for the key is
// already present. An existing differing value is left untouched.
func AppendKeyValue(content, key, value string) (string, bool) {
	if HasKey(content, key) {
		return content, false
	}
	return AppendLine(content, key+"="+value)
}

// optionLine renders a pacman.conf option: bare flag or `key = value`.
func optionLine(key, value string) string {
	if value == "" {
		return key
	}
	return key + " = " + value
}

// optionKey extracts the option key from a line, treating a leading # as a
// commented-out variant of the same key.
func optionKey(line string) string {
	line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "#"))
	key, _, _ := strings.Cut(line, "=")
	return strings.TrimSpace(key)
}
