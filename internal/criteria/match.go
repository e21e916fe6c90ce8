package criteria

import (
	"fmt"
	"regexp"
	"strings"
)

// MatchSpec matches a string-valued attribute. Exactly one of the two forms is
// used: Any (a list of literal or /pattern/flags entries, any-match) or Present
// (a presence test: true passes when the attribute has any value, false when it
// has none).
type MatchSpec struct {
	Any     []string `json:"any,omitempty"`
	Present *bool    `json:"present,omitempty"`

	// Substring switches literal entries from exact comparison to substring
	// containment. Both modes are case-insensitive.
	Substring bool `json:"substring,omitempty"`

	compiled []*regexp.Regexp // parallel to Any; nil for literal entries
}

// Empty reports whether the spec declares nothing to test.
func (s *MatchSpec) Empty() bool {
	return s == nil || (len(s.Any) == 0 && s.Present == nil)
}

// Compile parses any /pattern/flags entries up front so matching never fails
// at evaluation time. Must be called once before Match.
func (s *MatchSpec) Compile() error {
	if s == nil || len(s.Any) == 0 {
		return nil
	}
	s.compiled = make([]*regexp.Regexp, len(s.Any))
	for i, entry := range s.Any {
		pattern, ok := regexLiteral(entry)
		if !ok {
			continue
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return fmt.Errorf("compile pattern %q: %w", entry, err)
		}
		s.compiled[i] = re
	}
	return nil
}

// Match tests a value against the spec and returns the outcome plus a reason
// string for the audit trail.
func (s *MatchSpec) Match(value string) (bool, string) {
	if s.Present != nil {
		has := value != ""
		if has == *s.Present {
			return true, fmt.Sprintf("presence=%t matched", has)
		}
		return false, fmt.Sprintf("presence=%t did not match expected %t", has, *s.Present)
	}

	for i, entry := range s.Any {
		var re *regexp.Regexp
		if i < len(s.compiled) {
			re = s.compiled[i]
		}
		if re != nil {
			if re.MatchString(value) {
				return true, fmt.Sprintf("%q matched pattern %s", value, entry)
			}
			continue
		}
		if s.literalMatch(value, entry) {
			return true, fmt.Sprintf("%q matched %q", value, entry)
		}
	}
	return false, fmt.Sprintf("%q matched none of %d expected values", value, len(s.Any))
}

func (s *MatchSpec) literalMatch(value, expected string) bool {
	v, e := strings.ToLower(value), strings.ToLower(expected)
	if s.Substring {
		return strings.Contains(v, e)
	}
	return v == e
}

// regexLiteral recognizes /pattern/flags entries and rewrites supported flags
// (i, s, m) into Go inline flag syntax.
func regexLiteral(entry string) (string, bool) {
	if len(entry) < 2 || !strings.HasPrefix(entry, "/") {
		return "", false
	}
	end := strings.LastIndex(entry, "/")
	if end == 0 {
		return "", false
	}
	pattern, flags := entry[1:end], entry[end+1:]
	if pattern == "" {
		// An empty pattern would match everything; treat it as a literal.
		return "", false
	}
	for _, f := range flags {
		if !strings.ContainsRune("ism", f) {
			// Unknown flag: treat the whole entry as a literal.
			return "", false
		}
	}
	if flags != "" {
		pattern = "(?" + flags + ")" + pattern
	}
	return pattern, true
}
