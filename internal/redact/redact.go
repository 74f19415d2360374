// Package redact strips known secret patterns (API keys, tokens,
// credentials) from text before it crosses a persistence or terminal
// boundary.
package redact

import "regexp"

// Placeholder replaces every recognized secret.
const Placeholder = "[REDACTED]"

type pattern struct {
	name string
	re   *regexp.Regexp
}

// patterns covers the common key formats plus generic key=value shapes.
// Order matters only in that longer, more specific prefixes are matched by
// the same rule as their generic counterparts.
var patterns = []pattern{
	{"OpenAI API Key", regexp.MustCompile(`(?i)sk-[a-zA-Z0-9]{20,}`)},
	{"OpenAI Project Key", regexp.MustCompile(`(?i)sk-proj-[a-zA-Z0-9_-]{20,}`)},
	{"Anthropic API Key", regexp.MustCompile(`(?i)sk-ant-[a-zA-Z0-9_-]{20,}`)},
	{"Anthropic Key", regexp.MustCompile(`(?i)anthropic-[a-zA-Z0-9]{20,}`)},
	{"Bearer Token", regexp.MustCompile(`(?i)Bearer\s+[a-zA-Z0-9._-]{10,}`)},
	{"GitHub PAT", regexp.MustCompile(`ghp_[a-zA-Z0-9]{36,}`)},
	{"GitHub OAuth", regexp.MustCompile(`gho_[a-zA-Z0-9]{36,}`)},
	{"GitLab PAT", regexp.MustCompile(`glpat-[a-zA-Z0-9-]{20,}`)},
	{"Google API Key", regexp.MustCompile(`AIza[a-zA-Z0-9_-]{35}`)},
	{"AWS Access Key", regexp.MustCompile(`AKIA[A-Z0-9]{16}`)},
	{"AWS Secret Key", regexp.MustCompile(`(?:aws_secret|secret_key)\s*[:=]\s*['"]?[a-zA-Z0-9/+=]{40}`)},
	{"Password", regexp.MustCompile(`(?i)(?:password|passwd|pwd)\s*[:=]\s*['"]?\S{8,}`)},
	{"API Key", regexp.MustCompile(`(?i)(?:api[_-]?key)\s*[:=]\s*['"]?[a-zA-Z0-9_-]{16,}`)},
	{"Token", regexp.MustCompile(`(?i)(?:token|secret)\s*[:=]\s*['"]?[a-zA-Z0-9_-]{16,}`)},
}

// Secrets replaces every recognized secret in text with the placeholder.
func Secrets(text string) string {
	for _, p := range patterns {
		text = p.re.ReplaceAllString(text, Placeholder)
	}
	return text
}

// Args redacts a command argument list, for logging subprocess invocations
// without exposing credentials embedded in flags.
func Args(args []string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = Secrets(a)
	}
	return out
}

// Count reports how many secret patterns match in text. Useful for audits
// and tests.
func Count(text string) int {
	n := 0
	for _, p := range patterns {
		n += len(p.re.FindAllString(text, -1))
	}
	return n
}

// HasSecrets reports whether text contains any recognized secret.
func HasSecrets(text string) bool { return Count(text) > 0 }

// PatternNames lists the names of all redaction rules.
func PatternNames() []string {
	out := make([]string, len(patterns))
	for i, p := range patterns {
		out[i] = p.name
	}
	return out
}
