package automation

import (
	"regexp"
	"strings"
)

var (
	fileRefRe = regexp.MustCompile(`(?i)\b(it|that file|the file)\b`)
	appRefRe  = regexp.MustCompile(`(?i)\b(that app)\b`)
)

// ExpandReferences rewrites vague pronouns in an utterance into the concrete
// paths and app names the context remembers, so the planner sees "open the
// file "/home/v/notes.txt"" instead of "open it". When the context holds
// nothing relevant the text passes through untouched.
func ExpandReferences(text string, ec ExecutionContext) string {
	lower := strings.ToLower(text)

	targetFile := ""
	for _, p := range []string{ec.LastModifiedFile, ec.LastOpenedFile, ec.LastCreatedFile} {
		if p != "" {
			targetFile = p
			break
		}
	}

	if targetFile != "" && (strings.Contains(lower, " it") || strings.Contains(lower, "that file") || strings.Contains(lower, "the file")) {
		text = fileRefRe.ReplaceAllString(text, `the file "`+targetFile+`"`)
	}

	if targetFile != "" && (strings.Contains(lower, "fix the code") || strings.Contains(lower, "modify the code")) {
		text = strings.ReplaceAll(text, "the code", `the code in "`+targetFile+`"`)
	}

	if ec.LastOpenedApp != "" && (strings.Contains(lower, "that app") || strings.Contains(lower, "close it")) {
		text = appRefRe.ReplaceAllString(text, ec.LastOpenedApp)
	}

	return text
}
