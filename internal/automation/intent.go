package automation

import (
	"regexp"
	"strconv"
	"strings"
)

// Extractor turns a raw utterance into a structured Command without any model
// call. Rules are checked in a fixed order; the first one that produces a
// command wins. App launching outranks browser detection so "open chrome"
// launches the app rather than a browser tab, and browser detection runs last
// because almost anything can contain a domain-looking token.
type Extractor struct {
	rules []rule
}

type rule struct {
	name  string
	build func(raw, lower string) (Command, bool)
}

func NewExtractor() *Extractor {
	return &Extractor{rules: []rule{
		{"launch_app", buildLaunchApp},
		{"create_file", buildCreateFile},
		{"read_file", buildReadFile},
		{"open_file", buildOpenFile},
		{"open_folder", buildOpenFolder},
		{"capture_screen", buildCaptureScreen},
		{"analyze_screen", buildAnalyzeScreen},
		{"active_window", buildActiveWindow},
		{"play_spotify", buildPlaySpotify},
		{"system_queries", buildSystemQuery},
		{"input_control", buildInputControl},
		{"open_browser", buildOpenBrowser},
	}}
}

// typo fixes applied before matching; the rules only ever see the corrected
// lowercase form.
var typoFixes = [][2]string{
	{"oprn", "open"},
	{"opne", "open"},
	{"sptify", "spotify"},
	{"whtsapp", "whatsapp"},
	{"comapnies", "companies"},
}

// Extract returns the first command any rule produces, or ok=false when the
// utterance does not look like a direct command.
func (e *Extractor) Extract(raw string) (Command, bool) {
	lower := strings.ToLower(strings.TrimSpace(raw))
	for _, fix := range typoFixes {
		lower = strings.ReplaceAll(lower, fix[0], fix[1])
	}
	for _, r := range e.rules {
		if cmd, ok := r.build(raw, lower); ok {
			return cmd, true
		}
	}
	return Command{}, false
}

var knownApps = []string{
	"notepad", "calculator", "paint", "vscode", "chrome", "brave",
	"firefox", "edge", "spotify", "whatsapp", "telegram", "discord",
	"vlc", "word", "excel", "powerpoint",
}

func buildLaunchApp(_, lower string) (Command, bool) {
	verb := strings.Contains(lower, "open") || strings.Contains(lower, "launch") || strings.Contains(lower, "start")
	if !verb {
		return Command{}, false
	}
	for _, app := range knownApps {
		if strings.Contains(lower, app) {
			return Command{Kind: CmdLaunchApp, Name: app}, true
		}
	}
	return Command{}, false
}

var (
	filenameNamedRe  = regexp.MustCompile(`(?i)file\s+(?:called|named)?\s*([\w\-.]+\.\w+)`)
	filenameSimpleRe = regexp.MustCompile(`(?i)([\w\-]+\.txt|[\w\-]+\.py|[\w\-]+\.json|[\w\-]+\.md)`)
	contentAfterRe   = regexp.MustCompile(`(?i)(?:with|containing|add|and add)\s+(.+?)\s*$`)
	trailingLocRe    = regexp.MustCompile(`(?i)\s+(?:on|in|to)\s+(?:desktop|d drive|c drive|documents|downloads).*$`)
)

const itCompaniesList = `1. Microsoft
2. Apple
3. Amazon
4. Alphabet (Google)
5. Meta Platforms
6. NVIDIA
7. Oracle
8. IBM
9. Salesforce
10. Accenture`

func buildCreateFile(raw, lower string) (Command, bool) {
	if !strings.Contains(lower, "create file") && !strings.Contains(lower, "make file") && !strings.Contains(lower, "make a") {
		return Command{}, false
	}

	m := filenameNamedRe.FindStringSubmatch(raw)
	if m == nil {
		m = filenameSimpleRe.FindStringSubmatch(raw)
	}
	if m == nil {
		return Command{}, false
	}
	filename := m[1]

	location := "desktop"
	switch {
	case strings.Contains(lower, "d drive") || strings.Contains(lower, "d:"):
		location = `D:\`
	case strings.Contains(lower, "c drive") || strings.Contains(lower, "c:"):
		location = `C:\`
	case strings.Contains(lower, "documents"):
		location = "documents"
	case strings.Contains(lower, "downloads"):
		location = "downloads"
	}

	content := ""
	if strings.Contains(lower, "with") || strings.Contains(lower, "containing") || strings.Contains(lower, "add") {
		if cm := contentAfterRe.FindStringSubmatch(raw); cm != nil {
			content = trailingLocRe.ReplaceAllString(strings.TrimSpace(cm[1]), "")
		}
	}
	if strings.Contains(lower, "top 10") && (strings.Contains(lower, "it comp") || strings.Contains(lower, "companies")) {
		content = itCompaniesList
	}

	path := location + "/" + filename
	if strings.HasSuffix(location, `\`) {
		path = location + filename
	}
	return Command{Kind: CmdCreateFile, Path: path, Content: content}, true
}

// pathAfterToken joins everything after the first occurrence of token into a
// single path argument, so "read file C:\notes\todo list.txt" keeps spaces.
func pathAfterToken(raw string, tokens ...string) (string, bool) {
	parts := strings.Fields(raw)
	for i, part := range parts {
		for _, tok := range tokens {
			if strings.EqualFold(part, tok) && i+1 < len(parts) {
				return strings.Join(parts[i+1:], " "), true
			}
		}
	}
	return "", false
}

func buildReadFile(raw, lower string) (Command, bool) {
	if !strings.Contains(lower, "read file") && !strings.Contains(lower, "show file") && !strings.Contains(lower, "file content") {
		return Command{}, false
	}
	if path, ok := pathAfterToken(raw, "file"); ok {
		return Command{Kind: CmdReadFile, Path: path}, true
	}
	return Command{}, false
}

var (
	openFileRe = regexp.MustCompile(`(?i)(?:open\s+file|file)\s+(.+?)$`)
	bareItRe   = regexp.MustCompile(`\bit\b`)
)

func buildOpenFile(raw, lower string) (Command, bool) {
	if !strings.Contains(lower, "open file") && !strings.Contains(lower, "file open") {
		return Command{}, false
	}
	// "open it" style references belong to the resolver, not this rule.
	if bareItRe.MatchString(lower) {
		return Command{}, false
	}
	if m := openFileRe.FindStringSubmatch(raw); m != nil {
		return Command{Kind: CmdOpenFile, Path: strings.TrimSpace(m[1])}, true
	}
	return Command{}, false
}

func buildOpenFolder(raw, lower string) (Command, bool) {
	if !strings.Contains(lower, "folder") && !strings.Contains(lower, "directory") {
		return Command{}, false
	}
	if path, ok := pathAfterToken(raw, "folder", "directory"); ok {
		return Command{Kind: CmdOpenFolder, Path: path}, true
	}
	return Command{}, false
}

func buildCaptureScreen(_, lower string) (Command, bool) {
	for _, kw := range []string{"screenshot", "capture screen", "screen capture"} {
		if strings.Contains(lower, kw) {
			return Command{Kind: CmdCaptureScreen}, true
		}
	}
	return Command{}, false
}

func buildAnalyzeScreen(_, lower string) (Command, bool) {
	phrases := []string{
		"what's on my screen", "what is on my screen", "analyze screen",
		"explain screen", "describe screen", "see my screen",
	}
	for _, p := range phrases {
		if strings.Contains(lower, p) {
			return Command{Kind: CmdAnalyzeScreen}, true
		}
	}
	return Command{}, false
}

func buildActiveWindow(_, lower string) (Command, bool) {
	for _, kw := range []string{"active window", "current window", "what window"} {
		if strings.Contains(lower, kw) {
			return Command{Kind: CmdActiveWindow}, true
		}
	}
	return Command{}, false
}

var (
	spotifyQueryRe  = regexp.MustCompile(`(?i)play\s+(.+?)(?:\s+on\s+spotify|$)`)
	spotifySuffixRe = regexp.MustCompile(`(?i)\s+on\s+spotify$`)
)

func buildPlaySpotify(raw, lower string) (Command, bool) {
	musicWord := false
	for _, w := range []string{"song", "music", "track", "bars"} {
		if strings.Contains(lower, w) {
			musicWord = true
			break
		}
	}
	if !strings.Contains(lower, "spotify") && !(strings.Contains(lower, "play") && musicWord) {
		return Command{}, false
	}
	if m := spotifyQueryRe.FindStringSubmatch(raw); m != nil {
		query := spotifySuffixRe.ReplaceAllString(strings.TrimSpace(m[1]), "")
		return Command{Kind: CmdPlaySpotify, Query: query}, true
	}
	return Command{Kind: CmdPlaySpotify}, true
}

func buildSystemQuery(_, lower string) (Command, bool) {
	for _, kw := range []string{"system info", "system status", "computer info", "pc info", "system stats"} {
		if strings.Contains(lower, kw) {
			return Command{Kind: CmdSystemInfo}, true
		}
	}
	for _, kw := range []string{"battery status", "battery level", "how much battery", "battery"} {
		if strings.Contains(lower, kw) {
			return Command{Kind: CmdBatteryStatus}, true
		}
	}
	for _, kw := range []string{"running processes", "what's running", "active processes", "task manager"} {
		if strings.Contains(lower, kw) {
			return Command{Kind: CmdRunningProcesses}, true
		}
	}
	return Command{}, false
}

var (
	typeTextRe  = regexp.MustCompile(`(?i)(?:type|write)\s+(.+?)$`)
	pressKeyRe  = regexp.MustCompile(`(?i)(?:press|hit)\s+(\w+)`)
	hotkeyRe    = regexp.MustCompile(`(?i)((?:ctrl|alt|shift|win)(?:\+\w+)+)`)
	clickPosRe  = regexp.MustCompile(`(?i)click\s+(?:at\s+)?\(?([0-9]+)\s*,\s*([0-9]+)\)?`)
	scrollNumRe = regexp.MustCompile(`(?i)scroll\s+(?:down|up)?\s*([0-9]+)`)
)

func buildInputControl(raw, lower string) (Command, bool) {
	if strings.Contains(lower, "type ") || strings.Contains(lower, "write ") {
		if m := typeTextRe.FindStringSubmatch(raw); m != nil {
			return Command{Kind: CmdTypeText, Text: strings.TrimSpace(m[1])}, true
		}
	}

	// Modifier combos outrank single key presses so "press ctrl+c" lands in
	// hotkey rather than press_key("ctrl").
	if strings.Contains(lower, "+") {
		hasModifier := false
		for _, mod := range []string{"ctrl", "alt", "shift", "win"} {
			if strings.Contains(lower, mod) {
				hasModifier = true
				break
			}
		}
		if hasModifier {
			if m := hotkeyRe.FindStringSubmatch(raw); m != nil {
				keys := strings.Split(strings.ToLower(m[1]), "+")
				return Command{Kind: CmdHotkey, Keys: keys}, true
			}
		}
	}

	if strings.Contains(lower, "press ") || strings.Contains(lower, "hit ") {
		if m := pressKeyRe.FindStringSubmatch(raw); m != nil {
			return Command{Kind: CmdPressKey, Key: strings.ToLower(m[1])}, true
		}
	}

	if strings.Contains(lower, "click") {
		if m := clickPosRe.FindStringSubmatch(raw); m != nil {
			x, _ := strconv.Atoi(m[1])
			y, _ := strconv.Atoi(m[2])
			return Command{Kind: CmdClickMouse, X: x, Y: y, HasPos: true, Clicks: 1}, true
		}
		return Command{Kind: CmdClickMouse, Clicks: 1}, true
	}

	if strings.Contains(lower, "scroll") {
		clicks := 3
		if strings.Contains(lower, "down") {
			clicks = -3
		}
		if m := scrollNumRe.FindStringSubmatch(raw); m != nil {
			n, _ := strconv.Atoi(m[1])
			if strings.Contains(lower, "down") {
				n = -n
			}
			clicks = n
		}
		return Command{Kind: CmdScroll, Clicks: clicks}, true
	}

	return Command{}, false
}

var browserFillerWords = []string{"open", "browser", "in", "please", "search", "then", "and"}

func buildOpenBrowser(raw, lower string) (Command, bool) {
	hinted := false
	for _, kw := range []string{".com", ".in", ".org", "youtube", "google", "facebook", "twitter", "instagram", "github"} {
		if strings.Contains(lower, kw) {
			hinted = true
			break
		}
	}
	if !hinted {
		return Command{}, false
	}

	url := strings.TrimSpace(raw)
	for _, word := range browserFillerWords {
		url = strings.ReplaceAll(url, word, " ")
		url = strings.ReplaceAll(url, strings.ToUpper(word[:1])+word[1:], " ")
	}
	url = strings.Join(strings.Fields(url), " ")
	urlLower := strings.ToLower(url)

	switch {
	case strings.Contains(urlLower, "youtube"):
		url = "https://www.youtube.com"
	case strings.Contains(urlLower, "google"):
		url = "https://www.google.com"
	case strings.Contains(urlLower, "facebook"):
		url = "https://www.facebook.com"
	case strings.Contains(urlLower, "twitter") || strings.Contains(urlLower, "x.com"):
		url = "https://www.x.com"
	case strings.Contains(urlLower, "instagram"):
		url = "https://www.instagram.com"
	case strings.Contains(urlLower, "github"):
		url = "https://www.github.com"
	case !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://"):
		if strings.Contains(url, ".") && !strings.HasPrefix(url, "/") {
			url = "https://" + url
		} else {
			return Command{}, false
		}
	}

	return Command{Kind: CmdOpenBrowser, URL: url}, true
}
