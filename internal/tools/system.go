package tools

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/distatus/battery"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/VanshArora01/anay/internal/automation"
	"github.com/VanshArora01/anay/internal/llm"
)

// SystemControl launches apps, opens URLs and answers system queries. Screen
// analysis needs a vision-capable model; when the configured provider has
// none the action degrades to reporting the screenshot path.
type SystemControl struct {
	loc           Locations
	screenshotDir string
	processLimit  int
	vision        llm.VisionDescriber // may be nil
}

func NewSystemControl(loc Locations, screenshotDir string, processLimit int, vision llm.VisionDescriber) *SystemControl {
	if processLimit <= 0 {
		processLimit = 10
	}
	return &SystemControl{loc: loc, screenshotDir: screenshotDir, processLimit: processLimit, vision: vision}
}

// appCommands maps friendly app names to per-OS launch commands. Names not in
// the table are tried as-is.
var appCommands = map[string]map[string]string{
	"vscode":     {"windows": "code", "darwin": "Visual Studio Code", "linux": "code"},
	"chrome":     {"windows": "chrome", "darwin": "Google Chrome", "linux": "google-chrome"},
	"notepad":    {"windows": "notepad", "darwin": "TextEdit", "linux": "gedit"},
	"calculator": {"windows": "calc", "darwin": "Calculator", "linux": "gnome-calculator"},
	"word":       {"windows": "winword", "darwin": "Microsoft Word", "linux": "libreoffice"},
	"excel":      {"windows": "excel", "darwin": "Microsoft Excel", "linux": "libreoffice"},
}

func launchCommand(appName string) string {
	if byOS, ok := appCommands[strings.ToLower(appName)]; ok {
		if cmd, ok := byOS[runtime.GOOS]; ok {
			return cmd
		}
	}
	return appName
}

func (s *SystemControl) LaunchApp(ctx context.Context, appName string) (automation.Result, error) {
	target := launchCommand(appName)

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.CommandContext(ctx, "open", "-a", target)
	case "windows":
		cmd = exec.CommandContext(ctx, "cmd", "/C", "start", "", target)
	default:
		cmd = exec.CommandContext(ctx, target)
	}
	if err := cmd.Start(); err != nil {
		return automation.Result{}, fmt.Errorf("launch %s: %w", appName, err)
	}
	return automation.Result{OK: true, Message: "Launched " + appName}, nil
}

func (s *SystemControl) CloseApp(ctx context.Context, appName string) (automation.Result, error) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.CommandContext(ctx, "taskkill", "/IM", appName+".exe", "/F")
	default:
		cmd = exec.CommandContext(ctx, "pkill", "-i", appName)
	}
	if err := cmd.Run(); err != nil {
		return automation.Result{OK: false, Message: fmt.Sprintf("Could not close %s: %v", appName, err)}, nil
	}
	return automation.Result{OK: true, Message: "Closed " + appName}, nil
}

func (s *SystemControl) OpenBrowser(ctx context.Context, url string) (automation.Result, error) {
	if url == "" {
		url = "https://www.google.com"
	}
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.CommandContext(ctx, "open", url)
	case "windows":
		cmd = exec.CommandContext(ctx, "cmd", "/C", "start", "", url)
	default:
		cmd = exec.CommandContext(ctx, "xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		return automation.Result{}, fmt.Errorf("open browser: %w", err)
	}
	return automation.Result{OK: true, Message: "Opened " + url}, nil
}

func (s *SystemControl) PlaySpotify(ctx context.Context, query string) (automation.Result, error) {
	if _, err := s.LaunchApp(ctx, "spotify"); err != nil {
		return automation.Result{}, err
	}
	if query == "" {
		return automation.Result{OK: true, Message: "Opened Spotify"}, nil
	}
	return automation.Result{OK: true, Message: "Opened Spotify - " + query}, nil
}

func (s *SystemControl) CaptureScreen(ctx context.Context) (automation.Result, error) {
	path, err := s.captureToFile(ctx)
	if err != nil {
		return automation.Result{}, err
	}
	return automation.Result{OK: true, Message: "Screenshot saved to " + path}, nil
}

func (s *SystemControl) captureToFile(ctx context.Context) (string, error) {
	dir := s.screenshotDir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create screenshot dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("screenshot_%d.png", time.Now().Unix()))

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.CommandContext(ctx, "screencapture", "-x", path)
	case "windows":
		script := fmt.Sprintf(`Add-Type -AssemblyName System.Windows.Forms,System.Drawing; $b=[System.Windows.Forms.Screen]::PrimaryScreen.Bounds; $bmp=New-Object Drawing.Bitmap $b.Width,$b.Height; $g=[Drawing.Graphics]::FromImage($bmp); $g.CopyFromScreen($b.Location,[Drawing.Point]::Empty,$b.Size); $bmp.Save('%s')`, path)
		cmd = exec.CommandContext(ctx, "powershell", "-NoProfile", "-Command", script)
	default:
		cmd = exec.CommandContext(ctx, "scrot", path)
	}
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("capture screen: %w", err)
	}
	return path, nil
}

func (s *SystemControl) AnalyzeScreen(ctx context.Context) (automation.Result, error) {
	path, err := s.captureToFile(ctx)
	if err != nil {
		return automation.Result{}, err
	}
	if s.vision == nil {
		return automation.Result{OK: true, Message: "Screenshot saved to " + path + " (no vision model configured for analysis)"}, nil
	}
	desc, err := s.vision.DescribeImage(ctx, path)
	if err != nil {
		return automation.Result{}, fmt.Errorf("analyze screenshot: %w", err)
	}
	return automation.Result{OK: true, Message: desc}, nil
}

func (s *SystemControl) ActiveWindow(ctx context.Context) (automation.Result, error) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.CommandContext(ctx, "osascript", "-e",
			`tell application "System Events" to get name of first application process whose frontmost is true`)
	case "windows":
		cmd = exec.CommandContext(ctx, "powershell", "-NoProfile", "-Command",
			"(Get-Process | Where-Object {$_.MainWindowTitle -ne ''} | Select-Object -First 1).MainWindowTitle")
	default:
		cmd = exec.CommandContext(ctx, "xdotool", "getactivewindow", "getwindowname")
	}
	out, err := cmd.Output()
	if err != nil {
		return automation.Result{OK: false, Message: fmt.Sprintf("Could not detect active window: %v", err)}, nil
	}
	title := strings.TrimSpace(string(out))
	if title == "" {
		return automation.Result{OK: false, Message: "No active window found"}, nil
	}
	return automation.Result{OK: true, Message: "Active window: " + title}, nil
}

func (s *SystemControl) SystemInfo(ctx context.Context) (automation.Result, error) {
	var parts []string

	if percents, err := cpu.PercentWithContext(ctx, 500*time.Millisecond, false); err == nil && len(percents) > 0 {
		parts = append(parts, fmt.Sprintf("CPU: %.1f%%", percents[0]))
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		parts = append(parts, fmt.Sprintf("Memory: %.1f%% of %.1f GB", vm.UsedPercent, float64(vm.Total)/(1<<30)))
	}
	if du, err := disk.UsageWithContext(ctx, rootPath()); err == nil {
		parts = append(parts, fmt.Sprintf("Disk: %.1f%% used", du.UsedPercent))
	}

	if len(parts) == 0 {
		return automation.Result{OK: false, Message: "Could not collect system info"}, nil
	}
	return automation.Result{OK: true, Message: strings.Join(parts, ", ")}, nil
}

func rootPath() string {
	if runtime.GOOS == "windows" {
		return `C:\`
	}
	return "/"
}

func (s *SystemControl) BatteryStatus(_ context.Context) (automation.Result, error) {
	batteries, err := battery.GetAll()
	if err != nil || len(batteries) == 0 {
		return automation.Result{OK: true, Message: "No battery detected (probably a desktop)"}, nil
	}
	b := batteries[0]
	pct := 0.0
	if b.Full > 0 {
		pct = b.Current / b.Full * 100
	}
	return automation.Result{OK: true, Message: fmt.Sprintf("Battery at %.0f%% (%s)", pct, strings.ToLower(b.State.String()))}, nil
}

func (s *SystemControl) RunningProcesses(ctx context.Context) (automation.Result, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return automation.Result{}, fmt.Errorf("list processes: %w", err)
	}

	type procInfo struct {
		name string
		cpu  float64
	}
	infos := make([]procInfo, 0, len(procs))
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil || name == "" {
			continue
		}
		pct, _ := p.CPUPercentWithContext(ctx)
		infos = append(infos, procInfo{name: name, cpu: pct})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].cpu > infos[j].cpu })

	limit := s.processLimit
	if limit > len(infos) {
		limit = len(infos)
	}
	lines := make([]string, 0, limit)
	for _, info := range infos[:limit] {
		lines = append(lines, fmt.Sprintf("%s (%.1f%% CPU)", info.name, info.cpu))
	}
	return automation.Result{OK: true, Message: "Top processes: " + strings.Join(lines, ", ")}, nil
}

// openWithDefaultApp asks the desktop environment to open a path with
// whatever handles it.
func openWithDefaultApp(ctx context.Context, path string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.CommandContext(ctx, "open", path)
	case "windows":
		cmd = exec.CommandContext(ctx, "cmd", "/C", "start", "", path)
	default:
		cmd = exec.CommandContext(ctx, "xdg-open", path)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	return nil
}
