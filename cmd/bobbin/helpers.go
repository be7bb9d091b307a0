package main

import "fmt"

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

// formatSize renders approximate byte counts the way listings report them.
// Zero means the tool did not report a size.
func formatSize(bytes int64) string {
	if bytes <= 0 {
		return "-"
	}
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// truncate shortens long titles for table cells.
func truncate(s string, max int) string {
	if max <= 3 || len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func formatPercent(percent float64) string {
	if percent <= 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", percent)
}
