package dev

import (
	"fmt"
	"strings"
)

func (r *Runner) formatLog(line string) {
	line = strings.TrimRight(line, "\r")
	if strings.TrimSpace(line) == "" {
		return
	}

	// Skip bun's watcher chatter unless debugging
	if !r.debug && (strings.HasPrefix(line, "[watch]") || strings.Contains(line, "Restarting")) {
		return
	}

	lower := strings.ToLower(line)
	switch {
	case strings.Contains(line, "http://") || strings.Contains(line, "https://"):
		r.log(fmt.Sprintf("🌐 Server: %s", line), "\x1b[32m")
	case strings.Contains(lower, "error") || strings.Contains(lower, "exception"):
		r.log(fmt.Sprintf("❌ Server: %s", line), "\x1b[31m")
	case strings.Contains(lower, "warn"):
		r.log(fmt.Sprintf("⚠️  Server: %s", line), "\x1b[33m")
	default:
		r.log(fmt.Sprintf("🔧 Server: %s", line), "\x1b[34m")
	}
}
