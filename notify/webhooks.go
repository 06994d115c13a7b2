// Package notify delivers new-KEV alerts to configured webhook sinks.
package notify

import (
	"bufio"
	"os"
	"strings"

	"go.uber.org/zap"
)

// LoadWebhooks reads sink configuration from path. One sink per line in
// name=url form; blank lines and #-comments are ignored; malformed lines
// and URLs that do not start with http are skipped with a warning. A
// missing file yields an empty sink set, not an error.
func LoadWebhooks(path string, logger *zap.Logger) map[string]string {
	webhooks := make(map[string]string)

	file, err := os.Open(path)
	if err != nil {
		logger.Warn("Webhook config file not found", zap.String("path", path))
		return webhooks
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		name, url, found := strings.Cut(line, "=")
		if !found {
			logger.Warn("Skipping malformed webhook entry", zap.String("line", line))
			continue
		}

		name = strings.TrimSpace(name)
		url = strings.TrimSpace(url)

		if name == "" || !strings.HasPrefix(url, "http") {
			logger.Warn("Invalid webhook entry in config", zap.String("line", line))
			continue
		}

		webhooks[name] = url
	}

	if err := scanner.Err(); err != nil {
		logger.Error("Failed to read webhook config", zap.String("path", path), zap.Error(err))
	}

	if len(webhooks) == 0 {
		logger.Warn("No valid webhook URLs found in configuration", zap.String("path", path))
	}

	return webhooks
}
