package deps

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// versionTimeout bounds "<binary> -version" probes.
const versionTimeout = 10 * time.Second

// ToolVersion runs "<binary> -version" and returns the first line of output,
// e.g. "ffmpeg version 6.1.1 Copyright (c) 2000-2023 the FFmpeg developers".
func ToolVersion(ctx context.Context, binary string) (string, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return "", fmt.Errorf("tool version: empty binary")
	}
	probeCtx, cancel := context.WithTimeout(ctx, versionTimeout)
	defer cancel()

	output, err := exec.CommandContext(probeCtx, binary, "-version").CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("%s -version: %w", binary, err)
	}
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			return line, nil
		}
	}
	return "", fmt.Errorf("%s -version: empty output", binary)
}

// ShortVersion extracts the version token from a ToolVersion line
// ("ffmpeg version 6.1.1 Copyright ..." -> "6.1.1").
func ShortVersion(line string) string {
	fields := strings.Fields(line)
	for i := 0; i < len(fields)-1; i++ {
		if fields[i] == "version" {
			return fields[i+1]
		}
	}
	return ""
}
