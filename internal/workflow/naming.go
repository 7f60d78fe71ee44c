package workflow

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"chunkmux/internal/fileutil"
)

// maxNameSuffix bounds the collision search for output names.
const maxNameSuffix = 1000

// OutputNames are the final artifact paths for one run.
type OutputNames struct {
	Video string
	Audio string
	Stamp string
}

// ResolveOutputNames stamps both outputs with started formatted by layout.
// When either target already exists a numeric suffix shared by both names is
// appended (output_<stamp>_2.mp4 and audio_<stamp>_2.wav) so a run never
// overwrites an earlier one started in the same second.
func ResolveOutputNames(videoDir, audioDir, layout, container string, started time.Time) OutputNames {
	stamp := started.Format(layout)
	container = strings.TrimPrefix(container, ".")
	build := func(suffix string) OutputNames {
		return OutputNames{
			Video: filepath.Join(videoDir, fmt.Sprintf("output_%s%s.%s", stamp, suffix, container)),
			Audio: filepath.Join(audioDir, fmt.Sprintf("audio_%s%s.wav", stamp, suffix)),
			Stamp: stamp + suffix,
		}
	}

	names := build("")
	for n := 2; n <= maxNameSuffix && (fileutil.Exists(names.Video) || fileutil.Exists(names.Audio)); n++ {
		names = build(fmt.Sprintf("_%d", n))
	}
	return names
}
