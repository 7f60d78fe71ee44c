package encoding

import (
	"strconv"

	"chunkmux/internal/config"
	"chunkmux/internal/language"
)

// Profile holds the fixed codec choices applied to every run.
type Profile struct {
	VideoCodec    string
	VideoPreset   string
	VideoCRF      int
	AudioCodec    string
	AudioBitrate  string
	WAVCodec      string
	WAVSampleRate int
	SubtitleCodec string
	// SubtitleLanguage is an ISO 639-2 code.
	SubtitleLanguage string
	SubtitleTitle    string
}

// DefaultProfile returns the built-in codec choices.
func DefaultProfile() Profile {
	cfg := config.Default()
	return ProfileFromConfig(&cfg)
}

// ProfileFromConfig derives the profile from the encoding and subtitle
// sections, normalizing the subtitle language to ISO 639-2.
func ProfileFromConfig(cfg *config.Config) Profile {
	return Profile{
		VideoCodec:       cfg.Encoding.VideoCodec,
		VideoPreset:      cfg.Encoding.VideoPreset,
		VideoCRF:         cfg.Encoding.VideoCRF,
		AudioCodec:       cfg.Encoding.AudioCodec,
		AudioBitrate:     cfg.Encoding.AudioBitrate,
		WAVCodec:         cfg.Encoding.WAVCodec,
		WAVSampleRate:    cfg.Encoding.WAVSampleRate,
		SubtitleCodec:    cfg.Subtitles.Codec,
		SubtitleLanguage: language.ToISO3(cfg.Subtitles.Language),
		SubtitleTitle:    language.DisplayName(cfg.Subtitles.Language),
	}
}

func (p Profile) crf() string {
	return strconv.Itoa(p.VideoCRF)
}

func (p Profile) sampleRate() string {
	return strconv.Itoa(p.WAVSampleRate)
}
