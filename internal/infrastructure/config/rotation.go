package config

// Rotation frequencies accepted by LOG_ROTATION_FREQUENCY.
const (
	FrequencyCustom = "custom"
	FrequencyDaily  = "daily"
	FrequencyTest   = "test"
)

// RotationDescriptor describes how the rotating log sink should roll files.
// It is plain data; the sink in the logging package does the file work.
type RotationDescriptor struct {
	Filename   string  `yaml:"filename"`
	DateFormat string  `yaml:"date_format"` // moment-style tokens, e.g. YYYY-MM-DD
	Frequency  string  `yaml:"frequency"`
	MaxLogs    *string `yaml:"max_logs,omitempty"` // file count ("10") or age ("7d")
	MaxSize    *string `yaml:"size,omitempty"`     // "10k", "5m", "1g"
	Verbose    bool    `yaml:"verbose"`
}

// BuildLogStream returns the rotation descriptor, or nil when
// LOG_ROTATION_FILENAME is unset.
//
// MaxLogs comes from LOG_ROTATION_MAX_LOG, not LOG_ROTATION_MAX_LOGS; see
// Validated.RotationMaxLogLegacy.
func BuildLogStream(v *Validated) *RotationDescriptor {
	if v.RotationFilename == nil {
		return nil
	}

	dateFormat := v.RotationDateFormat
	if dateFormat == "" {
		dateFormat = "YYYY-MM-DD"
	}
	frequency := v.RotationFrequency
	if frequency == "" {
		frequency = FrequencyDaily
	}

	return &RotationDescriptor{
		Filename:   *v.RotationFilename,
		DateFormat: dateFormat,
		Frequency:  frequency,
		MaxLogs:    v.RotationMaxLogLegacy,
		MaxSize:    v.RotationMaxSize,
		Verbose:    false,
	}
}
