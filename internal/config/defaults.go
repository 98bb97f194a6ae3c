package config

const (
	defaultModel          = "gemini-2.0-flash"
	defaultLocation       = "global"
	defaultTimeoutSeconds = 120
	defaultFPS            = 1.0
	defaultTimecodeFormat = "MM:SS"
	defaultDataDir        = "~/.local/share/transcriber"
	defaultExportDir      = "~/.local/share/transcriber/exports"
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
)

// Environment fallbacks for credentials, honored when the corresponding
// config field is empty.
const (
	envAPIKey      = "GEMINI_API_KEY"
	envAccessToken = "GOOGLE_ACCESS_TOKEN"
	envProject     = "GOOGLE_CLOUD_PROJECT"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Gemini: Gemini{
			Model:          defaultModel,
			Location:       defaultLocation,
			TimeoutSeconds: defaultTimeoutSeconds,
		},
		Processing: Processing{
			FPS:            defaultFPS,
			TimecodeFormat: defaultTimecodeFormat,
		},
		Output: Output{
			DataDir:   defaultDataDir,
			ExportDir: defaultExportDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
