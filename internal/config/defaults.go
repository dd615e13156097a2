package config

// Classifier strategy names accepted in classifier.strategy.
const (
	StrategyShape = "shape"
	StrategyPixel = "pixel"
)

const (
	defaultTemplateFile   = "~/.config/gridtrace/va_roi.png"
	defaultOutputDir      = "~/gridtrace/reports"
	defaultStateDir       = "~/.local/share/gridtrace"
	defaultROIX           = 2550
	defaultROIY           = 790
	defaultROIWidth       = 90
	defaultROIHeight      = 50
	defaultGridLeft       = 1060
	defaultGridTop        = 340
	defaultGridPitch      = 80
	defaultGridRadius     = 4
	defaultGridInset      = 30
	defaultGridSample     = 20
	defaultGridBrightness = 200.0
	defaultShapeThreshold = 0.005
	// 50 differing pixels, each weighted 255.
	defaultPixelThreshold = 12750.0
	defaultBinarizeCutoff = 127
	defaultFPS            = 30.0
	defaultFFmpegBinary   = "ffmpeg"
	defaultFFprobeBinary  = "ffprobe"
	defaultBatchWorkers   = 1
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
)

func defaultExtensions() []string {
	return []string{".mp4", ".mov", ".mkv", ".avi"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			TemplateFile: defaultTemplateFile,
			OutputDir:    defaultOutputDir,
			StateDir:     defaultStateDir,
		},
		ROI: ROI{
			X:      defaultROIX,
			Y:      defaultROIY,
			Width:  defaultROIWidth,
			Height: defaultROIHeight,
		},
		Grid: Grid{
			Left:       defaultGridLeft,
			Top:        defaultGridTop,
			Pitch:      defaultGridPitch,
			Radius:     defaultGridRadius,
			Inset:      defaultGridInset,
			Sample:     defaultGridSample,
			Brightness: defaultGridBrightness,
		},
		Classifier: Classifier{
			Strategy:       StrategyShape,
			ShapeThreshold: defaultShapeThreshold,
			PixelThreshold: defaultPixelThreshold,
			BinarizeCutoff: defaultBinarizeCutoff,
		},
		Video: Video{
			FPS:           defaultFPS,
			FFmpegBinary:  defaultFFmpegBinary,
			FFprobeBinary: defaultFFprobeBinary,
			Extensions:    defaultExtensions(),
		},
		Batch: Batch{
			Workers:    defaultBatchWorkers,
			RecordRuns: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
