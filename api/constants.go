package api

const (
	// DefaultMaxUploadSize is the default maximum composite image size (20MB)
	DefaultMaxUploadSize = 20 * 1024 * 1024

	// DefaultMinArea is the default noise cutoff for detected regions
	DefaultMinArea = 1000

	// DefaultGridCols is the default grid width for grid mode
	DefaultGridCols = 4

	// DefaultGridRows is the default grid height for grid mode
	DefaultGridRows = 7

	// MaxGridDimension caps cols and rows for grid mode
	MaxGridDimension = 20

	// ArchiveFilename is the download name of the sticker bundle
	ArchiveFilename = "stickers.zip"

	// IconsArchiveFilename is the download name of the icon bundle
	IconsArchiveFilename = "icons.zip"
)
