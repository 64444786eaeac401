package common

// Discord color constants
const (
	ColorPrimary = 0x5865F2 // Discord blurple
	ColorSuccess = 0x57F287 // Green
	ColorDanger  = 0xED4245 // Red
	ColorWarning = 0xFEE75C // Yellow
	ColorInfo    = 0x3498DB // Blue
	ColorGold    = 0xF1C40F
)

// Embed limits enforced by Discord
const (
	MaxEmbedDescription = 4096
	MaxEmbedFields      = 25
)

// DateLayout is the accepted format of date options
const DateLayout = "2006-01-02 15:04"
