package contract

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/fosdash/schema"
)

// Color variables for console output.
var (
	ImprovingColor = color.New(color.FgGreen, color.Bold) // favorable movement
	DecliningColor = color.New(color.FgRed, color.Bold)   // unfavorable movement
	NeutralColor   = color.New(color.FgHiBlack)           // stable or not significant
	HeaderColor    = color.New(color.FgCyan, color.Bold)
)

// ColorizeTrend applies the console color matching a trend display color.
func ColorizeTrend(text string, c string) string {
	switch c {
	case schema.ColorImproving:
		return ImprovingColor.Sprint(text)
	case schema.ColorDeclining:
		return DecliningColor.Sprint(text)
	default:
		return NeutralColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. An empty path selects os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// StatusLine prefixes a message with an emoji when emojis are enabled.
func StatusLine(useEmojis bool, emoji, msg string) string {
	if useEmojis {
		return emoji + " " + msg
	}
	return msg
}

// TruncateName truncates a firm name to a maximum width with an ellipsis suffix.
// Requires maxWidth > 3 so that at least one character of content remains.
func TruncateName(name string, maxWidth int) string {
	runes := []rune(name)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return name
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
