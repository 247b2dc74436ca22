package colors

import "github.com/fatih/color"

var (
	Red    = color.New(color.FgRed).SprintFunc()
	Yellow = color.New(color.FgYellow).SprintFunc()
	Green  = color.New(color.FgGreen).SprintFunc()
	Blue   = color.New(color.FgBlue).SprintFunc()
	Cyan   = color.New(color.FgCyan).SprintFunc()
)

// Status colours an http status code, red for errors and green otherwise
func Status(code int) string {
	if code >= 400 {
		return Red(code)
	}
	return Green(code)
}

// Verdict colours a classification label for terminal output
func Verdict(isScam *bool) string {
	switch {
	case isScam == nil:
		return Yellow("unknown")
	case *isScam:
		return Red("suspicious")
	default:
		return Green("safe")
	}
}
