package render

import (
	"regexp"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	headerStyle    = color.New(color.Bold, color.FgHiWhite)
	addressStyle   = color.New(color.FgWhite)
	faintStyle     = color.New(color.Faint)
	successStyle   = color.New(color.FgGreen)
	warningStyle   = color.New(color.FgYellow)
	errorStyle     = color.New(color.FgRed)
	infoStyle      = color.New(color.FgCyan)
	referenceStyle = color.New(color.FgMagenta)

	numbers = message.NewPrinter(language.English)
	titles  = cases.Title(language.English)
)

// FormatWarning formats a warning message with the warning icon
func FormatWarning(message string) string {
	return warningStyle.Sprintf("⚠️  %s", message)
}

// FormatError formats an error message with the error icon
func FormatError(message string) string {
	if len(message) > 0 {
		message = strings.ToUpper(message[:1]) + message[1:]
	}
	return errorStyle.Sprintf("❌ %s", message)
}

// FormatSuccess formats a success message with the success icon
func FormatSuccess(message string) string {
	return successStyle.Sprintf("✅ %s", message)
}

// formatNumber renders an integer with thousands separators
func formatNumber(n uint64) string {
	return numbers.Sprintf("%d", n)
}

// newTable creates a borderless table in the style of the deployment listings
func newTable(headers ...string) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.Style().Options.SeparateRows = false
	t.Style().Options.DrawBorder = false
	t.Style().Options.SeparateColumns = false
	t.Style().Box.PaddingRight = "   "
	t.Style().Box.PaddingLeft = ""
	t.Style().Format.Header = text.FormatDefault

	if len(headers) > 0 {
		row := make(table.Row, len(headers))
		for i, h := range headers {
			row[i] = headerStyle.Sprint(h)
		}
		t.AppendHeader(row)
	} else {
		t.Style().Options.SeparateHeader = false
	}
	return t
}

var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*[mGKHF]`)

// stripAnsiCodes removes ANSI escape sequences from a string
func stripAnsiCodes(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

// shortHash abbreviates a transaction hash for table cells
func shortHash(hash string) string {
	if len(hash) <= 14 {
		return hash
	}
	return hash[:10] + "…" + hash[len(hash)-4:]
}
