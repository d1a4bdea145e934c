package main

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// label title-cases an API enum such as "in-progress" for display.
func label(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "-"
	}
	return titleCaser.String(strings.NewReplacer("_", " ", "-", " ").Replace(value))
}

func formatUnix(ts *int64) string {
	if ts == nil || *ts == 0 {
		return "-"
	}
	return time.Unix(*ts, 0).Local().Format("2006-01-02 15:04")
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func passFail(passed, colorize bool) string {
	status := "FAIL"
	color := text.FgRed
	if passed {
		status = "OK"
		color = text.FgGreen
	}
	if !colorize {
		return status
	}
	return color.Sprint(status)
}
