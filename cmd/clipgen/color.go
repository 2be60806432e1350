package main

import (
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"clipgen/internal/clipstore"
)

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func colorizeStage(tag string, colorize bool) string {
	if !colorize || tag == "" {
		return tag
	}
	switch tag {
	case clipstore.TagCompleted:
		return text.FgGreen.Sprint(tag)
	case clipstore.TagStage2:
		return text.FgCyan.Sprint(tag)
	case clipstore.TagStage1:
		return text.FgYellow.Sprint(tag)
	default:
		return tag
	}
}

func colorizeStatus(ok bool, label string, colorize bool) string {
	if !colorize {
		return label
	}
	if ok {
		return text.FgGreen.Sprint(label)
	}
	return text.FgRed.Sprint(label)
}
