// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"firelist/internal/service"
)

const (
	// NoTasks is printed when the tasks collection is empty.
	NoTasks = "No tasks available"
	// NoProducts is printed when the products collection is empty.
	NoProducts = "No products available"

	// SnapshotSeparator is printed between snapshots in watch mode.
	SnapshotSeparator = "------------"
)

// FormatTask formats a task line.
// Format: "{N:>4}  {TEXT}\n" (4-wide right-aligned number, two spaces, text)
func FormatTask(w io.Writer, num int, task service.Task) {
	fmt.Fprintf(w, "%4d  %s\n", num, normalize(task.Text))
}

// FormatTasks writes a numbered task list, or NoTasks when it is empty.
func FormatTasks(w io.Writer, tasks []service.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, NoTasks)
		return
	}
	for i, t := range tasks {
		FormatTask(w, i+1, t)
	}
}

// FormatProducts writes a numbered product table, or NoProducts when it is empty.
// Name and type columns are padded to their widest cell in terminal columns.
func FormatProducts(w io.Writer, products []service.Product) {
	if len(products) == 0 {
		fmt.Fprintln(w, NoProducts)
		return
	}

	nameW, typeW := runewidth.StringWidth("NAME"), runewidth.StringWidth("TYPE")
	for _, p := range products {
		nameW = max(nameW, runewidth.StringWidth(normalize(p.Name)))
		typeW = max(typeW, runewidth.StringWidth(normalize(p.Type)))
	}

	fmt.Fprintf(w, "%4s  %s  %s  %s\n", "#",
		runewidth.FillRight("NAME", nameW), runewidth.FillRight("TYPE", typeW), "PRICE")
	for i, p := range products {
		fmt.Fprintf(w, "%4d  %s  %s  %s\n", i+1,
			runewidth.FillRight(normalize(p.Name), nameW),
			runewidth.FillRight(normalize(p.Type), typeW),
			FormatPrice(p.Price))
	}
}

// FormatPrice renders a price with the shortest exact representation.
func FormatPrice(price float64) string {
	return strconv.FormatFloat(price, 'f', -1, 64)
}

// FormatSnapshotHeader separates consecutive snapshots in watch mode.
func FormatSnapshotHeader(w io.Writer, seq int) {
	fmt.Fprintln(w, SnapshotSeparator)
	fmt.Fprintf(w, "snapshot %d\n", seq)
	fmt.Fprintln(w, SnapshotSeparator)
}

// normalize prepares a value for single-line display.
// - Empty or whitespace-only values become "(empty)"
// - Newlines are replaced with spaces
func normalize(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")

	if strings.TrimSpace(s) == "" {
		return "(empty)"
	}
	return s
}
