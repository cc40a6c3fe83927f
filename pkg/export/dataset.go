package export

import "strings"

// Column describes one exported column. Width is only honoured by the PDF
// renderer and is expressed in millimetres; zero spreads the remaining page
// width evenly.
type Column struct {
	Key   string
	Title string
	Width float64
}

// Dataset defines tabular export content.
type Dataset struct {
	Columns []Column
	Rows    []map[string]string
}

// Titles returns the column headings in order.
func (d Dataset) Titles() []string {
	titles := make([]string, len(d.Columns))
	for i, col := range d.Columns {
		titles[i] = col.Title
	}
	return titles
}

// Field is a labelled value printed above or below a PDF table.
type Field struct {
	Label string
	Value string
}

var unsafeFilenameChars = strings.NewReplacer(
	"/", "_", `\`, "_", "?", "_", "%", "_", "*", "_",
	":", "_", "|", "_", `"`, "_", "<", "_", ">", "_",
)

// SafeFilename replaces characters that are not allowed in download file
// names with an underscore.
func SafeFilename(name string) string {
	return unsafeFilenameChars.Replace(name)
}
