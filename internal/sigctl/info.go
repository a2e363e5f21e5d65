//go:build unix

package sigctl

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// WriteInfo writes the fixed table of signals of interest: number, name,
// whether it can be caught, whether this program manages it, and what it
// means. It reads nothing but the static table.
func WriteInfo(w io.Writer) error {
	return WriteInfoRows(w, table)
}

// WriteInfoRows writes the info table header followed by rows, in the order
// given.
func WriteInfoRows(w io.Writer, rows []Info) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NUM\tSIGNAL\tCATCHABLE\tMANAGED\tMEANING")
	for _, in := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			int(in.Signal), in.Name, yesNo(in.Catchable), yesNo(in.Managed), in.Meaning)
	}
	return tw.Flush()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
