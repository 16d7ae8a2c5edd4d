// Package output writes HGVS descriptors in tab-delimited and VCF formats.
package output

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/vibe-hgvs/internal/hgvs"
	"github.com/inodb/vibe-hgvs/internal/vcf"
)

// Writer is implemented by every descriptor output format.
type Writer interface {
	WriteHeader() error
	Write(v *vcf.Variant, d *hgvs.Descriptor) error
	Flush() error
}

var tabColumns = []string{
	"#Uploaded_variation",
	"Location",
	"Allele",
	"Gene",
	"Feature",
	"HGVSc",
	"Start_offset",
	"End_offset",
}

// TabWriter writes one tab-delimited row per HGVS core.
type TabWriter struct {
	w *bufio.Writer
}

// NewTabWriter creates a new tab-delimited writer.
func NewTabWriter(w io.Writer) *TabWriter {
	return &TabWriter{w: bufio.NewWriter(w)}
}

// WriteHeader writes the header line.
func (tw *TabWriter) WriteHeader() error {
	_, err := tw.w.WriteString(strings.Join(tabColumns, "\t") + "\n")
	return err
}

// Write writes every core of d. A descriptor without cores still gets a
// row so that each input variant is accounted for.
func (tw *TabWriter) Write(v *vcf.Variant, d *hgvs.Descriptor) error {
	id := v.ID
	if id == "" || id == "." {
		id = v.Key()
	}
	location := Location(d)
	allele := orDash(v.Alt)

	if d.Len() == 0 {
		return tw.writeRow(id, location, allele, "-", "-", "-", "-", "-")
	}

	for i := range d.Cores {
		c := d.At(i)
		endOffset := "-"
		if c.HasEnd {
			endOffset = strconv.FormatInt(c.End.Offset, 10)
		}
		err := tw.writeRow(
			id,
			location,
			allele,
			orDash(c.Name2),
			orDash(c.Name1),
			hgvs.FormatCore(c),
			strconv.FormatInt(c.Start.Offset, 10),
			endOffset,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (tw *TabWriter) writeRow(values ...string) error {
	_, err := tw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TabWriter) Flush() error {
	return tw.w.Flush()
}

// Location returns chrom:start, or chrom:start-end for multi-base spans.
func Location(d *hgvs.Descriptor) string {
	loc := d.Chrom + ":" + strconv.FormatInt(d.Start, 10)
	if d.End > d.Start {
		loc += "-" + strconv.FormatInt(d.End, 10)
	}
	return loc
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
