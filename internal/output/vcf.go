package output

import (
	"bufio"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/inodb/vibe-hgvs/internal/hgvs"
	"github.com/inodb/vibe-hgvs/internal/vcf"
)

// hgvsInfoKey is the INFO field carrying HGVS names.
const hgvsInfoKey = "HGVSC"

const hgvsInfoHeader = `##INFO=<ID=HGVSC,Number=.,Type=String,Description="HGVS transcript names from vibe-hgvs. Format: Allele|Gene|Feature|HGVSc">`

// VCFWriter writes variants back as VCF with an HGVSC INFO field.
// Alleles split from one multi-allelic record are buffered and written
// back as a single line.
type VCFWriter struct {
	w           *bufio.Writer
	headerLines []string

	current *vcf.Variant
	alts    []string
	entries []string
}

// NewVCFWriter creates a VCF writer that reproduces the given header.
func NewVCFWriter(w io.Writer, headerLines []string) *VCFWriter {
	return &VCFWriter{
		w:           bufio.NewWriter(w),
		headerLines: headerLines,
	}
}

// WriteHeader writes the input header with the HGVSC line before #CHROM.
func (vw *VCFWriter) WriteHeader() error {
	for _, line := range vw.headerLines {
		if strings.HasPrefix(line, "##INFO=<ID="+hgvsInfoKey+",") {
			continue
		}
		if strings.HasPrefix(line, "#CHROM") {
			if _, err := vw.w.WriteString(hgvsInfoHeader + "\n"); err != nil {
				return err
			}
		}
		if _, err := vw.w.WriteString(line + "\n"); err != nil {
			return err
		}
	}
	return nil
}

// Write buffers the names for v. The buffered record is written when a
// variant from a different record arrives or on Flush.
func (vw *VCFWriter) Write(v *vcf.Variant, d *hgvs.Descriptor) error {
	if vw.current != nil && !sameRecord(vw.current, v) {
		if err := vw.flushRecord(); err != nil {
			return err
		}
	}
	if vw.current == nil {
		vw.current = v
	}

	if !slices.Contains(vw.alts, v.Alt) {
		vw.alts = append(vw.alts, v.Alt)
	}
	for i := range d.Cores {
		c := d.At(i)
		vw.entries = append(vw.entries, strings.Join([]string{
			v.Alt, c.Name2, c.Name1, hgvs.FormatCore(c),
		}, "|"))
	}
	return nil
}

// Flush writes any buffered record and flushes the underlying writer.
func (vw *VCFWriter) Flush() error {
	if err := vw.flushRecord(); err != nil {
		return err
	}
	return vw.w.Flush()
}

func sameRecord(a, b *vcf.Variant) bool {
	return a.Chrom == b.Chrom && a.Pos == b.Pos && a.Ref == b.Ref
}

func (vw *VCFWriter) flushRecord() error {
	v := vw.current
	if v == nil {
		return nil
	}

	var lb strings.Builder
	lb.Grow(256)
	for _, field := range []string{
		v.Chrom,
		strconv.FormatInt(v.Pos, 10),
		orDot(v.ID),
		v.Ref,
		strings.Join(vw.alts, ","),
		orDot(v.Qual),
		orDot(v.Filter),
	} {
		lb.WriteString(field)
		lb.WriteByte('\t')
	}

	info := stripInfo(v.RawInfo, hgvsInfoKey)
	switch {
	case len(vw.entries) == 0:
		lb.WriteString(info)
	case info == ".":
		lb.WriteString(hgvsInfoKey + "=" + strings.Join(vw.entries, ","))
	default:
		lb.WriteString(info + ";" + hgvsInfoKey + "=" + strings.Join(vw.entries, ","))
	}

	if v.SampleColumns != "" {
		lb.WriteByte('\t')
		lb.WriteString(v.SampleColumns)
	}
	lb.WriteByte('\n')

	vw.current = nil
	vw.alts = vw.alts[:0]
	vw.entries = vw.entries[:0]

	_, err := vw.w.WriteString(lb.String())
	return err
}

// stripInfo removes key from a raw INFO string, returning "." when nothing
// is left.
func stripInfo(rawInfo, key string) string {
	if rawInfo == "" || rawInfo == "." {
		return "."
	}
	if !strings.Contains(rawInfo, key) {
		return rawInfo
	}

	kept := make([]string, 0, strings.Count(rawInfo, ";")+1)
	for _, field := range strings.Split(rawInfo, ";") {
		if field == key || strings.HasPrefix(field, key+"=") {
			continue
		}
		kept = append(kept, field)
	}
	if len(kept) == 0 {
		return "."
	}
	return strings.Join(kept, ";")
}

func orDot(s string) string {
	if s == "" {
		return "."
	}
	return s
}
