// Package maf reads variants from MAF (Mutation Annotation Format) files.
package maf

import (
	"bufio"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/inodb/vibe-hgvs/internal/vcf"
)

// Standard MAF column names
const (
	ColChromosome      = "Chromosome"
	ColStartPosition   = "Start_Position"
	ColEndPosition     = "End_Position"
	ColReferenceAllele = "Reference_Allele"
	ColTumorSeqAllele2 = "Tumor_Seq_Allele2"
	ColDbSNPRS         = "dbSNP_RS"
	ColTumorSample     = "Tumor_Sample_Barcode"
)

// ColumnIndices holds the indices of the MAF columns the parser reads.
// Optional columns are -1 when absent.
type ColumnIndices struct {
	Chromosome      int
	StartPosition   int
	EndPosition     int
	ReferenceAllele int
	TumorSeqAllele2 int
	DbSNPRS         int
	TumorSample     int
}

// Parser reads variants from a MAF file. It implements vcf.VariantParser.
type Parser struct {
	reader     *bufio.Reader
	closers    []io.Closer
	lineNumber int
	columns    ColumnIndices
	headerLine string
}

var _ vcf.VariantParser = (*Parser)(nil)

// NewParser opens a MAF file, plain or gzipped. A path of "-" reads stdin.
func NewParser(path string) (*Parser, error) {
	if path == "-" {
		return NewParserFromReader(os.Stdin)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open maf file: %w", err)
	}

	p, err := NewParserFromReader(file)
	if err != nil {
		file.Close()
		return nil, err
	}
	p.closers = append(p.closers, file)
	return p, nil
}

// NewParserFromReader creates a parser from an io.Reader. Gzip input is
// detected from its magic bytes.
func NewParserFromReader(r io.Reader) (*Parser, error) {
	br := bufio.NewReader(r)
	p := &Parser{reader: br}

	if magic, _ := br.Peek(2); len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		p.reader = bufio.NewReader(gz)
		p.closers = append(p.closers, gz)
	}

	if err := p.parseHeader(); err != nil {
		p.Close()
		return nil, err
	}
	return p, nil
}

// readLine returns the next line without its terminator. The last line of
// a file does not need a trailing newline.
func (p *Parser) readLine() (string, error) {
	line, err := p.reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	p.lineNumber++
	return strings.TrimRight(line, "\r\n"), nil
}

// parseHeader skips comment lines and reads the column header.
func (p *Parser) parseHeader() error {
	for {
		line, err := p.readLine()
		if errors.Is(err, io.EOF) {
			return &ParseError{Line: p.lineNumber, Message: "no header line found"}
		}
		if err != nil {
			return fmt.Errorf("read header: %w", err)
		}
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		p.headerLine = line
		return p.parseColumnIndices(line)
	}
}

// parseColumnIndices locates the known columns in the header line.
func (p *Parser) parseColumnIndices(headerLine string) error {
	p.columns = ColumnIndices{
		Chromosome:      -1,
		StartPosition:   -1,
		EndPosition:     -1,
		ReferenceAllele: -1,
		TumorSeqAllele2: -1,
		DbSNPRS:         -1,
		TumorSample:     -1,
	}

	for i, col := range strings.Split(headerLine, "\t") {
		switch col {
		case ColChromosome:
			p.columns.Chromosome = i
		case ColStartPosition:
			p.columns.StartPosition = i
		case ColEndPosition:
			p.columns.EndPosition = i
		case ColReferenceAllele:
			p.columns.ReferenceAllele = i
		case ColTumorSeqAllele2:
			p.columns.TumorSeqAllele2 = i
		case ColDbSNPRS:
			p.columns.DbSNPRS = i
		case ColTumorSample:
			p.columns.TumorSample = i
		}
	}

	for _, req := range []struct {
		name string
		idx  int
	}{
		{ColChromosome, p.columns.Chromosome},
		{ColStartPosition, p.columns.StartPosition},
		{ColReferenceAllele, p.columns.ReferenceAllele},
		{ColTumorSeqAllele2, p.columns.TumorSeqAllele2},
	} {
		if req.idx == -1 {
			return &ParseError{
				Line:    p.lineNumber,
				Message: fmt.Sprintf("required column '%s' not found in header", req.name),
			}
		}
	}
	return nil
}

// Next reads the next variant. Returns nil, nil when there are no more
// variants.
func (p *Parser) Next() (*vcf.Variant, error) {
	for {
		line, err := p.readLine()
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read variant line: %w", err)
		}
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		return p.parseLine(line)
	}
}

// parseLine converts one MAF row into a variant. MAF writes a missing
// allele as "-"; it becomes the empty allele.
func (p *Parser) parseLine(line string) (*vcf.Variant, error) {
	fields := strings.Split(line, "\t")

	minCols := max(p.columns.Chromosome, p.columns.StartPosition, p.columns.ReferenceAllele, p.columns.TumorSeqAllele2)
	if len(fields) <= minCols {
		return nil, &ParseError{
			Line:    p.lineNumber,
			Message: fmt.Sprintf("expected at least %d columns, found %d", minCols+1, len(fields)),
		}
	}

	pos, err := strconv.ParseInt(fields[p.columns.StartPosition], 10, 64)
	if err != nil || pos < 1 {
		return nil, &ParseError{
			Line:    p.lineNumber,
			Message: fmt.Sprintf("invalid position: %s", fields[p.columns.StartPosition]),
		}
	}

	v := &vcf.Variant{
		Chrom:  fields[p.columns.Chromosome],
		Pos:    pos,
		ID:     ".",
		Ref:    dashToEmpty(strings.ToUpper(fields[p.columns.ReferenceAllele])),
		Alt:    dashToEmpty(strings.ToUpper(fields[p.columns.TumorSeqAllele2])),
		Filter: ".",
		Info:   make(map[string]string),
	}
	if id := p.field(fields, p.columns.DbSNPRS); id != "" && id != "novel" {
		v.ID = id
	}
	if sample := p.field(fields, p.columns.TumorSample); sample != "" {
		v.Info[ColTumorSample] = sample
	}
	return v, nil
}

// field returns fields[idx], or "" for absent columns and short rows.
func (p *Parser) field(fields []string, idx int) string {
	if idx < 0 || idx >= len(fields) {
		return ""
	}
	return fields[idx]
}

func dashToEmpty(allele string) string {
	if allele == "-" {
		return ""
	}
	return allele
}

// Header returns the MAF column header line.
func (p *Parser) Header() string {
	return p.headerLine
}

// Columns returns the parsed column indices.
func (p *Parser) Columns() ColumnIndices {
	return p.columns
}

// LineNumber returns the current line number being processed.
func (p *Parser) LineNumber() int {
	return p.lineNumber
}

// Close closes the parser and underlying file.
func (p *Parser) Close() error {
	var errs []error
	for i := len(p.closers) - 1; i >= 0; i-- {
		errs = append(errs, p.closers[i].Close())
	}
	p.closers = nil
	return errors.Join(errs...)
}

// ParseError represents an error during MAF parsing with line context.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("maf parse error at line %d: %s", e.Line, e.Message)
}
