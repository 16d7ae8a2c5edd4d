package cache

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// GenePredLoader loads transcripts from UCSC genePred tables
// (refGene.txt, ncbiRefSeq.txt, or plain genePred with or without name2).
type GenePredLoader struct {
	path string
}

// NewGenePredLoader creates a new genePred loader.
func NewGenePredLoader(path string) *GenePredLoader {
	return &GenePredLoader{path: path}
}

// Load loads all transcripts from the genePred file into the cache.
func (l *GenePredLoader) Load(c *Cache) error {
	in, err := openInput(l.path)
	if err != nil {
		return fmt.Errorf("open genePred file: %w", err)
	}
	defer in.Close()

	return l.parse(in, c)
}

func (l *GenePredLoader) parse(reader io.Reader, c *Cache) error {
	scanner := bufio.NewScanner(reader)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		t, err := parseGenePredLine(line)
		if err != nil {
			return fmt.Errorf("genePred line %d: %w", lineNum, err)
		}
		c.AddTranscript(t)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan genePred: %w", err)
	}
	return nil
}

// parseGenePredLine parses one genePred record. Coordinates in the file are
// 0-based half-open; the returned transcript is 1-based inclusive.
func parseGenePredLine(line string) (*Transcript, error) {
	fields := strings.Split(line, "\t")

	// refGene-style tables carry a leading bin column.
	if len(fields) > 3 && (fields[3] == "+" || fields[3] == "-") {
		if _, err := strconv.Atoi(fields[0]); err == nil {
			fields = fields[1:]
		}
	}
	if len(fields) < 10 {
		return nil, fmt.Errorf("expected at least 10 fields, got %d", len(fields))
	}

	var nums [5]int64
	for i, f := range fields[3:8] {
		v, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse column %d: %w", i+4, err)
		}
		nums[i] = v
	}
	txStart, txEnd, cdsStart, cdsEnd, exonCount := nums[0], nums[1], nums[2], nums[3], int(nums[4])

	starts, err := parseCoordList(fields[8])
	if err != nil {
		return nil, fmt.Errorf("parse exonStarts: %w", err)
	}
	ends, err := parseCoordList(fields[9])
	if err != nil {
		return nil, fmt.Errorf("parse exonEnds: %w", err)
	}
	if len(starts) != exonCount || len(ends) != exonCount {
		return nil, fmt.Errorf("exonCount %d does not match %d starts / %d ends",
			exonCount, len(starts), len(ends))
	}

	t := &Transcript{
		ID:      fields[0],
		Chrom:   fields[1],
		Strand:  parseStrand(fields[2]),
		Start:   txStart + 1,
		End:     txEnd,
		Biotype: "protein_coding",
		Exons:   make([]Exon, exonCount),
	}
	if len(fields) > 11 {
		t.GeneName = fields[11]
	}
	if cdsStart < cdsEnd {
		t.CDSStart = cdsStart + 1
		t.CDSEnd = cdsEnd
	} else {
		t.Biotype = "non_coding"
	}

	for i := range exonCount {
		if i > 0 && starts[i] < ends[i-1] {
			return nil, fmt.Errorf("exons of %s overlap or are unsorted", t.ID)
		}
		num := i + 1
		if t.IsReverseStrand() {
			num = exonCount - i
		}
		t.Exons[i] = Exon{Number: num, Start: starts[i] + 1, End: ends[i]}
	}

	return t, nil
}

// parseCoordList parses a comma-separated list such as "100,250,".
func parseCoordList(s string) ([]int64, error) {
	var out []int64
	for _, part := range strings.Split(strings.TrimSuffix(s, ","), ",") {
		if part == "" {
			continue
		}
		v, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// parseStrand converts strand string to int8.
func parseStrand(s string) int8 {
	if s == "-" {
		return -1
	}
	return 1
}
