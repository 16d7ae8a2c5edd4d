package cache

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// GTFLoader loads transcript data from GENCODE/Ensembl GTF files.
type GTFLoader struct {
	path string
}

// NewGTFLoader creates a new GTF loader.
func NewGTFLoader(path string) *GTFLoader {
	return &GTFLoader{path: path}
}

// Load loads all transcripts from the GTF file into the cache.
func (l *GTFLoader) Load(c *Cache) error {
	in, err := openInput(l.path)
	if err != nil {
		return fmt.Errorf("open GTF file: %w", err)
	}
	defer in.Close()

	transcripts, err := l.parseGTF(in)
	if err != nil {
		return err
	}
	for _, t := range transcripts {
		c.AddTranscript(t)
	}
	return nil
}

// gtfFeature represents a parsed GTF line.
type gtfFeature struct {
	chrom       string
	featureType string
	start       int64
	end         int64
	strand      string
	attributes  map[string]string
}

// gtfTranscript accumulates the features of one transcript.
type gtfTranscript struct {
	t        *Transcript
	exons    []Exon
	cdsStart int64
	cdsEnd   int64
}

func (g *gtfTranscript) extendCDS(start, end int64) {
	if g.cdsStart == 0 || start < g.cdsStart {
		g.cdsStart = start
	}
	if end > g.cdsEnd {
		g.cdsEnd = end
	}
}

// parseGTF parses GTF content and returns transcripts in file order.
// CDS extents include start and stop codons.
func (l *GTFLoader) parseGTF(reader io.Reader) ([]*Transcript, error) {
	scanner := bufio.NewScanner(reader)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	byID := make(map[string]*gtfTranscript)
	var order []string

	get := func(id string, feat *gtfFeature) *gtfTranscript {
		g, ok := byID[id]
		if !ok {
			g = &gtfTranscript{t: &Transcript{
				ID:     id,
				Chrom:  feat.chrom,
				Strand: parseStrand(feat.strand),
			}}
			byID[id] = g
			order = append(order, id)
		}
		return g
	}

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		feat, err := parseGTFLine(line)
		if err != nil {
			continue // Skip malformed lines
		}
		id := feat.attributes["transcript_id"]
		if id == "" {
			continue
		}

		g := get(id, feat)
		switch feat.featureType {
		case "transcript":
			t := g.t
			t.GeneID = stripVersion(feat.attributes["gene_id"])
			t.GeneName = feat.attributes["gene_name"]
			t.Start, t.End = feat.start, feat.end
			t.Biotype = feat.attributes["transcript_type"]
			if t.Biotype == "" {
				t.Biotype = feat.attributes["transcript_biotype"]
			}
			t.IsCanonical = strings.Contains(feat.attributes["tag"], "Ensembl_canonical")
		case "exon":
			num, _ := strconv.Atoi(feat.attributes["exon_number"])
			g.exons = append(g.exons, Exon{Number: num, Start: feat.start, End: feat.end})
		case "CDS", "start_codon", "stop_codon":
			g.extendCDS(feat.start, feat.end)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan GTF: %w", err)
	}

	transcripts := make([]*Transcript, 0, len(order))
	for _, id := range order {
		g := byID[id]
		if len(g.exons) == 0 {
			continue
		}
		sort.Slice(g.exons, func(i, j int) bool {
			return g.exons[i].Start < g.exons[j].Start
		})

		t := g.t
		t.Exons = g.exons
		t.CDSStart, t.CDSEnd = g.cdsStart, g.cdsEnd
		if t.Start == 0 {
			t.Start, t.End = g.exons[0].Start, g.exons[len(g.exons)-1].End
		}
		transcripts = append(transcripts, t)
	}
	return transcripts, nil
}

// parseGTFLine parses a single GTF line.
func parseGTFLine(line string) (*gtfFeature, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < 9 {
		return nil, fmt.Errorf("invalid GTF line: expected 9 fields, got %d", len(fields))
	}

	start, err := strconv.ParseInt(fields[3], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse start: %w", err)
	}
	end, err := strconv.ParseInt(fields[4], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse end: %w", err)
	}

	return &gtfFeature{
		chrom:       fields[0],
		featureType: fields[2],
		start:       start,
		end:         end,
		strand:      fields[6],
		attributes:  parseAttributes(fields[8]),
	}, nil
}

// parseAttributes parses the GTF attribute column.
// Format: key "value"; key "value"; ...
// Repeated keys such as "tag" are joined with commas.
func parseAttributes(attrStr string) map[string]string {
	attrs := make(map[string]string)
	for _, part := range strings.Split(attrStr, ";") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), " ")
		if !ok {
			continue
		}
		value = strings.Trim(strings.TrimSpace(value), "\"")
		if prev, dup := attrs[key]; dup {
			value = prev + "," + value
		}
		attrs[key] = value
	}
	return attrs
}
