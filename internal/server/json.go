package server

import (
	"github.com/inodb/vibe-hgvs/internal/hgvs"
)

// LocationJSON is the wire form of a resolved transcript coordinate.
type LocationJSON struct {
	Pos    int64  `json:"pos"`
	Region string `json:"region"`
	Offset int64  `json:"offset"`
}

// CoreJSON is the wire form of one HGVS core.
type CoreJSON struct {
	Transcript string        `json:"transcript"`
	Gene       string        `json:"gene,omitempty"`
	HGVSc      string        `json:"hgvsc"`
	Start      LocationJSON  `json:"start"`
	End        *LocationJSON `json:"end,omitempty"`
}

// LookupResponse is returned by the lookup endpoint.
type LookupResponse struct {
	Chrom string     `json:"chrom"`
	Start int64      `json:"start"`
	End   int64      `json:"end"`
	Ref   string     `json:"ref,omitempty"`
	Alt   string     `json:"alt,omitempty"`
	Cores []CoreJSON `json:"cores"`
}

// ResultJSON is one stored result.
type ResultJSON struct {
	Chrom string   `json:"chrom"`
	Pos   int64    `json:"pos"`
	Ref   string   `json:"ref"`
	Alt   string   `json:"alt"`
	Core  CoreJSON `json:"core"`
}

// NewLookupResponse converts a filled descriptor.
func NewLookupResponse(d *hgvs.Descriptor) LookupResponse {
	resp := LookupResponse{
		Chrom: d.Chrom,
		Start: d.Start,
		End:   d.End,
		Ref:   d.Ref,
		Alt:   d.Alt,
		Cores: make([]CoreJSON, 0, d.Len()),
	}
	for i := range d.Cores {
		c := d.At(i)
		resp.Cores = append(resp.Cores, CoreJSON{
			Transcript: c.Name1,
			Gene:       c.Name2,
			HGVSc:      hgvs.FormatCore(c),
			Start:      newLocationJSON(c.Start),
			End:        endLocation(c.End, c.HasEnd),
		})
	}
	return resp
}

func newLocationJSON(l hgvs.Location) LocationJSON {
	return LocationJSON{Pos: l.Pos, Region: l.Region.String(), Offset: l.Offset}
}

func endLocation(l hgvs.Location, ok bool) *LocationJSON {
	if !ok {
		return nil
	}
	j := newLocationJSON(l)
	return &j
}
