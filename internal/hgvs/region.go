package hgvs

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseRegion parses chrom:pos or chrom:start-end (1-based, inclusive).
// Commas in positions are ignored.
func ParseRegion(region string) (chrom string, start, end int64, err error) {
	chrom, span, ok := strings.Cut(region, ":")
	if !ok || chrom == "" || span == "" {
		return "", 0, 0, fmt.Errorf("region %q: want chrom:pos or chrom:start-end", region)
	}
	span = strings.ReplaceAll(span, ",", "")

	first, last, isRange := strings.Cut(span, "-")
	start, err = strconv.ParseInt(first, 10, 64)
	if err != nil || start < 1 {
		return "", 0, 0, fmt.Errorf("region %q: invalid start %q", region, first)
	}
	end = start
	if isRange {
		end, err = strconv.ParseInt(last, 10, 64)
		if err != nil || end < start {
			return "", 0, 0, fmt.Errorf("region %q: invalid end %q", region, last)
		}
	}
	return strings.TrimPrefix(chrom, "chr"), start, end, nil
}
