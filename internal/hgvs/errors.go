package hgvs

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfRange means a position cannot be placed on a transcript. The
	// transcript is skipped for that variant.
	ErrOutOfRange = errors.New("position out of range for transcript")

	// ErrPositionNotSet means a descriptor was filled before its genomic
	// position was set.
	ErrPositionNotSet = errors.New("variant position is not set")

	// ErrInconsistentModel means the transcript model contradicts itself.
	ErrInconsistentModel = errors.New("inconsistent transcript model")
)

// ConsistencyError reports an exon whose two boundary coordinates disagree
// about a position under both sign conventions.
type ConsistencyError struct {
	TranscriptID string
	Exon         int   // exon index in genomic order
	Pos          int64 // genomic position being resolved
	FromStart    int64 // candidate derived from the exon start boundary
	FromEnd      int64 // candidate derived from the exon end boundary
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("%s: exon %d boundaries disagree at position %d (%d vs %d)",
		e.TranscriptID, e.Exon, e.Pos, e.FromStart, e.FromEnd)
}

// Unwrap lets errors.Is match ErrInconsistentModel.
func (e *ConsistencyError) Unwrap() error {
	return ErrInconsistentModel
}
