package service

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoVehicleData indicates an analytics window with zero vehicle history
// records. This is the only not-found condition the analytics path raises.
var ErrNoVehicleData = errors.New("no vehicle telemetry in window")

// ShapeError indicates a telemetry record that matches neither or both
// sample shapes, or carries an undecodable field.
type ShapeError struct {
	Message string
	Fields  []string
}

func (e *ShapeError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, strings.Join(e.Fields, ", "))
}

// ValidationError indicates a shape-valid record with out-of-range or
// missing values.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid field values: %s", strings.Join(e.Fields, ", "))
}

// PartialWriteError reports an ingest that appended history but failed the
// live snapshot upsert. History and live are inconsistent for the named
// entity until a later ingest for the same id succeeds.
type PartialWriteError struct {
	Class    string
	EntityID string
	Err      error
}

func (e *PartialWriteError) Error() string {
	return fmt.Sprintf("%s %s: history appended but live snapshot upsert failed: %v", e.Class, e.EntityID, e.Err)
}

func (e *PartialWriteError) Unwrap() error {
	return e.Err
}

// RecordError ties a per-record failure to its position in a batch.
type RecordError struct {
	Index int
	Err   error
}

func (e RecordError) Error() string {
	return fmt.Sprintf("record %d: %v", e.Index, e.Err)
}

// BatchError aggregates per-record failures that rejected a whole batch
// before any write.
type BatchError struct {
	Records []RecordError
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("batch rejected: %d invalid record(s)", len(e.Records))
}
