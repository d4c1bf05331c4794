// Package csvsource reads call detail records from a CSV file and serves them
// from memory.
package csvsource

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	callrecorddomain "github.com/railzwaylabs/phonebill/internal/callrecord/domain"
)

const (
	colOrigin = iota
	colDestination
	colDuration
	colTimestamp
	numColumns
)

// Accepted header names per column. The Spanish names are the ones the
// operator's billing exports use.
var headerAliases = map[string]int{
	"origin":         colOrigin,
	"numero_origen":  colOrigin,
	"destination":    colDestination,
	"numero_destino": colDestination,
	"duration":       colDuration,
	"duracion":       colDuration,
	"timestamp":      colTimestamp,
	"fecha":          colTimestamp,
}

// Parse reads every record of a calls CSV. The first row must be a header
// naming the four columns in any order. Timestamps without a zone are UTC.
func Parse(r io.Reader) ([]callrecorddomain.CallRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	index, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var records []callrecorddomain.CallRecord
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := reader.FieldPos(0)

		record, err := parseRow(row, index)
		if err != nil {
			return nil, fmt.Errorf("record on line %d: %w", line, err)
		}
		records = append(records, record)
	}
	return records, nil
}

func columnIndex(header []string) ([numColumns]int, error) {
	var index [numColumns]int
	for i := range index {
		index[i] = -1
	}
	for pos, name := range header {
		col, ok := headerAliases[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			continue
		}
		index[col] = pos
	}
	for col, pos := range index {
		if pos < 0 {
			return index, fmt.Errorf("%w: header is missing column %d, got %v", callrecorddomain.ErrInvalidRecord, col+1, header)
		}
	}
	return index, nil
}

func parseRow(row []string, index [numColumns]int) (callrecorddomain.CallRecord, error) {
	field := func(col int) (string, error) {
		pos := index[col]
		if pos >= len(row) {
			return "", fmt.Errorf("%w: expected at least %d fields, got %d", callrecorddomain.ErrInvalidRecord, pos+1, len(row))
		}
		return strings.TrimSpace(row[pos]), nil
	}

	origin, err := field(colOrigin)
	if err != nil {
		return callrecorddomain.CallRecord{}, err
	}
	destination, err := field(colDestination)
	if err != nil {
		return callrecorddomain.CallRecord{}, err
	}
	rawDuration, err := field(colDuration)
	if err != nil {
		return callrecorddomain.CallRecord{}, err
	}
	rawTimestamp, err := field(colTimestamp)
	if err != nil {
		return callrecorddomain.CallRecord{}, err
	}

	duration, err := strconv.ParseInt(rawDuration, 10, 64)
	if err != nil {
		return callrecorddomain.CallRecord{}, fmt.Errorf("%w: invalid duration %q", callrecorddomain.ErrInvalidRecord, rawDuration)
	}
	startedAt, err := callrecorddomain.ParseTimestamp(rawTimestamp)
	if err != nil {
		return callrecorddomain.CallRecord{}, err
	}

	record := callrecorddomain.CallRecord{
		OriginNumber:      origin,
		DestinationNumber: destination,
		DurationSeconds:   duration,
		StartedAt:         startedAt,
	}
	if err := record.Validate(); err != nil {
		return callrecorddomain.CallRecord{}, err
	}
	return record, nil
}
