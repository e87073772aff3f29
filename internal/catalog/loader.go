package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// LoadFile reads a CSV catalog from the given path.
func LoadFile(path string) (*Catalog, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	c, err := Load(file)
	if err != nil {
		return nil, fmt.Errorf("loading catalog %q: %w", path, err)
	}
	return c, nil
}

// Load parses a CSV catalog. The first row names the columns. Every cell is
// read as a string and missing cells become empty strings.
func Load(r io.Reader) (*Catalog, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return New(nil), nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	for i, name := range header {
		name = strings.TrimSpace(name)
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		header[i] = name
	}

	var postings []Posting
	for row := 1; ; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", row, err)
		}

		posting, err := decodeRow(header, record)
		if err != nil {
			return nil, fmt.Errorf("decode row %d: %w", row, err)
		}
		if strings.TrimSpace(posting.ID) == "" {
			posting.ID = strconv.Itoa(row)
		}

		postings = append(postings, posting)
	}

	return New(postings), nil
}

func decodeRow(header, record []string) (Posting, error) {
	fields := make(map[string]string, len(header))
	for i, name := range header {
		if name == "" {
			continue
		}
		value := ""
		if i < len(record) {
			value = record[i]
		}
		fields[name] = value
	}

	var posting Posting
	cfg := &mapstructure.DecoderConfig{
		Metadata: nil,
		Result:   &posting,
		TagName:  "mapstructure",
	}

	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return Posting{}, err
	}

	if err := decoder.Decode(fields); err != nil {
		return Posting{}, err
	}

	return posting, nil
}
