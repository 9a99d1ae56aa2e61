package engine

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/zeebo/xxh3"
	"golang.org/x/sync/errgroup"
)

// Files smaller than this are parsed by a single worker.
const minChunkBytes = 64 << 10

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// localDict is a worker-private dictionary for one dimension column.
type localDict struct {
	ids  map[string]int32
	list []string
}

func (d *localDict) id(s string) int32 {
	if id, ok := d.ids[s]; ok {
		return id
	}
	id := int32(len(d.list))
	d.list = append(d.list, s)
	d.ids[s] = id
	return id
}

// chunkResult is what one worker parsed. Slices are indexed by schema
// position; only the ones matching the column kind are set.
type chunkResult struct {
	dicts []*localDict
	ids   [][]int32
	nums  [][]float64
}

// LoadColumnar reads a delimited file with a header row into a ColumnStore.
// Every schema column must be present in the header; other header columns
// are ignored. Rows are parsed in parallel newline-aligned chunks, so quoted
// fields must not contain line breaks.
func LoadColumnar(path string, schema Schema) (*ColumnStore, error) {
	start := time.Now()

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDataUnavailable, err)
	}
	fingerprint := xxh3.Hash(content)
	content = bytes.TrimPrefix(content, utf8BOM)

	// A. Header
	headerLine, body, _ := bytes.Cut(content, []byte{'\n'})
	headerLine = bytes.TrimRight(headerLine, "\r")
	if len(bytes.TrimSpace(headerLine)) == 0 {
		return nil, fmt.Errorf("%w: %s: missing header row", ErrDataUnavailable, path)
	}
	header, err := csv.NewReader(bytes.NewReader(headerLine)).Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: header: %v", ErrDataUnavailable, path, err)
	}
	positions, err := resolveHeader(header, schema)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDataUnavailable, path, err)
	}

	// B. Newline-aligned chunk boundaries
	bounds := chunkBounds(body, workerCount(len(body)))
	results := make([]*chunkResult, len(bounds)-1)

	// C. Parallel parsing, worker-local dictionaries
	var g errgroup.Group
	for w := range results {
		g.Go(func() error {
			res, err := parseChunk(body[bounds[w]:bounds[w+1]], schema, positions, len(header))
			if err != nil {
				// +1 for the header line.
				line := 1 + bytes.Count(body[:bounds[w]], []byte{'\n'})
				return shiftLine(err, line)
			}
			results[w] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDataUnavailable, path, err)
	}

	// D. Merge dictionaries and concatenate in chunk order
	cols := mergeChunks(results, schema)
	cs, err := NewColumnStore(path, fingerprint, cols)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDataUnavailable, path, err)
	}

	slog.Info("dataset loaded",
		"path", path,
		"rows", cs.Rows(),
		"chunks", len(results),
		"fingerprint", strconv.FormatUint(fingerprint, 16),
		"elapsed", time.Since(start))
	return cs, nil
}

func resolveHeader(header []string, schema Schema) ([]int, error) {
	at := make(map[string]int, len(header))
	for i, h := range header {
		at[strings.TrimSpace(h)] = i
	}
	positions := make([]int, len(schema))
	var missing []string
	for i, def := range schema {
		p, ok := at[def.Name]
		if !ok {
			missing = append(missing, def.Name)
			continue
		}
		positions[i] = p
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return positions, nil
}

func workerCount(size int) int {
	n := runtime.NumCPU()
	if limit := size / minChunkBytes; limit < n {
		n = limit
	}
	if n < 1 {
		n = 1
	}
	return n
}

// chunkBounds splits body into n ranges whose inner edges sit just after a
// newline. Ranges may be empty.
func chunkBounds(body []byte, n int) []int {
	bounds := make([]int, n+1)
	size := len(body) / n
	for i := 1; i < n; i++ {
		pos := i * size
		if pos < bounds[i-1] {
			pos = bounds[i-1]
		}
		if j := bytes.IndexByte(body[pos:], '\n'); j != -1 {
			pos += j + 1
		} else {
			pos = len(body)
		}
		bounds[i] = pos
	}
	bounds[n] = len(body)
	return bounds
}

func parseChunk(chunk []byte, schema Schema, positions []int, width int) (*chunkResult, error) {
	res := &chunkResult{
		dicts: make([]*localDict, len(schema)),
		ids:   make([][]int32, len(schema)),
		nums:  make([][]float64, len(schema)),
	}
	for i, def := range schema {
		if def.Kind == Dimension {
			res.dicts[i] = &localDict{ids: make(map[string]int32)}
		}
	}

	r := csv.NewReader(bytes.NewReader(chunk))
	r.FieldsPerRecord = width
	r.ReuseRecord = true

	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			return res, nil
		}
		if err != nil {
			return nil, err
		}
		for i, def := range schema {
			field := record[positions[i]]
			if def.Kind == Dimension {
				res.ids[i] = append(res.ids[i], res.dicts[i].id(strings.TrimSpace(field)))
				continue
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
				line, _ := r.FieldPos(positions[i])
				return nil, &csv.ParseError{StartLine: line, Line: line, Column: positions[i] + 1,
					Err: fmt.Errorf("column %q: bad number %q", def.Name, field)}
			}
			res.nums[i] = append(res.nums[i], v)
		}
	}
}

// shiftLine turns chunk-relative csv line numbers into file line numbers.
func shiftLine(err error, offset int) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		shifted := *pe
		shifted.StartLine += offset
		shifted.Line += offset
		return &shifted
	}
	return err
}

func mergeChunks(results []*chunkResult, schema Schema) []*Column {
	rows := 0
	for _, res := range results {
		rows += chunkRows(res, schema)
	}

	cols := make([]*Column, len(schema))
	for i, def := range schema {
		col := &Column{Name: def.Name, Kind: def.Kind}
		if def.Kind == Numeric {
			col.Numbers = make([]float64, 0, rows)
			for _, res := range results {
				col.Numbers = append(col.Numbers, res.nums[i]...)
			}
			cols[i] = col
			continue
		}

		global := make(map[string]int32)
		col.IDs = make([]int32, 0, rows)
		for _, res := range results {
			remap := make([]int32, len(res.dicts[i].list))
			for lid, s := range res.dicts[i].list {
				gid, ok := global[s]
				if !ok {
					gid = int32(len(col.Dict))
					col.Dict = append(col.Dict, s)
					global[s] = gid
				}
				remap[lid] = gid
			}
			for _, id := range res.ids[i] {
				col.IDs = append(col.IDs, remap[id])
			}
		}
		cols[i] = col
	}
	return cols
}

func chunkRows(res *chunkResult, schema Schema) int {
	if len(schema) == 0 {
		return 0
	}
	if schema[0].Kind == Numeric {
		return len(res.nums[0])
	}
	return len(res.ids[0])
}
