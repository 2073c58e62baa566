package klarf

import (
	"errors"
	"fmt"
	"strings"
)

var (
	errDuplicateDie = errors.New("duplicate die coordinate")
	errShortRow     = errors.New("row has fewer values than the record spec")
)

// Keywords that close a defect list even without a "};" terminator.
var sectionKeywords = map[string]bool{
	"summaryspec":    true,
	"summarylist":    true,
	"classlookup":    true,
	"areapertest":    true,
	"inspectiontest": true,
	"testplancount":  true,
}

// parseDieBlock consumes count lines starting at start and appends one Die
// per "X Y" line. Lines that do not carry two integers still count against
// count. It returns the index of the first unconsumed line.
func (r *run) parseDieBlock(start, count int) (int, error) {
	i := start
	for n := 0; n < count; n++ {
		if i >= len(r.lines) {
			r.issue(i, "SampleTestPlan", fmt.Errorf("%w: file ended after %d of %d dies", ErrTooFewValues, n, count))
			return i, nil
		}
		if err := r.step(i); err != nil {
			return i, err
		}
		line, ok := Tokenize(r.lines[i])
		i++
		if !ok {
			continue
		}
		fields := line.Fields()
		if len(fields) < 2 {
			continue
		}
		x, err := parseInt(fields[0])
		if err != nil {
			r.issue(i-1, "SampleTestPlan", err)
			continue
		}
		y, err := parseInt(fields[1])
		if err != nil {
			r.issue(i-1, "SampleTestPlan", err)
			continue
		}
		c := Coord{X: x, Y: y}
		if _, dup := r.seen[c]; dup {
			r.issue(i-1, "SampleTestPlan", fmt.Errorf("%w: (%d, %d)", errDuplicateDie, x, y))
			continue
		}
		r.seen[c] = struct{}{}
		r.model.Dies = append(r.model.Dies, Die{
			XIndex: x,
			YIndex: y,
			ID:     len(r.model.Dies) + 1,
		})
	}
	return i, nil
}

// parseDefectBlock reads defect rows from start until a closing brace, the
// next section keyword, or the end of input. Rows shorter than the header
// are skipped. It returns the index of the line that ended the block.
func (r *run) parseDefectBlock(start int, header []string) (int, error) {
	cols := newColumns(header)
	i := start
	for ; i < len(r.lines); i++ {
		if err := r.step(i); err != nil {
			return i, err
		}
		raw := r.lines[i]
		if strings.Contains(raw, "}") {
			return i, nil
		}
		line, ok := Tokenize(raw)
		if !ok {
			continue
		}
		if endsDefectList(line) {
			return i, nil
		}
		row := line.Fields()
		if len(row) < len(header) {
			r.skipRow(i, len(row), len(header))
			continue
		}
		r.model.Defects = append(r.model.Defects, defectFromRow(cols, row))
	}
	return i, nil
}

// skipListHeader steps over the line following DefectRecordSpec (normally
// "DefectList") unless that line already holds a data row.
func (r *run) skipListHeader(i int) int {
	if i >= len(r.lines) {
		return i
	}
	line, ok := Tokenize(r.lines[i])
	if !ok {
		return i
	}
	if _, err := parseFloat(line.Keyword); err == nil {
		return i
	}
	return i + 1
}

func endsDefectList(line Line) bool {
	kw := strings.ToLower(line.Keyword)
	if sectionKeywords[kw] {
		return true
	}
	switch kw {
	case kwEndOfFile, kwSampleTestPlan, kwDefectRecordSpec, kwDefectList:
		return true
	}
	_, scalar := scalarFields[kw]
	return scalar
}

func defectFromRow(c columns, row []string) Defect {
	return Defect{
		ID:            c.Int(row, "DEFECTID"),
		XIndex:        c.Int(row, "XINDEX"),
		YIndex:        c.Int(row, "YINDEX"),
		XRel:          c.Float(row, "XREL"),
		YRel:          c.Float(row, "YREL"),
		XSize:         c.Float(row, "XSIZE"),
		YSize:         c.Float(row, "YSIZE"),
		DefectArea:    c.Float(row, "DEFECTAREA"),
		DSize:         c.Float(row, "DSIZE"),
		ClassNumber:   c.Int(row, "CLASSNUMBER"),
		Test:          c.Int(row, "TEST"),
		ClusterNumber: c.Int(row, "CLUSTERNUMBER"),
		RoughBin:      c.Int(row, "ROUGHBINNUMBER"),
		FineBin:       c.Int(row, "FINEBINNUMBER"),
		ReviewSample:  c.Int(row, "REVIEWSAMPLE"),
		ImageCount:    c.Int(row, "IMAGECOUNT"),
		ImageID:       c.Int(row, "IMAGELIST"),
	}
}

// recordSpecColumns drops the leading column count from a DefectRecordSpec
// value list, if present.
func recordSpecColumns(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	if _, err := parseInt(values[0]); err == nil {
		return values[1:]
	}
	return values
}
