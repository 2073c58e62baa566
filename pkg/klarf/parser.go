package klarf

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Block and control keywords, lower-cased for case-insensitive lookup.
const (
	kwSampleTestPlan   = "sampletestplan"
	kwDefectRecordSpec = "defectrecordspec"
	kwDefectList       = "defectlist"
	kwEndOfFile        = "endoffile"
)

type parseState int

const (
	stateScanning parseState = iota
	stateDieBlock
	stateDefectBlock
	stateDone
)

func (s parseState) String() string {
	switch s {
	case stateScanning:
		return "scanning"
	case stateDieBlock:
		return "die-block"
	case stateDefectBlock:
		return "defect-block"
	case stateDone:
		return "done"
	default:
		return fmt.Sprintf("parseState(%d)", int(s))
	}
}

// Parser turns inspection report text into a linked Model. A Parser holds
// no per-file state and may be reused, including from several goroutines.
type Parser struct {
	logger   *slog.Logger
	progress chan<- float64
}

// Option configures a Parser.
type Option func(*Parser)

// WithLogger sets the logger used for per-line diagnostics and the parse
// summary. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Parser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithProgress reports the fraction of lines consumed on ch. Sends never
// block; a slow reader simply misses intermediate values. The final value
// of a successful parse is 1.
func WithProgress(ch chan<- float64) Option {
	return func(p *Parser) {
		p.progress = ch
	}
}

// NewParser creates a parser.
func NewParser(opts ...Option) *Parser {
	p := &Parser{logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseFile reads and parses the file at path. The only fatal error is a
// file that cannot be read; it wraps the os error, so
// errors.Is(err, fs.ErrNotExist) reports a missing file.
func (p *Parser) ParseFile(ctx context.Context, path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("klarf: read %s: %w", path, err)
	}
	res, err := p.ParseLines(ctx, splitLines(string(data)))
	if err != nil {
		return nil, fmt.Errorf("klarf: parse %s: %w", path, err)
	}
	res.Model.Path = path
	return res, nil
}

// ParseString parses an in-memory report.
func (p *Parser) ParseString(ctx context.Context, src string) (*Result, error) {
	return p.ParseLines(ctx, splitLines(src))
}

// ParseLines parses a report already split into lines, links defects to
// dies and validates the result. It only fails when ctx is cancelled.
func (p *Parser) ParseLines(ctx context.Context, lines []string) (*Result, error) {
	r := &run{
		ctx:    ctx,
		parser: p,
		lines:  lines,
		model:  &Model{},
		seen:   make(map[Coord]struct{}),
		logger: p.logger,
		shown:  -1,
	}

	var (
		state    = stateScanning
		i        int
		dieCount int
		header   []string
		err      error
	)
	for state != stateDone && i < len(lines) {
		switch state {
		case stateDieBlock:
			i, err = r.parseDieBlock(i, dieCount)
			state = stateScanning

		case stateDefectBlock:
			i, err = r.parseDefectBlock(r.skipListHeader(i), header)
			state = stateScanning

		case stateScanning:
			if err = r.step(i); err != nil {
				break
			}
			line, ok := Tokenize(lines[i])
			i++
			if !ok {
				continue
			}
			switch kw := strings.ToLower(line.Keyword); kw {
			case kwEndOfFile:
				state = stateDone

			case kwSampleTestPlan:
				n, err := countValue(line.Values)
				if err != nil {
					r.issue(i-1, line.Keyword, err)
					continue
				}
				r.model.Wafer.TotalDies = n
				dieCount = n
				state = stateDieBlock

			case kwDefectRecordSpec:
				header = recordSpecColumns(line.Values)
				state = stateDefectBlock

			default:
				set, known := scalarFields[kw]
				if !known {
					continue
				}
				if err := set(&r.model.Wafer, line.Values); err != nil {
					r.issue(i-1, line.Keyword, err)
				}
			}
		}
		if err != nil {
			return nil, err
		}
	}

	Link(r.model)
	warnings := Validate(r.model)

	p.logger.Info("klarf parsed",
		"lines", len(lines),
		"dies", len(r.model.Dies),
		"defects", len(r.model.Defects),
		"issues", len(r.issues),
		"warnings", len(warnings))
	p.send(1)

	return &Result{
		Model:    r.model,
		Warnings: warnings,
		Issues:   r.issues,
	}, nil
}

func countValue(values []string) (int, error) {
	if err := need(values, 1); err != nil {
		return 0, err
	}
	n, err := parseInt(values[0])
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: negative count %d", ErrBadNumber, n)
	}
	return n, nil
}

// report emits progress roughly every percent of input.
func (p *Parser) report(i, total, last int) int {
	if p.progress == nil || total == 0 {
		return last
	}
	pct := i * 100 / total
	if pct == last {
		return last
	}
	p.send(float64(i) / float64(total))
	return pct
}

func (p *Parser) send(v float64) {
	if p.progress == nil {
		return
	}
	select {
	case p.progress <- v:
	default:
	}
}

func splitLines(src string) []string {
	lines := strings.Split(src, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}

// run is the mutable state of a single parse.
type run struct {
	ctx    context.Context
	parser *Parser
	lines  []string
	model  *Model
	seen   map[Coord]struct{}
	issues []Issue
	logger *slog.Logger
	shown  int // last progress percentage sent
}

// step runs before line idx is consumed: it stops the parse once the
// context is done and reports progress.
func (r *run) step(idx int) error {
	if err := r.ctx.Err(); err != nil {
		return fmt.Errorf("cancelled at line %d: %w", idx+1, err)
	}
	r.shown = r.parser.report(idx, len(r.lines), r.shown)
	return nil
}

func (r *run) issue(idx int, keyword string, err error) {
	r.issues = append(r.issues, Issue{Line: idx + 1, Keyword: keyword, Err: err})
	r.logger.Debug("klarf field skipped", "line", idx+1, "keyword", keyword, "err", err)
}

func (r *run) skipRow(idx, got, want int) {
	err := fmt.Errorf("%w: %d < %d", errShortRow, got, want)
	r.issues = append(r.issues, Issue{Line: idx + 1, Keyword: "DefectList", Err: err})
	r.logger.Debug("klarf defect row skipped", "line", idx+1, "values", got, "columns", want)
}
