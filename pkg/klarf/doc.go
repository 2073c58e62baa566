// Package klarf parses wafer inspection reports in the KLARF text format
// into a linked, queryable model.
//
// A report is a sequence of semicolon-terminated statements. Most are single
// line header fields (WaferID, DiePitch, FileTimestamp, ...). Two are blocks:
// SampleTestPlan declares a die count followed by that many "X Y" lines, and
// DefectRecordSpec declares the defect columns followed by a DefectList whose
// rows run until "};" or the next section keyword.
//
// Parsing is best effort. A malformed header field or defect row is recorded
// as an Issue and skipped; only an unreadable file is an error. After the
// scan, Link cross-references defects with dies and Validate reports missing
// mandatory parts.
//
// Example:
//
//	p := klarf.NewParser(klarf.WithLogger(logger))
//	res, err := p.ParseFile(ctx, "lot42.klarf")
//	if err != nil {
//		return err
//	}
//	for _, w := range res.Warnings {
//		fmt.Println("missing:", w)
//	}
package klarf
