package klarf

import "strings"

// fieldFunc stores a statement's values into one WaferInfo field. On error
// the field is left untouched.
type fieldFunc func(w *WaferInfo, values []string) error

// scalarFields maps lower-cased single-line keywords to their setters.
var scalarFields = map[string]fieldFunc{
	"waferid":                 word(func(w *WaferInfo) *string { return &w.WaferID }),
	"deviceid":                word(func(w *WaferInfo) *string { return &w.DeviceID }),
	"lotid":                   word(func(w *WaferInfo) *string { return &w.LotID }),
	"stepid":                  word(func(w *WaferInfo) *string { return &w.StepID }),
	"sampletype":              word(func(w *WaferInfo) *string { return &w.SampleType }),
	"tifffilename":            word(func(w *WaferInfo) *string { return &w.TiffFilename }),
	"orientationmarklocation": word(func(w *WaferInfo) *string { return &w.OrientationMarkLocation }),
	"inspectionstationid":     setInspectionStation,
	"slot":                    setSlot,
	"diepitch":                setDiePitch,
	"dieorigin":               setDieOrigin,
	"samplecenterlocation":    setSampleCenter,
	"filetimestamp":           setFileTimestamp,
	"resulttimestamp":         setResultTimestamp,
	"setupid":                 setSetupID,
	"fileversion":             setFileVersion,
	"samplesize":              setSampleSize,
}

// word takes the first value token.
func word(field func(*WaferInfo) *string) fieldFunc {
	return func(w *WaferInfo, values []string) error {
		if err := need(values, 1); err != nil {
			return err
		}
		*field(w) = values[0]
		return nil
	}
}

// The station is identified by vendor, model and unit; keep all of them.
func setInspectionStation(w *WaferInfo, values []string) error {
	if err := need(values, 1); err != nil {
		return err
	}
	w.InspectionStation = strings.Join(values, " ")
	return nil
}

func setSlot(w *WaferInfo, values []string) error {
	if err := need(values, 1); err != nil {
		return err
	}
	v, err := parseInt(values[0])
	if err != nil {
		return err
	}
	w.Slot = v
	return nil
}

func setDiePitch(w *WaferInfo, values []string) error {
	x, y, err := floatPair(values)
	if err != nil {
		return err
	}
	w.DiePitch = Size{Width: x, Height: y}
	return nil
}

func setDieOrigin(w *WaferInfo, values []string) error {
	x, y, err := floatPair(values)
	if err != nil {
		return err
	}
	w.DieOrigin = Point{X: x, Y: y}
	return nil
}

func setSampleCenter(w *WaferInfo, values []string) error {
	x, y, err := floatPair(values)
	if err != nil {
		return err
	}
	w.SampleCenter = Point{X: x, Y: y}
	return nil
}

func setFileTimestamp(w *WaferInfo, values []string) error {
	if err := need(values, 2); err != nil {
		return err
	}
	t, err := parseTimestamp(values[0], values[1])
	if err != nil {
		return err
	}
	w.FileTimestamp = t
	return nil
}

func setResultTimestamp(w *WaferInfo, values []string) error {
	if err := need(values, 2); err != nil {
		return err
	}
	t, err := parseTimestamp(values[0], values[1])
	if err != nil {
		return err
	}
	w.ResultTimestamp = t
	return nil
}

// SetupID "name" MM-DD-YYYY HH:MM:SS
func setSetupID(w *WaferInfo, values []string) error {
	if err := need(values, 3); err != nil {
		return err
	}
	n := len(values)
	t, err := parseTimestamp(values[n-2], values[n-1])
	if err != nil {
		return err
	}
	w.SetupID = strings.Join(values[:n-2], " ")
	w.SetupTimestamp = t
	return nil
}

func setFileVersion(w *WaferInfo, values []string) error {
	v, err := intPair(values)
	if err != nil {
		return err
	}
	w.FileVersion = v
	return nil
}

func setSampleSize(w *WaferInfo, values []string) error {
	v, err := intPair(values)
	if err != nil {
		return err
	}
	w.SampleSize = v
	return nil
}
