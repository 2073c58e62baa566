package klarf

// Warning names returned by Validate.
const (
	WarnWaferID       = "WaferID"
	WarnLotID         = "LotID"
	WarnTiffFilename  = "TiffFilename"
	WarnFileTimestamp = "FileTimestamp"
	WarnDieList       = "die list"
	WarnDefectList    = "defect list"
)

// Validate lists the mandatory parts missing from m. An empty result means
// the model is complete enough to use. Validate never modifies m.
func Validate(m *Model) []string {
	var missing []string
	if m.Wafer.WaferID == "" {
		missing = append(missing, WarnWaferID)
	}
	if m.Wafer.LotID == "" {
		missing = append(missing, WarnLotID)
	}
	if m.Wafer.TiffFilename == "" {
		missing = append(missing, WarnTiffFilename)
	}
	if m.Wafer.FileTimestamp.IsZero() {
		missing = append(missing, WarnFileTimestamp)
	}
	if len(m.Dies) == 0 {
		missing = append(missing, WarnDieList)
	}
	if len(m.Defects) == 0 {
		missing = append(missing, WarnDefectList)
	}
	return missing
}
