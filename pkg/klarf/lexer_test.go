package klarf

import (
	"reflect"
	"strings"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   Line
		wantOK bool
	}{
		{
			name:   "blank",
			input:  "   \t ",
			wantOK: false,
		},
		{
			name:   "keyword only",
			input:  "EndOfFile;",
			want:   Line{Keyword: "EndOfFile"},
			wantOK: true,
		},
		{
			name:   "quoted value",
			input:  `WaferID "W03";`,
			want:   Line{Keyword: "WaferID", Values: []string{"W03"}},
			wantOK: true,
		},
		{
			name:   "quoted value with space still splits",
			input:  `LotID "LOT 42";`,
			want:   Line{Keyword: "LotID", Values: []string{"LOT", "42"}},
			wantOK: true,
		},
		{
			name:   "exponent numbers and padding",
			input:  "  DiePitch   3.963000e+003\t4.123000e+003 ;  ",
			want:   Line{Keyword: "DiePitch", Values: []string{"3.963000e+003", "4.123000e+003"}},
			wantOK: true,
		},
		{
			name:   "data row",
			input:  " 0 1;",
			want:   Line{Keyword: "0", Values: []string{"1"}},
			wantOK: true,
		},
		{
			name:   "terminator stripped from line and remainder",
			input:  "Foo a;;",
			want:   Line{Keyword: "Foo", Values: []string{"a"}},
			wantOK: true,
		},
		{
			name:   "carriage return",
			input:  "Slot 3;\r",
			want:   Line{Keyword: "Slot", Values: []string{"3"}},
			wantOK: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Tokenize(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("Tokenize(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if got.Keyword != tt.want.Keyword {
				t.Errorf("keyword = %q, want %q", got.Keyword, tt.want.Keyword)
			}
			if len(got.Values) != len(tt.want.Values) || (len(got.Values) > 0 && !reflect.DeepEqual(got.Values, tt.want.Values)) {
				t.Errorf("values = %q, want %q", got.Values, tt.want.Values)
			}
		})
	}
}

func TestSplitValuesCoversAnyInput(t *testing.T) {
	inputs := []string{
		`a "b c" d`,
		`"""`,
		`x"y"z`,
		"\tone\t\ttwo  ",
		"é ü 漢字",
		"\x00 bin\x01ary",
		`;; {} ,`,
		`"`,
	}
	for _, in := range inputs {
		want := strings.Fields(strings.ReplaceAll(in, `"`, " "))
		got := splitValues(in)
		if len(want) == 0 && len(got) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("splitValues(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLineIsCaseInsensitive(t *testing.T) {
	line, _ := Tokenize("sampletestplan 4;")
	if !line.Is("SampleTestPlan") {
		t.Errorf("expected %q to match SampleTestPlan", line.Keyword)
	}
	if got := line.Fields(); !reflect.DeepEqual(got, []string{"sampletestplan", "4"}) {
		t.Errorf("Fields() = %q", got)
	}
}

func TestParseNumbers(t *testing.T) {
	if v, err := parseFloat("3.963000e+003"); err != nil || v != 3963 {
		t.Errorf("parseFloat exponent = %v, %v", v, err)
	}
	if _, err := parseFloat("3,5"); err == nil {
		t.Error("parseFloat accepted a comma decimal separator")
	}
	if _, err := parseFloat("NaN"); err == nil {
		t.Error("parseFloat accepted NaN")
	}
	if v, err := parseInt("-12"); err != nil || v != -12 {
		t.Errorf("parseInt = %v, %v", v, err)
	}
	if v, err := parseInt("1.000000e+001"); err != nil || v != 10 {
		t.Errorf("parseInt float notation = %v, %v", v, err)
	}
	if _, err := parseInt("1.5"); err == nil {
		t.Error("parseInt accepted a fraction")
	}
}

func TestColumnsDefaults(t *testing.T) {
	cols := newColumns([]string{"defectid", "XREL", "XINDEX"})
	row := []string{"7", "abc", "3"}

	if got := cols.Int(row, "DEFECTID"); got != 7 {
		t.Errorf("DEFECTID = %d, want 7", got)
	}
	if got := cols.Float(row, "XREL"); got != 0 {
		t.Errorf("unparseable XREL = %v, want 0", got)
	}
	if got := cols.Int(row, "YINDEX"); got != 0 {
		t.Errorf("absent YINDEX = %d, want 0", got)
	}
	if got := cols.Int(row[:1], "XINDEX"); got != 0 {
		t.Errorf("out of range XINDEX = %d, want 0", got)
	}
}
