package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"

	"vinaudit/internal/model"
)

var templateHeaders = []string{
	"Vehicle Asset Name (VRN)",
	"Model Year",
	"Make",
	"Model",
	"VIN",
	"Fuel Type",
	"Notes",
}

// buildVehicleWorkbook 按部署模板格式构造工作簿：前三行为标题，第四行为表头
func buildVehicleWorkbook(t *testing.T, sheets map[string][][]string) *excelize.File {
	t.Helper()

	wb := excelize.NewFile()
	defaultSheet := wb.GetSheetName(wb.GetActiveSheetIndex())

	for name, rows := range sheets {
		if _, err := wb.NewSheet(name); err != nil {
			t.Fatalf("NewSheet %s: %v", name, err)
		}
		title := []interface{}{"Connected Fleet Deployment Template"}
		if err := wb.SetSheetRow(name, "A1", &title); err != nil {
			t.Fatalf("SetSheetRow title: %v", err)
		}
		for i, r := range rows {
			row := make([]interface{}, 0, len(r))
			for _, v := range r {
				row = append(row, v)
			}
			cell, _ := excelize.CoordinatesToCellName(1, i+4)
			if err := wb.SetSheetRow(name, cell, &row); err != nil {
				t.Fatalf("SetSheetRow %s: %v", name, err)
			}
		}
	}

	if _, ok := sheets[defaultSheet]; !ok {
		_ = wb.DeleteSheet(defaultSheet)
	}
	t.Cleanup(func() { _ = wb.Close() })
	return wb
}

func TestParseWorkbook_SingleSheet(t *testing.T) {
	t.Parallel()

	wb := buildVehicleWorkbook(t, map[string][][]string{
		"Fleet": {
			templateHeaders,
			{"TRUCK 01", "2019", "Ford", "F150", "1FTEW1E50KFA00001", "Gasoline", ""},
			{"TRUCK 02", "2020", "Ford", "F150", "", "Gasoline", "vin pending"},
			{},
			{"TRUCK 03", "2018", "Chevrolet", "Silverado", " 1GC 4YVEY0JF100002", "Diesel", ""},
		},
	})

	p := NewVehicleParser(Options{SheetName: "Vehicle & Asset List", HeaderRow: 4})
	table, err := p.ParseWorkbook(wb)
	if err != nil {
		t.Fatalf("ParseWorkbook: %v", err)
	}
	if table.SheetName != "Fleet" {
		t.Fatalf("sheet=%q", table.SheetName)
	}
	if table.DroppedRows != 1 {
		t.Fatalf("dropped=%d, want 1", table.DroppedRows)
	}

	want := []model.InputRecord{
		{RowNo: 5, AssetName: "TRUCK 01", VIN: "1FTEW1E50KFA00001", Year: "2019", Make: "Ford", Model: "F150", Fuel: "Gasoline"},
		{RowNo: 8, AssetName: "TRUCK 03", VIN: " 1GC 4YVEY0JF100002", Year: "2018", Make: "Chevrolet", Model: "Silverado", Fuel: "Diesel"},
	}
	if diff := cmp.Diff(want, table.Records); diff != "" {
		t.Fatalf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestParseWorkbook_PrefersNamedSheet(t *testing.T) {
	t.Parallel()

	wb := buildVehicleWorkbook(t, map[string][][]string{
		"Instructions": {
			templateHeaders,
			{"IGNORED", "2019", "Ford", "F150", "IGNOREDVIN", "Gasoline"},
		},
		"Vehicle & Asset List": {
			templateHeaders,
			{"VAN 1", "2021", "RAM", "ProMaster", "3C6TRVDG5ME500001", "Gasoline"},
		},
	})

	table, err := NewVehicleParser(Options{SheetName: "Vehicle & Asset List"}).ParseWorkbook(wb)
	if err != nil {
		t.Fatalf("ParseWorkbook: %v", err)
	}
	if table.SheetName != "Vehicle & Asset List" || len(table.Records) != 1 || table.Records[0].AssetName != "VAN 1" {
		t.Fatalf("unexpected table: %+v", table)
	}
}

func TestParseWorkbook_FallsBackToRecognizedSheet(t *testing.T) {
	t.Parallel()

	wb := buildVehicleWorkbook(t, map[string][][]string{
		"Readme": {{"how to use"}},
		"Assets": {
			templateHeaders,
			{"VAN 1", "2021", "RAM", "ProMaster", "3C6TRVDG5ME500001", "Gasoline"},
		},
	})

	table, err := NewVehicleParser(Options{SheetName: "Vehicle & Asset List"}).ParseWorkbook(wb)
	if err != nil {
		t.Fatalf("ParseWorkbook: %v", err)
	}
	if table.SheetName != "Assets" {
		t.Fatalf("sheet=%q, want Assets", table.SheetName)
	}
}

func TestParseWorkbook_NoUsableSheet(t *testing.T) {
	t.Parallel()

	wb := buildVehicleWorkbook(t, map[string][][]string{
		"A": {{"x"}},
		"B": {{"y"}},
	})
	_, err := NewVehicleParser(Options{SheetName: "Vehicle & Asset List"}).ParseWorkbook(wb)
	if !errors.Is(err, ErrSheetNotFound) {
		t.Fatalf("expected ErrSheetNotFound, got %v", err)
	}
}

func TestParseRows_MissingRequiredColumn(t *testing.T) {
	t.Parallel()

	rows := [][]string{
		{"title"}, {}, {},
		{"Vehicle Asset Name", "Model Year", "Make", "Model", "VIN"},
		{"A", "2019", "Ford", "F150", "1FT"},
	}
	_, err := NewVehicleParser(Options{}).ParseRows("Fleet", rows)
	if !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("expected ErrMissingColumn, got %v", err)
	}
	var mce *MissingColumnError
	if !errors.As(err, &mce) {
		t.Fatalf("expected *MissingColumnError, got %T", err)
	}
	if diff := cmp.Diff([]Column{ColumnFuelType}, mce.Columns); diff != "" {
		t.Fatalf("missing columns (-want +got):\n%s", diff)
	}
	if !strings.Contains(err.Error(), "fuel type") {
		t.Fatalf("error should name the column: %v", err)
	}
}

func TestParseRows_TooShortForHeader(t *testing.T) {
	t.Parallel()

	_, err := NewVehicleParser(Options{HeaderRow: 4}).ParseRows("", [][]string{{"only title"}})
	var mce *MissingColumnError
	if !errors.As(err, &mce) || len(mce.Columns) != len(RequiredColumns()) {
		t.Fatalf("expected all columns missing, got %v", err)
	}
}

func TestMapColumns_ModelYearBeforeModel(t *testing.T) {
	t.Parallel()

	bound, missing := MapColumns([]string{"MODEL", "VIN #", "Model Year", "Asset  Name", "Make", "Primary Fuel Type", "Model (alt)"})
	if len(missing) != 0 {
		t.Fatalf("unexpected missing: %v", missing)
	}
	if bound[ColumnModel].Index != 0 {
		t.Fatalf("model bound to %d, want first matching header", bound[ColumnModel].Index)
	}
	if bound[ColumnModelYear].Index != 2 {
		t.Fatalf("model year bound to %d", bound[ColumnModelYear].Index)
	}
	if bound[ColumnAssetName].Index != 3 {
		t.Fatalf("asset name bound to %d", bound[ColumnAssetName].Index)
	}
	if bound[ColumnFuelType].Index != 5 {
		t.Fatalf("fuel type bound to %d", bound[ColumnFuelType].Index)
	}
}

func TestParse_CSVWithBOM(t *testing.T) {
	t.Parallel()

	// encoding/csv 会跳过空行，标题区使用非空行
	body := "\xef\xbb\xbfFleet export\nCustomer: ACME\nGenerated 2024-05-01\n" +
		"Vehicle Asset Name,Model Year,Make,Model,VIN,Fuel Type\n" +
		"Unit 7,2017,Isuzu,NPR,JALC4W161H7000001,Diesel\n" +
		"Unit 8,2017,Isuzu,NPR,,Diesel\n"

	table, err := NewVehicleParser(Options{HeaderRow: 4}).Parse("fleet.CSV", strings.NewReader(body))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(table.Records) != 1 || table.DroppedRows != 1 {
		t.Fatalf("unexpected table: %+v", table)
	}
	if table.Records[0].VIN != "JALC4W161H7000001" || table.Records[0].RowNo != 5 {
		t.Fatalf("unexpected record: %+v", table.Records[0])
	}
}

func TestParse_XLSXReader(t *testing.T) {
	t.Parallel()

	wb := buildVehicleWorkbook(t, map[string][][]string{
		"Vehicle & Asset List": {
			templateHeaders,
			{"VAN 1", "2021", "RAM", "ProMaster", "3C6TRVDG5ME500001", "Gasoline"},
		},
	})
	buf, err := wb.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}

	table, err := NewVehicleParser(Options{}).Parse("upload.xlsx", buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(table.Records) != 1 {
		t.Fatalf("records=%d", len(table.Records))
	}
}

func TestParse_UnsupportedFormat(t *testing.T) {
	t.Parallel()

	_, err := NewVehicleParser(Options{}).Parse("fleet.xls", strings.NewReader(""))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}
