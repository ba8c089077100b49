package importer

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/estatepulse/crm-cli/internal/tabular"
)

// ReadXLSX reads the first sheet of a workbook into a header row and
// data rows, trimming cells the same way the CSV scanner does. Agencies
// hand us whatever their MLS exported; half the time that is an xlsx.
func ReadXLSX(path string) (header []string, data [][]string, err error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "importer: open xlsx %s", path)
	}
	if len(f.Sheets) == 0 {
		return nil, nil, tabular.ErrNoData
	}

	var rows [][]string
	for _, row := range f.Sheets[0].Rows {
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = strings.TrimSpace(cell.String())
		}
		rows = append(rows, cells)
	}

	if len(rows) < 2 {
		return nil, nil, tabular.ErrNoData
	}
	return rows[0], rows[1:], nil
}
