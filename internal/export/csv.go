package export

import (
	"encoding/csv"
	"io"

	"github.com/julianstephens/jadwal/internal/models"
)

// CSV writes one row per timetable entry under Header.
func CSV(w io.Writer, entries []models.TimetableEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, e := range entries {
		if err := cw.Write(record(e)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
