package history

import (
	"encoding/json"
	"math"
	"time"
)

// Missing marks a numeric field the source left empty.
var Missing = math.NaN()

// IsMissing reports whether v is the Missing marker.
func IsMissing(v float64) bool { return math.IsNaN(v) }

// Record is one trading day in canonical form. Numeric fields may be Missing
// when the normalizer raised a WarnMissing for the row.
type Record struct {
	Date     time.Time
	Open     float64
	High     float64
	Low      float64
	Close    float64
	Volume   float64
	AdjClose float64
}

// Complete reports whether every numeric field is present.
func (r Record) Complete() bool {
	for _, v := range []float64{r.Open, r.High, r.Low, r.Close, r.Volume, r.AdjClose} {
		if IsMissing(v) {
			return false
		}
	}
	return true
}

type recordJSON struct {
	Date     string   `json:"date"`
	Open     *float64 `json:"open"`
	High     *float64 `json:"high"`
	Low      *float64 `json:"low"`
	Close    *float64 `json:"close"`
	Volume   *float64 `json:"volume"`
	AdjClose *float64 `json:"adjClose,omitempty"`
}

// MarshalJSON writes missing values as null. AdjClose is left to Dataset,
// which drops it once adjusted.
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.toJSON(true))
}

func (r Record) toJSON(withAdj bool) recordJSON {
	out := recordJSON{
		Date:   r.Date.Format(dateFormat),
		Open:   nullable(r.Open),
		High:   nullable(r.High),
		Low:    nullable(r.Low),
		Close:  nullable(r.Close),
		Volume: nullable(r.Volume),
	}
	if withAdj {
		out.AdjClose = nullable(r.AdjClose)
	}
	return out
}

func nullable(v float64) *float64 {
	if IsMissing(v) {
		return nil
	}
	return &v
}

// Dataset is a date-ascending sequence of records for one instrument.
type Dataset struct {
	Records  []Record
	Adjusted bool
}

// Clone returns a deep copy.
func (d *Dataset) Clone() *Dataset {
	out := &Dataset{Adjusted: d.Adjusted}
	if d.Records != nil {
		out.Records = make([]Record, len(d.Records))
		copy(out.Records, d.Records)
	}
	return out
}

func (d *Dataset) Len() int { return len(d.Records) }

// Columns lists the canonical column names in output order.
func (d *Dataset) Columns() []string {
	cols := []string{"Date", "Open", "High", "Low", "Close", "Volume"}
	if !d.Adjusted {
		cols = append(cols, "AdjClose")
	}
	return cols
}

func (d Dataset) MarshalJSON() ([]byte, error) {
	recs := make([]recordJSON, len(d.Records))
	for i, r := range d.Records {
		recs[i] = r.toJSON(!d.Adjusted)
	}
	return json.Marshal(struct {
		Adjusted bool         `json:"adjusted"`
		Records  []recordJSON `json:"records"`
	}{d.Adjusted, recs})
}
