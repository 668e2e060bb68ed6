package history

import (
	"fmt"

	"github.com/ahmethakanbesel/yahoojp-history/internal/apperror"
)

// Adjust rescales open, high and low by AdjClose/Close and replaces Close
// with AdjClose, removing split and dividend jumps. The dataset is marked
// adjusted and AdjClose leaves its columns.
//
// With inPlace false ds is left untouched and a copy is returned; otherwise
// ds itself is rewritten and returned. Every record is checked before any is
// changed, so a zero close fails without partial writes.
func Adjust(ds *Dataset, inPlace bool) (*Dataset, error) {
	if ds.Adjusted {
		return nil, apperror.New(apperror.InvalidRecord, "dataset is already adjusted")
	}
	for _, r := range ds.Records {
		if r.Close == 0 {
			return nil, apperror.New(apperror.DivisionByZero,
				fmt.Sprintf("close is zero on %s, adjustment ratio undefined", r.Date.Format(dateFormat)))
		}
	}

	out := ds
	if !inPlace {
		out = ds.Clone()
	}

	for i := range out.Records {
		r := &out.Records[i]
		r.Open = r.Open * r.AdjClose / r.Close
		r.High = r.High * r.AdjClose / r.Close
		r.Low = r.Low * r.AdjClose / r.Close
		r.Close = r.AdjClose
	}
	out.Adjusted = true
	return out, nil
}
