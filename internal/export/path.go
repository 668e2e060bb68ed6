package export

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/ahmethakanbesel/yahoojp-history/internal/history"
)

// dailyIntervalSeconds is the bar length encoded in file names.
const dailyIntervalSeconds = 60 * 60 * 24

// LocalPath returns the conventional file path for q under dir, stamped with
// the creation date and hour taken from now, e.g.
// code_7203_i_86400_p_30d_2017-04-23_2.csv.
func LocalPath(dir string, q history.Query, now time.Time) string {
	name := fmt.Sprintf("code_%s_i_%d_p_%dd_%s_%d.csv",
		q.Code, dailyIntervalSeconds, q.Days(), now.Format(dateFormat), now.Hour())
	return filepath.Join(dir, name)
}
