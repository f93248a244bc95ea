package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"cryptodash/internal/types"
)

// Filename is the download name of the exported view.
const Filename = "crypto_data.csv"

var header = []string{"Rank", "Name", "Symbol", "Price", "24h %", "7d %", "Market Cap", "Volume"}

// WriteCSV serializes the filtered view in its displayed order. Numeric
// fields are written as raw numbers, not display-formatted strings.
func WriteCSV(w io.Writer, assets []types.Asset) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(header); err != nil {
		return errors.Wrap(err, "failed to write csv header")
	}

	for i, a := range assets {
		row := []string{
			strconv.Itoa(i + 1),
			a.Name,
			strings.ToUpper(a.Symbol),
			formatFloat(a.Price),
			formatFloat(a.Change24h),
			formatFloat(a.Change7dOrZero()),
			formatFloat(a.MarketCap),
			formatFloat(a.Volume),
		}
		if err := cw.Write(row); err != nil {
			return errors.Wrap(err, "failed to write csv row")
		}
	}

	cw.Flush()
	return errors.Wrap(cw.Error(), "failed to flush csv")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
