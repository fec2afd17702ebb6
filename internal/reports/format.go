package reports

import (
	"strings"
	"time"
	_ "time/tzdata"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const displayLayout = "2006-01-02 15:04:05"

// Formatter renders amounts and timestamps for people: one currency symbol,
// two decimals and a single display timezone with a literal suffix.
type Formatter struct {
	Symbol   string
	Location *time.Location
	Suffix   string
	printer  *message.Printer
}

func NewFormatter(symbol, timezone, suffix string) Formatter {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		loc = time.FixedZone(suffix, 8*60*60)
	}
	return Formatter{
		Symbol:   symbol,
		Location: loc,
		Suffix:   suffix,
		printer:  message.NewPrinter(language.English),
	}
}

// DefaultFormatter renders pesos in Singapore time.
func DefaultFormatter() Formatter {
	return NewFormatter("₱", "Asia/Singapore", "SGT")
}

// Money formats amount like ₱1,234.56.
func (f Formatter) Money(amount float64) string {
	p := f.printer
	if p == nil {
		p = message.NewPrinter(language.English)
	}
	return f.Symbol + p.Sprintf("%.2f", amount)
}

// Display formats t like "2024-05-01 14:03:00 SGT".
func (f Formatter) Display(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	out := t.In(f.loc()).Format(displayLayout)
	if f.Suffix != "" {
		out += " " + f.Suffix
	}
	return out
}

// ISO formats t as RFC 3339 in the display timezone.
func (f Formatter) ISO(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(f.loc()).Format(time.RFC3339)
}

func (f Formatter) loc() *time.Location {
	if f.Location == nil {
		return time.UTC
	}
	return f.Location
}

var periodLabels = map[string]string{
	"weekly":  "Weekly",
	"monthly": "Monthly",
	"yearly":  "Yearly",
}

// PeriodLabel returns the human label of a reporting period; unknown values
// are capitalised as-is.
func PeriodLabel(period string) string {
	key := strings.ToLower(strings.TrimSpace(period))
	if label, ok := periodLabels[key]; ok {
		return label
	}
	if key == "" {
		return ""
	}
	return strings.ToUpper(key[:1]) + key[1:]
}
