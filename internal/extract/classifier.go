package extract

import (
	"regexp"
	"strings"
)

type lineClass int

const (
	classNoise lineClass = iota
	classHeader
	classDiscount
	classItemStart
	classContinuation
)

// percentRe matches a percentage token such as "12,5%" or "10 %".
var percentRe = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*%`)

// classifier is the per-document read state: nothing before the column
// header line is data, and header detection is first-occurrence-wins with no
// way back.
type classifier struct {
	layout     Layout
	headerSeen bool
}

// classify determines the structural shape of one trimmed non-empty line.
// itemInProgress tells it whether an unmatched line can still belong to the
// current item as a continuation.
func (c *classifier) classify(line string, itemInProgress bool) lineClass {
	if !c.headerSeen {
		if c.layout.IsHeader(line) {
			c.headerSeen = true
			return classHeader
		}
		return classNoise
	}
	if percentRe.MatchString(line) {
		return classDiscount
	}
	fields := strings.Fields(line)
	if len(fields) > 0 && c.layout.MatchItemNumber(fields[0]) {
		return classItemStart
	}
	if itemInProgress {
		return classContinuation
	}
	return classNoise
}

// discountValue extracts the percentage from a discount-marker line.
func discountValue(line string) (string, bool) {
	m := percentRe.FindStringSubmatch(line)
	if len(m) < 2 {
		return "", false
	}
	return m[1], true
}
