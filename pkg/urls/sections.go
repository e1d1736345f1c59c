package urls

import (
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strconv"
)

var sectionFile = regexp.MustCompile(`^s(\d+)\.htm$`)

// maxReportedGap bounds how many missing names one gap contributes.
const maxReportedGap = 20

// MissingSections returns the section pages that lie between two consecutive
// discovered sections of the same directory but were never discovered themselves,
// e.g. s001002.htm and s001003.htm between s001001.htm and s001004.htm.
//
// Such sections hold the middle of a speech that started on an earlier page; no
// marker link points at them, so the stitcher never fetches them.
func MissingSections(sections []string) []string {
	var (
		missing []string
		prevDir string
		prevNum = -1
	)

	for _, raw := range sections {
		u, err := url.Parse(raw)
		if err != nil {
			prevNum = -1
			continue
		}

		dir, file := path.Split(u.Path)
		m := sectionFile.FindStringSubmatch(file)
		if m == nil {
			prevNum = -1
			continue
		}
		num, err := strconv.Atoi(m[1])
		if err != nil {
			prevNum = -1
			continue
		}

		if prevNum >= 0 && dir == prevDir && num > prevNum+1 {
			for gap := prevNum + 1; gap < num && gap-prevNum <= maxReportedGap; gap++ {
				name := fmt.Sprintf("s%0*d.htm", len(m[1]), gap)
				missing = append(missing, u.ResolveReference(&url.URL{Path: name}).String())
			}
		}

		prevDir, prevNum = dir, num
	}

	return missing
}
