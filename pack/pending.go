package pack

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/tie/internal/robustio"

	"github.com/tie/mrpacker"
)

// PendingName is the pending-addition list file name.
const PendingName = "new.txt"

// Pending is a mod awaiting first resolution: a version ID plus the
// side requirements it will be recorded with.
type Pending struct {
	VersionID string
	ServerEnv string
	ClientEnv string
}

// LoadPending parses the pending-addition list. Each line has the
// form "VersionID ServerEnv ClientEnv". Malformed lines are skipped
// and reported as warnings; a missing file yields an empty list.
func LoadPending(path string) ([]Pending, []string, error) {
	src, err := robustio.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	var pending []Pending
	var warnings []string
	s := bufio.NewScanner(bytes.NewReader(src))
	for lineno := 1; s.Scan(); lineno++ {
		line := strings.TrimSpace(s.Text())
		if line == "" {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) < 3 {
			warnings = append(warnings, fmt.Sprintf("%s:%d: skipping invalid line %q", path, lineno, line))
			continue
		}
		p := Pending{
			VersionID: parts[0],
			ServerEnv: parts[1],
			ClientEnv: parts[2],
		}
		if !mrpacker.ValidEnv(p.ServerEnv) || !mrpacker.ValidEnv(p.ClientEnv) {
			warnings = append(warnings, fmt.Sprintf("%s:%d: invalid env in %q", path, lineno, line))
			continue
		}
		pending = append(pending, p)
	}
	if err := s.Err(); err != nil {
		return nil, warnings, err
	}
	return pending, warnings, nil
}
