package server

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/zucenko/pitch/model"
)

// LoadLineup reads a roster file, one player per line:
//
//	TEAM SPEED DRIBBLING KICK [X Y]
//
// TEAM is A or B. Blank lines and lines starting with # are skipped.
func LoadLineup(path string) (model.Lineup, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	lineup, err := readLineup(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	log.Infof("LoadLineup %d players from %s", len(lineup), path)
	return lineup, nil
}

func readLineup(reader io.Reader) (model.Lineup, error) {
	scanner := bufio.NewScanner(reader)
	scanner.Split(bufio.ScanLines)
	lineup := make(model.Lineup, 0)
	row := 0

	for scanner.Scan() {
		row++
		s := strings.TrimSpace(scanner.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		fields := strings.Fields(s)
		if len(fields) != 4 && len(fields) != 6 {
			return nil, fmt.Errorf("line %d: want 4 or 6 fields, got %d", row, len(fields))
		}

		var e model.Entry
		switch fields[0] {
		case "A", "a":
			e.Team = model.TEAM_A
		case "B", "b":
			e.Team = model.TEAM_B
		default:
			return nil, fmt.Errorf("line %d: unknown team %q", row, fields[0])
		}

		nums := make([]int, 0, len(fields)-1)
		for _, f := range fields[1:] {
			n, err := strconv.Atoi(f)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", row, err)
			}
			nums = append(nums, n)
		}
		e.Speed, e.Dribbling, e.Kick = nums[0], nums[1], nums[2]
		if len(nums) == 5 {
			e.Start = &model.Position{X: nums[3], Y: nums[4]}
		}
		lineup = append(lineup, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lineup, nil
}
