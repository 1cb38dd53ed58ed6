package main

import (
	"fmt"
	"strconv"
	"strings"
)

// parseFrames expands a frame list such as "0-9,12,20-22" into frame
// numbers in the given order, without duplicates. An empty list or "all"
// selects every frame of a clip with count frames.
func parseFrames(list string, count int) ([]int, error) {
	list = strings.TrimSpace(list)
	if list == "" || strings.EqualFold(list, "all") {
		frames := make([]int, count)
		for i := range frames {
			frames[i] = i
		}
		return frames, nil
	}

	seen := make(map[int]bool)
	var frames []int
	add := func(f int) {
		if !seen[f] {
			seen[f] = true
			frames = append(frames, f)
		}
	}

	for part := range strings.SplitSeq(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		lo, hi, isRange := strings.Cut(part, "-")
		first, err := parseFrame(lo)
		if err != nil {
			return nil, err
		}
		if !isRange {
			add(first)
			continue
		}
		last, err := parseFrame(hi)
		if err != nil {
			return nil, err
		}
		if last < first {
			return nil, fmt.Errorf("frame range %q is reversed", part)
		}
		for f := first; f <= last; f++ {
			add(f)
		}
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("frame list %q selects no frames", list)
	}
	return frames, nil
}

func parseFrame(s string) (int, error) {
	f, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || f < 0 {
		return 0, fmt.Errorf("invalid frame number %q", s)
	}
	return f, nil
}
