package reconcile

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidDecision is returned when user input cannot be parsed
var ErrInvalidDecision = errors.New("invalid input")

// DecisionKind identifies what the user asked for
type DecisionKind int

const (
	// DecisionSkip is an empty answer
	DecisionSkip DecisionKind = iota
	// DecisionIndices is one number or a comma separated list of numbers
	DecisionIndices
	// DecisionDeleteSource is "d": delete the source record under review
	DecisionDeleteSource
	// DecisionDeleteCandidate is "dN": delete candidate N and its ledger entry
	DecisionDeleteCandidate
	DecisionGoAgain
	DecisionFinish
	DecisionQuit
)

// Decision is a parsed user answer
type Decision struct {
	Kind    DecisionKind
	Index   int   // candidate number for DecisionDeleteCandidate
	Indices []int // for DecisionIndices
}

// ParseDecision translates a raw answer into a Decision.
// Input is case-insensitive and surrounding whitespace is ignored.
func ParseDecision(input string) (Decision, error) {
	s := strings.ToLower(strings.TrimSpace(input))

	switch s {
	case "":
		return Decision{Kind: DecisionSkip}, nil
	case "d":
		return Decision{Kind: DecisionDeleteSource}, nil
	case "g":
		return Decision{Kind: DecisionGoAgain}, nil
	case "f":
		return Decision{Kind: DecisionFinish}, nil
	case "q":
		return Decision{Kind: DecisionQuit}, nil
	}

	if rest, ok := strings.CutPrefix(s, "d"); ok {
		n, err := parseIndex(rest)
		if err != nil {
			return Decision{}, err
		}
		return Decision{Kind: DecisionDeleteCandidate, Index: n}, nil
	}

	indices, err := ParseIndexList(s)
	if err != nil {
		return Decision{}, err
	}
	return Decision{Kind: DecisionIndices, Indices: indices}, nil
}

// ParseIndexList parses a comma separated list of non-negative integers.
// An empty string yields an empty list. Duplicates are dropped.
func ParseIndexList(input string) ([]int, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return nil, nil
	}

	var indices []int
	seen := make(map[int]bool)
	for _, part := range strings.Split(s, ",") {
		n, err := parseIndex(part)
		if err != nil {
			return nil, err
		}
		if seen[n] {
			continue
		}
		seen[n] = true
		indices = append(indices, n)
	}
	return indices, nil
}

func parseIndex(s string) (int, error) {
	s = strings.TrimSpace(s)
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %q is not a match number", ErrInvalidDecision, s)
	}
	return n, nil
}
