package gamedomain

import "strconv"

var cardLabels = map[int]string{
	1:  "3",
	2:  "4",
	3:  "5",
	4:  "6",
	5:  "7",
	6:  "8",
	7:  "9",
	8:  "10",
	9:  "J",
	10: "Q",
	11: "K",
}

// CardLabel returns the wild card for a round. Rounds outside the standard
// eleven fall back to the round number itself.
func CardLabel(roundNumber int) string {
	if label, ok := cardLabels[roundNumber]; ok {
		return label
	}
	return strconv.Itoa(roundNumber)
}
