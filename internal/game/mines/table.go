package mines

// multiplierTable holds the fixed payout curve for each tabulated mine count,
// indexed by reveals-1.
var multiplierTable = map[int][]float64{
	1:  {1.03, 1.08, 1.12, 1.18, 1.24, 1.30, 1.37, 1.46, 1.55, 1.65, 1.77, 1.90, 2.06, 2.25, 2.47, 2.75, 3.09, 3.54, 4.12, 4.95, 6.19, 8.25, 12.37, 24.75},
	3:  {1.09, 1.20, 1.32, 1.46, 1.63, 1.83, 2.07, 2.36, 2.73, 3.20, 3.80, 4.60, 5.69, 7.22, 9.44, 12.82, 18.21, 27.59, 45.99, 87.78, 201.12, 659.06, 4634.34},
	5:  {1.18, 1.41, 1.71, 2.09, 2.58, 3.26, 4.18, 5.49, 7.42, 10.35, 15.04, 22.91, 37.08, 64.54, 122.83, 263.21, 657.78, 2017.27, 8441.45, 75973.05},
	10: {1.57, 2.35, 3.60, 5.68, 9.30, 15.89, 28.61, 54.85, 113.85, 260.53, 677.37, 2113.29, 8453.16, 59172.15},
	15: {2.36, 4.95, 10.89, 25.30, 63.25, 174.04, 540.35, 1982.95, 9176.40, 64235.20},
	20: {4.95, 19.80, 89.10, 475.20, 3326.40, 33264.00},
	24: {24.75, 618.75, 24750.00},
}

// tableKeys is the ascending list of tabulated mine counts.
var tableKeys = []int{1, 3, 5, 10, 15, 20, 24}

// closestBucket returns the tabulated mine count nearest to numMines.
// Ties resolve to the smaller bucket.
func closestBucket(numMines int) int {
	best := tableKeys[0]
	bestDiff := abs(numMines - best)
	for _, k := range tableKeys[1:] {
		if d := abs(numMines - k); d < bestDiff {
			best, bestDiff = k, d
		}
	}
	return best
}

// Multiplier returns the cash-out multiplier after the given number of safe
// reveals. Zero reveals is 1.0; reveal counts past the curve clamp to its end.
func Multiplier(numMines, reveals int) float64 {
	if reveals <= 0 {
		return 1.0
	}
	curve := multiplierTable[closestBucket(numMines)]
	idx := reveals - 1
	if idx > len(curve)-1 {
		idx = len(curve) - 1
	}
	return curve[idx]
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
