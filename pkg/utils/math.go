package utils

// RunningMean folds x into a mean that previously covered n-1 values, where n is the
// count including x. For n <= 1 the result is x.
func RunningMean(prev float64, n int, x float64) float64 {
	if n <= 1 {
		return x
	}
	return (prev*float64(n-1) + x) / float64(n)
}
