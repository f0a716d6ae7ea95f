package histogram

// CumulativeCache holds, per day, the upper-triangular matrix of interval
// sums Percent[day][i][j] = sum of that day's densities over positions
// [i, j), defined for 0 <= i < j < B. Built once per solve and read-only
// afterwards.
type CumulativeCache struct {
	Percent [][][]float64
	B       int
}

// BuildCumulative computes interval sums for every day via per-day prefix
// sums, so construction is O(days*B) with O(days*B^2) materialized lookups.
func BuildCumulative(d *Dataset) *CumulativeCache {
	b := d.Positions()
	cache := &CumulativeCache{
		Percent: make([][][]float64, d.Days()),
		B:       b,
	}
	for day, row := range d.Densities {
		// prefix[p] = sum of densities over positions [0, p)
		prefix := make([]float64, b)
		for p := 1; p < b; p++ {
			prefix[p] = prefix[p-1] + row[p-1]
		}
		tri := make([][]float64, b)
		for i := 0; i < b; i++ {
			tri[i] = make([]float64, b)
			for j := i + 1; j < b; j++ {
				tri[i][j] = prefix[j] - prefix[i]
			}
		}
		cache.Percent[day] = tri
	}
	return cache
}

// Interval returns the density mass of day over positions [i, j).
func (c *CumulativeCache) Interval(day, i, j int) float64 {
	return c.Percent[day][i][j]
}

// Days returns the number of cached days.
func (c *CumulativeCache) Days() int {
	return len(c.Percent)
}
