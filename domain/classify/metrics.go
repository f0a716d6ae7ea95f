package classify

import "math"

// Confusion is the binary confusion matrix [[TN, FP], [FN, TP]] with class 1
// meaning drifted.
type Confusion struct {
	TN int
	FP int
	FN int
	TP int
}

// Matrix renders the confusion counts as [[TN, FP], [FN, TP]].
func (c Confusion) Matrix() [2][2]int {
	return [2][2]int{{c.TN, c.FP}, {c.FN, c.TP}}
}

// Metrics bundles the classification quality figures reported per dataset.
// Any per-class figure whose denominator is empty (the dataset lacks that
// class, or nothing was predicted into it) is NaN, by contract: an undefined
// value in the output record rather than a crash or a silent zero.
type Metrics struct {
	Accuracy             float64
	Precision0           float64
	Recall1              float64
	InverseWeightedFBeta float64
	Confusion            Confusion
}

// ratio returns num/den, or NaN for an empty denominator.
func ratio(num, den float64) float64 {
	if den == 0 {
		return math.NaN()
	}
	return num / den
}

// fbeta combines precision and recall with recall weighted beta times as
// much as precision.
func fbeta(precision, recall, beta float64) float64 {
	b2 := beta * beta
	return ratio((1+b2)*precision*recall, b2*precision+recall)
}

// Score compares predicted against actual transition labels and computes
// accuracy, per-class precision/recall, and the inverse-weighted F-beta:
// each class's F-beta weighted by the opposite class's support fraction, so
// minority-class performance dominates the score.
func Score(predicted, actual []int, beta float64) Metrics {
	var c Confusion
	for t := range actual {
		switch {
		case actual[t] == 0 && predicted[t] == 0:
			c.TN++
		case actual[t] == 0 && predicted[t] == 1:
			c.FP++
		case actual[t] == 1 && predicted[t] == 0:
			c.FN++
		default:
			c.TP++
		}
	}
	n := float64(len(actual))

	precision0 := ratio(float64(c.TN), float64(c.TN+c.FN))
	recall0 := ratio(float64(c.TN), float64(c.TN+c.FP))
	precision1 := ratio(float64(c.TP), float64(c.TP+c.FP))
	recall1 := ratio(float64(c.TP), float64(c.TP+c.FN))

	support0 := ratio(float64(c.TN+c.FP), n)
	support1 := ratio(float64(c.FN+c.TP), n)

	f0 := fbeta(precision0, recall0, beta)
	f1 := fbeta(precision1, recall1, beta)

	return Metrics{
		Accuracy:             ratio(float64(c.TN+c.TP), n),
		Precision0:           precision0,
		Recall1:              recall1,
		InverseWeightedFBeta: f0*support1 + f1*support0,
		Confusion:            c,
	}
}
