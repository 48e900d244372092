package rating

// Regress pulls an end-of-period rating toward InitialRating.
// InitialRating is a fixed point.
func (p Params) Regress(r float64) float64 {
	return p.RegressionWeight*r + (1-p.RegressionWeight)*p.InitialRating
}
