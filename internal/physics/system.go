package physics

// TotalMomentum sums m·v over bodies.
func TotalMomentum(bodies []*Body) Vector2 {
	var p Vector2
	for _, b := range bodies {
		p = p.Add(b.Momentum())
	}
	return p
}

// TotalEnergy sums kinetic and potential energy over bodies.
func TotalEnergy(bodies []*Body) float64 {
	e := 0.0
	for _, b := range bodies {
		e += b.KineticEnergy() + b.PotentialEnergy()
	}
	return e
}
