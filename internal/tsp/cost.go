package tsp

// TourCost returns the cost of visiting tour in order and returning to its
// first node: the sum of consecutive edges plus the closing edge. An empty
// tour costs 0, and a single node closes onto itself at cost 0.
func TourCost(m *Matrix, tour []int) (int, error) {
	idx, err := m.resolve(tour)
	if err != nil {
		return 0, err
	}
	return m.cycleCost(idx), nil
}

// cycleCost scores a tour given as matrix indices.
func (m *Matrix) cycleCost(idx []int) int {
	if len(idx) == 0 {
		return 0
	}
	n := len(m.ids)
	total := 0
	for i := 0; i < len(idx)-1; i++ {
		total += m.cells[idx[i]*n+idx[i+1]]
	}
	return total + m.cells[idx[len(idx)-1]*n+idx[0]]
}
