package trace

// Summary aggregates a recorded trace for quick inspection.
type Summary struct {
	Decisions       int
	MeanTravelTime  float64
	MeanQueueLength float64
	LastClock       float64
}

// Summarize computes aggregate statistics over the recorded assignments.
func (st *SimulationTrace) Summarize() Summary {
	s := Summary{Decisions: len(st.Assignments)}
	if s.Decisions == 0 {
		return s
	}
	var travel, queue float64
	for _, rec := range st.Assignments {
		travel += rec.TravelTime
		queue += float64(rec.QueuedRobots)
		if rec.Clock > s.LastClock {
			s.LastClock = rec.Clock
		}
	}
	s.MeanTravelTime = travel / float64(s.Decisions)
	s.MeanQueueLength = queue / float64(s.Decisions)
	return s
}
