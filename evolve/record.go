package evolve

// NoLapTime marks an entry or record whose agent never completed a lap.
const NoLapTime = -1.0

// BestRecord is the best genome observed across a run. Its genome is a deep copy,
// decoupled from every population entry.
type BestRecord struct {
	Fitness    float64 `json:"fitness"`
	LapTime    float64 `json:"lap_time"`
	Genome     *Genome `json:"genome,omitempty"`
	Generation int     `json:"generation"` // generation in which the record was set
}

// NewBestRecord returns the empty record a run starts with.
func NewBestRecord() BestRecord {
	return BestRecord{LapTime: NoLapTime}
}

// HasGenome reports whether any generation has improved the record yet.
func (r BestRecord) HasGenome() bool {
	return r.Genome.Len() > 0
}

// Improve replaces the record when entry's fitness strictly exceeds it. It returns
// true when the record changed. A NaN fitness never exceeds the record.
func (r *BestRecord) Improve(entry Entry, generation int) bool {
	if !(entry.Fitness > r.Fitness) {
		return false
	}
	r.Fitness = entry.Fitness
	r.LapTime = entry.LapTime
	r.Genome = entry.Genome.Clone()
	r.Generation = generation
	return true
}

// Stagnation returns how many generations have passed since the record last improved.
func (r BestRecord) Stagnation(generation int) int {
	if r.Generation == 0 {
		return generation - 1
	}
	return generation - r.Generation
}

// Clone returns a copy of the record with its own genome.
func (r BestRecord) Clone() BestRecord {
	r.Genome = r.Genome.Clone()
	return r
}
