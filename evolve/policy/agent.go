package policy

import (
	"log/slog"

	"github.com/mihaela-gabrielaghiata/car-boy/evolve"
)

// Agent is what the simulation layer exposes of one evaluated car to the
// evolution core.
type Agent interface {
	Collided() bool
	LapEnded() bool
	Distance() float64
	LapTime() float64
	Genome() *evolve.Genome
	SetGenome(g *evolve.Genome) error
}

// Controls are the actuation flags the simulation reads every tick.
type Controls struct {
	Forward bool
	Reverse bool
	Left    bool
	Right   bool
}

// Driver is the classifier-driven Agent. It owns its genome exclusively for the
// length of an episode. The episode ends with a collision or a completed lap.
type Driver struct {
	Logger *slog.Logger

	genome   *evolve.Genome
	policy   *SteeringPolicy
	controls Controls
	distance float64
	elapsed  float64
	lapTime  float64
	collided bool
	lapEnded bool
	skipped  int
}

var _ Agent = (*Driver)(nil)

// NewDriver creates a driver steered by g.
func NewDriver(g *evolve.Genome) (*Driver, error) {
	d := &Driver{Logger: slog.Default(), lapTime: evolve.NoLapTime}
	if err := d.SetGenome(g); err != nil {
		return nil, err
	}
	return d, nil
}

// SetGenome binds g to the driver and resets the episode.
func (d *Driver) SetGenome(g *evolve.Genome) error {
	p, err := CreateSteeringPolicy(g)
	if err != nil {
		return err
	}
	d.genome = g
	d.policy = p
	d.Reset()
	return nil
}

// Reset starts a new episode with the current genome.
func (d *Driver) Reset() {
	d.controls = Controls{}
	d.distance = 0
	d.elapsed = 0
	d.lapTime = evolve.NoLapTime
	d.collided = false
	d.lapEnded = false
	d.skipped = 0
}

// Tick decides the controls for one simulation step from normalized sensor
// readings. When the readings do not match the genome the decision is skipped
// and the previous controls are kept. Once the episode is over every control is off.
func (d *Driver) Tick(features []float64) Controls {
	if d.Done() {
		d.controls = Controls{}
		return d.controls
	}

	action, err := d.policy.Decide(features)
	if err != nil {
		d.skipped++
		d.Logger.Error("decision skipped", "features", len(features), "weights", d.policy.NumFeatures, "error", err)
		return d.controls
	}

	d.controls = Controls{
		Forward: true,
		Left:    action == Left,
		Right:   action == Right,
	}
	return d.controls
}

// Advance accumulates the distance the car moved during a step of dt seconds.
func (d *Driver) Advance(moved, dt float64) {
	if d.Done() {
		return
	}
	d.distance += moved
	d.elapsed += dt
}

// Collide ends the episode with a collision against the track limits.
func (d *Driver) Collide() {
	d.collided = true
}

// CompleteLap ends the episode with a completed lap, recording its time.
func (d *Driver) CompleteLap() {
	if d.Done() {
		return
	}
	d.lapEnded = true
	d.lapTime = d.elapsed
}

// Done reports whether the episode is over.
func (d *Driver) Done() bool {
	return d.collided || d.lapEnded
}

// Collided reports whether the episode ended against the track limits.
func (d *Driver) Collided() bool { return d.collided }

// LapEnded reports whether the episode ended with a completed lap.
func (d *Driver) LapEnded() bool { return d.lapEnded }

// Distance returns the distance travelled so far, the episode's fitness.
func (d *Driver) Distance() float64 { return d.distance }

// LapTime returns the completed lap time, or evolve.NoLapTime.
func (d *Driver) LapTime() float64 { return d.lapTime }

// Genome returns the genome steering the driver.
func (d *Driver) Genome() *evolve.Genome { return d.genome }

// Controls returns the controls chosen on the last tick.
func (d *Driver) Controls() Controls { return d.controls }

// Skipped returns how many decisions were skipped because of mismatched readings.
func (d *Driver) Skipped() int { return d.skipped }
