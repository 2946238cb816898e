package b2d

import (
	"io"
	"math"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const INFINITY = math.MaxFloat64

// Tuning constants. Lengths are in meters, so these assume objects roughly
// between 0.1 and 10 meters.
const (
	Epsilon = 1.1920928955078125e-7

	// MaxManifoldPoints is the number of contact points between two convex shapes.
	MaxManifoldPoints = 2
	// MaxPolygonVertices bounds the vertex count of a polygon shape.
	MaxPolygonVertices = 8

	// AABBExtension fattens proxies in the broad-phase so small motions don't
	// restructure the tree.
	AABBExtension = 0.1
	// AABBMultiplier scales the displacement used to predict the fat AABB of a moving proxy.
	AABBMultiplier = 2.0

	// LinearSlop is the collision and constraint tolerance.
	LinearSlop  = 0.005
	AngularSlop = 2.0 / 180.0 * math.Pi

	// PolygonRadius is the skin around polygons. Zero keeps resting boxes at
	// their true height.
	PolygonRadius = 0.0

	// VelocityThreshold is the relative normal speed under which collisions are inelastic.
	VelocityThreshold = 1.0

	MaxLinearCorrection  = 0.2
	MaxAngularCorrection = 8.0 / 180.0 * math.Pi

	// MaxTranslation and MaxRotation cap body motion per step.
	MaxTranslation = 2.0
	MaxRotation    = 0.5 * math.Pi

	// ContactBaumgarte is the fraction of the overlap resolved per position iteration.
	ContactBaumgarte = 0.2

	// TimeToSleep is how long an island must stay still before it sleeps.
	TimeToSleep           = 0.5
	LinearSleepTolerance  = 0.01
	AngularSleepTolerance = 2.0 / 180.0 * math.Pi

	MaxTOIIterations = 20
)

// MixFriction is the geometric mean of two friction coefficients.
func MixFriction(friction1, friction2 float64) float64 {
	return math.Sqrt(friction1 * friction2)
}

// MixRestitution lets anything bounce off an inelastic surface.
func MixRestitution(restitution1, restitution2 float64) float64 {
	return math.Max(restitution1, restitution2)
}

// Settings are the world-wide switches. They can be loaded from YAML.
type Settings struct {
	Gravity Vector `yaml:"gravity"`

	// Defaults for runners that don't pass their own iteration counts.
	Hz                 float64 `yaml:"hz"`
	VelocityIterations int     `yaml:"velocityIterations"`
	PositionIterations int     `yaml:"positionIterations"`

	WarmStarting       bool `yaml:"warmStarting"`
	PositionCorrection bool `yaml:"positionCorrection"`
	ContinuousPhysics  bool `yaml:"continuousPhysics"`
	AllowSleep         bool `yaml:"allowSleep"`

	// Workers bounds how many islands are solved at once. 0 or 1 solves in order.
	Workers int `yaml:"workers"`
}

func DefaultSettings() Settings {
	return Settings{
		Gravity:            Vector{0, -10},
		Hz:                 60,
		VelocityIterations: 8,
		PositionIterations: 3,
		WarmStarting:       true,
		PositionCorrection: true,
		ContinuousPhysics:  true,
		AllowSleep:         true,
		Workers:            1,
	}
}

func (s Settings) Validate() error {
	if !s.Gravity.IsValid() {
		return errors.Errorf("gravity %v is not a finite vector", s.Gravity)
	}
	if s.Hz <= 0 || !isValid(s.Hz) {
		return errors.Errorf("hz must be positive, got %v", s.Hz)
	}
	if s.VelocityIterations < 1 {
		return errors.Errorf("velocityIterations must be at least 1, got %d", s.VelocityIterations)
	}
	if s.PositionIterations < 0 {
		return errors.Errorf("positionIterations must not be negative, got %d", s.PositionIterations)
	}
	if s.Workers < 0 {
		return errors.Errorf("workers must not be negative, got %d", s.Workers)
	}
	return nil
}

// LoadSettings reads YAML on top of DefaultSettings, so missing keys keep
// their defaults.
func LoadSettings(r io.Reader) (Settings, error) {
	settings := DefaultSettings()
	data, err := io.ReadAll(r)
	if err != nil {
		return settings, errors.Wrap(err, "read settings")
	}
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return settings, errors.Wrap(err, "parse settings")
	}
	if err := settings.Validate(); err != nil {
		return settings, errors.Wrap(err, "invalid settings")
	}
	return settings, nil
}

func LoadSettingsFile(path string) (Settings, error) {
	f, err := os.Open(path)
	if err != nil {
		return DefaultSettings(), errors.Wrapf(err, "open settings %s", path)
	}
	defer f.Close()
	return LoadSettings(f)
}

func (s Settings) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return errors.Wrap(err, "encode settings")
	}
	return errors.Wrap(enc.Close(), "flush settings")
}
