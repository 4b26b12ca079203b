package analytics

import (
	"PriceAnomaly/internal/domain/models"
	domsvc "PriceAnomaly/internal/domain/service"
)

// Registry resolves a detection method to its detector.
type Registry struct {
	detectors map[models.DetectionMethod]domsvc.Detector
	order     []models.DetectionMethod
}

// NewRegistry registers detectors in the given order. A later detector for
// the same method replaces the earlier one.
func NewRegistry(detectors ...domsvc.Detector) *Registry {
	r := &Registry{detectors: make(map[models.DetectionMethod]domsvc.Detector, len(detectors))}
	for _, d := range detectors {
		m := d.Method()
		if _, ok := r.detectors[m]; !ok {
			r.order = append(r.order, m)
		}
		r.detectors[m] = d
	}
	return r
}

// NewDefaultRegistry wires the three built-in detectors. cache may be nil.
func NewDefaultRegistry(cache domsvc.ZScoreCache) *Registry {
	return NewRegistry(
		NewZScoreDetector(cache),
		NewBollingerRSIDetector(),
		NewRateOfChangeDetector(),
	)
}

// Get returns the detector for method.
func (r *Registry) Get(method models.DetectionMethod) (domsvc.Detector, error) {
	d, ok := r.detectors[method]
	if !ok {
		return nil, models.InvalidInputf("unsupported method %q", method)
	}
	return d, nil
}

// Methods lists registered methods in registration order.
func (r *Registry) Methods() []models.DetectionMethod {
	out := make([]models.DetectionMethod, len(r.order))
	copy(out, r.order)
	return out
}
