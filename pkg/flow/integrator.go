package flow

import (
	"math"

	"github.com/dstelter/rsraytracer/pkg/core"
)

// AdvectStatus reports how an Advect call terminated, mirroring the
// integrator-status enumeration in spec §4.2.
type AdvectStatus int

const (
	// AdvectOK means the integration reached t0+tau entirely inside the domain.
	AdvectOK AdvectStatus = iota
	// AdvectOutOfDomain means the trajectory left the flow's domain. Spec §7
	// treats this as a fatal assertion when both integration endpoints were
	// inside the domain — callers that can legitimately leave the domain
	// (most callers) should check this status rather than assert on it.
	AdvectOutOfDomain
	// AdvectStepExceeded means the integrator could not reach t0+tau within
	// the configured maximum step count.
	AdvectStepExceeded
	// AdvectUnsuccessful means the adaptive step controller could not find a
	// step size satisfying the error tolerance at rsmin.
	AdvectUnsuccessful
)

// IntegratorConfig tunes the adaptive embedded RK4(3) integrator.
// hmax=0.01, rsmin=5e-8 are the original's FlowSampler defaults
// (original_source/inc/flowsampler.hh).
type IntegratorConfig struct {
	HMax     float64
	RSMin    float64
	MaxSteps int
}

// DefaultIntegratorConfig returns the original's hmax/rsmin defaults with a
// generous step budget.
func DefaultIntegratorConfig() IntegratorConfig {
	return IntegratorConfig{HMax: 0.01, RSMin: 5e-8, MaxSteps: 100000}
}

// Advect integrates f's pathline starting at pos at time t0 for a duration
// tau (tau may be negative to integrate backward in time), using an
// adaptive embedded Runge-Kutta 4(3) scheme. It returns the
// final position and a status describing how integration terminated.
//
// This is the "integrator adapter" component of spec §2 (5% share): the
// generic embedded RK4(3) solver itself is treated as an external
// collaborator by spec §1; what's implemented here is the adapter that
// feeds it f's velocity field and enforces the domain/step-count contract.
func Advect(f Flow, pos core.Vec3, t0, tau float64, cfg IntegratorConfig) (core.Vec3, AdvectStatus) {
	if !f.IsInside(pos) {
		return pos, AdvectOutOfDomain
	}

	sign := 1.0
	if tau < 0 {
		sign = -1.0
	}
	remaining := math.Abs(tau)
	t := t0
	h := cfg.HMax

	for step := 0; ; step++ {
		if remaining <= 0 {
			return pos, AdvectOK
		}
		if step >= cfg.MaxSteps {
			return pos, AdvectStepExceeded
		}

		h = math.Min(h, remaining)
		stepDir := h * sign

		next, errEst, ok := rk43Step(f, pos, t, stepDir)
		if !ok {
			return pos, AdvectOutOfDomain
		}

		// Adaptive step-size control: accept the step if the embedded
		// error estimate is within tolerance, otherwise shrink h and retry,
		// bailing out once h would drop below rsmin without converging.
		tol := cfg.RSMin * (1 + next.Length())
		if errEst <= tol || h <= cfg.RSMin {
			if !f.IsInside(next) {
				return next, AdvectOutOfDomain
			}
			pos = next
			t += stepDir
			remaining -= h

			// Mild step growth toward hmax when error is comfortably small.
			if errEst < tol/4 {
				h = math.Min(cfg.HMax, h*1.5)
			}
			continue
		}

		h *= 0.5
		if h < cfg.RSMin {
			return pos, AdvectUnsuccessful
		}
	}
}

// rk43Step performs one embedded RK4(3) step of signed size h (already
// carrying the direction of integration), returning the 4th-order estimate,
// the |4th-3rd order| error estimate, and whether every velocity sample
// stayed inside the domain.
func rk43Step(f Flow, pos core.Vec3, t, h float64) (core.Vec3, float64, bool) {
	k1, ok := f.Velocity(pos, t)
	if !ok {
		return pos, 0, false
	}

	k2, ok := f.Velocity(pos.Add(k1.Multiply(h/2)), t+h/2)
	if !ok {
		return pos, 0, false
	}

	k3, ok := f.Velocity(pos.Add(k2.Multiply(h/2)), t+h/2)
	if !ok {
		return pos, 0, false
	}

	k4, ok := f.Velocity(pos.Add(k3.Multiply(h)), t+h)
	if !ok {
		return pos, 0, false
	}

	// 4th-order (classical RK4) estimate.
	order4 := pos.Add(k1.Add(k2.Multiply(2)).Add(k3.Multiply(2)).Add(k4).Multiply(h / 6))

	// Embedded 3rd-order estimate (Bogacki-Shampine-style blend reusing the
	// same stage evaluations) used purely for local error estimation.
	order3 := pos.Add(k1.Add(k2.Multiply(3)).Add(k3.Multiply(3)).Add(k4).Multiply(h / 8))

	errEst := order4.Subtract(order3).Length()
	return order4, errEst, true
}

// FlowReturn advects pos for duration tau starting at t0 and returns the
// displacement of the returned point from pos — i.e. the vector that
// HyperPoint/HyperLine's flowReturn formulas are built on (spec §4.3): a
// recirculation point is exactly a point where this displacement is zero.
func FlowReturn(f Flow, pos core.Vec3, t0, tau float64, cfg IntegratorConfig) (core.Vec3, AdvectStatus) {
	end, status := Advect(f, pos, t0, tau, cfg)
	if status != AdvectOK {
		return core.Vec3{}, status
	}
	return end.Subtract(pos), AdvectOK
}
