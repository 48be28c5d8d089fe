// Package ancsim is an interactive demonstration of destructive wave
// interference, the principle behind active noise cancellation.
//
// A [Simulator] owns a small software audio engine and, while running, a
// [Session]: two sine sources at a shared frequency, a delay and a polarity
// stage applied to the second source, and a summing stage routed to the
// output. Three taps capture the reference, the anti-noise and the sum, and a
// render loop paints them onto a surface once per display refresh.
//
// # Signal Graph
//
//	source1 ──► tapReference
//	   └──────────────────────────────► sum ──► tapSum ──► destination
//	source2 ──► delay ──► polarity ──► tapAntiNoise    ▲
//	                         └─────────────────────────┘
//
// The delay is always derived from the current frequency and phase:
//
//	delay = (phase / 360) * (1 / frequency)
//
// so a phase of 180 degrees shifts the second tone by half a period, which
// cancels the first tone in the sum. Inverting polarity multiplies the delayed
// tone by -1; with zero phase that cancels too, while inversion combined with
// 180 degrees of delay reinforces the reference instead.
//
// # Quick Start
//
//	sim, err := ancsim.New(ancsim.DefaultConfig(), ancsim.WithLogger(logger))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer sim.Close()
//
//	if err := sim.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	sim.SetPhase(180)
//
// # Parameters
//
// Frequency is clamped to [MinFrequency, MaxFrequency] Hz and phase to
// [MinPhase, MaxPhase] degrees. Non-finite values are rejected with
// [ErrInvalidParameter]. Changes made while stopped are kept for the next
// Start; changes made while running take effect at the engine's current time,
// with both sources retuned in the same render quantum.
//
// # Thread Safety
//
// A Simulator is safe for concurrent use. Several simulators may coexist in
// one process; there is no package-level state.
package ancsim
