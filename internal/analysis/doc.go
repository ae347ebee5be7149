// Package analysis provides numerical studies of the shallow water solver.
//
//   - [Convergence]: observed temporal order of each integrator against a
//     fine-step RK4 reference
//   - [Spectrum]: amplitude spectrum of a periodic field
//
// A typical study runs the "convergence" preset:
//
//	report, err := analysis.Convergence(ctx, analysis.Study{
//		Config:      *config.GetPreset("convergence"),
//		Dts:         []float64{0.01, 0.005, 0.0025},
//		Integrators: integrators.Names(),
//	})
package analysis
