// Package posture is the posture-monitoring engine.
//
// A Calibrator captures a "good posture" baseline from the live anchor
// points. While monitoring, every new AnchorSet is compared against that
// baseline by the Evaluator, and the resulting Decision drives an
// AlertController that debounces sustained drops into a single visible and
// audible alert.
//
// Engine wires the pieces together and serializes user actions with
// per-frame samples:
//
//	engine := posture.NewEngine(posture.DefaultConfig(), posture.Options{
//		Notifier: dashboard,
//		Sounder:  player,
//	})
//	scheduler := tracking.New(cfg, video, model, surface, func(a landmark.AnchorSet) {
//		engine.Ingest(a)
//	})
package posture
