// Package simulation replays a reading stream through a setting predictor and
// a cooling policy, one decision per minute.
//
// Each reading is classified, the policy's temperature delta is applied and
// the policy's energy cost is accumulated. When the stream ends every record
// receives the run's average energy per minute, so EnergyUsage is identical
// across a trajectory.
//
// Usage:
//
//	tree, _ := classifier.Load(modelPath)
//	result, err := simulation.Run(readings, tree, cfg.Policy, simulation.Options{
//	    Decisions: dl,
//	})
//	fmt.Println(result.CumulativeEnergy)
//
// The preference tracker is not consulted here; cooling decisions depend only
// on the predictor and the policy.
package simulation
