package app

import (
	"log"
	"time"
)

// runPipeline is the frame loop. Every tick it measures the wall-clock time
// since the previous tick, takes one snapshot of tracked hands and runs a
// single Step with both, so all zones see the same snapshot.
//
// A failed snapshot counts as a frame without hands; the commit timer keeps
// running so a tracker outage still commits the pending character.
func (a *App) runPipeline(stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(time.Second / time.Duration(a.config.FPS))
	defer ticker.Stop()

	last := time.Now()
	failing := false

	for {
		select {
		case <-stopCh:
			return
		case now := <-ticker.C:
			delta := now.Sub(last)
			last = now

			hands, err := a.config.Source.Snapshot()
			if err != nil {
				// Log once per outage rather than every frame
				if !failing {
					log.Printf("Error reading hands: %v", err)
					failing = true
				}
				hands = nil
			} else if failing {
				log.Println("Point source recovered")
				failing = false
			}

			a.StepHands(delta, hands)
		}
	}
}
