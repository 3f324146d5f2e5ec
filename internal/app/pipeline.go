package app

import (
	"log"
	"time"

	"github.com/renderix/reverie/internal/detector"
	"github.com/renderix/reverie/internal/memory"
	"github.com/renderix/reverie/internal/speech"
)

// runDetection is the landmark poll loop. Motion detection gates the frame
// rate: idle at IdleFPS until pixels change, then ActiveFPS while a hand
// could plausibly be present, dropping back after IdleTimeoutMs without
// motion. The loop is the single writer of GestureState.
func (a *App) runDetection(stopCh chan struct{}) {
	defer a.wg.Done()

	activeMode := false
	lastMotionTime := time.Now()

	frameInterval := time.Second / time.Duration(IdleFPS)
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			if !a.IsEnabled() {
				continue
			}

			a.mu.RLock()
			camera := a.camera
			det := a.detector
			a.mu.RUnlock()

			if !camera.IsOpen() || det == nil {
				continue
			}

			frame, err := camera.ReadFrame()
			if err != nil {
				log.Printf("Error reading frame: %v", err)
				continue
			}

			motionDetected, _ := a.motion.Detect(frame)

			if motionDetected {
				lastMotionTime = time.Now()

				if !activeMode {
					activeMode = true
					camera.SetFPS(ActiveFPS)
					frameInterval = time.Second / time.Duration(ActiveFPS)
					ticker.Reset(frameInterval)
				}
			} else if activeMode {
				if time.Since(lastMotionTime) > time.Duration(IdleTimeoutMs)*time.Millisecond {
					activeMode = false
					camera.SetFPS(IdleFPS)
					frameInterval = time.Second / time.Duration(IdleFPS)
					ticker.Reset(frameInterval)
				}
			}

			if !activeMode {
				// No recent motion: publish an explicit no-hand state so
				// velocity never carries across the gap.
				frame.Close()
				a.publishState(nil, time.Now())
				continue
			}

			hands, err := det.Detect(frame)
			frame.Close()

			if err != nil {
				log.Printf("Error detecting hands: %v", err)
				continue
			}

			if len(hands) == 0 {
				a.publishState(nil, time.Now())
				continue
			}

			a.publishState(&hands[0], time.Now())
		}
	}
}

// publishState classifies one frame and replaces GestureState wholesale.
func (a *App) publishState(hand *detector.HandLandmarks, now time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.gestureState = a.classifier.Classify(hand, now)
}

// runRender is the render tick loop: drain the speech event queue, apply
// each event at most once, then advance the scene.
func (a *App) runRender(stopCh chan struct{}) {
	defer a.wg.Done()

	ticker := time.NewTicker(a.config.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			now := time.Now()
			a.applyEvents(now)

			a.mu.Lock()
			a.engine.Tick(now, a.gestureState)
			a.mu.Unlock()
		}
	}
}

// applyEvents drains the queue once and folds each event into shared state.
func (a *App) applyEvents(now time.Time) {
	events := a.queue.Drain()
	if len(events) == 0 {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	transcriptChanged := false

	for _, ev := range events {
		switch e := ev.(type) {
		case speech.TranscriptEvent:
			if e.IsFinal {
				a.segments = append(a.segments, memory.VoiceSegment{
					Text:      e.Text,
					Sentiment: a.sentiment,
					Timestamp: e.Timestamp,
				})
				if a.finalText == "" {
					a.finalText = e.Text
				} else {
					a.finalText = a.finalText + " " + e.Text
				}
				a.interim = ""
				log.Printf("Final transcript: %s", voiceSegmentText(e.Text))
			} else {
				a.interim = e.Text
			}
			transcriptChanged = true

		case speech.SentimentEvent:
			// A zero-confidence NEUTRAL means "analysis unavailable" and
			// must not overwrite a prior non-neutral label.
			if e.Result.Unavailable() {
				continue
			}
			a.sentiment = e.Result.Label
			if e.Result.Label == memory.SentimentNegative {
				a.engine.SetDisruption(e.Result.Confidence)
			} else {
				a.engine.SetDisruption(0)
			}
		}
	}

	if transcriptChanged {
		a.engine.SetTranscript(now, a.displayTranscript(), false)
	}
}
