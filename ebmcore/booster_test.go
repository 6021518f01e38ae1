package ebmcore

import (
	"os"
	"path/filepath"
	"testing"
)

func buildMainEffectCandidate(t *testing.T, name string, states []int, stateCount int) Candidate {
	fc, err := NewFeatureCombination(Feature{StateCount: stateCount, FeatureIndex: 0})
	if err != nil {
		t.Fatalf("NewFeatureCombination: %v", err)
	}
	view, err := PackInput(fc, len(states), [][]int{states})
	if err != nil {
		t.Fatalf("PackInput: %v", err)
	}
	return Candidate{Name: name, Combination: fc, View: view}
}

func TestNewBoosterFitsASimpleSingleAxisStep(t *testing.T) {
	// cases 0,1 are state 0 with target -5; cases 2,3 are state 1 with
	// target 5. A single main-effect candidate should drive the prediction
	// error near zero within a few stages.
	states := []int{0, 0, 1, 1}
	target := []float64{-5, -5, 5, 5}
	cand := buildMainEffectCandidate(t, "x", states, 2)

	booster, err := NewBooster(BoosterParams{
		Candidates:   []Candidate{cand},
		CaseCount:    len(states),
		Mode:         Regression,
		Loss:         MseLoss{},
		Target:       target,
		NStages:      20,
		LearningRate: 0.3,
	})
	if err != nil {
		t.Fatalf("NewBooster: %v", err)
	}
	if len(booster.Stages) == 0 {
		t.Fatal("expected at least one completed boosting stage")
	}

	prediction, err := booster.Predict([]*PackedInputView{cand.View}, len(states))
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	for i, p := range prediction {
		if diff := p - target[i]; diff > 0.5 || diff < -0.5 {
			t.Fatalf("case %d prediction = %v, want close to %v", i, p, target[i])
		}
	}
}

func TestNewBoosterPicksTheHigherGainCandidate(t *testing.T) {
	states := []int{0, 0, 1, 1}
	target := []float64{-5, -5, 5, 5}

	strong := buildMainEffectCandidate(t, "strong", states, 2)
	// weak carries no useful signal: every case falls in the same bin, so
	// its residual sum (and hence gain) is exactly zero.
	flatStates := []int{0, 0, 0, 0}
	weak := buildMainEffectCandidate(t, "weak", flatStates, 2)

	booster, err := NewBooster(BoosterParams{
		Candidates:   []Candidate{weak, strong},
		CaseCount:    len(states),
		Mode:         Regression,
		Loss:         MseLoss{},
		Target:       target,
		NStages:      1,
		LearningRate: 0.3,
	})
	if err != nil {
		t.Fatalf("NewBooster: %v", err)
	}
	if got := booster.Stages[0].WinnerName; got != "strong" {
		t.Fatalf("winner = %q, want %q", got, "strong")
	}
}

func TestNewBoosterWithThreadsMatchesSerialFit(t *testing.T) {
	states := []int{0, 0, 1, 1}
	target := []float64{-5, -5, 5, 5}

	strong := buildMainEffectCandidate(t, "strong", states, 2)
	flatStates := []int{0, 0, 0, 0}
	weak := buildMainEffectCandidate(t, "weak", flatStates, 2)

	params := BoosterParams{
		Candidates:   []Candidate{weak, strong},
		CaseCount:    len(states),
		Mode:         Regression,
		Loss:         MseLoss{},
		Target:       target,
		NStages:      5,
		LearningRate: 0.3,
	}

	serial, err := NewBooster(params)
	if err != nil {
		t.Fatalf("NewBooster (serial): %v", err)
	}

	params.ThreadsNum = 4
	threaded, err := NewBooster(params)
	if err != nil {
		t.Fatalf("NewBooster (threaded): %v", err)
	}

	if len(serial.Stages) != len(threaded.Stages) {
		t.Fatalf("stage count serial=%d threaded=%d", len(serial.Stages), len(threaded.Stages))
	}
	for i := range serial.Stages {
		if serial.Stages[i].WinnerName != threaded.Stages[i].WinnerName {
			t.Fatalf("stage %d winner serial=%q threaded=%q", i, serial.Stages[i].WinnerName, threaded.Stages[i].WinnerName)
		}
		if serial.Stages[i].Gain != threaded.Stages[i].Gain {
			t.Fatalf("stage %d gain serial=%v threaded=%v", i, serial.Stages[i].Gain, threaded.Stages[i].Gain)
		}
	}
}

func TestBoosterSaveLoadRoundTrip(t *testing.T) {
	states := []int{0, 0, 1, 1}
	target := []float64{-5, -5, 5, 5}
	cand := buildMainEffectCandidate(t, "x", states, 2)

	booster, err := NewBooster(BoosterParams{
		Candidates:   []Candidate{cand},
		CaseCount:    len(states),
		Mode:         Regression,
		Loss:         MseLoss{},
		Target:       target,
		NStages:      5,
		LearningRate: 0.3,
	})
	if err != nil {
		t.Fatalf("NewBooster: %v", err)
	}

	path := filepath.Join(t.TempDir(), "model.json")
	if err := booster.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected model file to exist: %v", err)
	}

	loaded, err := LoadModel(path, []Candidate{cand})
	if err != nil {
		t.Fatalf("LoadModel: %v", err)
	}

	before, err := booster.Predict([]*PackedInputView{cand.View}, len(states))
	if err != nil {
		t.Fatalf("Predict before: %v", err)
	}
	after, err := loaded.Predict([]*PackedInputView{cand.View}, len(states))
	if err != nil {
		t.Fatalf("Predict after: %v", err)
	}
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("case %d: before=%v after=%v, want equal after a save/load round trip", i, before[i], after[i])
		}
	}
}

func TestBoosterHoldOutRecordsLearningCurve(t *testing.T) {
	states := []int{0, 0, 1, 1}
	target := []float64{-5, -5, 5, 5}
	cand := buildMainEffectCandidate(t, "x", states, 2)
	holdOutCand := buildMainEffectCandidate(t, "x", states, 2)

	booster, err := NewBooster(BoosterParams{
		Candidates:   []Candidate{cand},
		CaseCount:    len(states),
		Mode:         Regression,
		Loss:         MseLoss{},
		Target:       target,
		NStages:      10,
		LearningRate: 0.3,
		HoldOut: []HoldOutSet{
			{Name: "validation", CaseCount: len(states), Target: target, Candidates: []Candidate{holdOutCand}},
		},
	})
	if err != nil {
		t.Fatalf("NewBooster: %v", err)
	}
	if len(booster.Stages) == 0 {
		t.Fatal("expected completed stages")
	}
	first := booster.Stages[0].LearningRow[0]
	last := booster.Stages[len(booster.Stages)-1].LearningRow[0]
	if last >= first {
		t.Fatalf("held-out error did not improve: first=%v last=%v", first, last)
	}
}
