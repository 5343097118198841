package onnx

import (
	"math"
	"testing"
)

func TestSigmoid(t *testing.T) {
	if got := Sigmoid(0); math.Abs(float64(got)-0.5) > 1e-6 {
		t.Fatalf("Sigmoid(0) = %f, want 0.5", got)
	}
	if got := Sigmoid(10); got <= 0.99 {
		t.Fatalf("Sigmoid(10) = %f, want near 1", got)
	}
	if got := Sigmoid(-10); got >= 0.01 {
		t.Fatalf("Sigmoid(-10) = %f, want near 0", got)
	}
}

func TestSoftmaxNormalizes(t *testing.T) {
	probs := Softmax([]float32{1, 2, 3})
	var sum float64
	for _, p := range probs {
		sum += float64(p)
	}
	if math.Abs(sum-1) > 1e-5 {
		t.Fatalf("softmax sums to %f, want 1", sum)
	}
	if !(probs[2] > probs[1] && probs[1] > probs[0]) {
		t.Fatalf("softmax not monotone: %v", probs)
	}
}

func TestScoreSingleLogitIsSigmoid(t *testing.T) {
	if got, want := Score([]float32{1.5}), Sigmoid(1.5); got != want {
		t.Fatalf("Score = %f, want %f", got, want)
	}
}

func TestScoreMultiLabelIsMaxProbability(t *testing.T) {
	got := Score([]float32{0, 0, 4})
	want := Softmax([]float32{0, 0, 4})[2]
	if got != want {
		t.Fatalf("Score = %f, want %f", got, want)
	}
}

func TestScoreEmpty(t *testing.T) {
	if got := Score(nil); got != 0 {
		t.Fatalf("Score(nil) = %f, want 0", got)
	}
}
