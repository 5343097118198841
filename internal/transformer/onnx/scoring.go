package onnx

import "math"

// Score collapses one example's logits into a relevance score: sigmoid of
// the single logit for one-label cross-encoders, max softmax probability
// otherwise.
func Score(logits []float32) float32 {
	switch len(logits) {
	case 0:
		return 0
	case 1:
		return Sigmoid(logits[0])
	default:
		probs := Softmax(logits)
		best := probs[0]
		for _, p := range probs[1:] {
			if p > best {
				best = p
			}
		}
		return best
	}
}

func Sigmoid(x float32) float32 {
	return float32(1.0 / (1.0 + math.Exp(-float64(x))))
}

// Softmax returns normalized probabilities, shifted by the max logit for
// numeric stability.
func Softmax(logits []float32) []float32 {
	out := make([]float32, len(logits))
	if len(logits) == 0 {
		return out
	}
	maxL := logits[0]
	for _, x := range logits[1:] {
		if x > maxL {
			maxL = x
		}
	}
	var sum float64
	for i, x := range logits {
		e := math.Exp(float64(x - maxL))
		out[i] = float32(e)
		sum += e
	}
	if sum == 0 {
		return out
	}
	for i := range out {
		out[i] = float32(float64(out[i]) / sum)
	}
	return out
}
