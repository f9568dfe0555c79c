package scoring

import "math"

// Layer weighting schemes for attention aggregation. Later encoder layers
// carry more semantic signal, so linear and exponential ramp toward the
// final layer; last-only uses the final layer alone.
const (
	LayerWeightingLinear      = "linear"
	LayerWeightingExponential = "exponential"
	LayerWeightingLastOnly    = "last-only"
)

// AttentionImportance scores each token by how much attention it receives,
// aggregated across every layer and head of the encoder.
//
// attentions is indexed [layer][head][from][to]. For token j the raw score
// is the mean over layers and heads of w_layer × Σ_from attn[from][j].
// The result is unnormalized; callers min-max normalize before fusing.
func AttentionImportance(attentions [][][][]float32, weighting string) []float32 {
	layers := len(attentions)
	if layers == 0 || len(attentions[0]) == 0 {
		return nil
	}
	heads := len(attentions[0])
	seq := len(attentions[0][0])

	weights := layerWeights(weighting, layers)
	received := make([]float64, seq)
	for l, layer := range attentions {
		w := weights[l]
		if w == 0 {
			continue
		}
		for _, head := range layer {
			for _, row := range head {
				for j, a := range row {
					received[j] += w * float64(a)
				}
			}
		}
	}

	inv := 1.0 / float64(layers*heads)
	out := make([]float32, seq)
	for j, v := range received {
		out[j] = float32(v * inv)
	}
	return out
}

func layerWeights(weighting string, n int) []float64 {
	switch weighting {
	case LayerWeightingLinear:
		return linspace(0.3, 1.0, n)
	case LayerWeightingExponential:
		w := linspace(-1, 0, n)
		for i, v := range w {
			w[i] = math.Exp(v)
		}
		return w
	default: // last-only
		w := make([]float64, n)
		w[n-1] = 1.0
		return w
	}
}

func linspace(start, stop float64, n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = start
		return out
	}
	step := (stop - start) / float64(n-1)
	for i := range out {
		out[i] = start + step*float64(i)
	}
	return out
}
