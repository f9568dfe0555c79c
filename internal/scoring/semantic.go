package scoring

import "math"

// SemanticCentrality scores each token by the cosine similarity between its
// contextual embedding and the mean-pooled sequence embedding. Tokens close
// to the pooled meaning of the whole sequence score high. The result is
// unnormalized.
func SemanticCentrality(embeddings [][]float32) []float32 {
	n := len(embeddings)
	if n == 0 {
		return nil
	}
	dim := len(embeddings[0])

	mean := make([]float64, dim)
	for _, emb := range embeddings {
		for d, v := range emb {
			mean[d] += float64(v)
		}
	}
	for d := range mean {
		mean[d] /= float64(n)
	}

	out := make([]float32, n)
	for i, emb := range embeddings {
		out[i] = float32(cosineToMean(emb, mean))
	}
	return out
}

func cosineToMean(a []float32, mean []float64) float64 {
	if len(a) != len(mean) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x := float64(a[i])
		dot += x * mean[i]
		na += x * x
		nb += mean[i] * mean[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
