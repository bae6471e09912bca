package similarity

// Metric names reported in a Breakdown.
const (
	MetricShingle1 = "shingle_1"
	MetricShingle3 = "shingle_3"
	MetricShingle5 = "shingle_5"
	MetricWords    = "word"
)

type weightedMetric struct {
	name   string
	size   int
	weight float64
}

// Shingle windows of 1, 3 and 5 tokens plus a word-set comparison.
var compositeMetrics = []weightedMetric{
	{MetricShingle1, 1, 0.3},
	{MetricShingle3, 3, 0.4},
	{MetricShingle5, 5, 0.2},
	{MetricWords, 0, 0.1},
}

// Breakdown holds the individual scores behind a composite similarity.
// Metrics whose sets were empty on either side are absent.
type Breakdown map[string]float64

// Profile caches the shingle sets of one text so it can be compared
// against many others without re-tokenising.
type Profile struct {
	sets map[string]Set
}

// NewProfile computes every set the composite score needs.
func NewProfile(text string) *Profile {
	tokens := Tokens(text)
	p := &Profile{sets: make(map[string]Set, len(compositeMetrics))}
	for _, m := range compositeMetrics {
		if m.size == 0 {
			p.sets[m.name] = shinglesOf(tokens, 1)
			continue
		}
		p.sets[m.name] = shinglesOf(tokens, m.size)
	}
	return p
}

// Composite returns the weighted composite similarity (0-1) of two texts.
func Composite(a, b string) (float64, Breakdown) {
	return NewProfile(a).Compare(NewProfile(b))
}

// Compare returns the weighted composite similarity (0-1) between two
// profiles. Only metrics where both sets are non-empty contribute, and the
// result is normalised by the weight of the contributing metrics.
func (p *Profile) Compare(other *Profile) (float64, Breakdown) {
	breakdown := make(Breakdown, len(compositeMetrics))
	var total, weight float64
	for _, m := range compositeMetrics {
		a, b := p.sets[m.name], other.sets[m.name]
		if len(a) == 0 || len(b) == 0 {
			continue
		}
		score := Jaccard(a, b)
		breakdown[m.name] = score
		total += score * m.weight
		weight += m.weight
	}
	if weight == 0 {
		return 0, breakdown
	}
	return total / weight, breakdown
}

// Methods returns the metric names used by the composite score.
func Methods() []string {
	names := make([]string, len(compositeMetrics))
	for i, m := range compositeMetrics {
		names[i] = m.name
	}
	return names
}
