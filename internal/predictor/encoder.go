package predictor

import (
	"sort"

	"github.com/OldStager01/student-insights/pkg/models"
)

// LabelEncoder maps class labels to a dense integer range in sorted label order.
type LabelEncoder struct {
	classes []models.Class
	index   map[models.Class]int
}

func NewLabelEncoder(labels []models.Class) *LabelEncoder {
	seen := make(map[models.Class]bool)
	var classes []models.Class
	for _, l := range labels {
		if !seen[l] {
			seen[l] = true
			classes = append(classes, l)
		}
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i] < classes[j] })

	index := make(map[models.Class]int, len(classes))
	for i, c := range classes {
		index[c] = i
	}
	return &LabelEncoder{classes: classes, index: index}
}

func (e *LabelEncoder) Len() int {
	return len(e.classes)
}

func (e *LabelEncoder) Encode(c models.Class) (int, bool) {
	i, ok := e.index[c]
	return i, ok
}

func (e *LabelEncoder) Decode(i int) models.Class {
	return e.classes[i]
}

func (e *LabelEncoder) Classes() []models.Class {
	out := make([]models.Class, len(e.classes))
	copy(out, e.classes)
	return out
}
