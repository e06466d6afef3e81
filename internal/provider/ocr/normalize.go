package ocr

import (
	"encoding/json"
	"fmt"
	"strings"
)

// The engines in the field answer in three shapes: a flat
// {text, confidence, blocks[]} document, a doctr-style page/word tree, and a
// paddle-style list of [corner-points, text, confidence] triplets.
// NormalizeResponse folds all of them into Result so the pipeline never sees
// engine identity.

type envelope struct {
	Success *bool  `json:"success"`
	Error   string `json:"error"`

	// flat shape
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Blocks     []block `json:"blocks"`

	// doctr shape
	Pages []page `json:"pages"`

	// paddle shape
	Results [][]json.RawMessage `json:"results"`

	ConfidenceAverage float64 `json:"confidence_average"`
	LanguageDetected  string  `json:"language_detected"`
}

type block struct {
	Text       string          `json:"text"`
	Confidence float64         `json:"confidence"`
	BBox       json.RawMessage `json:"bbox"`
	Type       string          `json:"type"`
}

type page struct {
	Words      []word  `json:"words"`
	Confidence float64 `json:"confidence"`
}

type word struct {
	Text        string  `json:"text"`
	Confidence  float64 `json:"confidence"`
	BoundingBox boxObj  `json:"bounding_box"`
}

type boxObj struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NormalizeResponse converts any supported engine response into a Result.
func NormalizeResponse(raw []byte) (Result, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Result{}, fmt.Errorf("decode ocr response: %w", err)
	}
	if env.Success != nil && !*env.Success {
		return Result{}, fmt.Errorf("ocr engine error: %s", env.Error)
	}

	switch {
	case len(env.Pages) > 0:
		return fromPages(env), nil
	case len(env.Results) > 0:
		return fromTriplets(env)
	default:
		return fromFlat(env), nil
	}
}

func fromFlat(env envelope) Result {
	res := Result{
		Text:       env.Text,
		Confidence: env.Confidence,
		Language:   env.LanguageDetected,
	}
	for _, b := range env.Blocks {
		w := Word{Text: b.Text, Confidence: b.Confidence}
		w.BBox = decodeBBox(b.BBox)
		res.Words = append(res.Words, w)
	}
	if res.Confidence == 0 && len(res.Words) > 0 {
		res.Confidence = meanWordConfidence(res.Words)
	}
	return res
}

func fromPages(env envelope) Result {
	var res Result
	var sb strings.Builder
	for _, p := range env.Pages {
		for _, w := range p.Words {
			if sb.Len() > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(w.Text)
			res.Words = append(res.Words, Word{
				Text:       w.Text,
				Confidence: w.Confidence,
				BBox:       BBox{X: w.BoundingBox.X, Y: w.BoundingBox.Y, Width: w.BoundingBox.Width, Height: w.BoundingBox.Height},
			})
		}
	}
	res.Text = sb.String()
	res.Confidence = env.ConfidenceAverage
	if res.Confidence == 0 && len(res.Words) > 0 {
		res.Confidence = meanWordConfidence(res.Words)
	}
	res.Language = env.LanguageDetected
	return res
}

// fromTriplets handles the list-of-[points, text, confidence] shape. The four
// corner points are reduced to an axis-aligned box.
func fromTriplets(env envelope) (Result, error) {
	var res Result
	var sb strings.Builder
	for i, triplet := range env.Results {
		if len(triplet) != 3 {
			return Result{}, fmt.Errorf("ocr result %d: want 3 elements, got %d", i, len(triplet))
		}
		var points [][]float64
		var text string
		var conf float64
		if err := json.Unmarshal(triplet[0], &points); err != nil {
			return Result{}, fmt.Errorf("ocr result %d: decode points: %w", i, err)
		}
		if err := json.Unmarshal(triplet[1], &text); err != nil {
			return Result{}, fmt.Errorf("ocr result %d: decode text: %w", i, err)
		}
		if err := json.Unmarshal(triplet[2], &conf); err != nil {
			return Result{}, fmt.Errorf("ocr result %d: decode confidence: %w", i, err)
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(text)
		res.Words = append(res.Words, Word{Text: text, Confidence: conf, BBox: boundingBox(points)})
	}
	res.Text = sb.String()
	res.Confidence = env.ConfidenceAverage
	if res.Confidence == 0 && len(res.Words) > 0 {
		res.Confidence = meanWordConfidence(res.Words)
	}
	res.Language = env.LanguageDetected
	return res, nil
}

// decodeBBox accepts either [x, y, w, h] or {x, y, width, height}.
func decodeBBox(raw json.RawMessage) BBox {
	if len(raw) == 0 {
		return BBox{}
	}
	var arr []float64
	if err := json.Unmarshal(raw, &arr); err == nil && len(arr) == 4 {
		return BBox{X: arr[0], Y: arr[1], Width: arr[2], Height: arr[3]}
	}
	var obj boxObj
	if err := json.Unmarshal(raw, &obj); err == nil {
		return BBox{X: obj.X, Y: obj.Y, Width: obj.Width, Height: obj.Height}
	}
	return BBox{}
}

func boundingBox(points [][]float64) BBox {
	seeded := false
	var minX, minY, maxX, maxY float64
	for _, p := range points {
		if len(p) < 2 {
			continue
		}
		if !seeded {
			minX, minY = p[0], p[1]
			maxX, maxY = p[0], p[1]
			seeded = true
			continue
		}
		if p[0] < minX {
			minX = p[0]
		}
		if p[0] > maxX {
			maxX = p[0]
		}
		if p[1] < minY {
			minY = p[1]
		}
		if p[1] > maxY {
			maxY = p[1]
		}
	}
	if !seeded {
		return BBox{}
	}
	return BBox{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

func meanWordConfidence(words []Word) float64 {
	if len(words) == 0 {
		return 0
	}
	var sum float64
	for _, w := range words {
		sum += w.Confidence
	}
	return sum / float64(len(words))
}
