package annotation

import (
	"encoding/json"
	"fmt"
	"io"
)

type document struct {
	Namespace string        `json:"namespace"`
	Duration  float64       `json:"duration"`
	Data      []Observation `json:"data"`
}

// Read decodes one annotation from r.
//
//	{"namespace": "beat", "duration": 10, "data": [{"time": 0.5, "duration": 0, "value": 1, "confidence": null}]}
func Read(r io.Reader) (*Annotation, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("annotation: decode: %w", err)
	}

	a := New(doc.Namespace, doc.Duration)
	a.Append(doc.Data...)

	return a, nil
}

// ReadAll decodes either a single annotation object or an array of them.
func ReadAll(r io.Reader) ([]*Annotation, error) {
	var raw json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("annotation: decode: %w", err)
	}

	var docs []document
	if len(raw) > 0 && raw[0] == '[' {
		if err := json.Unmarshal(raw, &docs); err != nil {
			return nil, fmt.Errorf("annotation: decode: %w", err)
		}
	} else {
		var doc document
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("annotation: decode: %w", err)
		}
		docs = append(docs, doc)
	}

	out := make([]*Annotation, len(docs))
	for i, doc := range docs {
		out[i] = New(doc.Namespace, doc.Duration)
		out[i].Append(doc.Data...)
	}

	return out, nil
}

// Write encodes the annotations to w as a JSON array.
func Write(w io.Writer, anns ...*Annotation) error {
	docs := make([]document, len(anns))
	for i, a := range anns {
		docs[i] = document{Namespace: a.Namespace, Duration: a.Duration, Data: a.obs}
		if docs[i].Data == nil {
			docs[i].Data = []Observation{}
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(docs); err != nil {
		return fmt.Errorf("annotation: encode: %w", err)
	}

	return nil
}
