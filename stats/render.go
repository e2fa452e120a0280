package stats

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"
)

// StatReportRender 定義輸出行為
type StatReportRender interface {
	Write(w io.Writer, r *StatReport) error
}

type EstimatorRender interface {
	Write(w io.Writer, e *EstimatorPlayers) error
}

type JsonStatReportRender struct{}

func (*JsonStatReportRender) Write(w io.Writer, r *StatReport) error { return writeJSON(w, r) }

type YAMLStatReportRender struct{}

func (*YAMLStatReportRender) Write(w io.Writer, r *StatReport) error { return writeYAML(w, r) }

type JsonEstimatorRender struct{}

func (*JsonEstimatorRender) Write(w io.Writer, e *EstimatorPlayers) error { return writeJSON(w, e) }

type YAMLEstimatorRender struct{}

func (*YAMLEstimatorRender) Write(w io.Writer, e *EstimatorPlayers) error { return writeYAML(w, e) }

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeYAML 分桶這類最內層的一維陣列輸出成 [a, b, c]，外層陣列維持展開。
func writeYAML(w io.Writer, v any) error {
	var node yaml.Node
	if err := node.Encode(v); err != nil {
		return err
	}
	flowLeaves(&node)
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(&node)
}

// flowLeaves 回傳 n 是否為 sequence
func flowLeaves(n *yaml.Node) bool {
	if n == nil {
		return false
	}
	nested := false
	for _, c := range n.Content {
		if flowLeaves(c) {
			nested = true
		}
	}
	if n.Kind != yaml.SequenceNode {
		return false
	}
	if !nested {
		n.Style = yaml.FlowStyle
	}
	return true
}
