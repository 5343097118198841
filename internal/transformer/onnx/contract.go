package onnx

import (
	"fmt"

	"github.com/fluxindex/crossencoder/pkg/domain"
)

// ValidateCrossEncoder checks a graph interface against the cross-encoder
// contract: three int64 inputs named input_ids, attention_mask and
// token_type_ids with dynamic batch and sequence axes, one float output
// named logits with a dynamic batch axis, and a default-domain opset no
// newer than maxOpset. Violations are export errors.
func ValidateCrossEncoder(info *GraphInfo, maxOpset int) error {
	if info == nil {
		return fmt.Errorf("nil graph info")
	}
	if maxOpset > 0 && info.Opset > int64(maxOpset) {
		return fmt.Errorf("graph requires opset %d, target is %d", info.Opset, maxOpset)
	}

	wantInputs := []string{domain.GraphInputIDs, domain.GraphInputMask, domain.GraphInputTypes}
	if len(info.Inputs) != len(wantInputs) {
		return fmt.Errorf("graph declares %d inputs, want %d (%v)",
			len(info.Inputs), len(wantInputs), inputNames(info))
	}
	for _, name := range wantInputs {
		in := info.Input(name)
		if in == nil {
			return fmt.Errorf("graph is missing input %q (declares %v)", name, inputNames(info))
		}
		if in.ElemType != ElemInt64 {
			return fmt.Errorf("input %q has element type %d, want int64", name, in.ElemType)
		}
		if len(in.Dims) != 2 {
			return fmt.Errorf("input %q has rank %d, want 2", name, len(in.Dims))
		}
		if !in.Dims[0].Dynamic() {
			return fmt.Errorf("input %q batch axis is fixed to %d", name, in.Dims[0].Value)
		}
		if !in.Dims[1].Dynamic() {
			return fmt.Errorf("input %q sequence axis is fixed to %d", name, in.Dims[1].Value)
		}
	}

	if len(info.Outputs) != 1 || info.Outputs[0].Name != domain.GraphOutput {
		return fmt.Errorf("graph must declare single output %q, declares %v",
			domain.GraphOutput, outputNames(info))
	}
	out := info.Outputs[0]
	if out.ElemType != ElemFloat {
		return fmt.Errorf("output %q has element type %d, want float", out.Name, out.ElemType)
	}
	if len(out.Dims) < 1 || !out.Dims[0].Dynamic() {
		return fmt.Errorf("output %q batch axis must be dynamic", out.Name)
	}
	return nil
}

// StaticLabelCount returns the logits label axis when the graph pins it,
// or zero when it is dynamic or undeclared.
func StaticLabelCount(info *GraphInfo) int {
	if info == nil || len(info.Outputs) != 1 {
		return 0
	}
	dims := info.Outputs[0].Dims
	if len(dims) == 2 && !dims[1].Dynamic() && dims[1].Value > 0 {
		return int(dims[1].Value)
	}
	return 0
}

func inputNames(info *GraphInfo) []string {
	names := make([]string, 0, len(info.Inputs))
	for _, in := range info.Inputs {
		names = append(names, in.Name)
	}
	return names
}

func outputNames(info *GraphInfo) []string {
	names := make([]string, 0, len(info.Outputs))
	for _, out := range info.Outputs {
		names = append(names, out.Name)
	}
	return names
}
