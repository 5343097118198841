// Package onnxtest builds minimal ONNX ModelProto payloads for tests.
// The models carry a valid interface declaration but no nodes, which is
// all the graph inspector and exporter look at.
package onnxtest

import "google.golang.org/protobuf/encoding/protowire"

// Tensor declares one graph input or output for BuildModel.
type Tensor struct {
	Name     string
	ElemType int32
	Dims     []AxisSpec
}

// AxisSpec is one declared axis: Value > 0 pins it, Param names a dynamic one.
type AxisSpec struct {
	Value int64
	Param string
}

// Batch and Seq are the conventional dynamic axes of a transformer export.
func Batch() AxisSpec { return AxisSpec{Param: "batch_size"} }
func Seq() AxisSpec   { return AxisSpec{Param: "sequence"} }

// CrossEncoderModel returns a ModelProto declaring the standard
// cross-encoder interface with the given opset and label axis.
func CrossEncoderModel(opset, numLabels int64) []byte {
	in := func(name string) Tensor {
		return Tensor{Name: name, ElemType: 7, Dims: []AxisSpec{Batch(), Seq()}}
	}
	return BuildModel(opset,
		[]Tensor{in("input_ids"), in("attention_mask"), in("token_type_ids")},
		[]Tensor{{Name: "logits", ElemType: 1, Dims: []AxisSpec{Batch(), {Value: numLabels}}}},
	)
}

// BuildModel serializes a ModelProto with the given default-domain opset,
// inputs and outputs. Names passed as initializers are declared in both
// graph.input and graph.initializer, the shape older exporters produce
// for weights.
func BuildModel(opset int64, inputs, outputs []Tensor, initializers ...string) []byte {
	var graph []byte
	for _, name := range initializers {
		var tensor []byte
		tensor = protowire.AppendTag(tensor, 1, protowire.BytesType) // name
		tensor = protowire.AppendString(tensor, name)
		graph = protowire.AppendTag(graph, 5, protowire.BytesType) // initializer
		graph = protowire.AppendBytes(graph, tensor)

		graph = protowire.AppendTag(graph, 11, protowire.BytesType)
		graph = protowire.AppendBytes(graph, valueInfo(Tensor{Name: name, ElemType: 1}))
	}
	for _, t := range inputs {
		graph = protowire.AppendTag(graph, 11, protowire.BytesType) // input
		graph = protowire.AppendBytes(graph, valueInfo(t))
	}
	for _, t := range outputs {
		graph = protowire.AppendTag(graph, 12, protowire.BytesType) // output
		graph = protowire.AppendBytes(graph, valueInfo(t))
	}

	var model []byte
	model = protowire.AppendTag(model, 1, protowire.VarintType) // ir_version
	model = protowire.AppendVarint(model, 8)
	model = protowire.AppendTag(model, 8, protowire.BytesType) // opset_import
	model = protowire.AppendBytes(model, opsetImport(opset))
	model = protowire.AppendTag(model, 7, protowire.BytesType) // graph
	model = protowire.AppendBytes(model, graph)
	return model
}

func valueInfo(t Tensor) []byte {
	var shape []byte
	for _, d := range t.Dims {
		var dim []byte
		if d.Param != "" {
			dim = protowire.AppendTag(dim, 2, protowire.BytesType) // dim_param
			dim = protowire.AppendString(dim, d.Param)
		} else {
			dim = protowire.AppendTag(dim, 1, protowire.VarintType) // dim_value
			dim = protowire.AppendVarint(dim, uint64(d.Value))
		}
		shape = protowire.AppendTag(shape, 1, protowire.BytesType)
		shape = protowire.AppendBytes(shape, dim)
	}

	var tensorType []byte
	tensorType = protowire.AppendTag(tensorType, 1, protowire.VarintType) // elem_type
	tensorType = protowire.AppendVarint(tensorType, uint64(t.ElemType))
	tensorType = protowire.AppendTag(tensorType, 2, protowire.BytesType) // shape
	tensorType = protowire.AppendBytes(tensorType, shape)

	var typeProto []byte
	typeProto = protowire.AppendTag(typeProto, 1, protowire.BytesType) // tensor_type
	typeProto = protowire.AppendBytes(typeProto, tensorType)

	var vi []byte
	vi = protowire.AppendTag(vi, 1, protowire.BytesType) // name
	vi = protowire.AppendString(vi, t.Name)
	vi = protowire.AppendTag(vi, 2, protowire.BytesType) // type
	vi = protowire.AppendBytes(vi, typeProto)
	return vi
}

func opsetImport(version int64) []byte {
	var b []byte
	b = protowire.AppendTag(b, 2, protowire.VarintType) // version
	b = protowire.AppendVarint(b, uint64(version))
	return b
}
