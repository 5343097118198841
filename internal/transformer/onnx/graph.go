package onnx

import (
	"fmt"
	"os"

	"google.golang.org/protobuf/encoding/protowire"
)

// ONNX ModelProto field numbers (onnx.proto3).
const (
	fieldModelIRVersion   = 1
	fieldModelGraph       = 7
	fieldModelOpsetImport = 8

	fieldGraphInitializer = 5
	fieldGraphInput       = 11
	fieldGraphOutput      = 12

	fieldValueInfoName = 1
	fieldValueInfoType = 2

	fieldTypeTensorType = 1

	fieldTensorElemType = 1
	fieldTensorShape    = 2

	fieldShapeDim = 1

	fieldDimValue = 1
	fieldDimParam = 2

	fieldOpsetDomain  = 1
	fieldOpsetVersion = 2

	fieldTensorProtoName = 1
)

// ONNX tensor element types used by the cross-encoder contract.
const (
	ElemFloat = 1
	ElemInt64 = 7
)

// Dim is one axis of a declared tensor. A named (or absent) dimension is
// dynamic; only a positive dim_value pins the axis.
type Dim struct {
	Value int64
	Param string
	fixed bool
}

// Dynamic reports whether the axis is variable at inference time.
func (d Dim) Dynamic() bool {
	return !d.fixed || d.Param != ""
}

// TensorInfo is the declared interface of one graph input or output.
type TensorInfo struct {
	Name     string
	ElemType int32
	Dims     []Dim
}

// GraphInfo is the externally visible interface of an ONNX model: its
// declared inputs and outputs (initializers excluded) and opset imports.
type GraphInfo struct {
	IRVersion int64
	// default-domain opset version; zero when the model declares none
	Opset   int64
	Inputs  []TensorInfo
	Outputs []TensorInfo
}

// Input returns the declared input with the given name, or nil.
func (g *GraphInfo) Input(name string) *TensorInfo {
	for i := range g.Inputs {
		if g.Inputs[i].Name == name {
			return &g.Inputs[i]
		}
	}
	return nil
}

// InspectFile parses the model at path and returns its graph interface.
func InspectFile(path string) (*GraphInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model: %w", err)
	}
	return Inspect(data)
}

// Inspect walks the ModelProto wire format without materializing the full
// graph, so interface validation stays independent of the inference runtime.
func Inspect(data []byte) (*GraphInfo, error) {
	info := &GraphInfo{}
	var graph []byte

	err := walkFields(data, func(num protowire.Number, typ protowire.Type, val []byte, uval uint64) error {
		switch num {
		case fieldModelIRVersion:
			if typ == protowire.VarintType {
				info.IRVersion = int64(uval)
			}
		case fieldModelOpsetImport:
			if typ != protowire.BytesType {
				return fmt.Errorf("malformed opset_import")
			}
			domain, version, err := parseOpset(val)
			if err != nil {
				return err
			}
			if domain == "" || domain == "ai.onnx" {
				info.Opset = version
			}
		case fieldModelGraph:
			if typ != protowire.BytesType {
				return fmt.Errorf("malformed graph")
			}
			graph = val
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid model proto: %w", err)
	}
	if graph == nil {
		return nil, fmt.Errorf("invalid model proto: no graph")
	}

	initializers := map[string]bool{}
	var inputs, outputs [][]byte
	err = walkFields(graph, func(num protowire.Number, typ protowire.Type, val []byte, _ uint64) error {
		if typ != protowire.BytesType {
			return nil
		}
		switch num {
		case fieldGraphInitializer:
			name, err := parseTensorName(val)
			if err != nil {
				return err
			}
			initializers[name] = true
		case fieldGraphInput:
			inputs = append(inputs, val)
		case fieldGraphOutput:
			outputs = append(outputs, val)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid graph proto: %w", err)
	}

	for _, raw := range inputs {
		ti, err := parseValueInfo(raw)
		if err != nil {
			return nil, err
		}
		// initializers with default values are not true inputs
		if initializers[ti.Name] {
			continue
		}
		info.Inputs = append(info.Inputs, ti)
	}
	for _, raw := range outputs {
		ti, err := parseValueInfo(raw)
		if err != nil {
			return nil, err
		}
		info.Outputs = append(info.Outputs, ti)
	}
	return info, nil
}

// walkFields iterates top-level fields of one message. Bytes fields get the
// payload in val; varint fields get the value in uval.
func walkFields(data []byte, visit func(num protowire.Number, typ protowire.Type, val []byte, uval uint64) error) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return protowire.ParseError(n)
		}
		data = data[n:]

		switch typ {
		case protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			if err := visit(num, typ, nil, v); err != nil {
				return err
			}
			data = data[n:]
		case protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			if err := visit(num, typ, v, 0); err != nil {
				return err
			}
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return protowire.ParseError(n)
			}
			data = data[n:]
		}
	}
	return nil
}

func parseOpset(data []byte) (string, int64, error) {
	var domain string
	var version int64
	err := walkFields(data, func(num protowire.Number, typ protowire.Type, val []byte, uval uint64) error {
		switch num {
		case fieldOpsetDomain:
			if typ == protowire.BytesType {
				domain = string(val)
			}
		case fieldOpsetVersion:
			if typ == protowire.VarintType {
				version = int64(uval)
			}
		}
		return nil
	})
	return domain, version, err
}

func parseTensorName(data []byte) (string, error) {
	var name string
	err := walkFields(data, func(num protowire.Number, typ protowire.Type, val []byte, _ uint64) error {
		if num == fieldTensorProtoName && typ == protowire.BytesType {
			name = string(val)
		}
		return nil
	})
	return name, err
}

func parseValueInfo(data []byte) (TensorInfo, error) {
	var ti TensorInfo
	err := walkFields(data, func(num protowire.Number, typ protowire.Type, val []byte, _ uint64) error {
		switch num {
		case fieldValueInfoName:
			if typ == protowire.BytesType {
				ti.Name = string(val)
			}
		case fieldValueInfoType:
			if typ != protowire.BytesType {
				return fmt.Errorf("malformed value_info type")
			}
			return walkFields(val, func(num protowire.Number, typ protowire.Type, val []byte, _ uint64) error {
				if num != fieldTypeTensorType || typ != protowire.BytesType {
					return nil
				}
				return parseTensorType(val, &ti)
			})
		}
		return nil
	})
	if err != nil {
		return TensorInfo{}, fmt.Errorf("invalid value_info proto: %w", err)
	}
	return ti, nil
}

func parseTensorType(data []byte, ti *TensorInfo) error {
	return walkFields(data, func(num protowire.Number, typ protowire.Type, val []byte, uval uint64) error {
		switch num {
		case fieldTensorElemType:
			if typ == protowire.VarintType {
				ti.ElemType = int32(uval)
			}
		case fieldTensorShape:
			if typ != protowire.BytesType {
				return fmt.Errorf("malformed tensor shape")
			}
			return walkFields(val, func(num protowire.Number, typ protowire.Type, val []byte, _ uint64) error {
				if num != fieldShapeDim || typ != protowire.BytesType {
					return nil
				}
				dim, err := parseDim(val)
				if err != nil {
					return err
				}
				ti.Dims = append(ti.Dims, dim)
				return nil
			})
		}
		return nil
	})
}

func parseDim(data []byte) (Dim, error) {
	var dim Dim
	err := walkFields(data, func(num protowire.Number, typ protowire.Type, val []byte, uval uint64) error {
		switch num {
		case fieldDimValue:
			if typ == protowire.VarintType {
				dim.Value = int64(uval)
				dim.fixed = true
			}
		case fieldDimParam:
			if typ == protowire.BytesType {
				dim.Param = string(val)
			}
		}
		return nil
	})
	return dim, err
}
