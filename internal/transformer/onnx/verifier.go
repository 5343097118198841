package onnx

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/fluxindex/crossencoder/pkg/domain"
)

// SharedLibraryEnv names the ONNX Runtime shared library for verification.
// Verification is skipped when it is unset.
const SharedLibraryEnv = "ONNXRUNTIME_SHARED_LIBRARY_PATH"

// ErrRuntimeUnavailable indicates the inference runtime is not configured.
var ErrRuntimeUnavailable = errors.New("onnxruntime shared library is not configured")

// Verifier runs one forward pass over an exported graph to confirm it
// loads and produces logits of the expected shape. Availability is
// resolved once from the environment, not per call, and the runtime
// environment is initialized once across runs so batch mode does not pay
// setup per model. Callers shut it down via Close.
type Verifier struct {
	libraryPath string
	initOnce    sync.Once
	initErr     error
	initialized bool
}

// NewVerifier resolves the runtime library path from the environment.
// A set path that names a missing file is a configuration error; an unset
// path yields an unavailable (but valid) verifier.
func NewVerifier() (*Verifier, error) {
	p := os.Getenv(SharedLibraryEnv)
	if p == "" {
		return &Verifier{}, nil
	}
	if _, err := os.Stat(p); err != nil {
		return nil, fmt.Errorf("%s points to %q which is not readable: %w", SharedLibraryEnv, p, err)
	}
	return &Verifier{libraryPath: p}, nil
}

// Available reports whether the inference runtime can be loaded.
func (v *Verifier) Available() bool {
	return v != nil && v.libraryPath != ""
}

// init brings up the global ORT environment on first use.
func (v *Verifier) init() error {
	v.initOnce.Do(func() {
		ort.SetSharedLibraryPath(v.libraryPath)
		if err := ort.InitializeEnvironment(); err != nil {
			v.initErr = fmt.Errorf("init ORT env: %w", err)
			return
		}
		v.initialized = true
	})
	return v.initErr
}

// Close shuts down the ORT environment if this verifier brought it up.
func (v *Verifier) Close() error {
	if v == nil || !v.initialized {
		return nil
	}
	v.initialized = false
	return ort.DestroyEnvironment()
}

// Run loads the exported graph at modelPath and executes one forward pass
// on the example, returning the logits shape and values.
func (v *Verifier) Run(ctx context.Context, modelPath string, ex *Example, numLabels int) ([]int64, []float32, error) {
	if !v.Available() {
		return nil, nil, ErrRuntimeUnavailable
	}
	if ex == nil || ex.SeqLen <= 0 {
		return nil, nil, fmt.Errorf("nil example")
	}
	if numLabels <= 0 {
		return nil, nil, fmt.Errorf("invalid label count %d", numLabels)
	}

	if err := v.init(); err != nil {
		return nil, nil, err
	}

	sess, err := ort.NewDynamicAdvancedSession(
		modelPath,
		[]string{domain.GraphInputIDs, domain.GraphInputMask, domain.GraphInputTypes},
		[]string{domain.GraphOutput},
		nil, // no special SessionOptions
	)
	if err != nil {
		return nil, nil, fmt.Errorf("NewDynamicAdvancedSession: %w", err)
	}
	defer sess.Destroy()

	// Inputs [1,T] int64
	shape2 := ort.NewShape(1, int64(ex.SeqLen))
	idTensor, err := ort.NewTensor(shape2, ex.InputIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("input_ids tensor: %w", err)
	}
	defer idTensor.Destroy()

	maskTensor, err := ort.NewTensor(shape2, ex.AttentionMask)
	if err != nil {
		return nil, nil, fmt.Errorf("attention_mask tensor: %w", err)
	}
	defer maskTensor.Destroy()

	typeTensor, err := ort.NewTensor(shape2, ex.TokenTypeIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("token_type_ids tensor: %w", err)
	}
	defer typeTensor.Destroy()

	// Output [1, num_labels] float32
	outTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(numLabels)))
	if err != nil {
		return nil, nil, fmt.Errorf("alloc out tensor: %w", err)
	}
	defer outTensor.Destroy()

	if err := sess.Run(
		[]ort.Value{idTensor, maskTensor, typeTensor},
		[]ort.Value{outTensor},
	); err != nil {
		return nil, nil, fmt.Errorf("ORT Run: %w", err)
	}

	shape := outTensor.GetShape()
	outShape := make([]int64, len(shape))
	copy(outShape, shape)

	logits := make([]float32, len(outTensor.GetData()))
	copy(logits, outTensor.GetData())
	return outShape, logits, nil
}
